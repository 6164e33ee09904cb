package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/services"
)

func newCart(t *testing.T) (*services.CartService, *services.MenuService) {
	t.Helper()
	menu, _ := loadedMenu(t)
	return services.NewCartService(menu, decimal.NewFromInt(5)), menu
}

func TestCartAdd(t *testing.T) {
	cart, _ := newCart(t)

	n, err := cart.Add("s1", "frango-inteiro")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = cart.Add("s1", "frango-inteiro")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, map[string]int{"frango-inteiro": 2}, cart.Quantities("s1"))
	assert.Empty(t, cart.Quantities("s2"), "carts are per session")
}

func TestCartAdd_Rejections(t *testing.T) {
	cart, _ := newCart(t)

	_, err := cart.Add("s1", "nope")
	assert.ErrorIs(t, err, services.ErrUnknownProduct)
	_, err = cart.Add("s1", "suco")
	assert.ErrorIs(t, err, services.ErrUnavailable)
	assert.Equal(t, 0, cart.ItemCount("s1"))
}

func TestCartAdd_StopsAtStock(t *testing.T) {
	cart, _ := newCart(t)

	for range 3 {
		_, err := cart.Add("s1", "meio-frango")
		require.NoError(t, err)
	}
	n, err := cart.Add("s1", "meio-frango")
	assert.ErrorIs(t, err, services.ErrStockLimit)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, cart.Quantities("s1")["meio-frango"])
}

func TestCartAdd_ZeroStock(t *testing.T) {
	cart, menu := newCart(t)
	_, err := menu.SetStock("meio-frango", 0)
	require.NoError(t, err)

	_, err = cart.Add("s1", "meio-frango")
	assert.ErrorIs(t, err, services.ErrStockLimit)
	assert.NotContains(t, cart.Quantities("s1"), "meio-frango")
}

func TestCartSetQuantity(t *testing.T) {
	cart, _ := newCart(t)

	n, err := cart.SetQuantity("s1", "refri", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = cart.SetQuantity("s1", "meio-frango", 10)
	assert.ErrorIs(t, err, services.ErrStockLimit)
	assert.Equal(t, 3, n)

	n, err = cart.SetQuantity("s1", "refri", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, present := cart.Quantities("s1")["refri"]
	assert.False(t, present, "zero quantity removes the entry")

	_, err = cart.SetQuantity("s1", "meio-frango", -1)
	require.NoError(t, err)
	assert.Empty(t, cart.Quantities("s1"))
}

func TestCartRemoveAndClear(t *testing.T) {
	cart, _ := newCart(t)
	_, _ = cart.Add("s1", "refri")
	_, _ = cart.Add("s1", "frango-inteiro")

	cart.Remove("s1", "refri")
	assert.Equal(t, map[string]int{"frango-inteiro": 1}, cart.Quantities("s1"))

	cart.Clear("s1")
	assert.Equal(t, 0, cart.ItemCount("s1"))
	assert.Empty(t, cart.Lines("s1"))
}

func TestCartMove(t *testing.T) {
	cart, _ := newCart(t)
	_, _ = cart.Add("old", "refri")
	_, _ = cart.Add("old", "frango-inteiro")

	cart.Move("old", "new")
	assert.Empty(t, cart.Quantities("old"))
	assert.Equal(t, map[string]int{"refri": 1, "frango-inteiro": 1}, cart.Quantities("new"))
	lines := cart.Lines("new")
	require.Len(t, lines, 2)
	assert.Equal(t, "refri", lines[0].Product.ID)

	cart.Move("nobody", "new")
	assert.Equal(t, 2, cart.ItemCount("new"))
}

func TestCartLines_KeepOrderAndSkipUnavailable(t *testing.T) {
	cart, menu := newCart(t)
	_, _ = cart.Add("s1", "refri")
	_, _ = cart.Add("s1", "frango-inteiro")
	_, _ = cart.Add("s1", "meio-frango")

	_, err := menu.ToggleAvailability("frango-inteiro")
	require.NoError(t, err)
	require.NoError(t, menu.DeleteProduct("meio-frango"))

	lines := cart.Lines("s1")
	require.Len(t, lines, 1)
	assert.Equal(t, "refri", lines[0].Product.ID)
	// the raw quantities still hold the skipped entries
	assert.Equal(t, 3, cart.ItemCount("s1"))
}

func TestCartTotals(t *testing.T) {
	cart, _ := newCart(t)
	_, _ = cart.SetQuantity("s1", "frango-inteiro", 2)
	_, _ = cart.SetQuantity("s1", "refri", 3)

	pickup := cart.Totals("s1", domain.DeliveryPickup)
	assert.Equal(t, 5, pickup.ItemCount)
	assert.Equal(t, "85.00", pickup.Subtotal.StringFixed(2))
	assert.True(t, pickup.DeliveryFee.IsZero())
	assert.Equal(t, "85.00", pickup.Total.StringFixed(2))

	delivery := cart.Totals("s1", domain.DeliveryDelivery)
	assert.Equal(t, "5.00", delivery.DeliveryFee.StringFixed(2))
	assert.Equal(t, "90.00", delivery.Total.StringFixed(2))
}

func TestLineTotal_RoundsToCents(t *testing.T) {
	line := services.CartLine{Product: domain.Product{Price: 0.1}, Quantity: 3}
	assert.Equal(t, "0.30", services.LineTotal(line).StringFixed(2))
}
