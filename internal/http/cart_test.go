package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/validate"
)

func TestCart_AddAndView(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "frango"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sid := sidFrom(resp)
	require.NotEmpty(t, sid)

	resp = do(t, app, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "frango"}, sid)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cart cartResponse
	decode(t, resp, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "70.00", cart.Total.StringFixed(2))

	resp = do(t, app, http.MethodGet, "/api/v1/cart?delivery=delivery", nil, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &cart)
	assert.Equal(t, "5.00", cart.DeliveryFee.StringFixed(2))
	assert.Equal(t, "75.00", cart.Total.StringFixed(2))

	resp = do(t, app, http.MethodGet, "/api/v1/cart?delivery=drone", nil, sid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCart_AddRejections(t *testing.T) {
	app, _ := newTestApp(t)
	sid := "cart-sid"

	cases := []struct {
		product string
		status  int
	}{
		{"nope", http.StatusNotFound},
		{"suco", http.StatusConflict},
		{"", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := do(t, app, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": tc.product}, sid)
		assert.Equal(t, tc.status, resp.StatusCode, tc.product)
	}
}

func TestCart_StockLimit(t *testing.T) {
	app, _ := newTestApp(t)
	sid := "stock-sid"

	for i := 0; i < 2; i++ {
		resp := do(t, app, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "meio"}, sid)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp := do(t, app, http.MethodPost, "/api/v1/cart/items", map[string]string{"productId": "meio"}, sid)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e errorResponse
	decode(t, resp, &e)
	assert.Equal(t, "not enough stock", e.Error)
}

func TestCart_UpdateAndRemove(t *testing.T) {
	app, deps := newTestApp(t)
	sid := "update-sid"

	resp := do(t, app, http.MethodPut, "/api/v1/cart/items/refri", map[string]int{"quantity": 4}, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, deps.Cart.Quantities(sid)["refri"])

	// capped at stock and reported
	resp = do(t, app, http.MethodPut, "/api/v1/cart/items/meio", map[string]int{"quantity": 9}, sid)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 2, deps.Cart.Quantities(sid)["meio"])

	resp = do(t, app, http.MethodPut, "/api/v1/cart/items/refri", map[string]int{"quantity": 0}, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, deps.Cart.Quantities(sid), "refri")

	resp = do(t, app, http.MethodPut, "/api/v1/cart/items/refri", map[string]int{"quantity": validate.MaxQty}, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, validate.MaxQty, deps.Cart.Quantities(sid)["refri"])
	resp = do(t, app, http.MethodPut, "/api/v1/cart/items/refri", map[string]int{"quantity": validate.MaxQty + 1}, sid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, validate.MaxQty, deps.Cart.Quantities(sid)["refri"])
	resp = do(t, app, http.MethodPut, "/api/v1/cart/items/refri", map[string]int{"quantity": 0}, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, app, http.MethodPut, "/api/v1/cart/items/refri", map[string]string{}, sid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodDelete, "/api/v1/cart/items/meio", nil, sid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, deps.Cart.Quantities(sid))

	_, _ = deps.Cart.Add(sid, "frango")
	resp = do(t, app, http.MethodDelete, "/api/v1/cart", nil, sid)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, deps.Cart.ItemCount(sid))
}
