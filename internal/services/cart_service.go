package services

import (
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrUnavailable    = errors.New("product unavailable")
	ErrStockLimit     = errors.New("not enough stock")
)

// ProductLookup resolves cart entries against the current menu.
type ProductLookup interface {
	Product(id string) (domain.Product, bool)
}

type CartLine struct {
	Product  domain.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

type CartTotals struct {
	Lines        []CartLine          `json:"lines"`
	ItemCount    int                 `json:"itemCount"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	DeliveryType domain.DeliveryType `json:"deliveryType"`
	DeliveryFee  decimal.Decimal     `json:"deliveryFee"`
	Total        decimal.Decimal     `json:"total"`
}

// cart keeps the quantities along with the order products were first added.
type cart struct {
	qty   map[string]int
	order []string
}

func (c *cart) set(id string, n int) {
	if _, ok := c.qty[id]; !ok {
		c.order = append(c.order, id)
	}
	c.qty[id] = n
}

func (c *cart) remove(id string) {
	if _, ok := c.qty[id]; !ok {
		return
	}
	delete(c.qty, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
}

// CartService keeps one cart per shopper session in memory.
type CartService struct {
	menu        ProductLookup
	deliveryFee decimal.Decimal

	mu    sync.Mutex
	carts map[string]*cart
}

func NewCartService(menu ProductLookup, deliveryFee decimal.Decimal) *CartService {
	return &CartService{
		menu:        menu,
		deliveryFee: deliveryFee,
		carts:       map[string]*cart{},
	}
}

func (s *CartService) cart(sid string) *cart {
	c, ok := s.carts[sid]
	if !ok {
		c = &cart{qty: map[string]int{}}
		s.carts[sid] = c
	}
	return c
}

// Add puts one more unit of productID in the cart and returns the new
// quantity. The cart is unchanged when the product is unknown, unavailable
// or already at its stock.
func (s *CartService) Add(sid, productID string) (int, error) {
	p, ok := s.menu.Product(productID)
	if !ok {
		return 0, ErrUnknownProduct
	}
	if !p.Available {
		return 0, ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(sid)
	inCart := c.qty[productID]
	if !p.CanAddToCart(inCart) {
		return inCart, ErrStockLimit
	}
	c.set(productID, inCart+1)
	return inCart + 1, nil
}

func (s *CartService) Remove(sid, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sid]; ok {
		c.remove(productID)
	}
}

// SetQuantity sets the quantity of productID. Zero or less removes it. For
// stock controlled products the quantity is capped at the stock, in which
// case ErrStockLimit is returned along with the capped quantity.
func (s *CartService) SetQuantity(sid, productID string, qty int) (int, error) {
	if qty <= 0 {
		s.Remove(sid, productID)
		return 0, nil
	}
	p, ok := s.menu.Product(productID)
	if !ok {
		return 0, ErrUnknownProduct
	}
	if !p.Available {
		return 0, ErrUnavailable
	}

	var err error
	if p.HasStockControl && qty > p.Stock {
		qty = p.Stock
		err = ErrStockLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cart(sid)
	if qty <= 0 {
		c.remove(productID)
		return 0, err
	}
	c.set(productID, qty)
	return qty, err
}

func (s *CartService) Clear(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
}

// Move hands the cart of session from over to session to, replacing any
// cart to already had.
func (s *CartService) Move(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[from]; ok {
		s.carts[to] = c
		delete(s.carts, from)
	}
}

func (s *CartService) Quantities(sid string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int{}
	if c, ok := s.carts[sid]; ok {
		for id, n := range c.qty {
			out[id] = n
		}
	}
	return out
}

func (s *CartService) ItemCount(sid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	if c, ok := s.carts[sid]; ok {
		for _, q := range c.qty {
			n += q
		}
	}
	return n
}

// Lines resolves the cart against the menu in the order products were
// added. Entries whose product is gone or unavailable are skipped.
func (s *CartService) Lines(sid string) []CartLine {
	s.mu.Lock()
	var ids []string
	qty := map[string]int{}
	if c, ok := s.carts[sid]; ok {
		ids = slices.Clone(c.order)
		for id, n := range c.qty {
			qty[id] = n
		}
	}
	s.mu.Unlock()

	lines := make([]CartLine, 0, len(ids))
	for _, id := range ids {
		p, ok := s.menu.Product(id)
		if !ok || !p.Available {
			continue
		}
		line := CartLine{Product: p, Quantity: qty[id]}
		line.Total = LineTotal(line)
		lines = append(lines, line)
	}
	return lines
}

func (s *CartService) Totals(sid string, dt domain.DeliveryType) CartTotals {
	lines := s.Lines(sid)
	t := CartTotals{
		Lines:        lines,
		Subtotal:     decimal.Zero,
		DeliveryType: dt,
		DeliveryFee:  decimal.Zero,
	}
	for _, l := range lines {
		t.ItemCount += l.Quantity
		t.Subtotal = t.Subtotal.Add(l.Total)
	}
	if dt == domain.DeliveryDelivery {
		t.DeliveryFee = s.deliveryFee
	}
	t.Total = t.Subtotal.Add(t.DeliveryFee).Round(2)
	return t
}

func (s *CartService) DeliveryFee() decimal.Decimal { return s.deliveryFee }

func LineTotal(l CartLine) decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}
