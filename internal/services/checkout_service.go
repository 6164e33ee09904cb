package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/message"
	"storefront/internal/queue"
	"storefront/internal/validate"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid customer details")
)

// StockWriter persists the stock of a single product.
type StockWriter interface {
	SetStock(ctx context.Context, productID string, stock int) error
}

type Receipt struct {
	Message string     `json:"message"`
	Link    string     `json:"link"`
	Totals  CartTotals `json:"totals"`
	// StockErrors lists products whose remote stock could not be lowered.
	StockErrors []string `json:"stockErrors,omitempty"`
}

type CheckoutService struct {
	Cart   *CartService
	Menu   *MenuService
	Stock  StockWriter
	Shop   config.ShopConfig
	broker queue.Broker
	log    *zap.SugaredLogger
	now    func() time.Time

	// stockMu orders the store writes so the last one carries the lowest stock.
	stockMu sync.Mutex
}

func NewCheckoutService(cart *CartService, menu *MenuService, stock StockWriter, shop config.ShopConfig, broker queue.Broker, log *zap.SugaredLogger) *CheckoutService {
	if broker == nil {
		broker = queue.NopBroker{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CheckoutService{
		Cart:   cart,
		Menu:   menu,
		Stock:  stock,
		Shop:   shop,
		broker: broker,
		log:    log,
		now:    time.Now,
	}
}

// Preview renders the receipt for the current cart. Nothing is changed.
func (s *CheckoutService) Preview(sid string, customer domain.Customer, dt domain.DeliveryType) (Receipt, error) {
	totals := s.Cart.Totals(sid, dt)
	if len(totals.Lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	return s.receipt(customer, totals), nil
}

// Confirm validates the customer, lowers the stock of the purchased
// products, clears the cart and returns the WhatsApp link for the order.
// Stock writes are best effort: a failed write is logged and listed in the
// receipt, earlier writes are kept. The store receives the local stock after
// the decrement.
func (s *CheckoutService) Confirm(ctx context.Context, sid string, customer domain.Customer, dt domain.DeliveryType) (Receipt, error) {
	totals := s.Cart.Totals(sid, dt)
	if len(totals.Lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	customer, err := CheckCustomer(customer, dt)
	if err != nil {
		return Receipt{}, err
	}

	r := s.receipt(customer, totals)
	r.StockErrors = s.decrementStock(ctx, totals.Lines)

	s.Cart.Clear(sid)
	s.log.Infow("order checked out",
		"items", totals.ItemCount,
		"total", totals.Total.StringFixed(2),
		"delivery", dt,
	)

	event := domain.OrderCheckedOutEvent{
		DeliveryType: dt,
		Total:        totals.Total.StringFixed(2),
		Timestamp:    s.now().UTC(),
	}
	for _, l := range totals.Lines {
		event.Lines = append(event.Lines, domain.OrderLineEvent{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}
	if err := queue.PublishJSON(ctx, s.broker, queue.QueueOrderCheckedOut, event); err != nil {
		s.log.Warnw("event publish failed", "queue", queue.QueueOrderCheckedOut, "error", err)
	}
	return r, nil
}

// decrementStock lowers the local stock of every stock controlled line and
// writes the resulting value to the store. It returns the products whose
// store write failed.
func (s *CheckoutService) decrementStock(ctx context.Context, lines []CartLine) []string {
	s.stockMu.Lock()
	defer s.stockMu.Unlock()

	var failed []string
	for _, l := range lines {
		if !l.Product.HasStockControl {
			continue
		}
		p, err := s.Menu.ApplyStockDecrement(l.Product.ID, l.Quantity)
		if err != nil {
			s.log.Warnw("local stock decrement failed", "product", l.Product.ID, "error", err)
			failed = append(failed, l.Product.ID)
			continue
		}
		if err := s.Stock.SetStock(ctx, l.Product.ID, p.Stock); err != nil {
			s.log.Warnw("stock decrement failed",
				"product", l.Product.ID,
				"quantity", l.Quantity,
				"stock", p.Stock,
				"error", err,
			)
			failed = append(failed, l.Product.ID)
		}
	}
	return failed
}

func (s *CheckoutService) receipt(customer domain.Customer, totals CartTotals) Receipt {
	order := message.Order{
		Shop:          s.Shop.Name,
		Customer:      customer,
		DeliveryType:  totals.DeliveryType,
		DeliveryFee:   totals.DeliveryFee,
		Total:         totals.Total,
		EstimatedTime: s.Shop.EstimatedTime,
		PlacedAt:      s.now(),
	}
	for _, l := range totals.Lines {
		order.Lines = append(order.Lines, message.Line{
			Name:     l.Product.Name,
			Quantity: l.Quantity,
			Unit:     decimal.NewFromFloat(l.Product.Price).Round(2),
			Subtotal: l.Total,
		})
	}
	text := message.Summary(order)
	return Receipt{
		Message: text,
		Link:    message.WhatsAppLink(s.Shop.WhatsAppPhone, text),
		Totals:  totals,
	}
}

// CheckCustomer trims and validates the customer. The address is only
// required for delivery.
func CheckCustomer(c domain.Customer, dt domain.DeliveryType) (domain.Customer, error) {
	var ok bool
	if c.Name, ok = validate.Name(c.Name); !ok {
		return c, fmt.Errorf("%w: name", ErrInvalidCustomer)
	}
	if c.Phone, ok = validate.Phone(c.Phone); !ok {
		return c, fmt.Errorf("%w: phone", ErrInvalidCustomer)
	}
	if !c.PaymentMethod.Valid() {
		return c, fmt.Errorf("%w: payment method", ErrInvalidCustomer)
	}
	if dt == domain.DeliveryDelivery {
		if c.Address, ok = validate.Address(c.Address); !ok {
			return c, fmt.Errorf("%w: address", ErrInvalidCustomer)
		}
	}
	return c, nil
}
