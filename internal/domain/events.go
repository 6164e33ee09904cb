package domain

import "time"

type MenuPublishedEvent struct {
	Version    int64     `json:"version"`
	Products   int       `json:"products"`
	Categories int       `json:"categories"`
	Forced     bool      `json:"forced"`
	Timestamp  time.Time `json:"timestamp"`
}

type OrderLineEvent struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCheckedOutEvent struct {
	Lines        []OrderLineEvent `json:"lines"`
	DeliveryType DeliveryType     `json:"delivery_type"`
	Total        string           `json:"total"`
	Timestamp    time.Time        `json:"timestamp"`
}

const (
	EventMenuPublished   = "menu.published"
	EventOrderCheckedOut = "order.checked_out"
)
