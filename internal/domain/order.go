package domain

import "fmt"

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

func ParseDeliveryType(s string) (DeliveryType, error) {
	switch DeliveryType(s) {
	case DeliveryPickup, "":
		return DeliveryPickup, nil
	case DeliveryDelivery:
		return DeliveryDelivery, nil
	}
	return "", fmt.Errorf("unknown delivery type %q", s)
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Dinheiro"
	PaymentPix  PaymentMethod = "PIX"
	PaymentCard PaymentMethod = "Cartão crédito/débito"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentPix, PaymentCard}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

type Customer struct {
	Name          string        `json:"name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}
