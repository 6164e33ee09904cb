package message

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const (
	ruleWidth = 35
	// dateLayout renders the pt-BR short date and time.
	dateLayout = "02/01/2006, 15:04:05"
)

type Line struct {
	Name     string
	Quantity int
	Unit     decimal.Decimal
	Subtotal decimal.Decimal
}

// Order carries everything printed on the receipt sent to the restaurant.
type Order struct {
	Shop          string
	Customer      domain.Customer
	DeliveryType  domain.DeliveryType
	Lines         []Line
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	EstimatedTime string
	PlacedAt      time.Time
}

// Summary renders the order as WhatsApp formatted text.
func Summary(o Order) string {
	var b strings.Builder
	thin := strings.Repeat("─", ruleWidth)
	thick := strings.Repeat("═", ruleWidth)

	fmt.Fprintf(&b, "🐔 *%s - NOTA FISCAL* 🐔\n\n", strings.ToUpper(o.Shop))

	b.WriteString("📋 *DADOS DO CLIENTE*\n")
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "👤 *Nome:* %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "📞 *Telefone:* %s\n", o.Customer.Phone)
	if o.DeliveryType == domain.DeliveryDelivery {
		fmt.Fprintf(&b, "📍 *Endereço:* %s\n", o.Customer.Address)
		b.WriteString("🛵 *Entrega:* delivery\n")
	} else {
		b.WriteString("🏪 *Entrega:* retirada no local\n")
	}
	fmt.Fprintf(&b, "💳 *Pagamento:* %s\n\n", o.Customer.PaymentMethod)

	b.WriteString("🛒 *PEDIDO*\n")
	b.WriteString(thin + "\n")
	for i, l := range o.Lines {
		fmt.Fprintf(&b, "%d. *%s*\n", i+1, l.Name)
		fmt.Fprintf(&b, "   Qtde: %dx\n", l.Quantity)
		fmt.Fprintf(&b, "   Unit.: %s\n", Money(l.Unit))
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", Money(l.Subtotal))
	}

	b.WriteString(thick + "\n")
	if o.DeliveryType == domain.DeliveryDelivery {
		fmt.Fprintf(&b, "🛵 Taxa de entrega: %s\n", Money(o.DeliveryFee))
	}
	fmt.Fprintf(&b, "💰 *TOTAL DO PEDIDO: %s*\n\n", Money(o.Total))

	fmt.Fprintf(&b, "📅 *DATA/HORA:* %s\n\n", o.PlacedAt.Format(dateLayout))

	b.WriteString("🔔 *OBSERVAÇÕES*\n")
	b.WriteString("- Pedido confirmado via app\n")
	if o.EstimatedTime != "" {
		fmt.Fprintf(&b, "- Prazo estimado: %s\n", o.EstimatedTime)
	}
	fmt.Fprintf(&b, "- Formas de pagamento: %s\n\n", paymentMethods())

	b.WriteString("📱 *ENVIADO AUTOMATICAMENTE PELO APP*\n")
	b.WriteString(thick)
	return b.String()
}

// WhatsAppLink builds the wa.me deep link that opens a chat with phone and
// text prefilled.
func WhatsAppLink(phone, text string) string {
	return "https://wa.me/" + digits(phone) + "?text=" + EncodeComponent(text)
}

// EncodeComponent percent-encodes s for a query value, spaces as %20.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func Money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func paymentMethods() string {
	names := make([]string, len(domain.PaymentMethods))
	for i, m := range domain.PaymentMethods {
		names[i] = strings.ToLower(string(m))
	}
	return strings.Join(names, "/")
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
