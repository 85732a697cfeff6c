package order

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dineup/api/internal/enum"
)

// SummaryInput carries everything the WhatsApp order message needs.
type SummaryInput struct {
	StoreName          string
	Currency           string // e.g. "₹"
	OrderNumber        string
	OrderType          string
	CustomerName       string
	CustomerPhone      string
	Address            string // delivery orders only
	Note               string
	Lines              []Line
	Totals             Breakdown
	DeliveryOutOfRange bool
}

// Summary renders the plain-text order message sent to the store over
// WhatsApp. Charge lines appear only when non-zero.
func Summary(in SummaryInput) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🛎️ New order for %s\n", in.StoreName))
	sb.WriteString(fmt.Sprintf("Order #%s (%s)\n\n", in.OrderNumber, orderTypeLabel(in.OrderType)))

	for _, l := range in.Lines {
		name := l.Name
		if l.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", l.Name, l.VariantName)
		}
		sb.WriteString(fmt.Sprintf("• %s x%d = %s%s\n", name, l.Quantity, in.Currency, l.Total().StringFixed(2)))
	}

	sb.WriteString(fmt.Sprintf("\nSubtotal: %s%s\n", in.Currency, in.Totals.Subtotal.StringFixed(2)))
	if in.Totals.GSTAmount.IsPositive() {
		sb.WriteString(fmt.Sprintf("GST: %s%s\n", in.Currency, in.Totals.GSTAmount.StringFixed(2)))
	}
	if in.Totals.ExtraCharge.IsPositive() {
		sb.WriteString(fmt.Sprintf("Extra charge: %s%s\n", in.Currency, in.Totals.ExtraCharge.StringFixed(2)))
	}
	if in.Totals.DeliveryCharge.IsPositive() {
		sb.WriteString(fmt.Sprintf("Delivery: %s%s\n", in.Currency, in.Totals.DeliveryCharge.StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("Total: %s%s\n", in.Currency, in.Totals.GrandTotal.StringFixed(2)))

	sb.WriteString(fmt.Sprintf("\nCustomer: %s", in.CustomerName))
	if in.CustomerPhone != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", in.CustomerPhone))
	}
	sb.WriteString("\n")
	if in.OrderType == enum.OrderTypeDelivery && in.Address != "" {
		sb.WriteString(fmt.Sprintf("Address: %s\n", in.Address))
	}
	if in.DeliveryOutOfRange {
		sb.WriteString("⚠️ Address is outside the delivery radius\n")
	}
	if in.Note != "" {
		sb.WriteString(fmt.Sprintf("Note: %s\n", in.Note))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// WhatsAppLink builds the wa.me deep link that opens a chat with the store
// pre-filled with the order message.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(message))
}

func orderTypeLabel(orderType string) string {
	switch orderType {
	case enum.OrderTypeDelivery:
		return "Delivery"
	case enum.OrderTypePickup:
		return "Pickup"
	case enum.OrderTypeDineIn:
		return "Dine-in"
	}
	return orderType
}
