// Package order computes order totals and renders the customer-facing order
// summary.
package order

import (
	"github.com/shopspring/decimal"

	"github.com/dineup/api/internal/delivery"
	"github.com/dineup/api/internal/enum"
)

// Line is one charged order line. UnitPrice is the effective price after
// offer resolution.
type Line struct {
	Name        string
	VariantName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ExtraCharge is a store-level surcharge: either per ordered unit or a flat
// fee per order.
type ExtraCharge struct {
	Type   string // enum.ChargeTypePerItem or enum.ChargeTypeFlatFee
	Amount decimal.Decimal
}

// Breakdown is the full totals picture for a cart preview or an order.
type Breakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	ExtraCharge    decimal.Decimal `json:"extra_charge"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// CalculateTotals aggregates lines into a breakdown. gstPercent is nil when
// the store has no GST configured. deliveryInfo is nil when no quote exists;
// an out-of-range quote contributes nothing. extra is nil when the store has
// no surcharge.
func CalculateTotals(lines []Line, gstPercent *decimal.Decimal, deliveryInfo *delivery.Info, extra *ExtraCharge) Breakdown {
	b := Breakdown{
		Subtotal:       decimal.Zero,
		GSTAmount:      decimal.Zero,
		ExtraCharge:    decimal.Zero,
		DeliveryCharge: decimal.Zero,
	}

	for _, l := range lines {
		b.Subtotal = b.Subtotal.Add(l.Total())
	}

	if gstPercent != nil && gstPercent.IsPositive() {
		b.GSTAmount = b.Subtotal.Mul(*gstPercent).Div(decimal.NewFromInt(100))
	}

	b.ExtraCharge = extraChargeAmount(lines, extra)

	if deliveryInfo != nil && !deliveryInfo.OutOfRange {
		b.DeliveryCharge = deliveryInfo.Cost
	}

	b.GrandTotal = b.Subtotal.Add(b.GSTAmount).Add(b.ExtraCharge).Add(b.DeliveryCharge)
	return b
}

func extraChargeAmount(lines []Line, extra *ExtraCharge) decimal.Decimal {
	if extra == nil || !extra.Amount.IsPositive() || len(lines) == 0 {
		return decimal.Zero
	}
	switch extra.Type {
	case enum.ChargeTypePerItem:
		units := int64(0)
		for _, l := range lines {
			units += int64(l.Quantity)
		}
		return extra.Amount.Mul(decimal.NewFromInt(units))
	case enum.ChargeTypeFlatFee:
		return extra.Amount
	}
	return decimal.Zero
}
