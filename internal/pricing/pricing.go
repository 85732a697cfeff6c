// Package pricing resolves the price a menu item is displayed and charged at,
// given the store's promotional offers.
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TargetKind says what an offer applies to.
type TargetKind string

const (
	TargetItem    TargetKind = "ITEM"
	TargetVariant TargetKind = "VARIANT"
)

// Target identifies the priced thing an offer discounts: the whole item, or
// one named variant of it.
type Target struct {
	Kind        TargetKind
	VariantName string // set only when Kind == TargetVariant
}

// ItemTarget targets an item's base price.
func ItemTarget() Target {
	return Target{Kind: TargetItem}
}

// VariantTarget targets one named variant of an item.
func VariantTarget(name string) Target {
	return Target{Kind: TargetVariant, VariantName: name}
}

// Variant is a named price-bearing sub-option of a menu item.
type Variant struct {
	Name  string
	Price decimal.Decimal
}

// Item is the catalog view the resolver needs. Price is the base price, or
// the "from" price when variants exist.
type Item struct {
	ID       uuid.UUID
	Name     string
	Price    decimal.Decimal
	Variants []Variant
}

// Offer is a time-bounded discount on an item or one of its variants.
type Offer struct {
	ID         uuid.UUID
	MenuItemID uuid.UUID
	Target     Target
	OfferPrice decimal.Decimal
	StartsAt   time.Time
	EndsAt     time.Time
}

// Quote is what the storefront shows for an item.
type Quote struct {
	DisplayPrice        decimal.Decimal
	StrikethroughPrice  decimal.Decimal
	DiscountPercent     int
	HasOffer            bool
	IsUpcoming          bool
	IsMultiVariantOffer bool
}

// Resolve maps an item and the store's offer set to a display quote.
//
// Upcoming offers (starts_at in the future) take precedence over active ones:
// an item with any upcoming offer previews the future price as the headline
// number with the current price struck through. The charged price is not
// affected by upcoming offers; see ChargeablePrice.
func Resolve(item Item, offers []Offer, now time.Time) Quote {
	var upcoming, active []Offer
	for _, o := range offers {
		if o.MenuItemID != item.ID {
			continue
		}
		if !o.EndsAt.IsZero() && !o.EndsAt.After(now) {
			continue // already ended
		}
		if o.StartsAt.After(now) {
			upcoming = append(upcoming, o)
		} else {
			active = append(active, o)
		}
	}

	if len(upcoming) == 0 && len(active) == 0 {
		return Quote{DisplayPrice: item.Price, StrikethroughPrice: decimal.Zero}
	}

	pool := active
	isUpcoming := false
	if len(upcoming) > 0 {
		pool = upcoming
		isUpcoming = true
	}

	if len(pool) > 1 {
		display := pool[0].OfferPrice
		original := originalPrice(item, pool[0])
		for _, o := range pool[1:] {
			if o.OfferPrice.LessThan(display) {
				display = o.OfferPrice
			}
			if op := originalPrice(item, o); op.LessThan(original) {
				original = op
			}
		}
		return Quote{
			DisplayPrice:        display,
			StrikethroughPrice:  original,
			DiscountPercent:     discountPercent(original, display),
			HasOffer:            true,
			IsUpcoming:          isUpcoming,
			IsMultiVariantOffer: true,
		}
	}

	offer := pool[0]
	original := originalPrice(item, offer)
	return Quote{
		DisplayPrice:       offer.OfferPrice,
		StrikethroughPrice: original,
		DiscountPercent:    discountPercent(original, offer.OfferPrice),
		HasOffer:           true,
		IsUpcoming:         isUpcoming,
	}
}

// ChargeablePrice returns the unit price actually charged for a selection:
// the lowest active offer price matching the selection, or the plain
// item/variant price when no active offer matches. Exactly one price ever
// applies; offers are never combined with the base price.
func ChargeablePrice(item Item, offers []Offer, variantName string, now time.Time) decimal.Decimal {
	base := item.Price
	if variantName != "" {
		if v, ok := findVariant(item, variantName); ok {
			base = v.Price
		}
	}

	var best decimal.Decimal
	found := false
	for _, o := range offers {
		if o.MenuItemID != item.ID {
			continue
		}
		if o.StartsAt.After(now) {
			continue // upcoming offers are preview-only
		}
		if !o.EndsAt.IsZero() && !o.EndsAt.After(now) {
			continue
		}
		if !targetMatches(o.Target, variantName) {
			continue
		}
		if !found || o.OfferPrice.LessThan(best) {
			best = o.OfferPrice
			found = true
		}
	}
	if found {
		return best
	}
	return base
}

// originalPrice is what the offer's target costs without the offer. A
// variant-targeted offer whose variant name does not exist on the item falls
// back to the item's base price.
func originalPrice(item Item, o Offer) decimal.Decimal {
	if o.Target.Kind == TargetVariant {
		if v, ok := findVariant(item, o.Target.VariantName); ok {
			return v.Price
		}
	}
	return item.Price
}

func findVariant(item Item, name string) (Variant, bool) {
	for _, v := range item.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

func targetMatches(t Target, variantName string) bool {
	switch t.Kind {
	case TargetItem:
		return variantName == ""
	case TargetVariant:
		return t.VariantName == variantName
	}
	return false
}

// discountPercent clamps to 0 for non-positive originals and for offers that
// are not actually cheaper, so a bad offer row never yields NaN or a
// negative badge.
func discountPercent(original, display decimal.Decimal) int {
	if original.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct := original.Sub(display).Mul(decimal.NewFromInt(100)).Div(original).Round(0).IntPart()
	if pct < 0 {
		return 0
	}
	return int(pct)
}
