// Package delivery computes delivery distances and charges for stores that
// have delivery configured.
package delivery

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config is a store's delivery setup. Nil fields mean the store never set
// them up, which disables delivery quoting entirely.
type Config struct {
	StoreLocation *Point
	Rate          *decimal.Decimal
	RadiusKm      float64 // 0 means unlimited
	FirstKmFree   float64
	IsFixedRate   bool
}

// Info is a computed delivery quote.
type Info struct {
	DistanceKm float64         `json:"distance_km"`
	Cost       decimal.Decimal `json:"cost"`
	OutOfRange bool            `json:"out_of_range"`
}

// Calculator turns a store config and a customer location into a quote.
type Calculator struct {
	provider DistanceProvider
}

func NewCalculator(provider DistanceProvider) *Calculator {
	return &Calculator{provider: provider}
}

// Quote returns nil when the quote cannot be computed: missing store
// coordinates, missing rate, missing customer point, or a provider failure.
// Callers treat nil as "no delivery info" and proceed without a charge.
func (c *Calculator) Quote(ctx context.Context, cfg Config, customer *Point) *Info {
	if customer == nil || cfg.StoreLocation == nil || cfg.Rate == nil {
		return nil
	}

	distanceKm, err := c.provider.DrivingDistanceKm(ctx, *cfg.StoreLocation, *customer)
	if err != nil {
		logrus.WithError(err).Warn("delivery distance lookup failed")
		return nil
	}

	if cfg.RadiusKm > 0 && distanceKm > cfg.RadiusKm {
		return &Info{DistanceKm: distanceKm, Cost: decimal.Zero, OutOfRange: true}
	}

	var cost decimal.Decimal
	if cfg.IsFixedRate {
		cost = *cfg.Rate
	} else {
		cost = cfg.Rate.Mul(decimal.NewFromFloat(distanceKm))
	}

	// Short trips within the free threshold cost nothing at all; beyond the
	// threshold the full distance is charged.
	if cfg.FirstKmFree > 0 && distanceKm <= cfg.FirstKmFree {
		cost = decimal.Zero
	}

	if cost.IsNegative() {
		cost = decimal.Zero
	}

	return &Info{DistanceKm: distanceKm, Cost: cost}
}
