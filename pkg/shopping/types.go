// Package shopping turns the purchasable materials of a crafting plan into
// ranked, fraud-filtered purchase recommendations across the worlds of a
// data center.
//
// The optimizer performs no network I/O: it reads the market cache the
// caller has already populated, summarizes each world's offer per material,
// scores the summaries and picks either a single world or a multi-world
// split. Per-material failures are recorded on the material's plan entry
// and never abort the batch.
package shopping

import (
	"github.com/mveldt/craftplan/pkg/market"
)

const (
	// DefaultMaxPriceMultiplier is the fraud threshold factor: listings
	// priced above mode price times this multiplier are excluded.
	DefaultMaxPriceMultiplier = 2.5

	// DefaultSplitSavingsThreshold is the contingency margin: a single
	// sufficient world within this fraction of the split's total cost wins
	// over the split.
	DefaultSplitSavingsThreshold = 0.05
)

// Config tunes the optimizer.
type Config struct {
	// MaxPriceMultiplier scales the mode price into the fraud threshold.
	MaxPriceMultiplier float64

	// SplitPurchase enables multi-world split allocation when no single
	// world can satisfy demand.
	SplitPurchase bool

	// SplitSavingsThreshold is the relative cost margin within which a
	// single sufficient world beats a computed split.
	SplitSavingsThreshold float64
}

// WithDefaults returns a copy of Config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	cfg := c
	if cfg.MaxPriceMultiplier <= 0 {
		cfg.MaxPriceMultiplier = DefaultMaxPriceMultiplier
	}
	if cfg.SplitSavingsThreshold <= 0 {
		cfg.SplitSavingsThreshold = DefaultSplitSavingsThreshold
	}
	return cfg
}

// Options configures optimizer behavior that is not purchase policy.
type Options struct {
	Logger func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// WorldSummary is one world's purchase offer for one material.
type WorldSummary struct {
	World string `json:"world"`

	// Listings are the accepted, consumed stacks in ascending price order.
	Listings []market.Listing `json:"listings"`

	// Excluded holds listings above the fraud threshold. They never
	// contribute to totals.
	Excluded []market.Listing `json:"excluded,omitempty"`

	// Alternatives are up to two further unused listings worth noting;
	// they do not contribute to totals either.
	Alternatives []market.Listing `json:"alternatives,omitempty"`

	ModePrice     int64   `json:"mode_price"`
	TotalCost     int64   `json:"total_cost"`
	TotalQuantity int     `json:"total_quantity"`
	AveragePrice  float64 `json:"average_price"`

	Sufficient bool `json:"sufficient"`
	Shortfall  int  `json:"shortfall,omitempty"`

	// Score is the single-world value score: total cost when sufficient,
	// +Inf otherwise.
	Score float64 `json:"score"`

	HomeWorld bool `json:"home_world,omitempty"`

	// IsVendor marks the synthetic entry produced by a vendor override.
	IsVendor bool `json:"is_vendor,omitempty"`
}

// SplitAllocation is one world's share of a multi-world split purchase.
type SplitAllocation struct {
	World    string           `json:"world"`
	Quantity int              `json:"quantity"`
	Cost     int64            `json:"cost"`
	Listings []market.Listing `json:"listings"`
}

// DetailedShoppingPlan is the optimizer's output for one material.
type DetailedShoppingPlan struct {
	ItemID         int     `json:"item_id"`
	Name           string  `json:"name"`
	QuantityNeeded int     `json:"quantity_needed"`
	HQ             bool    `json:"hq,omitempty"`
	AveragePriceDC float64 `json:"average_price_dc"`

	Worlds []WorldSummary `json:"worlds"`

	// RecommendedWorld is the chosen single-world purchase, nil when no
	// world has any usable listings.
	RecommendedWorld *WorldSummary `json:"recommended_world,omitempty"`

	// RecommendedSplit is the multi-world allocation, set only when split
	// purchasing is enabled and beats every single world.
	RecommendedSplit []SplitAllocation `json:"recommended_split,omitempty"`

	// Error documents a per-material failure ("no data" on a cache miss).
	// The material still occupies its slot in the result.
	Error string `json:"error,omitempty"`
}

// SplitCost sums the allocation costs of the recommended split.
func (d *DetailedShoppingPlan) SplitCost() int64 {
	return splitCost(d.RecommendedSplit)
}
