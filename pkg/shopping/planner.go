package shopping

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/mveldt/craftplan/pkg/market"
	"github.com/mveldt/craftplan/pkg/plan"
	"github.com/mveldt/craftplan/pkg/worlds"
)

// errNoData is the documented per-material failure for a market cache miss.
const errNoData = "no data"

// errInsufficientStock marks a recommendation made despite every world
// falling short of the needed quantity.
const errInsufficientStock = "insufficient stock across all worlds"

// Planner computes shopping plans from the market cache and world status
// data. It performs no network I/O of its own.
type Planner struct {
	market market.Provider
	worlds worlds.Provider
	cfg    Config
}

// NewPlanner creates a Planner over the given providers.
func NewPlanner(m market.Provider, w worlds.Provider, cfg Config) *Planner {
	return &Planner{market: m, worlds: w, cfg: cfg.WithDefaults()}
}

// PlanShopping computes a single-world recommendation per material. Market
// data must already be cached for every (item, region) pair; a miss yields
// that material's plan with Error set rather than failing the batch.
//
// Cancellation is cooperative and checked between materials.
func (pl *Planner) PlanShopping(ctx context.Context, materials []plan.MaterialAggregate, region, homeWorld string, blacklist []string, opts Options) ([]DetailedShoppingPlan, error) {
	return pl.planAll(ctx, materials, region, homeWorld, blacklist, false, opts)
}

// PlanShoppingSplit is the split-aware variant of PlanShopping: when no
// single world can satisfy a material's demand it additionally computes a
// multi-world allocation, subject to the contingency rule.
func (pl *Planner) PlanShoppingSplit(ctx context.Context, materials []plan.MaterialAggregate, region, homeWorld string, blacklist []string, opts Options) ([]DetailedShoppingPlan, error) {
	return pl.planAll(ctx, materials, region, homeWorld, blacklist, true, opts)
}

func (pl *Planner) planAll(ctx context.Context, materials []plan.MaterialAggregate, region, homeWorld string, blacklist []string, split bool, opts Options) ([]DetailedShoppingPlan, error) {
	opts = opts.WithDefaults()

	blocked := make(map[string]bool, len(blacklist))
	for _, w := range blacklist {
		blocked[strings.ToLower(w)] = true
	}

	plans := make([]DetailedShoppingPlan, 0, len(materials))
	for _, m := range materials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := pl.planMaterial(ctx, m, region, homeWorld, blocked, split)
		if p.Error != "" {
			opts.Logger("shopping for item %d (%s): %s", m.ItemID, m.Name, p.Error)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// planMaterial computes one material's shopping plan. All failure modes are
// converted to the plan's Error field.
func (pl *Planner) planMaterial(ctx context.Context, m plan.MaterialAggregate, region, homeWorld string, blocked map[string]bool, split bool) DetailedShoppingPlan {
	dsp := DetailedShoppingPlan{
		ItemID:         m.ItemID,
		Name:           m.Name,
		QuantityNeeded: m.Quantity,
		HQ:             m.HQ,
	}

	board, ok, err := pl.market.GetCached(ctx, m.ItemID, region)
	if err != nil {
		dsp.Error = err.Error()
		return dsp
	}
	if !ok || board == nil || len(board.ByWorld) == 0 {
		dsp.Error = errNoData
		pl.applyVendorOverride(&dsp, m)
		return dsp
	}

	for world, listings := range board.ByWorld {
		if !pl.worldUsable(world, homeWorld, blocked) {
			continue
		}
		usable := filterQuality(listings, m.HQ)
		if len(usable) == 0 {
			continue
		}
		s := summarizeWorld(world, usable, m.Quantity, pl.cfg)
		s.HomeWorld = strings.EqualFold(world, homeWorld)
		dsp.Worlds = append(dsp.Worlds, s)
	}

	sort.SliceStable(dsp.Worlds, func(i, j int) bool {
		if dsp.Worlds[i].Score != dsp.Worlds[j].Score {
			return dsp.Worlds[i].Score < dsp.Worlds[j].Score
		}
		return dsp.Worlds[i].World < dsp.Worlds[j].World
	})
	dsp.AveragePriceDC = dataCenterAverage(dsp.Worlds)

	switch {
	case len(dsp.Worlds) == 0:
		// A cached board with no usable listings (all filtered, or no HQ
		// stock for an HQ need) reads the same as a miss to the caller.
		dsp.Error = errNoData

	case !math.IsInf(dsp.Worlds[0].Score, 1):
		recommended := dsp.Worlds[0]
		dsp.RecommendedWorld = &recommended
		if split {
			// A sufficient world exists, but a multi-world split might
			// still be meaningfully cheaper. The contingency rule keeps the
			// single world whenever its cost is within the configured
			// margin of the split's.
			candidate := splitPurchase(dsp.Worlds, m.Quantity)
			if allocated(candidate) >= m.Quantity {
				if keepSingleWorld(dsp.Worlds, splitCost(candidate), pl.cfg) == nil {
					dsp.RecommendedSplit = candidate
				}
			}
		}

	default:
		// No world is sufficient on its own. A split allocation may still
		// cover the need; otherwise fall back to the best partial offer and
		// say so, rather than recommending nothing.
		if split {
			dsp.RecommendedSplit = splitPurchase(dsp.Worlds, m.Quantity)
		}
		if allocated(dsp.RecommendedSplit) < m.Quantity {
			dsp.Error = errInsufficientStock
		}
		if dsp.RecommendedSplit == nil {
			dsp.RecommendedWorld = bestPartialWorld(dsp.Worlds, m.Quantity)
		}
	}

	pl.applyVendorOverride(&dsp, m)
	return dsp
}

// worldUsable applies the travel filters: congested and blacklisted worlds
// are skipped entirely, unless the world is the caller's own home world.
func (pl *Planner) worldUsable(world, homeWorld string, blocked map[string]bool) bool {
	if strings.EqualFold(world, homeWorld) {
		return true
	}
	if blocked[strings.ToLower(world)] {
		return false
	}
	return !pl.worlds.GetStatus(world).Congested()
}

// applyVendorOverride forces a vendor pseudo-world as the recommendation
// for a material the user has pinned to vendor purchase. Market world
// options stay in place for comparison.
func (pl *Planner) applyVendorOverride(dsp *DetailedShoppingPlan, m plan.MaterialAggregate) {
	if m.Source != plan.SourceVendorBuy || m.VendorPrice <= 0 {
		return
	}

	name := m.VendorName
	if name == "" {
		name = "Vendor"
	}
	cost := m.VendorPrice * int64(m.Quantity)
	vendor := WorldSummary{
		World:         name,
		ModePrice:     m.VendorPrice,
		TotalCost:     cost,
		TotalQuantity: m.Quantity, // vendors have unlimited notional stock
		AveragePrice:  float64(m.VendorPrice),
		Sufficient:    true,
		Score:         float64(cost),
		IsVendor:      true,
	}

	dsp.RecommendedWorld = &vendor
	dsp.RecommendedSplit = nil
	if dsp.Error == errInsufficientStock || dsp.Error == errNoData {
		dsp.Error = ""
	}
}

// bestPartialWorld picks the least-bad insufficient world by split score.
func bestPartialWorld(summaries []WorldSummary, needed int) *WorldSummary {
	var (
		best      *WorldSummary
		bestScore = math.Inf(1)
	)
	for i := range summaries {
		s := &summaries[i]
		if s.TotalQuantity <= 0 {
			continue
		}
		score := splitScore(*s, needed)
		if score < bestScore || (score == bestScore && best != nil && s.World < best.World) {
			best = s
			bestScore = score
		}
	}
	if best == nil {
		return nil
	}
	recommended := *best
	return &recommended
}

// dataCenterAverage is the quantity-weighted average unit price over every
// accepted listing across the summarized worlds.
func dataCenterAverage(summaries []WorldSummary) float64 {
	var (
		cost int64
		qty  int
	)
	for _, s := range summaries {
		cost += s.TotalCost
		qty += s.TotalQuantity
	}
	if qty == 0 {
		return 0
	}
	return float64(cost) / float64(qty)
}
