package shopping

import (
	"math"
	"sort"
)

// splitPurchase allocates the needed quantity across several worlds when no
// single world can satisfy it alone.
//
// Worlds are ranked by split score (mode price over stock ratio) and the
// remaining need is allocated greedily in that order. Each allocation's
// cost comes from an independent ascending-price consumption pass over the
// world's own accepted listings, so the split never depends on the
// single-world consumption state computed earlier. Returns nil when no
// world has a finite split score.
func splitPurchase(summaries []WorldSummary, needed int) []SplitAllocation {
	type ranked struct {
		summary WorldSummary
		score   float64
	}

	var worlds []ranked
	for _, s := range summaries {
		if s.IsVendor || s.TotalQuantity <= 0 {
			continue
		}
		score := splitScore(s, needed)
		if math.IsInf(score, 1) {
			continue
		}
		worlds = append(worlds, ranked{summary: s, score: score})
	}
	if len(worlds) == 0 {
		return nil
	}
	sort.SliceStable(worlds, func(i, j int) bool {
		if worlds[i].score != worlds[j].score {
			return worlds[i].score < worlds[j].score
		}
		return worlds[i].summary.World < worlds[j].summary.World
	})

	var (
		split     []SplitAllocation
		remaining = needed
	)
	for _, w := range worlds {
		if remaining <= 0 {
			break
		}
		want := remaining
		if w.summary.TotalQuantity < want {
			want = w.summary.TotalQuantity
		}
		alloc := consumeFor(w.summary, want)
		if alloc.Quantity == 0 {
			continue
		}
		split = append(split, alloc)
		remaining -= alloc.Quantity
	}
	return split
}

// consumeFor buys the cheapest accepted stacks of one world until at least
// want units are obtained. Stacks stay atomic, so the result may overshoot.
func consumeFor(s WorldSummary, want int) SplitAllocation {
	alloc := SplitAllocation{World: s.World}
	for _, l := range s.Listings {
		if alloc.Quantity >= want {
			break
		}
		alloc.Listings = append(alloc.Listings, l)
		alloc.Quantity += int(l.Quantity)
		alloc.Cost += l.Cost()
	}
	return alloc
}

// allocated sums the quantities of a split allocation.
func allocated(split []SplitAllocation) int {
	total := 0
	for _, a := range split {
		total += a.Quantity
	}
	return total
}

// splitCost sums the costs of a split allocation.
func splitCost(split []SplitAllocation) int64 {
	var total int64
	for _, a := range split {
		total += a.Cost
	}
	return total
}

// keepSingleWorld applies the contingency rule: a single sufficient world
// whose total cost is within the configured margin of the split's total
// cost wins, trading a small premium for one-stop shopping.
func keepSingleWorld(summaries []WorldSummary, splitCost int64, cfg Config) *WorldSummary {
	var best *WorldSummary
	for i := range summaries {
		s := &summaries[i]
		if !s.Sufficient || s.IsVendor {
			continue
		}
		if best == nil || s.TotalCost < best.TotalCost {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	if float64(best.TotalCost) <= float64(splitCost)*(1+cfg.SplitSavingsThreshold) {
		return best
	}
	return nil
}
