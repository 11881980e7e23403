package shopping

import (
	"math"

	"github.com/mveldt/craftplan/pkg/market"
)

// maxAlternatives is how many unused listings a summary keeps for display.
const maxAlternatives = 2

// summarizeWorld computes one world's purchase offer for a needed quantity.
//
// Listings above the fraud threshold (mode price times the configured
// multiplier) are moved to Excluded; the scan keeps going, so a single
// manipulated stack never hides cheaper legitimate ones behind it. The
// remaining listings are consumed greedily in ascending price order.
// Stacks are atomic: a consumed listing contributes its entire quantity
// and cost even when that overshoots the need.
func summarizeWorld(world string, listings []market.Listing, needed int, cfg Config) WorldSummary {
	s := WorldSummary{World: world}
	if len(listings) == 0 || needed <= 0 {
		s.Shortfall = needed
		s.Score = math.Inf(1)
		return s
	}

	sorted := sortedByPrice(listings)
	s.ModePrice = modePrice(sorted)
	threshold := float64(s.ModePrice) * cfg.MaxPriceMultiplier

	var candidates []market.Listing
	for _, l := range sorted {
		if float64(l.PricePerUnit) > threshold {
			s.Excluded = append(s.Excluded, l)
			continue
		}
		candidates = append(candidates, l)
	}

	remaining := needed
	for _, l := range candidates {
		if remaining <= 0 {
			if len(s.Alternatives) < maxAlternatives {
				s.Alternatives = append(s.Alternatives, l)
			}
			continue
		}
		s.Listings = append(s.Listings, l)
		s.TotalQuantity += int(l.Quantity)
		s.TotalCost += l.Cost()
		remaining -= int(l.Quantity)
	}

	if s.TotalQuantity > 0 {
		s.AveragePrice = float64(s.TotalCost) / float64(s.TotalQuantity)
	}
	s.Sufficient = s.TotalQuantity >= needed
	if !s.Sufficient {
		s.Shortfall = needed - s.TotalQuantity
	}
	s.Score = singleWorldScore(s)
	return s
}

// filterQuality keeps only the listings matching the requested quality:
// HQ-only when hq is set, everything otherwise (an NQ need is satisfied by
// any listing).
func filterQuality(listings []market.Listing, hq bool) []market.Listing {
	if !hq {
		return listings
	}
	var out []market.Listing
	for _, l := range listings {
		if l.HQ {
			out = append(out, l)
		}
	}
	return out
}
