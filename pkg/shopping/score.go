package shopping

import "math"

// singleWorldScore ranks a world for a one-stop purchase: total cost when
// the world can fully satisfy demand, +Inf otherwise. An insufficient world
// must never outrank a sufficient one on price alone.
func singleWorldScore(s WorldSummary) float64 {
	if !s.Sufficient {
		return math.Inf(1)
	}
	return float64(s.TotalCost)
}

// splitScore ranks a world for partial allocation: mode price divided by
// the capped stock ratio. In split mode only a fraction of a world's stock
// is needed, so raw total cost is not comparable across worlds; what
// matters is a low typical price and enough relative stock to be worth a
// stop.
func splitScore(s WorldSummary, needed int) float64 {
	if needed <= 0 || s.ModePrice <= 0 {
		return math.Inf(1)
	}
	ratio := math.Min(float64(s.TotalQuantity)/float64(needed), 1)
	if ratio <= 0 {
		return math.Inf(1)
	}
	return float64(s.ModePrice) / ratio
}
