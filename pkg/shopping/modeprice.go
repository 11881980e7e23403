package shopping

import (
	"sort"

	"github.com/mveldt/craftplan/pkg/market"
)

// baselineOutlierFactor discards listings priced above this multiple of the
// cheapest-half baseline before the mode is taken.
const baselineOutlierFactor = 10

// modePrice computes the fraud-resistant "typical" unit price of a set of
// listings.
//
// The listings are sorted ascending by price; the mean of the cheapest half
// (at least one listing) forms a baseline, and anything above ten times the
// baseline is discarded as a manipulation attempt. The mode is then the
// price with the greatest aggregate stack quantity among the survivors,
// ties broken by the lower price. If the discard pass removes everything,
// the three cheapest listings are used instead.
func modePrice(listings []market.Listing) int64 {
	if len(listings) == 0 {
		return 0
	}

	sorted := sortedByPrice(listings)

	half := sorted[:(len(sorted)+1)/2]
	var sum int64
	for _, l := range half {
		sum += l.PricePerUnit
	}
	baseline := float64(sum) / float64(len(half))

	var kept []market.Listing
	for _, l := range sorted {
		if float64(l.PricePerUnit) <= baseline*baselineOutlierFactor {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		n := 3
		if n > len(sorted) {
			n = len(sorted)
		}
		kept = sorted[:n]
	}

	qtyByPrice := make(map[int64]int64)
	for _, l := range kept {
		qtyByPrice[l.PricePerUnit] += l.Quantity
	}

	var (
		mode    int64
		modeQty = int64(-1)
	)
	for price, qty := range qtyByPrice {
		if qty > modeQty || (qty == modeQty && price < mode) {
			mode = price
			modeQty = qty
		}
	}
	return mode
}

// sortedByPrice returns a copy of listings in ascending unit-price order.
// Equal prices keep larger stacks first so consumption prefers fewer buys.
func sortedByPrice(listings []market.Listing) []market.Listing {
	sorted := make([]market.Listing, len(listings))
	copy(sorted, listings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PricePerUnit != sorted[j].PricePerUnit {
			return sorted[i].PricePerUnit < sorted[j].PricePerUnit
		}
		return sorted[i].Quantity > sorted[j].Quantity
	})
	return sorted
}
