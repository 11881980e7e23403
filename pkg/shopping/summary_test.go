package shopping

import (
	"math"
	"testing"

	"github.com/mveldt/craftplan/pkg/market"
)

func TestSummarizeWorldFraudFilter(t *testing.T) {
	// Mode price 100, threshold 250: the 100000 listing is excluded but the
	// scan keeps going, so the legitimate stack is still consumed.
	listings := []market.Listing{
		{PricePerUnit: 100, Quantity: 50},
		{PricePerUnit: 100000, Quantity: 9999},
	}
	s := summarizeWorld("Siren", listings, 50, Config{}.WithDefaults())

	if s.ModePrice != 100 {
		t.Errorf("mode price = %d, want 100", s.ModePrice)
	}
	if len(s.Excluded) != 1 || s.Excluded[0].PricePerUnit != 100000 {
		t.Fatalf("excluded = %+v, want the 100000 listing", s.Excluded)
	}
	if s.TotalQuantity != 50 || s.TotalCost != 5000 {
		t.Errorf("totals = %d units / %d gil, want 50 / 5000", s.TotalQuantity, s.TotalCost)
	}
	if !s.Sufficient {
		t.Error("50 units against a need of 50 is sufficient")
	}
}

func TestSummarizeWorldAtomicStacks(t *testing.T) {
	// A stack is bought whole even when it overshoots the need.
	listings := []market.Listing{{PricePerUnit: 100, Quantity: 10}}
	s := summarizeWorld("Siren", listings, 5, Config{}.WithDefaults())

	if s.TotalQuantity != 10 {
		t.Errorf("quantity = %d, want the full stack of 10", s.TotalQuantity)
	}
	if s.TotalCost != 1000 {
		t.Errorf("cost = %d, want 1000", s.TotalCost)
	}
}

func TestSummarizeWorldAlternatives(t *testing.T) {
	listings := []market.Listing{
		{PricePerUnit: 100, Quantity: 5},
		{PricePerUnit: 110, Quantity: 5},
		{PricePerUnit: 120, Quantity: 5},
		{PricePerUnit: 130, Quantity: 5},
	}
	s := summarizeWorld("Siren", listings, 5, Config{}.WithDefaults())

	if len(s.Listings) != 1 {
		t.Fatalf("accepted %d listings, want 1", len(s.Listings))
	}
	if len(s.Alternatives) != maxAlternatives {
		t.Errorf("alternatives = %d, want %d", len(s.Alternatives), maxAlternatives)
	}
	if s.TotalCost != 500 {
		t.Errorf("alternatives must not contribute to cost: %d", s.TotalCost)
	}
}

func TestSummarizeWorldShortfall(t *testing.T) {
	listings := []market.Listing{{PricePerUnit: 100, Quantity: 3}}
	s := summarizeWorld("Siren", listings, 10, Config{}.WithDefaults())

	if s.Sufficient {
		t.Error("3 units against a need of 10 is not sufficient")
	}
	if s.Shortfall != 7 {
		t.Errorf("shortfall = %d, want 7", s.Shortfall)
	}
	if !math.IsInf(s.Score, 1) {
		t.Errorf("insufficient world must score +Inf, got %v", s.Score)
	}
}

func TestSplitScoreFavorsStockedWorlds(t *testing.T) {
	full := WorldSummary{ModePrice: 100, TotalQuantity: 100}
	thin := WorldSummary{ModePrice: 100, TotalQuantity: 10}

	if splitScore(full, 100) >= splitScore(thin, 100) {
		t.Error("equal mode price: the better-stocked world must score lower")
	}
	if !math.IsInf(splitScore(WorldSummary{ModePrice: 0, TotalQuantity: 5}, 100), 1) {
		t.Error("zero mode price must score +Inf")
	}
	if !math.IsInf(splitScore(WorldSummary{ModePrice: 100}, 100), 1) {
		t.Error("zero stock must score +Inf")
	}
}
