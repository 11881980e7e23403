package shopping

import (
	"github.com/mveldt/craftplan/pkg/plan"
)

// significantSavings is the relative margin above which a craft-vs-buy
// difference is flagged as worth acting on.
const significantSavings = 0.10

// Recommendation is the outcome of a craft-vs-buy comparison for one
// quality tier.
type Recommendation string

const (
	RecommendCraft Recommendation = "craft"
	RecommendBuy   Recommendation = "buy"
)

// CraftVsBuy compares crafting one node against buying it outright, per
// quality tier. Prices come from the node snapshots, so ApplyMarketPrices
// should run first.
type CraftVsBuy struct {
	ItemID   int    `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	// CraftCost is the summed effective cost of the node's ingredients,
	// recursively, respecting each ingredient's own chosen source.
	CraftCost int64 `json:"craft_cost"`

	BuyNQ int64 `json:"buy_nq"` // 0 when no NQ market price is known
	BuyHQ int64 `json:"buy_hq"` // 0 when HQ does not exist or is unpriced

	SavingsNQ int64 `json:"savings_nq"` // positive when crafting is cheaper
	SavingsHQ int64 `json:"savings_hq"`

	RecommendNQ Recommendation `json:"recommend_nq,omitempty"`
	RecommendHQ Recommendation `json:"recommend_hq,omitempty"`

	SignificantNQ bool `json:"significant_nq,omitempty"`
	SignificantHQ bool `json:"significant_hq,omitempty"`
}

// AnalyzeCraftVsBuy runs the comparison for every crafted node with
// children in the plan, in tree order.
func AnalyzeCraftVsBuy(p *plan.CraftingPlan) []CraftVsBuy {
	var results []CraftVsBuy
	p.Walk(func(n *plan.PlanNode) bool {
		if n.Source != plan.SourceCraft || len(n.Children) == 0 {
			return true
		}
		results = append(results, compareNode(n))
		return true
	})
	return results
}

// compareNode builds one craft-vs-buy comparison.
func compareNode(n *plan.PlanNode) CraftVsBuy {
	c := CraftVsBuy{
		ItemID:    n.ItemID,
		Name:      n.Name,
		Quantity:  n.Quantity,
		CraftCost: craftCost(n),
	}
	if n.PriceNQ > 0 {
		c.BuyNQ = n.PriceNQ * int64(n.Quantity)
	}
	if n.CanBeHQ && n.PriceHQ > 0 {
		c.BuyHQ = n.PriceHQ * int64(n.Quantity)
	}

	c.RecommendNQ, c.SavingsNQ, c.SignificantNQ = recommend(c.CraftCost, c.BuyNQ)
	if c.BuyHQ > 0 {
		c.RecommendHQ, c.SavingsHQ, c.SignificantHQ = recommend(c.CraftCost, c.BuyHQ)
	}
	return c
}

// craftCost sums the effective costs of a node's ingredients. An
// ingredient that is itself crafted contributes its own ingredients' costs
// recursively; a purchased ingredient contributes its snapshot unit price
// times quantity. Purchase boundaries are never descended past.
func craftCost(n *plan.PlanNode) int64 {
	var total int64
	for _, child := range n.Children {
		total += effectiveCost(child)
	}
	return total
}

// effectiveCost is what one node costs given its current source decision.
func effectiveCost(n *plan.PlanNode) int64 {
	if n.Source == plan.SourceCraft && len(n.Children) > 0 {
		return craftCost(n)
	}
	return purchaseUnitPrice(n) * int64(n.Quantity)
}

// purchaseUnitPrice picks the snapshot price matching the node's source.
func purchaseUnitPrice(n *plan.PlanNode) int64 {
	switch n.Source {
	case plan.SourceVendorBuy:
		return n.VendorPrice
	case plan.SourceMarketBuyHQ:
		return n.PriceHQ
	default:
		return n.PriceNQ
	}
}

// recommend compares crafting against one buy price. A missing buy price
// means the market cannot supply the item, so crafting wins by default and
// the savings are unknowable.
func recommend(craft, buy int64) (Recommendation, int64, bool) {
	if buy <= 0 {
		return RecommendCraft, 0, false
	}
	if craft <= 0 {
		return RecommendBuy, 0, false
	}

	savings := buy - craft
	if savings >= 0 {
		return RecommendCraft, savings, float64(savings) >= float64(buy)*significantSavings
	}
	return RecommendBuy, savings, float64(-savings) >= float64(craft)*significantSavings
}
