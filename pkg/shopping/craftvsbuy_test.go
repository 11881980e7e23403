package shopping

import (
	"testing"

	"github.com/mveldt/craftplan/pkg/plan"
)

// craftVsBuyFixture: a lumber node priced at 300 NQ / 900 HQ whose only
// ingredient costs 80 in total, so crafting saves 220 NQ and 820 HQ.
func craftVsBuyFixture() *plan.CraftingPlan {
	child := &plan.PlanNode{
		ItemID:   2,
		Name:     "Oak Log",
		Quantity: 4,
		Source:   plan.SourceMarketBuyNQ,
		PriceNQ:  20,
	}
	root := &plan.PlanNode{
		ItemID:   1,
		Name:     "Oak Lumber",
		Quantity: 1,
		Source:   plan.SourceCraft,
		CanCraft: true,
		CanBeHQ:  true,
		PriceNQ:  300,
		PriceHQ:  900,
		Children: []*plan.PlanNode{child},
	}
	child.Parent = root

	p := plan.NewCraftingPlan("Oak Lumber", testRegion, "Siren")
	p.Roots = []*plan.PlanNode{root}
	return p
}

func TestAnalyzeCraftVsBuy(t *testing.T) {
	results := AnalyzeCraftVsBuy(craftVsBuyFixture())
	if len(results) != 1 {
		t.Fatalf("expected 1 comparison (root only), got %d", len(results))
	}

	c := results[0]
	if c.CraftCost != 80 {
		t.Errorf("craft cost = %d, want 80", c.CraftCost)
	}
	if c.BuyNQ != 300 || c.BuyHQ != 900 {
		t.Errorf("buy prices = %d/%d, want 300/900", c.BuyNQ, c.BuyHQ)
	}
	if c.RecommendNQ != RecommendCraft || c.SavingsNQ != 220 || !c.SignificantNQ {
		t.Errorf("NQ: %s savings %d significant %v, want craft/220/true", c.RecommendNQ, c.SavingsNQ, c.SignificantNQ)
	}
	if c.RecommendHQ != RecommendCraft || c.SavingsHQ != 820 {
		t.Errorf("HQ: %s savings %d, want craft/820", c.RecommendHQ, c.SavingsHQ)
	}
}

func TestCraftVsBuyPrefersBuyingWhenCheaper(t *testing.T) {
	p := craftVsBuyFixture()
	p.Roots[0].Children[0].PriceNQ = 100 // 4 logs now cost 400

	c := AnalyzeCraftVsBuy(p)[0]
	if c.RecommendNQ != RecommendBuy {
		t.Errorf("NQ recommendation = %s, want buy (400 craft vs 300 buy)", c.RecommendNQ)
	}
	if c.SavingsNQ != -100 {
		t.Errorf("NQ savings = %d, want -100", c.SavingsNQ)
	}
	// HQ at 900 still beats crafting for 400.
	if c.RecommendHQ != RecommendCraft {
		t.Errorf("HQ recommendation = %s, want craft", c.RecommendHQ)
	}
}

func TestCraftVsBuyRespectsChildSources(t *testing.T) {
	// A crafted child contributes its own ingredients' costs, not its
	// market price.
	grand := &plan.PlanNode{
		ItemID:   3,
		Name:     "Oak Branch",
		Quantity: 8,
		Source:   plan.SourceMarketBuyNQ,
		PriceNQ:  5,
	}
	child := &plan.PlanNode{
		ItemID:   2,
		Name:     "Oak Log",
		Quantity: 4,
		Source:   plan.SourceCraft,
		CanCraft: true,
		PriceNQ:  20,
		Children: []*plan.PlanNode{grand},
	}
	root := &plan.PlanNode{
		ItemID:   1,
		Name:     "Oak Lumber",
		Quantity: 1,
		Source:   plan.SourceCraft,
		CanCraft: true,
		PriceNQ:  300,
		Children: []*plan.PlanNode{child},
	}
	p := plan.NewCraftingPlan("Oak Lumber", testRegion, "Siren")
	p.Roots = []*plan.PlanNode{root}

	results := AnalyzeCraftVsBuy(p)
	if len(results) != 2 {
		t.Fatalf("expected comparisons for both crafted nodes, got %d", len(results))
	}
	if results[0].CraftCost != 40 {
		t.Errorf("root craft cost = %d, want 40 (8 branches at 5)", results[0].CraftCost)
	}

	// Flip the child to a market buy: the root's craft cost becomes the
	// child's own price.
	child.Source = plan.SourceMarketBuyNQ
	results = AnalyzeCraftVsBuy(p)
	if len(results) != 1 {
		t.Fatalf("purchase boundary must not be compared: %d results", len(results))
	}
	if results[0].CraftCost != 80 {
		t.Errorf("root craft cost = %d, want 80 (4 logs at 20)", results[0].CraftCost)
	}
}

func TestCraftVsBuyMissingMarketPrice(t *testing.T) {
	p := craftVsBuyFixture()
	p.Roots[0].PriceNQ = 0
	p.Roots[0].PriceHQ = 0

	c := AnalyzeCraftVsBuy(p)[0]
	if c.RecommendNQ != RecommendCraft {
		t.Errorf("no market price: crafting wins by default, got %s", c.RecommendNQ)
	}
	if c.RecommendHQ != "" {
		t.Errorf("no HQ price: no HQ recommendation, got %s", c.RecommendHQ)
	}
}
