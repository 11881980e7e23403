package plan

import (
	"context"
	"testing"

	"github.com/mveldt/craftplan/pkg/metadata"
)

func TestMaterialsSumsAcrossPositions(t *testing.T) {
	// Two tables: each needs 2 lumber (each 2 logs), 1 varnish and 1 raw
	// log. Oak Log therefore appears at two tree positions - under the
	// lumber node (8) and directly under the table (2) - and must sum.
	p := buildOne(t, Target{ItemID: 1002, Name: "Walnut Table", Quantity: 2})

	materials := Materials(p)
	byID := make(map[int]MaterialAggregate)
	for _, m := range materials {
		byID[m.ItemID] = m
	}

	if got := byID[1001].Quantity; got != 10 {
		t.Errorf("log quantity = %d, want 10 (8 via lumber + 2 direct)", got)
	}
	if got := byID[1003].Quantity; got != 2 {
		t.Errorf("varnish quantity = %d, want 2", got)
	}
	if _, ok := byID[1000]; ok {
		t.Error("crafted lumber is not a purchasable material")
	}
}

func TestMaterialsStopsAtPurchaseBoundary(t *testing.T) {
	p := buildOne(t, Target{ItemID: 1002, Name: "Walnut Table", Quantity: 1})
	root := p.Roots[0]

	// Flip lumber to a market buy; its log children must disappear from
	// the aggregate even though the child nodes still exist.
	lumber := findChild(t, root, 1000)
	lumber.Source = SourceMarketBuyNQ
	if len(lumber.Children) == 0 {
		t.Fatal("test setup: lumber should keep its children after the flip")
	}

	// Only the direct log position (1 per table) remains; the 2 logs under
	// the lumber node must not be counted.
	materials := Materials(p)
	for _, m := range materials {
		if m.ItemID == 1001 && m.Quantity != 1 {
			t.Errorf("aggregation descended past a purchase boundary: log quantity %d, want 1", m.Quantity)
		}
	}

	var lumberAgg *MaterialAggregate
	for i := range materials {
		if materials[i].ItemID == 1000 {
			lumberAgg = &materials[i]
		}
	}
	if lumberAgg == nil {
		t.Fatal("purchase-boundary node must appear as a material")
	}
	if lumberAgg.Quantity != 2 {
		t.Errorf("lumber quantity = %d, want 2", lumberAgg.Quantity)
	}
}

func TestMaterialsVendorPricing(t *testing.T) {
	p := buildOne(t, Target{ItemID: 1002, Name: "Walnut Table", Quantity: 1})

	materials := Materials(p)
	for _, m := range materials {
		if m.ItemID != 1003 {
			continue
		}
		if m.Source != SourceVendorBuy {
			t.Errorf("varnish source = %s, want vendor", m.Source)
		}
		if m.UnitPrice != 40 || m.TotalCost != 40 {
			t.Errorf("varnish pricing = %d/%d, want 40/40", m.UnitPrice, m.TotalCost)
		}
		if m.VendorName != "Material Supplier" {
			t.Errorf("vendor name = %q", m.VendorName)
		}
		return
	}
	t.Fatal("varnish missing from materials")
}

func TestMaterialsMixedSourceCosting(t *testing.T) {
	// The same item pinned to a vendor at one position and the market at
	// another: each occurrence is costed by its own source, and the
	// aggregate keeps the first occurrence's source and unit price.
	vendor := &PlanNode{
		ItemID: 1003, Name: "Varnish", Quantity: 2,
		Source: SourceVendorBuy, VendorPrice: 50, PriceNQ: 20,
		VendorOptions: []metadata.Vendor{{Name: "Material Supplier", Price: 50, Currency: "gil"}},
	}
	market := &PlanNode{
		ItemID: 1003, Name: "Varnish", Quantity: 3,
		Source: SourceMarketBuyNQ, VendorPrice: 50, PriceNQ: 20,
	}
	root := &PlanNode{
		ItemID: 1, Name: "Lacquered Chest", Quantity: 1, Source: SourceCraft,
		Children: []*PlanNode{vendor, market},
	}
	p := NewCraftingPlan("Lacquered Chest", "Aether", "")
	p.Roots = []*PlanNode{root}

	materials := Materials(p)
	if len(materials) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(materials))
	}
	agg := materials[0]
	if agg.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", agg.Quantity)
	}
	if agg.Source != SourceVendorBuy {
		t.Errorf("source = %s, want the first occurrence's (vendor)", agg.Source)
	}
	if agg.UnitPrice != 50 {
		t.Errorf("unit price = %d, want the first occurrence's 50", agg.UnitPrice)
	}
	if agg.TotalCost != 160 {
		t.Errorf("total cost = %d, want 160 (50x2 vendor + 20x3 market)", agg.TotalCost)
	}
}

func TestMaterialsFirstAppearanceOrder(t *testing.T) {
	p := buildOne(t, Target{ItemID: 1002, Name: "Walnut Table", Quantity: 1})

	first := Materials(p)
	second := Materials(p)
	if len(first) != len(second) {
		t.Fatalf("aggregation not stable: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ItemID != second[i].ItemID {
			t.Errorf("order not deterministic at %d: %d vs %d", i, first[i].ItemID, second[i].ItemID)
		}
	}
}

func TestFetchVendorPricesBatchFallback(t *testing.T) {
	provider := &failingBatchProvider{inner: fixtureProvider()}
	b := NewBuilder(provider)
	p, err := b.BuildPlan(context.Background(), []Target{{ItemID: 1002, Name: "Walnut Table", Quantity: 1}}, "Aether", "", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	// Wipe vendor data so the pass has observable work to do.
	p.Walk(func(n *PlanNode) bool {
		n.VendorOptions = nil
		n.VendorPrice = 0
		return true
	})

	if err := FetchVendorPrices(context.Background(), provider, p, Options{}); err != nil {
		t.Fatalf("FetchVendorPrices: %v", err)
	}
	if !provider.batchCalled {
		t.Error("batch endpoint should be tried first")
	}

	varnish := findChild(t, p.Roots[0], 1003)
	if varnish.VendorPrice != 40 {
		t.Errorf("sequential fallback did not restore vendor price: %d", varnish.VendorPrice)
	}
}

// failingBatchProvider fails every batch call but serves single fetches.
type failingBatchProvider struct {
	inner       *metadata.StaticProvider
	batchCalled bool
}

func (f *failingBatchProvider) GetItem(ctx context.Context, id int) (*metadata.Item, error) {
	return f.inner.GetItem(ctx, id)
}

func (f *failingBatchProvider) GetItems(ctx context.Context, ids []int) (map[int]*metadata.Item, error) {
	f.batchCalled = true
	return nil, context.DeadlineExceeded
}
