package plan

import (
	"context"
	"strings"
	"testing"

	"github.com/mveldt/craftplan/pkg/metadata"
)

// fixtureProvider builds a small item universe:
//
//	1000 Oak Lumber      craft (yield 1): 2x Oak Log
//	1001 Oak Log         gatherable, no vendor
//	1002 Walnut Table    craft (yield 1): 2x Oak Lumber, 1x Varnish, 1x Oak Log
//	1003 Varnish         vendor (gil)
//	1004 Maple Syrup     craft level 3 (yield 3): 4 distinct inputs -> commodity
//	2000 Airship Hull    company craft: 10x Oak Lumber, 5x Varnish per phase
//	8    Fire Crystal    crystal id range, no recipe
func fixtureProvider() *metadata.StaticProvider {
	return metadata.NewStaticProvider([]*metadata.Item{
		{
			ID: 1000, Name: "Oak Lumber", Tradeable: true, Vendors: metadata.NoVendorData{},
			Recipes: []metadata.Recipe{{
				ID: 10, Level: 20, Job: "CRP", Yield: 1,
				Ingredients: []metadata.Ingredient{{ItemID: 1001, Name: "Oak Log", Amount: 2}},
			}},
		},
		{ID: 1001, Name: "Oak Log", Tradeable: true, Vendors: metadata.NoVendorData{}},
		{
			ID: 1002, Name: "Walnut Table", Tradeable: true, Vendors: metadata.NoVendorData{},
			Recipes: []metadata.Recipe{{
				ID: 11, Level: 30, Job: "CRP", Yield: 1,
				Ingredients: []metadata.Ingredient{
					{ItemID: 1000, Name: "Oak Lumber", Amount: 2},
					{ItemID: 1003, Name: "Varnish", Amount: 1},
					{ItemID: 1001, Name: "Oak Log", Amount: 1},
				},
			}},
		},
		{
			ID: 1003, Name: "Varnish", Tradeable: true,
			Vendors: metadata.VendorList{Vendors: []metadata.Vendor{
				{Name: "Material Supplier", Location: "Mist", Price: 40, Currency: "gil"},
			}},
		},
		{
			ID: 1004, Name: "Maple Syrup", Tradeable: true, Vendors: metadata.NoVendorData{},
			Recipes: []metadata.Recipe{{
				ID: 12, Level: 3, Job: "CUL", Yield: 3,
				Ingredients: []metadata.Ingredient{
					{ItemID: 1001, Name: "Oak Log", Amount: 1},
					{ItemID: 1005, Name: "Water", Amount: 1},
					{ItemID: 1006, Name: "Sugar", Amount: 1},
					{ItemID: 1007, Name: "Salt", Amount: 1},
				},
			}},
		},
		{ID: 1005, Name: "Water", Tradeable: true, Vendors: metadata.NoVendorData{}},
		{ID: 1006, Name: "Sugar", Tradeable: true, Vendors: metadata.NoVendorData{}},
		{ID: 1007, Name: "Salt", Tradeable: true, Vendors: metadata.NoVendorData{}},
		{
			ID: 2000, Name: "Airship Hull", Tradeable: false, Vendors: metadata.NoVendorData{},
			CompanyCraft: &metadata.CompanyCraft{Phases: []metadata.CraftPhase{
				{Ingredients: []metadata.Ingredient{{ItemID: 1000, Name: "Oak Lumber", Amount: 10}}},
				{Ingredients: []metadata.Ingredient{{ItemID: 1003, Name: "Varnish", Amount: 5}}},
			}},
		},
		{ID: 8, Name: "Fire Crystal", Tradeable: true, Vendors: metadata.NoVendorData{}},
	})
}

func buildOne(t *testing.T, target Target) *CraftingPlan {
	t.Helper()
	b := NewBuilder(fixtureProvider())
	p, err := b.BuildPlan(context.Background(), []Target{target}, "Aether", "Siren", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(p.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(p.Roots))
	}
	return p
}

func findChild(t *testing.T, n *PlanNode, itemID int) *PlanNode {
	t.Helper()
	for _, c := range n.Children {
		if c.ItemID == itemID {
			return c
		}
	}
	t.Fatalf("node %d has no child %d", n.ItemID, itemID)
	return nil
}

func TestIngredientQuantityScaling(t *testing.T) {
	// 5 lumber at yield 1 needs 5 crafts; each craft takes 2 logs.
	p := buildOne(t, Target{ItemID: 1000, Name: "Oak Lumber", Quantity: 5})
	root := p.Roots[0]

	if root.Source != SourceCraft {
		t.Errorf("craftable root must default to craft, got %s", root.Source)
	}
	log := findChild(t, root, 1001)
	if log.Quantity != 10 {
		t.Errorf("log quantity = %d, want 10", log.Quantity)
	}
	if log.Parent != root {
		t.Error("child's parent back-reference not set")
	}
}

func TestYieldReducesCraftCount(t *testing.T) {
	// 5 syrup at yield 3 needs ceil(5/3) = 2 crafts; each input amount 1.
	p := buildOne(t, Target{ItemID: 1004, Name: "Maple Syrup", Quantity: 5})
	root := p.Roots[0]
	for _, child := range root.Children {
		if child.Quantity != 2 {
			t.Errorf("child %s quantity = %d, want 2", child.Name, child.Quantity)
		}
	}
}

func TestCraftCount(t *testing.T) {
	cases := []struct{ qty, yield, want int }{
		{5, 1, 5},
		{5, 3, 2},
		{6, 3, 2},
		{1, 99, 1},
		{7, 0, 7}, // yield is clamped to at least 1
	}
	for _, tc := range cases {
		if got := craftCount(tc.qty, tc.yield); got != tc.want {
			t.Errorf("craftCount(%d, %d) = %d, want %d", tc.qty, tc.yield, got, tc.want)
		}
	}
}

func TestSmartDefaults(t *testing.T) {
	p := buildOne(t, Target{ItemID: 1002, Name: "Walnut Table", Quantity: 1})
	root := p.Roots[0]

	// Vendor wins for the varnish input.
	varnish := findChild(t, root, 1003)
	if varnish.Source != SourceVendorBuy {
		t.Errorf("vendor-sold input should default to vendor, got %s", varnish.Source)
	}
	if varnish.VendorPrice != 40 {
		t.Errorf("vendor price = %d, want 40", varnish.VendorPrice)
	}

	// Mid-level recipe with few inputs stays craft.
	lumber := findChild(t, root, 1000)
	if lumber.Source != SourceCraft {
		t.Errorf("lumber should default to craft, got %s", lumber.Source)
	}

	// Leaves with no recipe default to market.
	log := findChild(t, lumber, 1001)
	if log.Source != SourceMarketBuyNQ {
		t.Errorf("plain leaf should default to market NQ, got %s", log.Source)
	}
}

func TestCommodityRecipeDefaultsToMarket(t *testing.T) {
	// Syrup is level 3 with 4 inputs: below the commodity level with more
	// than three children, so as a child it defaults to a market buy.
	b := NewBuilder(fixtureProvider())
	bc := &buildContext{
		ctx:   context.Background(),
		meta:  b.meta,
		items: make(map[int]itemResult),
		log:   func(string, ...any) {},
	}
	root, err := bc.expandTarget(Target{ItemID: 1004, Name: "Maple Syrup", Quantity: 1})
	if err != nil {
		t.Fatalf("expandTarget: %v", err)
	}
	// As a root it is exempt and stays craft.
	if root.Source != SourceCraft {
		t.Errorf("root exemption violated: %s", root.Source)
	}

	item, _ := b.meta.GetItem(context.Background(), 1004)
	node := &PlanNode{ItemID: 1004, RecipeLevel: 3, CanCraft: true}
	if got := defaultSource(node, item, false, false); got != SourceMarketBuyNQ {
		t.Errorf("commodity recipe should default to market as a child, got %s", got)
	}
}

func TestCompanyCraftFlattensPhases(t *testing.T) {
	p := buildOne(t, Target{ItemID: 2000, Name: "Airship Hull", Quantity: 2})
	root := p.Roots[0]

	if !root.CanCraft || root.Yield != 1 {
		t.Errorf("company craft root should be craftable with yield 1: %+v", root)
	}
	if len(root.Children) != 2 {
		t.Fatalf("phases should flatten to 2 children, got %d", len(root.Children))
	}

	// No yield scaling: quantities multiply by the node quantity alone.
	lumber := findChild(t, root, 1000)
	if lumber.Quantity != 20 {
		t.Errorf("lumber quantity = %d, want 20", lumber.Quantity)
	}
	varnish := findChild(t, root, 1003)
	if varnish.Quantity != 10 {
		t.Errorf("varnish quantity = %d, want 10", varnish.Quantity)
	}
}

func TestCompanyCraftPrecedesOrdinaryRecipe(t *testing.T) {
	// An item carrying both shapes expands through the company craft.
	provider := metadata.NewStaticProvider([]*metadata.Item{
		{
			ID: 3000, Name: "Submersible Hull", Vendors: metadata.NoVendorData{},
			Recipes: []metadata.Recipe{{
				ID: 30, Level: 50, Yield: 1,
				Ingredients: []metadata.Ingredient{{ItemID: 1000, Name: "Oak Lumber", Amount: 3}},
			}},
			CompanyCraft: &metadata.CompanyCraft{Phases: []metadata.CraftPhase{
				{Ingredients: []metadata.Ingredient{{ItemID: 3001, Name: "Bronze Plate", Amount: 5}}},
			}},
		},
		{ID: 3001, Name: "Bronze Plate", Tradeable: true, Vendors: metadata.NoVendorData{}},
	})

	b := NewBuilder(provider)
	p, err := b.BuildPlan(context.Background(), []Target{{ItemID: 3000, Name: "Submersible Hull", Quantity: 2}}, "Aether", "", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	root := p.Roots[0]
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child from the company craft, got %d", len(root.Children))
	}
	plate := findChild(t, root, 3001)
	if plate.Quantity != 10 {
		t.Errorf("plate quantity = %d, want 10 (5 per execution, quantity 2)", plate.Quantity)
	}
	for _, c := range root.Children {
		if c.ItemID == 1000 {
			t.Error("ordinary recipe ingredients must not appear when a company craft exists")
		}
	}
}

func TestCrystalCannotBeHQ(t *testing.T) {
	p := buildOne(t, Target{ItemID: 8, Name: "Fire Crystal", Quantity: 99, HQ: true})
	root := p.Roots[0]
	if root.CanBeHQ {
		t.Error("crystals can never be HQ")
	}
	if root.MustBeHQ {
		t.Error("HQ requirement should be dropped for items that cannot be HQ")
	}
}

func TestUnknownItemDegradesToLeaf(t *testing.T) {
	b := NewBuilder(fixtureProvider())
	p, err := b.BuildPlan(context.Background(), []Target{
		{ItemID: 1000, Name: "Oak Lumber", Quantity: 1},
		{ItemID: 4242, Name: "Mystery Item", Quantity: 3},
	}, "Aether", "Siren", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(p.Roots) != 2 {
		t.Fatalf("one failing target must not abort the others: %d roots", len(p.Roots))
	}

	bad := p.Roots[1]
	if bad.CanCraft {
		t.Error("unknown item must be treated as non-craftable")
	}
	if bad.Source != SourceMarketBuyNQ {
		t.Errorf("degraded leaf should default to market NQ, got %s", bad.Source)
	}
	if bad.BuildError == "" {
		t.Error("degraded leaf should carry the fetch error")
	}
	if bad.Quantity != 3 {
		t.Errorf("degraded leaf keeps its quantity: %d", bad.Quantity)
	}
}

func TestInvalidTargetBecomesPlaceholder(t *testing.T) {
	b := NewBuilder(fixtureProvider())
	p, err := b.BuildPlan(context.Background(), []Target{
		{ItemID: 1000, Name: "Oak Lumber", Quantity: -1},
	}, "Aether", "Siren", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	root := p.Roots[0]
	if !strings.Contains(root.Name, "build failed") {
		t.Errorf("placeholder should carry the error in its display name: %q", root.Name)
	}
	if root.Source != SourceMarketBuyNQ || root.CanCraft {
		t.Errorf("placeholder should be a non-craftable market leaf: %+v", root)
	}
}

func TestCycleDetection(t *testing.T) {
	// Two items that require each other.
	provider := metadata.NewStaticProvider([]*metadata.Item{
		{
			ID: 1, Name: "Ouroboros Head", Vendors: metadata.NoVendorData{},
			Recipes: []metadata.Recipe{{
				ID: 1, Level: 50, Yield: 1,
				Ingredients: []metadata.Ingredient{{ItemID: 2, Name: "Ouroboros Tail", Amount: 1}},
			}},
		},
		{
			ID: 2, Name: "Ouroboros Tail", Vendors: metadata.NoVendorData{},
			Recipes: []metadata.Recipe{{
				ID: 2, Level: 50, Yield: 1,
				Ingredients: []metadata.Ingredient{{ItemID: 1, Name: "Ouroboros Head", Amount: 1}},
			}},
		},
	})

	b := NewBuilder(provider)
	p, err := b.BuildPlan(context.Background(), []Target{{ItemID: 1, Name: "Ouroboros Head", Quantity: 1}}, "Aether", "", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	root := p.Roots[0]
	tail := findChild(t, root, 2)
	loop := findChild(t, tail, 1)
	if !loop.IsCircularReference {
		t.Error("revisiting an item on the path must set IsCircularReference")
	}
	if len(loop.Children) != 0 {
		t.Error("cycle node must be truncated")
	}
	if loop.Source != SourceMarketBuyNQ {
		t.Errorf("cycle node defaults to market NQ, got %s", loop.Source)
	}
}

func TestDepthCap(t *testing.T) {
	// A linear chain longer than the cap: item i requires item i+1.
	var items []*metadata.Item
	const chain = 30
	for i := 1; i <= chain; i++ {
		item := &metadata.Item{ID: i, Name: "Link", Vendors: metadata.NoVendorData{}}
		if i < chain {
			item.Recipes = []metadata.Recipe{{
				ID: i, Level: 1, Yield: 1,
				Ingredients: []metadata.Ingredient{{ItemID: i + 1, Name: "Link", Amount: 1}},
			}}
		}
		items = append(items, item)
	}

	b := NewBuilder(metadata.NewStaticProvider(items))
	p, err := b.BuildPlan(context.Background(), []Target{{ItemID: 1, Name: "Link", Quantity: 1}}, "Aether", "", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	depth := 0
	for n := p.Roots[0]; len(n.Children) > 0; n = n.Children[0] {
		depth++
	}
	if depth > MaxDepth+1 {
		t.Errorf("expansion exceeded the depth cap: %d levels", depth)
	}
}

func TestBuildPlanCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder(fixtureProvider())
	_, err := b.BuildPlan(ctx, []Target{{ItemID: 1000, Name: "Oak Lumber", Quantity: 1}}, "Aether", "", Options{})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMetadataFetchedOncePerBuild(t *testing.T) {
	counter := &countingProvider{inner: fixtureProvider(), calls: map[int]int{}}
	b := NewBuilder(counter)

	// Oak Log appears both under the lumber node and directly under the table.
	_, err := b.BuildPlan(context.Background(), []Target{{ItemID: 1002, Name: "Walnut Table", Quantity: 2}}, "Aether", "", Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	for id, n := range counter.calls {
		if n > 1 {
			t.Errorf("item %d fetched %d times, want at most once per build", id, n)
		}
	}
}

// countingProvider counts GetItem calls per item id.
type countingProvider struct {
	inner *metadata.StaticProvider
	calls map[int]int
}

func (c *countingProvider) GetItem(ctx context.Context, id int) (*metadata.Item, error) {
	c.calls[id]++
	return c.inner.GetItem(ctx, id)
}

func (c *countingProvider) GetItems(ctx context.Context, ids []int) (map[int]*metadata.Item, error) {
	return c.inner.GetItems(ctx, ids)
}
