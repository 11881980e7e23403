package metadata

import (
	"encoding/json"
	"testing"
)

func TestResolveVendorsList(t *testing.T) {
	item := &Item{
		ID:   100,
		Name: "Growth Formula",
		Vendors: VendorList{Vendors: []Vendor{
			{Name: "Material Supplier", Location: "Mist", Price: 50, Currency: "gil"},
			{Name: "Scrip Exchange", Location: "Mor Dhona", Price: 20, Currency: "scrip"},
		}},
	}

	vendors := ResolveVendors(item)
	if len(vendors) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(vendors))
	}
}

func TestResolveVendorsRefsFiltersUnreferencedNPCs(t *testing.T) {
	item := &Item{
		ID:      200,
		Name:    "Iron Ore",
		Vendors: VendorRefs{NPCIDs: []int{11, 13}, Price: 18},
		NPCs: []NPCRecord{
			{ID: 11, Name: "Soemrwyb", Location: "Limsa Lominsa"},
			{ID: 12, Name: "Unrelated NPC", Location: "Gridania"},
			{ID: 13, Name: "Smydhaemr", Location: "Limsa Lominsa", AltLocations: []string{"Moraby Drydocks"}},
		},
	}

	vendors := ResolveVendors(item)
	if len(vendors) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(vendors))
	}
	for _, v := range vendors {
		if v.Price != 18 {
			t.Errorf("ref vendors should carry the root-level price, got %d", v.Price)
		}
		if v.Currency != "gil" {
			t.Errorf("ref vendors are gil vendors, got %q", v.Currency)
		}
		if v.Name == "Unrelated NPC" {
			t.Error("unreferenced NPC record must not become a vendor")
		}
	}
}

func TestResolveVendorsNone(t *testing.T) {
	item := &Item{ID: 300, Name: "Rare Drop", Vendors: NoVendorData{}}
	if vendors := ResolveVendors(item); vendors != nil {
		t.Errorf("expected no vendors, got %v", vendors)
	}
	if vendors := ResolveVendors(nil); vendors != nil {
		t.Errorf("nil item should yield no vendors, got %v", vendors)
	}
}

func TestCheapestGilVendor(t *testing.T) {
	vendors := []Vendor{
		{Name: "A", Price: 120, Currency: "gil"},
		{Name: "B", Price: 90, Currency: "gil"},
		{Name: "C", Price: 10, Currency: "tomestone"},
	}
	best, ok := CheapestGilVendor(vendors)
	if !ok {
		t.Fatal("expected a gil vendor")
	}
	if best.Name != "B" {
		t.Errorf("cheapest gil vendor should be B, got %s", best.Name)
	}

	if _, ok := CheapestGilVendor([]Vendor{{Name: "C", Price: 10, Currency: "seals"}}); ok {
		t.Error("non-gil vendors must never be selected")
	}
}

func TestNeverHQ(t *testing.T) {
	cases := []struct {
		id   int
		name string
		want bool
	}{
		{8, "Fire Crystal", true},
		{5057, "Fire Crystal", true}, // name marker alone is enough
		{5057, "Lightning Shard", true},
		{5057, "Ice Cluster", true},
		{27744, "Chiaroglow Aethersand", true},
		{5057, "Copper Ingot", false},
		{2, "Weird Data Row", true}, // reserved id range alone is enough
	}
	for _, tc := range cases {
		if got := NeverHQ(tc.id, tc.name); got != tc.want {
			t.Errorf("NeverHQ(%d, %q) = %v, want %v", tc.id, tc.name, got, tc.want)
		}
	}
}

func TestLowestLevelRecipeTieBreak(t *testing.T) {
	recipes := []Recipe{
		{ID: 901, Level: 15, Yield: 1},
		{ID: 407, Level: 10, Yield: 3},
		{ID: 204, Level: 10, Yield: 1},
	}
	r, ok := LowestLevelRecipe(recipes)
	if !ok {
		t.Fatal("expected a recipe")
	}
	if r.ID != 204 {
		t.Errorf("tie at level 10 should resolve to lowest id 204, got %d", r.ID)
	}

	if _, ok := LowestLevelRecipe(nil); ok {
		t.Error("no recipes should report ok=false")
	}
}

func TestItemJSONRoundTripVendorShapes(t *testing.T) {
	cases := []struct {
		name string
		item *Item
	}{
		{"list", &Item{ID: 1, Name: "A", Vendors: VendorList{Vendors: []Vendor{{Name: "V", Price: 5, Currency: "gil"}}}}},
		{"refs", &Item{ID: 2, Name: "B", Vendors: VendorRefs{NPCIDs: []int{7}, Price: 12}, NPCs: []NPCRecord{{ID: 7, Name: "N"}}}},
		{"none", &Item{ID: 3, Name: "C", Vendors: NoVendorData{}}},
	}

	for _, tc := range cases {
		data, err := json.Marshal(tc.item)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		var back Item
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}

		switch tc.name {
		case "list":
			if _, ok := back.Vendors.(VendorList); !ok {
				t.Errorf("list shape lost: %T", back.Vendors)
			}
		case "refs":
			refs, ok := back.Vendors.(VendorRefs)
			if !ok {
				t.Fatalf("refs shape lost: %T", back.Vendors)
			}
			if refs.Price != 12 {
				t.Errorf("refs price lost: %d", refs.Price)
			}
		case "none":
			if _, ok := back.Vendors.(NoVendorData); !ok {
				t.Errorf("none shape lost: %T", back.Vendors)
			}
		}
	}
}
