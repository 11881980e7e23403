package metadata

import (
	"encoding/json"
	"sort"
	"strings"
)

// Item is the metadata record for a single game item: whether it can be
// traded, how it can be bought from NPC vendors, and how it can be crafted.
type Item struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Icon      int    `json:"icon"`
	Tradeable bool   `json:"tradeable"`

	// Vendors describes NPC vendor availability in one of three shapes.
	// See VendorData.
	Vendors VendorData `json:"-"`

	// NPCs are auxiliary NPC records shipped alongside the item payload.
	// They are only meaningful when referenced by a VendorRefs shape;
	// unreferenced records must not be trusted as vendors for this item.
	NPCs []NPCRecord `json:"npcs,omitempty"`

	Recipes      []Recipe      `json:"recipes,omitempty"`
	CompanyCraft *CompanyCraft `json:"company_craft,omitempty"`
}

// NPCRecord is one auxiliary NPC entry in an item payload.
type NPCRecord struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	AltLocations []string `json:"alt_locations,omitempty"`
}

// Vendor is a resolved purchase option at an NPC vendor.
// Only entries with Currency == "gil" participate in cost comparisons;
// other currencies are retained for display.
type Vendor struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Price        int64    `json:"price"`
	Currency     string   `json:"currency"`
	AltLocations []string `json:"alt_locations,omitempty"`
}

// Recipe is an ordinary craft recipe: one execution consumes the listed
// ingredients and yields Yield units of the item.
type Recipe struct {
	ID          int          `json:"id"`
	Level       int          `json:"level"`
	Job         string       `json:"job"`
	Yield       int          `json:"yield"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Ingredient is one input line of a recipe or company-craft phase.
type Ingredient struct {
	ItemID int    `json:"item_id"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// CompanyCraft is a multi-phase company-workshop recipe (e.g. airship or
// submarine construction). A company craft always produces exactly one
// result per execution; there is no yield scaling.
type CompanyCraft struct {
	Phases []CraftPhase `json:"phases"`
}

// CraftPhase is one construction phase of a company craft.
type CraftPhase struct {
	Ingredients []Ingredient `json:"ingredients"`
}

// VendorData describes how an item payload presents vendor availability.
// Metadata sources use three distinct shapes, modeled as a tagged union so
// resolution code matches exhaustively instead of null-sniffing fields:
//
//   - VendorList: fully populated vendor records
//   - VendorRefs: NPC id references plus a single root-level gil price,
//     resolved against the payload's auxiliary NPC records
//   - NoVendorData: the item is not sold by any NPC
type VendorData interface {
	vendorShape()
}

// VendorList carries fully populated vendor records.
type VendorList struct {
	Vendors []Vendor `json:"vendors"`
}

// VendorRefs carries NPC id references and the root-level gil price shared
// by all of them. Names and locations come from the item's NPC records.
type VendorRefs struct {
	NPCIDs []int `json:"npc_ids"`
	Price  int64 `json:"price"`
}

// NoVendorData means the item has no vendor availability.
type NoVendorData struct{}

func (VendorList) vendorShape()   {}
func (VendorRefs) vendorShape()   {}
func (NoVendorData) vendorShape() {}

// ResolveVendors flattens an item's vendor data into concrete purchase
// options. For the VendorRefs shape, only NPC records whose id appears in
// the reference list are used; anything else in the payload is ignored.
func ResolveVendors(item *Item) []Vendor {
	if item == nil || item.Vendors == nil {
		return nil
	}

	switch v := item.Vendors.(type) {
	case VendorList:
		return v.Vendors
	case VendorRefs:
		referenced := make(map[int]bool, len(v.NPCIDs))
		for _, id := range v.NPCIDs {
			referenced[id] = true
		}
		var vendors []Vendor
		for _, npc := range item.NPCs {
			if !referenced[npc.ID] {
				continue
			}
			vendors = append(vendors, Vendor{
				Name:         npc.Name,
				Location:     npc.Location,
				Price:        v.Price,
				Currency:     "gil",
				AltLocations: npc.AltLocations,
			})
		}
		return vendors
	case NoVendorData:
		return nil
	}
	return nil
}

// CheapestGilVendor returns the lowest-priced gil vendor, if any.
// Non-gil vendors never participate in price selection.
func CheapestGilVendor(vendors []Vendor) (Vendor, bool) {
	var best Vendor
	found := false
	for _, v := range vendors {
		if v.Currency != "gil" || v.Price <= 0 {
			continue
		}
		if !found || v.Price < best.Price {
			best = v
			found = true
		}
	}
	return best, found
}

// Crystal id range reserved by the game data files for elemental crystals,
// shards and clusters.
const (
	crystalIDMin = 2
	crystalIDMax = 19
)

// NeverHQ reports whether an item can never exist in high quality.
// Crystals, shards, clusters and aethersands have no HQ variant regardless
// of what the recipe data claims.
func NeverHQ(id int, name string) bool {
	if id >= crystalIDMin && id <= crystalIDMax {
		return true
	}
	lower := strings.ToLower(name)
	for _, marker := range []string{"crystal", "shard", "cluster", "aethersand"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// LowestLevelRecipe picks the recipe to expand: the one with the lowest
// level, ties broken by lowest recipe id so expansion is deterministic
// regardless of payload ordering.
func LowestLevelRecipe(recipes []Recipe) (Recipe, bool) {
	if len(recipes) == 0 {
		return Recipe{}, false
	}
	sorted := make([]Recipe, len(recipes))
	copy(sorted, recipes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Level != sorted[j].Level {
			return sorted[i].Level < sorted[j].Level
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0], true
}

// itemJSON mirrors Item for (de)serialization, with the vendor union
// flattened into optional fields.
type itemJSON struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Icon      int    `json:"icon"`
	Tradeable bool   `json:"tradeable"`

	Vendors     []Vendor `json:"vendors,omitempty"`
	VendorIDs   []int    `json:"vendor_ids,omitempty"`
	VendorPrice int64    `json:"vendor_price,omitempty"`

	NPCs         []NPCRecord   `json:"npcs,omitempty"`
	Recipes      []Recipe      `json:"recipes,omitempty"`
	CompanyCraft *CompanyCraft `json:"company_craft,omitempty"`
}

// UnmarshalJSON decodes an item payload, classifying the vendor shape.
// Precedence: explicit vendor records win over id references; an item with
// neither gets NoVendorData.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.ID = raw.ID
	i.Name = raw.Name
	i.Icon = raw.Icon
	i.Tradeable = raw.Tradeable
	i.NPCs = raw.NPCs
	i.Recipes = raw.Recipes
	i.CompanyCraft = raw.CompanyCraft

	switch {
	case len(raw.Vendors) > 0:
		i.Vendors = VendorList{Vendors: raw.Vendors}
	case len(raw.VendorIDs) > 0:
		i.Vendors = VendorRefs{NPCIDs: raw.VendorIDs, Price: raw.VendorPrice}
	default:
		i.Vendors = NoVendorData{}
	}
	return nil
}

// MarshalJSON encodes an item payload using the same flattened shape.
func (i *Item) MarshalJSON() ([]byte, error) {
	raw := itemJSON{
		ID:           i.ID,
		Name:         i.Name,
		Icon:         i.Icon,
		Tradeable:    i.Tradeable,
		NPCs:         i.NPCs,
		Recipes:      i.Recipes,
		CompanyCraft: i.CompanyCraft,
	}

	switch v := i.Vendors.(type) {
	case VendorList:
		raw.Vendors = v.Vendors
	case VendorRefs:
		raw.VendorIDs = v.NPCIDs
		raw.VendorPrice = v.Price
	}
	return json.Marshal(raw)
}
