// Package plan builds and manipulates crafting plans.
//
// A CraftingPlan holds one tree of PlanNodes per requested target item.
// Each node is a single acquisition decision: craft the item, buy it on the
// market board (NQ or HQ), or buy it from an NPC vendor. The tree is built
// once by Builder.BuildPlan and then mutated in place as the user toggles
// sources or quantities; aggregation derives the flat material list from
// the current decisions.
//
// # Purchase boundaries
//
// A node whose Source is anything but SourceCraft is a purchase boundary:
// its children (which may still exist from a prior craft state) are kept
// for display but never traversed for aggregation or craft-cost purposes.
package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/mveldt/craftplan/pkg/metadata"
)

// Source is the acquisition decision for one node.
type Source string

// Acquisition sources.
const (
	SourceCraft       Source = "craft"
	SourceMarketBuyNQ Source = "market_nq"
	SourceMarketBuyHQ Source = "market_hq"
	SourceVendorBuy   Source = "vendor"
)

// IsPurchase reports whether the source is a purchase boundary.
func (s Source) IsPurchase() bool {
	return s != SourceCraft
}

// PlanNode is one tree node: one item at one position, with its quantity
// and acquisition decision.
type PlanNode struct {
	ItemID int    `json:"item_id"`
	Name   string `json:"name"`
	Icon   int    `json:"icon,omitempty"`

	// Quantity is the units needed at this tree position, already scaled
	// by the parent's craft count.
	Quantity int `json:"quantity"`

	// Source is mutable by the caller after build.
	Source Source `json:"source"`

	// Quality flags. MustBeHQ is a user requirement independent of Source.
	CanBeHQ  bool `json:"can_be_hq"`
	MustBeHQ bool `json:"must_be_hq"`

	// Craft metadata, only meaningful when CanCraft is true.
	CanCraft    bool   `json:"can_craft"`
	RecipeID    int    `json:"recipe_id,omitempty"`
	RecipeLevel int    `json:"recipe_level,omitempty"`
	Job         string `json:"job,omitempty"`
	Yield       int    `json:"yield,omitempty"`

	// Price snapshot, populated by the vendor and market pricing passes.
	PriceNQ     int64  `json:"price_nq,omitempty"`
	PriceHQ     int64  `json:"price_hq,omitempty"`
	VendorPrice int64  `json:"vendor_price,omitempty"`
	PriceSource string `json:"price_source,omitempty"`
	PriceDetail string `json:"price_detail,omitempty"`

	// VendorOptions holds every known vendor, gil or otherwise. Only gil
	// entries feed VendorPrice.
	VendorOptions []metadata.Vendor `json:"vendor_options,omitempty"`

	// IsCircularReference marks a node truncated because its item already
	// appears on the path from the root. Advisory: the builder sets it but
	// callers decide how to surface it.
	IsCircularReference bool `json:"is_circular_reference,omitempty"`

	// BuildError records why this node was degraded to a best-effort leaf.
	BuildError string `json:"build_error,omitempty"`

	Children []*PlanNode `json:"children,omitempty"`

	// Parent is a non-owning back-reference for traversal convenience.
	// Set after construction; never used for ownership or lifetime.
	Parent *PlanNode `json:"-"`
}

// IsLeaf reports whether the node has no children.
func (n *PlanNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk visits the node and all descendants depth-first, in child order.
// fn returning false prunes the subtree below the node.
func (n *PlanNode) Walk(fn func(*PlanNode) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// CraftingPlan owns the root nodes of one planning session.
type CraftingPlan struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	DataCenter string      `json:"data_center"`
	World      string      `json:"world"`
	Roots      []*PlanNode `json:"roots"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewCraftingPlan creates an empty plan for a region.
func NewCraftingPlan(name, dataCenter, world string) *CraftingPlan {
	now := time.Now().UTC()
	return &CraftingPlan{
		ID:         uuid.NewString(),
		Name:       name,
		DataCenter: dataCenter,
		World:      world,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the modification timestamp.
func (p *CraftingPlan) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// Walk visits every node of every root depth-first.
func (p *CraftingPlan) Walk(fn func(*PlanNode) bool) {
	for _, root := range p.Roots {
		root.Walk(fn)
	}
}

// MaterialAggregate is one flattened leaf material: the total quantity of
// an item the plan needs to buy, summed across every tree position.
// Derived by Materials; recomputed whenever the tree changes.
type MaterialAggregate struct {
	ItemID   int    `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`

	// Pricing snapshot carried over from the nodes, used by the optimizer
	// for vendor overrides and by renderers for totals.
	Source      Source `json:"source"`
	UnitPrice   int64  `json:"unit_price"`
	TotalCost   int64  `json:"total_cost"`
	VendorPrice int64  `json:"vendor_price,omitempty"`
	VendorName  string `json:"vendor_name,omitempty"`
	HQ          bool   `json:"hq"`
}
