package plan

import (
	"context"
	"fmt"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/metadata"
)

const (
	// MaxDepth bounds tree expansion as a defensive backstop. True
	// ingredient cycles are caught earlier by the per-path visited check;
	// the depth cap only guards against pathological recipe data.
	MaxDepth = 20

	// Recipes below this level with more than commodityChildren inputs are
	// treated as commodities not worth hand-crafting and default to a
	// market buy.
	commodityLevel    = 10
	commodityChildren = 3
)

// Target is one requested item in a BuildPlan call.
type Target struct {
	ItemID   int
	Name     string
	Quantity int
	HQ       bool // user requires the high-quality variant
}

// Options configures plan building behavior.
type Options struct {
	Logger func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Builder expands requested items into crafting plans using an item
// metadata provider.
type Builder struct {
	meta metadata.Provider
}

// NewBuilder creates a Builder over the given metadata provider.
func NewBuilder(meta metadata.Provider) *Builder {
	return &Builder{meta: meta}
}

// BuildPlan expands each target into an acquisition tree and returns the
// assembled plan. Targets are attempted independently: a failure building
// one target produces a placeholder error node in its position and never
// aborts the others, so the result always has one root per target.
//
// Cancellation is cooperative and checked between targets.
func (b *Builder) BuildPlan(ctx context.Context, targets []Target, dataCenter, world string, opts Options) (*CraftingPlan, error) {
	opts = opts.WithDefaults()

	name := "Crafting Plan"
	if len(targets) > 0 && targets[0].Name != "" {
		name = targets[0].Name
	}
	p := NewCraftingPlan(name, dataCenter, world)

	// The metadata cache lives on the build context, scoped to this call:
	// an ingredient reused by multiple branches or targets is fetched once,
	// and concurrent builds of different plans cannot interfere.
	bc := &buildContext{
		ctx:   ctx,
		meta:  b.meta,
		items: make(map[int]itemResult),
		log:   opts.Logger,
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, err := bc.expandTarget(target)
		if err != nil {
			opts.Logger("target %d (%s) failed: %v", target.ItemID, target.Name, err)
			root = placeholderRoot(target, err)
		}
		p.Roots = append(p.Roots, root)
	}

	return p, nil
}

// placeholderRoot builds the error node standing in for a target that
// could not be expanded at all. The error is carried in the display name so
// the caller always gets one node per requested target.
func placeholderRoot(target Target, err error) *PlanNode {
	return &PlanNode{
		ItemID:     target.ItemID,
		Name:       fmt.Sprintf("%s (build failed: %s)", target.Name, errors.UserMessage(err)),
		Quantity:   target.Quantity,
		Source:     SourceMarketBuyNQ,
		CanCraft:   false,
		MustBeHQ:   target.HQ,
		BuildError: err.Error(),
	}
}

// itemResult memoizes one metadata fetch, including its failure.
type itemResult struct {
	item *metadata.Item
	err  error
}

// buildContext carries the per-build state through expansion. It is owned
// by exactly one BuildPlan call and never shared.
type buildContext struct {
	ctx   context.Context
	meta  metadata.Provider
	items map[int]itemResult
	log   func(string, ...any)
}

// item fetches metadata with per-build memoization. Failures are memoized
// too: an item that failed once will fail the same way on every branch.
func (bc *buildContext) item(id int) (*metadata.Item, error) {
	if r, ok := bc.items[id]; ok {
		return r.item, r.err
	}
	item, err := bc.meta.GetItem(bc.ctx, id)
	bc.items[id] = itemResult{item: item, err: err}
	return item, err
}

// frame is one unit of expansion work: an item to materialize at a tree
// position. Expansion runs as an explicit work-list over an arena of nodes
// instead of host recursion, so deep recipe chains cannot overflow the call
// stack and the traversal order is trivially testable.
type frame struct {
	itemID int
	name   string
	qty    int
	parent int // arena index of the parent node, -1 for the root
	depth  int
}

// expandTarget builds the full acquisition tree for one target.
func (bc *buildContext) expandTarget(target Target) (*PlanNode, error) {
	if err := errors.ValidateItemID(target.ItemID); err != nil {
		return nil, err
	}
	if err := errors.ValidateQuantity(target.Quantity); err != nil {
		return nil, err
	}

	var (
		arena   []*PlanNode
		parents []int
	)

	queue := []frame{{itemID: target.ItemID, name: target.Name, qty: target.Quantity, parent: -1}}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		node := bc.buildNode(f, arena, parents, &queue, len(arena))
		arena = append(arena, node)
		parents = append(parents, f.parent)

		if f.parent >= 0 {
			parent := arena[f.parent]
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		}
	}

	root := arena[0]
	root.MustBeHQ = target.HQ
	if target.HQ && !root.CanBeHQ {
		root.MustBeHQ = false
	}
	return root, nil
}

// buildNode materializes one frame into a PlanNode, enqueuing child frames
// for its ingredients. idx is the arena slot the node will occupy.
func (bc *buildContext) buildNode(f frame, arena []*PlanNode, parents []int, queue *[]frame, idx int) *PlanNode {
	node := &PlanNode{
		ItemID:   f.itemID,
		Name:     f.name,
		Quantity: f.qty,
		Source:   SourceCraft,
	}
	isRoot := f.parent < 0

	// True cycle: the same item already appears on the path from the root.
	// Truncate immediately, independent of depth.
	if onPath(f.itemID, f.parent, arena, parents) {
		node.IsCircularReference = true
		node.Source = SourceMarketBuyNQ
		return node
	}

	// Defensive backstop against pathological recipe data.
	if f.depth > MaxDepth {
		node.Source = SourceMarketBuyNQ
		bc.log("depth cap reached expanding item %d", f.itemID)
		return node
	}

	item, err := bc.item(f.itemID)
	if err != nil {
		// Unknown item: assume non-craftable and degrade to a best-effort
		// market leaf rather than aborting the surrounding build.
		node.Source = SourceMarketBuyNQ
		node.BuildError = err.Error()
		bc.log("metadata fetch failed for item %d: %v", f.itemID, err)
		return node
	}

	if item.Name != "" {
		node.Name = item.Name
	}
	node.Icon = item.Icon

	vendors := metadata.ResolveVendors(item)
	node.VendorOptions = vendors
	gilVendor, hasGilVendor := metadata.CheapestGilVendor(vendors)
	if hasGilVendor {
		node.VendorPrice = gilVendor.Price
		node.PriceSource = "vendor"
		node.PriceDetail = fmt.Sprintf("%s (%s)", gilVendor.Name, gilVendor.Location)
	}

	node.CanBeHQ = canBeHQ(item)

	switch {
	case item.CompanyCraft != nil:
		// Company-workshop recipe: flatten every phase's ingredients as
		// direct children. Takes precedence over any ordinary recipe the
		// item also carries. A company craft produces exactly one result
		// per execution, so quantities scale by the node quantity alone,
		// and each ingredient restarts at depth 0 (phase nesting is not
		// preserved in the tree).
		node.CanCraft = true
		node.Yield = 1
		for _, phase := range item.CompanyCraft.Phases {
			for _, ing := range phase.Ingredients {
				if ing.Amount <= 0 {
					continue
				}
				*queue = append(*queue, frame{
					itemID: ing.ItemID,
					name:   ing.Name,
					qty:    ing.Amount * f.qty,
					parent: idx,
					depth:  0,
				})
			}
		}

	case len(item.Recipes) > 0:
		recipe, _ := metadata.LowestLevelRecipe(item.Recipes)
		node.CanCraft = true
		node.RecipeID = recipe.ID
		node.RecipeLevel = recipe.Level
		node.Job = recipe.Job
		node.Yield = recipe.Yield

		crafts := craftCount(f.qty, recipe.Yield)
		for _, ing := range recipe.Ingredients {
			if ing.Amount <= 0 {
				continue
			}
			*queue = append(*queue, frame{
				itemID: ing.ItemID,
				name:   ing.Name,
				qty:    ing.Amount * crafts,
				parent: idx,
				depth:  f.depth + 1,
			})
		}
	}

	node.Source = defaultSource(node, item, hasGilVendor, isRoot)
	return node
}

// onPath walks the ancestor chain through the arena checking whether the
// item already occurs between this position and the root.
func onPath(itemID, parent int, arena []*PlanNode, parents []int) bool {
	for i := parent; i >= 0; i = parents[i] {
		if arena[i].ItemID == itemID {
			return true
		}
	}
	return false
}

// canBeHQ applies the quality rules: crystals and their kin never exist in
// HQ; everything else can be HQ iff it has at least one craft recipe.
func canBeHQ(item *metadata.Item) bool {
	if metadata.NeverHQ(item.ID, item.Name) {
		return false
	}
	return len(item.Recipes) > 0
}

// defaultSource picks the smart default acquisition source for a node.
//
// Root nodes are exempt from the heuristic and remain Craft whenever they
// are craftable, because roots represent the user's explicit goal. For
// everything else: a gil vendor wins; simple low-level recipes with many
// inputs are treated as commodities and bought on the market; remaining
// craftable nodes are crafted.
func defaultSource(node *PlanNode, item *metadata.Item, hasGilVendor, isRoot bool) Source {
	if isRoot && node.CanCraft {
		return SourceCraft
	}

	ingredients := ingredientCount(item)
	switch {
	case hasGilVendor:
		return SourceVendorBuy
	case ingredients == 0:
		return SourceMarketBuyNQ
	case node.RecipeLevel < commodityLevel && ingredients > commodityChildren:
		return SourceMarketBuyNQ
	default:
		return SourceCraft
	}
}

// ingredientCount counts the direct inputs the node will expand into.
func ingredientCount(item *metadata.Item) int {
	if item.CompanyCraft != nil {
		n := 0
		for _, phase := range item.CompanyCraft.Phases {
			n += len(phase.Ingredients)
		}
		return n
	}
	if recipe, ok := metadata.LowestLevelRecipe(item.Recipes); ok {
		return len(recipe.Ingredients)
	}
	return 0
}

// craftCount is the number of recipe executions needed to produce qty
// units with the given per-execution yield.
func craftCount(qty, yield int) int {
	if yield < 1 {
		yield = 1
	}
	return (qty + yield - 1) / yield
}
