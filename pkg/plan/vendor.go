package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/mveldt/craftplan/pkg/metadata"
)

// FetchVendorPrices populates vendor options and gil vendor prices for
// every node in the plan, mutating nodes in place.
//
// Metadata for all unique items in the tree is fetched in one batch call
// where possible; if the batch fails, the pass falls back to sequential
// per-item fetches so a broken batch endpoint degrades throughput, not
// correctness. Items that cannot be fetched at all keep whatever pricing
// they already carry.
func FetchVendorPrices(ctx context.Context, meta metadata.Provider, p *CraftingPlan, opts Options) error {
	opts = opts.WithDefaults()

	ids := uniqueItemIDs(p)
	if len(ids) == 0 {
		return nil
	}

	items, err := meta.GetItems(ctx, ids)
	if err != nil {
		opts.Logger("batch metadata fetch failed, falling back to per-item: %v", err)
		items = make(map[int]*metadata.Item, len(ids))
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := meta.GetItem(ctx, id)
			if err != nil {
				opts.Logger("vendor metadata fetch failed for item %d: %v", id, err)
				continue
			}
			items[id] = item
		}
	}

	p.Walk(func(n *PlanNode) bool {
		item, ok := items[n.ItemID]
		if !ok {
			return true
		}

		vendors := metadata.ResolveVendors(item)
		n.VendorOptions = vendors
		if v, ok := metadata.CheapestGilVendor(vendors); ok {
			n.VendorPrice = v.Price
			if n.PriceSource == "" || n.Source == SourceVendorBuy {
				n.PriceSource = "vendor"
				n.PriceDetail = fmt.Sprintf("%s (%s)", v.Name, v.Location)
			}
		}
		return true
	})

	p.Touch()
	return nil
}

// uniqueItemIDs collects every distinct item id in the plan, sorted for
// deterministic batch requests.
func uniqueItemIDs(p *CraftingPlan) []int {
	seen := make(map[int]bool)
	p.Walk(func(n *PlanNode) bool {
		seen[n.ItemID] = true
		return true
	})

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
