package shopping

import (
	"context"

	"github.com/mveldt/craftplan/pkg/market"
	"github.com/mveldt/craftplan/pkg/plan"
)

// ApplyMarketPrices snapshots cached market prices onto every node of the
// plan: the cheapest NQ and HQ unit prices across the region's worlds.
// Nodes without cached data keep whatever pricing they already carry
// (typically a vendor price). Boards are fetched once per unique item.
func ApplyMarketPrices(ctx context.Context, m market.Provider, p *plan.CraftingPlan, region string, opts Options) error {
	opts = opts.WithDefaults()

	boards := make(map[int]*market.Board)
	var fetchErr error
	p.Walk(func(n *plan.PlanNode) bool {
		if fetchErr != nil {
			return false
		}
		if _, seen := boards[n.ItemID]; seen {
			return true
		}
		if err := ctx.Err(); err != nil {
			fetchErr = err
			return false
		}

		board, ok, err := m.GetCached(ctx, n.ItemID, region)
		if err != nil {
			opts.Logger("market lookup failed for item %d: %v", n.ItemID, err)
			boards[n.ItemID] = nil
			return true
		}
		if !ok {
			boards[n.ItemID] = nil
			return true
		}
		boards[n.ItemID] = board
		return true
	})
	if fetchErr != nil {
		return fetchErr
	}

	p.Walk(func(n *plan.PlanNode) bool {
		board := boards[n.ItemID]
		if board == nil {
			return true
		}

		nq, nqWorld := cheapestListing(board, false)
		hq, hqWorld := cheapestListing(board, true)
		if nq > 0 {
			n.PriceNQ = nq
		}
		if hq > 0 {
			n.PriceHQ = hq
		}

		if n.Source.IsPurchase() && n.Source != plan.SourceVendorBuy {
			switch {
			case n.Source == plan.SourceMarketBuyHQ && hq > 0:
				n.PriceSource = "market"
				n.PriceDetail = hqWorld
			case nq > 0:
				n.PriceSource = "market"
				n.PriceDetail = nqWorld
			}
		}
		return true
	})

	p.Touch()
	return nil
}

// cheapestListing finds the lowest unit price for the requested quality
// across all worlds of a board, returning the price and its world.
func cheapestListing(board *market.Board, hq bool) (int64, string) {
	var (
		best  int64
		world string
	)
	for w, listings := range board.ByWorld {
		for _, l := range listings {
			if l.HQ != hq {
				continue
			}
			if best == 0 || l.PricePerUnit < best || (l.PricePerUnit == best && w < world) {
				best = l.PricePerUnit
				world = w
			}
		}
	}
	return best, world
}
