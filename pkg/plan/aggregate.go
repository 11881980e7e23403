package plan

// Materials flattens the plan into its leaf materials: everything that has
// to be purchased given the current acquisition decisions.
//
// Traversal is depth-first and stops at any purchase boundary (a node with
// Source != Craft): that node's quantity is recorded but its children, if
// any remain from a prior craft state, are never visited. Quantities for
// the same item id appearing at multiple tree positions are summed.
// Materials are returned in first-appearance order.
func Materials(p *CraftingPlan) []MaterialAggregate {
	var order []int
	byItem := make(map[int]*MaterialAggregate)

	p.Walk(func(n *PlanNode) bool {
		if n.Source == SourceCraft {
			return true // descend into ingredients
		}

		agg, ok := byItem[n.ItemID]
		if !ok {
			agg = &MaterialAggregate{
				ItemID:    n.ItemID,
				Name:      n.Name,
				Source:    n.Source,
				UnitPrice: unitPrice(n),
				HQ:        n.Source == SourceMarketBuyHQ || n.MustBeHQ,
			}
			if v, okV := cheapestGilVendorName(n); okV {
				agg.VendorName = v
				agg.VendorPrice = n.VendorPrice
			}
			byItem[n.ItemID] = agg
			order = append(order, n.ItemID)
		}
		// Each occurrence is costed by its own source: the same item can be
		// pinned to a vendor at one position and the market at another.
		agg.Quantity += n.Quantity
		agg.TotalCost += unitPrice(n) * int64(n.Quantity)

		return false // purchase boundary: never descend
	})

	out := make([]MaterialAggregate, 0, len(order))
	for _, id := range order {
		out = append(out, *byItem[id])
	}
	return out
}

// unitPrice picks the node's snapshot price matching its source.
func unitPrice(n *PlanNode) int64 {
	switch n.Source {
	case SourceVendorBuy:
		return n.VendorPrice
	case SourceMarketBuyHQ:
		return n.PriceHQ
	default:
		return n.PriceNQ
	}
}

// cheapestGilVendorName returns the display name of the node's cheapest gil
// vendor, if it has one.
func cheapestGilVendorName(n *PlanNode) (string, bool) {
	var (
		name  string
		price int64
		found bool
	)
	for _, v := range n.VendorOptions {
		if v.Currency != "gil" || v.Price <= 0 {
			continue
		}
		if !found || v.Price < price {
			name = v.Name
			price = v.Price
			found = true
		}
	}
	return name, found
}
