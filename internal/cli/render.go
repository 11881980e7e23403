package cli

import (
	"fmt"
	"strings"

	"github.com/mveldt/craftplan/pkg/plan"
	"github.com/mveldt/craftplan/pkg/shopping"
)

// renderTree renders the acquisition trees of a plan with box-drawing
// connectors, one root per target.
func renderTree(p *plan.CraftingPlan) string {
	var b strings.Builder
	for _, root := range p.Roots {
		b.WriteString(styleTitle.Render(nodeLabel(root)) + nodeSuffix(root) + "\n")
		renderChildren(&b, root, "")
	}
	return b.String()
}

func renderChildren(b *strings.Builder, n *plan.PlanNode, prefix string) {
	for i, child := range n.Children {
		last := i == len(n.Children)-1
		connector, childPrefix := "├── ", prefix+"│   "
		if last {
			connector, childPrefix = "└── ", prefix+"    "
		}

		b.WriteString(prefix + styleDim.Render(connector) + nodeLabel(child) + nodeSuffix(child) + "\n")
		renderChildren(b, child, childPrefix)
	}
}

// nodeLabel is the name and quantity portion of a node line.
func nodeLabel(n *plan.PlanNode) string {
	return fmt.Sprintf("%s %s", n.Name, styleNumber.Render(fmt.Sprintf("x%d", n.Quantity)))
}

// nodeSuffix appends the source tag, price and any advisory markers.
func nodeSuffix(n *plan.PlanNode) string {
	parts := []string{" " + sourceTag(n.Source)}

	if price := displayPrice(n); price > 0 {
		detail := gil(price * int64(n.Quantity))
		if n.PriceDetail != "" {
			detail += styleDim.Render(" @ " + n.PriceDetail)
		}
		parts = append(parts, " "+detail)
	}
	if n.MustBeHQ {
		parts = append(parts, " "+styleNumber.Render("HQ"))
	}
	if n.IsCircularReference {
		parts = append(parts, " "+styleWarning.Render("(circular)"))
	}
	if n.BuildError != "" {
		parts = append(parts, " "+styleIconError.Render("(unresolved)"))
	}
	return strings.Join(parts, "")
}

// sourceTag colors a node's acquisition decision.
func sourceTag(s plan.Source) string {
	switch s {
	case plan.SourceCraft:
		return styleCraft.Render("[craft]")
	case plan.SourceMarketBuyHQ:
		return styleMarket.Render("[market HQ]")
	case plan.SourceVendorBuy:
		return styleVendor.Render("[vendor]")
	default:
		return styleMarket.Render("[market]")
	}
}

// displayPrice picks the unit price matching a node's source.
func displayPrice(n *plan.PlanNode) int64 {
	switch n.Source {
	case plan.SourceVendorBuy:
		return n.VendorPrice
	case plan.SourceMarketBuyHQ:
		return n.PriceHQ
	case plan.SourceCraft:
		return 0
	default:
		return n.PriceNQ
	}
}

// renderMaterials renders the flattened purchase list with a grand total.
func renderMaterials(materials []plan.MaterialAggregate) string {
	if len(materials) == 0 {
		return styleDim.Render("nothing to buy") + "\n"
	}

	var (
		b     strings.Builder
		total int64
	)
	b.WriteString(styleTitle.Render("Materials") + "\n")
	for _, m := range materials {
		line := fmt.Sprintf("  %s %s %s",
			styleNumber.Render(fmt.Sprintf("%5d", m.Quantity)),
			styleValue.Render(m.Name),
			sourceTag(m.Source),
		)
		if m.TotalCost > 0 {
			line += " " + gil(m.TotalCost)
			total += m.TotalCost
		}
		if m.Source == plan.SourceVendorBuy && m.VendorName != "" {
			line += styleDim.Render(" @ " + m.VendorName)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(styleDim.Render("  total ") + gil(total) + "\n")
	return b.String()
}

// renderShopping renders one section per material's shopping plan.
func renderShopping(plans []shopping.DetailedShoppingPlan) string {
	var b strings.Builder
	for i, dsp := range plans {
		if i > 0 {
			b.WriteString("\n")
		}
		renderShoppingPlan(&b, dsp)
	}
	return b.String()
}

func renderShoppingPlan(b *strings.Builder, dsp shopping.DetailedShoppingPlan) {
	title := fmt.Sprintf("%s %s", dsp.Name, styleNumber.Render(fmt.Sprintf("x%d", dsp.QuantityNeeded)))
	if dsp.HQ {
		title += " " + styleNumber.Render("HQ")
	}
	b.WriteString(styleTitle.Render(title) + "\n")

	if dsp.Error != "" {
		b.WriteString("  " + styleWarning.Render(dsp.Error) + "\n")
	}

	switch {
	case len(dsp.RecommendedSplit) > 0:
		b.WriteString("  " + styleValue.Render("split across worlds:") + "\n")
		for _, alloc := range dsp.RecommendedSplit {
			b.WriteString(fmt.Sprintf("    %s %s %s %s\n",
				styleDim.Render(iconArrow),
				styleValue.Render(alloc.World),
				styleNumber.Render(fmt.Sprintf("x%d", alloc.Quantity)),
				gil(alloc.Cost),
			))
		}
		b.WriteString(styleDim.Render("    total ") + gil(splitTotal(dsp.RecommendedSplit)) + "\n")

	case dsp.RecommendedWorld != nil:
		rec := dsp.RecommendedWorld
		label := rec.World
		if rec.IsVendor {
			label += " " + styleVendor.Render("(vendor)")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s\n",
			styleDim.Render(iconArrow),
			styleValue.Render(label),
			gil(rec.TotalCost),
			styleDim.Render(fmt.Sprintf("(typical %s/unit)", groupDigits(rec.ModePrice))),
		))
		if !rec.Sufficient {
			b.WriteString("    " + styleWarning.Render(fmt.Sprintf("short by %d", rec.Shortfall)) + "\n")
		}

	default:
		b.WriteString("  " + styleDim.Render("no purchase options") + "\n")
	}

	if n := len(dsp.Worlds); n > 1 {
		b.WriteString(styleDim.Render(fmt.Sprintf("  %d worlds compared", n)) + "\n")
	}
}

func splitTotal(split []shopping.SplitAllocation) int64 {
	var total int64
	for _, a := range split {
		total += a.Cost
	}
	return total
}
