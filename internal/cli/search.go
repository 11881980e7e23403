package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mveldt/craftplan/pkg/metadata"
)

// newSearchCmd creates the "search" command: fuzzy item lookup against the
// loaded metadata.
func newSearchCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find items by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			matches := a.meta.Search(query, limit)
			if len(matches) == 0 {
				printInfo("No items match %q", query)
				return nil
			}

			for _, m := range matches {
				fmt.Printf("%s  %s%s\n",
					styleDim.Render(fmt.Sprintf("%6d", m.Item.ID)),
					styleValue.Render(m.Item.Name),
					matchTags(m.Item),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "maximum results")
	return cmd
}

// matchTags summarizes how an item can be acquired.
func matchTags(item *metadata.Item) string {
	var tags []string
	if len(item.Recipes) > 0 || item.CompanyCraft != nil {
		tags = append(tags, styleCraft.Render("craftable"))
	}
	if _, ok := metadata.CheapestGilVendor(metadata.ResolveVendors(item)); ok {
		tags = append(tags, styleVendor.Render("vendor"))
	}
	if len(tags) == 0 {
		return ""
	}
	return " " + styleDim.Render("(") + strings.Join(tags, styleDim.Render(", ")) + styleDim.Render(")")
}
