package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/metadata"
	"github.com/mveldt/craftplan/pkg/plan"
	"github.com/mveldt/craftplan/pkg/shopping"
)

// newPlanCmd creates the "plan" command: build (and optionally save) a
// crafting plan for one item.
func newPlanCmd(configPath *string) *cobra.Command {
	var (
		quantity   int
		hq         bool
		dataCenter string
		world      string
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "plan <item name or id>",
		Short: "Build a crafting plan for an item",
		Long:  `Plan expands an item into its full ingredient tree, picks a default acquisition source per ingredient (craft, market or vendor) and prints the tree with the flattened purchase list.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			a, err := openApp(ctx, *configPath, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := resolveItem(ctx, a.meta, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if dataCenter == "" {
				dataCenter = a.cfg.DataCenter
			}
			if world == "" {
				world = a.cfg.HomeWorld
			}

			prog := newProgress(logger)
			targets := []plan.Target{{
				ItemID:   item.ID,
				Name:     item.Name,
				Quantity: quantity,
				HQ:       hq,
			}}
			opts := plan.Options{Logger: logger.Debugf}
			p, err := plan.NewBuilder(a.meta).BuildPlan(ctx, targets, dataCenter, world, opts)
			if err != nil {
				return err
			}
			if err := plan.FetchVendorPrices(ctx, a.meta, p, opts); err != nil {
				return err
			}
			shopOpts := shopping.Options{Logger: logger.Debugf}
			if err := shopping.ApplyMarketPrices(ctx, a.market, p, dataCenter, shopOpts); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Planned %s x%d", item.Name, quantity))

			fmt.Print(renderTree(p))
			printNewline()
			fmt.Print(renderMaterials(plan.Materials(p)))

			if save {
				if err := a.plans.Put(ctx, p); err != nil {
					return err
				}
				printNewline()
				printSuccess("Saved plan %s", p.ID)
				printDetail("Next: craftplan shop %s", p.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "n", 1, "how many to make")
	cmd.Flags().BoolVar(&hq, "hq", false, "require the high-quality variant")
	cmd.Flags().StringVar(&dataCenter, "dc", "", "data center (default from config)")
	cmd.Flags().StringVar(&world, "world", "", "home world (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the plan for later shopping")

	return cmd
}

// resolveItem turns a CLI argument into an item: a numeric id, an exact
// name, or a fuzzy match with suggestions on failure.
func resolveItem(ctx context.Context, meta *metadata.StaticProvider, arg string) (*metadata.Item, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		return meta.GetItem(ctx, id)
	}
	if item, ok := meta.Lookup(arg); ok {
		return item, nil
	}

	matches := meta.Search(arg, 3)
	if len(matches) == 0 {
		return nil, errors.New(errors.ErrCodeItemNotFound, "no item matches %q", arg)
	}
	if matches[0].Distance == 0 || len(matches) == 1 {
		return matches[0].Item, nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Item.Name)
	}
	return nil, errors.New(errors.ErrCodeItemNotFound,
		"no item named %q; close matches: %s", arg, strings.Join(names, ", "))
}
