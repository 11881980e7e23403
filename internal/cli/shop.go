package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mveldt/craftplan/pkg/plan"
	"github.com/mveldt/craftplan/pkg/shopping"
)

// newShopCmd creates the "shop" command: compute where to buy a stored
// plan's materials.
func newShopCmd(configPath *string) *cobra.Command {
	var (
		homeWorld string
		blacklist []string
		split     bool
		noSplit   bool
	)

	cmd := &cobra.Command{
		Use:   "shop <plan id>",
		Short: "Compute shopping recommendations for a saved plan",
		Long:  `Shop flattens a saved plan into its purchase materials and ranks the worlds of its data center per material: fraud-filtered listings, a recommended world, and optionally a multi-world split when no single world has the stock.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			a, err := openApp(ctx, *configPath, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.plans.Get(ctx, args[0])
			if err != nil {
				return err
			}
			materials := plan.Materials(p)
			if len(materials) == 0 {
				printInfo("Plan %s has nothing to buy", p.Name)
				return nil
			}

			if homeWorld == "" {
				homeWorld = a.cfg.HomeWorld
			}
			if blacklist == nil {
				blacklist = a.cfg.Blacklist
			}
			useSplit := a.cfg.Shopping.SplitPurchase
			if split {
				useSplit = true
			}
			if noSplit {
				useSplit = false
			}

			prog := newProgress(logger)
			planner := shopping.NewPlanner(a.market, a.worlds, a.shoppingConfig())
			opts := shopping.Options{Logger: logger.Debugf}

			var plans []shopping.DetailedShoppingPlan
			if useSplit {
				plans, err = planner.PlanShoppingSplit(ctx, materials, p.DataCenter, homeWorld, blacklist, opts)
			} else {
				plans, err = planner.PlanShopping(ctx, materials, p.DataCenter, homeWorld, blacklist, opts)
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Priced %d materials on %s", len(plans), p.DataCenter))

			fmt.Print(renderShopping(plans))

			missing := 0
			for _, dsp := range plans {
				if dsp.Error == "no data" {
					missing++
				}
			}
			if missing > 0 {
				printNewline()
				printWarning("%d materials have no cached market data; load boards with: craftplan cache load <file>", missing)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&homeWorld, "home", "", "home world (default from config)")
	cmd.Flags().StringSliceVar(&blacklist, "blacklist", nil, "worlds to skip")
	cmd.Flags().BoolVar(&split, "split", false, "allow multi-world split purchases")
	cmd.Flags().BoolVar(&noSplit, "no-split", false, "force single-world recommendations")
	cmd.MarkFlagsMutuallyExclusive("split", "no-split")

	return cmd
}
