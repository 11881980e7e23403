package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPlansCmd creates the "plans" command group for stored plans.
func newPlansCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage saved crafting plans",
	}

	cmd.AddCommand(newPlansListCmd(configPath))
	cmd.AddCommand(newPlansShowCmd(configPath))
	cmd.AddCommand(newPlansDeleteCmd(configPath))
	return cmd
}

func newPlansListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			summaries, err := a.plans.List(ctx)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				printInfo("No saved plans")
				printDetail("Create one with: craftplan plan <item> --save")
				return nil
			}

			for _, s := range summaries {
				fmt.Printf("%s  %s %s %s\n",
					styleDim.Render(s.ID),
					styleValue.Render(s.Name),
					styleNumber.Render(fmt.Sprintf("(%d targets)", s.Targets)),
					styleDim.Render(s.UpdatedAt.Local().Format("2006-01-02 15:04")),
				)
			}
			return nil
		},
	}
}

func newPlansShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan id>",
		Short: "Print a saved plan's tree and materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.plans.Get(ctx, args[0])
			if err != nil {
				return err
			}

			printKeyValue("Name", p.Name)
			printKeyValue("Data center", p.DataCenter)
			if p.World != "" {
				printKeyValue("World", p.World)
			}
			printNewline()
			fmt.Print(renderTree(p))
			return nil
		},
	}
}

func newPlansDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <plan id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.plans.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted plan %s", args[0])
			return nil
		},
	}
}
