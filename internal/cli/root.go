package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Called by
// the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the craftplan CLI under ctx and returns an error if any
// command fails.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to
// debug. The logger is attached to the context and accessible to all
// commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "craftplan",
		Short:        "Craftplan plans crafting and cross-world shopping",
		Long:         `Craftplan expands a crafted item into its full ingredient tree, decides per ingredient whether to craft or buy, and computes where to buy the rest across the worlds of a data center at the lowest cost.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("craftplan %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/craftplan/config.toml)")

	root.AddCommand(newPlanCmd(&configPath))
	root.AddCommand(newShopCmd(&configPath))
	root.AddCommand(newPlansCmd(&configPath))
	root.AddCommand(newSearchCmd(&configPath))
	root.AddCommand(newCacheCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))

	return root.ExecuteContext(ctx)
}
