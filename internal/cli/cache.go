package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/market"
)

// newCacheCmd creates the "cache" command group for market data.
func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the market data cache",
	}

	cmd.AddCommand(newCacheLoadCmd(configPath))
	cmd.AddCommand(newCacheFetchCmd(configPath))
	cmd.AddCommand(newCacheEvictCmd(configPath))
	return cmd
}

func newCacheFetchCmd(configPath *string) *cobra.Command {
	var dataCenter string

	cmd := &cobra.Command{
		Use:   "fetch <item id>...",
		Short: "Fetch fresh boards from the configured aggregator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			a, err := openApp(ctx, *configPath, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Data.APIBaseURL == "" {
				return errors.New(errors.ErrCodeInvalidConfig,
					"no aggregator configured: set data.api_url in the config")
			}
			if dataCenter == "" {
				dataCenter = a.cfg.DataCenter
			}

			client := market.NewClient(a.cfg.Data.APIBaseURL)
			fetched := 0
			for _, arg := range args {
				itemID, err := strconv.Atoi(arg)
				if err != nil {
					return errors.New(errors.ErrCodeInvalidInput, "item id must be numeric, got %q", arg)
				}

				board, err := client.FetchBoard(ctx, itemID, dataCenter)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					printWarning("item %d: %s", itemID, errors.UserMessage(err))
					continue
				}
				if err := a.market.Put(ctx, board, a.cfg.Cache.TTL.Duration()); err != nil {
					return err
				}
				fetched++
			}

			printSuccess("Fetched %d/%d boards on %s (ttl %s)", fetched, len(args), dataCenter, a.cfg.Cache.TTL.Duration())
			return nil
		},
	}

	cmd.Flags().StringVar(&dataCenter, "dc", "", "data center (default from config)")
	return cmd
}

func newCacheLoadCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load market board snapshots from a JSON dump",
		Long:  `Load reads an array of market board snapshots (as exported by an external fetcher) into the configured cache backend. With the default in-memory backend this only makes sense combined with data.market_file in the config; against redis the boards persist across runs for their TTL.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			a, err := openApp(ctx, *configPath, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			prog := newProgress(logger)
			n, err := market.LoadFile(ctx, args[0], a.market, a.cfg.Cache.TTL.Duration())
			if err != nil {
				return err
			}
			prog.done("Loaded market boards")
			printSuccess("Cached %d boards (ttl %s)", n, a.cfg.Cache.TTL.Duration())
			return nil
		},
	}
}

func newCacheEvictCmd(configPath *string) *cobra.Command {
	var dataCenter string

	cmd := &cobra.Command{
		Use:   "evict <item id>",
		Short: "Evict one item's cached board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			itemID, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "item id must be numeric, got %q", args[0])
			}
			if dataCenter == "" {
				dataCenter = a.cfg.DataCenter
			}

			if err := a.market.Delete(ctx, itemID, dataCenter); err != nil {
				return err
			}
			printSuccess("Evicted item %d on %s", itemID, dataCenter)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataCenter, "dc", "", "data center (default from config)")
	return cmd
}
