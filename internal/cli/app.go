package cli

import (
	"context"

	charmlog "github.com/charmbracelet/log"

	"github.com/mveldt/craftplan/pkg/config"
	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/market"
	"github.com/mveldt/craftplan/pkg/metadata"
	"github.com/mveldt/craftplan/pkg/shopping"
	"github.com/mveldt/craftplan/pkg/store"
	"github.com/mveldt/craftplan/pkg/worlds"
)

// app bundles the configured collaborators one command invocation needs.
type app struct {
	cfg    config.Config
	meta   *metadata.StaticProvider
	market market.Store
	worlds worlds.Provider
	plans  store.Store
	log    *charmlog.Logger
}

// openApp loads the config and opens every backend. The caller must Close.
func openApp(ctx context.Context, configPath string, logger *charmlog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Data.ItemsFile == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"no item data configured: set data.items_file in the config")
	}
	meta, err := metadata.LoadProvider(cfg.Data.ItemsFile)
	if err != nil {
		return nil, err
	}

	marketStore, err := openMarketStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Data.MarketFile != "" {
		n, err := market.LoadFile(ctx, cfg.Data.MarketFile, marketStore, cfg.Cache.TTL.Duration())
		if err != nil {
			_ = marketStore.Close()
			return nil, err
		}
		logger.Debug("preloaded market boards", "count", n, "file", cfg.Data.MarketFile)
	}

	plans, err := openPlanStore(ctx, cfg)
	if err != nil {
		_ = marketStore.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		meta:   meta,
		market: marketStore,
		worlds: worlds.NewStaticProvider(cfg.HomeWorld, cfg.WorldTable()),
		plans:  plans,
		log:    logger,
	}, nil
}

func openMarketStore(ctx context.Context, cfg config.Config) (market.Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		cache, err := market.NewRedisCache(ctx, market.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connecting to redis at %s", cfg.Cache.Redis.Addr)
		}
		return market.NewBoardStore(cache), nil
	default:
		return market.NewBoardStore(market.NewMemoryCache()), nil
	}
}

func openPlanStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Store.Mongo.URI,
			Database:   cfg.Store.Mongo.Database,
			Collection: cfg.Store.Mongo.Collection,
		})
	default:
		return store.NewFileStore(cfg.Store.Dir)
	}
}

// Close releases all backends.
func (a *app) Close() {
	_ = a.market.Close()
	_ = a.plans.Close()
}

// shoppingConfig maps the file config into the optimizer's knobs.
func (a *app) shoppingConfig() shopping.Config {
	return shopping.Config{
		MaxPriceMultiplier:    a.cfg.Shopping.MaxPriceMultiplier,
		SplitPurchase:         a.cfg.Shopping.SplitPurchase,
		SplitSavingsThreshold: a.cfg.Shopping.SplitSavingsThreshold,
	}
}
