// Package config loads craftplan settings from a TOML file.
//
// Everything has a sensible default: a missing file yields a fully working
// configuration for a single-binary CLI (in-memory caches, file-backed plan
// storage). A config file only needs the keys it wants to change.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/worlds"
)

// Config is the full craftplan configuration.
type Config struct {
	// DataCenter is the default region to plan against.
	DataCenter string `toml:"data_center"`

	// HomeWorld is the player's own world; it bypasses travel filters.
	HomeWorld string `toml:"home_world"`

	// Blacklist names worlds never to shop on, regardless of price.
	Blacklist []string `toml:"blacklist"`

	// Worlds classifies worlds by name ("standard", "preferred" or
	// "congested"). Congested worlds are excluded from recommendations
	// unless they are the home world. Unlisted worlds count as standard.
	Worlds map[string]string `toml:"worlds"`

	Shopping ShoppingConfig `toml:"shopping"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
}

// ShoppingConfig tunes the procurement optimizer.
type ShoppingConfig struct {
	MaxPriceMultiplier    float64 `toml:"max_price_multiplier"`
	SplitPurchase         bool    `toml:"split_purchase"`
	SplitSavingsThreshold float64 `toml:"split_savings_threshold"`
}

// CacheConfig selects the market cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `toml:"backend"`

	// TTL is how long cached market boards stay fresh.
	TTL duration `toml:"ttl"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects the plan persistence backend.
type StoreConfig struct {
	// Backend is "file", "memory" or "mongo".
	Backend string `toml:"backend"`

	// Dir is the plan directory for the file backend; empty means the
	// default under the user config directory.
	Dir string `toml:"dir"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig holds mongo connection settings.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DataConfig points at local data files for offline use.
type DataConfig struct {
	// ItemsFile is a JSON item-metadata dump.
	ItemsFile string `toml:"items_file"`

	// MarketFile is a JSON market-board dump to preload into the cache.
	MarketFile string `toml:"market_file"`

	// APIBaseURL is a board-aggregator HTTP API for fetching fresh market
	// data on demand. Empty disables remote fetching.
	APIBaseURL string `toml:"api_url"`
}

// duration wraps time.Duration for TOML string values like "15m".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the wrapped value.
func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

// Backend names.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"

	StoreFile   = "file"
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataCenter: "Aether",
		Shopping: ShoppingConfig{
			MaxPriceMultiplier:    2.5,
			SplitPurchase:         true,
			SplitSavingsThreshold: 0.05,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			TTL:     duration(15 * time.Minute),
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "craftplan",
				Collection: "plans",
			},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath is where Load looks when no path is given:
// ~/.config/craftplan/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolving home directory")
	}
	return filepath.Join(home, ".config", "craftplan", "config.toml"), nil
}

// Load reads the config file at path, merged over the defaults. An empty
// path uses DefaultPath; a missing file at either location is not an error
// and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case StoreFile, StoreMemory, StoreMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}

	if c.Shopping.MaxPriceMultiplier < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_price_multiplier must be at least 1, got %g", c.Shopping.MaxPriceMultiplier)
	}
	if c.Shopping.SplitSavingsThreshold < 0 || c.Shopping.SplitSavingsThreshold > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "split_savings_threshold must be within [0, 1], got %g", c.Shopping.SplitSavingsThreshold)
	}
	if err := errors.ValidateRegion(c.DataCenter); err != nil {
		return err
	}

	for world, classification := range c.Worlds {
		if _, ok := worlds.ParseClassification(classification); !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown classification %q for world %q", classification, world)
		}
	}
	return nil
}

// WorldTable converts the configured classifications for the worlds
// provider. Validation has already rejected unknown names.
func (c Config) WorldTable() map[string]worlds.Classification {
	if len(c.Worlds) == 0 {
		return nil
	}
	table := make(map[string]worlds.Classification, len(c.Worlds))
	for world, classification := range c.Worlds {
		if parsed, ok := worlds.ParseClassification(classification); ok {
			table[world] = parsed
		}
	}
	return table
}
