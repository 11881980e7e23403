// Package market models cached market-board data and the cache backends
// that hold it.
//
// The planner performs no market I/O itself: listings are fetched by an
// external data layer and placed into a Cache ahead of optimization. A
// cache miss is normal, documented behavior ("no data"), not an error that
// aborts a batch.
//
// # Backends
//
// Two Cache implementations are provided:
//   - MemoryCache: in-process TTL cache for single-binary CLI usage
//   - RedisCache: shared cache for multi-instance deployments
//
// Both store JSON-encoded Board snapshots keyed by (item id, region).
package market

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mveldt/craftplan/pkg/errors"
)

// Listing is one market-board stack: an atomic lot that must be bought in
// full, never partially.
type Listing struct {
	PricePerUnit int64  `json:"price_per_unit"`
	Quantity     int64  `json:"quantity"`
	HQ           bool   `json:"hq"`
	World        string `json:"world"`
	Retainer     string `json:"retainer,omitempty"`
}

// Cost is the gil cost of buying the whole stack.
func (l Listing) Cost() int64 {
	return l.PricePerUnit * l.Quantity
}

// Board is a cached snapshot of every world's listings for one item within
// one region (data center).
type Board struct {
	ItemID    int                  `json:"item_id"`
	Region    string               `json:"region"`
	ByWorld   map[string][]Listing `json:"by_world"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// Provider is the read side the optimizer consumes.
type Provider interface {
	// GetCached returns the cached board for an item in a region.
	// The second return is false when no data is cached.
	GetCached(ctx context.Context, itemID int, region string) (*Board, bool, error)
}

// Store is the full cache surface: the external data layer writes boards
// through Put after fetching fresh listings.
type Store interface {
	Provider

	// Put caches a board for its item and region.
	Put(ctx context.Context, board *Board, ttl time.Duration) error

	// Delete evicts one item's board from a region.
	Delete(ctx context.Context, itemID int, region string) error

	// Close releases backend resources.
	Close() error
}

// BoardStore adapts a byte-level Cache into a typed Store.
type BoardStore struct {
	cache Cache
}

// NewBoardStore wraps a Cache backend.
func NewBoardStore(cache Cache) *BoardStore {
	return &BoardStore{cache: cache}
}

// GetCached returns the cached board for (itemID, region), if present.
func (s *BoardStore) GetCached(ctx context.Context, itemID int, region string) (*Board, bool, error) {
	data, hit, err := s.cache.Get(ctx, boardKey(itemID, region))
	if err != nil || !hit {
		return nil, false, err
	}

	var board Board
	if err := json.Unmarshal(data, &board); err != nil {
		// Corrupt entry - evict and treat as a miss.
		_ = s.cache.Delete(ctx, boardKey(itemID, region))
		return nil, false, nil
	}
	return &board, true, nil
}

// Put caches a board.
func (s *BoardStore) Put(ctx context.Context, board *Board, ttl time.Duration) error {
	if board == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil board")
	}
	data, err := json.Marshal(board)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding board for item %d", board.ItemID)
	}
	return s.cache.Set(ctx, boardKey(board.ItemID, board.Region), data, ttl)
}

// Delete evicts a board.
func (s *BoardStore) Delete(ctx context.Context, itemID int, region string) error {
	return s.cache.Delete(ctx, boardKey(itemID, region))
}

// Close closes the underlying cache.
func (s *BoardStore) Close() error {
	return s.cache.Close()
}

// Ensure BoardStore implements Store.
var _ Store = (*BoardStore)(nil)
