// Package metadata defines item metadata types and the Provider interface
// the planner consumes.
//
// The planner never fetches metadata over the network itself: a Provider is
// an already-functioning data layer (game data files, a scraping service, a
// third-party API client) that this package only describes. The in-repo
// StaticProvider serves item payloads from memory and backs the CLI's
// offline mode and the test suites.
//
// # Vendor data shapes
//
// Item payloads present NPC vendor availability in one of three shapes,
// modeled as the VendorData tagged union. ResolveVendors flattens any shape
// into concrete purchase options; only gil-priced options participate in
// cost decisions.
package metadata

import (
	"context"
	"sort"

	"github.com/mveldt/craftplan/pkg/errors"
)

// Provider retrieves item metadata.
//
// GetItem may fail or time out; callers in the planning core treat failure
// as "unknown, assume non-craftable" and degrade rather than abort.
type Provider interface {
	// GetItem retrieves a single item's metadata.
	GetItem(ctx context.Context, id int) (*Item, error)

	// GetItems retrieves metadata for several items in one call.
	// Implementations should prefer a single batched request; callers fall
	// back to sequential GetItem calls when the batch fails.
	GetItems(ctx context.Context, ids []int) (map[int]*Item, error)
}

// StaticProvider serves item metadata from an in-memory table.
type StaticProvider struct {
	items map[int]*Item
}

// NewStaticProvider creates a provider over the given items.
func NewStaticProvider(items []*Item) *StaticProvider {
	m := make(map[int]*Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return &StaticProvider{items: m}
}

// GetItem returns the item with the given id.
// Returns an ITEM_NOT_FOUND error for unknown ids.
func (p *StaticProvider) GetItem(ctx context.Context, id int) (*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, ok := p.items[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeItemNotFound, "item %d not found", id)
	}
	return item, nil
}

// GetItems returns the known subset of the requested items.
// Unknown ids are simply absent from the result; the caller decides whether
// that is an error.
func (p *StaticProvider) GetItems(ctx context.Context, ids []int) (map[int]*Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[int]*Item, len(ids))
	for _, id := range ids {
		if item, ok := p.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

// All returns every known item sorted by id.
func (p *StaticProvider) All() []*Item {
	out := make([]*Item, 0, len(p.items))
	for _, it := range p.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Ensure StaticProvider implements Provider.
var _ Provider = (*StaticProvider)(nil)
