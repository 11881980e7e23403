package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/plan"
)

// MemoryStore keeps plans in process memory. Plans are stored as JSON
// snapshots so a caller mutating its tree after Put cannot corrupt the
// stored copy.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string][]byte)}
}

// Get loads a plan by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*plan.CraftingPlan, error) {
	s.mu.RLock()
	data, ok := s.plans[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
	}

	var p plan.CraftingPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "decoding plan %s", id)
	}
	restoreParents(&p)
	return &p, nil
}

// Put saves a plan.
func (s *MemoryStore) Put(ctx context.Context, p *plan.CraftingPlan) error {
	if p == nil || p.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "plan must have an id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding plan %s", p.ID)
	}

	s.mu.Lock()
	s.plans[p.ID] = data
	s.mu.Unlock()
	return nil
}

// Delete removes a plan.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.plans, id)
	s.mu.Unlock()
	return nil
}

// List returns all stored plans, most recently updated first.
func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, len(s.plans))
	for id, data := range s.plans {
		var p plan.CraftingPlan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "decoding plan %s", id)
		}
		summaries = append(summaries, summarize(&p))
	}
	sortSummaries(summaries)
	return summaries, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// sortSummaries orders by update time descending, id as a stable tie-break.
func sortSummaries(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
}

// restoreParents rewires the non-owning parent back-references, which are
// deliberately absent from the JSON form.
func restoreParents(p *plan.CraftingPlan) {
	p.Walk(func(n *plan.PlanNode) bool {
		for _, child := range n.Children {
			child.Parent = n
		}
		return true
	})
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
