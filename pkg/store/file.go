package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mveldt/craftplan/pkg/errors"
	"github.com/mveldt/craftplan/pkg/plan"
)

// FileStore persists plans as JSON files, one per plan, for single-user CLI
// usage.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-backed store. An empty baseDir defaults to
// ~/.config/craftplan/plans.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "resolving home directory")
		}
		baseDir = filepath.Join(home, ".config", "craftplan", "plans")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "creating plan directory %s", baseDir)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the directory plans are stored in.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) planPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Get loads a plan by id.
func (s *FileStore) Get(ctx context.Context, id string) (*plan.CraftingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.planPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "reading plan %s", id)
	}

	var p plan.CraftingPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCorrupt, err, "decoding plan %s", id)
	}
	restoreParents(&p)
	return &p, nil
}

// Put saves a plan.
func (s *FileStore) Put(ctx context.Context, p *plan.CraftingPlan) error {
	if p == nil || p.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "plan must have an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding plan %s", p.ID)
	}
	if err := os.WriteFile(s.planPath(p.ID), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "writing plan %s", p.ID)
	}
	return nil
}

// Delete removes a plan file.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.planPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "removing plan %s", id)
	}
	return nil
}

// List returns summaries of every stored plan, most recently updated first.
// Unreadable or corrupt files are skipped rather than failing the listing.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "reading plan directory")
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var p plan.CraftingPlan
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		summaries = append(summaries, summarize(&p))
	}
	sortSummaries(summaries)
	return summaries, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
