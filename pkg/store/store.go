// Package store persists crafting plans.
//
// Three backends cover the deployment shapes:
//   - MemoryStore: in-process, for tests and throwaway sessions
//   - FileStore: JSON files under the user config directory, for the CLI
//   - MongoStore: shared persistence for the HTTP API
//
// All backends key plans by their UUID and return ErrCodePlanNotFound for
// unknown ids.
package store

import (
	"context"
	"time"

	"github.com/mveldt/craftplan/pkg/plan"
)

// Summary is a plan listing entry: enough to render an index without
// loading whole trees.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DataCenter string    `json:"data_center"`
	World      string    `json:"world"`
	Targets    int       `json:"targets"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Store is the plan persistence surface.
type Store interface {
	// Get loads a plan by id.
	Get(ctx context.Context, id string) (*plan.CraftingPlan, error)

	// Put saves a plan, overwriting any previous version.
	Put(ctx context.Context, p *plan.CraftingPlan) error

	// Delete removes a plan. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of all stored plans, most recently updated
	// first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}

// summarize builds the listing entry for a plan.
func summarize(p *plan.CraftingPlan) Summary {
	return Summary{
		ID:         p.ID,
		Name:       p.Name,
		DataCenter: p.DataCenter,
		World:      p.World,
		Targets:    len(p.Roots),
		UpdatedAt:  p.UpdatedAt,
	}
}
