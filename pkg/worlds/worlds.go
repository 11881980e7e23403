// Package worlds classifies game worlds for travel-based purchase decisions.
//
// A world's classification comes from external server-status data: congested
// worlds cannot be visited by travelers and are excluded from purchase
// recommendations, except for the player's own home world, which is always
// reachable. The planner consumes the Provider interface; the StaticProvider
// serves a fixed classification table for offline use and tests.
package worlds

import "strings"

// Classification is a world's population status.
type Classification string

// World classifications as reported by server-status data.
const (
	Standard  Classification = "standard"
	Preferred Classification = "preferred"
	Congested Classification = "congested"
)

// ParseClassification maps a config string to a Classification.
// Case-insensitive; unknown names report false.
func ParseClassification(s string) (Classification, bool) {
	switch Classification(strings.ToLower(s)) {
	case Standard:
		return Standard, true
	case Preferred:
		return Preferred, true
	case Congested:
		return Congested, true
	default:
		return "", false
	}
}

// Status describes one world from the planner's point of view.
type Status struct {
	World          string
	Classification Classification
	HomeWorld      bool
}

// Congested reports whether travel to the world is blocked.
func (s Status) Congested() bool {
	return s.Classification == Congested
}

// Provider resolves world names to their status.
type Provider interface {
	// GetStatus classifies a world. Unknown worlds are treated as standard
	// so that missing status data never blocks a purchase recommendation.
	GetStatus(world string) Status
}

// StaticProvider serves world status from a fixed table.
type StaticProvider struct {
	home           string
	classification map[string]Classification
}

// NewStaticProvider creates a provider with the given home world and
// classification table. Lookups are case-insensitive.
func NewStaticProvider(home string, classification map[string]Classification) *StaticProvider {
	table := make(map[string]Classification, len(classification))
	for world, c := range classification {
		table[strings.ToLower(world)] = c
	}
	return &StaticProvider{home: strings.ToLower(home), classification: table}
}

// GetStatus classifies a world.
func (p *StaticProvider) GetStatus(world string) Status {
	key := strings.ToLower(world)
	c, ok := p.classification[key]
	if !ok {
		c = Standard
	}
	return Status{
		World:          world,
		Classification: c,
		HomeWorld:      key == p.home,
	}
}

// Ensure StaticProvider implements Provider.
var _ Provider = (*StaticProvider)(nil)
