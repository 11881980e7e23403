package metadata

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Match is one fuzzy search result.
type Match struct {
	Item     *Item
	Distance int // edit distance between query and item name, 0 = exact
}

// Search ranks the provider's items against a query by edit distance.
// Case-insensitive. Exact matches rank first, then substring matches, then
// everything else by ascending levenshtein distance with the item name.
// Returns at most limit matches; limit <= 0 means a default of 10.
func (p *StaticProvider) Search(query string, limit int) []Match {
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []Match
	for _, item := range p.items {
		name := strings.ToLower(item.Name)
		dist := levenshtein.ComputeDistance(q, name)
		// Substring hits are always worth surfacing, even when the full-name
		// distance is large ("copper" vs "copper ingot").
		if dist > len(q) && !strings.Contains(name, q) {
			continue
		}
		if strings.Contains(name, q) && dist > 0 {
			dist = min(dist, len(name)-len(q)+1)
		}
		matches = append(matches, Match{Item: item, Distance: dist})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Item.Name < matches[j].Item.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Lookup finds an item by exact (case-insensitive) name.
func (p *StaticProvider) Lookup(name string) (*Item, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, item := range p.items {
		if strings.ToLower(item.Name) == target {
			return item, true
		}
	}
	return nil, false
}
