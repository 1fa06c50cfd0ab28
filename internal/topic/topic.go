// Package topic selects the subject of a run.
package topic

import (
	"math/rand/v2"
	"strings"
)

// DefaultSeed is used when neither a seed nor a catalog is configured.
const DefaultSeed = "AI Evolution"

// Picker chooses the topic for one run.
type Picker struct {
	seed    string
	catalog []string
	rng     *rand.Rand
}

// NewPicker creates a Picker. A non-blank seed always wins; otherwise a topic
// is drawn uniformly from catalog. rng may be nil.
func NewPicker(seed string, catalog []string, rng *rand.Rand) *Picker {
	var cleaned []string
	for _, c := range catalog {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return &Picker{seed: strings.TrimSpace(seed), catalog: cleaned, rng: rng}
}

// Pick returns a non-empty topic.
func (p *Picker) Pick() string {
	if p.seed != "" {
		return p.seed
	}
	if len(p.catalog) == 0 {
		return DefaultSeed
	}
	if p.rng != nil {
		return p.catalog[p.rng.IntN(len(p.catalog))]
	}
	return p.catalog[rand.IntN(len(p.catalog))]
}
