// Package score holds the matching algorithms. Each one maps a feature
// vector to a bounded score with a per-feature explanation; the set of
// algorithms is closed and known at compile time, so clients can rely on
// an algorithm name meaning the same computation across deployments.
package score

import (
	"fmt"
	"sort"

	"github.com/clearwatch-io/entmatch/internal/feature"
)

// ID names a matching algorithm.
type ID string

const (
	// NameBased scores on phonetic and token name similarity alone.
	NameBased ID = "name-based"
	// NameQualified extends NameBased with penalties for contradicting
	// properties such as birth dates and countries.
	NameQualified ID = "name-qualified"
	// LogicV1 is the default: a logistic model over the full feature
	// roster, identifiers and qualifiers included.
	LogicV1 ID = "logic-v1"
)

// Default is used when a request names no algorithm.
const Default = LogicV1

// ErrUnknownAlgorithm signals a request for an algorithm that is not in
// the set.
type ErrUnknownAlgorithm struct {
	Name string
}

func (e *ErrUnknownAlgorithm) Error() string {
	return fmt.Sprintf("unknown matching algorithm %q", e.Name)
}

// Contribution is one feature's part in a score.
type Contribution struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
}

// Explanation is a score with the contributions that produced it.
type Explanation struct {
	Score    float64        `json:"score"`
	Features []Contribution `json:"features,omitempty"`
}

// Algorithm scores feature vectors. Implementations are stateless and
// safe for concurrent use.
type Algorithm interface {
	ID() ID
	// Description is a short human-readable summary for discovery
	// endpoints.
	Description() string
	Score(v *feature.Vector) Explanation
}

// Set is the algorithm registry handed to the matcher. A zero Set is not
// usable; construct one with NewSet or DefaultSet.
type Set struct {
	algorithms map[ID]Algorithm
	def        ID
}

// DefaultSet returns a Set with every algorithm enabled.
func DefaultSet() *Set {
	s, _ := NewSet(nil)
	return s
}

// NewSet returns a Set with the named algorithms left out. Disabling an
// unknown name or every algorithm is a configuration error. Disabling the
// package default promotes the first remaining algorithm, in ID order, so
// requests naming no algorithm still resolve.
func NewSet(disabled []string) (*Set, error) {
	all := []Algorithm{nameBased{}, nameQualified{}, logicV1{}}

	s := &Set{algorithms: make(map[ID]Algorithm, len(all))}
	for _, a := range all {
		s.algorithms[a.ID()] = a
	}

	for _, name := range disabled {
		if _, ok := s.algorithms[ID(name)]; !ok {
			return nil, &ErrUnknownAlgorithm{Name: name}
		}
		delete(s.algorithms, ID(name))
	}
	if len(s.algorithms) == 0 {
		return nil, fmt.Errorf("at least one algorithm must stay enabled")
	}

	s.def = Default
	if _, ok := s.algorithms[s.def]; !ok {
		s.def = s.All()[0].ID()
	}
	return s, nil
}

// Default returns the algorithm used when a request names none.
func (s *Set) Default() ID {
	return s.def
}

// Get returns the named algorithm, or the set's default for an empty
// name.
func (s *Set) Get(name string) (Algorithm, error) {
	if name == "" {
		name = string(s.def)
	}
	a, ok := s.algorithms[ID(name)]
	if !ok {
		return nil, &ErrUnknownAlgorithm{Name: name}
	}
	return a, nil
}

// All returns the enabled algorithms sorted by ID.
func (s *Set) All() []Algorithm {
	out := make([]Algorithm, 0, len(s.algorithms))
	for _, a := range s.algorithms {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// weighted sums available features by weight and collects contributions.
// Missing features are absent evidence and contribute nothing.
func weighted(v *feature.Vector, weights []Contribution) (float64, []Contribution) {
	sum := 0.0
	out := make([]Contribution, 0, len(weights))
	for _, w := range weights {
		f, ok := v.Get(w.Feature)
		if !ok || f.Missing {
			continue
		}
		sum += f.Score * w.Weight
		out = append(out, Contribution{Feature: w.Feature, Score: f.Score, Weight: w.Weight})
	}
	return sum, out
}

func clamp01(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
