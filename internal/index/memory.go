package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/antzucaro/matchr"

	"github.com/clearwatch-io/entmatch/internal/compare"
	"github.com/clearwatch-io/entmatch/internal/entity"
	"github.com/clearwatch-io/entmatch/internal/norm"
)

const defaultSearchLimit = 25

// Memory is an in-process Provider for small reference sets and tests.
// Candidates are bucketed by name token and by Soundex code, so common
// spelling variants still surface, plus by normalized identifier.
type Memory struct {
	n norm.Normalizer

	mu     sync.RWMutex
	scopes map[string]*memScope
}

type memScope struct {
	entities map[string]*entity.Entity
	buckets  map[string][]string // token, soundex, or code -> entity IDs
}

// NewMemory returns an empty in-memory provider.
func NewMemory(n norm.Normalizer) *Memory {
	return &Memory{n: n, scopes: map[string]*memScope{}}
}

// Add indexes an entity within a scope, replacing any previous version.
func (m *Memory) Add(scope string, e *entity.Entity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scopes[scope]
	if !ok {
		s = &memScope{
			entities: map[string]*entity.Entity{},
			buckets:  map[string][]string{},
		}
		m.scopes[scope] = s
	}

	s.entities[e.ID] = e
	for key := range m.keys(e) {
		s.buckets[key] = append(s.buckets[key], e.ID)
	}
}

// Len returns the number of entities in a scope.
func (m *Memory) Len(scope string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scopes[scope]
	if !ok {
		return 0
	}
	return len(s.entities)
}

// Search implements Provider.
func (m *Memory) Search(_ context.Context, q *entity.Query, p Params) ([]*entity.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scopes[p.Scope]
	if !ok {
		return nil, ErrUnknownScope
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits := map[string]int{}
	for key := range m.keys(q) {
		for _, id := range s.buckets[key] {
			hits[id]++
		}
	}

	// Dataset filtering happens before the limit so out-of-dataset
	// entities do not consume result slots.
	ids := make([]string, 0, len(hits))
	for id := range hits {
		if len(p.Datasets) > 0 && compare.Disjoint(s.entities[id].Datasets, p.Datasets) {
			continue
		}
		ids = append(ids, id)
	}
	// Most shared buckets first, ID as the tie break.
	sort.Slice(ids, func(i, j int) bool {
		if hits[ids[i]] != hits[ids[j]] {
			return hits[ids[i]] > hits[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*entity.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entities[id])
	}
	return out, nil
}

// Get implements Provider.
func (m *Memory) Get(_ context.Context, scope, id string) (*entity.Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scopes[scope]
	if !ok {
		return nil, ErrUnknownScope
	}
	e, ok := s.entities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Health implements Provider. The in-memory index is always reachable.
func (m *Memory) Health(context.Context) error { return nil }

// keys derives the bucket keys of a record: cleaned name tokens, their
// Soundex codes, and normalized identifiers.
func (m *Memory) keys(r entity.Record) map[string]struct{} {
	keys := map[string]struct{}{}

	for _, name := range compare.CleanNames(m.n, entity.NamesAndAliases(r)) {
		for _, token := range strings.Fields(name) {
			if len(token) < 2 {
				continue
			}
			keys["t:"+token] = struct{}{}
			if code := matchr.Soundex(token); code != "" {
				keys["s:"+code] = struct{}{}
			}
		}
	}
	for _, code := range compare.NormalizeCodes(r.Props(identifierProps...)) {
		keys["c:"+code] = struct{}{}
	}
	return keys
}

// identifierProps mirror the feature builder's generic identifier roster.
var identifierProps = []string{
	"registrationNumber", "taxNumber", "leiCode", "innCode",
	"bicCode", "ogrnCode", "imoNumber", "mmsi", "isin",
}
