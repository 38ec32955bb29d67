// Package entity holds the immutable records the match engine compares:
// candidate entities deserialized from the index and query entities parsed
// from a match request. Both carry a schema name and ordered, multi-valued
// string properties.
package entity

import (
	"errors"
	"strings"
)

// ErrNoProperties signals a query entity without a single property value.
var ErrNoProperties = errors.New("at least one property must be given")

// Record is the property access shared by queries and candidates.
type Record interface {
	SchemaName() string
	// Props returns the concatenated values of the given properties, in
	// property-then-insertion order. Unknown properties yield nothing.
	Props(keys ...string) []string
}

// Entity is a candidate record retrieved from the reference index.
// Read-only for the lifetime of a match computation.
type Entity struct {
	ID         string              `json:"id"`
	Caption    string              `json:"caption,omitempty"`
	Schema     string              `json:"schema"`
	Datasets   []string            `json:"datasets,omitempty"`
	Target     bool                `json:"target,omitempty"`
	Properties map[string][]string `json:"properties"`
}

// SchemaName returns the entity's schema.
func (e *Entity) SchemaName() string { return e.Schema }

// Props implements Record.
func (e *Entity) Props(keys ...string) []string {
	return gather(e.Properties, keys)
}

// Query is a search-side entity. Build one with NewQuery so the derived
// name combinations are precomputed once per request instead of once per
// candidate.
type Query struct {
	Schema     string              `json:"schema"`
	Properties map[string][]string `json:"properties"`
}

// NewQuery validates the raw properties and precomputes derived names.
func NewQuery(schema string, properties map[string][]string) (*Query, error) {
	q := &Query{Schema: schema, Properties: properties}
	if q.Properties == nil {
		q.Properties = map[string][]string{}
	}

	n := 0
	for _, values := range q.Properties {
		n += len(values)
	}
	if n == 0 {
		return nil, ErrNoProperties
	}

	q.Precompute()
	return q, nil
}

// SchemaName returns the query's schema.
func (q *Query) SchemaName() string { return q.Schema }

// Props implements Record.
func (q *Query) Props(keys ...string) []string {
	return gather(q.Properties, keys)
}

// maxNameCombinations caps the cartesian expansion of split name parts.
const maxNameCombinations = 100

// Precompute expands firstName/secondName/middleName/fatherName/lastName
// into full "name" values, so split-name queries compare like whole names.
// Safe to call more than once; duplicates are not re-added.
func (q *Query) Precompute() {
	parts := [][]string{
		q.Props("firstName"),
		q.Props("secondName"),
		q.Props("middleName"),
		q.Props("fatherName"),
		q.Props("lastName"),
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if len(p) > 0 {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return
	}

	existing := make(map[string]struct{}, len(q.Properties["name"]))
	for _, name := range q.Properties["name"] {
		existing[name] = struct{}{}
	}

	for _, combined := range combine(nonEmpty, maxNameCombinations) {
		name := strings.Join(combined, " ")
		if _, ok := existing[name]; !ok {
			existing[name] = struct{}{}
			q.Properties["name"] = append(q.Properties["name"], name)
		}
	}
}

// combine yields up to limit cartesian combinations, one value per group,
// preserving group order.
func combine(groups [][]string, limit int) [][]string {
	out := [][]string{{}}

	for _, group := range groups {
		next := make([][]string, 0, len(out)*len(group))
		for _, prefix := range out {
			for _, value := range group {
				row := make([]string, len(prefix), len(prefix)+1)
				copy(row, prefix)
				next = append(next, append(row, value))

				if len(next) >= limit {
					return next
				}
			}
		}
		out = next
	}

	return out
}

// NamesAndAliases returns name and alias values of a record, names first.
func NamesAndAliases(r Record) []string {
	return r.Props("name", "alias")
}

func gather(props map[string][]string, keys []string) []string {
	switch len(keys) {
	case 0:
		return nil
	case 1:
		return props[keys[0]]
	}

	n := 0
	for _, key := range keys {
		n += len(props[key])
	}
	if n == 0 {
		return nil
	}

	values := make([]string, 0, n)
	for _, key := range keys {
		values = append(values, props[key]...)
	}
	return values
}
