// Package index abstracts candidate retrieval. A Provider narrows the
// reference data to a workable candidate set by name tokens and
// identifiers; the match engine does the precise scoring afterwards, so
// recall matters here and precision does not.
package index

import (
	"context"
	"errors"

	"github.com/clearwatch-io/entmatch/internal/entity"
)

// ErrNotFound signals an unknown entity ID within a scope.
var ErrNotFound = errors.New("entity not found")

// ErrUnknownScope signals a scope no data was loaded for.
var ErrUnknownScope = errors.New("unknown scope")

// Params narrow a candidate search.
type Params struct {
	// Scope selects the dataset collection to search in.
	Scope string
	// Datasets optionally restricts to entities from these datasets.
	Datasets []string
	// Limit caps the number of candidates returned.
	Limit int
}

// Provider retrieves candidate entities for a query.
type Provider interface {
	// Search returns candidates plausibly matching the query, by name
	// token or identifier overlap.
	Search(ctx context.Context, q *entity.Query, p Params) ([]*entity.Entity, error)
	// Get returns one entity by ID, or ErrNotFound.
	Get(ctx context.Context, scope, id string) (*entity.Entity, error)
	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error
}
