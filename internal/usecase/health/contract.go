package health

import "context"

// IndexChecker checks candidate index availability.
type IndexChecker interface {
	Health(ctx context.Context) error
}

// CatalogChecker reports whether the schema catalog snapshot is loaded.
type CatalogChecker interface {
	Ready() bool
}
