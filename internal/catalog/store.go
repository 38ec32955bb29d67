package catalog

import "sync/atomic"

// Store holds the current catalog snapshot. Concurrent match computations
// read one consistent snapshot; refreshes swap the whole pointer so no
// reader ever observes a half-updated catalog.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore creates a store seeded with the given snapshot.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap atomically replaces the active snapshot.
func (s *Store) Swap(c *Catalog) {
	s.current.Store(c)
}

// Ready reports whether a snapshot has been loaded.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}
