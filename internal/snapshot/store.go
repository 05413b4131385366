package snapshot

import (
	"sync/atomic"
	"time"
)

// Store owns the current snapshot. Swaps are single pointer exchanges, so
// concurrent readers never see a partially updated cache.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a Store seeded with the initial snapshot. A nil initial
// snapshot is replaced with a degraded placeholder.
func NewStore(initial *Snapshot) *Store {
	if initial == nil {
		initial = Degraded(ErrNotPopulated, time.Time{})
	}
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Current returns the snapshot readers should serve from. It never returns
// nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap installs the next snapshot. Nil snapshots are ignored.
func (s *Store) Swap(next *Snapshot) {
	if next == nil {
		return
	}
	s.current.Store(next)
}
