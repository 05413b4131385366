// Package snapshot holds the in-memory character cache. The cache is an
// immutable snapshot owned by a Store; a refresh builds a complete new
// snapshot and swaps it in atomically, so readers always observe either the
// old state or the new one, never a mix.
package snapshot

import (
	"errors"
	"time"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
)

// ErrNotPopulated marks a store that has never seen a fetch result.
var ErrNotPopulated = errors.New("snapshot never populated")

// Snapshot is one immutable view of the filtered character set. A degraded
// snapshot carries the fetch error instead of records.
type Snapshot struct {
	records   []character.Record
	fetchedAt time.Time
	err       error
}

// New builds a live snapshot from filtered records.
func New(records []character.Record, fetchedAt time.Time) *Snapshot {
	return &Snapshot{records: records, fetchedAt: fetchedAt}
}

// Degraded builds a snapshot representing a failed fetch. It has no records.
func Degraded(err error, at time.Time) *Snapshot {
	if err == nil {
		err = ErrNotPopulated
	}
	return &Snapshot{fetchedAt: at, err: err}
}

// Records returns the snapshot's records. Callers must not modify the
// returned slice.
func (s *Snapshot) Records() []character.Record {
	return s.records
}

// Count reports how many characters the snapshot holds.
func (s *Snapshot) Count() int {
	return len(s.records)
}

// Characters reduces the snapshot to display records. The result is never
// nil.
func (s *Snapshot) Characters() []character.Character {
	return character.Reduce(s.records)
}

// FetchedAt reports when the snapshot was built.
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// Degraded reports whether the snapshot stands in for a failed fetch.
func (s *Snapshot) Degraded() bool {
	return s.err != nil
}

// Reason returns the degradation cause, or the empty string for a live
// snapshot.
func (s *Snapshot) Reason() string {
	if s.err == nil {
		return ""
	}
	return s.err.Error()
}
