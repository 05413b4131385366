package sinks

import (
	"context"
	"sync"

	"github.com/earthsurvivors/earthsurvivors/internal/progress"
)

const defaultRecentCapacity = 50

// RecentSink keeps an in-memory window of recent run summaries aggregated
// from the event stream. It backs the read-only /api/runs endpoints; older
// runs fall off once the window is full.
type RecentSink struct {
	mu       sync.Mutex
	capacity int
	order    []string
	runs     map[string]*progress.RunSummary
}

// NewRecentSink constructs a RecentSink holding up to capacity runs. A zero
// or negative capacity falls back to the default window.
func NewRecentSink(capacity int) *RecentSink {
	if capacity <= 0 {
		capacity = defaultRecentCapacity
	}
	return &RecentSink{
		capacity: capacity,
		runs:     make(map[string]*progress.RunSummary, capacity),
	}
}

// Consume folds the batch into per-run summaries. Events for runs that have
// already been evicted recreate the entry, so ordering across batches does
// not matter.
func (s *RecentSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, evt := range batch {
		run := s.ensure(evt)
		switch evt.Stage {
		case progress.StageRunStart:
			run.StartedAt = evt.TS
		case progress.StagePage:
			if evt.Page > run.Pages {
				run.Pages = evt.Page
			}
			run.RecordsSeen += evt.Seen
			run.RecordsKept += evt.Kept
			run.Bytes += evt.Bytes
		case progress.StageRunDone:
			ts := evt.TS
			run.FinishedAt = &ts
			run.Status = progress.RunSuccess
		case progress.StageRunError:
			ts := evt.TS
			run.FinishedAt = &ts
			run.Status = progress.RunError
			run.Error = evt.Note
		}
	}
	return nil
}

// ensure returns the tracked summary for the event's run, creating it (and
// evicting the oldest entry when the window is full) if needed.
func (s *RecentSink) ensure(evt progress.Event) *progress.RunSummary {
	if run, ok := s.runs[evt.RunID]; ok {
		return run
	}
	run := &progress.RunSummary{
		RunID:     evt.RunID,
		StartedAt: evt.TS,
		Status:    progress.RunRunning,
	}
	s.runs[evt.RunID] = run
	s.order = append(s.order, evt.RunID)
	if len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
	return run
}

// Runs returns up to limit summaries, newest first. A non-positive limit
// returns the whole window. The returned slice is a copy and safe to retain.
func (s *RecentSink) Runs(limit int) []progress.RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]progress.RunSummary, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.runs[s.order[i]])
	}
	return out
}

// Run looks up a single run summary by id.
func (s *RecentSink) Run(id string) (progress.RunSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return progress.RunSummary{}, false
	}
	return *run, true
}

// Close implements the Sink interface; it performs no action.
func (s *RecentSink) Close(context.Context) error {
	return nil
}
