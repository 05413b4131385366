package sinks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earthsurvivors/earthsurvivors/internal/progress"
)

// TestRecentSinkAggregatesRun folds a full event stream into one summary.
func TestRecentSinkAggregatesRun(t *testing.T) {
	t.Parallel()

	sink := NewRecentSink(10)
	now := time.Now()

	batch := []progress.Event{
		{RunID: "run-1", Stage: progress.StageRunStart, TS: now},
		{
			RunID:       "run-1",
			Stage:       progress.StagePage,
			Page:        1,
			Seen:        20,
			Kept:        9,
			Bytes:       1024,
			StatusClass: progress.Status2xx,
			TS:          now.Add(1 * time.Second),
		},
		{
			RunID:       "run-1",
			Stage:       progress.StagePage,
			Page:        2,
			Seen:        20,
			Kept:        8,
			Bytes:       980,
			StatusClass: progress.Status2xx,
			TS:          now.Add(2 * time.Second),
		},
		{RunID: "run-1", Stage: progress.StageRunDone, TS: now.Add(3 * time.Second), Dur: 3 * time.Second},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	run, ok := sink.Run("run-1")
	require.True(t, ok)
	require.Equal(t, progress.RunSuccess, run.Status)
	require.Equal(t, 2, run.Pages)
	require.Equal(t, 40, run.RecordsSeen)
	require.Equal(t, 17, run.RecordsKept)
	require.Equal(t, int64(2004), run.Bytes)
	require.NotNil(t, run.FinishedAt)
	require.Equal(t, now, run.StartedAt)
}

// TestRecentSinkRecordsRunError keeps the failure note on the summary.
func TestRecentSinkRecordsRunError(t *testing.T) {
	t.Parallel()

	sink := NewRecentSink(10)
	now := time.Now()

	batch := []progress.Event{
		{RunID: "run-err", Stage: progress.StageRunStart, TS: now},
		{
			RunID: "run-err",
			Stage: progress.StageRunError,
			TS:    now.Add(time.Second),
			Note:  "fetch page 2 (https://example.com): boom",
		},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	run, ok := sink.Run("run-err")
	require.True(t, ok)
	require.Equal(t, progress.RunError, run.Status)
	require.Contains(t, run.Error, "fetch page 2")
}

// TestRecentSinkEvictsOldestRun enforces the window capacity.
func TestRecentSinkEvictsOldestRun(t *testing.T) {
	t.Parallel()

	sink := NewRecentSink(2)
	now := time.Now()

	for i := 1; i <= 3; i++ {
		evt := progress.Event{
			RunID: fmt.Sprintf("run-%d", i),
			Stage: progress.StageRunStart,
			TS:    now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, sink.Consume(context.Background(), []progress.Event{evt}))
	}

	_, ok := sink.Run("run-1")
	require.False(t, ok, "oldest run should have been evicted")

	runs := sink.Runs(0)
	require.Len(t, runs, 2)
	require.Equal(t, "run-3", runs[0].RunID, "newest run should come first")
	require.Equal(t, "run-2", runs[1].RunID)
}

// TestRecentSinkRunsLimit truncates the listing to the requested size.
func TestRecentSinkRunsLimit(t *testing.T) {
	t.Parallel()

	sink := NewRecentSink(10)
	now := time.Now()
	for i := 1; i <= 5; i++ {
		evt := progress.Event{
			RunID: fmt.Sprintf("run-%d", i),
			Stage: progress.StageRunStart,
			TS:    now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, sink.Consume(context.Background(), []progress.Event{evt}))
	}

	runs := sink.Runs(3)
	require.Len(t, runs, 3)
	require.Equal(t, "run-5", runs[0].RunID)
	require.Equal(t, "run-3", runs[2].RunID)
}

// TestRecentSinkUnknownRunEventsRecreateEntry tolerates events arriving after
// eviction.
func TestRecentSinkUnknownRunEventsRecreateEntry(t *testing.T) {
	t.Parallel()

	sink := NewRecentSink(5)
	now := time.Now()

	evt := progress.Event{
		RunID:       "orphan",
		Stage:       progress.StagePage,
		Page:        3,
		Seen:        20,
		Kept:        4,
		StatusClass: progress.Status2xx,
		TS:          now,
	}
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{evt}))

	run, ok := sink.Run("orphan")
	require.True(t, ok)
	require.Equal(t, progress.RunRunning, run.Status)
	require.Equal(t, 3, run.Pages)
}
