package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/earthsurvivors/earthsurvivors/internal/progress"
)

// PrometheusSink exports fetch-run progress metrics via Prometheus. It owns
// all collectors for runs started/completed/running and per-page counters.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted *prometheus.CounterVec
	runsRunning   prometheus.Gauge
	runDuration   *prometheus.HistogramVec

	pageRequests *prometheus.CounterVec
	pageDuration *prometheus.HistogramVec
	pageBytes    prometheus.Counter
	recordsSeen  prometheus.Counter
	recordsKept  prometheus.Counter

	tracker *runTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "survivors_fetch_runs_started_total",
			Help: "Total fetch runs that have started.",
		}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survivors_fetch_runs_completed_total",
			Help: "Total fetch runs completed partitioned by result.",
		}, []string{"result"}),
		runsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "survivors_fetch_runs_running",
			Help: "Current number of in-flight fetch runs.",
		}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survivors_fetch_run_duration_seconds",
			Help:    "Wall time per completed fetch run.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"result"}),
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survivors_fetch_pages_total",
			Help: "Page fetches partitioned by status class.",
		}, []string{"status_class"}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survivors_fetch_page_duration_seconds",
			Help:    "Page fetch duration partitioned by status class.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"status_class"}),
		pageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "survivors_fetch_bytes_total",
			Help: "Bytes downloaded across all page fetches.",
		}),
		recordsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "survivors_fetch_records_seen_total",
			Help: "Upstream records decoded across all pages.",
		}),
		recordsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "survivors_fetch_records_kept_total",
			Help: "Records that passed the survivor filter.",
		}),
		tracker: newRunTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runsRunning,
		s.runDuration,
		s.pageRequests,
		s.pageDuration,
		s.pageBytes,
		s.recordsSeen,
		s.recordsKept,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart, progress.StageRunDone, progress.StageRunError:
		s.handleRunEvent(evt)
	case progress.StagePage:
		s.handlePageEvent(evt)
	}
}

func (s *PrometheusSink) handleRunEvent(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.runsStarted.Inc()
		if s.tracker.start(evt.RunID) {
			s.runsRunning.Inc()
		}
	case progress.StageRunDone:
		s.runsCompleted.WithLabelValues("success").Inc()
		s.observeRunDuration(evt, "success")
	case progress.StageRunError:
		s.runsCompleted.WithLabelValues("error").Inc()
		s.observeRunDuration(evt, "error")
	}
	if evt.Stage != progress.StageRunStart && s.tracker.complete(evt.RunID) {
		s.runsRunning.Dec()
	}
}

func (s *PrometheusSink) observeRunDuration(evt progress.Event, label string) {
	if evt.Dur > 0 {
		s.runDuration.WithLabelValues(label).Observe(evt.Dur.Seconds())
	}
}

func (s *PrometheusSink) handlePageEvent(evt progress.Event) {
	statusClass := string(evt.StatusClass)
	if statusClass == "" {
		statusClass = string(progress.StatusOther)
	}
	s.pageRequests.WithLabelValues(statusClass).Inc()
	if evt.Bytes > 0 {
		s.pageBytes.Add(float64(evt.Bytes))
	}
	if evt.Seen > 0 {
		s.recordsSeen.Add(float64(evt.Seen))
	}
	if evt.Kept > 0 {
		s.recordsKept.Add(float64(evt.Kept))
	}
	if evt.Dur > 0 {
		s.pageDuration.WithLabelValues(statusClass).Observe(evt.Dur.Seconds())
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

type runTracker struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{running: make(map[string]struct{})}
}

func (t *runTracker) start(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; ok {
		return false
	}
	t.running[id] = struct{}{}
	return true
}

func (t *runTracker) complete(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[id]; !ok {
		return false
	}
	delete(t.running, id)
	return true
}
