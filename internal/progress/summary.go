package progress

import "time"

// RunStatus is the lifecycle state of a fetch run.
type RunStatus string

// Run lifecycle states. A run is running from its RUN_START event until a
// RUN_DONE or RUN_ERROR event closes it.
const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// RunSummary is the collapsed view of one fetch run, aggregated from its
// event stream.
type RunSummary struct {
	RunID       string     `json:"run_id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Status      RunStatus  `json:"status"`
	Pages       int        `json:"pages"`
	RecordsSeen int        `json:"records_seen"`
	RecordsKept int        `json:"records_kept"`
	Bytes       int64      `json:"bytes"`
	Error       string     `json:"error,omitempty"`
}
