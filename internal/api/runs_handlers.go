package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/progress"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// RunSource provides recent fetch-run summaries for the read-only run
// endpoints. The progress RecentSink implements it.
type RunSource interface {
	Runs(limit int) []progress.RunSummary
	Run(id string) (progress.RunSummary, bool)
}

// RunsHandler exposes read-only fetch-run history endpoints.
type RunsHandler struct {
	source RunSource
	logger *zap.Logger
}

// NewRunsHandler wires the run source and logger.
func NewRunsHandler(source RunSource, logger *zap.Logger) *RunsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunsHandler{source: source, logger: logger}
}

// ListRuns handles GET /api/runs?status=&limit=. It returns a JSON object
// {"runs": [...]} newest first, 400 for invalid filters, or 503 when no run
// history is wired up.
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeError(w, http.StatusServiceUnavailable, "run history unavailable")
		return
	}

	limit, err := parseRunLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statusParam := strings.TrimSpace(r.URL.Query().Get("status"))
	var status *progress.RunStatus
	if statusParam != "" {
		statusVal, parseErr := parseRunStatus(statusParam)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		status = &statusVal
	}

	runs := h.source.Runs(0)
	out := make([]progress.RunSummary, 0, limit)
	for _, run := range runs {
		if status != nil && run.Status != *status {
			continue
		}
		out = append(out, run)
		if len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

// GetRun handles GET /api/runs/{run_id}. It returns {"run": {...}} on
// success, 404 for unknown run ids, or 503 when no run history is wired up.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeError(w, http.StatusServiceUnavailable, "run history unavailable")
		return
	}

	runID := chi.URLParam(r, "run_id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run_id is required")
		return
	}
	run, ok := h.source.Run(runID)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run})
}

func parseRunLimit(r *http.Request) (int, error) {
	limit := defaultRunLimit
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		val, err := strconv.Atoi(limStr)
		if err != nil || val <= 0 {
			return 0, errors.New("invalid limit")
		}
		if val > maxRunLimit {
			val = maxRunLimit
		}
		limit = val
	}
	return limit, nil
}

func parseRunStatus(input string) (progress.RunStatus, error) {
	switch strings.ToLower(input) {
	case "running":
		return progress.RunRunning, nil
	case "success":
		return progress.RunSuccess, nil
	case "error", "failed", "failure":
		return progress.RunError, nil
	default:
		return "", errors.New("invalid status")
	}
}
