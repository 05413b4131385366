package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
	"github.com/earthsurvivors/earthsurvivors/internal/config"
	"github.com/earthsurvivors/earthsurvivors/internal/metrics"
	"github.com/earthsurvivors/earthsurvivors/internal/snapshot"
)

// Server wires HTTP handlers to the snapshot store.
type Server struct {
	router chi.Router
	store  *snapshot.Store
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. The run source
// may be nil, in which case the /api/runs endpoints answer 503.
func NewServer(cfg config.Config, store *snapshot.Store, runs RunSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}

	metrics.Init()
	runsHandler := NewRunsHandler(runs, logger)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(cfg.Server.RequestTimeout))

	r.Get("/", s.dashboard)
	r.Get("/healthcheck", s.healthcheck)
	r.Get("/characters", s.characters)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/runs", runsHandler.ListRuns)
		r.Get("/runs/{run_id}", runsHandler.GetRun)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthcheck is the liveness contract: it always answers 200 with
// {"status":"ok"} no matter what state the snapshot is in. Readiness lives
// on /readyz.
func (s *Server) healthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// charactersResponse is the public listing payload.
type charactersResponse struct {
	Count      int                   `json:"count"`
	Characters []character.Character `json:"characters"`
}

// characters serves the reduced character listing from the current snapshot.
// A degraded or empty snapshot yields {"count":0,"characters":[]}, never null.
func (s *Server) characters(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Current()
	writeJSON(w, http.StatusOK, charactersResponse{
		Count:      snap.Count(),
		Characters: snap.Characters(),
	})
}

// readyz reports snapshot readiness: 200 once a fetch has populated the
// store, 503 while it is degraded. Liveness stays on /healthcheck.
func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Current()
	if snap.Degraded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  snap.Reason(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"characters": snap.Count(),
		"fetched_at": snap.FetchedAt(),
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestIDFrom(r.Context())),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
