// Package api hosts the HTTP server, middleware, and handlers for the
// character service. Notable routes:
//   - GET / for the HTML dashboard.
//   - GET /characters for the filtered character listing.
//   - GET /healthcheck for the fixed liveness payload, /readyz for snapshot
//     readiness.
//   - GET /metrics for Prometheus scraping.
//   - GET /api/runs and /api/runs/{run_id} for recent fetch-run history.
package api
