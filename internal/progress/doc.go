// Package progress provides the event primitives, non-blocking hub, and
// emitter interfaces used to report fetch-run progress. Events are batched on
// a background goroutine and fanned out to pluggable sinks such as Prometheus
// metrics or structured logs.
package progress
