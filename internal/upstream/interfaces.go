package upstream

import (
	"context"
	"time"
)

// PageFetcher fetches a single page URL and returns the raw response. Any
// received response is returned with its status code; only transport-level
// failures produce an error.
type PageFetcher interface {
	FetchPage(ctx context.Context, rawURL string) (FetchResponse, error)
}

// FetchResponse carries the raw bytes and metadata of one page fetch.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
