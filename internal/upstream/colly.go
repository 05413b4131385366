package upstream

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyConfig controls collector behavior.
type CollyConfig struct {
	UserAgent string
	Timeout   time.Duration
}

const defaultFetchTimeout = 15 * time.Second

// CollyFetcher implements PageFetcher using the Colly collector. The base
// collector is cloned per request; clones share the pooled HTTP backend.
type CollyFetcher struct {
	cfg           CollyConfig
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher builds a CollyFetcher. Revisits are allowed because the
// same start URL is fetched again on every refresh run; non-2xx responses are
// returned to the caller rather than treated as collector errors.
func NewCollyFetcher(cfg CollyConfig, logger *zap.Logger) *CollyFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.WithTransport(newHTTPTransport())

	return &CollyFetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// FetchPage executes a single HTTP GET using Colly.
func (f *CollyFetcher) FetchPage(ctx context.Context, rawURL string) (FetchResponse, error) {
	var (
		result   FetchResponse
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector(start, &result, &fetchErr)

	if err := f.runCollector(ctx, collector, rawURL); err != nil {
		return FetchResponse{}, err
	}
	if fetchErr != nil {
		return FetchResponse{}, fmt.Errorf("colly response failed: %w", fetchErr)
	}
	return result, nil
}

func (f *CollyFetcher) buildCollector(start time.Time, result *FetchResponse, fetchErr *error) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	collector.SetRequestTimeout(timeout)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
		f.logger.Debug("fetching page", zap.String("url", r.URL.String()))
	})

	collector.OnResponse(func(r *colly.Response) {
		*result = FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	collector.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})

	return collector
}

func (f *CollyFetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
