package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollyFetcher_FetchPage_Succeeds(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"info":{"next":""},"results":[]}`))
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(CollyConfig{
		UserAgent: "earthsurvivors-test",
		Timeout:   5 * time.Second,
	}, zap.NewNop())

	resp, err := fetcher.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"info":{"next":""},"results":[]}`, string(resp.Body))
	require.Equal(t, "earthsurvivors-test", gotUA)
	require.Equal(t, "application/json", gotAccept)
	require.Greater(t, resp.Duration, time.Duration(0))
}

func TestCollyFetcher_FetchPage_ReturnsNon2xxResponses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"There is nothing here"}`))
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(CollyConfig{Timeout: 5 * time.Second}, zap.NewNop())

	resp, err := fetcher.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, string(resp.Body), "nothing here")
}

func TestCollyFetcher_FetchPage_AllowsRevisits(t *testing.T) {
	t.Parallel()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(CollyConfig{Timeout: 5 * time.Second}, zap.NewNop())

	_, err := fetcher.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = fetcher.FetchPage(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, 2, hits)
}

func TestCollyFetcher_FetchPage_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	fetcher := NewCollyFetcher(CollyConfig{Timeout: time.Second}, zap.NewNop())

	_, err := fetcher.FetchPage(context.Background(), server.URL)
	require.Error(t, err)
}

func TestCollyFetcher_FetchPage_ContextCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewCollyFetcher(CollyConfig{Timeout: 30 * time.Second}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := fetcher.FetchPage(ctx, server.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
