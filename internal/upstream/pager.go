package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
)

// Pager walks the upstream page chain lazily: each Next call fetches exactly
// one page and remembers the upstream pointer to the following one. The
// sequence is finite and not restartable; once exhausted or failed, Next
// keeps reporting done.
type Pager struct {
	fetcher  PageFetcher
	next     string
	index    int
	maxPages int
	done     bool
}

// NewPager creates a Pager that starts at startURL. maxPages caps the number
// of pages a run may touch; zero or negative means no cap.
func NewPager(fetcher PageFetcher, startURL string, maxPages int) *Pager {
	return &Pager{
		fetcher:  fetcher,
		next:     startURL,
		maxPages: maxPages,
	}
}

// Next fetches the pending page. It returns (result, true, nil) while pages
// remain, (zero, false, nil) once the sequence is exhausted, and
// (zero, false, *FetchError) when a page fails. A failed pager is done.
func (p *Pager) Next(ctx context.Context) (PageResult, bool, error) {
	if p.done || p.next == "" {
		p.done = true
		return PageResult{}, false, nil
	}

	index := p.index + 1
	url := p.next

	if p.maxPages > 0 && index > p.maxPages {
		p.done = true
		return PageResult{}, false, newFetchError(index, url, fmt.Errorf("page limit %d exceeded", p.maxPages))
	}

	resp, err := p.fetcher.FetchPage(ctx, url)
	if err != nil {
		p.done = true
		return PageResult{}, false, newFetchError(index, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.done = true
		return PageResult{}, false, newFetchError(index, url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var pg page
	if err := json.Unmarshal(resp.Body, &pg); err != nil {
		p.done = true
		return PageResult{}, false, newFetchError(index, url, fmt.Errorf("decode page: %w", err))
	}

	p.index = index
	p.next = pg.Info.Next

	records := make([]character.Record, 0, len(pg.Results))
	for _, rec := range pg.Results {
		records = append(records, rec.record())
	}

	return PageResult{
		Index:      index,
		URL:        url,
		Next:       pg.Info.Next,
		Records:    records,
		Bytes:      len(resp.Body),
		StatusCode: resp.StatusCode,
		Duration:   resp.Duration,
	}, true, nil
}
