package upstream

import "fmt"

// FetchError reports a failed page fetch. Page is the 1-based index of the
// page within the run, URL is the address that failed, and Err is the cause
// (transport failure, unexpected status, or decode failure).
type FetchError struct {
	Page int
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(page int, url string, err error) *FetchError {
	return &FetchError{Page: page, URL: url, Err: err}
}
