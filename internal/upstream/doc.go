// Package upstream implements the paginated character fetch pipeline: a
// colly-backed page transport, a lazy pager that walks the upstream "next"
// chain, and a fetcher that filters each page down to the surviving
// characters. A run fails fast on the first page error and never returns a
// partial result.
package upstream
