// Package fetcher retrieves web pages so their markup can be converted
// like pasted content.
// Implement the Fetcher interface to plug in authenticated or cached
// retrieval.
package fetcher

import (
	"context"
	"errors"
	"time"
)

// Fetcher abstracts page retrieval.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources.
	Close() error

	// Type returns a string identifying the fetcher type.
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Content represents fetched page data.
type Content struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrNotHTML).
var (
	// ErrNotHTML indicates the response is not a markup document.
	ErrNotHTML = errors.New("response is not html")
	// ErrTooLarge indicates the response exceeded the body size limit.
	ErrTooLarge = errors.New("response too large")
)
