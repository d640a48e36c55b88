// Package fetcher retrieves search-hit pages as plain text for barcode
// scanning.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// PageReader fetches a URL and returns its visible text.
type PageReader interface {
	// Text returns the page body with markup stripped and whitespace
	// collapsed. Failures surface as errors; callers treat them as
	// "no extra text", never as fatal.
	Text(ctx context.Context, pageURL string) (string, error)
}

// Options configures the HTTP page reader.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Limiter   *rate.Limiter // optional pacing shared across fetches
}

// HTTPPageReader implements PageReader over net/http.
type HTTPPageReader struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// NewHTTPPageReader creates a page reader with the given options.
func NewHTTPPageReader(opts Options) *HTTPPageReader {
	if opts.Timeout == 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}
	return &HTTPPageReader{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: opts.Limiter,
	}
}

// maxBodyBytes caps how much of a page is read; barcodes near the end of a
// multi-megabyte page are not worth the transfer.
const maxBodyBytes = 1 << 20

var (
	tagPattern        = regexp.MustCompile(`(?s)<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes markup and collapses whitespace to single spaces.
func StripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

func (r *HTTPPageReader) Text(ctx context.Context, pageURL string) (string, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "fetcher: wait for limiter")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: fetch page")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("fetcher: unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: read body")
	}

	return StripTags(string(body)), nil
}
