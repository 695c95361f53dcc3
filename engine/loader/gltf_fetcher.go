package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves external resources (buffers and images) by URL.
// Implementations must be safe for concurrent use.
type Fetcher interface {
	// Fetch returns the full content addressed by url.
	//
	// Parameters:
	//   - ctx: the context bounding the request
	//   - url: the resource location (file path, file:// or http(s):// URL)
	//
	// Returns:
	//   - []byte: the resource content
	//   - error: error if the resource cannot be retrieved
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// defaultFetcher reads http(s) URLs with an http.Client and everything else from the filesystem.
type defaultFetcher struct {
	client *http.Client
}

var _ Fetcher = &defaultFetcher{}

// NewDefaultFetcher creates the Fetcher used when none is configured.
//
// Parameters:
//   - timeout: the per-request timeout for http(s) fetches, 0 for none
//
// Returns:
//   - Fetcher: a fetcher for http(s) URLs, file:// URLs and plain paths
func NewDefaultFetcher(timeout time.Duration) Fetcher {
	return &defaultFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *defaultFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return f.fetchHTTP(ctx, rawURL)
	}

	p := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid file URL %q: %w", rawURL, err)
		}
		p = u.Path
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

func (f *defaultFetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}
	return data, nil
}
