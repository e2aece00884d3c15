package replay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// fetcher opens replay inputs from URLs or local files.
type fetcher struct {
	httpClient *http.Client
}

func newFetcher(client *http.Client) *fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &fetcher{httpClient: client}
}

// open returns a reader for an http(s) URL or a local file path.
func (f *fetcher) open(ctx context.Context, urlOrPath string) (io.ReadCloser, error) {
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		return os.Open(urlOrPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlOrPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", urlOrPath, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlOrPath)
	}
	return resp.Body, nil
}

// Open opens a URL or local file path with the default HTTP client.
func Open(ctx context.Context, urlOrPath string) (io.ReadCloser, error) {
	return newFetcher(nil).open(ctx, urlOrPath)
}
