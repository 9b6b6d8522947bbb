package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// FetchError means the feed payload could not be retrieved. Fatal to
// the run; no retries at this layer.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client retrieves the raw feed payload for a feed URL.
type Client interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient fetches feeds over HTTP(S), or from the local filesystem
// for file:// URLs and scheme-less paths (common in staging setups).
// Any other scheme is rejected.
type HTTPClient struct {
	client *http.Client
}

func NewHTTPClient(client *http.Client) *HTTPClient {
	return &HTTPClient{client: client}
}

func (c *HTTPClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	path, ok, err := localPath(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/xml, text/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return data, nil
}

func localPath(url string) (string, bool, error) {
	if strings.HasPrefix(url, "file://") {
		return strings.TrimPrefix(url, "file://"), true, nil
	}
	if i := strings.Index(url, "://"); i >= 0 {
		scheme := url[:i]
		if scheme == "http" || scheme == "https" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("unsupported scheme %q", scheme)
	}
	// No scheme at all: treat as a filesystem path.
	return url, true, nil
}
