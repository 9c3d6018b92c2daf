package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is where published copies of the companion documents
// live. Override with assets.base-url in config.
const DefaultBaseURL = "https://raw.githubusercontent.com/planfirst/planfirst/main/assets"

// DefaultFetchTimeout bounds each individual asset fetch.
const DefaultFetchTimeout = 10 * time.Second

// maxAssetSize caps a single fetched document. The largest shipped
// asset is a few KiB; anything near the cap is not one of ours.
const maxAssetSize = 1 << 20

// Remote fetches assets over HTTP from a base URL.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

// NewRemote returns a remote provider for baseURL. A zero timeout uses
// DefaultFetchTimeout.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Fetch implements Provider. Non-2xx responses and empty bodies are
// errors; the caller decides whether to fall back.
func (r *Remote) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := url.JoinPath(r.BaseURL, name)
	if err != nil {
		return nil, fmt.Errorf("building asset URL for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", name, err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", name, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetching %s: empty response body", name)
	}
	return data, nil
}
