package topology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/craftmesh/proxysync/pkg/logger"
)

// Fetcher retrieves the desired backend topology for this proxy
type Fetcher interface {
	Fetch(ctx context.Context) ([]DesiredServer, error)
}

// HTTPFetcher fetches the desired topology from the control plane's
// servers endpoint: GET {endpoint}/servers/{namespace}/{identity-path}
type HTTPFetcher struct {
	fetchURL   string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher for one proxy identity. The identity
// path is either the proxy name or an env/tag pair, depending on how the
// deployment registers itself with the control plane.
func NewHTTPFetcher(endpoint, namespace, identityPath string) *HTTPFetcher {
	return &HTTPFetcher{
		fetchURL:   fmt.Sprintf("%s/servers/%s/%s", normalizeEndpoint(endpoint), namespace, identityPath),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// URL returns the fully templated fetch URL
func (f *HTTPFetcher) URL() string {
	return f.fetchURL
}

// Fetch performs a single GET against the control plane. Any transport,
// status, or decode problem fails the whole fetch; there is no retry and
// no partial acceptance.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]DesiredServer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("Fetching desired topology", map[string]interface{}{
		"url": f.fetchURL,
	})

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("topology request to %s failed: %w", f.fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("topology endpoint %s returned status %d", f.fetchURL, resp.StatusCode)
	}

	var servers []DesiredServer
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, fmt.Errorf("failed to decode topology response from %s: %w", f.fetchURL, err)
	}

	for i, server := range servers {
		if server.Name == "" || server.Address == "" {
			return nil, fmt.Errorf("topology entry %d from %s is missing name or address", i, f.fetchURL)
		}
	}

	return servers, nil
}

// normalizeEndpoint makes scheme-less endpoints (the local-dev default
// is "localhost:8181") usable as a base URL.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.Contains(endpoint, "://") {
		return "http://" + endpoint
	}
	return endpoint
}
