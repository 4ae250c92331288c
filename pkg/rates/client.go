package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client fetches rate snapshots from a spot-rates HTTP API. Requests are
// throttled client-side so polling loops cannot trip provider limits.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given API base URL. requestsPerSec
// caps the outbound request rate; zero or negative means 1 rps.
func NewClient(baseURL string, requestsPerSec float64) *Client {
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
	}
}

// FetchSnapshot retrieves the latest rates quoted against base.
func (c *Client) FetchSnapshot(ctx context.Context, base string) (*Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := c.baseURL + "/latest?base=" + url.QueryEscape(strings.ToUpper(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rates API returned status %d: %s", resp.StatusCode, string(body))
	}

	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snapshot, nil
}
