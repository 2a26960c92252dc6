// Package evidence fetches raw, source-specific data for a ticker. Each
// fetcher catches network and format errors where possible and returns a
// degraded result with sentinel values instead, so the sentiment agents can
// treat "no data" as a fast path rather than a failure.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// doJSON performs a GET request and decodes the JSON response body into v.
func doJSON(ctx context.Context, client *http.Client, url, userAgent string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Host)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
