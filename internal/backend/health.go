package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Health is the reachability of the marketplace backend
type Health struct {
	Status    string        `json:"status"` // healthy, degraded, unhealthy
	URL       string        `json:"url"`
	Latency   time.Duration `json:"latency_ms"`
	Circuit   CircuitState  `json:"circuit"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// CheckHealth probes the product listing without going through the breaker
// or the cache. An open breaker reports degraded even when the probe passes.
func (c *Client) CheckHealth(ctx context.Context) Health {
	start := time.Now()
	result := Health{
		URL:       c.baseURL,
		Circuit:   c.breaker.State(),
		Timestamp: start,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to create request: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("ngrok-skip-browser-warning", "true")

	resp, err := c.httpClient.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to reach backend: %v", err)
		return result
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode != http.StatusOK:
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
	case result.Circuit != StateClosed:
		result.Status = "degraded"
	default:
		result.Status = "healthy"
	}
	return result
}
