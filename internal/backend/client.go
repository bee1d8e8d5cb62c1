package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:8080/crud/api"

var backendRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_backend_requests_total",
		Help: "Total number of requests sent to the marketplace backend",
	},
	[]string{"resource", "status"},
)

func init() {
	prometheus.MustRegister(backendRequestsTotal)
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Payload string
}

func (e *APIError) Error() string {
	if e.Payload != "" {
		return e.Payload
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsNotFound reports whether err is a backend 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Config holds the backend client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the marketplace REST API and normalizes its payloads
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
	cache      *CatalogCache
}

// NewClient creates a backend client. cache may be nil.
func NewClient(cfg Config, breaker *CircuitBreaker, cache *CatalogCache) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if breaker == nil {
		breaker = NewCircuitBreaker("backend", 0, 0)
	}

	logger.Logger.Info().
		Str("base_url", baseURL).
		Dur("timeout", timeout).
		Bool("catalog_cache", cache != nil).
		Msg("Backend client configured")

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		cache:   cache,
	}
}

// Breaker exposes the circuit breaker for health reporting
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// InvalidateCatalog drops cached catalog responses
func (c *Client) InvalidateCatalog(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}

// get decodes the JSON answer of GET path into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	cacheable := isCacheable(path)
	if cacheable {
		if cached, ok := c.cache.get(ctx, path); ok {
			return json.Unmarshal(cached, out)
		}
	}

	body, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if cacheable {
		c.cache.set(ctx, path, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// send encodes in as the JSON body and decodes the answer into out when
// out is non-nil and the backend returned a body.
func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	body, err := c.request(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if changesCatalog(path) {
		if err := c.cache.Invalidate(ctx); err != nil {
			logger.Warn(ctx).Err(err).Str("path", path).Msg("Failed to invalidate catalog cache")
		}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// request performs one call through the circuit breaker. Only transport
// errors and 5xx answers count as breaker failures.
func (c *Client) request(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	resource := resourceOf(path)
	var body []byte
	var apiErr *APIError

	err := c.breaker.Call(func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("ngrok-skip-browser-warning", "true")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			backendRequestsTotal.WithLabelValues(resource, "error").Inc()
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		backendRequestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

		logger.Debug(ctx).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("Backend request")

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr = &APIError{Status: resp.StatusCode, Payload: strings.TrimSpace(string(body))}
			if resp.StatusCode >= 500 {
				return apiErr
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			logger.Warn(ctx).Str("path", path).Msg("Circuit breaker is open - request blocked")
		}
		return nil, err
	}
	if apiErr != nil {
		return nil, apiErr
	}
	return body, nil
}

// resourceOf keeps metric cardinality low: /products/12 -> products
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}
