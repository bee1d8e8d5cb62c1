package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/feirinha-uesb/storefront/pkg/auth"
)

// MiddlewareConfig selects the middlewares of the storefront router and
// carries the session settings they need. A nil RateLimiter disables rate
// limiting.
type MiddlewareConfig struct {
	EnableLogging bool
	EnableTracing bool
	Tokens        *auth.TokenManager
	SessionTTL    time.Duration
	SecureCookie  bool
	RateLimiter   *RateLimiter
}

// DefaultMiddlewareConfig enables logging and tracing with insecure cookies
func DefaultMiddlewareConfig(tokens *auth.TokenManager, sessionTTL time.Duration, limiter *RateLimiter) MiddlewareConfig {
	return MiddlewareConfig{
		EnableLogging: true,
		EnableTracing: true,
		Tokens:        tokens,
		SessionTTL:    sessionTTL,
		RateLimiter:   limiter,
	}
}

// RegisterMiddlewares installs tracing before access logging so log lines
// carry the request's trace id.
func RegisterMiddlewares(router *mux.Router, config MiddlewareConfig) {
	if config.EnableTracing {
		router.Use(func(next http.Handler) http.Handler {
			return TracingMiddleware("storefront-http", next)
		})
	}
	if config.EnableLogging {
		router.Use(LoggingMiddleware)
	}
}

// RegisterSessionMiddlewares registers session resolution and rate limiting
// on the API subrouter
func RegisterSessionMiddlewares(api *mux.Router, config MiddlewareConfig) {
	api.Use(SessionMiddleware(config.Tokens, config.SessionTTL, config.SecureCookie))
	if config.RateLimiter != nil {
		api.Use(config.RateLimiter.Middleware)
	}
}
