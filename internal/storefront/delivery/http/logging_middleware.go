package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// routeName is the matched mux path template, or the raw path when no
// route matched.
func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// LoggingMiddleware writes one access log line per request. The level
// follows the response status.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		ctxLog := logger.WithContext(r.Context())
		var event *zerolog.Event
		switch {
		case rw.statusCode >= http.StatusInternalServerError:
			event = ctxLog.Error()
		case rw.statusCode >= http.StatusBadRequest:
			event = ctxLog.Warn()
		case r.URL.Path == "/health" || r.URL.Path == "/metrics":
			event = ctxLog.Debug()
		default:
			event = ctxLog.Info()
		}

		event.
			Str("method", r.Method).
			Str("route", routeName(r)).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", rw.statusCode).
			Int("bytes", rw.written).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// TracingMiddleware starts a server span named after the matched route
func TracingMiddleware(service string, next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, service,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + routeName(r)
		}),
	)
}
