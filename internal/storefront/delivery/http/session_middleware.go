package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/feirinha-uesb/storefront/pkg/auth"
	"github.com/feirinha-uesb/storefront/pkg/logger"
)

// Session transport names
const (
	SessionCookieName  = "feirinha_session"
	SessionTokenHeader = "X-Session-Token"
)

// SessionMiddleware resolves the storefront session of a request from a
// Bearer token or the session cookie. Requests without a valid token start a
// new session whose token is returned in the cookie and the X-Session-Token
// header.
func SessionMiddleware(tokens *auth.TokenManager, ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r)
			sessionID := ""
			if token != "" {
				id, err := tokens.ValidateToken(token)
				if err != nil {
					logger.Debug(r.Context()).Err(err).Msg("Discarding invalid session token")
				} else {
					sessionID = id
				}
			}

			if sessionID == "" {
				id, newToken, err := tokens.NewSession()
				if err != nil {
					logger.Error(r.Context()).Err(err).Msg("Failed to start session")
					respondError(w, http.StatusInternalServerError, "Failed to start session")
					return
				}
				sessionID = id
				setSessionToken(w, newToken, ttl, secure)
				logger.Debug(r.Context()).Str("session_id", sessionID).Msg("Started new session")
			}

			next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), sessionID)))
		})
	}
}

func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func setSessionToken(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	w.Header().Set(SessionTokenHeader, token)
}

type sessionIDKey struct{}

// withSessionID stores the session of a request and scopes its log lines to it
func withSessionID(ctx context.Context, sessionID string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey{}, sessionID)
	scoped := logger.Logger.With().Str("session_id", sessionID).Logger()
	return scoped.WithContext(ctx)
}

// SessionIDFromContext returns the session resolved by SessionMiddleware
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok && id != ""
}
