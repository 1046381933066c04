package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/requestctx"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "auth_session"

type Resolver interface {
	Resolve(ctx context.Context, token string) (*access.Caller, error)
}

// Auth attaches the caller to the request context when a valid token is sent
// as a bearer header or session cookie. Requests without one pass through
// unauthenticated.
func Auth(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			caller, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, apperr.ErrUnauthenticated) {
					slog.Warn("session resolve failed", "requestId", GetRequestID(r.Context()), "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), caller)))
		})
	}
}

func WithUser(ctx context.Context, caller *access.Caller) context.Context {
	return requestctx.WithCaller(ctx, caller)
}

// GetUser returns the caller, or nil and false for unauthenticated requests.
func GetUser(ctx context.Context) (*access.Caller, bool) {
	return requestctx.Caller(ctx)
}

func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
