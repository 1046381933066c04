package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"hrpayroll/internal/transport/http/api"
)

// LoginRateLimit limits attempts per client IP per minute. onLimited, when
// set, is called for every rejected request.
func LoginRateLimit(perMinute int, onLimited func()) func(http.Handler) http.Handler {
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if onLimited != nil {
				onLimited()
			}
			slog.Warn("rate limit exceeded", "path", r.URL.Path, "requestId", GetRequestID(r.Context()))
			api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later", GetRequestID(r.Context()))
		}),
	)
}
