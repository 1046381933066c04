package middleware

import (
	"fmt"
	"net/http"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/transport/http/api"
)

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission rejects requests whose caller role lacks permission.
// Services check again with the caller; this keeps forbidden requests from
// reaching body decoding. It panics on a permission outside the catalog, so a
// mistyped guard fails at route registration.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	if !access.KnownPermission(permission) {
		panic(fmt.Sprintf("middleware: unknown permission %q", permission))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthenticated", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !access.HasPermission(user.Role, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
