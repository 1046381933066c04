package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
)

type staticResolver map[string]*access.Caller

func (s staticResolver) Resolve(ctx context.Context, token string) (*access.Caller, error) {
	if caller, ok := s[token]; ok {
		return caller, nil
	}
	return nil, apperr.ErrUnauthenticated
}

var testResolver = staticResolver{
	"admin-token": {UserID: "u-admin", Role: access.RoleAdmin},
	"emp-token":   {UserID: "u-emp", Role: access.RoleEmployee, EmployeeID: "emp-1"},
}

func TestAuthMiddlewareSetsUserFromBearer(t *testing.T) {
	var got *access.Caller
	handler := Auth(testResolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			t.Fatal("expected user in context")
		}
		got = user
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.UserID != "u-admin" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestAuthMiddlewareReadsSessionCookie(t *testing.T) {
	var got *access.Caller
	handler := Auth(testResolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "emp-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.EmployeeID != "emp-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestAuthMiddlewareMissingOrInvalidToken(t *testing.T) {
	handler := Auth(testResolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			t.Fatal("did not expect user in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequirePermission(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := Auth(testResolver)(RequirePermission(access.PermPayrollManage)(ok))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"employee", "emp-token", http.StatusForbidden},
		{"admin", "admin-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestRequirePermissionRejectsUnknownPermission(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown permission")
		}
	}()
	RequirePermission("payroll.delete")
}
