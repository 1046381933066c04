package requestctx

import (
	"context"
	"testing"

	"hrpayroll/internal/domain/access"
)

func TestValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	if RequestID(ctx) != "" {
		t.Fatal("expected empty request id")
	}
	if _, ok := Caller(ctx); ok {
		t.Fatal("expected no caller")
	}

	caller := &access.Caller{UserID: "u-1", Role: access.RoleEmployee, EmployeeID: "emp-1"}
	ctx = WithCaller(WithRequestID(ctx, "req-1"), caller)
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	got, ok := Caller(ctx)
	if !ok || got.EmployeeID != "emp-1" {
		t.Fatalf("unexpected caller %+v", got)
	}

	if _, ok := Caller(WithCaller(context.Background(), nil)); ok {
		t.Fatal("nil caller must not count as authenticated")
	}
}
