package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/platform/store"
	"hrpayroll/internal/requestctx"
)

func TestRecordAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory())
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	require.NoError(t, svc.Record(ctx, "u-admin", ActionCreate, EntityEmployee, "emp-1", map[string]string{"name": "Sarah"}))
	require.NoError(t, svc.Record(ctx, "u-admin", ActionProcess, EntityPayrollRun, "run-1", map[string]int{"payslipsGenerated": 6}))

	admin := &access.Caller{UserID: "u-admin", Role: access.RoleAdmin}
	entries, err := svc.List(ctx, admin, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ActionProcess, entries[0].Action)

	var changes map[string]int
	require.NoError(t, json.Unmarshal(entries[0].Changes, &changes))
	require.Equal(t, 6, changes["payslipsGenerated"])

	filtered, err := svc.List(ctx, admin, Filter{Entity: EntityEmployee})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "emp-1", filtered[0].EntityID)
}

func TestListRequiresAdmin(t *testing.T) {
	svc := New(store.NewMemory())
	employee := &access.Caller{UserID: "u-1", Role: access.RoleEmployee, EmployeeID: "emp-1"}

	_, err := svc.List(context.Background(), employee, Filter{})
	require.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = svc.List(context.Background(), nil, Filter{})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestRecordTagsRequestID(t *testing.T) {
	ctx := requestctx.WithRequestID(context.Background(), "req-42")
	svc := New(store.NewMemory())
	require.NoError(t, svc.Record(ctx, "u-admin", ActionDelete, EntityEmployee, "emp-3", nil))

	entries, err := svc.List(context.Background(), &access.Caller{UserID: "u-admin", Role: access.RoleAdmin}, Filter{Action: ActionDelete})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "req-42", entries[0].RequestID)
	require.Empty(t, entries[0].Changes)
}
