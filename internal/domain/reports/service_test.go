package reports

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/domain/leave"
	"hrpayroll/internal/domain/payroll"
	"hrpayroll/internal/platform/store"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	save := func(collection store.Collection, id string, value any) {
		t.Helper()
		_, err := store.Save(ctx, st, collection, id, value)
		require.NoError(t, err)
	}
	save(store.Employees, "emp-1", core.Employee{ID: "emp-1", Department: "Engineering", IsActive: true})
	save(store.Employees, "emp-2", core.Employee{ID: "emp-2", Department: "Engineering", IsActive: true})
	save(store.Employees, "emp-3", core.Employee{ID: "emp-3", Department: "Finance", IsActive: false})
	save(store.Leaves, "l-1", leave.Leave{ID: "l-1", Status: leave.StatusPending})
	save(store.Leaves, "l-2", leave.Leave{ID: "l-2", Status: leave.StatusApproved})
	save(store.PayrollRuns, "run-feb", payroll.Run{ID: "run-feb", StartDate: "2024-02-01", Status: payroll.RunStatusLocked})
	save(store.PayrollRuns, "run-mar", payroll.Run{ID: "run-mar", StartDate: "2024-03-01", Status: payroll.RunStatusProcessed})
	save(store.PayrollRuns, "run-apr", payroll.Run{ID: "run-apr", StartDate: "2024-04-01", Status: payroll.RunStatusDraft})
	for _, runID := range []string{"run-feb", "run-mar"} {
		for _, empID := range []string{"emp-1", "emp-2"} {
			slip := payroll.Payslip{ID: payroll.PayslipID(runID, empID), EmployeeID: empID, PayrollRunID: runID, Department: "Engineering"}
			slip.GrossSalary = decimal.NewFromInt(1000)
			slip.TotalDeductions = decimal.NewFromInt(200)
			slip.NetSalary = decimal.NewFromInt(800)
			save(store.Payslips, slip.ID, slip)
		}
	}

	leftover := payroll.Payslip{ID: payroll.PayslipID("run-apr", "emp-1"), EmployeeID: "emp-1", PayrollRunID: "run-apr", Department: "Engineering"}
	leftover.NetSalary = decimal.NewFromInt(5000)
	save(store.Payslips, leftover.ID, leftover)

	svc := NewService(st)
	summary, err := svc.Summary(ctx, &access.Caller{UserID: "u-admin", Role: access.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 3, summary.Employees)
	require.Equal(t, 2, summary.ActiveEmployees)
	require.Equal(t, 1, summary.PendingLeaves)
	require.Equal(t, 1, summary.DraftRuns)
	require.Equal(t, 2, summary.ProcessedRuns)
	require.Equal(t, "run-mar", summary.LatestRun.ID)
	require.Equal(t, 4, summary.Payslips.Count)
	require.True(t, summary.Payslips.NetSalary.Equal(decimal.NewFromInt(3200)))
	require.Len(t, summary.Departments, 1)
	require.Equal(t, 2, summary.Departments[0].Employees)
	require.True(t, summary.Departments[0].LatestNet.Equal(decimal.NewFromInt(1600)))

	_, err = svc.Summary(ctx, &access.Caller{UserID: "u-1", Role: access.RoleEmployee, EmployeeID: "emp-1"})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}
