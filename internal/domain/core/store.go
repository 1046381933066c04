package core

import (
	"context"
	"errors"
	"fmt"

	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/platform/store"
)

func LoadEmployee(ctx context.Context, st store.Store, id string) (Employee, int64, error) {
	emp, version, err := store.Get[Employee](ctx, st, store.Employees, id)
	if errors.Is(err, store.ErrNotFound) {
		return Employee{}, 0, fmt.Errorf("%w: employee %s", apperr.ErrNotFound, id)
	}
	return emp, version, err
}

// ActiveEmployee loads an employee that may still file leave and attendance.
func ActiveEmployee(ctx context.Context, st store.Store, id string) (Employee, error) {
	emp, _, err := LoadEmployee(ctx, st, id)
	if err != nil {
		return Employee{}, err
	}
	if !emp.IsActive {
		return Employee{}, fmt.Errorf("%w: employee %s is deactivated", apperr.ErrForbidden, id)
	}
	return emp, nil
}

func LoadEmployees(ctx context.Context, st store.Store) ([]Employee, error) {
	return store.All[Employee](ctx, st, store.Employees)
}

func LoadSalaryStructure(ctx context.Context, st store.Store, id string) (SalaryStructure, int64, error) {
	structure, version, err := store.Get[SalaryStructure](ctx, st, store.SalaryStructures, id)
	if errors.Is(err, store.ErrNotFound) {
		return SalaryStructure{}, 0, fmt.Errorf("%w: salary structure %s", apperr.ErrNotFound, id)
	}
	return structure, version, err
}

func LoadSalaryStructures(ctx context.Context, st store.Store) ([]SalaryStructure, error) {
	return store.All[SalaryStructure](ctx, st, store.SalaryStructures)
}

type payslipStructureRef struct {
	PayrollRunID      string `json:"payrollRunId"`
	SalaryStructureID string `json:"salaryStructureId"`
}

type runStatusRef struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Payroll run statuses whose payslips are published.
var issuedRunStatuses = map[string]bool{"Processed": true, "Locked": true}

// structureReferenced reports whether a payslip of a processed or locked run
// was computed from the structure.
func structureReferenced(ctx context.Context, st store.Store, structureID string) (bool, error) {
	runs, err := store.All[runStatusRef](ctx, st, store.PayrollRuns)
	if err != nil {
		return false, err
	}
	issued := make(map[string]bool, len(runs))
	for _, run := range runs {
		if issuedRunStatuses[run.Status] {
			issued[run.ID] = true
		}
	}
	refs, err := store.All[payslipStructureRef](ctx, st, store.Payslips)
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if ref.SalaryStructureID == structureID && issued[ref.PayrollRunID] {
			return true, nil
		}
	}
	return false, nil
}
