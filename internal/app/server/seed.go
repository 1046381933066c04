package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/attendance"
	"hrpayroll/internal/domain/auth"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/domain/leave"
	"hrpayroll/internal/platform/store"
)

func demoStructures() []core.SalaryStructure {
	amount := decimal.NewFromInt
	return []core.SalaryStructure{
		{ID: "sal-1", Name: "Junior Level", BasicSalary: amount(30000), HRA: amount(12000), SpecialAllowance: amount(8000), EmployerPF: amount(3600), Insurance: amount(500), EffectiveFrom: "2024-01-01"},
		{ID: "sal-2", Name: "Mid Level", BasicSalary: amount(50000), HRA: amount(20000), SpecialAllowance: amount(15000), Bonus: amount(5000), EmployerPF: amount(6000), Insurance: amount(1000), EffectiveFrom: "2024-01-01"},
		{ID: "sal-3", Name: "Senior Level", BasicSalary: amount(80000), HRA: amount(32000), SpecialAllowance: amount(28000), Bonus: amount(10000), VariablePay: amount(5000), EmployerPF: amount(9600), Insurance: amount(2000), EffectiveFrom: "2024-01-01"},
	}
}

func demoEmployees() []core.Employee {
	return []core.Employee{
		{ID: "emp-1", EmployeeCode: "EMP001", Name: "Sarah Johnson", Email: "sarah.johnson@company.com", Phone: "+1-555-0101", DateOfJoining: "2022-01-15", Department: "Engineering", Designation: "Senior Software Engineer", EmploymentType: core.EmploymentFullTime, BankAccount: "1234567890", IFSCCode: "BANK0001234", TaxID: "TAX123456", SalaryStructureID: "sal-3", IsActive: true},
		{ID: "emp-2", EmployeeCode: "EMP002", Name: "Michael Chen", Email: "michael.chen@company.com", Phone: "+1-555-0102", DateOfJoining: "2023-03-20", Department: "Engineering", Designation: "Software Engineer", EmploymentType: core.EmploymentFullTime, BankAccount: "2345678901", IFSCCode: "BANK0001234", TaxID: "TAX234567", SalaryStructureID: "sal-2", IsActive: true},
		{ID: "emp-3", EmployeeCode: "EMP003", Name: "Emily Rodriguez", Email: "emily.rodriguez@company.com", Phone: "+1-555-0103", DateOfJoining: "2023-06-10", Department: "Human Resources", Designation: "HR Manager", EmploymentType: core.EmploymentFullTime, BankAccount: "3456789012", IFSCCode: "BANK0001234", TaxID: "TAX345678", SalaryStructureID: "sal-2", IsActive: true},
		{ID: "emp-4", EmployeeCode: "EMP004", Name: "James Wilson", Email: "james.wilson@company.com", Phone: "+1-555-0104", DateOfJoining: "2024-01-05", Department: "Marketing", Designation: "Marketing Specialist", EmploymentType: core.EmploymentFullTime, BankAccount: "4567890123", IFSCCode: "BANK0001234", TaxID: "TAX456789", SalaryStructureID: "sal-1", IsActive: true},
		{ID: "emp-5", EmployeeCode: "EMP005", Name: "Lisa Anderson", Email: "lisa.anderson@company.com", Phone: "+1-555-0105", DateOfJoining: "2022-08-12", Department: "Finance", Designation: "Senior Accountant", EmploymentType: core.EmploymentFullTime, BankAccount: "5678901234", IFSCCode: "BANK0001234", TaxID: "TAX567890", SalaryStructureID: "sal-2", IsActive: true},
		{ID: "emp-6", EmployeeCode: "EMP006", Name: "David Kim", Email: "david.kim@company.com", Phone: "+1-555-0106", DateOfJoining: "2024-02-01", Department: "Engineering", Designation: "Junior Developer", EmploymentType: core.EmploymentContract, BankAccount: "6789012345", IFSCCode: "BANK0001234", TaxID: "TAX678901", SalaryStructureID: "sal-1", IsActive: true},
	}
}

// seedDemo writes the demo organisation and weekday attendance for the month
// of now. Existing records are left alone, so reseeding is harmless.
func seedDemo(ctx context.Context, st store.Store, now time.Time) error {
	for _, structure := range demoStructures() {
		if err := saveNew(ctx, st, store.SalaryStructures, structure.ID, structure); err != nil {
			return err
		}
	}
	employees := demoEmployees()
	for _, emp := range employees {
		if err := saveNew(ctx, st, store.Employees, emp.ID, emp); err != nil {
			return err
		}
		if err := saveNew(ctx, st, store.LeaveBalances, emp.ID, leave.DefaultBalance(emp.ID)); err != nil {
			return err
		}
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i, emp := range employees {
		for day := first; !day.After(now); day = day.AddDate(0, 0, 1) {
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				continue
			}
			date := day.Format(time.DateOnly)
			rec := attendance.Record{
				ID:         attendance.RecordID(emp.ID, date),
				EmployeeID: emp.ID,
				Date:       date,
				Status:     demoStatus(i, day.Day()),
			}
			if err := saveNew(ctx, st, store.Attendance, rec.ID, rec); err != nil {
				return err
			}
		}
	}
	slog.Info("seeded demo data", "employees", len(employees))
	return nil
}

// demoStatus spreads a few WFH and absent days across employees.
func demoStatus(employee, day int) string {
	switch (employee + day) % 10 {
	case 4:
		return attendance.StatusWFH
	case 9:
		return attendance.StatusAbsent
	default:
		return attendance.StatusPresent
	}
}

func seedEmployeeUsers(ctx context.Context, st store.Store, users *auth.Service, password string) error {
	employees, err := core.LoadEmployees(ctx, st)
	if err != nil {
		return err
	}
	for _, emp := range employees {
		if !emp.IsActive || emp.Email == "" {
			continue
		}
		created, err := users.EnsureUser(ctx, auth.CreateUserInput{Email: emp.Email, Password: password, Role: access.RoleEmployee, EmployeeID: emp.ID})
		if err != nil {
			return err
		}
		if created {
			slog.Info("seeded employee user", "email", emp.Email, "employeeId", emp.ID)
		}
	}
	return nil
}

func saveNew(ctx context.Context, st store.Store, c store.Collection, id string, v any) error {
	_, err := store.SaveIfVersion(ctx, st, c, id, v, 0)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil
	}
	return err
}
