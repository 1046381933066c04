package reports

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/domain/leave"
	"hrpayroll/internal/domain/payroll"
	"hrpayroll/internal/platform/store"
)

type PayslipTotals struct {
	Count           int             `json:"count"`
	GrossSalary     decimal.Decimal `json:"grossSalary"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetSalary       decimal.Decimal `json:"netSalary"`
	IncomeTax       decimal.Decimal `json:"incomeTax"`
	ProvidentFund   decimal.Decimal `json:"providentFund"`
	Insurance       decimal.Decimal `json:"insurance"`
}

type DepartmentSummary struct {
	Department string          `json:"department"`
	Employees  int             `json:"employees"`
	LatestNet  decimal.Decimal `json:"latestNet"`
}

type Summary struct {
	Employees       int                 `json:"employees"`
	ActiveEmployees int                 `json:"activeEmployees"`
	PendingLeaves   int                 `json:"pendingLeaves"`
	DraftRuns       int                 `json:"draftRuns"`
	ProcessedRuns   int                 `json:"processedRuns"`
	LatestRun       *payroll.Run        `json:"latestRun,omitempty"`
	Payslips        PayslipTotals       `json:"payslips"`
	Departments     []DepartmentSummary `json:"departments"`
}

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Summary aggregates headcount, leave and payroll figures. LatestRun is the
// processed or locked run with the latest start date.
func (s *Service) Summary(ctx context.Context, caller *access.Caller) (Summary, error) {
	if err := access.Authorize(caller, access.PermReportsRead); err != nil {
		return Summary{}, err
	}
	employees, err := core.LoadEmployees(ctx, s.store)
	if err != nil {
		return Summary{}, err
	}
	leaves, err := store.All[leave.Leave](ctx, s.store, store.Leaves)
	if err != nil {
		return Summary{}, err
	}
	runs, err := store.All[payroll.Run](ctx, s.store, store.PayrollRuns)
	if err != nil {
		return Summary{}, err
	}
	payslips, err := store.All[payroll.Payslip](ctx, s.store, store.Payslips)
	if err != nil {
		return Summary{}, err
	}

	var out Summary
	departments := map[string]*DepartmentSummary{}
	department := func(name string) *DepartmentSummary {
		if name == "" {
			name = "Unassigned"
		}
		d, ok := departments[name]
		if !ok {
			d = &DepartmentSummary{Department: name}
			departments[name] = d
		}
		return d
	}

	out.Employees = len(employees)
	for _, emp := range employees {
		if emp.IsActive {
			out.ActiveEmployees++
			department(emp.Department).Employees++
		}
	}
	for _, lv := range leaves {
		if lv.Status == leave.StatusPending {
			out.PendingLeaves++
		}
	}
	for i, run := range runs {
		switch run.Status {
		case payroll.RunStatusDraft:
			out.DraftRuns++
		case payroll.RunStatusProcessed, payroll.RunStatusLocked:
			out.ProcessedRuns++
			if out.LatestRun == nil || run.StartDate > out.LatestRun.StartDate {
				out.LatestRun = &runs[i]
			}
		}
	}

	issued := make(map[string]bool, len(runs))
	for _, run := range runs {
		if payroll.Issued(run.Status) {
			issued[run.ID] = true
		}
	}
	for _, slip := range payslips {
		if !issued[slip.PayrollRunID] {
			continue
		}
		out.Payslips.Count++
		out.Payslips.GrossSalary = out.Payslips.GrossSalary.Add(slip.GrossSalary)
		out.Payslips.TotalDeductions = out.Payslips.TotalDeductions.Add(slip.TotalDeductions)
		out.Payslips.NetSalary = out.Payslips.NetSalary.Add(slip.NetSalary)
		out.Payslips.IncomeTax = out.Payslips.IncomeTax.Add(slip.IncomeTax)
		out.Payslips.ProvidentFund = out.Payslips.ProvidentFund.Add(slip.ProvidentFund)
		out.Payslips.Insurance = out.Payslips.Insurance.Add(slip.Insurance)
		if out.LatestRun != nil && slip.PayrollRunID == out.LatestRun.ID {
			d := department(slip.Department)
			d.LatestNet = d.LatestNet.Add(slip.NetSalary)
		}
	}

	out.Departments = make([]DepartmentSummary, 0, len(departments))
	for _, d := range departments {
		out.Departments = append(out.Departments, *d)
	}
	sort.Slice(out.Departments, func(i, j int) bool { return out.Departments[i].Department < out.Departments[j].Department })
	return out, nil
}
