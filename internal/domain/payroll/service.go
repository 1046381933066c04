package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/attendance"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/platform/blob"
	"hrpayroll/internal/platform/store"
)

// Counter is told how many payslips a run produced.
type Counter interface {
	PayslipsGenerated(n int)
}

type Service struct {
	store     store.Store
	audit     audit.Recorder
	documents blob.Storage
	counter   Counter
	now       func() time.Time
}

// NewService wires the payroll engine. documents and counter may be nil.
func NewService(st store.Store, rec audit.Recorder, documents blob.Storage, counter Counter) *Service {
	return &Service{store: st, audit: rec, documents: documents, counter: counter, now: time.Now}
}

func (s *Service) CreateRun(ctx context.Context, caller *access.Caller, input RunInput) (Run, error) {
	if err := access.Authorize(caller, access.PermPayrollManage); err != nil {
		return Run{}, err
	}
	period := strings.TrimSpace(input.Period)
	var missing []string
	if period == "" {
		missing = append(missing, "period")
	}
	if strings.TrimSpace(input.StartDate) == "" {
		missing = append(missing, "startDate")
	}
	if strings.TrimSpace(input.EndDate) == "" {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return Run{}, fmt.Errorf("%w: %s required", apperr.ErrInvalidInput, strings.Join(missing, ", "))
	}
	start, err1 := core.ParseDate(input.StartDate)
	end, err2 := core.ParseDate(input.EndDate)
	if err1 != nil || err2 != nil {
		return Run{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", apperr.ErrInvalidInput)
	}
	if end.Before(start) {
		return Run{}, fmt.Errorf("%w: endDate must be on or after startDate", apperr.ErrInvalidRange)
	}

	runs, err := store.All[Run](ctx, s.store, store.PayrollRuns)
	if err != nil {
		return Run{}, err
	}
	for _, other := range runs {
		otherStart, err1 := core.ParseDate(other.StartDate)
		otherEnd, err2 := core.ParseDate(other.EndDate)
		if err1 != nil || err2 != nil {
			continue
		}
		if core.RangesOverlap(otherStart, otherEnd, start, end) {
			return Run{}, fmt.Errorf("%w: overlaps payroll run %s (%s to %s)", apperr.ErrOverlappingPeriod, other.Period, other.StartDate, other.EndDate)
		}
	}

	run := Run{
		ID:        uuid.NewString(),
		Period:    period,
		StartDate: core.FormatDate(start),
		EndDate:   core.FormatDate(end),
		Status:    RunStatusDraft,
		CreatedAt: s.now().UTC(),
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.PayrollRuns, run.ID, run, 0); err != nil {
		return Run{}, err
	}
	s.record(ctx, caller, audit.ActionCreate, run.ID, run)
	return run, nil
}

// ListRuns returns every run, latest period first.
func (s *Service) ListRuns(ctx context.Context, caller *access.Caller) ([]Run, error) {
	if err := access.Authorize(caller, access.PermPayrollManage); err != nil {
		return nil, err
	}
	runs, err := store.All[Run](ctx, s.store, store.PayrollRuns)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartDate > runs[j].StartDate })
	return runs, nil
}

func (s *Service) GetRun(ctx context.Context, caller *access.Caller, id string) (Run, error) {
	if err := access.Authorize(caller, access.PermPayrollManage); err != nil {
		return Run{}, err
	}
	run, _, err := s.loadRun(ctx, id)
	return run, err
}

// Process computes a payslip for every active employee with a resolvable
// salary structure and moves the run from Draft to Processed.
func (s *Service) Process(ctx context.Context, caller *access.Caller, id string) (ProcessResult, error) {
	if err := access.Authorize(caller, access.PermPayrollManage); err != nil {
		return ProcessResult{}, err
	}
	run, version, err := s.loadRun(ctx, id)
	if err != nil {
		return ProcessResult{}, err
	}
	if run.Status != RunStatusDraft {
		return ProcessResult{}, fmt.Errorf("%w: payroll run is %s, only Draft runs can be processed", apperr.ErrInvalidState, run.Status)
	}

	employees, err := core.LoadEmployees(ctx, s.store)
	if err != nil {
		return ProcessResult{}, err
	}
	structures, err := core.LoadSalaryStructures(ctx, s.store)
	if err != nil {
		return ProcessResult{}, err
	}
	byID := make(map[string]core.SalaryStructure, len(structures))
	for _, st := range structures {
		byID[st.ID] = st
	}
	records, err := store.All[attendance.Record](ctx, s.store, store.Attendance)
	if err != nil {
		return ProcessResult{}, err
	}

	now := s.now().UTC()
	payslips := make([]Payslip, 0, len(employees))
	current := make(map[string]bool, len(employees))
	for _, emp := range employees {
		if !emp.IsActive {
			continue
		}
		structure, ok := byID[emp.SalaryStructureID]
		if !ok {
			continue
		}
		days := attendance.InRange(records, emp.ID, run.StartDate, run.EndDate)
		present := attendance.PresentDays(days)
		slip := Payslip{
			ID:                PayslipID(run.ID, emp.ID),
			EmployeeID:        emp.ID,
			PayrollRunID:      run.ID,
			Period:            run.Period,
			EmployeeCode:      emp.EmployeeCode,
			EmployeeName:      emp.Name,
			Department:        emp.Department,
			SalaryStructureID: structure.ID,
			Amounts:           ComputeAmounts(structure, decimal.Zero),
			WorkingDays:       len(days),
			PresentDays:       present,
			LeaveDays:         len(days) - present,
			GeneratedAt:       now,
		}
		if _, err := store.Save(ctx, s.store, store.Payslips, slip.ID, slip); err != nil {
			return ProcessResult{}, err
		}
		payslips = append(payslips, slip)
		current[slip.ID] = true
	}
	if err := s.dropStalePayslips(ctx, run.ID, current); err != nil {
		return ProcessResult{}, err
	}

	run.Status = RunStatusProcessed
	run.ProcessedDate = &now
	run.ProcessedBy = caller.UserID
	if _, err := store.SaveIfVersion(ctx, s.store, store.PayrollRuns, run.ID, run, version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return ProcessResult{}, fmt.Errorf("%w: payroll run changed while processing", apperr.ErrInvalidState)
		}
		return ProcessResult{}, err
	}

	total := decimal.Zero
	for _, slip := range payslips {
		total = total.Add(slip.NetSalary)
	}
	s.record(ctx, caller, audit.ActionProcess, run.ID, map[string]any{
		"status":        run.Status,
		"payslipsCount": len(payslips),
		"totalNet":      total,
	})
	if s.counter != nil {
		s.counter.PayslipsGenerated(len(payslips))
	}
	return ProcessResult{Run: run, Payslips: payslips}, nil
}

// Lock marks a Processed run as final. Payslips are left as they are.
func (s *Service) Lock(ctx context.Context, caller *access.Caller, id string) (Run, error) {
	if err := access.Authorize(caller, access.PermPayrollManage); err != nil {
		return Run{}, err
	}
	run, version, err := s.loadRun(ctx, id)
	if err != nil {
		return Run{}, err
	}
	if run.Status != RunStatusProcessed {
		return Run{}, fmt.Errorf("%w: payroll run is %s, only Processed runs can be locked", apperr.ErrInvalidState, run.Status)
	}
	run.Status = RunStatusLocked
	if _, err := store.SaveIfVersion(ctx, s.store, store.PayrollRuns, run.ID, run, version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return Run{}, fmt.Errorf("%w: payroll run changed while locking", apperr.ErrInvalidState)
		}
		return Run{}, err
	}
	s.record(ctx, caller, audit.ActionUpdate, run.ID, map[string]string{"status": run.Status})
	return run, nil
}

// ListPayslips returns the payslips visible to caller, newest period first.
func (s *Service) ListPayslips(ctx context.Context, caller *access.Caller, filter PayslipFilter) ([]Payslip, error) {
	if err := access.Authorize(caller, access.PermPayslipRead); err != nil {
		return nil, err
	}
	scope, err := access.ReadScope(caller, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	payslips, err := store.All[Payslip](ctx, s.store, store.Payslips)
	if err != nil {
		return nil, err
	}
	issued, err := s.issuedRuns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Payslip, 0, len(payslips))
	for _, slip := range payslips {
		if !issued[slip.PayrollRunID] {
			continue
		}
		if scope != "" && slip.EmployeeID != scope {
			continue
		}
		if filter.PayrollRunID != "" && slip.PayrollRunID != filter.PayrollRunID {
			continue
		}
		out = append(out, slip)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].EmployeeCode < out[j].EmployeeCode
		}
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

// GetPayslip reports another employee's payslip as not found.
func (s *Service) GetPayslip(ctx context.Context, caller *access.Caller, id string) (Payslip, error) {
	if err := access.Authorize(caller, access.PermPayslipRead); err != nil {
		return Payslip{}, err
	}
	slip, _, err := store.Get[Payslip](ctx, s.store, store.Payslips, id)
	if errors.Is(err, store.ErrNotFound) {
		return Payslip{}, fmt.Errorf("%w: payslip %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return Payslip{}, err
	}
	if !access.CanSee(caller, slip.EmployeeID) {
		return Payslip{}, fmt.Errorf("%w: payslip %s", apperr.ErrNotFound, id)
	}
	run, _, err := store.Get[Run](ctx, s.store, store.PayrollRuns, slip.PayrollRunID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Payslip{}, err
	}
	if !Issued(run.Status) {
		return Payslip{}, fmt.Errorf("%w: payslip %s", apperr.ErrNotFound, id)
	}
	return slip, nil
}

// PayslipPDF serves the stored document, rendering and storing it on first
// request. A failed upload is logged and the rendered bytes still returned.
func (s *Service) PayslipPDF(ctx context.Context, caller *access.Caller, id string) ([]byte, error) {
	slip, err := s.GetPayslip(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	key := payslipKey(slip)
	if s.documents != nil {
		data, err := s.documents.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, blob.ErrNotFound) {
			slog.Warn("payslip document read failed", "payslipId", slip.ID, "err", err)
		}
	}

	run, _, err := s.loadRun(ctx, slip.PayrollRunID)
	if err != nil {
		return nil, err
	}
	data, err := RenderPayslipPDF(slip, run)
	if err != nil {
		return nil, err
	}
	if s.documents != nil {
		if err := s.documents.Put(ctx, key, "application/pdf", data); err != nil {
			slog.Warn("payslip document store failed", "payslipId", slip.ID, "err", err)
		}
	}
	return data, nil
}

// Register exports the payslips of one run as an XLSX workbook.
func (s *Service) Register(ctx context.Context, caller *access.Caller, runID string) ([]byte, Run, error) {
	if err := access.Authorize(caller, access.PermPayrollManage); err != nil {
		return nil, Run{}, err
	}
	run, _, err := s.loadRun(ctx, runID)
	if err != nil {
		return nil, Run{}, err
	}
	payslips, err := s.ListPayslips(ctx, caller, PayslipFilter{PayrollRunID: run.ID})
	if err != nil {
		return nil, Run{}, err
	}
	sort.SliceStable(payslips, func(i, j int) bool { return payslips[i].EmployeeCode < payslips[j].EmployeeCode })
	data, err := BuildRegisterXLSX(run, payslips)
	if err != nil {
		return nil, Run{}, err
	}
	return data, run, nil
}

func (s *Service) issuedRuns(ctx context.Context) (map[string]bool, error) {
	runs, err := store.All[Run](ctx, s.store, store.PayrollRuns)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(runs))
	for _, run := range runs {
		if Issued(run.Status) {
			out[run.ID] = true
		}
	}
	return out, nil
}

// dropStalePayslips removes payslips an earlier interrupted Process wrote for
// runID that the current pass no longer produces.
func (s *Service) dropStalePayslips(ctx context.Context, runID string, keep map[string]bool) error {
	stored, err := store.All[Payslip](ctx, s.store, store.Payslips)
	if err != nil {
		return err
	}
	for _, slip := range stored {
		if slip.PayrollRunID != runID || keep[slip.ID] {
			continue
		}
		if err := s.store.Delete(ctx, store.Payslips, slip.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *Service) loadRun(ctx context.Context, id string) (Run, int64, error) {
	run, version, err := store.Get[Run](ctx, s.store, store.PayrollRuns, id)
	if errors.Is(err, store.ErrNotFound) {
		return Run{}, 0, fmt.Errorf("%w: payroll run %s", apperr.ErrNotFound, id)
	}
	return run, version, err
}

func (s *Service) record(ctx context.Context, caller *access.Caller, action, runID string, changes any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, caller.UserID, action, audit.EntityPayrollRun, runID, changes); err != nil {
		slog.Warn("audit payroll_run."+strings.ToLower(action)+" failed", "err", err)
	}
}

func payslipKey(slip Payslip) string {
	return "payslips/" + slip.PayrollRunID + "/" + slip.EmployeeID + ".pdf"
}
