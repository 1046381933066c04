package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/platform/store"
)

// BalanceInitializer creates the default leave balance of a new employee.
type BalanceInitializer interface {
	InitBalance(ctx context.Context, employeeID string) error
}

type Service struct {
	store    store.Store
	audit    audit.Recorder
	balances BalanceInitializer
}

func NewService(st store.Store, rec audit.Recorder, balances BalanceInitializer) *Service {
	return &Service{store: st, audit: rec, balances: balances}
}

func (s *Service) ListEmployees(ctx context.Context, caller *access.Caller, includeInactive bool) ([]Employee, error) {
	if err := access.Authorize(caller, access.PermEmployeesManage); err != nil {
		return nil, err
	}
	employees, err := LoadEmployees(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := employees[:0]
	for _, emp := range employees {
		if emp.IsActive || includeInactive {
			out = append(out, emp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}

// GetEmployee lets admins read any employee and employees read themselves.
func (s *Service) GetEmployee(ctx context.Context, caller *access.Caller, id string) (Employee, error) {
	if caller == nil {
		return Employee{}, apperr.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		if err := access.Authorize(caller, access.PermEmployeeSelfRead); err != nil {
			return Employee{}, err
		}
		own, err := access.ReadScope(caller, id)
		if err != nil {
			return Employee{}, err
		}
		if id != "" && id != own {
			return Employee{}, fmt.Errorf("%w: employees may only read their own record", apperr.ErrForbidden)
		}
		id = own
	}
	emp, _, err := LoadEmployee(ctx, s.store, id)
	if err != nil {
		return Employee{}, err
	}
	FilterEmployeeFields(&emp, caller)
	return emp, nil
}

func (s *Service) CreateEmployee(ctx context.Context, caller *access.Caller, input EmployeeInput) (Employee, error) {
	if err := access.Authorize(caller, access.PermEmployeesManage); err != nil {
		return Employee{}, err
	}
	emp := Employee{
		ID:                uuid.NewString(),
		EmployeeCode:      strings.TrimSpace(input.EmployeeCode),
		Name:              strings.TrimSpace(input.Name),
		Email:             strings.TrimSpace(input.Email),
		Phone:             strings.TrimSpace(input.Phone),
		DateOfJoining:     strings.TrimSpace(input.DateOfJoining),
		Department:        strings.TrimSpace(input.Department),
		Designation:       strings.TrimSpace(input.Designation),
		EmploymentType:    strings.TrimSpace(input.EmploymentType),
		BankAccount:       strings.TrimSpace(input.BankAccount),
		IFSCCode:          strings.TrimSpace(input.IFSCCode),
		TaxID:             strings.TrimSpace(input.TaxID),
		SalaryStructureID: strings.TrimSpace(input.SalaryStructureID),
		IsActive:          true,
	}
	if emp.EmploymentType == "" {
		emp.EmploymentType = EmploymentFullTime
	}
	if err := s.validateEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}

	if _, err := store.SaveIfVersion(ctx, s.store, store.Employees, emp.ID, emp, 0); err != nil {
		return Employee{}, err
	}
	if s.balances != nil {
		if err := s.balances.InitBalance(ctx, emp.ID); err != nil {
			return Employee{}, fmt.Errorf("init leave balance: %w", err)
		}
	}
	s.record(ctx, caller, audit.ActionCreate, emp.ID, emp)
	return emp, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, caller *access.Caller, id string, patch EmployeePatch) (Employee, error) {
	if err := access.Authorize(caller, access.PermEmployeesManage); err != nil {
		return Employee{}, err
	}
	emp, version, err := LoadEmployee(ctx, s.store, id)
	if err != nil {
		return Employee{}, err
	}
	applyPatch(&emp, patch)
	if err := s.validateEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.Employees, emp.ID, emp, version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return Employee{}, fmt.Errorf("%w: employee was modified concurrently", apperr.ErrInvalidState)
		}
		return Employee{}, err
	}
	s.record(ctx, caller, audit.ActionUpdate, emp.ID, patch)
	return emp, nil
}

// DeactivateEmployee soft-removes an employee. The record is kept so payslip
// history still resolves it.
func (s *Service) DeactivateEmployee(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.Authorize(caller, access.PermEmployeesManage); err != nil {
		return err
	}
	emp, version, err := LoadEmployee(ctx, s.store, id)
	if err != nil {
		return err
	}
	if !emp.IsActive {
		return nil
	}
	emp.IsActive = false
	if _, err := store.SaveIfVersion(ctx, s.store, store.Employees, emp.ID, emp, version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("%w: employee was modified concurrently", apperr.ErrInvalidState)
		}
		return err
	}
	s.record(ctx, caller, audit.ActionDelete, emp.ID, map[string]bool{"isActive": false})
	return nil
}

func (s *Service) validateEmployee(ctx context.Context, emp Employee) error {
	var missing []string
	if emp.EmployeeCode == "" {
		missing = append(missing, "employeeId")
	}
	if emp.Name == "" {
		missing = append(missing, "name")
	}
	if emp.Email == "" {
		missing = append(missing, "email")
	}
	if emp.DateOfJoining == "" {
		missing = append(missing, "dateOfJoining")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", apperr.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(emp.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", apperr.ErrInvalidInput)
	}
	if _, err := ParseDate(emp.DateOfJoining); err != nil {
		return fmt.Errorf("%w: dateOfJoining must be YYYY-MM-DD", apperr.ErrInvalidInput)
	}
	if !slices.Contains(EmploymentTypes, emp.EmploymentType) {
		return fmt.Errorf("%w: employmentType must be one of %s", apperr.ErrInvalidInput, strings.Join(EmploymentTypes, ", "))
	}
	if emp.SalaryStructureID != "" {
		if _, _, err := LoadSalaryStructure(ctx, s.store, emp.SalaryStructureID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("%w: salary structure %s does not exist", apperr.ErrInvalidInput, emp.SalaryStructureID)
			}
			return err
		}
	}

	employees, err := LoadEmployees(ctx, s.store)
	if err != nil {
		return err
	}
	for _, other := range employees {
		if other.ID != emp.ID && strings.EqualFold(other.EmployeeCode, emp.EmployeeCode) {
			return fmt.Errorf("%w: employee code %s is already in use", apperr.ErrInvalidInput, emp.EmployeeCode)
		}
	}
	return nil
}

func applyPatch(emp *Employee, patch EmployeePatch) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&emp.EmployeeCode, patch.EmployeeCode)
	set(&emp.Name, patch.Name)
	set(&emp.Email, patch.Email)
	set(&emp.Phone, patch.Phone)
	set(&emp.DateOfJoining, patch.DateOfJoining)
	set(&emp.Department, patch.Department)
	set(&emp.Designation, patch.Designation)
	set(&emp.EmploymentType, patch.EmploymentType)
	set(&emp.BankAccount, patch.BankAccount)
	set(&emp.IFSCCode, patch.IFSCCode)
	set(&emp.TaxID, patch.TaxID)
	set(&emp.SalaryStructureID, patch.SalaryStructureID)
	if patch.IsActive != nil {
		emp.IsActive = *patch.IsActive
	}
}

func (s *Service) ListSalaryStructures(ctx context.Context, caller *access.Caller) ([]SalaryStructure, error) {
	if err := access.Authorize(caller, access.PermSalaryManage); err != nil {
		return nil, err
	}
	return LoadSalaryStructures(ctx, s.store)
}

func (s *Service) GetSalaryStructure(ctx context.Context, caller *access.Caller, id string) (SalaryStructure, error) {
	if err := access.Authorize(caller, access.PermSalaryManage); err != nil {
		return SalaryStructure{}, err
	}
	structure, _, err := LoadSalaryStructure(ctx, s.store, id)
	return structure, err
}

func (s *Service) CreateSalaryStructure(ctx context.Context, caller *access.Caller, input SalaryStructureInput) (SalaryStructure, error) {
	if err := access.Authorize(caller, access.PermSalaryManage); err != nil {
		return SalaryStructure{}, err
	}
	structure := structureFromInput(uuid.NewString(), input)
	if err := validateStructure(structure); err != nil {
		return SalaryStructure{}, err
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.SalaryStructures, structure.ID, structure, 0); err != nil {
		return SalaryStructure{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, caller.UserID, audit.ActionCreate, audit.EntitySalaryStructure, structure.ID, structure); err != nil {
			slog.Warn("audit salary_structure.create failed", "err", err)
		}
	}
	return structure, nil
}

// UpdateSalaryStructure replaces a structure's figures. A structure that any
// payslip was computed from is frozen.
func (s *Service) UpdateSalaryStructure(ctx context.Context, caller *access.Caller, id string, input SalaryStructureInput) (SalaryStructure, error) {
	if err := access.Authorize(caller, access.PermSalaryManage); err != nil {
		return SalaryStructure{}, err
	}
	_, version, err := LoadSalaryStructure(ctx, s.store, id)
	if err != nil {
		return SalaryStructure{}, err
	}
	referenced, err := structureReferenced(ctx, s.store, id)
	if err != nil {
		return SalaryStructure{}, err
	}
	if referenced {
		return SalaryStructure{}, fmt.Errorf("%w: salary structure %s is used by processed payslips", apperr.ErrInvalidState, id)
	}
	structure := structureFromInput(id, input)
	if err := validateStructure(structure); err != nil {
		return SalaryStructure{}, err
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.SalaryStructures, id, structure, version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return SalaryStructure{}, fmt.Errorf("%w: salary structure was modified concurrently", apperr.ErrInvalidState)
		}
		return SalaryStructure{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, caller.UserID, audit.ActionUpdate, audit.EntitySalaryStructure, id, structure); err != nil {
			slog.Warn("audit salary_structure.update failed", "err", err)
		}
	}
	return structure, nil
}

func structureFromInput(id string, input SalaryStructureInput) SalaryStructure {
	return SalaryStructure{
		ID:               id,
		Name:             strings.TrimSpace(input.Name),
		BasicSalary:      input.BasicSalary,
		HRA:              input.HRA,
		SpecialAllowance: input.SpecialAllowance,
		Bonus:            input.Bonus,
		VariablePay:      input.VariablePay,
		EmployerPF:       input.EmployerPF,
		Insurance:        input.Insurance,
		EffectiveFrom:    strings.TrimSpace(input.EffectiveFrom),
	}
}

func validateStructure(structure SalaryStructure) error {
	if structure.Name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	amounts := map[string]decimal.Decimal{
		"basicSalary":      structure.BasicSalary,
		"hra":              structure.HRA,
		"specialAllowance": structure.SpecialAllowance,
		"bonus":            structure.Bonus,
		"variablePay":      structure.VariablePay,
		"employerPF":       structure.EmployerPF,
		"insurance":        structure.Insurance,
	}
	for field, amount := range amounts {
		if amount.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", apperr.ErrInvalidInput, field)
		}
	}
	if structure.EffectiveFrom != "" {
		if _, err := ParseDate(structure.EffectiveFrom); err != nil {
			return fmt.Errorf("%w: effectiveFrom must be YYYY-MM-DD", apperr.ErrInvalidInput)
		}
	}
	return nil
}

func (s *Service) record(ctx context.Context, caller *access.Caller, action, entityID string, changes any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, caller.UserID, action, audit.EntityEmployee, entityID, changes); err != nil {
		slog.Warn("audit employee."+strings.ToLower(action)+" failed", "err", err)
	}
}
