package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/platform/store"
)

const maxWriteAttempts = 8

// Notifier is told about decided leaves. Delivery is best effort.
type Notifier interface {
	NotifyEmployee(ctx context.Context, employeeID, subject, body string) error
}

type Service struct {
	store  store.Store
	audit  audit.Recorder
	notify Notifier
	now    func() time.Time
}

func NewService(st store.Store, rec audit.Recorder, notify Notifier) *Service {
	return &Service{store: st, audit: rec, notify: notify, now: time.Now}
}

// Submit validates and stores a Pending leave for the caller, or for the
// employee an admin names.
func (s *Service) Submit(ctx context.Context, caller *access.Caller, input SubmitInput) (Leave, error) {
	if err := access.Authorize(caller, access.PermLeaveSubmit); err != nil {
		return Leave{}, err
	}
	employeeID, err := access.WriteOwner(caller, input.EmployeeID)
	if err != nil {
		return Leave{}, err
	}

	leaveType := strings.TrimSpace(input.LeaveType)
	reason := strings.TrimSpace(input.Reason)
	start, startErr := core.ParseDate(input.StartDate)
	end, endErr := core.ParseDate(input.EndDate)
	if startErr == nil && endErr == nil && end.Before(start) {
		return Leave{}, fmt.Errorf("%w: endDate must be on or after startDate", apperr.ErrInvalidRange)
	}
	var missing []string
	if leaveType == "" {
		missing = append(missing, "leaveType")
	}
	if strings.TrimSpace(input.StartDate) == "" {
		missing = append(missing, "startDate")
	}
	if strings.TrimSpace(input.EndDate) == "" {
		missing = append(missing, "endDate")
	}
	if reason == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return Leave{}, fmt.Errorf("%w: %s required", apperr.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if startErr != nil || endErr != nil {
		return Leave{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", apperr.ErrInvalidInput)
	}
	if !slices.Contains(Types, leaveType) {
		return Leave{}, fmt.Errorf("%w: leaveType must be one of %s", apperr.ErrInvalidInput, strings.Join(Types, ", "))
	}

	days, err := CalculateDays(start, end)
	if err != nil {
		return Leave{}, err
	}
	if _, err := core.ActiveEmployee(ctx, s.store, employeeID); err != nil {
		return Leave{}, err
	}

	existing, err := s.employeeLeaves(ctx, employeeID)
	if err != nil {
		return Leave{}, err
	}
	for _, other := range existing {
		if other.Status == StatusRejected {
			continue
		}
		otherStart, err1 := core.ParseDate(other.StartDate)
		otherEnd, err2 := core.ParseDate(other.EndDate)
		if err1 != nil || err2 != nil {
			continue
		}
		if core.RangesOverlap(otherStart, otherEnd, start, end) {
			return Leave{}, fmt.Errorf("%w: overlaps leave %s (%s to %s)", apperr.ErrOverlappingRequest, other.ID, other.StartDate, other.EndDate)
		}
	}

	lv := Leave{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		StartDate:  core.FormatDate(start),
		EndDate:    core.FormatDate(end),
		Days:       days,
		Reason:     reason,
		Status:     StatusPending,
		AppliedAt:  s.now().UTC(),
	}
	if _, err := store.SaveIfVersion(ctx, s.store, store.Leaves, lv.ID, lv, 0); err != nil {
		return Leave{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, caller.UserID, audit.ActionCreate, audit.EntityLeave, lv.ID, lv); err != nil {
			slog.Warn("audit leave.create failed", "err", err)
		}
	}
	return lv, nil
}

// Decide moves a Pending leave to Approved or Rejected. Repeating the decision
// a leave already carries returns it unchanged; the opposite decision fails
// with ErrInvalidState. Approval deducts the balance once per leave, and a
// repeated approval applies a deduction that an earlier attempt failed to write.
func (s *Service) Decide(ctx context.Context, caller *access.Caller, leaveID, decision string) (Leave, error) {
	if err := access.Authorize(caller, access.PermLeaveDecide); err != nil {
		return Leave{}, err
	}
	decision = strings.TrimSpace(decision)
	if decision != StatusApproved && decision != StatusRejected {
		return Leave{}, fmt.Errorf("%w: decision must be %s or %s", apperr.ErrInvalidInput, StatusApproved, StatusRejected)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		lv, version, err := store.Get[Leave](ctx, s.store, store.Leaves, leaveID)
		if errors.Is(err, store.ErrNotFound) {
			return Leave{}, fmt.Errorf("%w: leave %s", apperr.ErrNotFound, leaveID)
		}
		if err != nil {
			return Leave{}, err
		}
		if lv.Status == decision {
			if decision == StatusApproved {
				applied, err := s.applyBalance(ctx, lv)
				if err != nil {
					return Leave{}, fmt.Errorf("leave %s balance update failed: %w", lv.ID, err)
				}
				if applied {
					s.decided(ctx, caller, lv, StatusPending)
				}
			}
			return lv, nil
		}
		if lv.Status != StatusPending {
			return Leave{}, fmt.Errorf("%w: leave %s is already %s", apperr.ErrInvalidState, leaveID, lv.Status)
		}

		previous := lv.Status
		decidedAt := s.now().UTC()
		lv.Status = decision
		lv.ApprovedBy = caller.UserID
		lv.DecidedAt = &decidedAt
		if _, err := store.SaveIfVersion(ctx, s.store, store.Leaves, lv.ID, lv, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return Leave{}, err
		}

		if decision == StatusApproved && HasBucket(lv.LeaveType) {
			applied, err := s.applyBalance(ctx, lv)
			if err != nil {
				return Leave{}, fmt.Errorf("leave %s approved but balance update failed, approve again to apply it: %w", lv.ID, err)
			}
			if !applied {
				return lv, nil
			}
		}
		s.decided(ctx, caller, lv, previous)
		return lv, nil
	}
	return Leave{}, fmt.Errorf("%w: leave %s kept changing, retry the decision", apperr.ErrInvalidState, leaveID)
}

// decided audits and announces a decision that has fully landed.
func (s *Service) decided(ctx context.Context, caller *access.Caller, lv Leave, previous string) {
	if s.audit != nil {
		changes := map[string]string{"previousStatus": previous, "status": lv.Status}
		if err := s.audit.Record(ctx, caller.UserID, audit.ActionUpdate, audit.EntityLeave, lv.ID, changes); err != nil {
			slog.Warn("audit leave.decide failed", "err", err)
		}
	}
	s.notifyDecision(ctx, lv)
}

// applyBalance deducts an approved leave from its bucket unless the balance
// already lists it. The check and the deduction land in one compare-and-swap
// write, so concurrent approvals deduct once. It reports whether this call
// wrote the deduction.
func (s *Service) applyBalance(ctx context.Context, lv Leave) (bool, error) {
	if !HasBucket(lv.LeaveType) {
		return false, nil
	}
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		balance, version, err := store.Get[Balance](ctx, s.store, store.LeaveBalances, lv.EmployeeID)
		if errors.Is(err, store.ErrNotFound) {
			balance, version = DefaultBalance(lv.EmployeeID), 0
		} else if err != nil {
			return false, err
		}
		if slices.Contains(balance.Applied, lv.ID) {
			return false, nil
		}
		balance.Deduct(lv.LeaveType, lv.Days)
		balance.Applied = append(balance.Applied, lv.ID)
		if _, err := store.SaveIfVersion(ctx, s.store, store.LeaveBalances, lv.EmployeeID, balance, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return false, err
		}
		return true, nil
	}
	return false, fmt.Errorf("balance for %s: %w", lv.EmployeeID, store.ErrVersionConflict)
}

// InitBalance creates the default balance unless one already exists.
func (s *Service) InitBalance(ctx context.Context, employeeID string) error {
	_, err := store.SaveIfVersion(ctx, s.store, store.LeaveBalances, employeeID, DefaultBalance(employeeID), 0)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil
	}
	return err
}

func (s *Service) GetBalance(ctx context.Context, caller *access.Caller, employeeID string) (Balance, error) {
	if err := access.Authorize(caller, access.PermLeaveBalanceRead); err != nil {
		return Balance{}, err
	}
	scope, err := access.ReadScope(caller, employeeID)
	if err != nil {
		return Balance{}, err
	}
	if scope == "" {
		return Balance{}, fmt.Errorf("%w: employeeId is required", apperr.ErrInvalidInput)
	}
	balance, _, err := store.Get[Balance](ctx, s.store, store.LeaveBalances, scope)
	if errors.Is(err, store.ErrNotFound) {
		return Balance{}, fmt.Errorf("%w: no leave balance for %s", apperr.ErrNotFound, scope)
	}
	return balance, err
}

// List returns the leaves visible to caller, newest start date first.
func (s *Service) List(ctx context.Context, caller *access.Caller, filter Filter) ([]Leave, error) {
	if err := access.Authorize(caller, access.PermLeaveRead); err != nil {
		return nil, err
	}
	scope, err := access.ReadScope(caller, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	leaves, err := store.All[Leave](ctx, s.store, store.Leaves)
	if err != nil {
		return nil, err
	}
	out := make([]Leave, 0, len(leaves))
	for _, lv := range leaves {
		if scope != "" && lv.EmployeeID != scope {
			continue
		}
		if filter.Status != "" && lv.Status != filter.Status {
			continue
		}
		out = append(out, lv)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate > out[j].StartDate })
	return out, nil
}

func (s *Service) employeeLeaves(ctx context.Context, employeeID string) ([]Leave, error) {
	leaves, err := store.All[Leave](ctx, s.store, store.Leaves)
	if err != nil {
		return nil, err
	}
	out := leaves[:0]
	for _, lv := range leaves {
		if lv.EmployeeID == employeeID {
			out = append(out, lv)
		}
	}
	return out, nil
}

func (s *Service) notifyDecision(ctx context.Context, lv Leave) {
	if s.notify == nil {
		return
	}
	subject := fmt.Sprintf("Leave request %s", strings.ToLower(lv.Status))
	body := fmt.Sprintf("Your %s leave from %s to %s (%d days) was %s.", lv.LeaveType, lv.StartDate, lv.EndDate, lv.Days, strings.ToLower(lv.Status))
	if err := s.notify.NotifyEmployee(ctx, lv.EmployeeID, subject, body); err != nil {
		slog.Warn("leave decision notification failed", "err", err, "leaveId", lv.ID)
	}
}
