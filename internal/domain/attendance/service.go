package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/domain/apperr"
	"hrpayroll/internal/domain/audit"
	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/platform/store"
)

const maxWriteAttempts = 8

type Service struct {
	store store.Store
	audit audit.Recorder
	now   func() time.Time
}

func NewService(st store.Store, rec audit.Recorder) *Service {
	return &Service{store: st, audit: rec, now: time.Now}
}

// Record creates or updates the attendance for one day. Clock times already
// captured for that day are kept.
func (s *Service) Record(ctx context.Context, caller *access.Caller, input RecordInput) (Record, bool, error) {
	if err := access.Authorize(caller, access.PermAttendanceRecord); err != nil {
		return Record{}, false, err
	}
	employeeID, err := access.WriteOwner(caller, input.EmployeeID)
	if err != nil {
		return Record{}, false, err
	}
	date, err := core.ParseDate(input.Date)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: date must be YYYY-MM-DD", apperr.ErrInvalidInput)
	}
	status := strings.TrimSpace(input.Status)
	if !slices.Contains(Statuses, status) {
		return Record{}, false, fmt.Errorf("%w: status must be one of %s", apperr.ErrInvalidInput, strings.Join(Statuses, ", "))
	}
	if input.OvertimeHours < 0 {
		return Record{}, false, fmt.Errorf("%w: overtimeHours must not be negative", apperr.ErrInvalidInput)
	}
	if _, err := core.ActiveEmployee(ctx, s.store, employeeID); err != nil {
		return Record{}, false, err
	}

	day := core.FormatDate(date)
	id := RecordID(employeeID, day)
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		rec, version, err := store.Get[Record](ctx, s.store, store.Attendance, id)
		created := errors.Is(err, store.ErrNotFound)
		if err != nil && !created {
			return Record{}, false, err
		}
		if created {
			rec = Record{ID: id, EmployeeID: employeeID, Date: day}
		}
		rec.Status = status
		rec.OvertimeHours = input.OvertimeHours
		rec.Notes = strings.TrimSpace(input.Notes)

		if _, err := store.SaveIfVersion(ctx, s.store, store.Attendance, id, rec, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return Record{}, false, err
		}
		action := audit.ActionUpdate
		if created {
			action = audit.ActionCreate
		}
		s.record(ctx, caller, action, rec)
		return rec, created, nil
	}
	return Record{}, false, fmt.Errorf("attendance %s: %w", id, store.ErrVersionConflict)
}

// Clock checks the caller in on the first call of the day, out on the
// second, and fails with ErrAlreadyCompleted after that.
func (s *Service) Clock(ctx context.Context, caller *access.Caller) (Record, bool, error) {
	if err := access.Authorize(caller, access.PermAttendanceClock); err != nil {
		return Record{}, false, err
	}
	employeeID, err := access.WriteOwner(caller, "")
	if err != nil {
		return Record{}, false, err
	}
	if _, err := core.ActiveEmployee(ctx, s.store, employeeID); err != nil {
		return Record{}, false, err
	}

	now := s.now()
	day := core.FormatDate(now)
	stamp := now.UTC()
	id := RecordID(employeeID, day)
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		rec, version, err := store.Get[Record](ctx, s.store, store.Attendance, id)
		created := errors.Is(err, store.ErrNotFound)
		if err != nil && !created {
			return Record{}, false, err
		}
		switch {
		case created:
			rec = Record{ID: id, EmployeeID: employeeID, Date: day, Status: StatusPresent, CheckInTime: &stamp}
		case rec.CheckInTime == nil:
			rec.CheckInTime = &stamp
		case rec.CheckOutTime == nil:
			rec.CheckOutTime = &stamp
		default:
			return Record{}, false, fmt.Errorf("%w: attendance already completed for today", apperr.ErrAlreadyCompleted)
		}

		if _, err := store.SaveIfVersion(ctx, s.store, store.Attendance, id, rec, version); err != nil {
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return Record{}, false, err
		}
		action := audit.ActionUpdate
		if created {
			action = audit.ActionCreate
		}
		s.record(ctx, caller, action, rec)
		return rec, created, nil
	}
	return Record{}, false, fmt.Errorf("attendance %s: %w", id, store.ErrVersionConflict)
}

// List returns visible records, newest date first. StartDate and EndDate are
// inclusive bounds when set.
func (s *Service) List(ctx context.Context, caller *access.Caller, filter Filter) ([]Record, error) {
	if err := access.Authorize(caller, access.PermAttendanceRead); err != nil {
		return nil, err
	}
	scope, err := access.ReadScope(caller, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	for _, bound := range []string{filter.StartDate, filter.EndDate} {
		if bound == "" {
			continue
		}
		if _, err := core.ParseDate(bound); err != nil {
			return nil, fmt.Errorf("%w: date filters must be YYYY-MM-DD", apperr.ErrInvalidInput)
		}
	}
	if filter.StartDate != "" && filter.EndDate != "" && filter.EndDate < filter.StartDate {
		return nil, fmt.Errorf("%w: endDate must be on or after startDate", apperr.ErrInvalidRange)
	}

	records, err := store.All[Record](ctx, s.store, store.Attendance)
	if err != nil {
		return nil, err
	}
	out := InRange(records, scope, filter.StartDate, filter.EndDate)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date > out[j].Date
	})
	return out, nil
}

// InRange filters records by employee (empty means all) and an inclusive
// YYYY-MM-DD date range (empty bounds are open).
func InRange(records []Record, employeeID, start, end string) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if employeeID != "" && rec.EmployeeID != employeeID {
			continue
		}
		if start != "" && rec.Date < start {
			continue
		}
		if end != "" && rec.Date > end {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *Service) record(ctx context.Context, caller *access.Caller, action string, rec Record) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, caller.UserID, action, audit.EntityAttendance, rec.ID, rec); err != nil {
		slog.Warn("audit attendance."+strings.ToLower(action)+" failed", "err", err)
	}
}
