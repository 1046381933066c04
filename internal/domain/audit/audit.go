package audit

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"hrpayroll/internal/domain/access"
	"hrpayroll/internal/platform/store"
	"hrpayroll/internal/requestctx"
)

const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionProcess = "PROCESS"
)

const (
	EntityEmployee        = "employee"
	EntitySalaryStructure = "salary_structure"
	EntityAttendance      = "attendance"
	EntityLeave           = "leave"
	EntityPayrollRun      = "payroll_run"
	EntityUser            = "user"
)

type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	Changes   json.RawMessage `json:"changes,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

type Filter struct {
	Entity   string
	EntityID string
	Action   string
	UserID   string
}

// Recorder is what mutating services depend on.
type Recorder interface {
	Record(ctx context.Context, actorID, action, entity, entityID string, changes any) error
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func New(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Record appends one entry tagged with the request id in ctx, if any.
// Entries are never rewritten.
func (s *Service) Record(ctx context.Context, actorID, action, entity, entityID string, changes any) error {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		UserID:    actorID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		RequestID: requestctx.RequestID(ctx),
	}
	if changes != nil {
		payload, err := json.Marshal(changes)
		if err != nil {
			return err
		}
		entry.Changes = payload
	}
	_, err := store.SaveIfVersion(ctx, s.store, store.AuditLogs, entry.ID, entry, 0)
	return err
}

// List returns matching entries, newest first.
func (s *Service) List(ctx context.Context, caller *access.Caller, filter Filter) ([]Entry, error) {
	if err := access.Authorize(caller, access.PermAuditRead); err != nil {
		return nil, err
	}
	entries, err := store.All[Entry](ctx, s.store, store.AuditLogs)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if filter.Entity != "" && entry.Entity != filter.Entity {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
