// Package store is the document persistence layer: one logical collection per
// entity, keyed by id, with a per-record version used for compare-and-swap writes.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

type Collection string

const (
	Employees        Collection = "employees"
	SalaryStructures Collection = "salary_structures"
	Attendance       Collection = "attendance"
	Leaves           Collection = "leaves"
	LeaveBalances    Collection = "leave_balances"
	PayrollRuns      Collection = "payroll_runs"
	Payslips         Collection = "payslips"
	AuditLogs        Collection = "audit_logs"
	Users            Collection = "users"
	UserEmails       Collection = "user_emails"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
)

type Record struct {
	ID      string
	Version int64
	Data    json.RawMessage
}

// Store is implemented by Memory and Postgres. Versions start at 1 and grow by
// one on every successful write of a key.
type Store interface {
	Get(ctx context.Context, c Collection, id string) (Record, error)
	// List returns every record in the collection ordered by id.
	List(ctx context.Context, c Collection) ([]Record, error)
	Put(ctx context.Context, c Collection, id string, data []byte) (int64, error)
	// PutIfVersion writes only when the stored version equals expected.
	// An expected version of 0 means the key must not exist yet.
	PutIfVersion(ctx context.Context, c Collection, id string, data []byte, expected int64) (int64, error)
	Delete(ctx context.Context, c Collection, id string) error
	Ping(ctx context.Context) error
}

// Get loads and decodes one record.
func Get[T any](ctx context.Context, s Store, c Collection, id string) (T, int64, error) {
	var out T
	rec, err := s.Get(ctx, c, id)
	if err != nil {
		return out, 0, err
	}
	if err := json.Unmarshal(rec.Data, &out); err != nil {
		return out, 0, err
	}
	return out, rec.Version, nil
}

// All loads and decodes every record of a collection, ordered by id.
func All[T any](ctx context.Context, s Store, c Collection) ([]T, error) {
	records, err := s.List(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var item T
		if err := json.Unmarshal(rec.Data, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func Save(ctx context.Context, s Store, c Collection, id string, value any) (int64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, err
	}
	return s.Put(ctx, c, id, data)
}

func SaveIfVersion(ctx context.Context, s Store, c Collection, id string, value any, expected int64) (int64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, err
	}
	return s.PutIfVersion(ctx, c, id, data, expected)
}
