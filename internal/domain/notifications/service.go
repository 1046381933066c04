package notifications

import (
	"context"
	"log/slog"
	"strings"

	"hrpayroll/internal/domain/core"
	"hrpayroll/internal/platform/store"
)

const jobNotifyEmail = "notify_email"

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Dispatcher hands delivery to a background worker.
type Dispatcher interface {
	Enqueue(jobType string, run func(context.Context) error) error
}

// Service mails employees at the address on their employee record. With
// Jobs set, delivery happens off the request path.
type Service struct {
	store       store.Store
	Mailer      Mailer
	DefaultFrom string
	Jobs        Dispatcher
}

func New(st store.Store, mailer Mailer, from string) *Service {
	if strings.TrimSpace(from) == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: st, Mailer: mailer, DefaultFrom: from}
}

// NotifyEmployee never fails the caller's operation; lookup and delivery
// problems are logged and swallowed.
func (s *Service) NotifyEmployee(ctx context.Context, employeeID, subject, body string) error {
	if s == nil || s.Mailer == nil {
		return nil
	}
	emp, _, err := core.LoadEmployee(ctx, s.store, employeeID)
	if err != nil {
		slog.Warn("notification email lookup failed", "employeeId", employeeID, "err", err)
		return nil
	}
	if strings.TrimSpace(emp.Email) == "" {
		return nil
	}
	send := func(ctx context.Context) error {
		if err := s.Mailer.Send(ctx, s.DefaultFrom, emp.Email, subject, body); err != nil {
			slog.Warn("notification email send failed", "employeeId", employeeID, "err", err)
		}
		return nil
	}
	if s.Jobs != nil {
		if err := s.Jobs.Enqueue(jobNotifyEmail, send); err == nil {
			return nil
		}
	}
	return send(ctx)
}
