// Package apperr holds the error kinds shared by every domain operation.
// Operations wrap a sentinel with context, e.g. fmt.Errorf("%w: reason is required", ErrInvalidInput).
package apperr

import "errors"

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrOverlappingRequest = errors.New("overlapping leave request")
	ErrOverlappingPeriod  = errors.New("overlapping payroll period")
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("invalid state")
	ErrAlreadyCompleted   = errors.New("already completed")
)

type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidRange       Kind = "invalid_range"
	KindOverlappingRequest Kind = "overlapping_request"
	KindOverlappingPeriod  Kind = "overlapping_period"
	KindNotFound           Kind = "not_found"
	KindInvalidState       Kind = "invalid_state"
	KindAlreadyCompleted   Kind = "already_completed"
	KindInternal           Kind = "internal_error"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrForbidden, KindForbidden},
	{ErrInvalidInput, KindInvalidInput},
	{ErrInvalidRange, KindInvalidRange},
	{ErrOverlappingRequest, KindOverlappingRequest},
	{ErrOverlappingPeriod, KindOverlappingPeriod},
	{ErrNotFound, KindNotFound},
	{ErrInvalidState, KindInvalidState},
	{ErrAlreadyCompleted, KindAlreadyCompleted},
}

// KindOf reports the kind of err. Anything outside the taxonomy, such as a
// storage failure, is KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
