package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("%w: reason is required", ErrInvalidInput), KindInvalidInput},
		{fmt.Errorf("%w: end before start", ErrInvalidRange), KindInvalidRange},
		{fmt.Errorf("submit: %w", fmt.Errorf("%w: 2024-03-01..2024-03-05", ErrOverlappingRequest)), KindOverlappingRequest},
		{ErrOverlappingPeriod, KindOverlappingPeriod},
		{ErrAlreadyCompleted, KindAlreadyCompleted},
		{ErrUnauthenticated, KindUnauthenticated},
		{ErrForbidden, KindForbidden},
		{ErrNotFound, KindNotFound},
		{ErrInvalidState, KindInvalidState},
		{errors.New("connection refused"), KindInternal},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, KindOf(tc.err), "KindOf(%v)", tc.err)
	}
}
