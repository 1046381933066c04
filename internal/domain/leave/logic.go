package leave

import (
	"fmt"
	"time"

	"hrpayroll/internal/domain/apperr"
)

// CalculateDays returns the inclusive whole-day count between start and end.
func CalculateDays(start, end time.Time) (int, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date before start date", apperr.ErrInvalidRange)
	}
	return int(end.Sub(start)/(24*time.Hour)) + 1, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Deduct removes days from the bucket matching leaveType, never going below
// zero. It reports whether the balance changed.
func (b *Balance) Deduct(leaveType string, days int) bool {
	var bucket *int
	switch leaveType {
	case TypeCasual:
		bucket = &b.Casual
	case TypeSick:
		bucket = &b.Sick
	case TypePaid:
		bucket = &b.Paid
	default:
		return false
	}
	next := max(*bucket-days, 0)
	if next == *bucket {
		return false
	}
	*bucket = next
	return true
}

func HasBucket(leaveType string) bool {
	return leaveType == TypeCasual || leaveType == TypeSick || leaveType == TypePaid
}
