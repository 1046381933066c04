// Package blob stores rendered documents such as payslip PDFs.
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("object not found")

type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
