// Package storage provides byte level persistence for database files.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("key not found")

// Storage reads and writes whole values addressed by key.
//
// The file implementation uses filesystem paths as keys.
type Storage interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, content []byte) error
}
