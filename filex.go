// Package filex is an embedded document store kept in a single BSON file.
package filex

import (
	"context"

	"github.com/nasdf/filex/core"
	"github.com/nasdf/filex/storage"
)

// Open opens the database file at the given path, creating it if needed.
func Open(ctx context.Context, path string, opts ...core.Option) (*core.DB, error) {
	return core.Open(ctx, storage.NewFile(), path, opts...)
}
