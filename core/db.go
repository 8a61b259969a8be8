package core

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nasdf/filex/object"
	"github.com/nasdf/filex/storage"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ReservedName is the collection name used for internal bookkeeping.
const ReservedName = "_fx"

// DB is a document database persisted to a single file.
//
// Every operation re-reads the backing file. Mutations hold an exclusive lock
// across the whole read, mutate and write cycle.
type DB struct {
	store     storage.Storage
	handler   *Handler
	log       *zap.SugaredLogger
	exportDir string
	rootLock  sync.RWMutex
}

// Open returns a DB backed by the file at the given path, creating it if needed.
func Open(ctx context.Context, store storage.Storage, path string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	handler, err := NewHandler(ctx, store, path, o.Logger)
	if err != nil {
		return nil, err
	}
	// fail early on a corrupt file
	if _, err := handler.Read(ctx); err != nil {
		return nil, err
	}
	return &DB{
		store:     store,
		handler:   handler,
		log:       o.Logger,
		exportDir: o.ExportDir,
	}, nil
}

// Path returns the location of the backing file.
func (db *DB) Path() string {
	return db.handler.Path()
}

// Collection returns the collection with the given case insensitive name.
func (db *DB) Collection(ctx context.Context, name string) (*Collection, error) {
	name, err := collectionName(name)
	if err != nil {
		return nil, err
	}
	// make sure the snapshot is readable before handing out the collection
	err = db.view(ctx, func(*object.Snapshot) error { return nil })
	if err != nil {
		return nil, err
	}
	return &Collection{db: db, name: name}, nil
}

// ListCollections returns the names of all collections in storage order.
func (db *DB) ListCollections(ctx context.Context) ([]string, error) {
	names := []string{}
	err := db.view(ctx, func(s *object.Snapshot) error {
		names = slices.DeleteFunc(append(names, s.Names()...), func(n string) bool { return n == ReservedName })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Snapshot returns the latest snapshot read from the backing file.
func (db *DB) Snapshot(ctx context.Context) (*object.Snapshot, error) {
	var snapshot *object.Snapshot
	err := db.view(ctx, func(s *object.Snapshot) error {
		snapshot = s
		return nil
	})
	return snapshot, err
}

// Close releases the database. The backing file is always up to date so there is nothing to flush.
func (db *DB) Close() error {
	return nil
}

func collectionName(name string) (string, error) {
	name = strings.ToLower(name)
	if name == ReservedName {
		return "", errors.Wrapf(ErrInvalidName, "%s is reserved", ReservedName)
	}
	return name, nil
}

// view calls fn with the latest snapshot while holding the read lock.
func (db *DB) view(ctx context.Context, fn func(s *object.Snapshot) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.rootLock.RLock()
	defer db.rootLock.RUnlock()

	snapshot, err := db.handler.Read(ctx)
	if err != nil {
		return err
	}
	return fn(snapshot)
}

// update calls fn with the latest snapshot while holding the write lock and
// writes the snapshot back when fn reports a change.
func (db *DB) update(ctx context.Context, fn func(s *object.Snapshot) (bool, error)) error {
	return db.commit(ctx, fn, nil)
}

// commit is update with a hook that runs under the write lock once the
// snapshot has been written, or after fn when there was nothing to write.
func (db *DB) commit(ctx context.Context, fn func(s *object.Snapshot) (bool, error), done func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.rootLock.Lock()
	defer db.rootLock.Unlock()

	snapshot, err := db.handler.Read(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(snapshot)
	if err != nil {
		return err
	}
	if changed {
		if err := db.handler.Write(ctx, snapshot); err != nil {
			return err
		}
	}
	if done != nil {
		done()
	}
	return nil
}
