package core

import (
	"bytes"
	"context"

	"github.com/nasdf/filex/codec"
	"github.com/nasdf/filex/object"
	"github.com/nasdf/filex/storage"

	"go.uber.org/zap"
)

// Handler owns the backing file of a database and reads or writes whole snapshots.
type Handler struct {
	store storage.Storage
	path  string
	log   *zap.SugaredLogger
}

// NewHandler returns a Handler for the file at the given path.
//
// An empty snapshot is written when the file does not exist yet.
func NewHandler(ctx context.Context, store storage.Storage, path string, log *zap.SugaredLogger) (*Handler, error) {
	h := &Handler{
		store: store,
		path:  path,
		log:   log,
	}
	ok, err := store.Has(ctx, path)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if ok {
		return h, nil
	}
	log.Infow("creating database", "path", path)
	if err := h.Write(ctx, object.NewSnapshot()); err != nil {
		return nil, err
	}
	return h, nil
}

// Path returns the location of the backing file.
func (h *Handler) Path() string {
	return h.path
}

// Read decodes the latest snapshot from the backing file.
func (h *Handler) Read(ctx context.Context) (*object.Snapshot, error) {
	data, err := h.store.Get(ctx, h.path)
	if err != nil {
		h.log.Errorw("error reading from database", "path", h.path, "error", err)
		return nil, &IOError{Op: "read", Path: h.path, Err: err}
	}
	snapshot, err := codec.Unmarshal(data)
	if err != nil {
		h.log.Errorw("error decoding database", "path", h.path, "error", err)
		return nil, &IOError{Op: "read", Path: h.path, Err: err}
	}
	return snapshot, nil
}

// Write replaces the backing file with the encoding of the given snapshot.
func (h *Handler) Write(ctx context.Context, snapshot *object.Snapshot) error {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)
	err := enc.Encode(snapshot)
	if err == nil {
		err = enc.Flush()
	}
	if err == nil {
		err = h.store.Put(ctx, h.path, buf.Bytes())
	}
	if err != nil {
		h.log.Errorw("error writing to database", "path", h.path, "error", err)
		return &IOError{Op: "write", Path: h.path, Err: err}
	}
	h.log.Debugw("wrote database", "path", h.path, "bytes", buf.Len())
	return nil
}
