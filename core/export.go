package core

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/nasdf/filex/codec"
	"github.com/nasdf/filex/object"

	"github.com/pkg/errors"
)

// Export writes the documents of the collection to a JSON file.
//
// The file contains a single object mapping the collection name to its
// documents. An empty filename defaults to the collection name with a .json extension.
func (c *Collection) Export(ctx context.Context, filename string) error {
	var (
		name string
		docs []object.Document
	)
	err := c.db.view(ctx, func(s *object.Snapshot) error {
		name = c.name
		docs = s.Collection(c.name)
		return nil
	})
	if err != nil {
		return err
	}
	if filename == "" {
		filename = name + ".json"
	}
	path := c.db.resolve(filename)

	var buf bytes.Buffer
	if err := codec.EncodeJSON(&buf, name, docs); err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	if err := c.db.store.Put(ctx, path, buf.Bytes()); err != nil {
		c.db.log.Errorw("error exporting collection", "collection", name, "path", path, "error", err)
		return &IOError{Op: "export", Path: path, Err: err}
	}
	c.db.log.Infow("exported collection", "collection", name, "path", path, "count", len(docs))
	return nil
}

// Import appends the documents of a file written by Export to the collection
// and returns their ids.
//
// Documents follow the InsertMany rules, so nothing is written if any of them
// has an ID that already exists. JSON has no time or binary types, so times
// come back as RFC 3339 strings and binary values as base64 strings.
func (c *Collection) Import(ctx context.Context, filename string) ([]any, error) {
	if filename == "" {
		filename = c.Name() + ".json"
	}
	path := c.db.resolve(filename)

	data, err := c.db.store.Get(ctx, path)
	if err != nil {
		return nil, &IOError{Op: "import", Path: path, Err: err}
	}
	docs, err := codec.DecodeJSON(bytes.NewReader(data), c.Name())
	if err != nil {
		return nil, &IOError{Op: "import", Path: path, Err: errors.Wrap(err, "decode")}
	}
	return c.InsertMany(ctx, docs)
}

func (db *DB) resolve(filename string) string {
	if db.exportDir == "" || filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(db.exportDir, filename)
}
