package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

type file struct{}

// NewFile returns a Storage backed by the local filesystem.
//
// Put creates missing parent directories and replaces the target through a
// temporary file in the same directory, so readers never observe a partial write.
func NewFile() Storage {
	return file{}
}

func (file) Has(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(key)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (file) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(ErrNotFound, key)
	}
	return data, err
}

func (file) Put(ctx context.Context, key string, content []byte) error {
	dir := filepath.Dir(key)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(key)+"."+uuid.NewString()+".tmp")
	if err := writeSync(tmp, content); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, key); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeSync(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
