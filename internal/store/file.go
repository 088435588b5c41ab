package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per table under a directory. It is the
// localStorage analog for the terminal client: a page "reload" is a new
// process reading the same directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	// cart:<uid> and friends must map to a safe file name
	name := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(f.dir, name+".json")
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Set writes to a temp file and renames it into place, so a crashed or
// failed write never corrupts the previous table value.
func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	p := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var _ TableStore = (*FileStore)(nil)
