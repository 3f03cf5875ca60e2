package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hperssn/genesis/internal/filelock"
)

// File keeps all keys of one namespace in a single JSON object on disk.
// Writers take a file lock and replace the file atomically, so the store
// survives crashes and is safe to share between processes.
type File struct {
	path string
}

var _ Store = (*File)(nil)

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &File{path: filepath.Join(dir, "store.json")}, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, error) {
	data, err := f.load()
	if err != nil {
		return "", err
	}

	v, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(key, value string) error {
	return filelock.With(f.path, func() error {
		data, err := f.load()
		if err != nil {
			// An unreadable store is replaced rather than blocking writes.
			data = map[string]string{}
		}
		data[key] = value
		return f.save(data)
	})
}

func (f *File) Delete(key string) error {
	return filelock.With(f.path, func() error {
		data, err := f.load()
		if err != nil {
			data = map[string]string{}
		}
		if _, ok := data[key]; !ok {
			return nil
		}
		delete(data, key)
		return f.save(data)
	})
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", f.path, err)
	}
	return data, nil
}

func (f *File) save(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	return filelock.AtomicWrite(f.path, raw, 0600)
}
