package mylocalstorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type fileStorage struct {
	dir string
}

// NewFileStorage keeps every key in its own file below dir.
func NewFileStorage(dir string) (Storage, error) {
	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return nil, fmt.Errorf("error creating storage dir %s: %s", dir, err)
	}
	return &fileStorage{dir: dir}, nil
}

func (s *fileStorage) Get(c context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	value, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading %s: %s", key, err)
	}
	return value, true, nil
}

// Put writes to a temp file first so that a crash never leaves a half written value behind.
func (s *fileStorage) Put(c context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %s", key, err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(value)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %s", key, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("error closing %s: %s", key, err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("error storing %s: %s", key, err)
	}
	return nil
}

func (s *fileStorage) Delete(c context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error deleting %s: %s", key, err)
	}
	return nil
}

func (s *fileStorage) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
