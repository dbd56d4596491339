// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const diskExt = ".json"

// DiskStore keeps one JSON file per cache entry under a directory.
type DiskStore struct {
	dir string
}

type diskEntry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Get(key string) (Entry, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, false, nil
	}

	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache file: %w", err)
	}

	var e diskEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache file: %w", err)
	}

	return Entry{Value: e.Value, StoredAt: e.StoredAt}, true, nil
}

func (s *DiskStore) Set(key string, e Entry) error {
	data, err := json.Marshal(diskEntry{Key: key, Value: e.Value, StoredAt: e.StoredAt.UTC()})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	// Write then rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("write cache file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("write cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

func (s *DiskStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete cache file: %w", err)
	}

	return nil
}

func (s *DiskStore) Count() (int, error) {
	files, err := s.files()

	return len(files), err
}

func (s *DiskStore) Clear() error {
	files, err := s.files()
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete cache file: %w", err)
		}
	}

	return nil
}

func (s *DiskStore) Close() error {
	return nil
}

func (s *DiskStore) files() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}

	var files []string

	for _, de := range dirEntries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), diskExt) {
			files = append(files, filepath.Join(s.dir, de.Name()))
		}
	}

	return files, nil
}

// path hashes the key: lookup keys carry characters that are not portable
// in file names.
func (s *DiskStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))

	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+diskExt)
}
