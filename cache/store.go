// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"time"
)

// ErrNoStore is returned by NewStore for cache types without a durable tier.
var ErrNoStore = errors.New("cache type has no durable store")

// Entry is a serialized record with the time it was written.
type Entry struct {
	Value    []byte
	StoredAt time.Time
}

// Store is the durable cache tier.
type Store interface {
	Get(key string) (Entry, bool, error)
	Set(key string, e Entry) error
	Delete(key string) error
	Count() (int, error)
	Clear() error
	Close() error
}

// Cache types.
const (
	TypeSQLite = "sqlite"
	TypeDisk   = "disk"
	TypeMemory = "memory"
)

// NewStore opens the durable store for typ. location is the SQLite database
// path or the disk cache directory. TypeMemory returns ErrNoStore.
func NewStore(typ, location string) (Store, error) {
	switch typ {
	case TypeSQLite:
		return NewSQLiteStore(location)
	case TypeDisk:
		return NewDiskStore(location)
	case TypeMemory, "":
		return nil, ErrNoStore
	default:
		return nil, errors.New("unknown cache type: " + typ)
	}
}
