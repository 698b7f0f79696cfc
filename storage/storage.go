// Package storage is the persistence port of the library: a per-owner key-value space and a per-owner row table.
package storage

import (
	"context"
	"errors"

	"github.com/samber/mo"
)

// Keys under which per-owner values are kept.
const (
	KeyLibrary   = "ta-library"
	KeyFavorites = "ta-favorites"
	KeyTMDB      = "ta-tmdb"
	KeyProxy     = "ta-worker"
)

var ErrNotFound = errors.New("not found")

// KV stores small per-owner values such as credentials and the favorites list.
type KV interface {
	// Get fails with ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key, owner string) (string, error)
	Set(ctx context.Context, key, value, owner string) error
}

// Row is one serialized library entry.
type Row struct {
	ID   string
	Data []byte
}

// Rows stores library entries, one row per (owner, media id).
type Rows interface {
	UpsertEntry(ctx context.Context, owner, id string, data []byte) error
	DeleteEntry(ctx context.Context, owner, id string) error
	Entries(ctx context.Context, owner string) ([]Row, error)
}

// Store is a complete backend.
type Store interface {
	KV
	Rows
	Close() error
}

// Lookup is Get with a missing value reported as None instead of an error.
func Lookup(ctx context.Context, kv KV, key, owner string) (mo.Option[string], error) {
	value, err := kv.Get(ctx, key, owner)
	switch {
	case errors.Is(err, ErrNotFound):
		return mo.None[string](), nil
	case err != nil:
		return mo.None[string](), err
	default:
		return mo.Some(value), nil
	}
}
