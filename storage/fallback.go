package storage

import (
	"context"
	"errors"

	"github.com/mcmeskajr-prog/trackall/log"
)

// Fallback pairs a remote primary with a local store.
// Reads prefer the primary and writes go to both, local first.
// Primary may be nil, in which case Fallback is the local store.
type Fallback struct {
	Primary Store
	Local   Store
}

// Get reads from the primary and falls back to the local store when the primary fails or has nothing.
func (f *Fallback) Get(ctx context.Context, key, owner string) (string, error) {
	if f.Primary != nil {
		value, err := f.Primary.Get(ctx, key, owner)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			log.WithError(err).Warnf("primary read of %s failed, using local", key)
		}
	}

	return f.Local.Get(ctx, key, owner)
}

// Set returns the primary's error so callers can retry delivery. The local write only gets logged.
func (f *Fallback) Set(ctx context.Context, key, value, owner string) error {
	return f.write(
		func(s Store) error { return s.Set(ctx, key, value, owner) },
	)
}

func (f *Fallback) UpsertEntry(ctx context.Context, owner, id string, data []byte) error {
	return f.write(func(s Store) error { return s.UpsertEntry(ctx, owner, id, data) })
}

func (f *Fallback) DeleteEntry(ctx context.Context, owner, id string) error {
	return f.write(func(s Store) error { return s.DeleteEntry(ctx, owner, id) })
}

func (f *Fallback) write(fn func(Store) error) error {
	localErr := fn(f.Local)
	if f.Primary == nil {
		return localErr
	}

	if localErr != nil {
		log.WithError(localErr).Warnf("local write failed")
	}

	return fn(f.Primary)
}

// Entries reads the primary's rows, or the local rows when the primary fails or is empty.
func (f *Fallback) Entries(ctx context.Context, owner string) ([]Row, error) {
	if f.Primary != nil {
		rows, err := f.Primary.Entries(ctx, owner)
		if err == nil && len(rows) > 0 {
			return rows, nil
		}
		if err != nil {
			log.WithError(err).Warnf("primary read of library failed, using local")
		}
	}

	return f.Local.Entries(ctx, owner)
}

func (f *Fallback) Close() error {
	var errs []error
	if f.Primary != nil {
		errs = append(errs, f.Primary.Close())
	}
	errs = append(errs, f.Local.Close())
	return errors.Join(errs...)
}
