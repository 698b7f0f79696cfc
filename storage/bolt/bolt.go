// Package bolt is the local storage backend, a single bbolt file per user profile.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcmeskajr-prog/trackall/storage"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketKV      = []byte("kv")
	bucketLibrary = []byte("library")
)

// Store keeps values under "{owner}::{key}" and entries under "{owner}::{mediaId}".
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketKV, bucketLibrary} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func scoped(owner, key string) []byte {
	return []byte(owner + "::" + key)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, key, owner string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketKV).Get(scoped(owner, key))
		if v == nil {
			return storage.ErrNotFound
		}
		value = string(v)
		return nil
	})
	return value, err
}

func (s *Store) Set(_ context.Context, key, value, owner string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Put(scoped(owner, key), []byte(value))
	})
}

func (s *Store) UpsertEntry(_ context.Context, owner, id string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLibrary).Put(scoped(owner, id), data)
	})
}

func (s *Store) DeleteEntry(_ context.Context, owner, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLibrary).Delete(scoped(owner, id))
	})
}

// Entries returns the owner's rows in id order.
func (s *Store) Entries(_ context.Context, owner string) ([]storage.Row, error) {
	prefix := scoped(owner, "")
	rows := []storage.Row{}

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketLibrary).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			rows = append(rows, storage.Row{
				ID:   string(k[len(prefix):]),
				Data: bytes.Clone(v),
			})
		}
		return nil
	})

	return rows, err
}
