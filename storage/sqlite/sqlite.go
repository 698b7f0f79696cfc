// Package sqlite is the remote storage backend. It mirrors the tables of a hosted user database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mcmeskajr-prog/trackall/storage"
	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Store is a SQLite database with a user_data and a library table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at dsn and applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", dsn, err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS user_data (
    user_id TEXT NOT NULL,
    key     TEXT NOT NULL,
    value   TEXT NOT NULL,
    PRIMARY KEY (user_id, key)
);

CREATE TABLE IF NOT EXISTS library (
    user_id    TEXT NOT NULL,
    media_id   TEXT NOT NULL,
    data       TEXT NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, media_id)
);
`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key, owner string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM user_data WHERE user_id = ? AND key = ?`, owner, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	return value, err
}

func (s *Store) Set(ctx context.Context, key, value, owner string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_data (user_id, key, value) VALUES (?, ?, ?)
ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`,
		owner, key, value)
	return err
}

func (s *Store) UpsertEntry(ctx context.Context, owner, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO library (user_id, media_id, data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, media_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		owner, id, string(data), s.now().UnixMilli())
	return err
}

func (s *Store) DeleteEntry(ctx context.Context, owner, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM library WHERE user_id = ? AND media_id = ?`, owner, id)
	return err
}

// Entries returns the owner's rows in id order.
func (s *Store) Entries(ctx context.Context, owner string) ([]storage.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT media_id, data FROM library WHERE user_id = ? ORDER BY media_id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []storage.Row{}
	for rows.Next() {
		var (
			row  storage.Row
			data string
		)
		if err := rows.Scan(&row.ID, &data); err != nil {
			return nil, err
		}
		row.Data = []byte(data)
		result = append(result, row)
	}

	return result, rows.Err()
}
