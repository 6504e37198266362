// Package sqlite provides a SQLite-backed journey key-value store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage/sqlite/migrations"
)

// Store persists journey entries in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite journey store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Bucket returns the namespace called name.
func (s *Store) Bucket(name string) storage.KV {
	return &bucket{store: s, name: name}
}

type bucket struct {
	store *Store
	name  string
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.store == nil || b.store.sqlDB == nil {
		return nil, false, fmt.Errorf("storage is not configured")
	}
	var value []byte
	err := b.store.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM journey_entries WHERE bucket = ? AND key = ?`,
		b.name, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", b.name, key, err)
	}
	return value, true, nil
}

func (b *bucket) Set(ctx context.Context, key string, value []byte) error {
	if b.store == nil || b.store.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if value == nil {
		value = []byte{}
	}
	_, err := b.store.sqlDB.ExecContext(ctx,
		`INSERT INTO journey_entries (bucket, key, value, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(bucket, key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		b.name, key, value, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", b.name, key, err)
	}
	return nil
}
