// Package sqlite provides a SQLite-backed store.KV so starjar state survives
// restarts and can be shared by several processes on one machine.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wondertwin-ai/starjar/pkg/store"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store is a store.KV over a single SQLite table.
type Store struct {
	db *sql.DB
}

var (
	_ store.KV          = (*Store)(nil)
	_ store.Updater     = (*Store)(nil)
	_ store.Snapshotter = (*Store)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get retrieves a value by key.
func (s *Store) Get(key string) (string, bool, error) {
	return get(s.db, key)
}

// Set upserts a value.
func (s *Store) Set(key, value string) error {
	return set(s.db, key, value)
}

// Update runs fn inside a write transaction. The transaction commits only
// when fn returns nil.
func (s *Store) Update(fn func(tx store.KV) error) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(txKV{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Snapshot returns every key and value.
func (s *Store) Snapshot() (map[string]string, error) {
	rows, err := s.db.QueryContext(context.Background(), `SELECT key, value FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return out, nil
}

// LoadSnapshot replaces all keys with snapshot in one transaction.
func (s *Store) LoadSnapshot(snapshot map[string]string) error {
	return s.Update(func(kv store.KV) error {
		tx := kv.(txKV).tx
		if _, err := tx.ExecContext(context.Background(), `DELETE FROM kv`); err != nil {
			return fmt.Errorf("clear kv: %w", err)
		}
		for k, v := range snapshot {
			if err := set(tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset deletes every key.
func (s *Store) Reset() error {
	if _, err := s.db.ExecContext(context.Background(), `DELETE FROM kv`); err != nil {
		return fmt.Errorf("reset kv: %w", err)
	}
	return nil
}

type txKV struct {
	tx *sql.Tx
}

func (t txKV) Get(key string) (string, bool, error) { return get(t.tx, key) }

func (t txKV) Set(key, value string) error { return set(t.tx, key, value) }

func get(q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(context.Background(), `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func set(q querier, key, value string) error {
	_, err := q.ExecContext(context.Background(),
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
