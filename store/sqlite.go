package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var _ Store = (*SQLite)(nil)

// SQLite keeps records in a single key/value table.
type SQLite struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &SQLite{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func (db *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM records WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (db *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO records (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))",
		key, value,
	)
	return err
}

func (db *SQLite) Delete(ctx context.Context, key string) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key)
	return err
}

func (db *SQLite) Close() error {
	return db.conn.Close()
}
