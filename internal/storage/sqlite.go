package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed sqlite.sql
var sqliteSchema string

var ErrEmptyPath = errors.New("sqlite path is required")

// OpenSQLite opens the database at path and applies the schema.
//
// The pool is capped at a single connection: an in-memory database only
// exists on the connection that created it, and SQLite serializes writers
// anyway.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return db, nil
}

// UnixTime converts a stored timestamp back to a UTC time.
func UnixTime(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}
