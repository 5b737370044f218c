package config

import (
	"context"
	"database/sql"
	"net/url"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
)

// SQLiteDSN builds a go-sqlite3 DSN for the file at path with foreign keys enforced,
// a busy timeout, and BEGIN IMMEDIATE transactions so writers serialize up front.
func SQLiteDSN(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	params.Set("_txlock", "immediate")
	params.Set("_journal_mode", "WAL")

	return "file:" + path + "?" + params.Encode()
}

// NewSQLiteDB opens the database file at path. SQLite has a single writer, so the pool
// keeps one connection and concurrent transactions queue in database/sql.
func NewSQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", SQLiteDSN(path))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}
