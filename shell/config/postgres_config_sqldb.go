package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const (
	defaultMaxOpenConnections = 20
	defaultMaxIdleConnections = 5
	defaultMaxConnLifetime    = time.Hour
	defaultMaxConnIdleTime    = time.Minute * 5
)

// NewSQLDB opens a lib/pq backed *sql.DB with pool limits and pings it once.
func NewSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	configurePool(db)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(defaultMaxOpenConnections)
	db.SetMaxIdleConns(defaultMaxIdleConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
