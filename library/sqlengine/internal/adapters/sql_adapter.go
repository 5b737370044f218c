package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
// It serves both lib/pq (serializable transactions) and go-sqlite3 (default isolation, writers
// serialized by BEGIN IMMEDIATE).
type SQLAdapter struct {
	db        *sql.DB
	isolation sql.IsolationLevel
}

// NewSQLAdapter creates a new SQL adapter that opens transactions with the given isolation level.
func NewSQLAdapter(db *sql.DB, isolation sql.IsolationLevel) *SQLAdapter {
	return &SQLAdapter{db: db, isolation: isolation}
}

// Query executes a query using the sql.DB and returns wrapped rows.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, s.db, query)
}

// Exec executes a statement using the sql.DB and returns the wrapped result.
func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, s.db, query)
}

// BeginTx starts a transaction with the configured isolation level.
func (s *SQLAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: s.isolation})
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}

// Ping verifies a connection to the database is still alive.
func (s *SQLAdapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
