package adapters

import (
	"context"
	"database/sql"
	"errors"
)

// ErrLastInsertIDUnsupported is returned by drivers that only report generated keys via RETURNING.
var ErrLastInsertIDUnsupported = errors.New("last insert id is not supported by this driver")

// Queryer is implemented by both a connection pool and an open transaction.
type Queryer interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBAdapter defines the database operations needed by the store.
type DBAdapter interface {
	Queryer
	BeginTx(ctx context.Context) (DBTx, error)
	Ping(ctx context.Context) error
}

// DBTx is an open transaction.
type DBTx interface {
	Queryer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

// stdQueryer is the subset of sql.DB, sql.Tx, sqlx.DB and sqlx.Tx the std wrappers need.
type stdQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func stdQuery(ctx context.Context, q stdQueryer, query string) (DBRows, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func stdExec(ctx context.Context, q stdQueryer, query string) (DBResult, error) {
	result, err := q.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// stdRows wraps standard library sql.Rows to implement the DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Err returns the error, if any, that was encountered during iteration.
func (s *stdRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement the DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// LastInsertId returns the key generated by the last insert, where the driver reports it.
func (s *stdResult) LastInsertId() (int64, error) {
	return s.result.LastInsertId()
}

// stdTx wraps a database/sql style transaction.
type stdTx struct {
	tx interface {
		stdQueryer
		Commit() error
		Rollback() error
	}
}

func (t *stdTx) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, t.tx, query)
}

func (t *stdTx) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, t.tx, query)
}

func (t *stdTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t *stdTx) Rollback(_ context.Context) error {
	return t.tx.Rollback()
}
