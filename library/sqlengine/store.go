package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // driver import
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine/internal/adapters"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"

	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "store operation: "
	logMsgBuildQueryFailed     = "failed to build sql query"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database statement execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgBeginTxFailed        = "failed to begin transaction"
	logMsgCommitFailed         = "failed to commit transaction"
	logMsgRollbackFailed       = "failed to roll back transaction"
	logMsgOperationFailed      = "store operation failed"
	logMsgConcurrencyConflict  = "concurrency conflict detected"
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrTable               = "table"
	logAttrOperation           = "operation"
	logAttrDurationMS          = "duration_ms"
	logAttrRowsAffected        = "rows_affected"
	logAttrRowCount            = "row_count"
	logActionQuery             = "query"
	logActionExec              = "exec"
	operationList              = "list"
	operationGet               = "get"
	operationCreate            = "create"
	operationUpdate            = "update"
	operationDelete            = "delete"
	operationDeleteMany        = "delete_many"
	operationListWhere         = "list_where"
	operationDeleteWhere       = "delete_where"
	operationFindAvailableCopy = "find_available_copy"
	operationFindLoanedCopy    = "find_loaned_copy"
	operationTransaction       = "transaction"
	operationCreateSchema      = "create_schema"
)

// Store persists the library entities in a relational database.
// It is safe for concurrent use; all state besides the injected connection pool is immutable.
type Store struct {
	db               adapters.DBAdapter
	dialect          goqu.DialectWrapper
	dialectName      string
	logger           library.Logger
	metricsCollector library.MetricsCollector
	tracingCollector library.TracingCollector
	contextualLogger library.ContextualLogger

	authors      *Table[library.Author, string]
	publishers   *Table[library.Publisher, string]
	books        *Table[library.Book, string]
	bookAuthors  *BookAuthorTable
	copies       *Table[library.Copy, int64]
	members      *Table[library.Member, int64]
	staff        *Table[library.Staff, int64]
	loans        *LoanTable
	reservations *ReservationTable
	fines        *FineTable
}

// NewStoreFromPGXPool creates a new PostgreSQL Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, library.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), dialectPostgres, options...)
}

// NewStoreFromPGXPoolAndReplica creates a new PostgreSQL Store that sends plain reads to the replica pool.
// Transactions, and therefore the whole circulation workflow, always run on the primary.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, library.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), dialectPostgres, options...)
}

// NewStoreFromSQLDB creates a new PostgreSQL Store using a sql.DB (lib/pq) with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, library.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db, sql.LevelSerializable), dialectPostgres, options...)
}

// NewStoreFromSQLX creates a new PostgreSQL Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, library.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), dialectPostgres, options...)
}

// NewStoreFromSQLite creates a new SQLite Store using a go-sqlite3 sql.DB with optional configuration.
// The DSN should enable foreign keys and immediate transactions, see config.SQLiteDSN.
func NewStoreFromSQLite(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, library.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db, sql.LevelDefault), dialectSQLite, options...)
}

func newStore(db adapters.DBAdapter, dialectName string, options ...Option) (*Store, error) {
	s := &Store{
		db:          db,
		dialect:     goqu.Dialect(dialectName),
		dialectName: dialectName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	s.authors = newTable(s, authorsDef())
	s.publishers = newTable(s, publishersDef())
	s.books = newTable(s, booksDef())
	s.bookAuthors = &BookAuthorTable{Table: newTable(s, bookAuthorsDef())}
	s.copies = newTable(s, copiesDef())
	s.members = newTable(s, membersDef())
	s.staff = newTable(s, staffDef())
	s.loans = &LoanTable{Table: newTable(s, loansDef())}
	s.reservations = &ReservationTable{Table: newTable(s, reservationsDef())}
	s.fines = &FineTable{Table: newTable(s, finesDef())}

	return s, nil
}

// Authors returns the author table.
func (s *Store) Authors() *Table[library.Author, string] { return s.authors }

// Publishers returns the publisher table.
func (s *Store) Publishers() *Table[library.Publisher, string] { return s.publishers }

// Books returns the book table.
func (s *Store) Books() *Table[library.Book, string] { return s.books }

// BookAuthors returns the book-author link table.
func (s *Store) BookAuthors() *BookAuthorTable { return s.bookAuthors }

// Copies returns the copy table.
func (s *Store) Copies() *Table[library.Copy, int64] { return s.copies }

// Members returns the member table.
func (s *Store) Members() *Table[library.Member, int64] { return s.members }

// Staff returns the staff table.
func (s *Store) Staff() *Table[library.Staff, int64] { return s.staff }

// Loans returns the loan table.
func (s *Store) Loans() *LoanTable { return s.loans }

// Reservations returns the reservation table.
func (s *Store) Reservations() *ReservationTable { return s.reservations }

// Fines returns the fine table.
func (s *Store) Fines() *FineTable { return s.fines }

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// InTx runs fn inside one database transaction and commits when fn returns nil.
// Any error from fn, or a failing commit, rolls the transaction back. Serialization
// failures surface as library.ErrConcurrencyConflict so callers can retry the whole unit.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx library.CirculationTx) error) (err error) {
	ctx, observer := s.startOperation(ctx, operationTransaction, "")
	defer func() { observer.finish(ctx, err) }()

	dbTx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		return classifyError(beginErr)
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		if rollbackErr := dbTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil && !isTxDone(rollbackErr) {
			s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
		}
	}()

	if fnErr := fn(ctx, &Tx{store: s, tx: dbTx}); fnErr != nil {
		return fnErr
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr)
		return classifyError(commitErr)
	}

	committed = true

	return nil
}

// executeQuery runs a built SELECT (or RETURNING statement) and logs it with its duration.
func (s *Store) executeQuery(ctx context.Context, q adapters.Queryer, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := q.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionQuery, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, classifyError(err)
	}

	return rows, nil
}

// executeExec runs a built INSERT/UPDATE/DELETE and logs it with its duration.
func (s *Store) executeExec(ctx context.Context, q adapters.Queryer, sqlQuery string) (adapters.DBResult, error) {
	start := time.Now()
	result, err := q.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionExec, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return nil, classifyError(err)
	}

	return result, nil
}

// rowsAffected extracts the affected row count of a statement.
func (s *Store) rowsAffected(ctx context.Context, result adapters.DBResult) (int64, error) {
	count, err := result.RowsAffected()
	if err != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, err)
		return 0, err
	}

	return count, nil
}

// closeRows closes rows and logs a warning on failure.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (s *Store) supportsReturning() bool {
	return s.dialectName == dialectPostgres
}

func isTxDone(err error) bool {
	return errors.Is(err, sql.ErrTxDone) || errors.Is(err, pgx.ErrTxClosed)
}
