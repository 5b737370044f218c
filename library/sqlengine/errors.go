package sqlengine

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/DevinCastillo5/Library-App/library"
)

// Index that allows at most one loan without a return date per copy.
const openLoanIndex = "loans_one_open_per_copy"

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateNotNullViolation     = "23502"
	sqlStateCheckViolation       = "23514"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// classifyError maps driver errors onto the library sentinels; the driver error stays in the chain.
// Errors that are not recognized are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(err, pgErr.Code, pgErr.ConstraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(err, string(pqErr.Code), pqErr.Constraint)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return classifySQLite(err, sqliteErr)
	}

	return err
}

func classifySQLState(err error, code string, constraint string) error {
	switch code {
	case sqlStateUniqueViolation:
		if constraint == openLoanIndex {
			return errors.Join(library.ErrConcurrencyConflict, err)
		}

		return errors.Join(library.ErrAlreadyExists, err)
	case sqlStateForeignKeyViolation:
		return errors.Join(library.ErrForeignKeyViolation, err)
	case sqlStateNotNullViolation, sqlStateCheckViolation:
		return errors.Join(library.ErrValidation, err)
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return errors.Join(library.ErrConcurrencyConflict, err)
	default:
		return err
	}
}

func classifySQLite(err error, sqliteErr sqlite3.Error) error {
	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return errors.Join(library.ErrConcurrencyConflict, err)
	case sqlite3.ErrConstraint:
	default:
		return err
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique:
		// The partial index reports the indexed column, not the index name.
		if strings.Contains(sqliteErr.Error(), tableLoans+"."+colCopyID) {
			return errors.Join(library.ErrConcurrencyConflict, err)
		}

		return errors.Join(library.ErrAlreadyExists, err)
	case sqlite3.ErrConstraintPrimaryKey:
		return errors.Join(library.ErrAlreadyExists, err)
	case sqlite3.ErrConstraintForeignKey:
		return errors.Join(library.ErrForeignKeyViolation, err)
	case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
		return errors.Join(library.ErrValidation, err)
	default:
		return err
	}
}
