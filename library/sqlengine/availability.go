package sqlengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine/internal/adapters"
)

// FindAvailableCopy returns the lowest CopyID of the book that no open loan references.
// It fails with library.ErrNoAvailableCopy when all copies are on loan or the book has none.
//
// Outside a transaction the answer can be stale by the time it is used;
// the circulation workflow calls the transactional variant on Tx instead.
func (s *Store) FindAvailableCopy(ctx context.Context, isbn string) (copyID int64, err error) {
	ctx, observer := s.startOperation(ctx, operationFindAvailableCopy, tableCopies)
	defer func() { observer.finish(ctx, err) }()

	return s.findCopy(ctx, s.db, isbn, false)
}

// FindLoanedCopy returns the lowest CopyID of the book that an open loan references.
// It fails with library.ErrNoLoanedCopy when no copy of the book is on loan.
func (s *Store) FindLoanedCopy(ctx context.Context, isbn string) (copyID int64, err error) {
	ctx, observer := s.startOperation(ctx, operationFindLoanedCopy, tableCopies)
	defer func() { observer.finish(ctx, err) }()

	return s.findCopy(ctx, s.db, isbn, true)
}

// buildCopyQuery selects the first copy of a book that is (onLoan) or is not (!onLoan)
// referenced by a loan without a return date.
func (s *Store) buildCopyQuery(isbn string, onLoan bool) (string, error) {
	copyID := goqu.T(tableCopies).Col(colCopyID)

	openLoans := s.dialect.
		From(tableLoans).
		Select(goqu.T(tableLoans).Col(colCopyID)).
		Where(goqu.T(tableLoans).Col(colReturnDate).IsNull())

	var loanCondition exp.Expression = copyID.NotIn(openLoans)
	if onLoan {
		loanCondition = copyID.In(openLoans)
	}

	sqlQuery, _, err := s.dialect.
		From(tableCopies).
		Select(copyID).
		Where(goqu.T(tableCopies).Col(colISBN).Eq(isbn), loanCondition).
		Order(copyID.Asc()).
		Limit(1).
		ToSQL()

	return sqlQuery, err
}

func (s *Store) findCopy(ctx context.Context, q adapters.Queryer, isbn string, onLoan bool) (int64, error) {
	notFound := library.ErrNoAvailableCopy
	if onLoan {
		notFound = library.ErrNoLoanedCopy
	}

	sqlQuery, err := s.buildCopyQuery(isbn, onLoan)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, err, logAttrTable, tableCopies)
		return 0, err
	}

	rows, err := s.executeQuery(ctx, q, sqlQuery)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return 0, classifyError(err)
		}

		return 0, fmt.Errorf("%w: isbn %s", notFound, isbn)
	}

	var copyID int64
	if err = rows.Scan(&copyID); err != nil {
		s.logError(ctx, logMsgScanRowFailed, err, logAttrTable, tableCopies)
		return 0, err
	}

	return copyID, nil
}
