package sqlengine

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine/internal/adapters"
)

// Tx is the transactional view handed to the function passed to Store.InTx.
// It must not be used after that function returned.
type Tx struct {
	store *Store
	tx    adapters.DBTx
}

var _ library.CirculationTx = (*Tx)(nil)

// FindAvailableCopy is Store.FindAvailableCopy within the transaction.
func (t *Tx) FindAvailableCopy(ctx context.Context, isbn string) (int64, error) {
	return t.store.findCopy(ctx, t.tx, isbn, false)
}

// FindLoanedCopy is Store.FindLoanedCopy within the transaction.
func (t *Tx) FindLoanedCopy(ctx context.Context, isbn string) (int64, error) {
	return t.store.findCopy(ctx, t.tx, isbn, true)
}

// InsertLoan inserts a loan. A second open loan for the same copy fails with library.ErrConcurrencyConflict.
func (t *Tx) InsertLoan(ctx context.Context, loan library.Loan) (library.Loan, error) {
	return t.store.loans.create(ctx, t.tx, loan)
}

// GetLoan reads a loan within the transaction.
func (t *Tx) GetLoan(ctx context.Context, loanID int64) (library.Loan, error) {
	return t.store.loans.get(ctx, t.tx, loanID)
}

// SetLoanReturnDate closes a loan.
func (t *Tx) SetLoanReturnDate(ctx context.Context, loanID int64, returnDate time.Time) error {
	sqlQuery, _, err := t.store.dialect.
		Update(tableLoans).
		Set(goqu.Record{colReturnDate: returnDate.UTC()}).
		Where(goqu.C(colLoanID).Eq(loanID)).
		ToSQL()
	if err != nil {
		t.store.logError(ctx, logMsgBuildQueryFailed, err, logAttrTable, tableLoans)
		return err
	}

	result, err := t.store.executeExec(ctx, t.tx, sqlQuery)
	if err != nil {
		return err
	}

	count, err := t.store.rowsAffected(ctx, result)
	if err != nil {
		return err
	}

	if count == 0 {
		return fmt.Errorf("%w: %s %d", library.ErrNotFound, tableLoans, loanID)
	}

	return nil
}

// InsertReservation inserts a reservation.
func (t *Tx) InsertReservation(ctx context.Context, reservation library.Reservation) (library.Reservation, error) {
	return t.store.reservations.create(ctx, t.tx, reservation)
}
