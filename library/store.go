package library

import (
	"context"
	"time"
)

// EntityStore is the data access boundary every entity offers.
// Delete and DeleteMany return the number of removed rows; zero is not an error.
type EntityStore[E any, K comparable] interface {
	List(ctx context.Context, page Page) ([]E, error)
	Get(ctx context.Context, key K) (E, error)
	Create(ctx context.Context, entity E) (E, error)
	Update(ctx context.Context, entity E) (E, error)
	Delete(ctx context.Context, key K) (int64, error)
	DeleteMany(ctx context.Context, keys []K) (int64, error)
}

// CirculationTx is the transactional view the circulation workflow runs in.
// All reads and writes of one unit of work go through the same CirculationTx,
// so an availability check and the write that depends on it commit or fail together.
type CirculationTx interface {
	FindAvailableCopy(ctx context.Context, isbn string) (int64, error)
	FindLoanedCopy(ctx context.Context, isbn string) (int64, error)
	InsertLoan(ctx context.Context, loan Loan) (Loan, error)
	GetLoan(ctx context.Context, loanID int64) (Loan, error)
	SetLoanReturnDate(ctx context.Context, loanID int64, returnDate time.Time) error
	InsertReservation(ctx context.Context, reservation Reservation) (Reservation, error)
}
