package circulation

import (
	"context"

	"github.com/DevinCastillo5/Library-App/library"
)

// TxRunner runs a unit of work in one store transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx library.CirculationTx) error) error
}

// LoanStore is the plain loan table.
type LoanStore interface {
	library.EntityStore[library.Loan, int64]
}

// ReservationStore is the plain reservation table.
type ReservationStore interface {
	library.EntityStore[library.Reservation, int64]
	DeleteAllForMember(ctx context.Context, memberID int64) (int64, error)
}
