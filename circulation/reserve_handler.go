package circulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
)

// ReserveHandler reserves books whose copies are all on loan.
type ReserveHandler struct {
	store        TxRunner
	retryOptions []shell.RetryOption
}

// NewReserveHandler creates a ReserveHandler.
func NewReserveHandler(store TxRunner, retryOptions ...shell.RetryOption) ReserveHandler {
	return ReserveHandler{store: store, retryOptions: retryOptions}
}

// Handle inserts a reservation against the first loaned copy of the book. It fails with
// library.ErrNoLoanedCopy when a copy is available (lend it instead) or when nothing is on loan.
func (h ReserveHandler) Handle(ctx context.Context, command ReserveCommand) (library.Reservation, shell.HandlerResult, error) {
	if err := command.Validate(); err != nil {
		return library.Reservation{}, shell.NewErrorResult(shell.RetryMetrics{LastErrorType: shell.ErrorTypeOther}), err
	}

	var reservation library.Reservation

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		return h.store.InTx(ctx, func(ctx context.Context, tx library.CirculationTx) error {
			availableID, findErr := tx.FindAvailableCopy(ctx, command.ISBN)
			switch {
			case findErr == nil:
				return fmt.Errorf("%w: copy %d of isbn %s is available", library.ErrNoLoanedCopy, availableID, command.ISBN)
			case !errors.Is(findErr, library.ErrNoAvailableCopy):
				return findErr
			}

			copyID, findErr := tx.FindLoanedCopy(ctx, command.ISBN)
			if findErr != nil {
				return findErr
			}

			created, insertErr := tx.InsertReservation(ctx, library.Reservation{
				ISBN:        command.ISBN,
				MemberID:    command.MemberID,
				CopyID:      copyID,
				ReserveDate: command.ReserveDate,
			})
			if insertErr != nil {
				return insertErr
			}

			reservation = created

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return library.Reservation{}, shell.NewErrorResult(retryMetrics), err
	}

	return reservation, shell.NewSuccessResult(retryMetrics), nil
}
