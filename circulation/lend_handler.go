package circulation

import (
	"context"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
)

// LendHandler lends the first available copy of a book.
type LendHandler struct {
	store        TxRunner
	retryOptions []shell.RetryOption
}

// NewLendHandler creates a LendHandler. Without retry options the shell defaults apply.
func NewLendHandler(store TxRunner, retryOptions ...shell.RetryOption) LendHandler {
	return LendHandler{store: store, retryOptions: retryOptions}
}

// Handle resolves an available copy and inserts an open loan for it, in one transaction.
// It fails with library.ErrNoAvailableCopy when every copy is on loan; a lost race against a
// concurrent loan of the same copy is retried, and the retry resolves the copy again.
func (h LendHandler) Handle(ctx context.Context, command LendCommand) (library.Loan, shell.HandlerResult, error) {
	if err := command.Validate(); err != nil {
		return library.Loan{}, shell.NewErrorResult(shell.RetryMetrics{LastErrorType: shell.ErrorTypeOther}), err
	}

	var loan library.Loan

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		return h.store.InTx(ctx, func(ctx context.Context, tx library.CirculationTx) error {
			copyID, findErr := tx.FindAvailableCopy(ctx, command.ISBN)
			if findErr != nil {
				return findErr
			}

			created, insertErr := tx.InsertLoan(ctx, library.Loan{
				ISBN:     command.ISBN,
				MemberID: command.MemberID,
				StaffID:  command.StaffID,
				CopyID:   copyID,
				LoanDate: command.LoanDate,
			})
			if insertErr != nil {
				return insertErr
			}

			loan = created

			return nil
		})
	}, h.retryOptions...)

	if err != nil {
		return library.Loan{}, shell.NewErrorResult(retryMetrics), err
	}

	return loan, shell.NewSuccessResult(retryMetrics), nil
}
