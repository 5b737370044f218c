package circulation

import (
	"context"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
)

// ReturnHandler closes loans.
type ReturnHandler struct {
	store        TxRunner
	policy       library.ReturnPolicy
	retryOptions []shell.RetryOption
}

// NewReturnHandler creates a ReturnHandler applying policy to loans that are already returned.
func NewReturnHandler(store TxRunner, policy library.ReturnPolicy, retryOptions ...shell.RetryOption) ReturnHandler {
	return ReturnHandler{store: store, policy: policy, retryOptions: retryOptions}
}

// Handle sets the return date of an open loan, which makes its copy available again.
// An unknown loan fails with library.ErrNotFound.
func (h ReturnHandler) Handle(ctx context.Context, command ReturnCommand) (library.Loan, shell.HandlerResult, error) {
	if err := command.Validate(); err != nil {
		return library.Loan{}, shell.NewErrorResult(shell.RetryMetrics{LastErrorType: shell.ErrorTypeOther}), err
	}

	var loan library.Loan
	var idempotent bool

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		return h.store.InTx(ctx, func(ctx context.Context, tx library.CirculationTx) error {
			current, getErr := tx.GetLoan(ctx, command.LoanID)
			if getErr != nil {
				return getErr
			}

			decision := DecideReturn(current, command.ReturnDate, h.policy)
			if decision.Err != nil {
				return decision.Err
			}

			idempotent = decision.Idempotent
			loan = current

			if !decision.Close {
				return nil
			}

			if setErr := tx.SetLoanReturnDate(ctx, command.LoanID, decision.ReturnDate); setErr != nil {
				return setErr
			}

			returnDate := decision.ReturnDate
			loan.ReturnDate = &returnDate

			return nil
		})
	}, h.retryOptions...)

	switch {
	case err != nil:
		return library.Loan{}, shell.NewErrorResult(retryMetrics), err
	case idempotent:
		return loan, shell.NewIdempotentResult(retryMetrics), nil
	default:
		return loan, shell.NewSuccessResult(retryMetrics), nil
	}
}
