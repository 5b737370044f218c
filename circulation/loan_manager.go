package circulation

import (
	"context"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
)

const (
	outcomeLoanCreated  = "loan_created"
	outcomeLoanReturned = "loan_returned"
)

// LoanManager runs the loan lifecycle: OPEN (no return date) to RETURNED.
type LoanManager struct {
	loans    LoanStore
	lend     shell.CommandHandler[LendCommand, library.Loan]
	giveBack shell.CommandHandler[ReturnCommand, library.Loan]
	settings settings
}

// NewLoanManager creates a LoanManager. txRunner runs the lend and return transactions,
// loans serves the plain pass-through operations.
func NewLoanManager(txRunner TxRunner, loans LoanStore, options ...Option) (*LoanManager, error) {
	if txRunner == nil {
		return nil, ErrNilTxRunner
	}

	if loans == nil {
		return nil, ErrNilEntityStore
	}

	s, err := buildSettings(options)
	if err != nil {
		return nil, err
	}

	lend, err := wrap[LendCommand, library.Loan](s,
		NewLendHandler(txRunner, s.retryOptionsFor(commandTypeLend)...), outcomeLoanCreated)
	if err != nil {
		return nil, err
	}

	giveBack, err := wrap[ReturnCommand, library.Loan](s,
		NewReturnHandler(txRunner, s.returnPolicy, s.retryOptionsFor(commandTypeReturn)...), outcomeLoanReturned)
	if err != nil {
		return nil, err
	}

	return &LoanManager{loans: loans, lend: lend, giveBack: giveBack, settings: s}, nil
}

// CreateLoan lends the lowest numbered available copy of isbn. A zero loanDate means now.
func (m *LoanManager) CreateLoan(ctx context.Context, isbn string, memberID int64, staffID int64, loanDate time.Time) (library.Loan, error) {
	if loanDate.IsZero() {
		loanDate = m.settings.now()
	}

	loan, _, err := m.lend.Handle(ctx, BuildLendCommand(isbn, memberID, staffID, loanDate))

	return loan, err
}

// ReturnLoan closes the loan. A zero returnDate means now.
func (m *LoanManager) ReturnLoan(ctx context.Context, loanID int64, returnDate time.Time) (library.Loan, error) {
	if returnDate.IsZero() {
		returnDate = m.settings.now()
	}

	loan, _, err := m.giveBack.Handle(ctx, BuildReturnCommand(loanID, returnDate))

	return loan, err
}

func (m *LoanManager) GetLoan(ctx context.Context, loanID int64) (library.Loan, error) {
	return m.loans.Get(ctx, loanID)
}

func (m *LoanManager) ListLoans(ctx context.Context, page library.Page) ([]library.Loan, error) {
	return m.loans.List(ctx, page)
}

// UpdateLoan overwrites every column of the loan. It does not re-check availability.
func (m *LoanManager) UpdateLoan(ctx context.Context, loan library.Loan) (library.Loan, error) {
	return m.loans.Update(ctx, loan)
}

func (m *LoanManager) DeleteLoan(ctx context.Context, loanID int64) (int64, error) {
	return m.loans.Delete(ctx, loanID)
}
