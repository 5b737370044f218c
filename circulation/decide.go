package circulation

import (
	"fmt"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
)

// ReturnDecision is what returning a loan should do.
type ReturnDecision struct {
	// Close is true when the return date has to be written.
	Close bool
	// ReturnDate is the date to write when Close is set. It is never before the loan date.
	ReturnDate time.Time
	// Idempotent is true when the loan is already returned and the policy ignores re-returns.
	Idempotent bool
	// Err is set when the return must be refused; nothing is written then.
	Err error
}

// DecideReturn decides how a return of loan at returnDate is handled under policy.
// It is a pure function.
//
//	GIVEN an open loan WHEN it is returned THEN its return date is set
//	GIVEN a returned loan WHEN it is returned again THEN ErrLoanAlreadyReturned (reject) or a no-op (ignore)
//	GIVEN an open loan WHEN it is returned earlier on its loan day THEN the return date is the loan date
//	ERROR: a return date on a day before the loan day
func DecideReturn(loan library.Loan, returnDate time.Time, policy library.ReturnPolicy) ReturnDecision {
	if !loan.IsOpen() {
		if policy == library.IgnoreReReturn {
			return ReturnDecision{Idempotent: true}
		}

		return ReturnDecision{Err: fmt.Errorf("%w: loan %d on %s", library.ErrLoanAlreadyReturned, loan.LoanID, loan.ReturnDate.Format(time.DateOnly))}
	}

	if !returnDate.Before(loan.LoanDate) {
		return ReturnDecision{Close: true, ReturnDate: returnDate}
	}

	// A date-only return ("2024-03-04") is midnight and precedes a loan stamped later that day.
	if sameDay(returnDate, loan.LoanDate) {
		return ReturnDecision{Close: true, ReturnDate: loan.LoanDate}
	}

	return ReturnDecision{Err: library.ValidationError("ReturnDate", "must not be before the loan day")}
}

func sameDay(a time.Time, b time.Time) bool {
	return a.UTC().Truncate(24 * time.Hour).Equal(b.UTC().Truncate(24 * time.Hour))
}
