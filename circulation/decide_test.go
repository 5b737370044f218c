package circulation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DevinCastillo5/Library-App/circulation"
	"github.com/DevinCastillo5/Library-App/library"
)

func Test_DecideReturn(t *testing.T) {
	loanDate := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	returnedAt := loanDate.Add(48 * time.Hour)

	openLoan := library.Loan{LoanID: 3, ISBN: "9780000000001", MemberID: 7, StaffID: 1, CopyID: 2, LoanDate: loanDate}
	returnedLoan := openLoan
	returnedLoan.ReturnDate = &returnedAt

	testCases := []struct {
		description      string
		loan             library.Loan
		returnDate       time.Time
		policy           library.ReturnPolicy
		expectClose      bool
		expectReturnDate time.Time
		expectIdempotent bool
		expectedErr      error
	}{
		{
			description: "open loan is closed",
			loan:        openLoan,
			returnDate:       loanDate.Add(24 * time.Hour),
			policy:           library.RejectReReturn,
			expectClose:      true,
			expectReturnDate: loanDate.Add(24 * time.Hour),
		},
		{
			description:      "open loan returned on its loan date is closed",
			loan:             openLoan,
			returnDate:       loanDate,
			policy:           library.RejectReReturn,
			expectClose:      true,
			expectReturnDate: loanDate,
		},
		{
			description:      "date-only return on the loan day is clamped to the loan date",
			loan:             openLoan,
			returnDate:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			policy:           library.RejectReReturn,
			expectClose:      true,
			expectReturnDate: loanDate,
		},
		{
			description: "return on a day before the loan day is a validation error",
			loan:        openLoan,
			returnDate:  time.Date(2024, time.February, 29, 23, 0, 0, 0, time.UTC),
			policy:      library.RejectReReturn,
			expectedErr: library.ErrValidation,
		},
		{
			description: "returned loan is rejected by default",
			loan:        returnedLoan,
			returnDate:  returnedAt.Add(time.Hour),
			policy:      library.RejectReReturn,
			expectedErr: library.ErrLoanAlreadyReturned,
		},
		{
			description:      "returned loan is a no-op when re-returns are ignored",
			loan:             returnedLoan,
			returnDate:       returnedAt.Add(time.Hour),
			policy:           library.IgnoreReReturn,
			expectIdempotent: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			decision := circulation.DecideReturn(tc.loan, tc.returnDate, tc.policy)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, decision.Err, tc.expectedErr)
				assert.False(t, decision.Close)
				return
			}

			assert.NoError(t, decision.Err)
			assert.Equal(t, tc.expectClose, decision.Close)
			assert.Equal(t, tc.expectIdempotent, decision.Idempotent)
			assert.True(t, tc.expectReturnDate.Equal(decision.ReturnDate))
		})
	}
}
