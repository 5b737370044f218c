package sqlengine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
	"github.com/DevinCastillo5/Library-App/testutil/fixtures"
)

// givenPostgresLibrary creates a book with copies, staff 1 and members 1..members through store.
func givenPostgresLibrary(t *testing.T, store *sqlengine.Store, copies []int64, members int64) {
	t.Helper()

	fixtures.GivenBook(t, store, testISBN)
	fixtures.GivenCopies(t, store, testISBN, copies...)
	fixtures.GivenStaff(t, store, 1)
	for id := int64(1); id <= members; id++ {
		fixtures.GivenMember(t, store, id)
	}
}

func Test_Postgres_Drivers_AvailabilityAndConflicts(t *testing.T) {
	for _, driver := range []string{"pgx", "sql", "sqlx"} {
		t.Run(driver, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			store := fixtures.NewPostgresStores(t)[driver]
			givenPostgresLibrary(t, store, []int64{1, 2}, 2)
			fixtures.GivenOpenLoan(t, store, testISBN, 1, 1, 1)

			// act
			available, availableErr := store.FindAvailableCopy(ctx, testISBN)
			loaned, loanedErr := store.FindLoanedCopy(ctx, testISBN)
			_, conflictErr := store.Loans().Create(ctx, library.Loan{
				ISBN: testISBN, MemberID: 2, StaffID: 1, CopyID: 1, LoanDate: fixtures.FixedClock,
			})
			_, duplicateErr := store.Members().Create(ctx, library.Member{MemberID: 1, MemberName: "again"})
			generated, generatedErr := store.Members().Create(ctx, library.Member{MemberName: "generated"})

			// assert
			require.NoError(t, availableErr)
			assert.Equal(t, int64(2), available)
			require.NoError(t, loanedErr)
			assert.Equal(t, int64(1), loaned)
			assert.ErrorIs(t, conflictErr, library.ErrConcurrencyConflict)
			assert.ErrorIs(t, duplicateErr, library.ErrAlreadyExists)
			require.NoError(t, generatedErr)
			assert.NotZero(t, generated.MemberID)
		})
	}
}

func Test_Postgres_Create_GeneratedKeyFollowsExplicitKeys(t *testing.T) {
	for _, driver := range []string{"pgx", "sql", "sqlx"} {
		t.Run(driver, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			store := fixtures.NewPostgresStores(t)[driver]
			givenPostgresLibrary(t, store, []int64{1, 2}, 0)
			fixtures.GivenMember(t, store, 5)
			_, err := store.Loans().Create(ctx, library.Loan{
				LoanID: 7, ISBN: testISBN, MemberID: 5, StaffID: 1, CopyID: 1, LoanDate: fixtures.FixedClock,
			})
			require.NoError(t, err)

			// act
			member, memberErr := store.Members().Create(ctx, library.Member{MemberName: "generated"})
			nextMember, nextMemberErr := store.Members().Create(ctx, library.Member{MemberName: "generated too"})
			loan, loanErr := store.Loans().Create(ctx, library.Loan{
				ISBN: testISBN, MemberID: member.MemberID, StaffID: 1, CopyID: 2, LoanDate: fixtures.FixedClock,
			})

			// assert
			require.NoError(t, memberErr)
			assert.Greater(t, member.MemberID, int64(5))
			require.NoError(t, nextMemberErr)
			assert.Greater(t, nextMember.MemberID, member.MemberID)
			require.NoError(t, loanErr)
			assert.Greater(t, loan.LoanID, int64(7))
		})
	}
}

func Test_Postgres_InTx_ParallelLendingNeverSharesACopy(t *testing.T) {
	// arrange
	const requests = 6

	ctx := context.Background()
	store := fixtures.NewPostgresStores(t)["pgx"]
	givenPostgresLibrary(t, store, []int64{1, 2}, requests)

	var wg sync.WaitGroup
	errs := make([]error, requests)

	// act
	for i := range requests {
		wg.Add(1)
		go func(memberID int64) {
			defer wg.Done()
			errs[memberID-1] = store.InTx(ctx, func(ctx context.Context, tx library.CirculationTx) error {
				copyID, err := tx.FindAvailableCopy(ctx, testISBN)
				if err != nil {
					return err
				}

				_, err = tx.InsertLoan(ctx, library.Loan{
					ISBN: testISBN, MemberID: memberID, StaffID: 1, CopyID: copyID, LoanDate: fixtures.FixedClock,
				})

				return err
			})
		}(int64(i + 1))
	}
	wg.Wait()

	// assert
	for _, err := range errs {
		if err != nil {
			assert.True(t,
				errors.Is(err, library.ErrConcurrencyConflict) || errors.Is(err, library.ErrNoAvailableCopy),
				"unexpected error: %v", err)
		}
	}

	loans, err := store.Loans().List(ctx, library.DefaultPage())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(loans), 2)

	seen := make(map[int64]bool)
	for _, loan := range loans {
		assert.False(t, seen[loan.CopyID], "copy %d has two open loans", loan.CopyID)
		seen[loan.CopyID] = true
	}
}
