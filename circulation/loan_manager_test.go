package circulation_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/circulation"
	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
	"github.com/DevinCastillo5/Library-App/shell"
	"github.com/DevinCastillo5/Library-App/testutil/fixtures"
	"github.com/DevinCastillo5/Library-App/testutil/testdoubles"
)

const isbn = "9780000000001"

func newLoanManager(t *testing.T, store *sqlengine.Store, options ...circulation.Option) *circulation.LoanManager {
	t.Helper()

	options = append([]circulation.Option{
		circulation.WithClock(func() time.Time { return fixtures.FixedClock }),
		circulation.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)),
	}, options...)

	manager, err := circulation.NewLoanManager(store, store.Loans(), options...)
	require.NoError(t, err)

	return manager
}

// givenLibrary creates the book with the given copies, staff 1 and the given members.
func givenLibrary(t *testing.T, store *sqlengine.Store, copyIDs []int64, memberIDs ...int64) {
	t.Helper()

	fixtures.GivenBook(t, store, isbn)
	fixtures.GivenCopies(t, store, isbn, copyIDs...)
	fixtures.GivenStaff(t, store, 1)

	for _, memberID := range memberIDs {
		fixtures.GivenMember(t, store, memberID)
	}
}

func Test_NewLoanManager_NilDependencies(t *testing.T) {
	store := fixtures.NewSQLiteStore(t)

	_, err := circulation.NewLoanManager(nil, store.Loans())
	assert.ErrorIs(t, err, circulation.ErrNilTxRunner)

	_, err = circulation.NewLoanManager(store, nil)
	assert.ErrorIs(t, err, circulation.ErrNilEntityStore)

	_, err = circulation.NewLoanManager(store, store.Loans(), circulation.WithClock(nil))
	assert.ErrorIs(t, err, circulation.ErrNilClock)
}

func Test_LoanManager_CreateLoan_SelectsFirstAvailableCopy(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1, 2}, 5, 7)
	fixtures.GivenOpenLoan(t, store, isbn, 1, 5, 1)
	manager := newLoanManager(t, store)

	// act
	loan, err := manager.CreateLoan(ctx, isbn, 7, 1, time.Time{})

	// assert
	require.NoError(t, err)
	assert.NotZero(t, loan.LoanID)
	assert.Equal(t, int64(2), loan.CopyID)
	assert.Equal(t, int64(7), loan.MemberID)
	assert.True(t, loan.IsOpen())
	assert.True(t, fixtures.FixedClock.Equal(loan.LoanDate))

	stored, err := manager.GetLoan(ctx, loan.LoanID)
	require.NoError(t, err)
	assert.Equal(t, loan.CopyID, stored.CopyID)
	assert.True(t, stored.IsOpen())
}

func Test_LoanManager_CreateLoan_NoAvailableCopy(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 5, 7)
	fixtures.GivenOpenLoan(t, store, isbn, 1, 5, 1)
	manager := newLoanManager(t, store)

	// act
	_, err := manager.CreateLoan(ctx, isbn, 7, 1, time.Time{})

	// assert
	assert.ErrorIs(t, err, library.ErrNoAvailableCopy)

	loans, listErr := manager.ListLoans(ctx, library.DefaultPage())
	require.NoError(t, listErr)
	assert.Len(t, loans, 1, "no loan must have been written")
}

func Test_LoanManager_CreateLoan_UnknownBook(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 7)
	manager := newLoanManager(t, store)

	// act
	_, err := manager.CreateLoan(context.Background(), "9789999999999", 7, 1, time.Time{})

	// assert
	assert.ErrorIs(t, err, library.ErrNoAvailableCopy)
}

func Test_LoanManager_CreateLoan_MissingReferences(t *testing.T) {
	testCases := []struct {
		description string
		memberID    int64
		staffID     int64
	}{
		{description: "unknown member", memberID: 404, staffID: 1},
		{description: "unknown staff", memberID: 7, staffID: 404},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			store := fixtures.NewSQLiteStore(t)
			givenLibrary(t, store, []int64{1}, 7)
			manager := newLoanManager(t, store)

			// act
			_, err := manager.CreateLoan(context.Background(), isbn, tc.memberID, tc.staffID, time.Time{})

			// assert
			assert.ErrorIs(t, err, library.ErrForeignKeyViolation)
		})
	}
}

func Test_LoanManager_CreateLoan_InvalidCommand(t *testing.T) {
	store := fixtures.NewSQLiteStore(t)
	manager := newLoanManager(t, store)

	_, err := manager.CreateLoan(context.Background(), "short", 7, 1, time.Time{})

	assert.ErrorIs(t, err, library.ErrValidation)
}

func Test_LoanManager_ReturnLoan_MakesCopyAvailableAgain(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 5, 7)
	open := fixtures.GivenOpenLoan(t, store, isbn, 1, 5, 1)
	manager := newLoanManager(t, store)

	_, err := manager.CreateLoan(ctx, isbn, 7, 1, time.Time{})
	require.ErrorIs(t, err, library.ErrNoAvailableCopy)

	// act
	returned, err := manager.ReturnLoan(ctx, open.LoanID, time.Time{})

	// assert
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, fixtures.FixedClock.Equal(*returned.ReturnDate))

	stored, err := manager.GetLoan(ctx, open.LoanID)
	require.NoError(t, err)
	assert.False(t, stored.IsOpen())

	copyID, err := store.FindAvailableCopy(ctx, isbn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), copyID)

	loan, err := manager.CreateLoan(ctx, isbn, 7, 1, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), loan.CopyID)
}

func Test_LoanManager_ReturnLoan_UnknownLoan(t *testing.T) {
	store := fixtures.NewSQLiteStore(t)
	manager := newLoanManager(t, store)

	_, err := manager.ReturnLoan(context.Background(), 4711, time.Time{})

	assert.ErrorIs(t, err, library.ErrNotFound)
}

func Test_LoanManager_ReturnLoan_AlreadyReturned(t *testing.T) {
	testCases := []struct {
		description string
		policy      library.ReturnPolicy
		expectedErr error
	}{
		{description: "rejected by default", policy: library.RejectReReturn, expectedErr: library.ErrLoanAlreadyReturned},
		{description: "ignored when configured", policy: library.IgnoreReReturn},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			ctx := context.Background()
			store := fixtures.NewSQLiteStore(t)
			givenLibrary(t, store, []int64{1}, 5)
			open := fixtures.GivenOpenLoan(t, store, isbn, 1, 5, 1)
			manager := newLoanManager(t, store, circulation.WithReturnPolicy(tc.policy))

			first, err := manager.ReturnLoan(ctx, open.LoanID, time.Time{})
			require.NoError(t, err)

			// act
			second, err := manager.ReturnLoan(ctx, open.LoanID, fixtures.FixedClock.Add(24*time.Hour))

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				require.NotNil(t, second.ReturnDate)
				assert.True(t, first.ReturnDate.Equal(*second.ReturnDate), "loan must be returned unchanged")
			}

			stored, getErr := manager.GetLoan(ctx, open.LoanID)
			require.NoError(t, getErr)
			require.NotNil(t, stored.ReturnDate)
			assert.True(t, first.ReturnDate.Equal(*stored.ReturnDate), "the first return date must be kept")
		})
	}
}

func Test_LoanManager_ReturnLoan_BeforeLoanDate(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 5)
	open := fixtures.GivenOpenLoan(t, store, isbn, 1, 5, 1)
	manager := newLoanManager(t, store)

	// act
	_, err := manager.ReturnLoan(ctx, open.LoanID, open.LoanDate.Add(-24*time.Hour))

	// assert
	assert.ErrorIs(t, err, library.ErrValidation)

	stored, getErr := manager.GetLoan(ctx, open.LoanID)
	require.NoError(t, getErr)
	assert.True(t, stored.IsOpen())
}

func Test_LoanManager_ReturnLoan_DateOnlyOnTheLoanDay(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 5)
	manager := newLoanManager(t, store)

	loan, err := manager.CreateLoan(ctx, isbn, 5, 1, time.Time{})
	require.NoError(t, err)

	// act
	returned, err := manager.ReturnLoan(ctx, loan.LoanID, fixtures.FixedClock.Truncate(24*time.Hour))

	// assert
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, loan.LoanDate.Equal(*returned.ReturnDate))

	stored, getErr := manager.GetLoan(ctx, loan.LoanID)
	require.NoError(t, getErr)
	require.NotNil(t, stored.ReturnDate)
	assert.True(t, loan.LoanDate.Equal(*stored.ReturnDate))
}

func Test_LoanManager_PassThroughs(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1, 2}, 5)
	manager := newLoanManager(t, store)

	loan, err := manager.CreateLoan(ctx, isbn, 5, 1, time.Time{})
	require.NoError(t, err)

	// act
	loan.LoanDate = fixtures.FixedClock.Add(-time.Hour)
	updated, updateErr := manager.UpdateLoan(ctx, loan)
	deleted, deleteErr := manager.DeleteLoan(ctx, loan.LoanID)
	deletedAgain, deleteAgainErr := manager.DeleteLoan(ctx, loan.LoanID)
	_, getErr := manager.GetLoan(ctx, loan.LoanID)

	// assert
	require.NoError(t, updateErr)
	assert.True(t, loan.LoanDate.Equal(updated.LoanDate))
	require.NoError(t, deleteErr)
	assert.Equal(t, int64(1), deleted)
	require.NoError(t, deleteAgainErr)
	assert.Equal(t, int64(0), deletedAgain)
	assert.ErrorIs(t, getErr, library.ErrNotFound)
}

func Test_LoanManager_CreateLoan_ConcurrentRequestsNeverShareACopy(t *testing.T) {
	// arrange
	const copies = 3
	const requests = 8

	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	memberIDs := make([]int64, 0, requests)
	for i := int64(1); i <= requests; i++ {
		memberIDs = append(memberIDs, i)
	}
	givenLibrary(t, store, []int64{1, 2, 3}, memberIDs...)
	manager := newLoanManager(t, store)

	var wg sync.WaitGroup
	results := make([]error, requests)
	copyIDs := make([]int64, requests)

	// act
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loan, err := manager.CreateLoan(ctx, isbn, memberIDs[i], 1, time.Time{})
			results[i] = err
			copyIDs[i] = loan.CopyID
		}(i)
	}
	wg.Wait()

	// assert
	succeeded := 0
	lent := make(map[int64]bool)
	for i, err := range results {
		if err == nil {
			succeeded++
			assert.False(t, lent[copyIDs[i]], "copy %d lent twice", copyIDs[i])
			lent[copyIDs[i]] = true
			continue
		}

		assert.ErrorIs(t, err, library.ErrNoAvailableCopy)
	}

	assert.Equal(t, copies, succeeded)

	open, err := store.Loans().ListOpenByMember(ctx, memberIDs[0])
	require.NoError(t, err)
	assert.LessOrEqual(t, len(open), 1)
}

func Test_LoanManager_Instrumentation(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 5)
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewLoggerSpy()
	manager := newLoanManager(t, store,
		circulation.WithMetrics(metrics),
		circulation.WithTracing(tracing),
		circulation.WithContextualLogger(logger),
	)

	// act
	_, okErr := manager.CreateLoan(ctx, isbn, 5, 1, time.Time{})
	_, rejectedErr := manager.CreateLoan(ctx, isbn, 5, 1, time.Time{})

	// assert
	require.NoError(t, okErr)
	require.ErrorIs(t, rejectedErr, library.ErrNoAvailableCopy)

	assert.True(t, metrics.HasCounter(shell.CommandCallsMetric, shell.BuildCommandLabels("LendBookCopy", shell.StatusSuccess)))
	assert.True(t, metrics.HasCounter(shell.CommandRejectedMetric, shell.BuildCommandLabels("LendBookCopy", shell.StatusRejected)))
	assert.True(t, metrics.HasDuration(shell.CommandDurationMetric, map[string]string{shell.LogAttrCommandType: "LendBookCopy"}))
	assert.Equal(t, 2, tracing.CountSpans(shell.SpanNameCommandHandle))
	assert.Zero(t, tracing.OpenSpanCount())
	assert.True(t, logger.HasLogWithAttr(shell.LogMsgCommandCompleted, shell.LogAttrBusinessOutcome))
	assert.True(t, logger.HasLog(slog.LevelInfo, shell.LogMsgCommandRejected))
}
