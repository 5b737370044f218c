package fixtures

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
	"github.com/DevinCastillo5/Library-App/shell/config"
)

const arrangeFailed = "error in arranging test data"

// FixedClock is the point in time tests use as "now".
var FixedClock = time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)

// NewSQLiteStore creates a Store over a fresh SQLite file in t.TempDir() with the schema applied.
// The database is closed when the test ends.
func NewSQLiteStore(t testing.TB, options ...sqlengine.Option) *sqlengine.Store {
	t.Helper()

	ctx := context.Background()

	db, err := config.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err, arrangeFailed)

	t.Cleanup(func() { _ = db.Close() })

	store, err := sqlengine.NewStoreFromSQLite(db, options...)
	require.NoError(t, err, arrangeFailed)

	require.NoError(t, store.CreateSchema(ctx), arrangeFailed)

	return store
}

// GivenBook creates a book with the given ISBN.
func GivenBook(t testing.TB, store *sqlengine.Store, isbn string) library.Book {
	t.Helper()

	book, err := store.Books().Create(context.Background(), library.Book{
		ISBN:        isbn,
		Title:       "Learning Domain-Driven Design",
		Categories:  "Software",
		PublishYear: 2021,
		PublishName: "O'Reilly Media, Inc.",
	})
	require.NoError(t, err, arrangeFailed)

	return book
}

// GivenCopies creates one copy of the book per copyID.
func GivenCopies(t testing.TB, store *sqlengine.Store, isbn string, copyIDs ...int64) []library.Copy {
	t.Helper()

	copies := make([]library.Copy, 0, len(copyIDs))

	for _, copyID := range copyIDs {
		created, err := store.Copies().Create(context.Background(), library.Copy{
			CopyID:        copyID,
			ISBN:          isbn,
			ShelfLocation: "A-" + strconv.FormatInt(copyID, 10),
			ConditionDesc: "good",
		})
		require.NoError(t, err, arrangeFailed)

		copies = append(copies, created)
	}

	return copies
}

// GivenMember creates a member with the given id.
func GivenMember(t testing.TB, store *sqlengine.Store, memberID int64) library.Member {
	t.Helper()

	member, err := store.Members().Create(context.Background(), library.Member{
		MemberID:   memberID,
		MemberName: "Member " + strconv.FormatInt(memberID, 10),
		Email:      "member" + strconv.FormatInt(memberID, 10) + "@example.org",
	})
	require.NoError(t, err, arrangeFailed)

	return member
}

// GivenStaff creates a staff record with the given id.
func GivenStaff(t testing.TB, store *sqlengine.Store, staffID int64) library.Staff {
	t.Helper()

	staff, err := store.Staff().Create(context.Background(), library.Staff{
		StaffID:   staffID,
		StaffName: "Staff " + strconv.FormatInt(staffID, 10),
		Role:      "librarian",
		Salary:    3200,
	})
	require.NoError(t, err, arrangeFailed)

	return staff
}

// GivenOpenLoan puts copyID on loan, bypassing the availability resolver.
func GivenOpenLoan(t testing.TB, store *sqlengine.Store, isbn string, copyID int64, memberID int64, staffID int64) library.Loan {
	t.Helper()

	loan, err := store.Loans().Create(context.Background(), library.Loan{
		ISBN:     isbn,
		MemberID: memberID,
		StaffID:  staffID,
		CopyID:   copyID,
		LoanDate: FixedClock.Add(-72 * time.Hour),
	})
	require.NoError(t, err, arrangeFailed)

	return loan
}
