package sqlengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/testutil/fixtures"
)

const testISBN = "9780000000001"

func Test_Table_Author_CRUD(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	dob := time.Date(1903, time.June, 25, 0, 0, 0, 0, time.UTC)
	author := library.Author{AuthorName: "George Orwell", DOB: &dob, Nationality: "British"}

	// act
	created, createErr := store.Authors().Create(ctx, author)
	_, duplicateErr := store.Authors().Create(ctx, author)
	fetched, getErr := store.Authors().Get(ctx, author.AuthorName)

	author.Nationality = "English"
	updated, updateErr := store.Authors().Update(ctx, author)
	_, missingUpdateErr := store.Authors().Update(ctx, library.Author{AuthorName: "Nobody"})

	deleted, deleteErr := store.Authors().Delete(ctx, author.AuthorName)
	deletedAgain, deleteAgainErr := store.Authors().Delete(ctx, author.AuthorName)

	// assert
	require.NoError(t, createErr)
	assert.Equal(t, author.AuthorName, created.AuthorName)
	assert.ErrorIs(t, duplicateErr, library.ErrAlreadyExists)

	require.NoError(t, getErr)
	require.NotNil(t, fetched.DOB)
	assert.True(t, dob.Equal(*fetched.DOB))
	assert.Equal(t, "British", fetched.Nationality)

	require.NoError(t, updateErr)
	assert.Equal(t, "English", updated.Nationality)
	assert.ErrorIs(t, missingUpdateErr, library.ErrNotFound)

	require.NoError(t, deleteErr)
	assert.Equal(t, int64(1), deleted)
	require.NoError(t, deleteAgainErr)
	assert.Equal(t, int64(0), deletedAgain)
}

func Test_Table_Member_GeneratedAndClientKeys(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)

	// act
	explicit, explicitErr := store.Members().Create(ctx, library.Member{MemberID: 40, MemberName: "Ada"})
	generated, generatedErr := store.Members().Create(ctx, library.Member{MemberName: "Grace"})
	_, duplicateErr := store.Members().Create(ctx, library.Member{MemberID: 40, MemberName: "Ada again"})

	// assert
	require.NoError(t, explicitErr)
	assert.Equal(t, int64(40), explicit.MemberID)
	require.NoError(t, generatedErr)
	assert.Greater(t, generated.MemberID, int64(40))
	assert.ErrorIs(t, duplicateErr, library.ErrAlreadyExists)

	fetched, err := store.Members().Get(ctx, generated.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", fetched.MemberName)
}

func Test_Table_List_PagesInKeyOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	for _, id := range []int64{5, 3, 9, 1, 7} {
		fixtures.GivenMember(t, store, id)
	}

	testCases := []struct {
		description string
		skip        uint
		limit       uint
		expectedIDs []int64
	}{
		{description: "first page", skip: 0, limit: 2, expectedIDs: []int64{1, 3}},
		{description: "second page", skip: 2, limit: 2, expectedIDs: []int64{5, 7}},
		{description: "last page is short", skip: 4, limit: 2, expectedIDs: []int64{9}},
		{description: "beyond the end is empty", skip: 10, limit: 2, expectedIDs: []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			members, err := store.Members().List(ctx, library.Page{Skip: tc.skip, Limit: tc.limit})

			// assert
			require.NoError(t, err)
			require.NotNil(t, members)

			ids := make([]int64, 0, len(members))
			for _, member := range members {
				ids = append(ids, member.MemberID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}
}

func Test_Table_Create_ForeignKeyViolation(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)

	// act
	_, copyErr := store.Copies().Create(ctx, library.Copy{CopyID: 1, ISBN: testISBN})
	_, fineErr := store.Fines().Create(ctx, library.Fine{LoanID: 99, AmountFined: 2.5, DaysOverdue: 5})
	_, linkErr := store.BookAuthors().Create(ctx, library.BookAuthor{ISBN: testISBN, AuthorName: "Nobody"})

	// assert
	assert.ErrorIs(t, copyErr, library.ErrForeignKeyViolation)
	assert.ErrorIs(t, fineErr, library.ErrForeignKeyViolation)
	assert.ErrorIs(t, linkErr, library.ErrForeignKeyViolation)
}

func Test_Table_Create_Validation(t *testing.T) {
	store := fixtures.NewSQLiteStore(t)

	_, err := store.Books().Create(context.Background(), library.Book{ISBN: "123", Title: "Too short"})

	assert.ErrorIs(t, err, library.ErrValidation)
}

func Test_Table_Loan_CopyMustBelongToBook(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, testISBN)
	fixtures.GivenBook(t, store, "9780000000002")
	fixtures.GivenCopies(t, store, "9780000000002", 1)
	fixtures.GivenMember(t, store, 7)
	fixtures.GivenStaff(t, store, 1)

	// act
	_, err := store.Loans().Create(ctx, library.Loan{
		ISBN: testISBN, MemberID: 7, StaffID: 1, CopyID: 1, LoanDate: fixtures.FixedClock,
	})

	// assert
	assert.ErrorIs(t, err, library.ErrForeignKeyViolation)
}

func Test_Table_Loan_SecondOpenLoanOfACopyIsAConflict(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, testISBN)
	fixtures.GivenCopies(t, store, testISBN, 1)
	fixtures.GivenMember(t, store, 7)
	fixtures.GivenStaff(t, store, 1)
	fixtures.GivenOpenLoan(t, store, testISBN, 1, 7, 1)

	// act
	_, err := store.Loans().Create(ctx, library.Loan{
		ISBN: testISBN, MemberID: 7, StaffID: 1, CopyID: 1, LoanDate: fixtures.FixedClock,
	})

	// assert
	assert.ErrorIs(t, err, library.ErrConcurrencyConflict)
}

func Test_Table_DeleteMany(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenMember(t, store, 1)
	fixtures.GivenMember(t, store, 2)
	fixtures.GivenMember(t, store, 3)

	// act
	none, noneErr := store.Members().DeleteMany(ctx, nil)
	deleted, deleteErr := store.Members().DeleteMany(ctx, []int64{1, 3, 404})

	// assert
	require.NoError(t, noneErr)
	assert.Equal(t, int64(0), none)
	require.NoError(t, deleteErr)
	assert.Equal(t, int64(2), deleted)

	remaining, err := store.Members().List(ctx, library.DefaultPage())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(2), remaining[0].MemberID)
}

func Test_BookAuthorTable(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, testISBN)
	fixtures.GivenBook(t, store, "9780000000002")
	for _, name := range []string{"Ann", "Bob"} {
		_, err := store.Authors().Create(ctx, library.Author{AuthorName: name})
		require.NoError(t, err)
	}

	links := []library.BookAuthor{
		{ISBN: testISBN, AuthorName: "Ann"},
		{ISBN: testISBN, AuthorName: "Bob"},
		{ISBN: "9780000000002", AuthorName: "Ann"},
	}
	for _, link := range links {
		_, err := store.BookAuthors().Create(ctx, link)
		require.NoError(t, err)
	}

	// act
	byBook, byBookErr := store.BookAuthors().ListByBook(ctx, testISBN)
	byAuthor, byAuthorErr := store.BookAuthors().ListByAuthor(ctx, "Ann")
	existing, updateErr := store.BookAuthors().Update(ctx, links[0])
	_, missingErr := store.BookAuthors().Update(ctx, library.BookAuthor{ISBN: "9780000000002", AuthorName: "Bob"})
	deletedOne, deleteOneErr := store.BookAuthors().Delete(ctx, links[1].Key())
	deletedForAuthor, deleteForAuthorErr := store.BookAuthors().DeleteAllForAuthor(ctx, "Ann")
	deletedForBook, deleteForBookErr := store.BookAuthors().DeleteAllForBook(ctx, testISBN)

	// assert
	require.NoError(t, byBookErr)
	assert.Equal(t, links[:2], byBook)
	require.NoError(t, byAuthorErr)
	assert.Len(t, byAuthor, 2)
	require.NoError(t, updateErr)
	assert.Equal(t, links[0], existing)
	assert.ErrorIs(t, missingErr, library.ErrNotFound)
	require.NoError(t, deleteOneErr)
	assert.Equal(t, int64(1), deletedOne)
	require.NoError(t, deleteForAuthorErr)
	assert.Equal(t, int64(2), deletedForAuthor)
	require.NoError(t, deleteForBookErr)
	assert.Equal(t, int64(0), deletedForBook)
}

func Test_BookAuthorTable_DeleteMany(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, testISBN)
	for _, name := range []string{"Ann", "Bob", "Cid"} {
		_, err := store.Authors().Create(ctx, library.Author{AuthorName: name})
		require.NoError(t, err)
		_, err = store.BookAuthors().Create(ctx, library.BookAuthor{ISBN: testISBN, AuthorName: name})
		require.NoError(t, err)
	}

	// act
	deleted, err := store.BookAuthors().DeleteMany(ctx, []library.BookAuthorKey{
		{ISBN: testISBN, AuthorName: "Ann"},
		{ISBN: testISBN, AuthorName: "Cid"},
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	remaining, listErr := store.BookAuthors().ListByBook(ctx, testISBN)
	require.NoError(t, listErr)
	assert.Equal(t, []library.BookAuthor{{ISBN: testISBN, AuthorName: "Bob"}}, remaining)
}

func Test_FineTable_ListByLoan(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, testISBN)
	fixtures.GivenCopies(t, store, testISBN, 1, 2)
	fixtures.GivenMember(t, store, 7)
	fixtures.GivenStaff(t, store, 1)
	first := fixtures.GivenOpenLoan(t, store, testISBN, 1, 7, 1)
	second := fixtures.GivenOpenLoan(t, store, testISBN, 2, 7, 1)

	for _, fine := range []library.Fine{
		{LoanID: first.LoanID, AmountFined: 1.5, DaysOverdue: 3},
		{LoanID: first.LoanID, AmountFined: 0.5, DaysOverdue: 1},
		{LoanID: second.LoanID, AmountFined: 4, DaysOverdue: 8},
	} {
		_, err := store.Fines().Create(ctx, fine)
		require.NoError(t, err)
	}

	// act
	fines, err := store.Fines().ListByLoan(ctx, first.LoanID)
	none, noneErr := store.Fines().ListByLoan(ctx, 404)

	// assert
	require.NoError(t, err)
	require.Len(t, fines, 2)
	assert.InDelta(t, 1.5, fines[0].AmountFined, 0.001)
	assert.Equal(t, 1, fines[1].DaysOverdue)
	require.NoError(t, noneErr)
	assert.Empty(t, none)

	open, err := store.Loans().ListOpenByMember(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}
