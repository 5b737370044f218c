package httpapi_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/testutil/fixtures"
)

func Test_Router_Authors_CRUD(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	router := newRouter(t, store)
	author := library.Author{AuthorName: "Ursula K. Le Guin", Nationality: "US"}
	authorPath := "/api/authors/" + url.PathEscape(author.AuthorName)

	t.Run("create", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/authors/", author)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, author.AuthorName, decode[library.Author](t, rec).AuthorName)
	})

	t.Run("create duplicate", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/authors/", author)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, detailOf(t, rec), library.ErrAlreadyExists.Error())
	})

	t.Run("get by escaped name", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, authorPath, nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "US", decode[library.Author](t, rec).Nationality)
	})

	t.Run("update", func(t *testing.T) {
		changed := author
		changed.Nationality = "American"

		rec := do(t, router, http.MethodPut, "/api/authors/", changed)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "American", decode[library.Author](t, rec).Nationality)
	})

	t.Run("list", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/authors/", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]library.Author](t, rec), 1)
	})

	t.Run("delete", func(t *testing.T) {
		deleted := do(t, router, http.MethodDelete, authorPath, nil)
		missing := do(t, router, http.MethodDelete, authorPath, nil)

		require.Equal(t, http.StatusOK, deleted.Code)
		assert.Equal(t, float64(1), decode[map[string]any](t, deleted)["deleted"])
		assert.Equal(t, http.StatusNotFound, missing.Code)
	})
}

func Test_Router_Authors_DateOnlyDOB(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	router := newRouter(t, store)

	// act
	created := do(t, router, http.MethodPost, "/api/authors/", map[string]any{"AuthorName": "Octavia E. Butler", "DOB": "1947-06-22"})
	updated := do(t, router, http.MethodPut, "/api/authors/", map[string]any{"AuthorName": "Octavia E. Butler", "DOB": nil, "Nationality": "US"})

	// assert
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	dob := decode[library.Author](t, created).DOB
	require.NotNil(t, dob)
	assert.True(t, time.Date(1947, time.June, 22, 0, 0, 0, 0, time.UTC).Equal(*dob))

	require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	assert.Nil(t, decode[library.Author](t, updated).DOB)
}

func Test_Router_EmptyListIsArray(t *testing.T) {
	router := newRouter(t, fixtures.NewSQLiteStore(t))

	for _, path := range []string{"/api/books/", "/api/copies/", "/api/members/", "/api/staff/", "/api/publishers/", "/api/fines/", "/api/book-authors/"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, path, nil)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, "[]", rec.Body.String())
		})
	}
}

func Test_Router_Entities_Errors(t *testing.T) {
	testCases := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
	}{
		{name: "get unknown book", method: http.MethodGet, path: "/api/books/9780000000099", expectedStatus: http.StatusNotFound},
		{name: "get non-numeric member", method: http.MethodGet, path: "/api/members/abc", expectedStatus: http.StatusBadRequest},
		{name: "update unknown member", method: http.MethodPut, path: "/api/members/", body: library.Member{MemberID: 404, MemberName: "Nobody"}, expectedStatus: http.StatusNotFound},
		{name: "copy of unknown book", method: http.MethodPost, path: "/api/copies/", body: library.Copy{ISBN: "9780000000099", ShelfLocation: "A-1"}, expectedStatus: http.StatusBadRequest},
		{name: "book without title", method: http.MethodPost, path: "/api/books/", body: library.Book{ISBN: isbn}, expectedStatus: http.StatusBadRequest},
		{name: "empty body", method: http.MethodPost, path: "/api/staff/", expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			router := newRouter(t, fixtures.NewSQLiteStore(t))

			// act
			rec := do(t, router, tc.method, tc.path, tc.body)

			// assert
			assert.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, detailOf(t, rec))
		})
	}
}

func Test_Router_Copies_GeneratedKeyAndBulkDelete(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, isbn)
	router := newRouter(t, store)

	ids := make([]int64, 0, 2)
	for range 2 {
		rec := do(t, router, http.MethodPost, "/api/copies/", library.Copy{ISBN: isbn, ShelfLocation: "B-2"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decode[library.Copy](t, rec).CopyID)
	}

	// act
	deleted := do(t, router, http.MethodPost, "/api/copies/bulk-delete", map[string]any{"keys": append(ids, 404)})
	none := do(t, router, http.MethodPost, "/api/copies/bulk-delete", map[string]any{"keys": ids})

	// assert
	assert.NotEqual(t, ids[0], ids[1])
	require.Equal(t, http.StatusOK, deleted.Code, deleted.Body.String())
	assert.Equal(t, float64(2), decode[map[string]any](t, deleted)["deleted"])
	require.Equal(t, http.StatusOK, none.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, none)["deleted"])
}

func Test_Router_FinesByLoan(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	givenLibrary(t, store, []int64{1}, 7)
	loan := fixtures.GivenOpenLoan(t, store, isbn, 1, 7, 1)
	router := newRouter(t, store)

	created := do(t, router, http.MethodPost, "/api/fines/", library.Fine{LoanID: loan.LoanID, AmountFined: 2.5, DaysOverdue: 5})
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	// act
	rec := do(t, router, http.MethodGet, "/api/fines/loan/1", nil)
	empty := do(t, router, http.MethodGet, "/api/fines/loan/2", nil)

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	fines := decode[[]library.Fine](t, rec)
	require.Len(t, fines, 1)
	assert.InDelta(t, 2.5, fines[0].AmountFined, 0.001)
	assert.JSONEq(t, "[]", empty.Body.String())
}

func Test_Router_BookAuthors(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	fixtures.GivenBook(t, store, isbn)
	fixtures.GivenBook(t, store, "9780000000002")
	router := newRouter(t, store)

	for _, name := range []string{"Vlad Khononov", "Eric Evans"} {
		rec := do(t, router, http.MethodPost, "/api/authors/", library.Author{AuthorName: name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	links := []library.BookAuthor{
		{ISBN: isbn, AuthorName: "Vlad Khononov"},
		{ISBN: isbn, AuthorName: "Eric Evans"},
		{ISBN: "9780000000002", AuthorName: "Eric Evans"},
	}
	for _, link := range links {
		rec := do(t, router, http.MethodPost, "/api/book-authors/", link)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	t.Run("link to unknown author", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/book-authors/", library.BookAuthor{ISBN: isbn, AuthorName: "Nobody"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("by book", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/book-authors/book/"+isbn, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]library.BookAuthor](t, rec), 2)
	})

	t.Run("by author", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/book-authors/author/"+url.PathEscape("Eric Evans"), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]library.BookAuthor](t, rec), 2)
	})

	t.Run("delete one link", func(t *testing.T) {
		path := "/api/book-authors/9780000000002/" + url.PathEscape("Eric Evans")

		deleted := do(t, router, http.MethodDelete, path, nil)
		missing := do(t, router, http.MethodDelete, path, nil)

		require.Equal(t, http.StatusOK, deleted.Code)
		assert.Equal(t, float64(1), decode[map[string]any](t, deleted)["deleted"])
		assert.Equal(t, http.StatusNotFound, missing.Code)
	})

	t.Run("delete all of a book", func(t *testing.T) {
		rec := do(t, router, http.MethodDelete, "/api/book-authors/book/"+isbn, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(2), decode[map[string]any](t, rec)["deleted"])
	})

	t.Run("delete all of an author without links", func(t *testing.T) {
		rec := do(t, router, http.MethodDelete, "/api/book-authors/author/"+url.PathEscape("Eric Evans"), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decode[map[string]any](t, rec)["deleted"])
	})
}
