package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevinCastillo5/Library-App/circulation"
	"github.com/DevinCastillo5/Library-App/httpapi"
	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
	"github.com/DevinCastillo5/Library-App/shell"
	"github.com/DevinCastillo5/Library-App/testutil/fixtures"
)

const isbn = "9780000000001"

func newRouter(t *testing.T, store *sqlengine.Store, options ...httpapi.Option) http.Handler {
	t.Helper()

	managerOptions := []circulation.Option{
		circulation.WithClock(func() time.Time { return fixtures.FixedClock }),
		circulation.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)),
	}

	loans, err := circulation.NewLoanManager(store, store.Loans(), managerOptions...)
	require.NoError(t, err)

	reservations, err := circulation.NewReservationManager(store, store.Reservations(), managerOptions...)
	require.NoError(t, err)

	router, err := httpapi.NewRouter(httpapi.NewDependencies(store, loans, reservations), options...)
	require.NoError(t, err)

	return router
}

func do(t *testing.T, router http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var target T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target), rec.Body.String())

	return target
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	return decode[map[string]string](t, rec)["detail"]
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

func Test_NewRouter_MissingDependency(t *testing.T) {
	_, err := httpapi.NewRouter(httpapi.Dependencies{})

	assert.ErrorIs(t, err, httpapi.ErrMissingDependency)
}

func Test_NewRouter_InvalidRateLimit(t *testing.T) {
	store := fixtures.NewSQLiteStore(t)

	loans, err := circulation.NewLoanManager(store, store.Loans())
	require.NoError(t, err)
	reservations, err := circulation.NewReservationManager(store, store.Reservations())
	require.NoError(t, err)

	_, err = httpapi.NewRouter(httpapi.NewDependencies(store, loans, reservations), httpapi.WithRateLimit(-1, 1))

	assert.ErrorIs(t, err, httpapi.ErrInvalidRateLimit)
}

func Test_Router_Health(t *testing.T) {
	router := newRouter(t, fixtures.NewSQLiteStore(t))

	rec := do(t, router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func Test_Router_RequestID(t *testing.T) {
	router := newRouter(t, fixtures.NewSQLiteStore(t))

	t.Run("assigns a new id", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/healthz", nil)

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("echoes the incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-42")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	})
}

func Test_Router_RateLimit(t *testing.T) {
	// arrange
	router := newRouter(t, fixtures.NewSQLiteStore(t), httpapi.WithRateLimit(0.001, 2))

	// act
	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, do(t, router, http.MethodGet, "/healthz", nil).Code)
	}

	// assert
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func Test_Router_UnknownRoute(t *testing.T) {
	router := newRouter(t, fixtures.NewSQLiteStore(t))

	rec := do(t, router, http.MethodGet, "/api/unknown/", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func Test_Router_Health_Unavailable(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	loans, err := circulation.NewLoanManager(store, store.Loans())
	require.NoError(t, err)
	reservations, err := circulation.NewReservationManager(store, store.Reservations())
	require.NoError(t, err)

	deps := httpapi.NewDependencies(store, loans, reservations)
	deps.Health = failingPinger{}

	router, err := httpapi.NewRouter(deps)
	require.NoError(t, err)

	// act
	rec := do(t, router, http.MethodGet, "/healthz", nil)

	// assert
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type panickingLoans struct {
	httpapi.LoanService
}

func (panickingLoans) GetLoan(context.Context, int64) (library.Loan, error) {
	panic("boom")
}

func Test_Router_RecoversPanics(t *testing.T) {
	// arrange
	store := fixtures.NewSQLiteStore(t)
	loans, err := circulation.NewLoanManager(store, store.Loans())
	require.NoError(t, err)
	reservations, err := circulation.NewReservationManager(store, store.Reservations())
	require.NoError(t, err)

	deps := httpapi.NewDependencies(store, loans, reservations)
	deps.Loans = panickingLoans{LoanService: loans}

	router, err := httpapi.NewRouter(deps)
	require.NoError(t, err)

	// act
	rec := do(t, router, http.MethodGet, "/api/loans/1", nil)

	// assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", detailOf(t, rec))
}
