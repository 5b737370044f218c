package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/DevinCastillo5/Library-App/circulation"
	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/library/sqlengine"
)

var (
	// ErrMissingDependency is returned when NewRouter is given incomplete Dependencies.
	ErrMissingDependency = errors.New("missing http dependency")

	// ErrInvalidRateLimit is returned for a negative rate or burst.
	ErrInvalidRateLimit = errors.New("rate limit must not be negative")
)

// LoanService is the loan lifecycle the facade drives.
type LoanService interface {
	CreateLoan(ctx context.Context, isbn string, memberID int64, staffID int64, loanDate time.Time) (library.Loan, error)
	ReturnLoan(ctx context.Context, loanID int64, returnDate time.Time) (library.Loan, error)
	GetLoan(ctx context.Context, loanID int64) (library.Loan, error)
	ListLoans(ctx context.Context, page library.Page) ([]library.Loan, error)
	UpdateLoan(ctx context.Context, loan library.Loan) (library.Loan, error)
	DeleteLoan(ctx context.Context, loanID int64) (int64, error)
}

// ReservationService is the reservation lifecycle the facade drives.
type ReservationService interface {
	CreateReservation(ctx context.Context, isbn string, memberID int64, reserveDate time.Time) (library.Reservation, error)
	CancelReservation(ctx context.Context, reservationID int64) (int64, error)
	CancelReservationsForMember(ctx context.Context, memberID int64) (int64, error)
	GetReservation(ctx context.Context, reservationID int64) (library.Reservation, error)
	ListReservations(ctx context.Context, page library.Page) ([]library.Reservation, error)
	UpdateReservation(ctx context.Context, reservation library.Reservation) (library.Reservation, error)
}

// BookAuthorStore manages book-author links.
type BookAuthorStore interface {
	library.EntityStore[library.BookAuthor, library.BookAuthorKey]
	ListByBook(ctx context.Context, isbn string) ([]library.BookAuthor, error)
	ListByAuthor(ctx context.Context, authorName string) ([]library.BookAuthor, error)
	DeleteAllForBook(ctx context.Context, isbn string) (int64, error)
	DeleteAllForAuthor(ctx context.Context, authorName string) (int64, error)
}

// FineStore manages fines.
type FineStore interface {
	library.EntityStore[library.Fine, int64]
	ListByLoan(ctx context.Context, loanID int64) ([]library.Fine, error)
}

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators behind the routes.
type Dependencies struct {
	Authors      library.EntityStore[library.Author, string]
	Publishers   library.EntityStore[library.Publisher, string]
	Books        library.EntityStore[library.Book, string]
	Copies       library.EntityStore[library.Copy, int64]
	Members      library.EntityStore[library.Member, int64]
	Staff        library.EntityStore[library.Staff, int64]
	Fines        FineStore
	BookAuthors  BookAuthorStore
	Loans        LoanService
	Reservations ReservationService
	Health       Pinger
}

// NewDependencies wires the entity tables of store and the two managers.
func NewDependencies(store *sqlengine.Store, loans *circulation.LoanManager, reservations *circulation.ReservationManager) Dependencies {
	return Dependencies{
		Authors:      store.Authors(),
		Publishers:   store.Publishers(),
		Books:        store.Books(),
		Copies:       store.Copies(),
		Members:      store.Members(),
		Staff:        store.Staff(),
		Fines:        store.Fines(),
		BookAuthors:  store.BookAuthors(),
		Loans:        loans,
		Reservations: reservations,
		Health:       store,
	}
}

func (d Dependencies) validate() error {
	switch {
	case d.Authors == nil, d.Publishers == nil, d.Books == nil, d.Copies == nil, d.Members == nil, d.Staff == nil:
		return ErrMissingDependency
	case d.Fines == nil, d.BookAuthors == nil, d.Loans == nil, d.Reservations == nil, d.Health == nil:
		return ErrMissingDependency
	default:
		return nil
	}
}

// Option configures the router.
type Option func(*api) error

// WithLogger sets the request and error logger. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(a *api) error {
		if logger != nil {
			a.logger = logger
		}

		return nil
	}
}

// WithDefaultStaffID sets the staff id used for loans created without one. Zero means none.
func WithDefaultStaffID(staffID int64) Option {
	return func(a *api) error {
		a.defaultStaffID = staffID
		return nil
	}
}

// WithRateLimit limits all requests to rps per second with the given burst. A zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(a *api) error {
		if rps < 0 || burst < 0 {
			return ErrInvalidRateLimit
		}

		if rps == 0 {
			a.limiter = nil
			return nil
		}

		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)

		return nil
	}
}

type api struct {
	deps           Dependencies
	logger         *slog.Logger
	limiter        *rate.Limiter
	defaultStaffID int64
}

// NewRouter builds the chi router serving the whole API.
func NewRouter(deps Dependencies, options ...Option) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	a := &api{deps: deps, logger: discardLogger()}
	for _, option := range options {
		if err := option(a); err != nil {
			return nil, err
		}
	}

	r := chi.NewRouter()
	r.Use(requestID, requestLogger(a.logger), recoverer(a.logger))
	if a.limiter != nil {
		r.Use(rateLimit(a.limiter))
	}

	r.Get("/healthz", a.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/authors", entityResource[library.Author, string]{api: a, store: deps.Authors, parseKey: parseStringKey, bind: bindAuthor}.routes)
		r.Route("/publishers", entityResource[library.Publisher, string]{api: a, store: deps.Publishers, parseKey: parseStringKey}.routes)
		r.Route("/books", entityResource[library.Book, string]{api: a, store: deps.Books, parseKey: parseStringKey}.routes)
		r.Route("/copies", entityResource[library.Copy, int64]{api: a, store: deps.Copies, parseKey: parseIDKey}.routes)
		r.Route("/members", entityResource[library.Member, int64]{api: a, store: deps.Members, parseKey: parseIDKey}.routes)
		r.Route("/staff", entityResource[library.Staff, int64]{api: a, store: deps.Staff, parseKey: parseIDKey}.routes)
		r.Route("/fines", func(r chi.Router) {
			r.Get("/loan/{loanId}", a.listFinesByLoan)
			entityResource[library.Fine, int64]{api: a, store: deps.Fines, parseKey: parseIDKey}.routes(r)
		})
		r.Route("/book-authors", a.bookAuthorRoutes)
		r.Route("/loans", a.loanRoutes)
		r.Route("/reservations", a.reservationRoutes)
	})

	return r, nil
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Health.Ping(r.Context()); err != nil {
		a.logger.WarnContext(r.Context(), "health check failed", logAttrError, err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
