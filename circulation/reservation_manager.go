package circulation

import (
	"context"
	"time"

	"github.com/DevinCastillo5/Library-App/library"
	"github.com/DevinCastillo5/Library-App/shell"
)

const outcomeReservationCreated = "reservation_created"

// ReservationManager creates reservations against copies that are on loan.
// Returning a loan does not turn a reservation into a loan.
type ReservationManager struct {
	reservations ReservationStore
	reserve      shell.CommandHandler[ReserveCommand, library.Reservation]
	settings     settings
}

// NewReservationManager creates a ReservationManager.
func NewReservationManager(txRunner TxRunner, reservations ReservationStore, options ...Option) (*ReservationManager, error) {
	if txRunner == nil {
		return nil, ErrNilTxRunner
	}

	if reservations == nil {
		return nil, ErrNilEntityStore
	}

	s, err := buildSettings(options)
	if err != nil {
		return nil, err
	}

	reserve, err := wrap[ReserveCommand, library.Reservation](s,
		NewReserveHandler(txRunner, s.retryOptionsFor(commandTypeReserve)...), outcomeReservationCreated)
	if err != nil {
		return nil, err
	}

	return &ReservationManager{reservations: reservations, reserve: reserve, settings: s}, nil
}

// CreateReservation reserves isbn for the member. A zero reserveDate means the current day.
func (m *ReservationManager) CreateReservation(ctx context.Context, isbn string, memberID int64, reserveDate time.Time) (library.Reservation, error) {
	if reserveDate.IsZero() {
		reserveDate = m.settings.now().Truncate(24 * time.Hour)
	}

	reservation, _, err := m.reserve.Handle(ctx, BuildReserveCommand(isbn, memberID, reserveDate))

	return reservation, err
}

// CancelReservation deletes one reservation and returns the number of removed rows.
func (m *ReservationManager) CancelReservation(ctx context.Context, reservationID int64) (int64, error) {
	return m.reservations.Delete(ctx, reservationID)
}

// CancelReservationsForMember deletes every reservation of the member.
func (m *ReservationManager) CancelReservationsForMember(ctx context.Context, memberID int64) (int64, error) {
	return m.reservations.DeleteAllForMember(ctx, memberID)
}

func (m *ReservationManager) GetReservation(ctx context.Context, reservationID int64) (library.Reservation, error) {
	return m.reservations.Get(ctx, reservationID)
}

func (m *ReservationManager) ListReservations(ctx context.Context, page library.Page) ([]library.Reservation, error) {
	return m.reservations.List(ctx, page)
}

func (m *ReservationManager) UpdateReservation(ctx context.Context, reservation library.Reservation) (library.Reservation, error) {
	return m.reservations.Update(ctx, reservation)
}
