package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DevinCastillo5/Library-App/library"
)

const (
	paramReservationID = "reservationId"
	paramMemberID      = "memberId"
)

type createReservationRequest struct {
	ISBN        string `json:"ISBN"`
	MemberID    int64  `json:"MemberID"`
	ReserveDate *Date  `json:"ReserveDate"`
}

type updateReservationRequest struct {
	ReservationID int64  `json:"ReservationID"`
	ISBN          string `json:"ISBN"`
	MemberID      int64  `json:"MemberID"`
	CopyID        int64  `json:"CopyID"`
	ReserveDate   Date   `json:"ReserveDate"`
}

func (a *api) reservationRoutes(r chi.Router) {
	r.Get("/", a.listReservations)
	r.Post("/", a.createReservation)
	r.Put("/", a.updateReservation)
	r.Delete("/member/{"+paramMemberID+"}", a.cancelReservationsForMember)
	r.Get("/{"+paramReservationID+"}", a.getReservation)
	r.Delete("/{"+paramReservationID+"}", a.cancelReservation)
}

func (a *api) listReservations(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	reservations, err := a.deps.Reservations.ListReservations(r.Context(), page)
	writeList(a, w, r, reservations, err)
}

func (a *api) getReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := parseIDKey(chi.URLParam(r, paramReservationID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	reservation, err := a.deps.Reservations.GetReservation(r.Context(), reservationID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reservation)
}

func (a *api) createReservation(w http.ResponseWriter, r *http.Request) {
	var request createReservationRequest
	if err := decodeBody(r, &request, false); err != nil {
		a.writeError(w, r, err)
		return
	}

	reservation, err := a.deps.Reservations.CreateReservation(r.Context(), request.ISBN, request.MemberID, timeOf(request.ReserveDate))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

func (a *api) updateReservation(w http.ResponseWriter, r *http.Request) {
	var request updateReservationRequest
	if err := decodeBody(r, &request, false); err != nil {
		a.writeError(w, r, err)
		return
	}

	updated, err := a.deps.Reservations.UpdateReservation(r.Context(), library.Reservation{
		ReservationID: request.ReservationID,
		ISBN:          request.ISBN,
		MemberID:      request.MemberID,
		CopyID:        request.CopyID,
		ReserveDate:   request.ReserveDate.Time,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (a *api) cancelReservation(w http.ResponseWriter, r *http.Request) {
	reservationID, err := parseIDKey(chi.URLParam(r, paramReservationID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.deps.Reservations.CancelReservation(r.Context(), reservationID)
	// Cancelling is idempotent: an already cancelled reservation reports deleted 0.
	a.writeDeleted(w, r, count, err, false)
}

func (a *api) cancelReservationsForMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := parseIDKey(chi.URLParam(r, paramMemberID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.deps.Reservations.CancelReservationsForMember(r.Context(), memberID)
	a.writeDeleted(w, r, count, err, false)
}
