package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DevinCastillo5/Library-App/library"
)

const paramLoanID = "loanId"

type createLoanRequest struct {
	ISBN     string `json:"ISBN"`
	MemberID int64  `json:"MemberID"`
	StaffID  *int64 `json:"StaffID"`
	LoanDate *Date  `json:"LoanDate"`
}

type updateLoanRequest struct {
	LoanID     int64  `json:"LoanID"`
	ISBN       string `json:"ISBN"`
	MemberID   int64  `json:"MemberID"`
	StaffID    int64  `json:"StaffID"`
	CopyID     int64  `json:"CopyID"`
	LoanDate   Date   `json:"LoanDate"`
	ReturnDate *Date  `json:"ReturnDate"`
}

func (request updateLoanRequest) loan() library.Loan {
	loan := library.Loan{
		LoanID:   request.LoanID,
		ISBN:     request.ISBN,
		MemberID: request.MemberID,
		StaffID:  request.StaffID,
		CopyID:   request.CopyID,
		LoanDate: request.LoanDate.Time,
	}

	if returnDate := timeOf(request.ReturnDate); !returnDate.IsZero() {
		loan.ReturnDate = &returnDate
	}

	return loan
}

type returnLoanRequest struct {
	ReturnDate *Date `json:"ReturnDate"`
}

func (a *api) loanRoutes(r chi.Router) {
	r.Get("/", a.listLoans)
	r.Post("/", a.createLoan)
	r.Put("/", a.updateLoan)
	r.Get("/{"+paramLoanID+"}", a.getLoan)
	r.Delete("/{"+paramLoanID+"}", a.deleteLoan)
	r.Post("/{"+paramLoanID+"}/return", a.returnLoan)
}

func (a *api) listLoans(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	loans, err := a.deps.Loans.ListLoans(r.Context(), page)
	writeList(a, w, r, loans, err)
}

func (a *api) getLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDKey(chi.URLParam(r, paramLoanID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	loan, err := a.deps.Loans.GetLoan(r.Context(), loanID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

func (a *api) createLoan(w http.ResponseWriter, r *http.Request) {
	var request createLoanRequest
	if err := decodeBody(r, &request, false); err != nil {
		a.writeError(w, r, err)
		return
	}

	staffID := a.defaultStaffID
	if request.StaffID != nil {
		staffID = *request.StaffID
	}

	if staffID == 0 {
		a.writeError(w, r, library.ValidationError("StaffID", "is required"))
		return
	}

	loan, err := a.deps.Loans.CreateLoan(r.Context(), request.ISBN, request.MemberID, staffID, timeOf(request.LoanDate))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

func (a *api) updateLoan(w http.ResponseWriter, r *http.Request) {
	var request updateLoanRequest
	if err := decodeBody(r, &request, false); err != nil {
		a.writeError(w, r, err)
		return
	}

	updated, err := a.deps.Loans.UpdateLoan(r.Context(), request.loan())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (a *api) deleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDKey(chi.URLParam(r, paramLoanID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.deps.Loans.DeleteLoan(r.Context(), loanID)
	a.writeDeleted(w, r, count, err, true)
}

func (a *api) returnLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDKey(chi.URLParam(r, paramLoanID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var request returnLoanRequest
	if err := decodeBody(r, &request, true); err != nil {
		a.writeError(w, r, err)
		return
	}

	loan, err := a.deps.Loans.ReturnLoan(r.Context(), loanID, timeOf(request.ReturnDate))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}
