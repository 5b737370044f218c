package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DevinCastillo5/Library-App/library"
)

const (
	paramISBN       = "isbn"
	paramAuthorName = "name"
)

func (a *api) bookAuthorRoutes(r chi.Router) {
	r.Get("/", a.listBookAuthors)
	r.Post("/", a.createBookAuthor)
	r.Get("/book/{"+paramISBN+"}", a.listAuthorsOfBook)
	r.Delete("/book/{"+paramISBN+"}", a.deleteAuthorsOfBook)
	r.Get("/author/{"+paramAuthorName+"}", a.listBooksOfAuthor)
	r.Delete("/author/{"+paramAuthorName+"}", a.deleteBooksOfAuthor)
	r.Delete("/{"+paramISBN+"}/{"+paramAuthorName+"}", a.deleteBookAuthor)
}

func (a *api) listBookAuthors(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	links, err := a.deps.BookAuthors.List(r.Context(), page)
	writeList(a, w, r, links, err)
}

func (a *api) createBookAuthor(w http.ResponseWriter, r *http.Request) {
	var link library.BookAuthor
	if err := decodeBody(r, &link, false); err != nil {
		a.writeError(w, r, err)
		return
	}

	created, err := a.deps.BookAuthors.Create(r.Context(), link)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (a *api) listAuthorsOfBook(w http.ResponseWriter, r *http.Request) {
	isbn, err := parseStringKey(chi.URLParam(r, paramISBN))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	links, err := a.deps.BookAuthors.ListByBook(r.Context(), isbn)
	writeList(a, w, r, links, err)
}

func (a *api) deleteAuthorsOfBook(w http.ResponseWriter, r *http.Request) {
	isbn, err := parseStringKey(chi.URLParam(r, paramISBN))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.deps.BookAuthors.DeleteAllForBook(r.Context(), isbn)
	a.writeDeleted(w, r, count, err, false)
}

func (a *api) listBooksOfAuthor(w http.ResponseWriter, r *http.Request) {
	name, err := parseStringKey(chi.URLParam(r, paramAuthorName))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	links, err := a.deps.BookAuthors.ListByAuthor(r.Context(), name)
	writeList(a, w, r, links, err)
}

func (a *api) deleteBooksOfAuthor(w http.ResponseWriter, r *http.Request) {
	name, err := parseStringKey(chi.URLParam(r, paramAuthorName))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.deps.BookAuthors.DeleteAllForAuthor(r.Context(), name)
	a.writeDeleted(w, r, count, err, false)
}

func (a *api) deleteBookAuthor(w http.ResponseWriter, r *http.Request) {
	isbn, err := parseStringKey(chi.URLParam(r, paramISBN))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	name, err := parseStringKey(chi.URLParam(r, paramAuthorName))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	count, err := a.deps.BookAuthors.Delete(r.Context(), library.BookAuthorKey{ISBN: isbn, AuthorName: name})
	a.writeDeleted(w, r, count, err, true)
}

func (a *api) listFinesByLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := parseIDKey(chi.URLParam(r, paramLoanID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	fines, err := a.deps.Fines.ListByLoan(r.Context(), loanID)
	writeList(a, w, r, fines, err)
}

// writeList answers a listing. A nil slice is sent as [].
func writeList[E any](a *api, w http.ResponseWriter, r *http.Request, list []E, err error) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if list == nil {
		list = []E{}
	}

	writeJSON(w, http.StatusOK, list)
}
