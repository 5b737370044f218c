package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DevinCastillo5/Library-App/library"
)

const paramKey = "key"

type keyParser[K comparable] func(raw string) (K, error)

func parseStringKey(raw string) (string, error) {
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", library.ValidationError("key", "must be a non-empty path segment")
	}

	return key, nil
}

func parseIDKey(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, library.ValidationError("id", "must be an integer")
	}

	return id, nil
}

func parsePage(r *http.Request) (library.Page, error) {
	query := r.URL.Query()

	skip, err := queryInt(query, "skip")
	if err != nil {
		return library.Page{}, err
	}

	limit, err := queryInt(query, "limit")
	if err != nil {
		return library.Page{}, err
	}

	return library.BuildPage(skip, limit)
}

func queryInt(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, library.ValidationError(name, "must be an integer")
	}

	return value, nil
}

type bulkDeleteRequest[K comparable] struct {
	Keys []K `json:"keys"`
}

// entityResource serves the plain CRUD routes of one entity table.
// bind decodes a request body into E; it defaults to decoding E directly.
type entityResource[E any, K comparable] struct {
	api      *api
	store    library.EntityStore[E, K]
	parseKey keyParser[K]
	bind     func(r *http.Request) (E, error)
}

func (res entityResource[E, K]) decode(r *http.Request) (E, error) {
	if res.bind != nil {
		return res.bind(r)
	}

	var entity E
	err := decodeBody(r, &entity, false)

	return entity, err
}

type authorRequest struct {
	AuthorName  string `json:"AuthorName"`
	DOB         *Date  `json:"DOB"`
	Nationality string `json:"Nationality"`
}

func bindAuthor(r *http.Request) (library.Author, error) {
	var request authorRequest
	if err := decodeBody(r, &request, false); err != nil {
		return library.Author{}, err
	}

	author := library.Author{AuthorName: request.AuthorName, Nationality: request.Nationality}
	if dob := timeOf(request.DOB); !dob.IsZero() {
		author.DOB = &dob
	}

	return author, nil
}

func (res entityResource[E, K]) routes(r chi.Router) {
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Put("/", res.update)
	r.Post("/bulk-delete", res.bulkDelete)
	r.Get("/{"+paramKey+"}", res.get)
	r.Delete("/{"+paramKey+"}", res.delete)
}

func (res entityResource[E, K]) list(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	entities, err := res.store.List(r.Context(), page)
	writeList(res.api, w, r, entities, err)
}

func (res entityResource[E, K]) get(w http.ResponseWriter, r *http.Request) {
	key, err := res.parseKey(chi.URLParam(r, paramKey))
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	entity, err := res.store.Get(r.Context(), key)
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entity)
}

func (res entityResource[E, K]) create(w http.ResponseWriter, r *http.Request) {
	entity, err := res.decode(r)
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	created, err := res.store.Create(r.Context(), entity)
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (res entityResource[E, K]) update(w http.ResponseWriter, r *http.Request) {
	entity, err := res.decode(r)
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	updated, err := res.store.Update(r.Context(), entity)
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (res entityResource[E, K]) delete(w http.ResponseWriter, r *http.Request) {
	key, err := res.parseKey(chi.URLParam(r, paramKey))
	if err != nil {
		res.api.writeError(w, r, err)
		return
	}

	count, err := res.store.Delete(r.Context(), key)
	res.api.writeDeleted(w, r, count, err, true)
}

func (res entityResource[E, K]) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var request bulkDeleteRequest[K]
	if err := decodeBody(r, &request, false); err != nil {
		res.api.writeError(w, r, err)
		return
	}

	count, err := res.store.DeleteMany(r.Context(), request.Keys)
	res.api.writeDeleted(w, r, count, err, false)
}

// writeDeleted answers a delete. With notFoundOnZero a count of 0 becomes a 404.
func (a *api) writeDeleted(w http.ResponseWriter, r *http.Request, count int64, err error, notFoundOnZero bool) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if count == 0 && notFoundOnZero {
		a.writeError(w, r, library.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, deletedResponse{Deleted: count})
}
