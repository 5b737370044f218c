package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/DevinCastillo5/Library-App/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const detailInternal = "internal server error"

type errorResponse struct {
	Detail string `json:"detail"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// Date accepts "2006-01-02" as well as RFC 3339 timestamps. Date-only values are midnight UTC.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		d.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		d.Time = parsed
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return library.ValidationError("date", "must be YYYY-MM-DD or RFC 3339")
	}

	d.Time = parsed.UTC()

	return nil
}

// timeOf returns the zero time for a missing date, which the managers replace with "now".
func timeOf(d *Date) time.Time {
	if d == nil {
		return time.Time{}
	}

	return d.Time
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeBody decodes the request body into target. An empty body is only accepted when allowEmpty is set.
func decodeBody(r *http.Request, target any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(target)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	case errors.Is(err, library.ErrValidation):
		return err
	default:
		return errors.Join(library.ErrValidation, err)
	}
}

// statusFor maps the sentinel in err onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, library.ErrNotFound),
		errors.Is(err, library.ErrNoAvailableCopy),
		errors.Is(err, library.ErrNoLoanedCopy):
		return http.StatusNotFound
	case errors.Is(err, library.ErrLoanAlreadyReturned),
		errors.Is(err, library.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, library.ErrAlreadyExists),
		errors.Is(err, library.ErrForeignKeyViolation),
		errors.Is(err, library.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers err. Unclassified errors are logged and hidden behind a generic detail.
func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := err.Error()

	if status == http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), logMsgRequestFailed,
			logAttrRequestID, RequestIDFrom(r.Context()),
			logAttrPath, r.URL.Path,
			logAttrError, err.Error())
		detail = detailInternal
	} else {
		a.logger.DebugContext(r.Context(), logMsgRequestRejected,
			logAttrRequestID, RequestIDFrom(r.Context()),
			logAttrStatus, status,
			logAttrError, err.Error())
	}

	writeJSON(w, status, errorResponse{Detail: detail})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
