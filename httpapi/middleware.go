package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	headerRequestID = "X-Request-ID"

	logMsgRequest         = "http request"
	logMsgRequestFailed   = "http request failed"
	logMsgRequestRejected = "http request rejected"
	logMsgPanicRecovered  = "panic recovered"
	logAttrRequestID      = "request_id"
	logAttrMethod         = "method"
	logAttrPath           = "path"
	logAttrStatus         = "status"
	logAttrDurationMS     = "duration_ms"
	logAttrError          = "error"
)

type requestIDKey struct{}

// RequestIDFrom returns the request id the RequestID middleware stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestID keeps an incoming X-Request-ID or assigns a new UUID, and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger.InfoContext(r.Context(), logMsgRequest,
				logAttrRequestID, RequestIDFrom(r.Context()),
				logAttrMethod, r.Method,
				logAttrPath, r.URL.Path,
				logAttrStatus, status,
				logAttrDurationMS, float64(time.Since(start).Microseconds())/1000,
			)
		})
	}
}

// recoverer turns a panicking handler into a 500 answer.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				logger.ErrorContext(r.Context(), logMsgPanicRecovered,
					logAttrRequestID, RequestIDFrom(r.Context()),
					logAttrPath, r.URL.Path,
					logAttrError, fmt.Sprint(recovered))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: detailInternal})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit answers 429 once the shared token bucket is empty.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
