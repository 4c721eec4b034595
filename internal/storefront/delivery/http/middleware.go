package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/ministore/pkg/logger"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the correlation id stored by the request id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// MiddlewareConfig controls the chain installed by Apply.
type MiddlewareConfig struct {
	// ServiceName names the server span.
	ServiceName string
	// Deadline bounds the request context the stores run under. Zero disables it.
	Deadline time.Duration
}

// DefaultMiddlewareConfig returns the production chain settings.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		ServiceName: "storefront",
		Deadline:    15 * time.Second,
	}
}

// Apply installs, outermost first: panic recovery, tracing, request id,
// access log, request deadline and response headers.
func (c MiddlewareConfig) Apply(router *mux.Router) {
	router.Use(recoverPanics)
	router.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, c.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if route := mux.CurrentRoute(r); route != nil {
					if tpl, err := route.GetPathTemplate(); err == nil {
						return r.Method + " " + tpl
					}
				}
				return r.Method
			}),
		)
	})
	router.Use(assignRequestID)
	router.Use(accessLog)
	if c.Deadline > 0 {
		router.Use(withDeadline(c.Deadline))
	}
	router.Use(storefrontHeaders)
}

// recoverPanics turns a handler panic into the JSON 500 envelope, unless the
// handler already started its response.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error(r.Context()).
				Interface("panic", rec).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", RequestID(r.Context())).
				Msg("Handler panicked")

			if !sw.wroteHeader {
				respondJSON(sw, http.StatusInternalServerError, Response{
					Success: false,
					Error:   "Internal server error",
				})
			}
		}()

		next.ServeHTTP(sw, r)
	})
}

// assignRequestID keeps an incoming id or mints one, and echoes it back.
func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		status := sw.Status()
		log := logger.WithContext(r.Context())
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int64("bytes", sw.written).
			Str("client_ip", clientIP(r)).
			Str("request_id", RequestID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// withDeadline bounds the request context; stores and the publisher observe it.
func withDeadline(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// storefrontHeaders marks responses as uncacheable session data and sets the
// usual browser hardening headers.
func storefrontHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusWriter records the status and size of a response.
type statusWriter struct {
	http.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// Status is the response code, 200 when the handler never set one.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
