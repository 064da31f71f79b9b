// Package httplog provides zerolog request logging middleware for the
// documentation server.
package httplog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gregwebs/go-recovery"
	"github.com/rs/zerolog"
)

// Options configures the request logger.
type Options struct {
	// RecoverPanics turns handler panics into a logged error and a 500.
	RecoverPanics bool

	// Skip reports requests that are served without a log line.
	Skip func(r *http.Request) bool

	// Headers lists request headers copied into the log line.
	Headers []string
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
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
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type contextKey struct{}

// Middleware logs one line per request: method, path, status, size and
// duration, plus the chi request id when one is present. 5xx responses log
// at error level and 4xx at warn.
func Middleware(logger zerolog.Logger, opts *Options) func(http.Handler) http.Handler {
	if opts == nil {
		opts = &Options{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Skip != nil && opts.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			reqLogger := logger
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				reqLogger = reqLogger.With().Str("request_id", reqID).Logger()
			}
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, &reqLogger))

			if opts.RecoverPanics {
				serveRecovered(next, sw, r, &reqLogger)
			} else {
				next.ServeHTTP(sw, r)
			}

			var event *zerolog.Event
			switch {
			case sw.status >= http.StatusInternalServerError:
				event = reqLogger.Error()
			case sw.status >= http.StatusBadRequest:
				event = reqLogger.Warn()
			default:
				event = reqLogger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int("bytes", sw.bytes).
				Dur("duration", time.Since(start))

			for _, name := range opts.Headers {
				if val := r.Header.Get(name); val != "" {
					event.Str("header_"+name, val)
				}
			}

			event.Msg("request completed")
		})
	}
}

func serveRecovered(next http.Handler, w *statusWriter, r *http.Request, logger *zerolog.Logger) {
	err := recovery.Call(func() error {
		next.ServeHTTP(w, r)
		return nil
	})
	if err == nil {
		return
	}

	// http.ErrAbortHandler is how handlers ask the server to drop the connection.
	if errors.Is(err, http.ErrAbortHandler) {
		panic(http.ErrAbortHandler)
	}

	logger.Error().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("stack", fmt.Sprintf("%+v", err)).
		Msg("panic recovered")

	if !w.wroteHeader {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// FromContext returns the request-scoped logger stored by Middleware, or a
// disabled logger outside of a logged request.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}

// SetError attaches err to the request log line.
func SetError(ctx context.Context, err error) {
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok {
		logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Err(err)
		})
	}
}
