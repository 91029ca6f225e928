package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into a 500 JSON error and logs the stack.
// It must run inside Logger so the recovered response is still counted.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				logger.Error("handler_panic",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("route", routePattern(r)),
					slog.String("method", r.Method),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				// A handler that already started its response cannot be rewritten.
				if rw, ok := w.(*responseWriter); ok && rw.wroteHeader {
					return
				}
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
