package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/httputil"
	"github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/logger"
)

// Recovery converts a handler panic into a 500 in the standard error
// envelope, so one broken view never takes the whole client shell down.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
						Error: &httputil.ErrorResponse{
							Code:      "INTERNAL_ERROR",
							Message:   "an internal error occurred",
							RequestID: logger.CorrelationIDFromContext(r.Context()),
						},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
