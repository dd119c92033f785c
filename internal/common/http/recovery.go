package http

import (
	"net/http"
	"runtime/debug"

	"github.com/alebedev/helpboard/internal/common/logger"
)

// RecoveryMiddleware converts a handler panic into a 500 response instead of
// tearing down the connection.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				log.Criticalf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				WriteErrorEnvelope(w, http.StatusInternalServerError, CodeUnknown, "internal server error", "")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
