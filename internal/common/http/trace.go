package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/alebedev/helpboard/internal/common/constants"
)

const traceIDHeader = "X-Trace-ID"

// TraceIDMiddleware tags each request with a trace id and echoes it back in
// the response. An inbound header is honored only if it parses as a UUID, so
// log lines cannot be polluted by arbitrary client input.
func TraceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}

		w.Header().Set(traceIDHeader, traceID)

		ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
