package http

import (
	"net/http"

	"github.com/alebedev/helpboard/internal/common/constants"
	"github.com/alebedev/helpboard/internal/common/httpmetrics"
	"github.com/alebedev/helpboard/internal/common/logger"
)

// BuildBaseHandler wraps a mux in the standard middleware chain.
func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware

	return securityHeaders(recovery(traceID(maxRequestSize(metrics.Wrap(handler)))))
}
