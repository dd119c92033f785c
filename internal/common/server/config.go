package server

import (
	"net/http"

	"github.com/alebedev/helpboard/internal/common/constants"
)

type ServerConfig struct {
	Addr string
}

// NewServer applies the shared timeout policy. The write timeout does not
// affect websocket connections; those are hijacked before it applies.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	s := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,

		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
	}
	return s
}
