package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alebedev/helpboard/internal/common/constants"
	"github.com/alebedev/helpboard/internal/common/logger"
)

// ShutdownHook runs during the drain window, before the listener stops.
type ShutdownHook func(ctx context.Context) error

func StartWithGracefulShutdown(server *http.Server, log *logger.Logger, serviceName string) {
	StartWithGracefulShutdownAndHooks(server, log, serviceName, nil)
}

// StartWithGracefulShutdownAndHooks serves until SIGINT or SIGTERM, then
// drains in-flight requests within the configured deadlines. Hooks that fail
// are logged but never abort the shutdown.
func StartWithGracefulShutdownAndHooks(
	server *http.Server,
	log *logger.Logger,
	serviceName string,
	hooks []ShutdownHook,
) {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("%s listening on %s", serviceName, server.Addr)
		errCh <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s failed to serve: %v", serviceName, err)
		}
		return
	case sig := <-quit:
		log.Infof("%s received %s, shutting down", serviceName, sig)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancelShutdown()

	server.SetKeepAlivesEnabled(false)

	if len(hooks) > 0 {
		drainCtx, cancelDrain := context.WithTimeout(shutdownCtx, constants.DrainTimeout)
		defer cancelDrain()
		for i, hook := range hooks {
			if err := hook(drainCtx); err != nil {
				log.Errorf("%s shutdown hook %d: %v", serviceName, i, err)
			}
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s forced shutdown: %v", serviceName, err)
		return
	}
	log.Infof("%s stopped", serviceName)
}
