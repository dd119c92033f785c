package main

import (
	"context"
	"expvar"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	boarddomain "github.com/alebedev/helpboard/internal/board/domain"
	boardhttp "github.com/alebedev/helpboard/internal/board/http"
	boardservice "github.com/alebedev/helpboard/internal/board/service"
	"github.com/alebedev/helpboard/internal/common/config"
	"github.com/alebedev/helpboard/internal/common/crypto"
	commonhttp "github.com/alebedev/helpboard/internal/common/http"
	"github.com/alebedev/helpboard/internal/common/logger"
	srv "github.com/alebedev/helpboard/internal/common/server"
	"github.com/alebedev/helpboard/internal/common/session"
	"github.com/alebedev/helpboard/internal/notify"
	"github.com/alebedev/helpboard/internal/storage/jsonfile"
	userdirectory "github.com/alebedev/helpboard/internal/user/directory"
	userdomain "github.com/alebedev/helpboard/internal/user/domain"
	userhttp "github.com/alebedev/helpboard/internal/user/http"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "board", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg, err := config.LoadBoardConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	usersFile := jsonfile.New[map[string]userdomain.User](cfg.UsersFile())
	users, err := usersFile.Load(map[string]userdomain.User{})
	if err != nil {
		log.Warnf("users file unreadable, starting with empty directory: %v", err)
	}

	requestsFile := jsonfile.New[[]boarddomain.Request](cfg.RequestsFile())
	requests, err := requestsFile.Load([]boarddomain.Request{})
	if err != nil {
		log.Warnf("requests file unreadable, starting with empty board: %v", err)
	}

	hub := notify.NewHub(log, notify.HubConfig{
		SendBufSize:        cfg.WebSocketSendBufSize,
		BroadcastQueueSize: cfg.BroadcastQueueSize,
	})
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	hasher := crypto.NewBcryptHasher()
	issuer := session.NewIssuer(cfg.JWTSecret, cfg.SessionTTL, crypto.NewUUIDGenerator())

	directory := userdirectory.New(users, usersFile, hasher, log)
	board := boardservice.New(requests, requestsFile, hub, log)

	userHandler := userhttp.NewHandler(directory, board, issuer, cfg.JWTSecret, log)
	boardHandler := boardhttp.NewHandler(board, hub, cfg, log)

	sessionMw := session.Middleware(cfg.JWTSecret, log)

	restMux := http.NewServeMux()
	restMux.HandleFunc("/health", commonhttp.HealthHandler(log))
	restMux.Handle("/metrics", promhttp.Handler())
	restMux.Handle("/debug/vars", expvar.Handler())
	restMux.Handle("/api/auth/", userHandler)
	restMux.Handle("/api/users/", sessionMw(userHandler))
	restMux.Handle("/api/requests", sessionMw(boardHandler))
	restMux.Handle("/api/requests/", sessionMw(boardHandler))

	wrappedRestMux := commonhttp.BuildBaseHandler(log, restMux)

	mainMux := http.NewServeMux()
	mainMux.Handle("/ws", boardHandler)
	mainMux.Handle("/", wrappedRestMux)

	server := srv.NewServer(srv.ServerConfig{Addr: ":" + cfg.HTTPPort}, mainMux)

	srv.StartWithGracefulShutdown(server, log, "board")

	cancel()
	wg.Wait()
}
