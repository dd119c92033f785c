package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alebedev/helpboard/internal/common/constants"
	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
)

type BoardConfig struct {
	HTTPPort             string
	DataDir              string
	JWTSecret            string
	SessionTTL           time.Duration
	RequestTimeout       time.Duration
	WebSocketWriteWait   time.Duration
	WebSocketPongWait    time.Duration
	WebSocketPingPeriod  time.Duration
	WebSocketSendBufSize int
	BroadcastQueueSize   int
}

func LoadBoardConfig() (BoardConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return BoardConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return BoardConfig{}, err
	}

	return BoardConfig{
		HTTPPort:             getEnv("BOARD_HTTP_PORT", constants.DefaultHTTPPort),
		DataDir:              getEnv("BOARD_DATA_DIR", constants.DefaultDataDir),
		JWTSecret:            jwtSecret,
		SessionTTL:           getDurationEnv("BOARD_SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout:       getDurationEnv("BOARD_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		WebSocketWriteWait:   getDurationEnv("BOARD_WS_WRITE_WAIT", constants.DefaultWebSocketWriteWait),
		WebSocketPongWait:    getDurationEnv("BOARD_WS_PONG_WAIT", constants.DefaultWebSocketPongWait),
		WebSocketPingPeriod:  getDurationEnv("BOARD_WS_PING_PERIOD", constants.DefaultWebSocketPingPeriod),
		WebSocketSendBufSize: getIntEnv("BOARD_WS_SEND_BUF_SIZE", constants.DefaultWebSocketSendBufSize),
		BroadcastQueueSize:   getIntEnv("BOARD_BROADCAST_QUEUE_SIZE", constants.DefaultBroadcastQueueSize),
	}, nil
}

func (c BoardConfig) UsersFile() string {
	return filepath.Join(c.DataDir, constants.UsersFileName)
}

func (c BoardConfig) RequestsFile() string {
	return filepath.Join(c.DataDir, constants.RequestsFileName)
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("%s", key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
