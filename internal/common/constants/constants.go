package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	JWTSecretMinLength = 32

	TitleMaxLength       = 200
	DescriptionMaxLength = 4000
	SolutionMaxLength    = 4000
	BioMaxLength         = 1000

	BcryptCost = 12

	DefaultMaxRequestSize = 1 << 20

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort       = "8080"
	DefaultDataDir        = "data"
	DefaultRequestTimeout = 5 * time.Second
	DefaultSessionTTL     = 24 * time.Hour

	DefaultWebSocketWriteWait   = 10 * time.Second
	DefaultWebSocketPongWait    = 60 * time.Second
	DefaultWebSocketPingPeriod  = 54 * time.Second
	DefaultWebSocketSendBufSize = 64
	DefaultBroadcastQueueSize   = 256

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMsgSize      = 4096

	AuthRateLimitPerSecond   = 5
	AuthRateLimitBurst       = 10
	RateLimitCleanupInterval = 1 * time.Minute

	UsersFileName    = "users.json"
	RequestsFileName = "requests.json"

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
