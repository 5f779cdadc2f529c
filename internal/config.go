package internal

import (
	"fmt"
	"strings"
	"time"
)

const (
	BusDriverMemory = "memory"
	BusDriverRedis  = "redis"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Host       string `env:"HOST,default=0.0.0.0"`
	Port       int    `env:"PORT,required=true"`
	HealthPort int    `env:"HEALTH_PORT,default=50051"`
	DebugPort  int    `env:"DEBUG_PORT,default=8081"`
	LogLevel   string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	MaxContentLength int    `env:"MAX_CONTENT_LENGTH,default=2000"`
	CharReplacement  string `env:"CHARACTER_REPLACEMENT,default=*"`

	SubscriptionBufferSize int           `env:"SUBSCRIPTION_BUFFER_SIZE,default=64"`
	ConnectionInitTimeout  time.Duration `env:"CONNECTION_INIT_TIMEOUT,default=10s"`
	WSPingInterval         time.Duration `env:"WS_PING_INTERVAL,default=30s"`
	WSPongWait             time.Duration `env:"WS_PONG_WAIT,default=60s"`
	WSWriteWait            time.Duration `env:"WS_WRITE_WAIT,default=10s"`
	WSMaxMessageSize       int64         `env:"WS_MAX_MESSAGE_SIZE,default=65536"`
	ScopeChatCreated       bool          `env:"SCOPE_CHAT_CREATED,default=false"`

	BusDriver     string `env:"BUS_DRIVER,default=memory"`
	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s"`
	IndexBatchSize    int           `env:"INDEX_BATCH_SIZE,default=50"`
	IndexFlushTimeout time.Duration `env:"INDEX_FLUSH_TIMEOUT,default=1s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=2s"`
	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL,default=1m"`
	LatencyThreshold  time.Duration `env:"LATENCY_THRESHOLD,default=500ms"`
	HealthInterval    time.Duration `env:"HEALTH_CHECK_INTERVAL,default=10s"`
}

// Validate checks the values go-env cannot express in tags.
func (c Config) Validate() error {
	switch strings.ToLower(c.BusDriver) {
	case BusDriverMemory, BusDriverRedis:
	default:
		return fmt.Errorf("BUS_DRIVER must be %q or %q, got %q", BusDriverMemory, BusDriverRedis, c.BusDriver)
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", c.MaxContentLength)
	}
	if c.SubscriptionBufferSize <= 0 {
		return fmt.Errorf("SUBSCRIPTION_BUFFER_SIZE must be positive, got %d", c.SubscriptionBufferSize)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.WSPingInterval >= c.WSPongWait {
		return fmt.Errorf("WS_PING_INTERVAL (%s) must be shorter than WS_PONG_WAIT (%s)", c.WSPingInterval, c.WSPongWait)
	}
	return nil
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
