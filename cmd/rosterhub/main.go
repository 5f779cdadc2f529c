package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"rosterhub/auth"
	"rosterhub/contract"
	"rosterhub/domain/event"
	"rosterhub/infrastructure/api"
	"rosterhub/infrastructure/gateway"
	"rosterhub/infrastructure/health"
	"rosterhub/internal"
	"rosterhub/moderation"
	"rosterhub/repositories"
	"rosterhub/runtime"
	"rosterhub/runtime/workers"
	"rosterhub/services"
	"rosterhub/sink"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "RosterHub terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a fatal error.
// Deferred closes run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, ChatMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	chatRepository := repositories.NewChatRepository(db, logger)
	profileRepository := repositories.NewProfileRepository(db)
	chatIndex := repositories.NewChatIndex(blugeWriter, logger)

	// 3. Moderation
	censored, err := moderation.LoadDefault()
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to load censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(censored.Words, charReplacement, logger)
	if err != nil {
		return exitRuntime, err
	}
	logger.Info("Moderation ready", "words", len(censored.Words), "languages", censored.Languages)

	// 4. Bus & Supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	probes := []workers.Probe{{Name: "badger", Check: func(context.Context) error {
		if db.IsClosed() {
			return errors.New("badger is closed")
		}
		return db.View(func(*badger.Txn) error { return nil })
	}}}
	localBus := runtime.NewBus(logger, runtime.NewRegistry(), config.SubscriptionBufferSize)
	var bus contract.IBus = localBus
	if strings.EqualFold(config.BusDriver, internal.BusDriverRedis) {
		client, err := runtime.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return exitRuntime, err
		}
		defer func() { _ = client.Close() }()
		redisBus := runtime.NewRedisBus(logger, client, localBus)
		sup.Add(redisBus)
		probes = append(probes, workers.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
		bus = redisBus
		logger.Info("Redis bus enabled", "addr", config.RedisAddr)
	}

	indexSink := sink.NewIndexSink(chatIndex, logger, config.IndexBatchSize, config.IndexFlushTimeout)
	defer func() {
		if err := indexSink.Flush(); err != nil {
			logger.Error("Final index flush failed", "error", err)
		}
	}()
	counter := event.NewCounter()
	sup.Add(
		workers.NewEventFanoutWorker(logger, bus, config.SinkTimeout, indexSink, sink.NewLogSink(logger)),
		workers.NewTelemetryWorker(logger, bus, config.TelemetryInterval, counter,
			event.NewChatActivityHandler(logger, counter),
			event.NewLatencyHandler(logger, config.LatencyThreshold)),
	)

	// 5. Services, HTTP API & Subscription gateway
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	chatService := services.NewChatService(logger, chatRepository, profileRepository, chatIndex, bus, moderator, config.MaxContentLength)
	authService := services.NewAuthService(logger, profileRepository, tokens)
	gw := gateway.NewGateway(logger, bus, tokens, gateway.Config{
		InitTimeout:      config.ConnectionInitTimeout,
		PingInterval:     config.WSPingInterval,
		PongWait:         config.WSPongWait,
		WriteWait:        config.WSWriteWait,
		MaxMessageSize:   config.WSMaxMessageSize,
		SendBufferSize:   config.SubscriptionBufferSize,
		ScopeChatCreated: config.ScopeChatCreated,
	})

	if !logger.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logger, api.NewHandler(logger, chatService, authService, tokens), func(r *gin.Engine) {
		r.GET("/graphql/ws", gin.WrapH(gw))
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthServer := health.NewServer(logger)
	sup.Add(workers.NewHealthMonitoringWorker(logger, healthServer, config.HealthInterval, probes...))
	healthListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", config.Host, config.HealthPort))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on health port %d: %w", config.HealthPort, err)
	}

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting supervisor...")
		sup.Run(ctx)
	}()
	go func() {
		logger.Info("Starting gRPC health server", "port", config.HealthPort)
		if err := healthServer.Serve(healthListener); err != nil {
			errChan <- fmt.Errorf("health server error: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "bus", config.BusDriver, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Graceful shutdown. Open sockets are hijacked, they end with the process.
	logger.Info("Shutting down gracefully...", "open_sockets", gw.Connections())
	healthServer.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	sup.Stop()
	healthServer.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// ChatMapper renders RosterHub records in the debug inspector.
func ChatMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	row.Type, row.Detail = repositories.Describe(key, val)
	return row
}
