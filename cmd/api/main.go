package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/event-notify/internal/application/audit"
	"github.com/event-notify/internal/application/dispatch"
	"github.com/event-notify/internal/application/preference"
	"github.com/event-notify/internal/application/push"
	"github.com/event-notify/internal/config"
	"github.com/event-notify/internal/infrastructure/dynamo"
	"github.com/event-notify/internal/infrastructure/fcm"
	jwtinfra "github.com/event-notify/internal/infrastructure/jwt"
	"github.com/event-notify/internal/infrastructure/sns"
	transporthttp "github.com/event-notify/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg.AppEnv)

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("JWT provider not available", "err", err)
		os.Exit(1)
	}

	relay, err := newRelay(context.Background(), cfg)
	if err != nil {
		slog.Warn("push relay not available, push delivery disabled", "relay", cfg.PushRelay, "err", err)
		relay = nil
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	auditWriter := audit.NewWriter(dynamo.NewNotificationLogRepo(dynamoClient, cfg.DynamoTables.NotificationLogs))
	gate := preference.NewGate(userRepo)

	dispatcher := dispatch.New(dispatch.Deps{
		Gate:           gate,
		Records:        notificationRepo,
		Audit:          auditWriter,
		Push:           push.NewClient(userRepo, relay),
		PushTimeout:    cfg.PushTimeout,
		MaxConcurrency: cfg.BulkMaxConcurrency,
		WaveBudget:     cfg.BulkWaveBudget,
	})

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		TemplateRepo:     dynamo.NewTemplateRepo(dynamoClient, cfg.DynamoTables.NotificationTemplates),
		NotificationRepo: notificationRepo,
		Dispatcher:       dispatcher,
		Audit:            auditWriter,
		Gate:             gate,
		JWTProvider:      jwtProvider,
		Health:           dynamo.NewHealthCheck(dynamoClient, cfg.DynamoTables),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // bulk dispatch extends its own deadline
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "push_relay", cfg.PushRelay)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}

	// Let in-flight push deliveries finish; each is bounded by PUSH_TIMEOUT.
	dispatcher.Wait()
	slog.Info("server stopped")
}

// newRelay returns the push relay selected by PUSH_RELAY, or nil for "none".
func newRelay(ctx context.Context, cfg *config.Config) (push.Relay, error) {
	switch cfg.PushRelay {
	case config.PushRelayFCM:
		return fcm.NewRelay(ctx, cfg)
	case config.PushRelaySNS:
		return sns.NewRelay(cfg)
	case config.PushRelayNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown PUSH_RELAY %q", cfg.PushRelay)
	}
}

func setupLogger(env string) {
	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}
