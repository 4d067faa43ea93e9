package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/launch-site-go/internal/container"
	"github.com/serroba/launch-site-go/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	opts := &container.Options{
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MixpanelToken:      getEnv("MIXPANEL_TOKEN", ""),
		MixpanelIngestBase: getEnv("MIXPANEL_INGEST_BASE", "https://api.mixpanel.com"),
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.MixpanelPackage(injector)
	container.EventStoresPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}
