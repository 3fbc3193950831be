package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"SafeHer/config"
	"SafeHer/internal/schedule"
	pkgdatabase "SafeHer/pkg/database"
	"SafeHer/pkg/logger"
	pkgmq "SafeHer/pkg/mq"
	pkgotel "SafeHer/pkg/otel"
	pkgredis "SafeHer/pkg/redis"
	"SafeHer/pkg/snowflake"
	"SafeHer/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	otelShutdown := initObservability(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 兜底消息 ID 也走雪花序列
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	interval := time.Duration(config.Cfg.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	schedule.GetSweepScheduler().Run(ctx, interval)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

func initObservability(ctx context.Context) func(context.Context) error {
	shutdown := func(context.Context) error { return nil }

	if config.Cfg.TracingEnabled {
		var err error
		shutdown, err = pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:  config.Cfg.ServiceName + "-scheduler",
			Environment:  config.Cfg.Environment,
			OTLPEndpoint: config.Cfg.OTLPEndpoint,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, tracing disabled", zap.Error(err))
			shutdown = func(context.Context) error { return nil }
		}
	}

	meter := otel.Meter(config.Cfg.ServiceName + "-scheduler")
	if err := pkgdatabase.InitDatabaseMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to initialize database metrics", zap.Error(err))
	}
	if err := pkgredis.InitRedisMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to initialize redis metrics", zap.Error(err))
	}
	if err := pkgmq.InitMQMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to initialize mq metrics", zap.Error(err))
	}

	return shutdown
}
