package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"SafeHer/config"
	"SafeHer/internal/queue"
	"SafeHer/internal/service"
	pkgdatabase "SafeHer/pkg/database"
	"SafeHer/pkg/logger"
	"SafeHer/pkg/metrics"
	pkgmq "SafeHer/pkg/mq"
	pkgotel "SafeHer/pkg/otel"
	pkgredis "SafeHer/pkg/redis"
	"SafeHer/pkg/sms"
	"SafeHer/pkg/snowflake"
	"SafeHer/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
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
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS service", zap.Error(err))
		logger.Logger.Info("SMS service will be disabled, SMS features may not work")
	}

	// 消费者需要的服务在启动前注入
	queue.SetAlertNotifier(service.Notification())
	queue.SetJourneyEscalator(service.Alert())

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := queue.StartAlertDispatchConsumer(ctx); err != nil {
			logger.Logger.Error("Alert dispatch consumer stopped", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := queue.StartJourneySweepConsumer(ctx); err != nil {
			logger.Logger.Error("Journey sweep consumer stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()

	// 关闭 MQ 连接会让消费循环退出
	storage.Close()
	wg.Wait()

	logger.Logger.Info("Worker service shutting down gracefully")
}

func initObservability(ctx context.Context) func(context.Context) error {
	shutdown := func(context.Context) error { return nil }

	if config.Cfg.TracingEnabled {
		var err error
		shutdown, err = pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:  config.Cfg.ServiceName + "-worker",
			Environment:  config.Cfg.Environment,
			OTLPEndpoint: config.Cfg.OTLPEndpoint,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, tracing disabled", zap.Error(err))
			shutdown = func(context.Context) error { return nil }
		}
	}

	meter := otel.Meter(config.Cfg.ServiceName + "-worker")
	if err := pkgdatabase.InitDatabaseMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to initialize database metrics", zap.Error(err))
	}
	if err := pkgredis.InitRedisMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to initialize redis metrics", zap.Error(err))
	}
	if err := pkgmq.InitMQMetrics(meter); err != nil {
		logger.Logger.Warn("Failed to initialize mq metrics", zap.Error(err))
	}
	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize business metrics", zap.Error(err))
	}

	return shutdown
}
