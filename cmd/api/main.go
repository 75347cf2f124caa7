package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wheats/internal/config"
	"wheats/internal/handler"
	"wheats/internal/infra/db"
	"wheats/internal/infra/messaging"
	infraRepo "wheats/internal/infra/repository"
	"wheats/internal/logger"
	"wheats/internal/middleware"
	"wheats/internal/server"
	"wheats/internal/telemetry"
	"wheats/internal/usecase"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// トレース
	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	// メトリクス（/metrics）
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	//DB接続（マイグレーションはcmd/migrateで流す）
	gormDB, err := db.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	txm := infraRepo.NewTxManagerGorm(gormDB)

	// Kafkaは任意。未設定ならイベントを送らない
	var publisher usecase.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
		log.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txm, log.Named("cart"))
	orderUC := usecase.NewOrderUsecase(txm, publisher, usecase.UUIDOrderNumbers{}, usecase.SystemClock{}, log.Named("order"))

	//Server
	srv := server.New(":"+cfg.Port, server.Deps{
		Log:     log,
		DB:      sqlDB,
		Metrics: metricsHandler,
		Auth:    middleware.AuthJWT(cfg.JWTSecret),
		Cart:    handler.NewCartHandler(cartUC),
		Order:   handler.NewOrderHandler(orderUC),
		Service: cfg.ServiceName,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
