// Clover deduplicates raw hotel guest profiles into a canonical guest
// registry and keeps it synchronized on a schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stadlerhof/clover/config"
	"github.com/stadlerhof/clover/internal/repositories/booking"
	"github.com/stadlerhof/clover/internal/repositories/guestprofile"
	"github.com/stadlerhof/clover/pkg/database"
	"github.com/stadlerhof/clover/pkg/docstore"
	"github.com/stadlerhof/clover/pkg/events"
	"github.com/stadlerhof/clover/pkg/kafka"
	"github.com/stadlerhof/clover/pkg/redis"
	guestroutes "github.com/stadlerhof/clover/pkg/routes/guests"
	"github.com/stadlerhof/clover/pkg/routes/health"
	syncroutes "github.com/stadlerhof/clover/pkg/routes/sync"
	"github.com/stadlerhof/clover/pkg/syncer"
	"github.com/stadlerhof/clover/pkg/tracing"
)

const version = "1.0.0"

func main() {
	// Best effort; production sets real environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.Infof("Starting %s", cfg.AppName)

	shutdownTracing := tracing.Init(cfg.AppName)

	db, err := connectDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to source database")
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to Redis")
		os.Exit(1)
	}

	// Optional lifecycle event publishing
	var producer *kafka.Producer
	var emitter syncer.EventEmitter
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		emitter = events.NewEmitter(producer, logger)
		logger.Infof("Kafka event publishing enabled: topic=%s", cfg.KafkaOutputTopic)
	}

	profileRepo := guestprofile.NewRepository(db, logger)
	bookingRepo := booking.NewRepository(db, logger)

	guests := docstore.NewGuests(redisClient, logger)
	lookups := docstore.NewLookups(redisClient, logger)
	allocator := docstore.NewAllocator(redisClient, logger)
	status := docstore.NewStatus(redisClient, logger)

	processor := syncer.NewProcessor(profileRepo, bookingRepo, guests, lookups, allocator, emitter, logger)

	var locker *redis.Locker
	if cfg.SyncLockingEnabled {
		locker = redis.NewLocker(redisClient, "lock:")
	}

	orchestrator := syncer.NewOrchestrator(processor, status, locker, syncer.Config{
		Interval:   cfg.SyncInterval,
		LockTTL:    cfg.SyncLockTTL,
		Enabled:    cfg.SyncEnabled,
		RunOnStart: cfg.SyncRunOnStart,
	}, logger)

	ctx := context.Background()
	if err := orchestrator.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start sync orchestrator")
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	checker := health.NewChecker(db, redisClient, version)
	checker.RegisterRoutes(e)
	checker.SetReady(true)

	guestroutes.NewHandler(guests, logger).Register(e.Group("/api/v1/guests"))
	syncroutes.NewHandler(orchestrator, status, logger).Register(e.Group("/api/v1/sync"))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil {
			logger.WithError(err).Info("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := orchestrator.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Sync orchestrator did not stop cleanly")
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server did not stop cleanly")
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("Kafka producer did not close cleanly")
		}
	}
	if err := redisClient.Close(); err != nil {
		logger.WithError(err).Warn("Redis client did not close cleanly")
	}
	if err := db.Close(); err != nil {
		logger.WithError(err).Warn("Database did not close cleanly")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Tracing did not shut down cleanly")
	}

	logger.Info("Shutdown complete")
}

func newLogger(cfg *config.Config) ectologger.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		level = parsed
	}

	var zapCfg zap.Config
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapCfg.Build()
	if err != nil {
		zapLogger = zap.NewNop()
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func connectDatabase(cfg *config.Config, logger ectologger.Logger) (database.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword,
		cfg.DatabaseName, cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DatabaseName, err)
	}

	db := database.NewDatabaseInstance(sqlxDB, logger)
	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	logger.Infof("Connected to source database %s at %s:%s", cfg.DatabaseName, cfg.DatabaseHost, cfg.DatabasePort)

	return db, nil
}
