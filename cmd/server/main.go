package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mandi-backend/internal/app"
	"mandi-backend/internal/auth"
	"mandi-backend/internal/cache"
	"mandi-backend/internal/config"
	"mandi-backend/internal/database"
	"mandi-backend/internal/db"
	"mandi-backend/internal/events"
	h "mandi-backend/internal/http"
	"mandi-backend/internal/handlers"
	"mandi-backend/internal/health"
	"mandi-backend/internal/logger"
	"mandi-backend/internal/metrics"
	"mandi-backend/internal/middleware"
	"mandi-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "HTTP port (overrides server.port)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logr, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logr.Sync()

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefixes, err := cfg.Prefixes()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	logr.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	collector := metrics.NewCollector(metrics.PoolStats(pool), 15*time.Second, logr)
	collector.Start()
	defer collector.Stop()

	migrator := database.NewMigratorWithFS(pool, migrations.FS, ".", logr)
	if err := migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Redis is optional; without it Idempotency-Key is ignored
	redisClient, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logr.Warn("redis unavailable, idempotency disabled", zap.Error(err))
	}
	idempotency := cache.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL())
	if idempotency.Enabled() {
		defer redisClient.Close()
		logr.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafka.Close()
		publisher = kafka
		logr.Info("kafka publisher ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	services := app.New(pool, prefixes, publisher, logr)

	var checker *health.HealthChecker
	if idempotency.Enabled() {
		checker = health.NewHealthChecker(pool, idempotency)
	} else {
		checker = health.NewHealthChecker(pool, nil)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)

	router := h.NewRouter(
		handlers.NewStatementHandler(services.Statements, logr.Named("http")),
		handlers.NewBillHandler(services.Billing, logr.Named("http")),
		handlers.NewSoudaHandler(services.Soudas, logr.Named("http")),
		handlers.NewCashBookHandler(services.CashBook, logr.Named("http")),
		handlers.NewSequenceHandler(services.Sequences, logr.Named("http")),
		handlers.NewHealthHandler(checker),
		middleware.NewAuthMiddleware(jwtManager),
		idempotency,
		logr.Named("http"),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           middleware.NewCORS(cfg)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
