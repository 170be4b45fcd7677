package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mixhouse_backend/internal/adapters/storage"
	"mixhouse_backend/internal/catalog"
	"mixhouse_backend/internal/contact"
	apphttp "mixhouse_backend/internal/http"
	"mixhouse_backend/internal/http/router"
	"mixhouse_backend/internal/notify"
	"mixhouse_backend/internal/payment"
	"mixhouse_backend/internal/payment/gateway"
	"mixhouse_backend/internal/services"
	svclifecycle "mixhouse_backend/internal/services/service"
	"mixhouse_backend/migrations"
	"mixhouse_backend/platform/config"
	"mixhouse_backend/platform/db"
	"mixhouse_backend/platform/logger"
	"mixhouse_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for customer uploads and engineer deliveries (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "uploads", cfg.GetBucketUploads())
	ensureBucket(ctx, log, storageSvc, "deliveries", cfg.GetBucketDeliveries())
	log.Info(
		"storage service initialized",
		"uploadsBucket", cfg.GetBucketUploads(),
		"deliveriesBucket", cfg.GetBucketDeliveries(),
	)

	// Notification queue producer; the worker binary consumes it
	queueClient, err := notify.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		panic("failed to initialize notification queue client: " + err.Error())
	}
	defer queueClient.Close()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, val, log)

	servicesModule := services.NewModule(pool, storageSvc, queueClient, svclifecycle.Config{
		BucketUploads:    cfg.GetBucketUploads(),
		BucketDeliveries: cfg.GetBucketDeliveries(),
		MasterMail:       cfg.GetMasterMailAddress(),
	}, val, log)

	gatewayClient := gateway.NewClient(cfg)
	paymentModule := payment.NewModule(pool, gatewayClient, catalogModule.Service(), servicesModule.Service(), cfg, val, log)

	contactModule := contact.NewModule(pool, queueClient, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			catalogModule,
			servicesModule,
			paymentModule,
			contactModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
