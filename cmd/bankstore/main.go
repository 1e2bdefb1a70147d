package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pradipta/bankstore-go/internal/config"
	"github.com/pradipta/bankstore-go/internal/handler"
	"github.com/pradipta/bankstore-go/internal/infra/blobstore"
	"github.com/pradipta/bankstore-go/internal/infra/observability"
	"github.com/pradipta/bankstore-go/internal/infra/resilience"
	"github.com/pradipta/bankstore-go/internal/port"
	"github.com/pradipta/bankstore-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("bank_blob", cfg.BankBlobPath()),
		zap.String("store_blob", cfg.StoreBlobPath()),
		zap.Int("save_max_retries", cfg.SaveMaxRetries),
		zap.Duration("save_initial_backoff", cfg.SaveInitialBackoff),
		zap.Int("dormant_threshold_days", cfg.DormantThresholdDays),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "bankstore")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence ---
	var archiver port.Archiver = blobstore.New(cfg.BankBlobPath(), cfg.StoreBlobPath(), metrics, logger)

	ctx := context.Background()

	bankSnap, err := archiver.LoadBank(ctx)
	if err != nil {
		logger.Warn("bank blob unreadable, starting with empty ledger", zap.Error(err))
	}
	if bankSnap.Name == "" {
		bankSnap.ID = int32(cfg.BankID)
		bankSnap.Name = cfg.BankName
	}
	storeSnap, err := archiver.LoadStore(ctx)
	if err != nil {
		logger.Warn("store blob unreadable, starting with empty ledger", zap.Error(err))
	}

	// --- Services ---
	bankSvc := service.NewBankService(bankSnap.ID, bankSnap.Name, cfg.BankAddress, cfg.BankPhone, metrics, logger)
	bankSvc.Hydrate(bankSnap)

	storeSvc := service.NewStoreService(bankSvc, metrics, logger)
	storeSvc.Hydrate(storeSnap)

	logger.Info("ledgers hydrated",
		zap.Int("accounts", len(bankSnap.Accounts)),
		zap.Int("transfers", len(bankSnap.Transfers)),
		zap.Int("items", len(storeSnap.Items)),
		zap.Int("purchases", len(storeSnap.Purchases)),
	)

	// --- Router ---
	router := handler.NewRouter(bankSvc, storeSvc, metrics, logger, handler.Options{
		DormantThresholdDays: cfg.DormantThresholdDays,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}

	// --- Flush ledgers ---
	// A failed flush is fatal so the operator knows state on disk is
	// stale.
	retryCfg := resilience.Config{
		MaxRetries:     cfg.SaveMaxRetries,
		InitialBackoff: cfg.SaveInitialBackoff,
	}
	if err := flushLedgers(archiver, bankSvc, storeSvc, retryCfg, flushTimeout); err != nil {
		logger.Fatal("ledger flush failed", zap.Error(err))
	}

	logger.Info("ledgers flushed, server stopped")
}

const flushTimeout = 30 * time.Second

// flushLedgers persists both ledgers in parallel with retry. It runs
// on its own deadline, never the HTTP drain context: a slow connection
// drain that exhausts the shutdown budget must not cost the final save.
func flushLedgers(archiver port.Archiver, bankSvc *service.BankService, storeSvc *service.StoreService, retryCfg resilience.Config, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return resilience.RetryWithBackoff(ctx, retryCfg, func() error {
			return archiver.SaveBank(ctx, bankSvc.Snapshot())
		})
	})
	g.Go(func() error {
		return resilience.RetryWithBackoff(ctx, retryCfg, func() error {
			return archiver.SaveStore(ctx, storeSvc.Snapshot())
		})
	})
	return g.Wait()
}
