package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lnledger/config"
	httpHandler "lnledger/internal/adapter/http/handler"
	"lnledger/internal/adapter/lightning"
	pgStorage "lnledger/internal/adapter/storage/postgres"
	redisStorage "lnledger/internal/adapter/storage/redis"
	"lnledger/internal/core/ports"
	"lnledger/internal/eventbus"
	"lnledger/internal/reconciler"
	"lnledger/internal/service"
	"lnledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Lightning ledger gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := pgStorage.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Schema up to date")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	receiptRepo := pgStorage.NewReceiptRepo(pool)
	sendRepo := pgStorage.NewSendRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)

	// Initialize Redis stores
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	rateCache := redisStorage.NewRateCache(rdb)

	// Lightning node client and event bus
	node := lightning.NewClient(cfg.Node, log)
	bus := eventbus.New(log)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, cfg.Limits.MaxDailyNewUsers)
	settlementSvc := service.NewSettlementEngine(receiptRepo, sendRepo, ledgerRepo, bus, log)
	paymentSvc := service.NewPaymentService(
		invoiceRepo,
		sendRepo,
		ledgerRepo,
		node,
		lightning.DecodeBolt11,
		settlementSvc,
		bus,
		cfg.Fees,
		cfg.Limits,
		log,
	)
	adminSvc := service.NewAdminService(userRepo, settlementSvc, log)

	var rateSvc ports.RateService
	if cfg.Rates.FeedURL != "" {
		rateSvc = service.NewRateService(cfg.Rates, rateCache, log)
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Reconciliation loop: the only writer that settles node outcomes.
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	rec := reconciler.New(node, invoiceRepo, settlementSvc, log)
	recDone := make(chan error, 1)
	go func() {
		recDone <- rec.Run(runCtx)
	}()

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PaymentSvc:     paymentSvc,
		AdminSvc:       adminSvc,
		RateSvc:        rateSvc,
		TokenSvc:       tokenSvc,
		Bus:            bus,
		Node:           node,
		UserRepo:       userRepo,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, node},
		Server:         cfg.Server,
		Admin:          cfg.Admin,
		Limits:         cfg.Limits,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Shut down on signal, or when the reconciler halts on an integrity
	// violation (the ledger must be inspected before serving again).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	case err := <-recDone:
		if err != nil {
			log.Error().Err(err).Msg("Reconciler halted, shutting down")
		} else {
			log.Info().Msg("Reconciler stopped, shutting down")
		}
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
