package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/tu-usuario/comercio-pro/internal/application/inventory"
	"github.com/tu-usuario/comercio-pro/internal/application/sales"
	"github.com/tu-usuario/comercio-pro/internal/infrastructure/postgres"
	"github.com/tu-usuario/comercio-pro/internal/jobs"
	"github.com/tu-usuario/comercio-pro/pkg/config"
	"github.com/tu-usuario/comercio-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("redis", cfg.Redis.Addr).
		Msg("iniciando worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	sessionRepo := postgres.NewCashSessionRepository(pool)
	authRepo := postgres.NewAuthorizationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockLedgerUC := inventory.NewStockLedgerUseCase(txRunner, movementRepo, productRepo, log)
	saleUC := sales.NewSaleUseCase(txRunner, stockLedgerUC, productRepo, sessionRepo, saleRepo, log)

	worker, err := jobs.NewWorker(cfg, &jobs.Handlers{
		SaleUC:     saleUC,
		MovRepo:    movementRepo,
		AuthRepo:   authRepo,
		StaleAfter: time.Duration(cfg.Worker.StaleAfterHours) * time.Hour,
		Log:        log,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
