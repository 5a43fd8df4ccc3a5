package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/internal/config"
	"github.com/tychicus04/web-ban-den-sub006/internal/handler"
	appmiddleware "github.com/tychicus04/web-ban-den-sub006/internal/middleware"
	"github.com/tychicus04/web-ban-den-sub006/internal/pub"
	"github.com/tychicus04/web-ban-den-sub006/internal/repository"
	"github.com/tychicus04/web-ban-den-sub006/internal/usecase"
	"github.com/tychicus04/web-ban-den-sub006/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewWalletServer wires the seller wallet HTTP server and blocks serving it
// until the context is cancelled.
func NewWalletServer(ctx context.Context, cfg config.AppConfig) error {
	// --- DB connection ---
	dbpool, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbpool.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- Redis client ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	defer func() { _ = rdb.Close() }()

	// --- Kafka writer ---
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    pub.WalletEventsTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer func() { _ = kafkaWriter.Close() }()

	refGen := utils.NewReferenceGenerator()
	publisher := pub.NewWalletEventPublisher(rdb, kafkaWriter, logger)

	// --- Repositories ---
	runner := repository.NewTxRunner(dbpool)
	accountRepo := repository.NewAccountRepo(dbpool)
	ledgerRepo := repository.NewLedgerRepo(dbpool)
	orderRepo := repository.NewOrderRepo(dbpool)

	// --- Usecases ---
	balanceUC := usecase.NewBalanceUsecase(accountRepo, ledgerRepo, rdb, logger)
	depositUC := usecase.NewDepositUsecase(runner, accountRepo, ledgerRepo, balanceUC, refGen, publisher, logger)
	withdrawUC := usecase.NewWithdrawUsecase(runner, accountRepo, ledgerRepo, refGen, publisher, logger)
	approvalUC := usecase.NewApprovalUsecase(runner, accountRepo, ledgerRepo, balanceUC, publisher, logger)
	orderUC := usecase.NewOrderStatusUsecase(runner, orderRepo, publisher, logger)

	// --- Handlers ---
	walletHandler := handler.NewWalletHandler(depositUC, withdrawUC, balanceUC, approvalUC)
	orderHandler := handler.NewOrderHandler(orderUC)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Seller surface.
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Identity)
		r.Use(appmiddleware.Idempotency(rdb, logger))
		walletHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
	})

	// Back-office review surface. Gated on operator identity so a seller
	// can never resolve a pending entry, least of all their own.
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Operator)
		walletHandler.RegisterOperatorRoutes(r)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Seller wallet HTTP server listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
