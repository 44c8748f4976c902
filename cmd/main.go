package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paycore/payment-processor/internal/api"
	"github.com/paycore/payment-processor/internal/config"
	"github.com/paycore/payment-processor/internal/events"
	"github.com/paycore/payment-processor/internal/interfaces"
	"github.com/paycore/payment-processor/internal/lock"
	"github.com/paycore/payment-processor/internal/repository"
	"github.com/paycore/payment-processor/internal/repository/memory"
	"github.com/paycore/payment-processor/internal/service"
	"github.com/paycore/payment-processor/internal/telemetry"
)

func main() {
	cfg := config.Load()

	if err := telemetry.Init("payment-processor"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Payment Processor")

	// Storage: Postgres when configured, in-memory otherwise.
	var (
		paymentRepo interfaces.PaymentRepository
		auditRepo   interfaces.AuditRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		pgPayments := repository.NewPaymentRepository(db)
		if err := pgPayments.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize payments schema", zap.Error(err))
		}
		pgAudits := repository.NewAuditRepository(db)
		if err := pgAudits.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize audit schema", zap.Error(err))
		}
		paymentRepo, auditRepo = pgPayments, pgAudits
	} else {
		telemetry.Logger.Warn("DATABASE_URL not set, using in-memory storage")
		paymentRepo, auditRepo = memory.NewPaymentRepository(), memory.NewAuditRepository()
	}

	// Account locking: Redis across processes, mutexes within one.
	var locker interfaces.AccountLocker = lock.NewMemoryLocker()
	if cfg.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		locker = lock.NewRedisLocker(redisClient)
	}

	// Status-transition events.
	var publisher interfaces.TransitionPublisher = events.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Fraud screening: remote over NATS or the local mock.
	var fraudChecker interfaces.FraudChecker
	if cfg.RemoteFraudCheck {
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()
		fraudChecker = service.NewRemoteFraudChecker(nc, 5*time.Second)
	} else {
		var scorer service.RiskScorer = service.NewRandomScorer(time.Now().UnixNano())
		if cfg.DeterministicFraud {
			scorer = service.DeterministicScorer{}
		}
		fraudChecker = service.NewFraudService(scorer)
	}

	auditService := service.NewAuditService(auditRepo)
	accountService := service.NewAccountService()
	orchestrator := service.NewOrchestrator(paymentRepo, auditService, accountService, fraudChecker, locker, publisher)

	r := api.NewRouter(orchestrator, auditService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		telemetry.Logger.Info("Payment Processor starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
