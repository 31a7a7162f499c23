package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/client"
	"ucp-merchant-demo/internal/config"
	"ucp-merchant-demo/internal/logger"
	"ucp-merchant-demo/internal/model"
	"ucp-merchant-demo/internal/publisher"
	"ucp-merchant-demo/internal/repository"
	"ucp-merchant-demo/internal/server"
	"ucp-merchant-demo/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("env", cfg.Environment.Name))

	ctx := context.Background()

	db, err := client.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	productRepo := repository.NewProductRepository(db)
	if err := productRepo.Seed(ctx); err != nil {
		log.Fatal("catalog seed failed", zap.Error(err))
	}
	orderRepo := repository.NewOrderRepository(db)

	var sessions repository.SessionStore
	switch cfg.Checkout.SessionStore {
	case "memory":
		sessions = repository.NewMemorySessionStore()
	case "redis":
		rdb, err := client.InitRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis init failed", zap.Error(err))
		}
		defer rdb.Close()
		sessions = repository.NewRedisSessionStore(rdb, cfg.Redis.SessionTTL)
	case "database", "":
		sessions = repository.NewSessionRepository(db)
	default:
		log.Fatal("unknown session store", zap.String("session_store", cfg.Checkout.SessionStore))
	}

	var orderPublisher publisher.OrderPublisher = publisher.NopOrderPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		orderPublisher = publisher.NewKafkaOrderPublisher(cfg.Kafka.OrderTopic, cfg.Kafka.Brokers...)
	}
	defer orderPublisher.Close()

	policy := checkout.NewTablePolicy([]model.ShippingOption{
		{ID: checkout.ShippingStandardID, Title: "Standard Shipping", Amount: cfg.Shipping.StandardAmount, Description: "5-7 Days"},
		{ID: checkout.ShippingExpressID, Title: "Express Shipping", Amount: cfg.Shipping.ExpressAmount, Description: "1-2 Days"},
	}, cfg.Shipping.DefaultOption)

	merchantService := service.NewMerchantService(
		sessions,
		productRepo,
		orderRepo,
		repository.NewIdempotencyRepository(db),
		orderPublisher,
		policy,
		log,
		service.Options{
			Name:     "UCP Merchant Demo",
			BaseURL:  cfg.BaseURL,
			Currency: cfg.Checkout.Currency,
			UCP:      service.UCPContext(cfg.UCP.Version),
			Links: []model.Link{
				{Type: "privacy_policy", URL: cfg.UCP.PrivacyPolicyURL},
				{Type: "terms_of_service", URL: cfg.UCP.TermsURL},
			},
			MaxRetries: cfg.Checkout.MaxRetries,
		},
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(merchantService, log)

	log.Info("starting HTTP server",
		zap.String("addr", serverAddr),
		zap.String("session_store", cfg.Checkout.SessionStore),
		zap.String("database_driver", cfg.Database.Driver),
	)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}
