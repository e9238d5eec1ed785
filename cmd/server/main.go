package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	httpapi "kikoba-backend/internal/api/http"
	"kikoba-backend/internal/cache"
	"kikoba-backend/internal/config"
	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/logger"
	"kikoba-backend/internal/repository/document"
	"kikoba-backend/internal/security"
	"kikoba-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Kikoba Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Document store configuration", "database", cfg.Mongo.Database)

	// Initialize document store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := docstore.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Error("Failed to connect to document store", "error", err)
		log.Fatalf("Failed to connect to document store: %v", err)
	}
	defer client.Disconnect(context.Background())
	logger.Info("Document store connection established")

	// Initialize repositories
	store := document.NewStore(docstore.NewMongoStore(client, cfg.Mongo.Database))

	// Initialize balance cache
	var balanceCache service.BalanceCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to ping redis", "error", err)
			log.Fatalf("Failed to ping redis: %v", err)
		}
		balanceCache = cache.NewRedisBalanceCache(redisClient)
		logger.Info("Balance cache enabled", "addr", cfg.Redis.Addr)
	} else {
		balanceCache = cache.NewNoop()
		logger.Info("Balance cache disabled, deriving balances on every read")
	}

	// Initialize security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize services
	balanceSvc := service.NewBalanceService(store.LedgerRepository, store.MemberRepository, balanceCache)
	ledgerSvc := service.NewLedgerService(store.LedgerRepository, store.MemberRepository, store.ActivityLogRepository, balanceCache)
	loanSvc := service.NewLoanService(store.LoanRequestRepository, store.LedgerRepository, store.MemberRepository, store.ActivityLogRepository, balanceCache)
	penaltySvc := service.NewPenaltyService(
		store.LedgerRepository,
		store.ActivityLogRepository,
		balanceCache,
		cfg.Penalty.OverdueDays,
		decimal.NewFromInt(cfg.Penalty.Fee),
	)
	importSvc := service.NewImportService(store.LedgerRepository, store.MemberRepository, store.ActivityLogRepository, balanceCache)
	activitySvc := service.NewActivityService(store.ActivityLogRepository)

	// Set up HTTP server
	server := httpapi.NewServer(balanceSvc, ledgerSvc, loanSvc, penaltySvc, importSvc, activitySvc)
	router := httpapi.NewRouter(server, tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
