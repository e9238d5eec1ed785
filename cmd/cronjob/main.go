package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"kikoba-backend/internal/cache"
	"kikoba-backend/internal/config"
	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/jobs"
	"kikoba-backend/internal/logger"
	"kikoba-backend/internal/repository/document"
	"kikoba-backend/internal/scheduler"
	"kikoba-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'penalty-sweep', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Kikoba Cronjob Runner...", "log_level", cfg.Log.Level)

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
		balanceCache = cache.NewRedisBalanceCache(redisClient)
	} else {
		balanceCache = cache.NewNoop()
	}

	// Initialize services
	balanceSvc := service.NewBalanceService(store.LedgerRepository, store.MemberRepository, balanceCache)
	penaltySvc := service.NewPenaltyService(
		store.LedgerRepository,
		store.ActivityLogRepository,
		balanceCache,
		cfg.Penalty.OverdueDays,
		decimal.NewFromInt(cfg.Penalty.Fee),
	)

	jobServices := &jobs.Services{
		Balance: balanceSvc,
		Penalty: penaltySvc,
		Members: store.MemberRepository,
	}

	// Initialize job runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "penalty-sweep":
		jobRunner.PenaltySweep()
	case "outstanding-summary":
		jobRunner.OutstandingLoanSummary()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - penalty-sweep\n")
		fmt.Printf("  - outstanding-summary\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
