package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	redisclient "github.com/mikesamcali-dev/memoryconnector-backend/internal/clients/redis"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/db"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/handlers"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/envutil"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/openai"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/server"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/services"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	gdb := postgresService.DB()

	// Redis
	rdb, err := redisclient.NewClient(log)
	if err != nil {
		log.Fatal("Redis init failed", "error", err)
	}
	stateStore := redisclient.NewStateStore(rdb)

	// OpenAI (optional: enrichment degrades gracefully without a credential)
	var aiClient openai.Client
	if client, err := openai.NewClient(log); err != nil {
		log.Info("OpenAI client not configured, enrichment will degrade", "reason", err.Error())
	} else {
		aiClient = client
	}

	// Repos
	memoryRepo := repos.NewMemoryRepo(gdb, log)
	costRecordRepo := repos.NewCostRecordRepo(gdb, log)
	personRepo := repos.NewPersonRepo(gdb, log)
	locationRepo := repos.NewLocationRepo(gdb, log)
	eventRepo := repos.NewEventRepo(gdb, log)
	wordRepo := repos.NewWordRepo(gdb, log)
	linkRepo := repos.NewMemoryWordLinkRepo(gdb, log)

	// Services
	aiCostCfg := services.LoadAICostConfig()
	alerting := services.NewAlertingService(log)
	circuitBreaker := services.NewCircuitBreakerService(stateStore, costRecordRepo, alerting, aiCostCfg, log)
	queue := services.NewEnrichmentQueueService(stateStore, circuitBreaker, memoryRepo, log)
	wordsService := services.NewWordsService(wordRepo, log)
	extraction := services.NewLLMExtractionService(aiClient, log)
	entityProcessor := services.NewEntityProcessorService(aiClient, memoryRepo, personRepo, locationRepo, eventRepo, wordsService, linkRepo, log)
	enrichment := services.NewEnrichmentService(aiClient, memoryRepo, circuitBreaker, queue, extraction, entityProcessor, aiCostCfg, log)
	processor := services.NewEnrichmentProcessor(queue, enrichment, log)
	worker := services.NewEnrichmentWorker(processor, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	// Router
	router := server.NewRouter(server.RouterConfig{
		MemoryHandler: handlers.NewMemoryHandler(memoryRepo, queue, log),
		AdminHandler:  handlers.NewAdminHandler(circuitBreaker, worker, log),
	})

	port := envutil.String("PORT", "8080")
	log.Info("Starting server", "port", port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(":" + port)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("Server exited", "error", err)
	case sig := <-sigCh:
		log.Info("Shutting down", "signal", sig.String())
	}

	worker.Stop()
	_ = rdb.Close()
}
