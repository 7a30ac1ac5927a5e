package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	api "github.com/ladoyle/simple-mail-bot/cmd/api"
	accountdomain "github.com/ladoyle/simple-mail-bot/internal/account/domain"
	accountRepo "github.com/ladoyle/simple-mail-bot/internal/account/repository"
	accountUsecase "github.com/ladoyle/simple-mail-bot/internal/account/usecase"
	"github.com/ladoyle/simple-mail-bot/internal/engine"
	labeldomain "github.com/ladoyle/simple-mail-bot/internal/label/domain"
	labelRepo "github.com/ladoyle/simple-mail-bot/internal/label/repository"
	labelUsecase "github.com/ladoyle/simple-mail-bot/internal/label/usecase"
	ruledomain "github.com/ladoyle/simple-mail-bot/internal/rule/domain"
	ruleRepo "github.com/ladoyle/simple-mail-bot/internal/rule/repository"
	ruleUsecase "github.com/ladoyle/simple-mail-bot/internal/rule/usecase"
	statsdomain "github.com/ladoyle/simple-mail-bot/internal/stats/domain"
	statsRepo "github.com/ladoyle/simple-mail-bot/internal/stats/repository"
	statsUsecase "github.com/ladoyle/simple-mail-bot/internal/stats/usecase"
	"github.com/ladoyle/simple-mail-bot/pkg/config"
	"github.com/ladoyle/simple-mail-bot/pkg/database"
	"github.com/ladoyle/simple-mail-bot/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&accountdomain.Account{}, &ruledomain.Rule{}, &labeldomain.Label{}, &statsdomain.Statistic{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	accountRepository := accountRepo.NewAccountRepository(db)
	ruleRepository := ruleRepo.NewRuleRepository(db)
	labelRepository := labelRepo.NewLabelRepository(db)
	statRepository := statsRepo.NewStatRepository(db)

	// Initialize Gmail service
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)

	// Initialize use cases (dependency injection)
	oauthUsecaseInstance := accountUsecase.NewOAuthUsecase(accountRepository, gmailService, cfg)
	ruleUsecaseInstance := ruleUsecase.NewRuleUsecase(ruleRepository, accountRepository, gmailService)
	labelUsecaseInstance := labelUsecase.NewLabelUsecase(labelRepository, accountRepository, gmailService)
	statsUsecaseInstance := statsUsecase.NewStatsUsecase(statRepository, accountRepository, gmailService)

	// Initialize the aggregation engine
	historySource := engine.NewGmailHistorySource(gmailService, accountRepository)
	aggEngine := engine.New(accountRepository, ruleRepository, statRepository, historySource, engine.Options{
		RunHour:      cfg.EngineRunHour,
		RunOnStart:   cfg.EngineRunOnStart,
		FetchRetries: cfg.EngineFetchRetries,
	})
	aggEngine.Start()
	log.Printf("[Main] aggregation engine started (daily run at %02d:00 UTC)", cfg.EngineRunHour)

	// Initialize HTTP handler
	handler := api.NewHandler(oauthUsecaseInstance, ruleUsecaseInstance, labelUsecaseInstance, statsUsecaseInstance)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", port)
		serverErr <- handler.Start(":" + port)
	}()

	// Shut the engine down cleanly on SIGINT/SIGTERM so an in-flight
	// aggregation pass can finish its commit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		aggEngine.Stop()
		log.Fatal("Failed to start server:", err)
	case sig := <-quit:
		log.Printf("[Main] received %s, shutting down", sig)
		aggEngine.Stop()
	}
}
