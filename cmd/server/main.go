package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tradelog/trading-journal-backend/internal/api"
	"github.com/tradelog/trading-journal-backend/internal/config"
	"github.com/tradelog/trading-journal-backend/internal/database"
	"github.com/tradelog/trading-journal-backend/internal/importer"
	"github.com/tradelog/trading-journal-backend/internal/ipo"
	"github.com/tradelog/trading-journal-backend/internal/kite"
	"github.com/tradelog/trading-journal-backend/internal/quote"
	"github.com/tradelog/trading-journal-backend/internal/repository"
	"github.com/tradelog/trading-journal-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	tradeRepo := repository.NewTradeRepository(db)
	exitRepo := repository.NewExitRepository(db)
	kiteSessionRepo := repository.NewKiteSessionRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	tradeService := service.NewTradeService(db, tradeRepo, exitRepo)
	statisticsService := service.NewStatisticsService(tradeService)

	kiteClient := kite.NewConnectClient(cfg.Kite.APIKey, cfg.Kite.APISecret)
	kiteService := service.NewKiteService(kiteClient, kiteSessionRepo, cfg.Kite.TokenKey)

	quoteClient := quote.NewFinanceClient()

	var ipoService ipo.Service
	if cfg.IPO.BaseURL != "" {
		ipoService = ipo.NewClient(cfg.IPO.BaseURL)
	}

	imp := importer.New(tradeService, quoteClient, ipoService)

	// Background live-price refresh
	priceService := service.NewPriceService(tradeService, quoteClient)
	scheduler := cron.New()
	if cfg.Prices.RefreshSpec != "" {
		_, err := scheduler.AddFunc(cfg.Prices.RefreshSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
			defer cancel()
			priceService.Refresh(ctx)
		})
		if err != nil {
			log.Fatalf("Invalid PRICE_REFRESH_SPEC %q: %v", cfg.Prices.RefreshSpec, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Create router
	router := api.NewRouter(systemService, tradeService, statisticsService, kiteService, imp, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
