package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tradelog/trading-journal-backend/internal/api/handlers"
	custommiddleware "github.com/tradelog/trading-journal-backend/internal/api/middleware"
	"github.com/tradelog/trading-journal-backend/internal/config"
	"github.com/tradelog/trading-journal-backend/internal/importer"
	"github.com/tradelog/trading-journal-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	tradeService *service.TradeService,
	statisticsService *service.StatisticsService,
	kiteService *service.KiteService,
	imp *importer.Importer,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/trade", func(r chi.Router) {
			tradeHandler := handlers.NewTradeHandler(tradeService)
			exitHandler := handlers.NewExitHandler(tradeService)

			r.Get("/", tradeHandler.AllTrades)
			r.Post("/", tradeHandler.CreateTrade)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", tradeHandler.GetTrade)
				r.Put("/", tradeHandler.UpdateTrade)
				r.Delete("/", tradeHandler.DeleteTrade)
				r.Put("/price", tradeHandler.UpdatePrice)
				r.Put("/stoploss", tradeHandler.UpdateStopLoss)

				r.Post("/exit", exitHandler.RecordExit)
				r.Put("/exit/{exitId}", exitHandler.UpdateExit)
				r.Delete("/exit/{exitId}", exitHandler.DeleteExit)
			})
		})

		r.Route("/statistics", func(r chi.Router) {
			statisticsHandler := handlers.NewStatisticsHandler(statisticsService)
			r.Get("/", statisticsHandler.GetStatistics)
		})

		r.Route("/import", func(r chi.Router) {
			importHandler := handlers.NewImportHandler(imp, kiteService)
			r.Post("/csv", importHandler.ImportCSV)
			r.Post("/orders", importHandler.ImportOrders)
		})

		r.Route("/kite", func(r chi.Router) {
			kiteHandler := handlers.NewKiteHandler(kiteService)
			r.Get("/login", kiteHandler.Login)
			r.Post("/token", kiteHandler.ExchangeToken)
			r.Get("/holdings", kiteHandler.Holdings)
		})
	})

	return r
}
