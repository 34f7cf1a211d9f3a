package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradelog/trading-journal-backend/internal/api/request"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/testutil"
)

func setupStatisticsHandler(t *testing.T) (*StatisticsHandler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	return NewStatisticsHandler(testutil.NewTestStatisticsService(t, db)), db
}

func TestStatisticsHandler_GetStatistics(t *testing.T) {
	t.Run("returns zeroed statistics for an empty journal", func(t *testing.T) {
		// Setup
		handler, _ := setupStatisticsHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.GetStatistics(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var stats model.Statistics
		testutil.DecodeResponse(t, w, &stats)

		if stats.TotalTrades != 0 {
			t.Errorf("Expected 0 total trades, got %d", stats.TotalTrades)
		}
		if stats.WinRate != 0 {
			t.Errorf("Expected win rate 0, got %f", stats.WinRate)
		}
	})

	t.Run("aggregates open and closed trades", func(t *testing.T) {
		// Setup
		handler, db := setupStatisticsHandler(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		ctx := context.Background()

		winner, err := tradeSvc.CreateTrade(ctx, request.CreateTradeRequest{
			Symbol: "INFY", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})
		if err != nil {
			t.Fatalf("CreateTrade() returned unexpected error: %v", err)
		}
		if _, err := tradeSvc.RecordExit(ctx, winner.ID, request.CreateExitRequest{
			ExitDate: "2024-02-01", ExitPrice: 110, Quantity: 100,
		}); err != nil {
			t.Fatalf("RecordExit() returned unexpected error: %v", err)
		}
		testutil.NewTrade().WithSymbol("TCS").WithCurrentPrice(105).Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.GetStatistics(w, req)

		// Assert
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var stats model.Statistics
		testutil.DecodeResponse(t, w, &stats)

		if stats.TotalTrades != 2 {
			t.Errorf("Expected 2 total trades, got %d", stats.TotalTrades)
		}
		if stats.OpenTrades != 1 {
			t.Errorf("Expected 1 open trade, got %d", stats.OpenTrades)
		}
	})

	t.Run("returns 500 when the database is unavailable", func(t *testing.T) {
		// Setup
		handler, db := setupStatisticsHandler(t)
		db.Close() //nolint:errcheck // Intentionally closing to simulate database failure

		req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
		w := httptest.NewRecorder()

		// Execute
		handler.GetStatistics(w, req)

		// Assert
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
	})
}
