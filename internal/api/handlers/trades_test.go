package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradelog/trading-journal-backend/internal/api/request"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/service"
	"github.com/tradelog/trading-journal-backend/internal/testutil"
)

func setupTradeHandler(t *testing.T) (*TradeHandler, *service.TradeService, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ts := testutil.NewTestTradeService(t, db)
	return NewTradeHandler(ts), ts, db
}

func TestTradeHandler_AllTrades(t *testing.T) {
	t.Run("returns empty array when no trades exist", func(t *testing.T) {
		handler, _, _ := setupTradeHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/trade", nil)
		w := httptest.NewRecorder()

		handler.AllTrades(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Trade
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d trades", len(response))
		}
	})

	t.Run("returns all trades with exits", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)
		ctx := context.Background()

		trade, _ := ts.CreateTrade(ctx, request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})
		ts.RecordExit(ctx, trade.ID, request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 40})

		req := httptest.NewRequest(http.MethodGet, "/api/trade", nil)
		w := httptest.NewRecorder()

		handler.AllTrades(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Trade
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(response))
		}
		if len(response[0].Exits) != 1 {
			t.Errorf("Expected trade to carry its exit, got %d", len(response[0].Exits))
		}
		if response[0].Status != model.TradeStatusPartial {
			t.Errorf("Expected PARTIAL, got %s", response[0].Status)
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		handler, _, db := setupTradeHandler(t)
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/trade", nil)
		w := httptest.NewRecorder()

		handler.AllTrades(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
	})
}

func TestTradeHandler_GetTrade(t *testing.T) {
	t.Run("returns trade by id", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/"+trade.ID, map[string]string{"uuid": trade.ID})
		w := httptest.NewRecorder()

		handler.GetTrade(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.ID != trade.ID {
			t.Errorf("Expected trade %s, got %s", trade.ID, response.ID)
		}
	})

	t.Run("returns 404 for unknown trade", func(t *testing.T) {
		handler, _, _ := setupTradeHandler(t)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/trade/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.GetTrade(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestTradeHandler_CreateTrade(t *testing.T) {
	t.Run("creates a trade", func(t *testing.T) {
		handler, _, _ := setupTradeHandler(t)

		body := request.CreateTradeRequest{
			Symbol: "TCS", TradeType: "LONG", EntryDate: "2024-03-01", EntryPrice: 4000, Quantity: 5,
		}
		req := testutil.NewRequestWithBody(http.MethodPost, "/api/trade", nil, body)
		w := httptest.NewRecorder()

		handler.CreateTrade(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.Symbol != "TCS" || response.Status != model.TradeStatusOpen {
			t.Errorf("Unexpected trade: %+v", response)
		}
	})

	t.Run("rejects validation failures", func(t *testing.T) {
		handler, _, _ := setupTradeHandler(t)

		body := request.CreateTradeRequest{
			Symbol: "", TradeType: "SIDEWAYS", EntryDate: "garbage", EntryPrice: -1, Quantity: 0,
		}
		req := testutil.NewRequestWithBody(http.MethodPost, "/api/trade", nil, body)
		w := httptest.NewRecorder()

		handler.CreateTrade(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		handler, _, _ := setupTradeHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/trade", nil)
		w := httptest.NewRecorder()

		handler.CreateTrade(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestTradeHandler_UpdateTrade(t *testing.T) {
	t.Run("entry price edit re-derives exit pnls", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)
		ctx := context.Background()

		trade, _ := ts.CreateTrade(ctx, request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})
		ts.RecordExit(ctx, trade.ID, request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 40})

		entryPrice := 95.0
		body := request.UpdateTradeRequest{EntryPrice: &entryPrice}
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID, map[string]string{"uuid": trade.ID}, body)
		w := httptest.NewRecorder()

		handler.UpdateTrade(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.Exits[0].Pnl != 1000 {
			t.Errorf("Expected re-derived pnl 1000, got %v", response.Exits[0].Pnl)
		}
	})

	t.Run("rejects quantity below exited total", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)
		ctx := context.Background()

		trade, _ := ts.CreateTrade(ctx, request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})
		ts.RecordExit(ctx, trade.ID, request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 40})

		quantity := 30.0
		body := request.UpdateTradeRequest{Quantity: &quantity}
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID, map[string]string{"uuid": trade.ID}, body)
		w := httptest.NewRecorder()

		handler.UpdateTrade(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTradeHandler_DeleteTrade(t *testing.T) {
	t.Run("deletes an existing trade", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/trade/"+trade.ID, map[string]string{"uuid": trade.ID})
		w := httptest.NewRecorder()

		handler.DeleteTrade(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", w.Code)
		}
	})

	t.Run("returns 404 for unknown trade", func(t *testing.T) {
		handler, _, _ := setupTradeHandler(t)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/trade/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.DeleteTrade(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestTradeHandler_UpdatePrice(t *testing.T) {
	t.Run("sets and clears the stored quote", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})

		price := 105.0
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID+"/price", map[string]string{"uuid": trade.ID}, request.UpdatePriceRequest{CurrentPrice: &price})
		w := httptest.NewRecorder()

		handler.UpdatePrice(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.CurrentPrice == nil || *response.CurrentPrice != 105 {
			t.Errorf("Expected current price 105, got %v", response.CurrentPrice)
		}

		// Clear it
		req = testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID+"/price", map[string]string{"uuid": trade.ID}, request.UpdatePriceRequest{})
		w = httptest.NewRecorder()

		handler.UpdatePrice(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		testutil.DecodeResponse(t, w, &response)
		if response.CurrentPrice != nil {
			t.Errorf("Expected cleared price, got %v", *response.CurrentPrice)
		}
	})
}

func TestTradeHandler_UpdateStopLoss(t *testing.T) {
	t.Run("sets the trailing stop", func(t *testing.T) {
		handler, ts, _ := setupTradeHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})

		stop := 97.0
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID+"/stoploss", map[string]string{"uuid": trade.ID}, request.UpdateStopLossRequest{CurrentStopLoss: &stop})
		w := httptest.NewRecorder()

		handler.UpdateStopLoss(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.CurrentStopLoss == nil || *response.CurrentStopLoss != 97 {
			t.Errorf("Expected trailing stop 97, got %v", response.CurrentStopLoss)
		}
	})
}
