package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradelog/trading-journal-backend/internal/api/request"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/service"
	"github.com/tradelog/trading-journal-backend/internal/testutil"
)

func setupExitHandler(t *testing.T) (*ExitHandler, *service.TradeService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ts := testutil.NewTestTradeService(t, db)
	return NewExitHandler(ts), ts
}

func TestExitHandler_RecordExit(t *testing.T) {
	t.Run("records an exit and returns the updated trade", func(t *testing.T) {
		handler, ts := setupExitHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})

		body := request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 40}
		req := testutil.NewRequestWithBody(http.MethodPost, "/api/trade/"+trade.ID+"/exit", map[string]string{"uuid": trade.ID}, body)
		w := httptest.NewRecorder()

		handler.RecordExit(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.Status != model.TradeStatusPartial {
			t.Errorf("Expected PARTIAL, got %s", response.Status)
		}
		if response.BookedProfit != 800 {
			t.Errorf("Expected booked 800, got %v", response.BookedProfit)
		}
	})

	t.Run("rejects exit above remaining quantity", func(t *testing.T) {
		handler, ts := setupExitHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 10,
		})

		body := request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 11}
		req := testutil.NewRequestWithBody(http.MethodPost, "/api/trade/"+trade.ID+"/exit", map[string]string{"uuid": trade.ID}, body)
		w := httptest.NewRecorder()

		handler.RecordExit(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown trade", func(t *testing.T) {
		handler, _ := setupExitHandler(t)

		id := testutil.MakeID()
		body := request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 10}
		req := testutil.NewRequestWithBody(http.MethodPost, "/api/trade/"+id+"/exit", map[string]string{"uuid": id}, body)
		w := httptest.NewRecorder()

		handler.RecordExit(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestExitHandler_UpdateExit(t *testing.T) {
	t.Run("edits an exit", func(t *testing.T) {
		handler, ts := setupExitHandler(t)
		ctx := context.Background()

		trade, _ := ts.CreateTrade(ctx, request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})
		withExit, _ := ts.RecordExit(ctx, trade.ID, request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 120, Quantity: 40})

		price := 130.0
		body := request.UpdateExitRequest{ExitPrice: &price}
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID+"/exit/"+withExit.Exits[0].ID,
			map[string]string{"uuid": trade.ID, "exitId": withExit.Exits[0].ID}, body)
		w := httptest.NewRecorder()

		handler.UpdateExit(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.BookedProfit != 1200 {
			t.Errorf("Expected booked 1200, got %v", response.BookedProfit)
		}
	})

	t.Run("rejects malformed exit id", func(t *testing.T) {
		handler, ts := setupExitHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 100,
		})

		price := 130.0
		body := request.UpdateExitRequest{ExitPrice: &price}
		req := testutil.NewRequestWithBody(http.MethodPut, "/api/trade/"+trade.ID+"/exit/not-a-uuid",
			map[string]string{"uuid": trade.ID, "exitId": "not-a-uuid"}, body)
		w := httptest.NewRecorder()

		handler.UpdateExit(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestExitHandler_DeleteExit(t *testing.T) {
	t.Run("deleting an exit reopens the trade", func(t *testing.T) {
		handler, ts := setupExitHandler(t)
		ctx := context.Background()

		trade, _ := ts.CreateTrade(ctx, request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 50,
		})
		closed, _ := ts.RecordExit(ctx, trade.ID, request.CreateExitRequest{ExitDate: "2024-02-01", ExitPrice: 110, Quantity: 50})

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/trade/"+trade.ID+"/exit/"+closed.Exits[0].ID,
			map[string]string{"uuid": trade.ID, "exitId": closed.Exits[0].ID})
		w := httptest.NewRecorder()

		handler.DeleteExit(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Trade
		testutil.DecodeResponse(t, w, &response)
		if response.Status != model.TradeStatusOpen {
			t.Errorf("Expected OPEN, got %s", response.Status)
		}
	})

	t.Run("returns 404 for unknown exit", func(t *testing.T) {
		handler, ts := setupExitHandler(t)

		trade, _ := ts.CreateTrade(context.Background(), request.CreateTradeRequest{
			Symbol: "AAA", TradeType: "LONG", EntryDate: "2024-01-15", EntryPrice: 100, Quantity: 50,
		})

		exitID := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/trade/"+trade.ID+"/exit/"+exitID,
			map[string]string{"uuid": trade.ID, "exitId": exitID})
		w := httptest.NewRecorder()

		handler.DeleteExit(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}
