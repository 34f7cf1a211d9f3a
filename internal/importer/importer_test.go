package importer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/importer"
	"github.com/tradelog/trading-journal-backend/internal/ipo"
	"github.com/tradelog/trading-journal-backend/internal/kite"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/quote"
	"github.com/tradelog/trading-journal-backend/internal/testutil"
)

// stubQuotes serves canned daily lows keyed by symbol.
type stubQuotes struct {
	lows map[string]float64
}

func (s *stubQuotes) GetQuotes(_ context.Context, symbols []string) (map[string]quote.Quote, error) {
	return map[string]quote.Quote{}, nil
}

func (s *stubQuotes) GetQuotesForDate(_ context.Context, symbols []string, _ time.Time) (map[string]quote.Quote, error) {
	quotes := make(map[string]quote.Quote)
	for _, symbol := range symbols {
		if low, ok := s.lows[symbol]; ok {
			l := low
			quotes[symbol] = quote.Quote{Symbol: symbol, Price: low, Low: &l}
		}
	}
	return quotes, nil
}

// stubIPOs serves canned allotment metadata.
type stubIPOs struct {
	infos map[string]ipo.Info
}

func (s *stubIPOs) GetIPOInfo(_ context.Context, symbols []string, _ int) ([]ipo.Info, error) {
	var infos []ipo.Info
	for _, symbol := range symbols {
		if info, ok := s.infos[symbol]; ok {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

const tradebook = `symbol,isin,trade_date,exchange,segment,series,trade_type,auction,quantity,price
AAA-EQ,INE000000001,2024-01-15,NSE,EQ,EQ,buy,false,10,100
AAA-EQ,INE000000001,2024-02-01,NSE,EQ,EQ,sell,false,10,110
`

// TestImporter_ImportCSV tests the full CSV pipeline against a real database.
//
// WHY: The importer is the one writer that bypasses the HTTP layer. The
// persisted trades must come out with the same derived fields the engine
// would produce by hand, and re-importing the same file must be a no-op.
func TestImporter_ImportCSV(t *testing.T) {
	t.Run("imports a matched buy and sell as one closed trade", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		imp := importer.New(tradeSvc, nil, nil)

		// Execute
		result, err := imp.ImportCSV(context.Background(), strings.NewReader(tradebook), importer.Options{})

		// Assert
		if err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}
		if result.Imported != 1 || result.Skipped != 0 {
			t.Errorf("Expected 1 imported / 0 skipped, got %d / %d", result.Imported, result.Skipped)
		}

		trades, err := tradeSvc.ListTrades()
		if err != nil {
			t.Fatalf("ListTrades() returned unexpected error: %v", err)
		}
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}

		trade := trades[0]
		if trade.Symbol != "AAA" || trade.EntryPrice != 100 || trade.Quantity != 10 {
			t.Errorf("Unexpected trade: %+v", trade)
		}
		if trade.Status != model.TradeStatusClosed {
			t.Errorf("Expected CLOSED, got %s", trade.Status)
		}
		if len(trade.Exits) != 1 || trade.Exits[0].Pnl != 100 {
			t.Errorf("Expected one exit with pnl 100, got %+v", trade.Exits)
		}
		if trade.BookedProfit != 100 || trade.TotalPnl != 100 {
			t.Errorf("Expected booked 100, got %v", trade.BookedProfit)
		}
	})

	t.Run("re-running the same file imports nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		imp := importer.New(tradeSvc, nil, nil)
		ctx := context.Background()

		if _, err := imp.ImportCSV(ctx, strings.NewReader(tradebook), importer.Options{}); err != nil {
			t.Fatalf("First ImportCSV() returned unexpected error: %v", err)
		}

		result, err := imp.ImportCSV(ctx, strings.NewReader(tradebook), importer.Options{})
		if err != nil {
			t.Fatalf("Second ImportCSV() returned unexpected error: %v", err)
		}
		if result.Imported != 0 || result.Skipped != 1 {
			t.Errorf("Expected 0 imported / 1 skipped, got %d / %d", result.Imported, result.Skipped)
		}

		trades, _ := tradeSvc.ListTrades()
		if len(trades) != 1 {
			t.Errorf("Expected 1 trade after re-import, got %d", len(trades))
		}
	})

	t.Run("backfills setup stop loss from entry day low", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		quotes := &stubQuotes{lows: map[string]float64{"AAA": 98.5}}
		imp := importer.New(tradeSvc, quotes, nil)

		if _, err := imp.ImportCSV(context.Background(), strings.NewReader(tradebook), importer.Options{}); err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}

		trades, _ := tradeSvc.ListTrades()
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}
		if trades[0].SetupStopLoss == nil || *trades[0].SetupStopLoss != 98.5 {
			t.Errorf("Expected setup stop loss 98.5, got %v", trades[0].SetupStopLoss)
		}
	})

	t.Run("falls back to provided lows when quotes have none", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		imp := importer.New(tradeSvc, &stubQuotes{}, nil)

		opts := importer.Options{FallbackLows: map[string]float64{"AAA": 97}}
		if _, err := imp.ImportCSV(context.Background(), strings.NewReader(tradebook), opts); err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}

		trades, _ := tradeSvc.ListTrades()
		if trades[0].SetupStopLoss == nil || *trades[0].SetupStopLoss != 97 {
			t.Errorf("Expected fallback stop loss 97, got %v", trades[0].SetupStopLoss)
		}
	})

	t.Run("resolves IPO placeholders from allotment data", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		allotment := 329.0
		listing := time.Date(2023, 11, 22, 0, 0, 0, 0, time.UTC)
		ipos := &stubIPOs{infos: map[string]ipo.Info{
			"NEWIPO": {Symbol: "NEWIPO", AllotmentPrice: &allotment, ListingDate: &listing},
		}}
		imp := importer.New(tradeSvc, nil, ipos)

		input := "trade_date,symbol,trade_type,quantity,price\n" +
			"2024-02-01,NEWIPO,sell,10,650\n"

		if _, err := imp.ImportCSV(context.Background(), strings.NewReader(input), importer.Options{}); err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}

		trades, _ := tradeSvc.ListTrades()
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}
		trade := trades[0]
		if trade.TradeType != model.TradeTypeIPO {
			t.Errorf("Expected IPO trade, got %s", trade.TradeType)
		}
		if trade.EntryPrice != 329 {
			t.Errorf("Expected allotment price 329, got %v", trade.EntryPrice)
		}
		if !trade.EntryDate.Equal(listing) {
			t.Errorf("Expected listing date, got %v", trade.EntryDate)
		}
		if trade.PendingAllotmentBackfill {
			t.Error("Expected backfill flag cleared")
		}
		// (650-329)*10
		if trade.BookedProfit != 3210 {
			t.Errorf("Expected booked 3210, got %v", trade.BookedProfit)
		}
	})

	t.Run("keeps the placeholder when allotment lookup finds nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		imp := importer.New(tradeSvc, nil, &stubIPOs{})

		input := "trade_date,symbol,trade_type,quantity,price\n" +
			"2024-02-01,NEWIPO,sell,10,650\n"

		if _, err := imp.ImportCSV(context.Background(), strings.NewReader(input), importer.Options{}); err != nil {
			t.Fatalf("ImportCSV() returned unexpected error: %v", err)
		}

		trades, _ := tradeSvc.ListTrades()
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}
		if !trades[0].PendingAllotmentBackfill {
			t.Error("Expected placeholder to stay flagged for backfill")
		}
	})
}

// TestImporter_ImportOrders tests the broker order import path.
func TestImporter_ImportOrders(t *testing.T) {
	t.Run("imports only completed orders", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		tradeSvc := testutil.NewTestTradeService(t, db)
		imp := importer.New(tradeSvc, nil, nil)

		orders := []kite.Order{
			{TradingSymbol: "AAA-EQ", TransactionType: "BUY", FilledQuantity: 10, AveragePrice: 100, Status: "COMPLETE", OrderTimestamp: "2024-01-15 09:30:00"},
			{TradingSymbol: "AAA-EQ", TransactionType: "SELL", FilledQuantity: 10, AveragePrice: 110, Status: "COMPLETE", OrderTimestamp: "2024-01-15 14:10:00"},
			{TradingSymbol: "BBB", TransactionType: "BUY", FilledQuantity: 5, AveragePrice: 50, Status: "REJECTED", OrderTimestamp: "2024-01-15 10:00:00"},
			{TradingSymbol: "CCC", TransactionType: "BUY", FilledQuantity: 5, AveragePrice: 50, Status: "OPEN", OrderTimestamp: "2024-01-15 10:00:00"},
		}

		result, err := imp.ImportOrders(context.Background(), orders, importer.Options{})
		if err != nil {
			t.Fatalf("ImportOrders() returned unexpected error: %v", err)
		}
		if result.Imported != 1 {
			t.Errorf("Expected 1 imported trade, got %d", result.Imported)
		}

		trades, _ := tradeSvc.ListTrades()
		if len(trades) != 1 {
			t.Fatalf("Expected 1 trade, got %d", len(trades))
		}
		if trades[0].Symbol != "AAA" || trades[0].Status != model.TradeStatusClosed {
			t.Errorf("Unexpected trade: %+v", trades[0])
		}
	})
}
