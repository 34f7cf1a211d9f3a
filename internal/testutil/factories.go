package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/model"
)

// TradeBuilder provides a fluent interface for creating test trades.
//
// Example usage:
//
//	// Simple creation with defaults (open LONG, 100 shares at 100)
//	trade := testutil.NewTrade().Build(t, db)
//
//	// Customized trade
//	trade := testutil.NewTrade().
//	    WithSymbol("TCS").
//	    Short().
//	    WithEntry("2024-03-01", 4000, 50).
//	    Build(t, db)
type TradeBuilder struct {
	ID                       string
	Symbol                   string
	TradeType                model.TradeType
	EntryDate                time.Time
	EntryPrice               float64
	Quantity                 float64
	CurrentPrice             *float64
	SetupStopLoss            *float64
	CurrentStopLoss          *float64
	Target                   *float64
	TargetRPT                float64
	Notes                    string
	PendingAllotmentBackfill bool
}

// NewTrade creates a TradeBuilder with sensible defaults.
func NewTrade() *TradeBuilder {
	return &TradeBuilder{
		ID:         MakeID(),
		Symbol:     "RELIANCE",
		TradeType:  model.TradeTypeLong,
		EntryDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		EntryPrice: 100,
		Quantity:   100,
	}
}

// WithID sets a custom ID.
func (b *TradeBuilder) WithID(id string) *TradeBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *TradeBuilder) WithSymbol(symbol string) *TradeBuilder {
	b.Symbol = symbol
	return b
}

// WithEntry sets the entry date (YYYY-MM-DD), price, and quantity.
func (b *TradeBuilder) WithEntry(date string, price, quantity float64) *TradeBuilder {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	b.EntryDate = parsed
	b.EntryPrice = price
	b.Quantity = quantity
	return b
}

// Short marks the trade as a SHORT.
func (b *TradeBuilder) Short() *TradeBuilder {
	b.TradeType = model.TradeTypeShort
	return b
}

// IPO marks the trade as an IPO allotment.
func (b *TradeBuilder) IPO() *TradeBuilder {
	b.TradeType = model.TradeTypeIPO
	return b
}

// WithStopLoss sets the setup stop loss.
func (b *TradeBuilder) WithStopLoss(stopLoss float64) *TradeBuilder {
	b.SetupStopLoss = &stopLoss
	return b
}

// WithCurrentPrice sets the stored quote.
func (b *TradeBuilder) WithCurrentPrice(price float64) *TradeBuilder {
	b.CurrentPrice = &price
	return b
}

// WithTarget sets the target price.
func (b *TradeBuilder) WithTarget(target float64) *TradeBuilder {
	b.Target = &target
	return b
}

// WithNotes sets the notes field.
func (b *TradeBuilder) WithNotes(notes string) *TradeBuilder {
	b.Notes = notes
	return b
}

// PendingBackfill flags the trade as an IPO placeholder awaiting allotment data.
func (b *TradeBuilder) PendingBackfill() *TradeBuilder {
	b.PendingAllotmentBackfill = true
	return b
}

// Build persists the trade with recomputed aggregates and returns it.
func (b *TradeBuilder) Build(t *testing.T, db *sql.DB) model.Trade {
	t.Helper()

	trade := model.Trade{
		ID:                       b.ID,
		Symbol:                   b.Symbol,
		TradeType:                b.TradeType,
		EntryDate:                b.EntryDate,
		EntryPrice:               b.EntryPrice,
		Quantity:                 b.Quantity,
		CurrentPrice:             b.CurrentPrice,
		SetupStopLoss:            b.SetupStopLoss,
		CurrentStopLoss:          b.CurrentStopLoss,
		Target:                   b.Target,
		TargetRPT:                b.TargetRPT,
		Notes:                    b.Notes,
		Exits:                    []model.Exit{},
		PendingAllotmentBackfill: b.PendingAllotmentBackfill,
		CreatedAt:                time.Now().UTC(),
	}
	trade.Recompute()

	query := `
		INSERT INTO trade (id, symbol, trade_type, entry_date, entry_price, quantity,
			current_price, setup_stop_loss, current_stop_loss, target, target_rpt, notes,
			status, remaining_quantity, booked_profit, total_pnl, pending_allotment_backfill, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		trade.ID,
		trade.Symbol,
		string(trade.TradeType),
		trade.EntryDate.Format("2006-01-02"),
		trade.EntryPrice,
		trade.Quantity,
		nullable(trade.CurrentPrice),
		nullable(trade.SetupStopLoss),
		nullable(trade.CurrentStopLoss),
		nullable(trade.Target),
		trade.TargetRPT,
		trade.Notes,
		string(trade.Status),
		trade.RemainingQuantity,
		trade.BookedProfit,
		trade.TotalPnl,
		trade.PendingAllotmentBackfill,
		trade.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}

	return trade
}

// ExitBuilder provides a fluent interface for creating test exits.
// The parent trade's aggregates are NOT recomputed; use the service layer when
// the test needs consistent aggregates.
type ExitBuilder struct {
	ID        string
	TradeID   string
	ExitDate  time.Time
	ExitPrice float64
	Quantity  float64
	Pnl       float64
}

// NewExit creates an ExitBuilder for the given trade with sensible defaults.
func NewExit(tradeID string) *ExitBuilder {
	return &ExitBuilder{
		ID:        MakeID(),
		TradeID:   tradeID,
		ExitDate:  time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		ExitPrice: 110,
		Quantity:  50,
	}
}

// WithExit sets the exit date (YYYY-MM-DD), price, and quantity.
func (b *ExitBuilder) WithExit(date string, price, quantity float64) *ExitBuilder {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	b.ExitDate = parsed
	b.ExitPrice = price
	b.Quantity = quantity
	return b
}

// WithPnl sets the frozen pnl.
func (b *ExitBuilder) WithPnl(pnl float64) *ExitBuilder {
	b.Pnl = pnl
	return b
}

// Build persists the exit and returns it.
func (b *ExitBuilder) Build(t *testing.T, db *sql.DB) model.Exit {
	t.Helper()

	exit := model.Exit{
		ID:        b.ID,
		TradeID:   b.TradeID,
		ExitDate:  b.ExitDate,
		ExitPrice: b.ExitPrice,
		Quantity:  b.Quantity,
		Pnl:       b.Pnl,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO trade_exit (id, trade_id, exit_date, exit_price, quantity, pnl, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		exit.ID,
		exit.TradeID,
		exit.ExitDate.Format("2006-01-02"),
		exit.ExitPrice,
		exit.Quantity,
		exit.Pnl,
		exit.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test exit: %v", err)
	}

	return exit
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
