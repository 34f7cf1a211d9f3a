package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/model"
)

// TradeRepository provides data access methods for the trade table.
// Derived columns (status, remaining_quantity, booked_profit, total_pnl) are
// written as computed by the service layer; the repository never derives them.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

const tradeColumns = `id, symbol, trade_type, entry_date, entry_price, quantity,
	current_price, setup_stop_loss, current_stop_loss, target, target_rpt, notes,
	status, remaining_quantity, booked_profit, total_pnl, pending_allotment_backfill, created_at`

// InsertTrade inserts a new trade row including its derived fields.
func (s *TradeRepository) InsertTrade(ctx context.Context, t *model.Trade) error {
	query := `
		INSERT INTO trade (` + tradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.Symbol,
		string(t.TradeType),
		t.EntryDate.Format(dateLayout),
		t.EntryPrice,
		t.Quantity,
		nullFloat(t.CurrentPrice),
		nullFloat(t.SetupStopLoss),
		nullFloat(t.CurrentStopLoss),
		nullFloat(t.Target),
		t.TargetRPT,
		t.Notes,
		string(t.Status),
		t.RemainingQuantity,
		t.BookedProfit,
		t.TotalPnl,
		t.PendingAllotmentBackfill,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// UpdateTrade rewrites every mutable and derived column of a trade.
// Runs inside the given transaction when tx is non-nil so aggregate updates
// commit atomically with their exit mutations.
func (s *TradeRepository) UpdateTrade(ctx context.Context, tx *sql.Tx, t *model.Trade) error {
	query := `
		UPDATE trade
		SET symbol = ?, trade_type = ?, entry_date = ?, entry_price = ?, quantity = ?,
			current_price = ?, setup_stop_loss = ?, current_stop_loss = ?, target = ?,
			target_rpt = ?, notes = ?, status = ?, remaining_quantity = ?,
			booked_profit = ?, total_pnl = ?, pending_allotment_backfill = ?
		WHERE id = ?
	`
	args := []any{
		t.Symbol,
		string(t.TradeType),
		t.EntryDate.Format(dateLayout),
		t.EntryPrice,
		t.Quantity,
		nullFloat(t.CurrentPrice),
		nullFloat(t.SetupStopLoss),
		nullFloat(t.CurrentStopLoss),
		nullFloat(t.Target),
		t.TargetRPT,
		t.Notes,
		string(t.Status),
		t.RemainingQuantity,
		t.BookedProfit,
		t.TotalPnl,
		t.PendingAllotmentBackfill,
		t.ID,
	}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	return nil
}

// UpdateCurrentPrice sets only the current_price column. A nil price clears it.
func (s *TradeRepository) UpdateCurrentPrice(ctx context.Context, tradeID string, price *float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE trade SET current_price = ? WHERE id = ?`,
		nullFloat(price), tradeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update current price: %w", err)
	}
	return nil
}

// UpdateCurrentStopLoss sets only the current_stop_loss column. Nil clears it.
func (s *TradeRepository) UpdateCurrentStopLoss(ctx context.Context, tradeID string, stopLoss *float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE trade SET current_stop_loss = ? WHERE id = ?`,
		nullFloat(stopLoss), tradeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update current stop loss: %w", err)
	}
	return nil
}

// DeleteTrade removes a trade row. Exits cascade via the foreign key.
// Returns the number of rows deleted so callers can distinguish a no-op.
func (s *TradeRepository) DeleteTrade(ctx context.Context, tradeID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM trade WHERE id = ?`, tradeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trade: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}
	return rows, nil
}

// GetTrade retrieves a single trade row without its exits.
// Returns (nil, nil) when the trade does not exist.
func (s *TradeRepository) GetTrade(tradeID string) (*model.Trade, error) {
	row := s.db.QueryRow(`SELECT `+tradeColumns+` FROM trade WHERE id = ?`, tradeID)

	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTrades retrieves all trade rows, newest first.
func (s *TradeRepository) ListTrades() ([]model.Trade, error) {
	rows, err := s.db.Query(`SELECT ` + tradeColumns + ` FROM trade ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade table: %w", err)
	}

	return trades, nil
}

// FindByEntry looks up a trade with the exact (symbol, entry_price, entry_date)
// combination. Used by the importer for deduplication.
// Returns (nil, nil) when no such trade exists.
func (s *TradeRepository) FindByEntry(symbol string, entryPrice float64, entryDate time.Time) (*model.Trade, error) {
	row := s.db.QueryRow(
		`SELECT `+tradeColumns+` FROM trade WHERE symbol = ? AND entry_price = ? AND entry_date = ?`,
		symbol, entryPrice, entryDate.Format(dateLayout),
	)

	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (*model.Trade, error) {
	var t model.Trade
	var tradeType, status, entryDateStr string
	var createdAtStr sql.NullString
	var currentPrice, setupStopLoss, currentStopLoss, target sql.NullFloat64

	err := row.Scan(
		&t.ID,
		&t.Symbol,
		&tradeType,
		&entryDateStr,
		&t.EntryPrice,
		&t.Quantity,
		&currentPrice,
		&setupStopLoss,
		&currentStopLoss,
		&target,
		&t.TargetRPT,
		&t.Notes,
		&status,
		&t.RemainingQuantity,
		&t.BookedProfit,
		&t.TotalPnl,
		&t.PendingAllotmentBackfill,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan trade table results: %w", err)
	}

	t.TradeType = model.TradeType(tradeType)
	t.Status = model.TradeStatus(status)

	t.EntryDate, err = ParseTime(entryDateStr)
	if err != nil {
		return nil, err
	}
	if createdAtStr.Valid {
		if t.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
			return nil, err
		}
	}

	if currentPrice.Valid {
		t.CurrentPrice = &currentPrice.Float64
	}
	if setupStopLoss.Valid {
		t.SetupStopLoss = &setupStopLoss.Float64
	}
	if currentStopLoss.Valid {
		t.CurrentStopLoss = &currentStopLoss.Float64
	}
	if target.Valid {
		t.Target = &target.Float64
	}

	return &t, nil
}
