package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/model"
)

// ExitRepository provides data access methods for the trade_exit table.
// Exits are returned in insertion order (rowid), which is the chronological
// order they were recorded in, not necessarily exit-date order.
type ExitRepository struct {
	db *sql.DB
}

// NewExitRepository creates a new ExitRepository with the provided database connection.
func NewExitRepository(db *sql.DB) *ExitRepository {
	return &ExitRepository{db: db}
}

// InsertExit inserts an exit row. Runs inside the given transaction when tx is
// non-nil so the exit commits atomically with the trade's aggregate update.
func (s *ExitRepository) InsertExit(ctx context.Context, tx *sql.Tx, e *model.Exit) error {
	query := `
		INSERT INTO trade_exit (id, trade_id, exit_date, exit_price, quantity, pnl, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	args := []any{
		e.ID,
		e.TradeID,
		e.ExitDate.Format(dateLayout),
		e.ExitPrice,
		e.Quantity,
		e.Pnl,
		e.CreatedAt.UTC().Format(time.RFC3339),
	}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to insert exit: %w", err)
	}
	return nil
}

// UpdateExit rewrites an exit's date, price, quantity and frozen pnl.
func (s *ExitRepository) UpdateExit(ctx context.Context, tx *sql.Tx, e *model.Exit) error {
	query := `
		UPDATE trade_exit
		SET exit_date = ?, exit_price = ?, quantity = ?, pnl = ?
		WHERE id = ?
	`
	args := []any{
		e.ExitDate.Format(dateLayout),
		e.ExitPrice,
		e.Quantity,
		e.Pnl,
		e.ID,
	}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to update exit: %w", err)
	}
	return nil
}

// UpdateExitPnl rewrites only an exit's frozen pnl. Used when a trade's entry
// price or type edit re-derives every child exit.
func (s *ExitRepository) UpdateExitPnl(ctx context.Context, tx *sql.Tx, exitID string, pnl float64) error {
	query := `UPDATE trade_exit SET pnl = ? WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, pnl, exitID)
	} else {
		_, err = s.db.ExecContext(ctx, query, pnl, exitID)
	}
	if err != nil {
		return fmt.Errorf("failed to update exit pnl: %w", err)
	}
	return nil
}

// DeleteExit removes an exit row inside the given transaction.
func (s *ExitRepository) DeleteExit(ctx context.Context, tx *sql.Tx, exitID string) error {
	query := `DELETE FROM trade_exit WHERE id = ?`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, exitID)
	} else {
		_, err = s.db.ExecContext(ctx, query, exitID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete exit: %w", err)
	}
	return nil
}

// ListExitsByTrade retrieves all exits of one trade in insertion order.
func (s *ExitRepository) ListExitsByTrade(tradeID string) ([]model.Exit, error) {
	rows, err := s.db.Query(`
		SELECT id, trade_id, exit_date, exit_price, quantity, pnl, created_at
		FROM trade_exit
		WHERE trade_id = ?
		ORDER BY rowid ASC
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade_exit table: %w", err)
	}
	defer rows.Close()

	return scanExits(rows)
}

// ListExits retrieves every exit grouped by trade ID, in insertion order per
// trade. Used to assemble the full trade list without per-trade queries.
func (s *ExitRepository) ListExits() (map[string][]model.Exit, error) {
	rows, err := s.db.Query(`
		SELECT id, trade_id, exit_date, exit_price, quantity, pnl, created_at
		FROM trade_exit
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade_exit table: %w", err)
	}
	defer rows.Close()

	exits, err := scanExits(rows)
	if err != nil {
		return nil, err
	}

	exitsByTrade := make(map[string][]model.Exit)
	for _, e := range exits {
		exitsByTrade[e.TradeID] = append(exitsByTrade[e.TradeID], e)
	}
	return exitsByTrade, nil
}

func scanExits(rows *sql.Rows) ([]model.Exit, error) {
	exits := []model.Exit{}
	for rows.Next() {
		var e model.Exit
		var exitDateStr string
		var createdAtStr sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.TradeID,
			&exitDateStr,
			&e.ExitPrice,
			&e.Quantity,
			&e.Pnl,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade_exit table results: %w", err)
		}

		e.ExitDate, err = ParseTime(exitDateStr)
		if err != nil {
			return nil, err
		}
		if createdAtStr.Valid {
			if e.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, err
			}
		}

		exits = append(exits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade_exit table: %w", err)
	}

	return exits, nil
}
