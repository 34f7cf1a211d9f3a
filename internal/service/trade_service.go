package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tradelog/trading-journal-backend/internal/api/request"
	"github.com/tradelog/trading-journal-backend/internal/apperrors"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/repository"
)

// TradeService owns the trade/exit collection and keeps the derived fields
// (status, remaining quantity, booked profit, total pnl) consistent under
// every mutation. Every mutating operation recomputes the trade's aggregates
// from the full exits list and persists exit changes and the aggregate update
// in one SQL transaction, so a failed operation leaves no partial state.
type TradeService struct {
	db        *sql.DB
	tradeRepo *repository.TradeRepository
	exitRepo  *repository.ExitRepository
}

// NewTradeService creates a new TradeService with the provided repository dependencies.
func NewTradeService(
	db *sql.DB,
	tradeRepo *repository.TradeRepository,
	exitRepo *repository.ExitRepository,
) *TradeService {
	return &TradeService{
		db:        db,
		tradeRepo: tradeRepo,
		exitRepo:  exitRepo,
	}
}

// GetTrade retrieves a single trade with its exits in insertion order.
func (s *TradeService) GetTrade(tradeID string) (*model.Trade, error) {
	trade, err := s.tradeRepo.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, apperrors.ErrTradeNotFound
	}

	exits, err := s.exitRepo.ListExitsByTrade(tradeID)
	if err != nil {
		return nil, err
	}
	trade.Exits = exits

	return trade, nil
}

// ListTrades retrieves all trades with their exits, newest trade first.
func (s *TradeService) ListTrades() ([]model.Trade, error) {
	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return nil, err
	}

	exitsByTrade, err := s.exitRepo.ListExits()
	if err != nil {
		return nil, err
	}

	for i := range trades {
		exits := exitsByTrade[trades[i].ID]
		if exits == nil {
			exits = []model.Exit{}
		}
		trades[i].Exits = exits
	}

	return trades, nil
}

// CreateTrade creates a new open trade from user-settable fields.
// Quantity and entry price are boundary-validated here; once a trade is
// constructed the engine trusts its fields.
func (s *TradeService) CreateTrade(ctx context.Context, req request.CreateTradeRequest) (*model.Trade, error) {
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if req.EntryPrice <= 0 {
		return nil, apperrors.ErrInvalidPrice
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid entry date: %w", err)
	}

	trade := &model.Trade{
		ID:              uuid.New().String(),
		Symbol:          req.Symbol,
		TradeType:       model.TradeType(req.TradeType),
		EntryDate:       entryDate,
		EntryPrice:      req.EntryPrice,
		Quantity:        req.Quantity,
		CurrentPrice:    req.CurrentPrice,
		SetupStopLoss:   req.SetupStopLoss,
		CurrentStopLoss: req.CurrentStopLoss,
		Target:          req.Target,
		TargetRPT:       req.TargetRPT,
		Notes:           req.Notes,
		Exits:           []model.Exit{},
		CreatedAt:       time.Now().UTC(),
	}
	trade.Recompute() // OPEN, remaining = quantity, booked = 0

	if err := s.tradeRepo.InsertTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	return trade, nil
}

// CreateImportedTrade persists a trade produced by the importer together with
// its already-matched exits. The trade and each exit arrive pre-computed; the
// derived fields are still recomputed here rather than trusted.
func (s *TradeService) CreateImportedTrade(ctx context.Context, trade *model.Trade) error {
	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
	}

	for i := range trade.Exits {
		e := &trade.Exits[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.TradeID = trade.ID
		e.Pnl = model.ExitPnl(trade.TradeType, trade.EntryPrice, e.ExitPrice, e.Quantity)
		if e.CreatedAt.IsZero() {
			e.CreatedAt = trade.CreatedAt
		}
	}
	trade.Recompute()

	// Trade first, then its exits, so a failed trade insert cannot orphan exits.
	if err := s.tradeRepo.InsertTrade(ctx, trade); err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	for i := range trade.Exits {
		if err := s.exitRepo.InsertExit(ctx, nil, &trade.Exits[i]); err != nil {
			return fmt.Errorf("failed to create exit: %w", err)
		}
	}
	if err := s.tradeRepo.UpdateTrade(ctx, nil, trade); err != nil {
		return fmt.Errorf("failed to update trade aggregates: %w", err)
	}

	return nil
}

// RecordExit records a partial or full close-out against a trade.
// Rejects quantities above the remaining quantity; an exact fill closes the
// trade. The exit's pnl is frozen at creation from the trade's entry price.
func (s *TradeService) RecordExit(ctx context.Context, tradeID string, req request.CreateExitRequest) (*model.Trade, error) {
	trade, err := s.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}

	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if req.ExitPrice <= 0 {
		return nil, apperrors.ErrInvalidPrice
	}
	if req.Quantity > trade.RemainingQuantity {
		return nil, apperrors.ErrExitExceedsRemaining
	}

	exitDate, err := time.Parse("2006-01-02", req.ExitDate)
	if err != nil {
		return nil, fmt.Errorf("invalid exit date: %w", err)
	}

	exit := model.Exit{
		ID:        uuid.New().String(),
		TradeID:   trade.ID,
		ExitDate:  exitDate,
		ExitPrice: req.ExitPrice,
		Quantity:  req.Quantity,
		Pnl:       model.ExitPnl(trade.TradeType, trade.EntryPrice, req.ExitPrice, req.Quantity),
		CreatedAt: time.Now().UTC(),
	}

	trade.Exits = append(trade.Exits, exit)
	trade.Recompute()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.exitRepo.InsertExit(ctx, tx, &exit); err != nil {
			return err
		}
		return s.tradeRepo.UpdateTrade(ctx, tx, trade)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record exit: %w", err)
	}

	return trade, nil
}

// EditExit replaces one exit's date, price and quantity, re-derives its pnl
// from the trade's entry, and recomputes the trade aggregates. Rejects edits
// whose new quantity plus all other exits would exceed the trade quantity.
func (s *TradeService) EditExit(ctx context.Context, tradeID, exitID string, req request.UpdateExitRequest) (*model.Trade, error) {
	trade, err := s.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range trade.Exits {
		if trade.Exits[i].ID == exitID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, apperrors.ErrExitNotFound
	}
	exit := &trade.Exits[idx]

	if req.ExitDate != nil {
		exitDate, err := time.Parse("2006-01-02", *req.ExitDate)
		if err != nil {
			return nil, fmt.Errorf("invalid exit date: %w", err)
		}
		exit.ExitDate = exitDate
	}
	if req.ExitPrice != nil {
		if *req.ExitPrice <= 0 {
			return nil, apperrors.ErrInvalidPrice
		}
		exit.ExitPrice = *req.ExitPrice
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, apperrors.ErrInvalidQuantity
		}
		var otherQty float64
		for i := range trade.Exits {
			if i != idx {
				otherQty += trade.Exits[i].Quantity
			}
		}
		if otherQty+*req.Quantity > trade.Quantity {
			return nil, apperrors.ErrExitExceedsRemaining
		}
		exit.Quantity = *req.Quantity
	}

	exit.Pnl = model.ExitPnl(trade.TradeType, trade.EntryPrice, exit.ExitPrice, exit.Quantity)
	trade.Recompute()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.exitRepo.UpdateExit(ctx, tx, exit); err != nil {
			return err
		}
		return s.tradeRepo.UpdateTrade(ctx, tx, trade)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit exit: %w", err)
	}

	return trade, nil
}

// DeleteExit removes one exit and recomputes the trade aggregates from the
// remaining exits.
func (s *TradeService) DeleteExit(ctx context.Context, tradeID, exitID string) (*model.Trade, error) {
	trade, err := s.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}

	found := false
	exits := make([]model.Exit, 0, len(trade.Exits))
	for _, e := range trade.Exits {
		if e.ID == exitID {
			found = true
			continue
		}
		exits = append(exits, e)
	}
	if !found {
		return nil, apperrors.ErrExitNotFound
	}

	trade.Exits = exits
	trade.Recompute()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.exitRepo.DeleteExit(ctx, tx, exitID); err != nil {
			return err
		}
		return s.tradeRepo.UpdateTrade(ctx, tx, trade)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete exit: %w", err)
	}

	return trade, nil
}

// DeleteTrade removes the trade and, via the cascade, all of its exits.
func (s *TradeService) DeleteTrade(ctx context.Context, tradeID string) error {
	rows, err := s.tradeRepo.DeleteTrade(ctx, tradeID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}

// EditTrade updates a trade's user-settable fields.
//
// A quantity change is rejected when it would drop below the already-exited
// total. An entry price or trade type change re-derives every exit's frozen
// pnl before the aggregates are recomputed; this is the one place child
// records change as a side effect of a parent edit.
func (s *TradeService) EditTrade(ctx context.Context, tradeID string, req request.UpdateTradeRequest) (*model.Trade, error) {
	trade, err := s.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}

	entryChanged := false

	if req.Symbol != nil {
		trade.Symbol = *req.Symbol
	}
	if req.TradeType != nil && model.TradeType(*req.TradeType) != trade.TradeType {
		trade.TradeType = model.TradeType(*req.TradeType)
		entryChanged = true
	}
	if req.EntryDate != nil {
		entryDate, err := time.Parse("2006-01-02", *req.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid entry date: %w", err)
		}
		trade.EntryDate = entryDate
	}
	if req.EntryPrice != nil && *req.EntryPrice != trade.EntryPrice {
		if *req.EntryPrice <= 0 {
			return nil, apperrors.ErrInvalidPrice
		}
		trade.EntryPrice = *req.EntryPrice
		entryChanged = true
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, apperrors.ErrInvalidQuantity
		}
		if *req.Quantity < trade.ExitedQuantity() {
			return nil, apperrors.ErrQuantityBelowExited
		}
		trade.Quantity = *req.Quantity
	}
	if req.SetupStopLoss != nil {
		trade.SetupStopLoss = req.SetupStopLoss
	}
	if req.CurrentStopLoss != nil {
		trade.CurrentStopLoss = req.CurrentStopLoss
	}
	if req.Target != nil {
		trade.Target = req.Target
	}
	if req.TargetRPT != nil {
		trade.TargetRPT = *req.TargetRPT
	}
	if req.Notes != nil {
		trade.Notes = *req.Notes
	}
	if req.CurrentPrice != nil {
		trade.CurrentPrice = req.CurrentPrice
	}

	if entryChanged {
		trade.RecomputeExitPnls()
	} else {
		trade.Recompute()
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if entryChanged {
			for i := range trade.Exits {
				if err := s.exitRepo.UpdateExitPnl(ctx, tx, trade.Exits[i].ID, trade.Exits[i].Pnl); err != nil {
					return err
				}
			}
		}
		return s.tradeRepo.UpdateTrade(ctx, tx, trade)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit trade: %w", err)
	}

	return trade, nil
}

// UpdateCurrentPrice updates only the stored quote for a trade. It does not
// touch status, pnl or quantities; unrealized P&L is display-time only.
func (s *TradeService) UpdateCurrentPrice(ctx context.Context, tradeID string, price *float64) error {
	trade, err := s.tradeRepo.GetTrade(tradeID)
	if err != nil {
		return err
	}
	if trade == nil {
		return apperrors.ErrTradeNotFound
	}
	return s.tradeRepo.UpdateCurrentPrice(ctx, tradeID, price)
}

// UpdateCurrentStopLoss updates only the trailing stop loss for a trade.
func (s *TradeService) UpdateCurrentStopLoss(ctx context.Context, tradeID string, stopLoss *float64) error {
	trade, err := s.tradeRepo.GetTrade(tradeID)
	if err != nil {
		return err
	}
	if trade == nil {
		return apperrors.ErrTradeNotFound
	}
	return s.tradeRepo.UpdateCurrentStopLoss(ctx, tradeID, stopLoss)
}

// FindByEntry exposes the importer's dedupe lookup.
func (s *TradeService) FindByEntry(symbol string, entryPrice float64, entryDate time.Time) (*model.Trade, error) {
	return s.tradeRepo.FindByEntry(symbol, entryPrice, entryDate)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *TradeService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		//nolint:errcheck // rollback error is secondary to fn's error
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
