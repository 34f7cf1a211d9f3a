package service

import (
	"context"
	"log"
	"sync"

	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/quote"
)

// PriceService refreshes the current price of every open trade from the quote
// feed. It runs on a schedule from cmd/server; Refresh is safe to invoke
// concurrently but overlapping runs are collapsed to one.
type PriceService struct {
	tradeService *TradeService
	quotes       quote.Service

	mu      sync.Mutex
	running bool
}

// NewPriceService creates a new price refresh service.
func NewPriceService(tradeService *TradeService, quotes quote.Service) *PriceService {
	return &PriceService{tradeService: tradeService, quotes: quotes}
}

// Refresh fetches quotes for every symbol with an open or partial trade and
// stores the latest price on each. A refresh that starts while the previous
// one is still in flight returns immediately.
func (s *PriceService) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	trades, err := s.tradeService.ListTrades()
	if err != nil {
		log.Printf("WARNING: price refresh could not list trades: %v", err)
		return
	}

	symbols := []string{}
	seen := map[string]bool{}
	open := []model.Trade{}
	for _, t := range trades {
		if t.Status == model.TradeStatusClosed {
			continue
		}
		open = append(open, t)
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			symbols = append(symbols, t.Symbol)
		}
	}
	if len(symbols) == 0 {
		return
	}

	quotes, err := s.quotes.GetQuotes(ctx, symbols)
	if err != nil {
		log.Printf("WARNING: price refresh quote lookup failed: %v", err)
		return
	}

	for _, t := range open {
		q, ok := quotes[t.Symbol]
		if !ok {
			continue
		}
		if t.CurrentPrice != nil && *t.CurrentPrice == q.Price {
			continue
		}
		price := q.Price
		if err := s.tradeService.UpdateCurrentPrice(ctx, t.ID, &price); err != nil {
			log.Printf("WARNING: price refresh update failed for %s: %v", t.Symbol, err)
		}
	}
}
