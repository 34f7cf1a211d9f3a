package service

import (
	"github.com/tradelog/trading-journal-backend/internal/model"
)

// StatisticsService computes the aggregate statistics fold over the full
// trade set. The fold runs on demand and is never cached: any trade or exit
// mutation can change every aggregate.
type StatisticsService struct {
	tradeService *TradeService
}

// NewStatisticsService creates a new StatisticsService with the provided service dependency.
func NewStatisticsService(tradeService *TradeService) *StatisticsService {
	return &StatisticsService{tradeService: tradeService}
}

// GetStatistics folds the current trade set into aggregate statistics.
// Win rate counts only closed trades; exposure and risk only non-closed ones.
func (s *StatisticsService) GetStatistics() (*model.Statistics, error) {
	trades, err := s.tradeService.ListTrades()
	if err != nil {
		return nil, err
	}
	return ComputeStatistics(trades), nil
}

// ComputeStatistics is the pure fold, separated so the importer and tests can
// run it over an in-memory trade slice.
func ComputeStatistics(trades []model.Trade) *model.Statistics {
	stats := &model.Statistics{TotalTrades: len(trades)}

	for i := range trades {
		t := &trades[i]

		if t.Status == model.TradeStatusClosed {
			stats.ClosedTrades++
			if t.TotalPnl > 0 {
				stats.WinningTrades++
			} else if t.TotalPnl < 0 {
				stats.LosingTrades++
			}
		} else {
			stats.OpenTrades++
			stats.TotalExposure += t.EntryPrice * t.RemainingQuantity
			stats.TotalRisk += t.Risk()
		}

		stats.TotalPnl += t.TotalPnl
		stats.UnrealizedPnl += t.UnrealizedPnl()
	}

	if stats.ClosedTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.ClosedTrades) * 100
	}

	return stats
}
