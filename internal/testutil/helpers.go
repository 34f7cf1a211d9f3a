package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/tradelog/trading-journal-backend/internal/repository"
	"github.com/tradelog/trading-journal-backend/internal/service"
)

// MakeID generates a unique UUID for test entities.
func MakeID() string {
	return uuid.New().String()
}

func NewTestTradeService(t *testing.T, db *sql.DB) *service.TradeService {
	t.Helper()

	tradeRepo := repository.NewTradeRepository(db)
	exitRepo := repository.NewExitRepository(db)

	return service.NewTradeService(
		db,
		tradeRepo,
		exitRepo,
	)
}

func NewTestStatisticsService(t *testing.T, db *sql.DB) *service.StatisticsService {
	t.Helper()

	return service.NewStatisticsService(NewTestTradeService(t, db))
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}
