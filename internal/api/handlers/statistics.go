package handlers

import (
	"net/http"

	"github.com/tradelog/trading-journal-backend/internal/api/response"
	"github.com/tradelog/trading-journal-backend/internal/apperrors"
	"github.com/tradelog/trading-journal-backend/internal/service"
)

// StatisticsHandler handles HTTP requests for the journal summary endpoint.
type StatisticsHandler struct {
	statisticsService *service.StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler with the provided service dependency.
func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsService: statisticsService,
	}
}

// GetStatistics handles GET requests for the journal-wide summary: trade
// counts, win rate over closed trades, realized and unrealized P&L, open
// exposure and open risk.
//
// Endpoint: GET /api/statistics
// Response: 200 OK with Statistics
// Error: 500 Internal Server Error if computation fails
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.statisticsService.GetStatistics()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToComputeStatistics.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stats)
}
