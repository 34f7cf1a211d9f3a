package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tradelog/trading-journal-backend/internal/api/request"
	"github.com/tradelog/trading-journal-backend/internal/api/response"
	"github.com/tradelog/trading-journal-backend/internal/apperrors"
	"github.com/tradelog/trading-journal-backend/internal/service"
	"github.com/tradelog/trading-journal-backend/internal/validation"
)

// TradeHandler handles HTTP requests for trade endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the tradeService.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// AllTrades handles GET requests to retrieve the full journal, newest first.
// Each trade carries its exits and derived accounting fields.
//
// Endpoint: GET /api/trade
// Response: 200 OK with array of Trade
// Error: 500 Internal Server Error if retrieval fails
func (h *TradeHandler) AllTrades(w http.ResponseWriter, _ *http.Request) {
	trades, err := h.tradeService.ListTrades()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trades)
}

// GetTrade handles GET requests to retrieve a single trade by ID.
//
// Endpoint: GET /api/trade/{uuid}
// Response: 200 OK with Trade
// Error: 400 Bad Request if trade ID is invalid (validated by middleware)
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	trade, err := h.tradeService.GetTrade(tradeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrade.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// CreateTrade handles POST requests to create a new trade.
// Validates the request body and creates an open trade.
//
// Endpoint: POST /api/trade
// Request Body: CreateTradeRequest (symbol, tradeType, entryDate, entryPrice, quantity, ...)
// Response: 201 Created with Trade
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *TradeHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.tradeService.CreateTrade(r.Context(), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create trade", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// UpdateTrade handles PUT requests to update an existing trade.
// An entry price or trade type change re-derives every exit's pnl and the
// trade's aggregates in the same transaction.
//
// Endpoint: PUT /api/trade/{uuid}
// Request Body: UpdateTradeRequest (all fields optional)
// Response: 200 OK with updated Trade
// Error: 400 Bad Request if trade ID is invalid (validated by middleware) or validation fails
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if update fails
func (h *TradeHandler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.tradeService.EditTrade(r.Context(), tradeID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTradeNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrQuantityBelowExited),
			errors.Is(err, apperrors.ErrInvalidQuantity),
			errors.Is(err, apperrors.ErrInvalidPrice):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to update trade", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// DeleteTrade handles DELETE requests to remove a trade and its exits.
//
// Endpoint: DELETE /api/trade/{uuid}
// Response: 204 No Content
// Error: 400 Bad Request if trade ID is invalid (validated by middleware)
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if deletion fails
func (h *TradeHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	if err := h.tradeService.DeleteTrade(r.Context(), tradeID); err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete trade", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// UpdatePrice handles PUT requests to set or clear a trade's stored quote.
// Only the current price changes; no accounting field is touched.
//
// Endpoint: PUT /api/trade/{uuid}/price
// Request Body: UpdatePriceRequest
// Response: 200 OK with updated Trade
// Error: 400 Bad Request if trade ID is invalid (validated by middleware)
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if update fails
func (h *TradeHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdatePriceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.tradeService.UpdateCurrentPrice(r.Context(), tradeID, req.CurrentPrice); err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update price", err.Error())
		return
	}

	trade, err := h.tradeService.GetTrade(tradeID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrade.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// UpdateStopLoss handles PUT requests to set or clear a trade's trailing stop.
//
// Endpoint: PUT /api/trade/{uuid}/stoploss
// Request Body: UpdateStopLossRequest
// Response: 200 OK with updated Trade
// Error: 400 Bad Request if trade ID is invalid (validated by middleware)
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if update fails
func (h *TradeHandler) UpdateStopLoss(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateStopLossRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.tradeService.UpdateCurrentStopLoss(r.Context(), tradeID, req.CurrentStopLoss); err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update stop loss", err.Error())
		return
	}

	trade, err := h.tradeService.GetTrade(tradeID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrade.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}
