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

// ExitHandler handles HTTP requests for exit endpoints. Exits are always
// addressed through their trade; every response returns the updated trade so
// the caller sees the recomputed aggregates.
type ExitHandler struct {
	tradeService *service.TradeService
}

// NewExitHandler creates a new ExitHandler with the provided service dependency.
func NewExitHandler(tradeService *service.TradeService) *ExitHandler {
	return &ExitHandler{
		tradeService: tradeService,
	}
}

// RecordExit handles POST requests to record a full or partial close-out.
// The exit's pnl is frozen at creation from the trade's entry price.
//
// Endpoint: POST /api/trade/{uuid}/exit
// Request Body: CreateExitRequest (exitDate, exitPrice, quantity)
// Response: 201 Created with updated Trade
// Error: 400 Bad Request if validation fails or quantity exceeds remaining
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if creation fails
func (h *ExitHandler) RecordExit(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreateExitRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateExit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.tradeService.RecordExit(r.Context(), tradeID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTradeNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrExitExceedsRemaining),
			errors.Is(err, apperrors.ErrInvalidQuantity),
			errors.Is(err, apperrors.ErrInvalidPrice):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to record exit", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// UpdateExit handles PUT requests to edit a recorded exit. A price or
// quantity change re-derives the exit's pnl and the trade's aggregates.
//
// Endpoint: PUT /api/trade/{uuid}/exit/{exitId}
// Request Body: UpdateExitRequest (all fields optional)
// Response: 200 OK with updated Trade
// Error: 400 Bad Request if validation fails or quantity would overfill the trade
// Error: 404 Not Found if trade or exit not found
// Error: 500 Internal Server Error if update fails
func (h *ExitHandler) UpdateExit(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")
	exitID := chi.URLParam(r, "exitId")

	if err := validation.ValidateUUID(exitID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
		return
	}

	req, err := parseJSON[request.UpdateExitRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateExit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.tradeService.EditExit(r.Context(), tradeID, exitID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTradeNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrExitNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrExitNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrExitExceedsRemaining),
			errors.Is(err, apperrors.ErrInvalidQuantity),
			errors.Is(err, apperrors.ErrInvalidPrice):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to update exit", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// DeleteExit handles DELETE requests to remove an exit. The trade's
// aggregates are recomputed from the surviving exits, which can reopen it.
//
// Endpoint: DELETE /api/trade/{uuid}/exit/{exitId}
// Response: 200 OK with updated Trade
// Error: 400 Bad Request if an ID is invalid
// Error: 404 Not Found if trade or exit not found
// Error: 500 Internal Server Error if deletion fails
func (h *ExitHandler) DeleteExit(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")
	exitID := chi.URLParam(r, "exitId")

	if err := validation.ValidateUUID(exitID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
		return
	}

	trade, err := h.tradeService.DeleteExit(r.Context(), tradeID, exitID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTradeNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrExitNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrExitNotFound.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to delete exit", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}
