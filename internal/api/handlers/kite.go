package handlers

import (
	"errors"
	"net/http"

	"github.com/tradelog/trading-journal-backend/internal/api/request"
	"github.com/tradelog/trading-journal-backend/internal/api/response"
	"github.com/tradelog/trading-journal-backend/internal/apperrors"
	"github.com/tradelog/trading-journal-backend/internal/service"
)

// KiteHandler handles HTTP requests for the broker session endpoints.
type KiteHandler struct {
	kiteService *service.KiteService
}

// NewKiteHandler creates a new KiteHandler with the provided service dependency.
func NewKiteHandler(kiteService *service.KiteService) *KiteHandler {
	return &KiteHandler{
		kiteService: kiteService,
	}
}

// LoginURLResponse carries the broker login redirect.
type LoginURLResponse struct {
	LoginURL string `json:"loginUrl"`
}

// Login handles GET requests for the broker login redirect URL. The caller
// opens it in a browser and posts the resulting request token back.
//
// Endpoint: GET /api/kite/login
// Response: 200 OK with LoginURLResponse
func (h *KiteHandler) Login(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, LoginURLResponse{LoginURL: h.kiteService.LoginURL()})
}

// ExchangeToken handles POST requests to trade a login request token for an
// access token. The token is stored encrypted and never returned.
//
// Endpoint: POST /api/kite/token
// Request Body: ExchangeTokenRequest (request_token)
// Response: 200 OK with KiteSession (creation time only)
// Error: 400 Bad Request if the request body is invalid or the exchange fails
// Error: 500 Internal Server Error if the session cannot be stored
func (h *KiteHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ExchangeTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.RequestToken == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "request_token is required")
		return
	}

	session, err := h.kiteService.ExchangeToken(r.Context(), req.RequestToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrFailedToExchangeToken) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrFailedToExchangeToken.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToStoreKiteSession.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, session)
}

// Holdings handles GET requests for the broker's current holdings, used to
// suggest journal entries for positions that predate it.
//
// Endpoint: GET /api/kite/holdings
// Response: 200 OK with array of Holding
// Error: 401 Unauthorized if no valid broker session is stored
// Error: 500 Internal Server Error if the broker call fails
func (h *KiteHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.kiteService.GetHoldings(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrKiteSessionNotFound) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrKiteSessionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHoldings.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}
