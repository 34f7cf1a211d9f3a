package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/api/response"
	"github.com/tradelog/trading-journal-backend/internal/apperrors"
	"github.com/tradelog/trading-journal-backend/internal/importer"
	"github.com/tradelog/trading-journal-backend/internal/service"
)

// maxUploadSize caps a tradebook upload at 10MB. Broker exports are small;
// anything larger is malformed or not a tradebook.
const maxUploadSize = 10 << 20

// ImportHandler handles HTTP requests for the broker import endpoints: CSV
// tradebook upload and same-day order sync from the broker session.
type ImportHandler struct {
	importer    *importer.Importer
	kiteService *service.KiteService
}

// NewImportHandler creates a new ImportHandler with the provided dependencies.
func NewImportHandler(imp *importer.Importer, kiteService *service.KiteService) *ImportHandler {
	return &ImportHandler{
		importer:    imp,
		kiteService: kiteService,
	}
}

// ImportCSV handles POST requests to import a broker tradebook CSV.
// Re-running the same file is safe; already-imported trades count as skipped.
//
// Endpoint: POST /api/import/csv
// Request: multipart/form-data with "file" (the CSV), optional "fromDate"
// (YYYY-MM-DD, discard earlier rows) and "lotMatching" ("latest" or "fifo").
// Response: 200 OK with Result {imported, skipped, warnings}
// Error: 400 Bad Request if the upload or CSV is unreadable
// Error: 500 Internal Server Error if the import fails
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "file is required", err.Error())
		return
	}
	defer file.Close()

	opts, err := importOptions(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.importer.ImportCSV(r.Context(), file, opts)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCSVInput) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCSVInput.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ImportOrders handles POST requests to import today's completed orders from
// the stored broker session. Holdings supply per-symbol fallback lows for the
// stop-loss backfill when the quote feed has no entry-day data.
//
// Endpoint: POST /api/import/orders
// Request: optional form fields "fromDate" and "lotMatching" as for CSV import
// Response: 200 OK with Result {imported, skipped}
// Error: 401 Unauthorized if no valid broker session is stored
// Error: 500 Internal Server Error if the import fails
func (h *ImportHandler) ImportOrders(w http.ResponseWriter, r *http.Request) {
	opts, err := importOptions(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	orders, err := h.kiteService.GetOrders(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrKiteSessionNotFound) {
			response.RespondError(w, http.StatusUnauthorized, apperrors.ErrKiteSessionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveOrders.Error(), err.Error())
		return
	}

	// Best effort: an unreachable holdings endpoint only loses fallback lows.
	if holdings, err := h.kiteService.GetHoldings(r.Context()); err == nil {
		lows := make(map[string]float64, len(holdings))
		for _, holding := range holdings {
			if holding.PrevDayLow > 0 {
				lows[holding.Symbol] = holding.PrevDayLow
			}
		}
		opts.FallbackLows = lows
	}

	result, err := h.importer.ImportOrders(r.Context(), orders, opts)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

func importOptions(r *http.Request) (importer.Options, error) {
	opts := importer.Options{}

	if v := r.FormValue("fromDate"); v != "" {
		fromDate, err := time.Parse("2006-01-02", v)
		if err != nil {
			return opts, err
		}
		opts.FromDate = fromDate
	}

	switch v := r.FormValue("lotMatching"); v {
	case "":
	case string(importer.LotMatchingLatest):
		opts.LotMatching = importer.LotMatchingLatest
	case string(importer.LotMatchingFIFO):
		opts.LotMatching = importer.LotMatchingFIFO
	default:
		return opts, errors.New("lotMatching must be \"latest\" or \"fifo\"")
	}

	return opts, nil
}
