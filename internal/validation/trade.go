package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/api/request"
)

// ValidTradeType contains the allowed trade type values.
var ValidTradeType = map[string]bool{
	"LONG": true, "SHORT": true, "IPO": true,
}

// ValidateCreateTrade validates a trade creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - symbol: Must be non-empty
//   - tradeType: Must be one of: LONG, SHORT, IPO
//   - entryDate: Must be in YYYY-MM-DD format
//   - entryPrice: Must be positive
//   - quantity: Must be positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTrade(req request.CreateTradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.TradeType) == "" {
		errors["tradeType"] = "tradeType is required"
	} else if !ValidTradeType[req.TradeType] {
		errors["tradeType"] = fmt.Sprintf("invalid tradeType: %s", req.TradeType)
	}

	if strings.TrimSpace(req.EntryDate) == "" {
		errors["entryDate"] = "entryDate is required"
	} else if _, err := time.Parse("2006-01-02", req.EntryDate); err != nil {
		errors["entryDate"] = err.Error()
	}

	if req.EntryPrice <= 0.0 {
		errors["entryPrice"] = "entryPrice must be positive"
	}

	if req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTrade validates a trade update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateTrade(req request.UpdateTradeRequest) error {
	errors := make(map[string]string)

	if req.Symbol != nil && strings.TrimSpace(*req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}
	if req.TradeType != nil {
		if strings.TrimSpace(*req.TradeType) == "" {
			errors["tradeType"] = "tradeType is required"
		} else if !ValidTradeType[*req.TradeType] {
			errors["tradeType"] = fmt.Sprintf("invalid tradeType: %s", *req.TradeType)
		}
	}
	if req.EntryDate != nil {
		if strings.TrimSpace(*req.EntryDate) == "" {
			errors["entryDate"] = "entryDate is required"
		} else if _, err := time.Parse("2006-01-02", *req.EntryDate); err != nil {
			errors["entryDate"] = err.Error()
		}
	}
	if req.EntryPrice != nil && *req.EntryPrice <= 0.0 {
		errors["entryPrice"] = "entryPrice must be positive"
	}
	if req.Quantity != nil && *req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
