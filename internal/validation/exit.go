package validation

import (
	"strings"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/api/request"
)

// ValidateCreateExit validates an exit creation request.
//
// Required fields:
//   - exitDate: Must be in YYYY-MM-DD format
//   - exitPrice: Must be positive
//   - quantity: Must be positive
//
// Quantity is only checked for shape here; whether it fits the trade's
// remaining quantity is the accounting engine's decision.
func ValidateCreateExit(req request.CreateExitRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.ExitDate) == "" {
		errors["exitDate"] = "exitDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ExitDate); err != nil {
		errors["exitDate"] = err.Error()
	}

	if req.ExitPrice <= 0.0 {
		errors["exitPrice"] = "exitPrice must be positive"
	}

	if req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateExit validates an exit update request. All fields are
// optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateExit(req request.UpdateExitRequest) error {
	errors := make(map[string]string)

	if req.ExitDate != nil {
		if strings.TrimSpace(*req.ExitDate) == "" {
			errors["exitDate"] = "exitDate is required"
		} else if _, err := time.Parse("2006-01-02", *req.ExitDate); err != nil {
			errors["exitDate"] = err.Error()
		}
	}
	if req.ExitPrice != nil && *req.ExitPrice <= 0.0 {
		errors["exitPrice"] = "exitPrice must be positive"
	}
	if req.Quantity != nil && *req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
