package request

type CreateTradeRequest struct {
	Symbol          string   `json:"symbol"`
	TradeType       string   `json:"tradeType"`
	EntryDate       string   `json:"entryDate"`
	EntryPrice      float64  `json:"entryPrice"`
	Quantity        float64  `json:"quantity"`
	CurrentPrice    *float64 `json:"currentPrice,omitempty"`
	SetupStopLoss   *float64 `json:"setupStopLoss,omitempty"`
	CurrentStopLoss *float64 `json:"currentStopLoss,omitempty"`
	Target          *float64 `json:"target,omitempty"`
	TargetRPT       float64  `json:"targetRPT"`
	Notes           string   `json:"notes"`
}

type UpdateTradeRequest struct {
	Symbol          *string  `json:"symbol,omitempty"`
	TradeType       *string  `json:"tradeType,omitempty"`
	EntryDate       *string  `json:"entryDate,omitempty"`
	EntryPrice      *float64 `json:"entryPrice,omitempty"`
	Quantity        *float64 `json:"quantity,omitempty"`
	SetupStopLoss   *float64 `json:"setupStopLoss,omitempty"`
	CurrentStopLoss *float64 `json:"currentStopLoss,omitempty"`
	Target          *float64 `json:"target,omitempty"`
	TargetRPT       *float64 `json:"targetRPT,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
	CurrentPrice    *float64 `json:"currentPrice,omitempty"`
}

// UpdatePriceRequest carries a user-driven current-price update.
// A null price clears the stored quote.
type UpdatePriceRequest struct {
	CurrentPrice *float64 `json:"currentPrice"`
}

// UpdateStopLossRequest carries a trailing stop-loss update.
// A null value clears the trailing stop.
type UpdateStopLossRequest struct {
	CurrentStopLoss *float64 `json:"currentStopLoss"`
}
