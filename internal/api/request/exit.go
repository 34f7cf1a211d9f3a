package request

type CreateExitRequest struct {
	ExitDate  string  `json:"exitDate"`
	ExitPrice float64 `json:"exitPrice"`
	Quantity  float64 `json:"quantity"`
}

type UpdateExitRequest struct {
	ExitDate  *string  `json:"exitDate,omitempty"`
	ExitPrice *float64 `json:"exitPrice,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
}
