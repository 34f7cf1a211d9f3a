package kite

// sessionResponse is the Kite Connect session token exchange envelope.
type sessionResponse struct {
	Status string `json:"status"`
	Data   struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
	} `json:"data"`
	Message string `json:"message"`
}

// Order is one row of the Kite Connect orders response. Only the fields the
// importer consumes are mapped.
type Order struct {
	TradingSymbol   string  `json:"tradingsymbol"`
	TransactionType string  `json:"transaction_type"` // BUY or SELL
	FilledQuantity  float64 `json:"filled_quantity"`
	AveragePrice    float64 `json:"average_price"`
	Status          string  `json:"status"` // only COMPLETE orders are consumed
	OrderTimestamp  string  `json:"order_timestamp"`
}

type ordersResponse struct {
	Status  string  `json:"status"`
	Data    []Order `json:"data"`
	Message string  `json:"message"`
}

// Holding is one row of the Kite Connect holdings response.
type Holding struct {
	TradingSymbol string  `json:"tradingsymbol"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	LastPrice     float64 `json:"last_price"`
	DayLow        float64 `json:"day_low"`
}

type holdingsResponse struct {
	Status  string    `json:"status"`
	Data    []Holding `json:"data"`
	Message string    `json:"message"`
}
