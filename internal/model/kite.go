package model

import "time"

// KiteSession holds the broker session persisted after a token exchange.
// The access token is stored fernet-encrypted; Token carries the decrypted
// value in memory and is never serialized.
type KiteSession struct {
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Holding is one row of the broker's holdings response, used by the UI to
// suggest trades for positions that predate the journal.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"averagePrice"`
	LastPrice    float64 `json:"lastPrice"`
	PrevDayLow   float64 `json:"prevDayLow"`
}
