package quote

// Quote is one symbol's price data for a day: the last traded (or closing)
// price plus the OHLC range. Low is a pointer because intraday lows are not
// always available, and the importer's stop-loss backfill must know the
// difference between "zero" and "unknown".
type Quote struct {
	Symbol string   `json:"symbol"`
	Price  float64  `json:"price"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    *float64 `json:"low"`
	Close  float64  `json:"close"`
}

// chartResponse maps the Yahoo Finance chart API response. Only the fields
// the journal consumes are declared.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}
