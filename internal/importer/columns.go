package importer

import "strings"

// Mapping assigns tradebook CSV columns to the fields the importer needs.
type Mapping struct {
	Date     int
	Symbol   int
	Side     int
	Quantity int
	Price    int
}

// positionalMapping is the fixed fallback layout used when header detection
// fails: the standard Kite Console tradebook column order.
var positionalMapping = Mapping{
	Date:     0,
	Symbol:   3,
	Side:     4,
	Quantity: 5,
	Price:    6,
}

// columnAliases lists the known header tokens per field, matched
// case-insensitively by substring.
var columnAliases = map[string][]string{
	"date":     {"trade_date", "date", "order_date"},
	"symbol":   {"symbol", "tradingsymbol", "scrip"},
	"side":     {"trade_type", "type", "buy_sell", "side"},
	"quantity": {"quantity", "qty", "traded_qty"},
	"price":    {"price", "trade_price", "avg_price", "average_price"},
}

// DetectMapping scans a header row for known column aliases. Returns the
// detected mapping and true when every required column was found; callers
// fall back to the positional layout otherwise.
func DetectMapping(header []string) (Mapping, bool) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
	}

	find := func(field string) int {
		for _, alias := range columnAliases[field] {
			for i, h := range normalized {
				if strings.Contains(h, alias) {
					return i
				}
			}
		}
		return -1
	}

	m := Mapping{
		Date:     find("date"),
		Symbol:   find("symbol"),
		Side:     find("side"),
		Quantity: find("quantity"),
		Price:    find("price"),
	}
	if m.Date == -1 || m.Symbol == -1 || m.Side == -1 || m.Quantity == -1 || m.Price == -1 {
		return positionalMapping, false
	}
	return m, true
}

// max returns the highest column index the mapping reads, used to skip rows
// that are too short.
func (m Mapping) max() int {
	indices := []int{m.Date, m.Symbol, m.Side, m.Quantity, m.Price}
	highest := indices[0]
	for _, idx := range indices[1:] {
		if idx > highest {
			highest = idx
		}
	}
	return highest
}
