package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/apperrors"
)

// RawTransaction is one normalized buy or sell from a tradebook export or the
// broker orders API, before any reconciliation.
type RawTransaction struct {
	Date     time.Time
	Symbol   string
	IsBuy    bool
	Quantity float64
	Price    float64
}

// ParseTradebook reads a delimited tradebook export into raw transactions.
// Individual rows that fail to parse are skipped with a warning; only a file
// that cannot be read at all is fatal. The returned warnings describe each
// skipped row.
func ParseTradebook(r io.Reader) ([]RawTransaction, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidCSVInput, err)
	}
	if len(records) < 2 {
		return []RawTransaction{}, nil, nil
	}

	mapping, _ := DetectMapping(records[0])

	var txns []RawTransaction
	var warnings []string

	for i, row := range records[1:] {
		if len(row) < 5 || len(row) <= mapping.max() {
			warnings = append(warnings, fmt.Sprintf("row %d: too few fields", i+2))
			continue
		}

		date, err := parseTradeDate(strings.TrimSpace(row[mapping.Date]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		isBuy, err := parseSide(strings.TrimSpace(row[mapping.Side]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}

		quantity, err := strconv.ParseFloat(strings.TrimSpace(row[mapping.Quantity]), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: invalid quantity %q", i+2, row[mapping.Quantity]))
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[mapping.Price]), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: invalid price %q", i+2, row[mapping.Price]))
			continue
		}

		symbol := NormalizeSymbol(row[mapping.Symbol])
		if symbol == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: empty symbol", i+2))
			continue
		}

		txns = append(txns, RawTransaction{
			Date:     date,
			Symbol:   symbol,
			IsBuy:    isBuy,
			Quantity: quantity,
			Price:    price,
		})
	}

	return txns, warnings, nil
}

// NormalizeSymbol strips the NSE series suffixes brokers append to tickers
// and uppercases the remainder.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(symbol, `"`, "")))
	s = strings.TrimSuffix(s, "-EQ")
	s = strings.TrimSuffix(s, "-BE")
	return s
}

// parseTradeDate handles the tradebook date formats. A dash-separated value
// whose first component has two digits is reinterpreted as DD-MM-YYYY before
// the generic layouts are tried.
func parseTradeDate(value string) (time.Time, error) {
	if parts := strings.Split(value, "-"); len(parts) == 3 && len(parts[0]) == 2 {
		if d, err := time.Parse("2006-01-02", parts[2]+"-"+parts[1]+"-"+parts[0]); err == nil {
			return d, nil
		}
	}

	for _, layout := range []string{
		"2006-01-02",
		"2006/01/02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	} {
		if d, err := time.Parse(layout, value); err == nil {
			return d.UTC().Truncate(24 * time.Hour), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// parseSide maps the tradebook's side column to buy/sell.
func parseSide(value string) (bool, error) {
	v := strings.ToUpper(value)
	switch {
	case strings.Contains(v, "BUY"):
		return true, nil
	case strings.Contains(v, "SELL"):
		return false, nil
	default:
		return false, fmt.Errorf("unknown side %q", value)
	}
}
