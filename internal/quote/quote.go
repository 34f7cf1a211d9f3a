package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Service defines the quote lookups the journal consumes: latest prices for
// the live refresh, and a specific day's data for the importer's stop-loss
// backfill. Symbols missing from the returned map simply had no data; that is
// not an error.
type Service interface {
	GetQuotes(ctx context.Context, symbols []string) (map[string]Quote, error)
	GetQuotesForDate(ctx context.Context, symbols []string, date time.Time) (map[string]Quote, error)
}

// FinanceClient provides methods for fetching price data from the Yahoo
// Finance chart API. Plain NSE tickers get the ".NS" suffix appended before
// the query; results are keyed by the original symbol.
type FinanceClient struct {
	httpClient *http.Client
}

// NewFinanceClient creates a new quote client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{},
	}
}

// GetQuotes fetches the most recent price for each symbol, per-symbol best
// effort: symbols that fail to resolve are left out of the map.
func (c *FinanceClient) GetQuotes(ctx context.Context, symbols []string) (map[string]Quote, error) {
	quotes := make(map[string]Quote, len(symbols))
	for _, symbol := range symbols {
		url := fmt.Sprintf(
			"https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=5d",
			yahooSymbol(symbol),
		)
		q, err := c.queryLatest(ctx, url, symbol)
		if err != nil {
			continue
		}
		quotes[symbol] = q
	}
	return quotes, nil
}

// GetQuotesForDate fetches each symbol's daily data for a specific date.
// Symbols with no data for that day (holiday, not yet listed) are left out.
func (c *FinanceClient) GetQuotesForDate(ctx context.Context, symbols []string, date time.Time) (map[string]Quote, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	start := day.Add(-24 * time.Hour)
	end := day.Add(48 * time.Hour)

	quotes := make(map[string]Quote, len(symbols))
	for _, symbol := range symbols {
		url := fmt.Sprintf(
			"https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
			yahooSymbol(symbol),
			start.Unix(),
			end.Unix(),
		)
		q, err := c.queryDay(ctx, url, symbol, day)
		if err != nil {
			continue
		}
		quotes[symbol] = q
	}
	return quotes, nil
}

// queryLatest extracts the last day with a close price from a chart response.
func (c *FinanceClient) queryLatest(ctx context.Context, url, symbol string) (Quote, error) {
	result, err := c.queryYahoo(ctx, url)
	if err != nil {
		return Quote{}, err
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return Quote{}, fmt.Errorf("no quote data for %s", symbol)
	}
	bars := r.Indicators.Quote[0]

	for i := len(r.Timestamp) - 1; i >= 0; i-- {
		if i >= len(bars.Close) || bars.Close[i] == nil {
			continue
		}
		q := Quote{Symbol: symbol, Close: *bars.Close[i]}
		q.Price = *bars.Close[i]
		if r.Meta.RegularMarketPrice != 0 {
			q.Price = r.Meta.RegularMarketPrice
		}
		if i < len(bars.Open) && bars.Open[i] != nil {
			q.Open = *bars.Open[i]
		}
		if i < len(bars.High) && bars.High[i] != nil {
			q.High = *bars.High[i]
		}
		if i < len(bars.Low) && bars.Low[i] != nil {
			q.Low = bars.Low[i]
		}
		return q, nil
	}

	return Quote{}, fmt.Errorf("no close prices for %s", symbol)
}

// queryDay extracts the bar matching one specific day from a chart response.
func (c *FinanceClient) queryDay(ctx context.Context, url, symbol string, day time.Time) (Quote, error) {
	result, err := c.queryYahoo(ctx, url)
	if err != nil {
		return Quote{}, err
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return Quote{}, fmt.Errorf("no quote data for %s", symbol)
	}
	bars := r.Indicators.Quote[0]

	for i, ts := range r.Timestamp {
		if !time.Unix(ts, 0).UTC().Truncate(24 * time.Hour).Equal(day) {
			continue
		}
		if i >= len(bars.Close) || bars.Close[i] == nil {
			break
		}
		q := Quote{Symbol: symbol, Close: *bars.Close[i], Price: *bars.Close[i]}
		if i < len(bars.Open) && bars.Open[i] != nil {
			q.Open = *bars.Open[i]
		}
		if i < len(bars.High) && bars.High[i] != nil {
			q.High = *bars.High[i]
		}
		if i < len(bars.Low) && bars.Low[i] != nil {
			q.Low = bars.Low[i]
		}
		return q, nil
	}

	return Quote{}, fmt.Errorf("no data for %s on %s", symbol, day.Format("2006-01-02"))
}

// queryYahoo executes a chart API request and checks the response envelope.
func (c *FinanceClient) queryYahoo(ctx context.Context, url string) (chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return chartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResponse{}, err
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return chartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return response, fmt.Errorf("no results returned")
	}

	return response, nil
}

// yahooSymbol maps a plain NSE ticker to Yahoo's suffixed form. Symbols that
// already carry an exchange suffix pass through unchanged.
func yahooSymbol(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".NS"
}
