package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tradelog/trading-journal-backend/internal/ipo"
	"github.com/tradelog/trading-journal-backend/internal/kite"
	"github.com/tradelog/trading-journal-backend/internal/model"
	"github.com/tradelog/trading-journal-backend/internal/quote"
)

// maxQuoteFetches caps concurrent quote lookups during import so a large
// tradebook does not hammer the quote endpoint.
const maxQuoteFetches = 4

// Result summarizes one import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

// TradeStore is the slice of the trade service the importer depends on.
type TradeStore interface {
	CreateImportedTrade(ctx context.Context, trade *model.Trade) error
	FindByEntry(symbol string, entryPrice float64, entryDate time.Time) (*model.Trade, error)
}

// Importer turns broker transaction exports into journal trades: parse,
// reconcile buys against sells, enrich entries with IPO allotment data and
// entry-day lows, then persist whatever is not already in the journal.
type Importer struct {
	trades TradeStore
	quotes quote.Service
	ipos   ipo.Service
}

// New creates an importer on top of the given trade store and market data
// services. Either service may be nil, which disables the corresponding
// enrichment step.
func New(trades TradeStore, quotes quote.Service, ipos ipo.Service) *Importer {
	return &Importer{trades: trades, quotes: quotes, ipos: ipos}
}

// ImportCSV imports a broker tradebook CSV. Re-running the same file is safe:
// trades whose (symbol, entry price, entry date) already exist are skipped.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	txns, warnings, err := ParseTradebook(r)
	if err != nil {
		return nil, err
	}
	result, err := im.importTransactions(ctx, txns, opts)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}

// ImportOrders imports a day's Kite order list. Only COMPLETE orders count;
// everything else (rejected, cancelled, open) is ignored without a warning
// since the broker reports those states routinely.
func (im *Importer) ImportOrders(ctx context.Context, orders []kite.Order, opts Options) (*Result, error) {
	txns := make([]RawTransaction, 0, len(orders))
	for _, o := range orders {
		if !strings.EqualFold(o.Status, "COMPLETE") {
			continue
		}
		date, err := parseTradeDate(o.OrderTimestamp)
		if err != nil {
			continue
		}
		txns = append(txns, RawTransaction{
			Date:     date,
			Symbol:   NormalizeSymbol(o.TradingSymbol),
			IsBuy:    strings.EqualFold(o.TransactionType, "BUY"),
			Quantity: o.FilledQuantity,
			Price:    o.AveragePrice,
		})
	}
	return im.importTransactions(ctx, txns, opts)
}

func (im *Importer) importTransactions(ctx context.Context, txns []RawTransaction, opts Options) (*Result, error) {
	candidates := Reconcile(txns, opts)

	im.backfillIPOEntries(ctx, candidates)
	im.backfillStopLosses(ctx, candidates, opts.FallbackLows)

	result := &Result{}
	for i := range candidates {
		trade := &candidates[i].Trade

		existing, err := im.trades.FindByEntry(trade.Symbol, trade.EntryPrice, trade.EntryDate)
		if err != nil {
			log.Printf("WARNING: import dedupe lookup failed for %s: %v", trade.Symbol, err)
			result.Skipped++
			continue
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		if err := im.trades.CreateImportedTrade(ctx, trade); err != nil {
			log.Printf("WARNING: failed to import trade for %s: %v", trade.Symbol, err)
			result.Skipped++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// backfillIPOEntries resolves IPO placeholder trades to their real allotment
// price and listing date. Placeholders are batched per entry year; a failed
// or partial lookup leaves the remaining placeholders flagged for a later
// manual backfill rather than blocking the import.
func (im *Importer) backfillIPOEntries(ctx context.Context, candidates []Candidate) {
	if im.ipos == nil {
		return
	}

	byYear := make(map[int][]*model.Trade)
	for i := range candidates {
		trade := &candidates[i].Trade
		if trade.PendingAllotmentBackfill {
			year := trade.EntryDate.Year()
			byYear[year] = append(byYear[year], trade)
		}
	}

	for year, trades := range byYear {
		symbols := make([]string, 0, len(trades))
		for _, t := range trades {
			symbols = append(symbols, t.Symbol)
		}
		infos, err := im.ipos.GetIPOInfo(ctx, symbols, year)
		if err != nil {
			log.Printf("WARNING: IPO lookup failed for %v: %v", symbols, err)
			continue
		}
		bySymbol := make(map[string]ipo.Info, len(infos))
		for _, info := range infos {
			bySymbol[info.Symbol] = info
		}
		for _, t := range trades {
			info, ok := bySymbol[t.Symbol]
			if !ok || info.AllotmentPrice == nil {
				continue
			}
			t.EntryPrice = *info.AllotmentPrice
			if info.ListingDate != nil {
				t.EntryDate = *info.ListingDate
			}
			t.PendingAllotmentBackfill = false
		}
	}
}

// backfillStopLosses sets each non-IPO candidate's setup stop loss to its
// entry day's intraday low, fetching each distinct entry date once. Fallback
// lows (from broker holdings) fill in when the quote service has no data.
func (im *Importer) backfillStopLosses(ctx context.Context, candidates []Candidate, fallbackLows map[string]float64) {
	if im.quotes == nil && len(fallbackLows) == 0 {
		return
	}

	type dayQuery struct {
		date    time.Time
		symbols []string
	}
	byDate := make(map[time.Time]*dayQuery)
	for i := range candidates {
		trade := &candidates[i].Trade
		if trade.TradeType == model.TradeTypeIPO {
			continue
		}
		day := trade.EntryDate.UTC().Truncate(24 * time.Hour)
		q, ok := byDate[day]
		if !ok {
			q = &dayQuery{date: day}
			byDate[day] = q
		}
		q.symbols = append(q.symbols, trade.Symbol)
	}

	lows := make(map[string]map[string]float64, len(byDate)) // date key -> symbol -> low
	if im.quotes != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxQuoteFetches)
		results := make(chan struct {
			key   string
			quote map[string]quote.Quote
		}, len(byDate))

		for _, q := range byDate {
			q := q
			g.Go(func() error {
				quotes, err := im.quotes.GetQuotesForDate(gctx, q.symbols, q.date)
				if err != nil {
					log.Printf("WARNING: quote lookup failed for %s: %v", q.date.Format("2006-01-02"), err)
					return nil
				}
				results <- struct {
					key   string
					quote map[string]quote.Quote
				}{key: dayKey(q.date), quote: quotes}
				return nil
			})
		}
		_ = g.Wait()
		close(results)

		for r := range results {
			m := make(map[string]float64, len(r.quote))
			for sym, q := range r.quote {
				if q.Low != nil {
					m[sym] = *q.Low
				}
			}
			lows[r.key] = m
		}
	}

	for i := range candidates {
		trade := &candidates[i].Trade
		if trade.TradeType == model.TradeTypeIPO || trade.SetupStopLoss != nil {
			continue
		}
		if dayLows, ok := lows[dayKey(trade.EntryDate.UTC().Truncate(24*time.Hour))]; ok {
			if low, ok := dayLows[trade.Symbol]; ok {
				trade.SetupStopLoss = &low
				continue
			}
		}
		if low, ok := fallbackLows[trade.Symbol]; ok {
			v := low
			trade.SetupStopLoss = &v
		}
	}
}

func dayKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}
