package importer

import (
	"sort"
	"time"

	"github.com/tradelog/trading-journal-backend/internal/model"
)

// LotMatching selects which open lot a sell is matched against first.
type LotMatching string

const (
	// LotMatchingLatest matches sells against the most recently created lot
	// first. This mirrors the journal's historical behavior; it is not a
	// tax-correct FIFO method when several lots are open.
	LotMatchingLatest LotMatching = "latest"

	// LotMatchingFIFO matches sells against the oldest lot first.
	LotMatchingFIFO LotMatching = "fifo"
)

// Options controls the reconciliation pass.
type Options struct {
	// FromDate discards transactions dated before it when non-zero.
	FromDate time.Time

	// LotMatching defaults to LotMatchingLatest when empty.
	LotMatching LotMatching

	// FallbackLows supplies per-symbol intraday lows used for the stop-loss
	// backfill when the quote service has no low for an entry date.
	FallbackLows map[string]float64
}

// Candidate is one reconciled trade ready for deduplication and persistence.
// Exits carry no pnl yet; the accounting engine derives it at creation.
type Candidate struct {
	Trade model.Trade
}

// lot is one entry batch for a symbol during reconciliation: a buy, or
// several buys merged on identical (date, price).
type lot struct {
	date      time.Time
	price     float64
	quantity  float64
	exits     []model.Exit
	selfMatch bool // synthetic trade for an unmatched sell remainder
	created   int  // creation sequence, for the most-recent-first policy
}

func (l *lot) exitedQty() float64 {
	var total float64
	for _, e := range l.exits {
		total += e.Quantity
	}
	return total
}

func (l *lot) headroom() float64 {
	return l.quantity - l.exitedQty()
}

// Reconcile converts an unordered transaction list into normalized trade
// candidates, per symbol:
//
//   - buys merge into lots keyed by (date, price);
//   - sells consume open-lot headroom, most recently created lot first (or
//     oldest first under FIFO);
//   - a sell with no lot at all becomes one IPO placeholder trade per symbol,
//     flagged for allotment backfill;
//   - a sell remainder that outruns existing headroom becomes a synthetic
//     self-matched LONG trade at the sell's own date and price.
//
// No transaction is ever dropped by matching; only the FromDate filter
// discards input.
func Reconcile(txns []RawTransaction, opts Options) []Candidate {
	matching := opts.LotMatching
	if matching == "" {
		matching = LotMatchingLatest
	}

	bySymbol := make(map[string][]RawTransaction)
	symbols := []string{}
	for _, txn := range txns {
		if !opts.FromDate.IsZero() && txn.Date.Before(opts.FromDate) {
			continue
		}
		if _, seen := bySymbol[txn.Symbol]; !seen {
			symbols = append(symbols, txn.Symbol)
		}
		bySymbol[txn.Symbol] = append(bySymbol[txn.Symbol], txn)
	}
	sort.Strings(symbols)

	candidates := []Candidate{}
	for _, symbol := range symbols {
		candidates = append(candidates, reconcileSymbol(symbol, bySymbol[symbol], matching)...)
	}
	return candidates
}

func reconcileSymbol(symbol string, txns []RawTransaction, matching LotMatching) []Candidate {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})

	lots := []*lot{}
	seq := 0

	findLot := func(date time.Time, price float64) *lot {
		for _, l := range lots {
			if !l.selfMatch && l.date.Equal(date) && l.price == price {
				return l
			}
		}
		return nil
	}

	// First pass: merge buys into lots.
	for _, txn := range txns {
		if !txn.IsBuy {
			continue
		}
		if existing := findLot(txn.Date, txn.Price); existing != nil {
			existing.quantity += txn.Quantity
			continue
		}
		lots = append(lots, &lot{date: txn.Date, price: txn.Price, quantity: txn.Quantity, created: seq})
		seq++
	}

	hasBuyLots := len(lots) > 0
	var ipoPlaceholder *model.Trade

	// Second pass: match sells against lot headroom.
	for _, txn := range txns {
		if txn.IsBuy {
			continue
		}

		remaining := txn.Quantity
		for remaining > 0 {
			open := openLot(lots, matching)
			if open == nil {
				break
			}
			matched := open.headroom()
			if matched > remaining {
				matched = remaining
			}
			open.exits = append(open.exits, model.Exit{
				ExitDate:  txn.Date,
				ExitPrice: txn.Price,
				Quantity:  matched,
			})
			remaining -= matched
		}
		if remaining == 0 {
			continue
		}

		if !hasBuyLots {
			// No lot ever existed for this symbol: accumulate one IPO
			// placeholder per symbol, entry to be backfilled from allotment
			// data. Entry price 0 and the sell's date are placeholders.
			if ipoPlaceholder == nil {
				ipoPlaceholder = &model.Trade{
					Symbol:                   symbol,
					TradeType:                model.TradeTypeIPO,
					EntryDate:                txn.Date,
					EntryPrice:               0,
					PendingAllotmentBackfill: true,
				}
			}
			ipoPlaceholder.Quantity += remaining
			ipoPlaceholder.Exits = append(ipoPlaceholder.Exits, model.Exit{
				ExitDate:  txn.Date,
				ExitPrice: txn.Price,
				Quantity:  remaining,
			})
			continue
		}

		// Lots exist but their headroom is spent: represent the remainder as
		// a self-matched trade so the sell is preserved, with no invented pnl.
		selfLot := findSelfMatchLot(lots, txn.Date, txn.Price)
		if selfLot == nil {
			selfLot = &lot{date: txn.Date, price: txn.Price, selfMatch: true, created: seq}
			seq++
			lots = append(lots, selfLot)
		}
		selfLot.quantity += remaining
		selfLot.exits = append(selfLot.exits, model.Exit{
			ExitDate:  txn.Date,
			ExitPrice: txn.Price,
			Quantity:  remaining,
		})
	}

	candidates := []Candidate{}
	for _, l := range lots {
		candidates = append(candidates, Candidate{Trade: model.Trade{
			Symbol:     symbol,
			TradeType:  model.TradeTypeLong,
			EntryDate:  l.date,
			EntryPrice: l.price,
			Quantity:   l.quantity,
			Exits:      l.exits,
		}})
	}
	if ipoPlaceholder != nil {
		candidates = append(candidates, Candidate{Trade: *ipoPlaceholder})
	}
	return candidates
}

// openLot picks the next lot with headroom for a sell. A lot dated after the
// sell still qualifies: tradebook exports routinely carry the legs of a
// buyback or a same-day round trip out of order, so matching goes by the
// symbol's total buys, not by date order.
func openLot(lots []*lot, matching LotMatching) *lot {
	var best *lot
	for _, l := range lots {
		if l.selfMatch || l.headroom() <= 0 {
			continue
		}
		if best == nil {
			best = l
			continue
		}
		if matching == LotMatchingFIFO {
			if l.created < best.created {
				best = l
			}
		} else if l.created > best.created {
			best = l
		}
	}
	return best
}

func findSelfMatchLot(lots []*lot, date time.Time, price float64) *lot {
	for _, l := range lots {
		if l.selfMatch && l.date.Equal(date) && l.price == price {
			return l
		}
	}
	return nil
}
