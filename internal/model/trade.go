package model

import "time"

// TradeType identifies the direction of a trade.
// IPO is a long position whose entry price and date come from an IPO
// allotment rather than a regular buy order.
type TradeType string

const (
	TradeTypeLong  TradeType = "LONG"
	TradeTypeShort TradeType = "SHORT"
	TradeTypeIPO   TradeType = "IPO"
)

// TradeStatus reflects how much of a trade's original quantity has been exited.
type TradeStatus string

const (
	TradeStatusOpen    TradeStatus = "OPEN"
	TradeStatusPartial TradeStatus = "PARTIAL"
	TradeStatusClosed  TradeStatus = "CLOSED"
)

// Exit represents one partial or full close-out against a trade.
// Pnl is computed from the trade's entry price and type when the exit is
// recorded and is only re-derived when the entry price or trade type changes.
type Exit struct {
	ID        string    `json:"id"`
	TradeID   string    `json:"tradeId"`
	ExitDate  time.Time `json:"exitDate"`
	ExitPrice float64   `json:"exitPrice"`
	Quantity  float64   `json:"quantity"`
	Pnl       float64   `json:"pnl"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Trade represents one position, possibly partially closed out.
//
// Status, RemainingQuantity, BookedProfit and TotalPnl are derived fields.
// They are never set directly; Recompute derives them from the exits list
// after every mutation.
type Trade struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	TradeType       TradeType `json:"tradeType"`
	EntryDate       time.Time `json:"entryDate"`
	EntryPrice      float64   `json:"entryPrice"`
	Quantity        float64   `json:"quantity"`
	CurrentPrice    *float64  `json:"currentPrice"`
	SetupStopLoss   *float64  `json:"setupStopLoss"`
	CurrentStopLoss *float64  `json:"currentStopLoss"`
	Target          *float64  `json:"target"`
	TargetRPT       float64   `json:"targetRPT"`
	Notes           string    `json:"notes"`
	Exits           []Exit    `json:"exits"`

	Status            TradeStatus `json:"status"`
	RemainingQuantity float64     `json:"remainingQuantity"`
	BookedProfit      float64     `json:"bookedProfit"`
	TotalPnl          float64     `json:"totalPnl"`

	// PendingAllotmentBackfill marks IPO placeholder trades created by the
	// importer whose entry price and date still need the allotment data.
	PendingAllotmentBackfill bool `json:"pendingAllotmentBackfill,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ExitPnl computes the realized profit for one exit slice.
// For SHORT trades the sign convention flips; IPO trades use the LONG formula.
func ExitPnl(tradeType TradeType, entryPrice, exitPrice, quantity float64) float64 {
	if tradeType == TradeTypeShort {
		return (entryPrice - exitPrice) * quantity
	}
	return (exitPrice - entryPrice) * quantity
}

// ExitedQuantity sums the quantities of all recorded exits.
func (t *Trade) ExitedQuantity() float64 {
	var total float64
	for _, e := range t.Exits {
		total += e.Quantity
	}
	return total
}

// Recompute derives RemainingQuantity, BookedProfit, TotalPnl and Status
// from the current exits list. It always recomputes from scratch rather than
// patching incrementally, so repeated mutations cannot drift.
func (t *Trade) Recompute() {
	exitedQty := t.ExitedQuantity()

	var booked float64
	for _, e := range t.Exits {
		booked += e.Pnl
	}

	t.RemainingQuantity = t.Quantity - exitedQty
	t.BookedProfit = booked
	t.TotalPnl = booked

	switch {
	case t.RemainingQuantity == 0:
		t.Status = TradeStatusClosed
	case exitedQty > 0:
		t.Status = TradeStatusPartial
	default:
		t.Status = TradeStatusOpen
	}
}

// RecomputeExitPnls re-derives every exit's frozen pnl from the trade's
// current entry price and type, then recomputes the trade's derived fields.
// This is the one place child records change as a side effect of a parent
// edit (entry price or trade type edits).
func (t *Trade) RecomputeExitPnls() {
	for i := range t.Exits {
		t.Exits[i].Pnl = ExitPnl(t.TradeType, t.EntryPrice, t.Exits[i].ExitPrice, t.Exits[i].Quantity)
	}
	t.Recompute()
}

// UnrealizedPnl is the mark-to-market profit on the remaining open quantity.
// Defined only when a current price is known and shares remain; otherwise 0.
// Never persisted: it is a display-time computation.
func (t *Trade) UnrealizedPnl() float64 {
	if t.CurrentPrice == nil || t.RemainingQuantity <= 0 {
		return 0
	}
	if t.TradeType == TradeTypeShort {
		return (t.EntryPrice - *t.CurrentPrice) * t.RemainingQuantity
	}
	return (*t.CurrentPrice - t.EntryPrice) * t.RemainingQuantity
}

// EffectiveStopLoss returns the trailing stop loss when set, falling back to
// the setup stop loss. Nil when the trade has no stop loss at all.
func (t *Trade) EffectiveStopLoss() *float64 {
	if t.CurrentStopLoss != nil {
		return t.CurrentStopLoss
	}
	return t.SetupStopLoss
}

// Risk is the rupee amount lost if the remaining quantity stops out at the
// effective stop loss. Trades without a stop loss contribute 0.
func (t *Trade) Risk() float64 {
	sl := t.EffectiveStopLoss()
	if sl == nil {
		return 0
	}
	if t.TradeType == TradeTypeShort {
		return (*sl - t.EntryPrice) * t.RemainingQuantity
	}
	return (t.EntryPrice - *sl) * t.RemainingQuantity
}
