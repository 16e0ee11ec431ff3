package engine

import "fmt"

// OrderID uniquely identifies a resting or in-flight order within one OrderBook
// instance. Ids are assigned by the book itself, starting at 1; 0 is reserved
// as the InvalidOrderID sentinel returned on rejection.
type OrderID uint64

// InvalidOrderID is returned by Bid/Ask/MarketBid/MarketAsk when an order is
// rejected pre-admission. spec.md uses -1 against a signed id space; OrderID
// is unsigned here, so 0 plays the same "impossible value" role since ids are
// assigned starting at 1.
const InvalidOrderID OrderID = 0

// TraderID is the opaque owner tag supplied by the caller. The book holds no
// global trader-id counter; assignment is entirely the caller's responsibility.
type TraderID uint64

// Side identifies which side of the book an order rests on.
type Side int8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "BID"
	}
	return "ASK"
}

// OrderType controls residual handling after the admission pipeline's crossing
// attempt. Iceberg, immediate-or-cancel and post-only are out of scope: never
// implemented, so not even stubbed here.
type OrderType int8

const (
	// Limit orders rest at their limit price once any crossing liquidity is
	// consumed.
	Limit OrderType = iota
	// Market orders cross at any available opposite-side price; any residual
	// is discarded, never rested.
	Market
	// FillAndKill behaves like Limit for matching purposes but discards any
	// residual quantity instead of resting it.
	FillAndKill
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case FillAndKill:
		return "FILL_AND_KILL"
	default:
		return fmt.Sprintf("OrderType(%d)", int8(t))
	}
}

// restsOnResidual reports whether an order of this type should be inserted
// into the book when it still has quantity remaining after matching.
func (t OrderType) restsOnResidual() bool {
	return t == Limit
}
