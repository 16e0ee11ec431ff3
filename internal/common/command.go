// Package common holds the command-dispatch and boundary types shared between
// the matching core (internal/engine) and anything that drives it (the
// ingress tier, tests, a future CLI): the Command enum and struct, and the
// wire-facing Order/Trade mirrors of the engine's own types.
package common

import "tickbook/internal/engine"

// CommandKind identifies which of the six operations spec.md §6's command
// interface a Command carries.
type CommandKind uint8

const (
	BidCommand CommandKind = iota
	AskCommand
	MarketBidCommand
	MarketAskCommand
	CancelCommand
	UpdateCommand
)

func (k CommandKind) String() string {
	switch k {
	case BidCommand:
		return "bid"
	case AskCommand:
		return "ask"
	case MarketBidCommand:
		return "market_bid"
	case MarketAskCommand:
		return "market_ask"
	case CancelCommand:
		return "cancel"
	case UpdateCommand:
		return "update"
	default:
		return "unknown"
	}
}

// Command is the serialized form of one order-entry instruction. Exactly the
// fields relevant to Kind are populated; the rest are zero. The ingress tier
// carries it, inside its envelope, across the ring buffer between the
// connection goroutines and the engine's single command-processing loop
// (spec.md §5).
type Command struct {
	Kind        CommandKind
	Quantity    int64
	Price       int64
	OrderType   engine.OrderType
	TraderID    engine.TraderID
	OrderID     engine.OrderID
	NewQuantity int64
}

// Result is what dispatching a Command against an Engine produces. Only
// OrderID is meaningful for order-entry commands (bid/ask/market_*); cancel
// and update return a zero Result since spec.md defines them as void.
type Result struct {
	OrderID engine.OrderID
}

// Dispatch realizes the synchronous command interface spec.md §2 describes:
// "commands enter OrderBook". It is the one place that knows how to route
// each CommandKind to the matching Engine method, so the ingress tier and any
// test driver share a single mapping.
func Dispatch(eng *engine.Engine, cmd Command) Result {
	switch cmd.Kind {
	case BidCommand:
		return Result{OrderID: eng.Bid(cmd.Quantity, cmd.Price, cmd.OrderType, cmd.TraderID)}
	case AskCommand:
		return Result{OrderID: eng.Ask(cmd.Quantity, cmd.Price, cmd.OrderType, cmd.TraderID)}
	case MarketBidCommand:
		return Result{OrderID: eng.MarketBid(cmd.Quantity, cmd.TraderID)}
	case MarketAskCommand:
		return Result{OrderID: eng.MarketAsk(cmd.Quantity, cmd.TraderID)}
	case CancelCommand:
		eng.Cancel(cmd.OrderID, cmd.TraderID)
		return Result{}
	case UpdateCommand:
		eng.Update(cmd.OrderID, cmd.NewQuantity, cmd.TraderID)
		return Result{}
	default:
		return Result{}
	}
}
