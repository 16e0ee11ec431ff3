package engine

import "github.com/rs/zerolog"

// Reporter receives transactions and rejections as they happen, decoupling
// the matching core from however results are fanned back out to callers (the
// ingress tier's websocket connections, in this repo). A nil Reporter is
// valid: Engine simply does not fan anything out.
type Reporter interface {
	ReportTrade(tx Transaction)
	ReportReject(command string, reason string)
}

// Engine is a thin supervisory wrapper around a single OrderBook: it assigns
// the command boundary, owns structured logging, and fans newly executed
// transactions out to a Reporter. Multi-instrument books are an explicit
// spec.md non-goal, so — unlike the teacher's Engine, which indexed a map of
// books by asset type — Engine here owns exactly one OrderBook.
type Engine struct {
	book     *OrderBook
	logger   zerolog.Logger
	reporter Reporter
}

// New constructs an Engine around a fresh, empty OrderBook.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		book:   NewOrderBook(),
		logger: logger.With().Str("component", "engine").Logger(),
	}
}

// SetReporter installs the Reporter that receives fanned-out trades and
// rejections. Safe to call once before the engine starts receiving commands.
func (e *Engine) SetReporter(r Reporter) {
	e.reporter = r
}

// Book exposes the underlying OrderBook for observation (best bid/ask,
// snapshot, transaction log) without adding duplicate passthrough methods.
func (e *Engine) Book() *OrderBook {
	return e.book
}

// Bid submits a buy-side order and logs + reports the outcome.
func (e *Engine) Bid(quantity, price int64, orderType OrderType, trader TraderID) OrderID {
	mark := e.book.TransactionCount()
	id := e.book.Bid(quantity, price, orderType, trader)
	e.finish("bid", id, trader, mark)
	return id
}

// Ask submits a sell-side order and logs + reports the outcome.
func (e *Engine) Ask(quantity, price int64, orderType OrderType, trader TraderID) OrderID {
	mark := e.book.TransactionCount()
	id := e.book.Ask(quantity, price, orderType, trader)
	e.finish("ask", id, trader, mark)
	return id
}

// MarketBid submits a market buy and logs + reports the outcome.
func (e *Engine) MarketBid(quantity int64, trader TraderID) OrderID {
	mark := e.book.TransactionCount()
	id := e.book.MarketBid(quantity, trader)
	e.finish("market_bid", id, trader, mark)
	return id
}

// MarketAsk submits a market sell and logs + reports the outcome.
func (e *Engine) MarketAsk(quantity int64, trader TraderID) OrderID {
	mark := e.book.TransactionCount()
	id := e.book.MarketAsk(quantity, trader)
	e.finish("market_ask", id, trader, mark)
	return id
}

// Cancel cancels a resting order.
func (e *Engine) Cancel(id OrderID, trader TraderID) {
	e.book.Cancel(id, trader)
	e.logger.Debug().Uint64("order_id", uint64(id)).Uint64("trader_id", uint64(trader)).Msg("cancel")
}

// Update resizes a resting order.
func (e *Engine) Update(id OrderID, newQuantity int64, trader TraderID) {
	mark := e.book.TransactionCount()
	e.book.Update(id, newQuantity, trader)
	e.logger.Debug().
		Uint64("order_id", uint64(id)).
		Int64("new_quantity", newQuantity).
		Uint64("trader_id", uint64(trader)).
		Msg("update")
	e.reportNewTransactions(mark)
}

// finish logs admission outcome and fans out any resulting rejection or
// transactions. Rejections are logged at debug, not error: spec.md treats
// them as a routine, expected outcome, not a fault.
func (e *Engine) finish(command string, id OrderID, trader TraderID, mark int) {
	if id == InvalidOrderID {
		e.logger.Debug().Str("command", command).Uint64("trader_id", uint64(trader)).Msg("rejected")
		if e.reporter != nil {
			e.reporter.ReportReject(command, "invalid price or quantity")
		}
		return
	}
	e.logger.Debug().Str("command", command).Uint64("order_id", uint64(id)).Msg("admitted")
	e.reportNewTransactions(mark)
}

func (e *Engine) reportNewTransactions(mark int) {
	txs := e.book.transactionsSince(mark)
	if len(txs) == 0 {
		return
	}
	for _, tx := range txs {
		e.logger.Debug().
			Uint64("taker_trader_id", uint64(tx.TakerTraderID)).
			Uint64("maker_trader_id", uint64(tx.MakerTraderID)).
			Int64("price", tx.Price).
			Int64("quantity", tx.Quantity).
			Msg("matched")
		if e.reporter != nil {
			e.reporter.ReportTrade(tx)
		}
	}
}
