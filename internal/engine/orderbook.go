package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/tidwall/btree"
)

// OrderBook is a price-time-priority limit order book for a single
// instrument. It is not safe for concurrent use: the matching core is a
// single-threaded state machine, and callers (the ingress tier) are
// responsible for serializing commands onto it, per spec.md §5.
type OrderBook struct {
	bids *btree.BTreeG[*PriceLevel]
	asks *btree.BTreeG[*PriceLevel]

	ordersByID  map[OrderID]*Order
	nextOrderID uint64

	executedTransactions []Transaction
}

// NewOrderBook constructs an empty book. Bids are ordered so the best (highest)
// price sorts first; asks so the best (lowest) price sorts first — the dual
// ordered-map design from spec.md §9, realized with tidwall/btree.BTreeG as the
// teacher's orderbook.go already does, rather than a signed-key unified map.
func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price > b.Price
		}),
		asks: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price < b.Price
		}),
		ordersByID: make(map[OrderID]*Order),
	}
}

// Bid submits a buy-side order. Returns InvalidOrderID if price < 0 or
// quantity <= 0, with no state change.
func (b *OrderBook) Bid(quantity, price int64, orderType OrderType, trader TraderID) OrderID {
	if price < 0 {
		return InvalidOrderID
	}
	return b.submit(Bid, price, quantity, orderType, trader)
}

// Ask submits a sell-side order. Returns InvalidOrderID if price < 0 or
// quantity <= 0, with no state change.
func (b *OrderBook) Ask(quantity, price int64, orderType OrderType, trader TraderID) OrderID {
	if price < 0 {
		return InvalidOrderID
	}
	return b.submit(Ask, price, quantity, orderType, trader)
}

// MarketBid submits a market buy: it crosses every resting ask regardless of
// price, and any residual quantity is discarded rather than resting.
func (b *OrderBook) MarketBid(quantity int64, trader TraderID) OrderID {
	return b.submit(Bid, math.MaxInt64, quantity, Market, trader)
}

// MarketAsk submits a market sell. Price 0 leverages the invariant that every
// ask price is non-negative, so it crosses every resting bid; this holds only
// because a market order's residual is unconditionally discarded below,
// regardless of how the price comparison resolves (spec.md §4.2).
func (b *OrderBook) MarketAsk(quantity int64, trader TraderID) OrderID {
	return b.submit(Ask, 0, quantity, Market, trader)
}

func (b *OrderBook) submit(side Side, price, quantity int64, orderType OrderType, trader TraderID) OrderID {
	if quantity <= 0 {
		return InvalidOrderID
	}

	b.nextOrderID++
	order := &Order{
		ID:        OrderID(b.nextOrderID),
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		OrderType: orderType,
		TraderID:  trader,
	}
	b.admit(order)
	return order.ID
}

// admit runs the admission pipeline from spec.md §4.4: attempt to cross
// against the opposite book, then rest any residual limit quantity.
func (b *OrderBook) admit(order *Order) {
	if b.crosses(order) {
		b.match(order)
	}
	if order.Quantity > 0 && order.OrderType.restsOnResidual() {
		b.insert(order)
	}
}

// crosses reports whether order's price crosses the current opposite best
// level. An empty opposite side never crosses.
func (b *OrderBook) crosses(order *Order) bool {
	best := b.bestOpposite(order.Side)
	if best == nil {
		return false
	}
	if order.Side == Bid {
		return best.Price <= order.Price
	}
	return best.Price >= order.Price
}

// match implements the matching algorithm of spec.md §4.4: sweep the best
// opposite level's FIFO queue, cascading into the next price level once the
// current one empties, until the taker is filled or the book stops crossing.
//
// The loop re-fetches the best opposite level at the top of every outer
// iteration rather than holding a stale reference across a cascade — the
// mid-cascade destruction hazard spec.md §9 calls out: drop a level only
// after it is fully consumed, then reacquire before touching it again.
func (b *OrderBook) match(order *Order) {
	for order.Quantity > 0 {
		level := b.bestOpposite(order.Side)
		if level == nil {
			return
		}
		if order.Side == Bid {
			if level.Price > order.Price {
				return
			}
		} else if level.Price < order.Price {
			return
		}

		for level.AggregateQuantity > 0 && order.Quantity > 0 && level.Length() > 0 {
			maker := level.Head()
			fill := min(order.Quantity, maker.Quantity)

			b.executedTransactions = append(b.executedTransactions, Transaction{
				TakerTraderID: order.TraderID,
				MakerTraderID: maker.TraderID,
				TakerOrderID:  order.ID,
				MakerOrderID:  maker.ID,
				Price:         level.Price,
				Quantity:      fill,
			})

			order.Quantity -= fill
			maker.Quantity -= fill
			level.AggregateQuantity -= fill

			if maker.Quantity == 0 {
				delete(b.ordersByID, maker.ID)
				level.PopHead()
			}
		}

		if level.Empty() {
			b.oppositeLevels(order.Side).Delete(level)
		}
	}
}

// insert registers order in the id index and appends it to its side's
// PriceLevel, creating the level if this is the first order at that price.
func (b *OrderBook) insert(order *Order) {
	levels := b.sideLevels(order.Side)
	if level, ok := levels.Get(&PriceLevel{Price: order.Price}); ok {
		level.Append(order)
	} else {
		levels.Set(newPriceLevel(order))
	}
	b.ordersByID[order.ID] = order
}

// lookup resolves id to its resting order, enforcing trader ownership. It
// returns errNotFound for both an unknown id and a trader mismatch — callers
// outside this package never see the distinction, since spec.md's error
// taxonomy treats both as the same silent no-op.
func (b *OrderBook) lookup(id OrderID, trader TraderID) (*Order, error) {
	order, ok := b.ordersByID[id]
	if !ok || order.TraderID != trader {
		return nil, errNotFound
	}
	return order, nil
}

// Cancel removes a resting order. A no-op if id is unknown or trader does not
// own it — per spec.md, callers are expected to track their own ids.
func (b *OrderBook) Cancel(id OrderID, trader TraderID) {
	order, err := b.lookup(id, trader)
	if err != nil {
		return
	}
	b.remove(order)
}

func (b *OrderBook) remove(order *Order) {
	level := order.level
	level.Remove(order)
	delete(b.ordersByID, order.ID)
	if level.Empty() {
		b.sideLevels(order.Side).Delete(level)
	}
}

// Update resizes a resting order. newQuantity == 0 behaves exactly like
// Cancel. Shrinking preserves queue position (mutate in place). Growing loses
// priority: the order is removed and re-appended at the tail of its
// PriceLevel, the standard exchange convention for size increases — and,
// deliberately, NOT the source's double-counting bug (spec.md §9): only the
// append adjusts the aggregate quantity, since Append and Remove already keep
// AggregateQuantity in sync with their own delta.
func (b *OrderBook) Update(id OrderID, newQuantity int64, trader TraderID) {
	if newQuantity == 0 {
		b.Cancel(id, trader)
		return
	}
	order, err := b.lookup(id, trader)
	if err != nil {
		return
	}

	level := order.level
	delta := order.Quantity - newQuantity
	if delta >= 0 {
		order.Quantity = newQuantity
		level.AggregateQuantity -= delta
		return
	}

	level.Remove(order)
	order.Quantity = newQuantity
	level.Append(order)
}

// BestBid returns the best (highest) bid price and its aggregate resting
// quantity. ok is false if the bid side is empty.
func (b *OrderBook) BestBid() (price, quantity int64, ok bool) {
	level, found := b.bids.Min()
	if !found {
		return 0, 0, false
	}
	return level.Price, level.AggregateQuantity, true
}

// BestAsk returns the best (lowest) ask price and its aggregate resting
// quantity. ok is false if the ask side is empty.
func (b *OrderBook) BestAsk() (price, quantity int64, ok bool) {
	level, found := b.asks.Min()
	if !found {
		return 0, 0, false
	}
	return level.Price, level.AggregateQuantity, true
}

// ExecutedTransactions returns the append-only transaction log accumulated
// since the book was created or last cleared.
func (b *OrderBook) ExecutedTransactions() []Transaction {
	return b.executedTransactions
}

// ClearTransactions truncates the transaction log.
func (b *OrderBook) ClearTransactions() {
	b.executedTransactions = b.executedTransactions[:0]
}

// Snapshot writes one line per price level: bids ascending by price, then
// asks ascending by price, matching spec.md §6's textual-snapshot ordering.
func (b *OrderBook) Snapshot(w io.Writer) error {
	var writeErr error
	write := func(side string, level *PriceLevel) bool {
		_, writeErr = fmt.Fprintf(w, "%s %d @ %d\n", side, level.AggregateQuantity, level.Price)
		return writeErr == nil
	}

	// bids sorts highest-first; Reverse walks it lowest-first.
	b.bids.Reverse(func(level *PriceLevel) bool { return write("BID", level) })
	if writeErr != nil {
		return writeErr
	}
	b.asks.Scan(func(level *PriceLevel) bool { return write("ASK", level) })
	return writeErr
}

func (b *OrderBook) sideLevels(side Side) *btree.BTreeG[*PriceLevel] {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) oppositeLevels(side Side) *btree.BTreeG[*PriceLevel] {
	if side == Bid {
		return b.asks
	}
	return b.bids
}

func (b *OrderBook) bestOpposite(side Side) *PriceLevel {
	level, ok := b.oppositeLevels(side).Min()
	if !ok {
		return nil
	}
	return level
}

// transactionsSince returns the transactions appended after mark, for the
// Engine wrapper to fan out to a Reporter without re-scanning the whole log.
func (b *OrderBook) transactionsSince(mark int) []Transaction {
	return b.executedTransactions[mark:]
}

// TransactionCount returns the current length of the transaction log, usable
// as a mark for transactionsSince.
func (b *OrderBook) TransactionCount() int {
	return len(b.executedTransactions)
}
