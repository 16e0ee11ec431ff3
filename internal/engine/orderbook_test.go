package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenario_SimpleCross(t *testing.T) {
	book := NewOrderBook()

	bidID := book.Bid(10, 100, Limit, 0)
	assert.Equal(t, OrderID(1), bidID)
	assert.Empty(t, book.ExecutedTransactions())

	askID := book.Ask(10, 100, Limit, 1)
	assert.Equal(t, OrderID(2), askID)

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, Transaction{
		TakerTraderID: 1, MakerTraderID: 0,
		TakerOrderID: 2, MakerOrderID: 1,
		Price: 100, Quantity: 10,
	}, txs[0])

	_, _, ok := book.BestBid()
	assert.False(t, ok)
	_, _, ok = book.BestAsk()
	assert.False(t, ok)
}

func TestScenario_TimePriorityWithinLevel(t *testing.T) {
	book := NewOrderBook()

	book.Bid(5, 100, Limit, 0)  // id 1
	book.Bid(5, 100, Limit, 1)  // id 2
	book.Ask(7, 100, Limit, 2)  // id 3

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, Transaction{TakerTraderID: 2, MakerTraderID: 0, TakerOrderID: 3, MakerOrderID: 1, Price: 100, Quantity: 5}, txs[0])
	assert.Equal(t, Transaction{TakerTraderID: 2, MakerTraderID: 1, TakerOrderID: 3, MakerOrderID: 2, Price: 100, Quantity: 2}, txs[1])

	price, qty, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(100), price)
	assert.Equal(t, int64(3), qty)
}

func TestScenario_PricePriorityAcrossLevels(t *testing.T) {
	book := NewOrderBook()

	book.Ask(1, 101, Limit, 0) // id 1
	book.Ask(1, 100, Limit, 1) // id 2
	book.Bid(2, 101, Limit, 2) // id 3

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, Transaction{TakerTraderID: 2, MakerTraderID: 1, TakerOrderID: 3, MakerOrderID: 2, Price: 100, Quantity: 1}, txs[0])
	assert.Equal(t, Transaction{TakerTraderID: 2, MakerTraderID: 0, TakerOrderID: 3, MakerOrderID: 1, Price: 101, Quantity: 1}, txs[1])

	_, _, ok := book.BestBid()
	assert.False(t, ok)
	_, _, ok = book.BestAsk()
	assert.False(t, ok)
}

func TestScenario_UpdateGrowLosesPriority(t *testing.T) {
	book := NewOrderBook()

	book.Bid(1, 100, Limit, 0) // id 1
	book.Bid(1, 100, Limit, 1) // id 2
	book.Update(1, 5, 0)       // grows id 1 to qty 5, sent to tail
	book.Ask(2, 100, Limit, 2) // id 3

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 2)
	// id 2 (still at head, untouched by the grow) is consumed first and fully.
	assert.Equal(t, Transaction{TakerTraderID: 2, MakerTraderID: 1, TakerOrderID: 3, MakerOrderID: 2, Price: 100, Quantity: 1}, txs[0])
	// id 1 (grown, now at the tail) absorbs the remainder, leaving qty 4.
	assert.Equal(t, Transaction{TakerTraderID: 2, MakerTraderID: 0, TakerOrderID: 3, MakerOrderID: 1, Price: 100, Quantity: 1}, txs[1])

	price, qty, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(100), price)
	assert.Equal(t, int64(4), qty)
}

func TestScenario_FillAndKillDiscardsResidual(t *testing.T) {
	book := NewOrderBook()

	book.Ask(1, 100, Limit, 0)
	id := book.Bid(10, 100, FillAndKill, 1)

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, int64(1), txs[0].Quantity)

	_, _, ok := book.BestBid()
	assert.False(t, ok, "fill-and-kill residual must not rest")

	order, err := book.lookup(id, 1)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, errNotFound)
}

func TestScenario_CancelAuthorization(t *testing.T) {
	book := NewOrderBook()

	id := book.Bid(1, 100, Limit, 7)

	book.Cancel(id, 8) // wrong trader: no-op
	price, qty, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(100), price)
	assert.Equal(t, int64(1), qty)

	book.Cancel(id, 7) // correct trader: removes it
	_, _, ok = book.BestBid()
	assert.False(t, ok)
}

func TestLaw_CancelInvertsInsert(t *testing.T) {
	book := NewOrderBook()

	id := book.Bid(5, 100, Limit, 0)
	book.Cancel(id, 0)

	_, _, ok := book.BestBid()
	assert.False(t, ok)
	assert.Empty(t, book.ExecutedTransactions())
}

func TestLaw_UpdateSameQuantityIsIdentity(t *testing.T) {
	book := NewOrderBook()

	first := book.Bid(5, 100, Limit, 0)
	book.Bid(5, 100, Limit, 1)
	book.Update(first, 5, 0)

	book.Ask(5, 100, Limit, 2)
	txs := book.ExecutedTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, first, txs[0].MakerOrderID, "priority unaffected by an identity update")
}

func TestLaw_UpdateDecreasePreservesQueuePosition(t *testing.T) {
	book := NewOrderBook()

	first := book.Bid(5, 100, Limit, 0)
	book.Bid(5, 100, Limit, 1)
	book.Update(first, 2, 0)

	book.Ask(2, 100, Limit, 2)
	txs := book.ExecutedTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, first, txs[0].MakerOrderID)
	assert.Equal(t, int64(2), txs[0].Quantity)
}

func TestLaw_MarketOrdersNeverRest(t *testing.T) {
	book := NewOrderBook()

	id := book.MarketBid(10, 0)
	assert.NotEqual(t, InvalidOrderID, id)

	_, err := book.lookup(id, 0)
	assert.ErrorIs(t, err, errNotFound)
	_, _, ok := book.BestBid()
	assert.False(t, ok)
}

func TestMarketBidCrossesEveryAskLevel(t *testing.T) {
	book := NewOrderBook()

	book.Ask(5, 100, Limit, 0)
	book.Ask(5, 105, Limit, 1)
	book.MarketBid(8, 2)

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, int64(100), txs[0].Price)
	assert.Equal(t, int64(5), txs[0].Quantity)
	assert.Equal(t, int64(105), txs[1].Price)
	assert.Equal(t, int64(3), txs[1].Quantity)

	price, qty, ok := book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(105), price)
	assert.Equal(t, int64(2), qty)
}

func TestMarketAskCrossesEveryBidLevel(t *testing.T) {
	book := NewOrderBook()

	book.Bid(5, 105, Limit, 0)
	book.Bid(5, 100, Limit, 1)
	book.MarketAsk(8, 2)

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 2)
	assert.Equal(t, int64(105), txs[0].Price)
	assert.Equal(t, int64(100), txs[1].Price)
}

func TestValidationRejectsNegativePriceAndNonPositiveQuantity(t *testing.T) {
	book := NewOrderBook()

	assert.Equal(t, InvalidOrderID, book.Bid(10, -1, Limit, 0))
	assert.Equal(t, InvalidOrderID, book.Ask(0, 100, Limit, 0))
	assert.Equal(t, InvalidOrderID, book.Bid(-5, 100, Limit, 0))
	assert.Empty(t, book.ExecutedTransactions())
}

func TestCascadeAcrossMultipleLevelsAndMakers(t *testing.T) {
	book := NewOrderBook()

	book.Ask(3, 100, Limit, 0)
	book.Ask(3, 100, Limit, 1)
	book.Ask(3, 101, Limit, 2)

	book.Bid(7, 101, Limit, 3)

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 3)
	assert.Equal(t, int64(3), txs[0].Quantity)
	assert.Equal(t, int64(3), txs[1].Quantity)
	assert.Equal(t, int64(1), txs[2].Quantity)

	_, _, ok := book.BestAsk()
	require.True(t, ok)
}

func TestSnapshotOrdersBidsAndAsksAscendingByPrice(t *testing.T) {
	book := NewOrderBook()

	book.Bid(1, 99, Limit, 0)
	book.Bid(1, 101, Limit, 1)
	book.Ask(1, 103, Limit, 2)
	book.Ask(1, 102, Limit, 3)

	var sb stringsBuilder
	require.NoError(t, book.Snapshot(&sb))
	assert.Equal(t, "BID 1 @ 99\nBID 1 @ 101\nASK 1 @ 102\nASK 1 @ 103\n", sb.String())
}

func TestUpdateToZeroQuantityCancels(t *testing.T) {
	book := NewOrderBook()

	id := book.Bid(5, 100, Limit, 0)
	book.Update(id, 0, 0)

	_, _, ok := book.BestBid()
	assert.False(t, ok)
}

func TestSelfTradeIsAllowed(t *testing.T) {
	book := NewOrderBook()

	book.Bid(5, 100, Limit, 42)
	book.Ask(5, 100, Limit, 42)

	txs := book.ExecutedTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, TraderID(42), txs[0].TakerTraderID)
	assert.Equal(t, TraderID(42), txs[0].MakerTraderID)
}

func TestClearTransactions(t *testing.T) {
	book := NewOrderBook()
	book.Bid(5, 100, Limit, 0)
	book.Ask(5, 100, Limit, 1)
	require.NotEmpty(t, book.ExecutedTransactions())

	book.ClearTransactions()
	assert.Empty(t, book.ExecutedTransactions())
}

// stringsBuilder is a minimal io.Writer so Snapshot can be tested without
// importing strings.Builder's broader API surface.
type stringsBuilder struct {
	data []byte
}

func (b *stringsBuilder) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *stringsBuilder) String() string {
	return string(b.data)
}
