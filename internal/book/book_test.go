package book

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: bid then cross.
func TestBook_BidThenCross(t *testing.T) {
	b := New()

	trades, err := b.Submit(GoodTillCancel, Buy, 100, 1000)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, Price(100), b.BestBidPrice())
	assert.Equal(t, Quantity(1000), b.BestBidQuantity())
	assert.Equal(t, Price(-1), b.BestAskPrice())
	assert.Equal(t, Quantity(0), b.BestAskQuantity())

	trades, err = b.Submit(GoodTillCancel, Sell, 100, 500)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Trade{BidOrderId: 1, AskOrderId: 2, Price: 100, Quantity: 500}, trades[0])
	assert.Equal(t, Price(100), b.BestBidPrice())
	assert.Equal(t, Quantity(500), b.BestBidQuantity())
	assert.Equal(t, Price(-1), b.BestAskPrice())
}

// Scenario 2: exact cross.
func TestBook_ExactCross(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 1000)
	require.NoError(t, err)

	trades, err := b.Submit(GoodTillCancel, Sell, 100, 1000)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Quantity(1000), trades[0].Quantity)
	assert.Equal(t, Price(-1), b.BestBidPrice())
	assert.Equal(t, Price(-1), b.BestAskPrice())
}

// Scenario 3: partial through multiple resting bids, LIFO consumption.
func TestBook_PartialThroughMultiple_LIFO(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 200) // id 1
	require.NoError(t, err)
	_, err = b.Submit(GoodTillCancel, Buy, 100, 300) // id 2
	require.NoError(t, err)
	_, err = b.Submit(GoodTillCancel, Buy, 100, 500) // id 3
	require.NoError(t, err)

	trades, err := b.Submit(GoodTillCancel, Sell, 100, 600) // id 4
	require.NoError(t, err)
	require.Len(t, trades, 2)

	var total Quantity
	for _, tr := range trades {
		total += tr.Quantity
	}
	assert.Equal(t, Quantity(600), total)

	// Newest bid (id 3) consumed fully first, then id 2 partially; id 1 is
	// never reached.
	assert.Equal(t, OrderId(3), trades[0].BidOrderId)
	assert.Equal(t, Quantity(500), trades[0].Quantity)
	assert.Equal(t, OrderId(2), trades[1].BidOrderId)
	assert.Equal(t, Quantity(100), trades[1].Quantity)

	o1 := b.Lookup(1)
	require.NotNil(t, o1)
	assert.Equal(t, Quantity(200), o1.GetRemainingQuantity(), "id 1 untouched by this cross")
}

// Scenario 4: FillAndKill, no residue possible (empty book).
func TestBook_FillAndKill_NoResidue(t *testing.T) {
	b := New()
	trades, err := b.Submit(FillAndKill, Sell, 100, 1000)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, Price(-1), b.BestAskPrice())
}

// Scenario 5: FillAndKill with residue discarded.
func TestBook_FillAndKill_ResidueDiscarded(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 400)
	require.NoError(t, err)

	trades, err := b.Submit(FillAndKill, Sell, 100, 1000)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Quantity(400), trades[0].Quantity)
	assert.Equal(t, Price(-1), b.BestBidPrice())
	assert.Equal(t, Price(-1), b.BestAskPrice())
}

// Scenario 6: cancel of a filled order fails both ways.
func TestBook_CancelOfFilled(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 1000)
	require.NoError(t, err)
	_, err = b.Submit(GoodTillCancel, Sell, 100, 1000)
	require.NoError(t, err)

	assert.False(t, b.Cancel(1))
	assert.False(t, b.Cancel(2))
}

func TestBook_CancelUnmatchedThenSecondCancelFails(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 1000)
	require.NoError(t, err)

	assert.True(t, b.Cancel(1))
	assert.False(t, b.Cancel(1))
	assert.Equal(t, Price(-1), b.BestBidPrice(), "cancelled order no longer counts toward best bid")
}

func TestBook_PriceOutOfRange(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, MaxPrice+1, 10)
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
	_, err = b.Submit(GoodTillCancel, Buy, MinPrice-1, 10)
	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestBook_InvalidQuantity(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBook_MarketOrderConvertsResidueToLimit(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Sell, 150, 100)
	require.NoError(t, err)

	trades, err := b.Submit(Market, Buy, InvalidPrice, 300)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Quantity(100), trades[0].Quantity)

	// 200 residual units should now rest as a limit at the last trade price.
	assert.Equal(t, Price(150), b.BestBidPrice())
	assert.Equal(t, Quantity(200), b.BestBidQuantity())
}

func TestBook_MarketOrderNoLiquidityDiscardsResidue(t *testing.T) {
	b := New()
	trades, err := b.Submit(Market, Buy, InvalidPrice, 300)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, Price(-1), b.BestBidPrice())
}

func TestBook_NeverCrossesSameSide(t *testing.T) {
	b := New()
	_, err := b.Submit(GoodTillCancel, Buy, 100, 500)
	require.NoError(t, err)

	// A second buy must never match against the resting buy.
	trades, err := b.Submit(GoodTillCancel, Buy, 100, 500)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, Quantity(1000), b.BestBidQuantity())
}

// Invariant-style concurrent stress: many producers submitting crossing
// orders concurrently must never overdraw any resting order, and every
// unit of quantity consumed from resting orders must show up in exactly
// one trade.
func TestBook_ConcurrentStress_QuantityConserved(t *testing.T) {
	b := New()
	const restingOrders = 200
	const restingQtyEach = Quantity(100)

	for i := 0; i < restingOrders; i++ {
		_, err := b.Submit(GoodTillCancel, Buy, 100, restingQtyEach)
		require.NoError(t, err)
	}

	const takers = 40
	const takerQty = Quantity(100)
	tradesCh := make(chan []Trade, takers)
	var wg sync.WaitGroup
	for i := 0; i < takers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trades, err := b.Submit(GoodTillCancel, Sell, 100, takerQty)
			require.NoError(t, err)
			tradesCh <- trades
		}()
	}
	wg.Wait()
	close(tradesCh)

	var totalTraded Quantity
	for trades := range tradesCh {
		for _, tr := range trades {
			totalTraded += tr.Quantity
		}
	}

	assert.Equal(t, takerQty*Quantity(takers), totalTraded,
		"every taker unit must land as exactly one trade against resting liquidity")
	assert.Equal(t, restingQtyEach*Quantity(restingOrders)-takerQty*Quantity(takers), b.BestBidQuantity())
}
