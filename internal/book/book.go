package book

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Book is the lock-free limit order book: two dense arrays of price levels
// (one per side), a monotonic identifier counter, an id-indexed order
// table, and a grow-only order pool. Every exported method is safe for
// concurrent use by any number of goroutines; none of them block, sleep,
// or take a lock on the hot path — the order pool's rare block-install is
// the only operation that ever briefly serializes.
type Book struct {
	minPrice Price
	maxPrice Price
	tick     Price
	levels   int

	bids []PriceLevel
	asks []PriceLevel

	nextOrderId atomic.Uint64

	table *OrderTable
	pool  *OrderPool

	logger  *zap.Logger
	metrics *Metrics
}

// Option configures a Book at construction.
type Option func(*bookConfig)

type bookConfig struct {
	minPrice, maxPrice, tick Price
	tableSize                int
	logger                   *zap.Logger
	metrics                  *Metrics
}

// WithPriceRange overrides the default [MinPrice, MaxPrice] bounds and tick
// size. tick must evenly divide maxPrice-minPrice.
func WithPriceRange(min, max, tick Price) Option {
	return func(c *bookConfig) {
		c.minPrice, c.maxPrice, c.tick = min, max, tick
	}
}

// WithOrderTableSize overrides DefaultOrderTableSize. Must be a power of
// two.
func WithOrderTableSize(size int) Option {
	return func(c *bookConfig) { c.tableSize = size }
}

// WithLogger attaches structured logging for book lifecycle events
// (construction, table collisions). Pool growth is not logged; it is
// reported only through Metrics. Never logs on the TryFill/CAS matching path.
func WithLogger(l *zap.Logger) Option {
	return func(c *bookConfig) { c.logger = l }
}

// WithMetrics attaches prometheus instrumentation built by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(c *bookConfig) { c.metrics = m }
}

// New constructs an empty Book.
func New(opts ...Option) *Book {
	cfg := bookConfig{
		minPrice:  MinPrice,
		maxPrice:  MaxPrice,
		tick:      TickSize,
		tableSize: DefaultOrderTableSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	levels := numLevels(cfg.minPrice, cfg.maxPrice, cfg.tick)
	b := &Book{
		minPrice: cfg.minPrice,
		maxPrice: cfg.maxPrice,
		tick:     cfg.tick,
		levels:   levels,
		bids:     make([]PriceLevel, levels),
		asks:     make([]PriceLevel, levels),
		table:    NewOrderTable(cfg.tableSize, cfg.metrics),
		pool:     NewOrderPool(cfg.metrics),
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}
	b.logger.Info("book constructed",
		zap.Int("levels", levels),
		zap.Int("order_table_size", cfg.tableSize),
		zap.Int64("min_price", int64(cfg.minPrice)),
		zap.Int64("max_price", int64(cfg.maxPrice)),
	)
	return b
}

func (b *Book) priceToIndex(p Price) int {
	return int((p - b.minPrice) / b.tick)
}

func (b *Book) indexToPrice(i int) Price {
	return b.minPrice + Price(i)*b.tick
}

func (b *Book) inRange(p Price) bool {
	return p >= b.minPrice && p <= b.maxPrice
}

// Submit assigns the next identifier, allocates and registers the order,
// inserts it into its own side (unless it is a FillAndKill, or a Market
// order still awaiting a price), then walks the opposite side for
// crossable liquidity. It returns the trades produced by that walk.
//
// Insertion happens before matching so a crossing opposite-side arrival
// mid-walk would observe this order as liquidity immediately — the walk
// compensates by skipping any record whose status is not Active, and an
// order can never match itself because side places it in the array the
// walk does not traverse.
func (b *Book) Submit(orderType OrderType, side Side, price Price, quantity Quantity) ([]Trade, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}

	isMarket := orderType == Market
	if !isMarket {
		if !b.inRange(price) {
			return nil, ErrPriceOutOfRange
		}
	} else {
		price = InvalidPrice
	}

	id := OrderId(b.nextOrderId.Add(1))
	order := b.pool.Allocate()
	order.init(id, side, orderType, price, quantity)

	if !b.table.Register(order) {
		b.logger.Warn("order table slot occupied, rejecting submit",
			zap.Uint64("order_id", uint64(id)))
		return nil, ErrOrderTableFull
	}
	b.metrics.orderSubmitted()

	inserted := orderType != FillAndKill && !isMarket
	if inserted {
		b.levelFor(side, b.priceToIndex(price)).push(order)
	}

	trades, lastTradePrice, traded := b.match(order)

	if inserted && traded {
		// The order was counted in its own level before the walk; take
		// out what it just filled as the taker.
		var taken Quantity
		for _, t := range trades {
			taken += t.Quantity
		}
		b.levelFor(side, b.priceToIndex(price)).subtractFilled(taken)
	}

	if isMarket && order.GetRemainingQuantity() > 0 && traded {
		if order.ConvertToMarketToLimit(lastTradePrice) {
			b.levelFor(side, b.priceToIndex(lastTradePrice)).push(order)
		}
	}

	b.metrics.tradesExecuted(len(trades))
	return trades, nil
}

func (b *Book) levelFor(side Side, idx int) *PriceLevel {
	if side == Buy {
		return &b.bids[idx]
	}
	return &b.asks[idx]
}

// match walks the side opposite to order, draining crossable liquidity.
// A Buy walks asks from index 0 upward (most aggressive ask first); a Sell
// walks bids from the top index downward (most aggressive bid first). For
// a limit order the walk stops at order's own price; for a Market order
// (InvalidPrice) it covers the full index range.
func (b *Book) match(order *Order) (trades []Trade, lastTradePrice Price, traded bool) {
	side := order.GetSide()
	limitPrice := order.GetPrice()
	isMarket := order.GetOrderType() == Market

	if side == Buy {
		hi := b.levels - 1
		if !isMarket {
			hi = b.priceToIndex(limitPrice)
		}
		for i := 0; i <= hi && order.GetRemainingQuantity() > 0; i++ {
			if b.asks[i].TotalQuantity() == 0 {
				continue
			}
			b.walkLevel(&b.asks[i], order, b.indexToPrice(i), &trades, &lastTradePrice, &traded)
		}
		return trades, lastTradePrice, traded
	}

	lo := 0
	if !isMarket {
		lo = b.priceToIndex(limitPrice)
	}
	for i := b.levels - 1; i >= lo && order.GetRemainingQuantity() > 0; i-- {
		if b.bids[i].TotalQuantity() == 0 {
			continue
		}
		b.walkLevel(&b.bids[i], order, b.indexToPrice(i), &trades, &lastTradePrice, &traded)
	}
	return trades, lastTradePrice, traded
}

// walkLevel scans one resting level for matches against the incoming
// order, appending trades for each successful fill. It never mutates the
// level's linked list — a cancelled or exhausted resting order is simply
// skipped in place. Nothing unlinks such nodes, so every later traversal
// of the level walks past them again.
func (b *Book) walkLevel(level *PriceLevel, incoming *Order, levelPrice Price, trades *[]Trade, lastTradePrice *Price, traded *bool) {
	for resting := level.Head(); resting != nil && incoming.GetRemainingQuantity() > 0; resting = resting.GetNext() {
		if resting.GetOrderType() == FillAndKill {
			continue // defensive: FillAndKill orders are never inserted, so never rest
		}
		if resting.Status() != Active {
			continue
		}

		fillQty := minQuantity(incoming.GetRemainingQuantity(), resting.GetRemainingQuantity())
		if fillQty == 0 {
			continue
		}
		if !resting.TryFill(fillQty) {
			continue // contention winner took the remainder
		}

		if !incoming.TryFill(fillQty) {
			// Cannot happen under the single-producer-owns-incoming-order
			// invariant: nothing else can reduce incoming's remaining
			// below what we just observed. Treated as unreachable rather
			// than silently dropping the resting side's fill.
			panic("book: incoming order's remaining changed concurrently")
		}

		level.subtractFilled(fillQty)

		var trade Trade
		if incoming.GetSide() == Buy {
			trade = Trade{BidOrderId: incoming.GetOrderId(), AskOrderId: resting.GetOrderId(), Price: levelPrice, Quantity: fillQty}
		} else {
			trade = Trade{BidOrderId: resting.GetOrderId(), AskOrderId: incoming.GetOrderId(), Price: levelPrice, Quantity: fillQty}
		}
		*trades = append(*trades, trade)
		*lastTradePrice = levelPrice
		*traded = true
	}
}

func minQuantity(a, b Quantity) Quantity {
	if a < b {
		return a
	}
	return b
}

// Cancel looks up id and, if it is still live, clears the table's reference
// to it, marks it Cancelled and removes its remaining quantity from its
// price level's total. It reports true iff the order was live at the moment
// of cancellation.
func (b *Book) Cancel(id OrderId) bool {
	order := b.table.Lookup(id)
	if order == nil || !b.table.Cancel(id) {
		return false
	}
	if order.GetOrderType() != FillAndKill && b.inRange(order.GetPrice()) {
		b.levelFor(order.GetSide(), b.priceToIndex(order.GetPrice())).subtractFilled(order.GetRemainingQuantity())
	}
	return true
}

// BestBidPrice returns the highest price with resting bid quantity, or -1
// if the bid side is empty. It is a linear scan over the side array and is
// informational only — the core's contract is correctness, not asymptotic
// improvement on this query path.
func (b *Book) BestBidPrice() Price {
	for i := b.levels - 1; i >= 0; i-- {
		if b.bids[i].TotalQuantity() > 0 {
			return b.indexToPrice(i)
		}
	}
	return -1
}

func (b *Book) BestBidQuantity() Quantity {
	for i := b.levels - 1; i >= 0; i-- {
		if qty := b.bids[i].TotalQuantity(); qty > 0 {
			return qty
		}
	}
	return 0
}

// BestAskPrice returns the lowest price with resting ask quantity, or -1 if
// the ask side is empty.
func (b *Book) BestAskPrice() Price {
	for i := 0; i < b.levels; i++ {
		if b.asks[i].TotalQuantity() > 0 {
			return b.indexToPrice(i)
		}
	}
	return -1
}

func (b *Book) BestAskQuantity() Quantity {
	for i := 0; i < b.levels; i++ {
		if qty := b.asks[i].TotalQuantity(); qty > 0 {
			return qty
		}
	}
	return 0
}

// Lookup exposes the order table's read path for diagnostics and tests; it
// is not part of the matching hot path.
func (b *Book) Lookup(id OrderId) *Order {
	return b.table.Lookup(id)
}

// PoolBlocks reports how many arena blocks the order pool has grown to.
func (b *Book) PoolBlocks() uint64 {
	return b.pool.Blocks()
}
