package book

import (
	"sync/atomic"
	"time"
)

// Order is one resting or in-flight order. It is also the intrusive list
// node within its price level: Next links it to the order below it on the
// same level's LIFO stack.
//
// Identifier, side, original order type and initial quantity are immutable
// once the order is initialized and are never written again, so they need
// no atomic wrapper — every other field is independently atomic and may be
// observed or mutated from any goroutine holding a pointer to the order.
type Order struct {
	id              OrderId
	side            Side
	orderType       OrderType
	initialQuantity Quantity

	price      atomic.Int64
	remaining  atomic.Uint64
	status     atomic.Int32
	version    atomic.Uint32
	lastUpdate atomic.Int64

	next atomic.Pointer[Order]
}

// init sets the immutable fields and the initial mutable state. It must run
// before the order becomes reachable from any price level or the order
// table — callers own the order exclusively until that point, so this is
// not itself atomic.
func (o *Order) init(id OrderId, side Side, orderType OrderType, price Price, quantity Quantity) {
	o.id = id
	o.side = side
	o.orderType = orderType
	o.initialQuantity = quantity
	o.price.Store(int64(price))
	o.remaining.Store(uint64(quantity))
	o.status.Store(int32(Active))
	o.version.Store(0)
	o.lastUpdate.Store(time.Now().UnixNano())
	o.next.Store(nil)
}

func (o *Order) GetOrderId() OrderId          { return o.id }
func (o *Order) GetSide() Side                { return o.side }
func (o *Order) GetOrderType() OrderType      { return o.orderType }
func (o *Order) GetInitialQuantity() Quantity { return o.initialQuantity }

func (o *Order) GetPrice() Price {
	return Price(o.price.Load())
}

func (o *Order) GetRemainingQuantity() Quantity {
	return Quantity(o.remaining.Load())
}

func (o *Order) GetFilledQuantity() Quantity {
	return o.GetInitialQuantity() - o.GetRemainingQuantity()
}

func (o *Order) IsFilled() bool {
	return o.GetRemainingQuantity() == 0
}

func (o *Order) Status() OrderStatus {
	return OrderStatus(o.status.Load())
}

func (o *Order) Version() uint32 {
	return o.version.Load()
}

func (o *Order) LastUpdate() time.Time {
	return time.Unix(0, o.lastUpdate.Load())
}

func (o *Order) touch() {
	o.version.Add(1)
	o.lastUpdate.Store(time.Now().UnixNano())
}

// TryFill atomically decrements remaining quantity by q via a
// compare-and-swap loop. It fails, leaving state unchanged, iff q exceeds
// the remaining quantity observed at the moment of the winning compare.
// Exactly one concurrent caller wins per overlapping decrement.
//
// TryFill does not itself check Status: a resting order cancelled between a
// matcher's status check and its TryFill call can still be legally filled
// here. Cancellation never unlinks or zeroes the order, so a skip predicate
// based on an earlier status read is advisory, not exclusive.
func (o *Order) TryFill(q Quantity) bool {
	for {
		current := o.remaining.Load()
		if uint64(q) > current {
			return false
		}
		newRemaining := current - uint64(q)
		if o.remaining.CompareAndSwap(current, newRemaining) {
			o.touch()
			if newRemaining == 0 {
				o.status.CompareAndSwap(int32(Active), int32(Filled))
			}
			return true
		}
	}
}

// FastFill is the single-threaded variant of TryFill: load, check, store,
// no retry. Its contract only holds when the caller can prove no
// concurrent mutator of remaining exists for this order (e.g. a
// single-producer benchmark); under contention it can lose updates that
// TryFill would not. Kept as a distinct method rather than folded into
// TryFill so the two contracts stay visible at call sites.
func (o *Order) FastFill(q Quantity) bool {
	current := Quantity(o.remaining.Load())
	if q > current {
		return false
	}
	newRemaining := current - q
	o.remaining.Store(uint64(newRemaining))
	o.touch()
	if newRemaining == 0 {
		o.status.CompareAndSwap(int32(Active), int32(Filled))
	}
	return true
}

// ConvertToMarketToLimit gives a Market order a limit price, turning it
// into a restable order. It is only valid on orders whose static type is
// Market; callers must convert at most once, since a second conversion
// would silently clobber the first (idempotence is not guaranteed).
func (o *Order) ConvertToMarketToLimit(p Price) bool {
	if o.orderType != Market {
		return false
	}
	o.price.Store(int64(p))
	o.touch()
	return true
}

func (o *Order) GetNext() *Order {
	return o.next.Load()
}

func (o *Order) SetNext(next *Order) {
	o.next.Store(next)
}

func (o *Order) CompareAndSwapNext(expected, desired *Order) bool {
	return o.next.CompareAndSwap(expected, desired)
}

// markCancelled is the release store the table's Cancel performs on a
// live order, flagging it Cancelled so a status-aware walker skips it even
// though it may still be linked into a price level.
func (o *Order) markCancelled() {
	if o.status.CompareAndSwap(int32(Active), int32(Cancelled)) {
		o.touch()
	}
}
