package book

import "errors"

var (
	// ErrPriceOutOfRange is returned when a limit order's price falls
	// outside [MinPrice, MaxPrice]. The order is not allocated.
	ErrPriceOutOfRange = errors.New("book: price out of range")

	// ErrInvalidQuantity is returned for a non-positive quantity.
	ErrInvalidQuantity = errors.New("book: quantity must be greater than zero")

	// ErrOrderTableFull is returned when the new order's identifier hashes
	// to an order-table slot that still holds an earlier, uncancelled order
	// (filled orders included). The
	// order was allocated (it already has an id) but was not registered or
	// inserted into any price level.
	ErrOrderTableFull = errors.New("book: order table slot occupied")
)
