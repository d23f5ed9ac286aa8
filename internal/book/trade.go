package book

// Trade records one execution between a taker and a resting maker.
// BidOrderId is always the buy-side identifier regardless of which side was
// incoming, and Price is always the resting (maker) level's price — the
// price-taker convention.
type Trade struct {
	BidOrderId OrderId
	AskOrderId OrderId
	Price      Price
	Quantity   Quantity
}
