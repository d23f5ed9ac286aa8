package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightsgoout/quantcup-lockfree/internal/book"
)

// newRunCmd is a minimal smoke test: construct a book, rest a bid, then
// submit a crossing sell and print the resulting trade and book state.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Submit a resting bid then a crossing sell, and print the book state",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := book.New(book.WithLogger(newLogger()))

			if _, err := b.Submit(book.GoodTillCancel, book.Buy, 100, 1000); err != nil {
				return fmt.Errorf("submit buy: %w", err)
			}
			fmt.Printf("after buy: best bid %d/%d, best ask %d/%d\n",
				b.BestBidPrice(), b.BestBidQuantity(), b.BestAskPrice(), b.BestAskQuantity())

			trades, err := b.Submit(book.GoodTillCancel, book.Sell, 100, 500)
			if err != nil {
				return fmt.Errorf("submit sell: %w", err)
			}
			fmt.Printf("after sell: %d trade(s)\n", len(trades))
			for _, t := range trades {
				fmt.Printf("  trade bid=%d ask=%d price=%d qty=%d\n", t.BidOrderId, t.AskOrderId, t.Price, t.Quantity)
			}
			fmt.Printf("after sell: best bid %d/%d, best ask %d/%d\n",
				b.BestBidPrice(), b.BestBidQuantity(), b.BestAskPrice(), b.BestAskQuantity())
			return nil
		},
	}
}
