package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lightsgoout/quantcup-lockfree/internal/bench"
	"github.com/lightsgoout/quantcup-lockfree/internal/book"
)

// newBenchCmd generates a random order feed, submits it against the book
// across workers producer goroutines, reports latency stats, and
// optionally persists the resulting trades.
func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Replay a random order feed against the book and report latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders := viper.GetInt("bench.orders")
			workers := viper.GetInt("bench.workers")
			seed := viper.GetInt64("bench.seed")
			maxQty := viper.GetInt64("bench.max-qty")
			persistDSN := viper.GetString("bench.persist-dsn")

			runID := uuid.New()
			b := book.New(book.WithLogger(newLogger()))

			specs := bench.GenerateRandomOrders(seed, orders, book.MinPrice, book.MaxPrice, book.Quantity(maxQty))
			trades, report := bench.RunConcurrent(b, specs, workers)

			fmt.Printf("run %s: %d orders across %d workers, %d trades\n", runID, orders, workers, len(trades))
			fmt.Printf("latency: mean=%s stddev=%s (n=%d)\n", report.Mean, report.StdDev, report.Count)
			fmt.Printf("book: best bid %d/%d, best ask %d/%d, pool blocks %d\n",
				b.BestBidPrice(), b.BestBidQuantity(), b.BestAskPrice(), b.BestAskQuantity(), b.PoolBlocks())

			if persistDSN == "" {
				return nil
			}

			db, err := sql.Open("postgres", persistDSN)
			if err != nil {
				return fmt.Errorf("open persist dsn: %w", err)
			}
			defer db.Close()

			ctx := context.Background()
			if err := bench.EnsureSchema(ctx, db); err != nil {
				return err
			}
			if err := bench.PersistTrades(ctx, db, runID, orders, trades); err != nil {
				return err
			}
			fmt.Printf("persisted %d trades for run %s\n", len(trades), runID)
			return nil
		},
	}

	cmd.Flags().Int("orders", 100000, "number of random orders to generate")
	cmd.Flags().Int("workers", 8, "number of concurrent producer goroutines")
	cmd.Flags().Int64("seed", 42, "random seed for the generated feed")
	cmd.Flags().Int64("max-qty", 1000, "maximum quantity per generated order")
	cmd.Flags().String("persist-dsn", "", "optional Postgres DSN to persist emitted trades to")

	_ = viper.BindPFlag("bench.orders", cmd.Flags().Lookup("orders"))
	_ = viper.BindPFlag("bench.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("bench.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("bench.max-qty", cmd.Flags().Lookup("max-qty"))
	_ = viper.BindPFlag("bench.persist-dsn", cmd.Flags().Lookup("persist-dsn"))

	return cmd
}
