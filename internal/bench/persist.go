package bench

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lightsgoout/quantcup-lockfree/internal/book"
)

// EnsureSchema creates the bench-run persistence tables if they do not
// already exist. Kept intentionally separate from the matching core: a
// Book never touches a database, only this optional diagnostic sink does.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS quantcup_bench_runs (
			run_id     uuid PRIMARY KEY,
			started_at timestamptz NOT NULL DEFAULT now(),
			order_count integer NOT NULL
		);

		CREATE TABLE IF NOT EXISTS quantcup_bench_trades (
			run_id       uuid NOT NULL REFERENCES quantcup_bench_runs(run_id),
			bid_order_id bigint NOT NULL,
			ask_order_id bigint NOT NULL,
			price        bigint NOT NULL,
			quantity     bigint NOT NULL
		);
	`
	_, err := db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("bench: ensure schema: %w", err)
	}
	return nil
}

// PersistTrades bulk-loads trades from one bench run via pq.CopyIn. runID
// correlates the batch with a single cmd/quantcupd bench invocation.
func PersistTrades(ctx context.Context, db *sql.DB, runID uuid.UUID, orderCount int, trades []book.Trade) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bench: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quantcup_bench_runs (run_id, order_count) VALUES ($1, $2)`,
		runID, orderCount,
	); err != nil {
		return fmt.Errorf("bench: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("quantcup_bench_trades",
		"run_id", "bid_order_id", "ask_order_id", "price", "quantity"))
	if err != nil {
		return fmt.Errorf("bench: prepare copy-in: %w", err)
	}

	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, runID, int64(t.BidOrderId), int64(t.AskOrderId), int64(t.Price), int64(t.Quantity)); err != nil {
			stmt.Close()
			return fmt.Errorf("bench: copy-in trade: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("bench: flush copy-in: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("bench: close copy-in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bench: commit: %w", err)
	}
	return nil
}
