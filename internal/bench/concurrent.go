package bench

import (
	"sync"
	"time"

	"github.com/lightsgoout/quantcup-lockfree/internal/book"
)

// RunConcurrent fans specs out across workers goroutines submitting to the
// same Book: no producer blocks on another, and relative ordering within a
// price level is whatever the CAS chain decides. Each worker gets a
// contiguous slice of specs so two calls with the same input and worker
// count are at least deterministic in *assignment*, if not in interleaving.
func RunConcurrent(b *book.Book, specs []RandomOrderSpec, workers int) ([]book.Trade, LatencyReport) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(specs) {
		workers = len(specs)
	}
	if workers == 0 {
		return nil, LatencyReport{}
	}

	perWorker := (len(specs) + workers - 1) / workers
	latencies := make([]time.Duration, len(specs))
	tradesPerSpec := make([][]book.Trade, len(specs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > len(specs) {
			end = len(specs)
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				spec := specs[i]
				t0 := time.Now()
				trades, err := b.Submit(spec.Type, spec.Side, spec.Price, spec.Quantity)
				latencies[i] = time.Since(t0)
				if err == nil {
					tradesPerSpec[i] = trades
				}
			}
		}(start, end)
	}
	wg.Wait()

	var allTrades []book.Trade
	for _, trades := range tradesPerSpec {
		allTrades = append(allTrades, trades...)
	}
	return allTrades, summarize(latencies)
}
