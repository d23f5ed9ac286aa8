// Package bench holds the diagnostic/replay harness used by cmd/quantcupd.
// It is deliberately kept out of internal/book: the matching core has zero
// dependency on random order generation, latency statistics, or
// persistence — those are collaborators, exercised only here.
package bench

import (
	"math/rand"
	"time"

	"github.com/grd/stat"

	"github.com/lightsgoout/quantcup-lockfree/internal/book"
)

// RandomOrderSpec is one order to feed into a Book during a replay.
type RandomOrderSpec struct {
	Type     book.OrderType
	Side     book.Side
	Price    book.Price
	Quantity book.Quantity
}

// GenerateRandomOrders produces count orders uniformly distributed across
// [minPrice, maxPrice] and quantities in [1, maxQty], seeded
// deterministically so a replay is reproducible across runs.
func GenerateRandomOrders(seed int64, count int, minPrice, maxPrice book.Price, maxQty book.Quantity) []RandomOrderSpec {
	r := rand.New(rand.NewSource(seed))
	span := int(maxPrice-minPrice) + 1

	specs := make([]RandomOrderSpec, count)
	for i := range specs {
		side := book.Buy
		if r.Intn(2) == 1 {
			side = book.Sell
		}
		specs[i] = RandomOrderSpec{
			Type:     book.GoodTillCancel,
			Side:     side,
			Price:    minPrice + book.Price(r.Intn(span)),
			Quantity: book.Quantity(1 + r.Int63n(int64(maxQty))),
		}
	}
	return specs
}

// durationSlice adapts a []time.Duration to grd/stat's Float64Slice-style
// interface (Len/Get) for latency measurements.
type durationSlice []time.Duration

func (d durationSlice) Get(i int) float64 { return float64(d[i]) }
func (d durationSlice) Len() int          { return len(d) }

// LatencyReport summarizes a batch of per-submit latencies.
type LatencyReport struct {
	Count  int
	Mean   time.Duration
	StdDev time.Duration
}

// Replay feeds specs into b sequentially on the calling goroutine, timing
// each Submit call, and returns the aggregate trades plus a latency report.
// Concurrency (multiple producer goroutines) is the caller's
// responsibility — RunConcurrent (concurrent.go) is the fan-out variant.
func Replay(b *book.Book, specs []RandomOrderSpec) ([]book.Trade, LatencyReport) {
	latencies := make([]time.Duration, len(specs))
	var allTrades []book.Trade

	for i, spec := range specs {
		start := time.Now()
		trades, err := b.Submit(spec.Type, spec.Side, spec.Price, spec.Quantity)
		latencies[i] = time.Since(start)
		if err != nil {
			continue
		}
		allTrades = append(allTrades, trades...)
	}

	return allTrades, summarize(latencies)
}

func summarize(latencies []time.Duration) LatencyReport {
	if len(latencies) == 0 {
		return LatencyReport{}
	}
	ds := durationSlice(latencies)
	mean := stat.Mean(ds)
	sd := stat.SdMean(ds, mean)
	return LatencyReport{
		Count:  len(latencies),
		Mean:   time.Duration(mean),
		StdDev: time.Duration(sd),
	}
}
