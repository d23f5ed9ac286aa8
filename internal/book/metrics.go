package book

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the book's optional prometheus instrumentation. A nil
// *Metrics is valid everywhere below — every recording method is a no-op on
// a nil receiver, so a Book built without WithMetrics pays nothing on the
// hot path beyond the nil check.
type Metrics struct {
	ordersSubmittedTotal prometheus.Counter
	tradesExecutedTotal  prometheus.Counter
	tableCollisionsTotal prometheus.Counter
	poolBlocksGauge      prometheus.Gauge
}

// NewMetrics registers the book's counters/gauges on reg and returns a
// *Metrics ready to pass to book.WithMetrics. Pass prometheus.NewRegistry()
// for an isolated registry (recommended in tests) or
// prometheus.DefaultRegisterer for a process-wide one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ordersSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantcup_orders_submitted_total",
			Help: "Orders successfully accepted by Book.Submit.",
		}),
		tradesExecutedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantcup_trades_executed_total",
			Help: "Individual trades emitted by the matching walk.",
		}),
		tableCollisionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantcup_order_table_collisions_total",
			Help: "Submits rejected because their id's order-table slot was occupied.",
		}),
		poolBlocksGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quantcup_order_pool_blocks",
			Help: "Arena blocks currently installed in the order pool.",
		}),
	}
	reg.MustRegister(
		m.ordersSubmittedTotal,
		m.tradesExecutedTotal,
		m.tableCollisionsTotal,
		m.poolBlocksGauge,
	)
	return m
}

func (m *Metrics) orderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmittedTotal.Inc()
}

func (m *Metrics) tradesExecuted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.tradesExecutedTotal.Add(float64(n))
}

func (m *Metrics) tableCollision() {
	if m == nil {
		return
	}
	m.tableCollisionsTotal.Inc()
}

func (m *Metrics) poolBlocks(n uint64) {
	if m == nil {
		return
	}
	m.poolBlocksGauge.Set(float64(n))
}
