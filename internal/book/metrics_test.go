package book

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.orderSubmitted()
		m.tradesExecuted(3)
		m.tableCollision()
		m.poolBlocks(7)
	})
}

func TestMetrics_WiredIntoBookLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	b := New(WithOrderTableSize(4), WithMetrics(metrics))

	_, err := b.Submit(GoodTillCancel, Buy, 100, 10)
	require.NoError(t, err)

	// Force a table collision: ids 1..4 with table size 4 all map to
	// distinct slots, but a 5th live id (5 mod 4 == 1) collides with id 1.
	for i := 0; i < 3; i++ {
		_, err := b.Submit(GoodTillCancel, Buy, 100, 1)
		require.NoError(t, err)
	}
	_, err = b.Submit(GoodTillCancel, Buy, 100, 1)
	assert.ErrorIs(t, err, ErrOrderTableFull)

	families, err := reg.Gather()
	require.NoError(t, err)

	var collisions float64
	for _, f := range families {
		if f.GetName() == "quantcup_order_table_collisions_total" {
			collisions = f.Metric[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), collisions)
}
