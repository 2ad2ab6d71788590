package metrics

import (
	"sync"
	"testing"
	"time"

	"LanMeter/internal/accounting"
	"LanMeter/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	snaps []model.WindowSnapshot
}

func (r *recordingSink) Publish(snap model.WindowSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	return nil
}

// One 1500-byte frame from a local endpoint to a remote address must show
// up as a 12000 bps TX gauge after one window, with no RX series at all.
func TestPublishWindowEndToEnd(t *testing.T) {
	stats := accounting.NewTrafficStats()
	m := New()
	sink := &recordingSink{}
	p := NewPublisher(stats, m, sink, time.Second)

	stats.Record(accounting.Tx, "eth0", "10.40.1.5", 1500)
	p.publishWindow()

	assert.Equal(t, float64(12000), testutil.ToFloat64(m.ipTxBps.WithLabelValues("10.40.1.5", "eth0")))
	assert.Equal(t, float64(12000), testutil.ToFloat64(m.nicTxBps.WithLabelValues("eth0")))

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "network_ip_rx_bps" || f.GetName() == "network_ip_rx_bps_total" {
			assert.Empty(t, f.GetMetric(), "no RX series expected for %s", f.GetName())
		}
	}

	require.Len(t, sink.snaps, 1)
	assert.Equal(t, uint64(1500), sink.snaps[0].NICTxTotal["eth0"])
}

// A series absent from the next window keeps its previously published
// value: gauges are last-value-wins and are not actively expired.
func TestStaleSeriesKeepLastValue(t *testing.T) {
	stats := accounting.NewTrafficStats()
	m := New()
	p := NewPublisher(stats, m, nil, time.Second)

	stats.Record(accounting.Tx, "eth0", "10.40.1.5", 1000)
	p.publishWindow()
	assert.Equal(t, float64(8000), testutil.ToFloat64(m.ipTxBps.WithLabelValues("10.40.1.5", "eth0")))

	// Empty window: the gauge retains 8000, not zero.
	p.publishWindow()
	assert.Equal(t, float64(8000), testutil.ToFloat64(m.ipTxBps.WithLabelValues("10.40.1.5", "eth0")))
}

func TestPublishWindowResetsAccumulator(t *testing.T) {
	stats := accounting.NewTrafficStats()
	p := NewPublisher(stats, New(), nil, time.Second)

	stats.Record(accounting.Rx, "eth1", "10.40.1.6", 4096)
	p.publishWindow()

	snap := stats.DrainAndReset()
	assert.Empty(t, snap.RxBytes)
	assert.Empty(t, snap.NICRxTotal)
}
