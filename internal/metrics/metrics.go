package metrics

import (
	"net/http"

	"LanMeter/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the per-endpoint and per-NIC bit-rate gauges on a private
// registry. Gauges are last-value-wins: a series absent from the current
// window keeps its previously published value.
type Metrics struct {
	registry *prometheus.Registry

	ipTxBps  *prometheus.GaugeVec
	ipRxBps  *prometheus.GaugeVec
	nicTxBps *prometheus.GaugeVec
	nicRxBps *prometheus.GaugeVec
}

// New creates and registers the gauge set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ipTxBps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "network_ip_tx_bps",
			Help: "TX bits per second per IP",
		}, []string{"local_ip", "nic"}),
		ipRxBps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "network_ip_rx_bps",
			Help: "RX bits per second per IP",
		}, []string{"local_ip", "nic"}),
		nicTxBps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "network_ip_tx_bps_total",
			Help: "Total TX bits per second per NIC",
		}, []string{"nic"}),
		nicRxBps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "network_ip_rx_bps_total",
			Help: "Total RX bits per second per NIC",
		}, []string{"nic"}),
	}
	m.registry.MustRegister(m.ipTxBps, m.ipRxBps, m.nicTxBps, m.nicRxBps)
	return m
}

// Handler returns the text exposition handler for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Publish converts one window's byte counts to bits-per-second gauge
// values. The window is exactly one second, so bps is simply bytes*8.
func (m *Metrics) Publish(snap model.WindowSnapshot) {
	for key, bytes := range snap.TxBytes {
		m.ipTxBps.WithLabelValues(key.IP, key.NIC).Set(float64(bytes * 8))
	}
	for key, bytes := range snap.RxBytes {
		m.ipRxBps.WithLabelValues(key.IP, key.NIC).Set(float64(bytes * 8))
	}
	for nic, bytes := range snap.NICTxTotal {
		m.nicTxBps.WithLabelValues(nic).Set(float64(bytes * 8))
	}
	for nic, bytes := range snap.NICRxTotal {
		m.nicRxBps.WithLabelValues(nic).Set(float64(bytes * 8))
	}
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
