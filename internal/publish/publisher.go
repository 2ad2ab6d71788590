package publish

import (
	"encoding/json"
	"time"

	"LanMeter/internal/logging"
	"LanMeter/internal/model"

	"github.com/nats-io/nats.go"
)

// WindowSummary is the JSON document published for each reporting window.
// Per-endpoint detail stays on the metrics endpoint; the summary carries
// the per-NIC aggregates and the window's endpoint counts.
type WindowSummary struct {
	Timestamp   time.Time         `json:"timestamp"`
	TxEndpoints int               `json:"tx_endpoints"`
	RxEndpoints int               `json:"rx_endpoints"`
	NICTxBytes  map[string]uint64 `json:"nic_tx_bytes"`
	NICRxBytes  map[string]uint64 `json:"nic_rx_bytes"`
}

// Publisher pushes per-window traffic summaries to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the NATS server.
func NewPublisher(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	logging.Infof("Connected to NATS server at %s", url)
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish serializes one window snapshot and publishes it.
func (p *Publisher) Publish(snap model.WindowSnapshot) error {
	summary := WindowSummary{
		Timestamp:   time.Now(),
		TxEndpoints: len(snap.TxBytes),
		RxEndpoints: len(snap.RxBytes),
		NICTxBytes:  snap.NICTxTotal,
		NICRxBytes:  snap.NICRxTotal,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		logging.Infof("NATS connection drained and closed")
	}
}
