package metrics

import (
	"sync"
	"time"

	"LanMeter/internal/accounting"
	"LanMeter/internal/logging"
	"LanMeter/internal/model"
)

// WindowSink receives each drained window after the gauges have been
// updated. Sinks are optional and strictly best-effort: a failing sink
// never delays or fails the publish path.
type WindowSink interface {
	Publish(snap model.WindowSnapshot) error
}

// Publisher drains the accumulator on a fixed cadence and converts each
// window into gauge values.
type Publisher struct {
	stats    *accounting.TrafficStats
	metrics  *Metrics
	sink     WindowSink
	interval time.Duration

	done chan struct{}
	wg   sync.WaitGroup
}

// NewPublisher wires a publisher. sink may be nil.
func NewPublisher(stats *accounting.TrafficStats, m *Metrics, sink WindowSink, interval time.Duration) *Publisher {
	return &Publisher{
		stats:    stats,
		metrics:  m,
		sink:     sink,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the publish loop.
func (p *Publisher) Start() {
	p.wg.Add(1)
	go p.run()
	logging.Infof("Started metrics publisher with interval %s", p.interval)
}

// Stop terminates the publish loop and waits for it to exit.
func (p *Publisher) Stop() {
	close(p.done)
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishWindow()
		case <-p.done:
			return
		}
	}
}

func (p *Publisher) publishWindow() {
	snap := p.stats.DrainAndReset()
	p.metrics.Publish(snap)

	if p.sink != nil {
		if err := p.sink.Publish(snap); err != nil {
			logging.Errorf("Failed to publish window summary: %v", err)
		}
	}
}
