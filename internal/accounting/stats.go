package accounting

import (
	"sync"

	"LanMeter/internal/model"
)

// Direction distinguishes transmit from receive attribution.
type Direction int

const (
	// Tx means the local endpoint is the frame's source.
	Tx Direction = iota
	// Rx means the local endpoint is the frame's destination.
	Rx
)

// TrafficStats accumulates byte counts for the current reporting window.
// The capture loop records into it while the publisher periodically drains
// it; one mutex covers every operation, and no lock is ever held across a
// capture read or an HTTP call. Per-NIC totals are maintained alongside the
// per-endpoint counters so both always describe the identical window.
type TrafficStats struct {
	mu         sync.Mutex
	txBytes    map[model.FlowKey]uint64
	rxBytes    map[model.FlowKey]uint64
	nicTxTotal map[string]uint64
	nicRxTotal map[string]uint64
}

// NewTrafficStats creates an empty accumulator.
func NewTrafficStats() *TrafficStats {
	return &TrafficStats{
		txBytes:    make(map[model.FlowKey]uint64),
		rxBytes:    make(map[model.FlowKey]uint64),
		nicTxTotal: make(map[string]uint64),
		nicRxTotal: make(map[string]uint64),
	}
}

// Record adds length bytes to the (nic, ip) counter and the nic total for
// the given direction.
func (s *TrafficStats) Record(dir Direction, nic, ip string, length int) {
	key := model.FlowKey{NIC: nic, IP: ip}
	n := uint64(length)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch dir {
	case Tx:
		s.txBytes[key] += n
		s.nicTxTotal[nic] += n
	case Rx:
		s.rxBytes[key] += n
		s.nicRxTotal[nic] += n
	}
}

// DrainAndReset atomically returns the four counter maps and installs
// fresh ones. Every Record that completed before the call lands in the
// returned snapshot; every later one lands in the next. The returned maps
// are exclusively the caller's.
func (s *TrafficStats) DrainAndReset() model.WindowSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.WindowSnapshot{
		TxBytes:    s.txBytes,
		RxBytes:    s.rxBytes,
		NICTxTotal: s.nicTxTotal,
		NICRxTotal: s.nicRxTotal,
	}
	s.txBytes = make(map[model.FlowKey]uint64)
	s.rxBytes = make(map[model.FlowKey]uint64)
	s.nicTxTotal = make(map[string]uint64)
	s.nicRxTotal = make(map[string]uint64)
	return snap
}
