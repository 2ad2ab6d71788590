package capture

import (
	"fmt"
	"sync"
	"time"

	"LanMeter/internal/accounting"
	"LanMeter/internal/logging"
	"LanMeter/internal/mapping"
	"LanMeter/internal/model"
	"LanMeter/internal/subnet"

	"github.com/google/gopacket/pcap"
)

const (
	snapshotLen int32 = 65535
	promiscuous       = true
	pollTimeout       = 1000 * time.Millisecond
)

// OpenLive verifies the interface exists and opens a live capture handle
// on it. Failures here are fatal to the caller: without a handle the agent
// cannot do anything.
func OpenLive(interfaceName string) (*pcap.Handle, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("failed to list capture devices: %w", err)
	}

	found := false
	for _, d := range devices {
		if d.Name == interfaceName {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("capture device %s not found", interfaceName)
	}

	handle, err := pcap.OpenLive(interfaceName, snapshotLen, promiscuous, pollTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", interfaceName, err)
	}
	return handle, nil
}

// Loop pulls frames off a capture handle, classifies them against the
// local subnets, and records their byte counts into the accumulator. It
// owns the blocking pcap read on its own goroutine; the publisher and
// refresher never touch the handle.
type Loop struct {
	handle  *pcap.Handle
	subnets *subnet.LocalSubnets
	mapping *mapping.Resolver
	stats   *accounting.TrafficStats

	done chan struct{}
	wg   sync.WaitGroup
}

// NewLoop wires a capture loop to its collaborators.
func NewLoop(handle *pcap.Handle, subnets *subnet.LocalSubnets, resolver *mapping.Resolver, stats *accounting.TrafficStats) *Loop {
	return &Loop{
		handle:  handle,
		subnets: subnets,
		mapping: resolver,
		stats:   stats,
		done:    make(chan struct{}),
	}
}

// Start launches the capture goroutine.
func (l *Loop) Start() {
	l.wg.Add(1)
	go l.run()
}

// Stop terminates the loop, waits for it to exit, and closes the handle.
func (l *Loop) Stop() {
	close(l.done)
	l.wg.Wait()
	l.handle.Close()
}

func (l *Loop) run() {
	defer l.wg.Done()
	logging.Infof("Capture loop started")

	for {
		select {
		case <-l.done:
			return
		default:
		}

		data, _, err := l.handle.ReadPacketData()
		if err != nil {
			// Poll timeouts are routine; everything else is worth a log
			// line, but never a reason to stop reading.
			if err == pcap.NextErrorTimeoutExpired {
				continue
			}
			logging.Errorf("Error capturing packet: %v", err)
			continue
		}

		meta, err := ParseFrame(data)
		if err != nil {
			// Non-Ethernet and non-IPv4 frames carry no accounting.
			continue
		}
		l.account(meta)
	}
}

// account attributes one decoded frame. The source and destination checks
// are independent: local-to-local traffic counts as both transmit and
// receive, traffic between two remote addresses counts as neither.
func (l *Loop) account(meta *model.PacketMeta) {
	src := meta.SrcIP.String()
	dst := meta.DstIP.String()

	if l.subnets.IsLocal(src) {
		nic := l.mapping.Resolve(src)
		l.stats.Record(accounting.Tx, nic, src, meta.Length)
	}
	if l.subnets.IsLocal(dst) {
		nic := l.mapping.Resolve(dst)
		l.stats.Record(accounting.Rx, nic, dst, meta.Length)
	}
}
