package capture

import (
	"net"
	"testing"

	"LanMeter/internal/accounting"
	"LanMeter/internal/mapping"
	"LanMeter/internal/model"
	"LanMeter/internal/subnet"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIPv4Frame serializes an Ethernet/IPv4/UDP frame with a payload
// padding it out to roughly the requested size.
func buildIPv4Frame(t *testing.T, srcIP, dstIP string, payloadLen int) []byte {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP(srcIP),
		DstIP:    net.ParseIP(dstIP),
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: 53}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	err := gopacket.SerializeLayers(buf, opts, eth, ip, udp,
		gopacket.Payload(make([]byte, payloadLen)))
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseFrame(t *testing.T) {
	data := buildIPv4Frame(t, "10.40.1.5", "8.8.8.8", 100)

	meta, err := ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, "10.40.1.5", meta.SrcIP.String())
	assert.Equal(t, "8.8.8.8", meta.DstIP.String())
	assert.Equal(t, len(data), meta.Length)
}

func TestParseFrameRejectsNonIPv4(t *testing.T) {
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		SourceProtAddress: []byte{10, 40, 1, 5},
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte{10, 40, 1, 1},
	}
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, arp))

	_, err := ParseFrame(buf.Bytes())
	assert.Error(t, err)

	_, err = ParseFrame([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func newTestLoop() (*Loop, *accounting.TrafficStats) {
	subnets := subnet.New([]string{"10.40.0.0/20"})
	resolver := mapping.NewResolver(&model.StatusDocument{
		Config: model.NICConfig{LAN: "eth2", WAN0: "eth0", WAN1: "eth1"},
		Mappings: map[string]string{
			"10.40.1.5": "wan0",
			"10.40.1.6": "wan1",
		},
	})
	stats := accounting.NewTrafficStats()
	return NewLoop(nil, subnets, resolver, stats), stats
}

func TestAccountLocalSource(t *testing.T) {
	loop, stats := newTestLoop()
	loop.account(&model.PacketMeta{
		SrcIP:  net.ParseIP("10.40.1.5"),
		DstIP:  net.ParseIP("8.8.8.8"),
		Length: 1500,
	})

	snap := stats.DrainAndReset()
	assert.Equal(t, uint64(1500), snap.TxBytes[model.FlowKey{NIC: "eth0", IP: "10.40.1.5"}])
	assert.Empty(t, snap.RxBytes)
}

func TestAccountLocalToLocalCountsBothDirections(t *testing.T) {
	loop, stats := newTestLoop()
	loop.account(&model.PacketMeta{
		SrcIP:  net.ParseIP("10.40.1.5"),
		DstIP:  net.ParseIP("10.40.1.6"),
		Length: 200,
	})

	snap := stats.DrainAndReset()
	assert.Equal(t, uint64(200), snap.TxBytes[model.FlowKey{NIC: "eth0", IP: "10.40.1.5"}])
	assert.Equal(t, uint64(200), snap.RxBytes[model.FlowKey{NIC: "eth1", IP: "10.40.1.6"}])
	assert.Equal(t, uint64(200), snap.NICTxTotal["eth0"])
	assert.Equal(t, uint64(200), snap.NICRxTotal["eth1"])
}

func TestAccountRemoteToRemoteIgnored(t *testing.T) {
	loop, stats := newTestLoop()
	loop.account(&model.PacketMeta{
		SrcIP:  net.ParseIP("1.1.1.1"),
		DstIP:  net.ParseIP("8.8.8.8"),
		Length: 1500,
	})

	snap := stats.DrainAndReset()
	assert.Empty(t, snap.TxBytes)
	assert.Empty(t, snap.RxBytes)
}
