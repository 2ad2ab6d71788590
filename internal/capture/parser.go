package capture

import (
	"fmt"

	"LanMeter/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ParseFrame uses gopacket to decode a raw Ethernet frame and extract the
// fields the accounting pipeline needs. Anything that is not an IPv4 frame
// yields an error; callers skip those silently since they are expected,
// high-volume traffic, not a fault.
func ParseFrame(data []byte) (*model.PacketMeta, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return nil, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)

	return &model.PacketMeta{
		SrcIP:  ip.SrcIP,
		DstIP:  ip.DstIP,
		Length: len(data),
	}, nil
}
