package model

import "net"

// PacketMeta holds the metadata extracted from a single decoded frame.
// The accounting pipeline never needs more than this.
type PacketMeta struct {
	SrcIP  net.IP
	DstIP  net.IP
	Length int
}

// FlowKey identifies one accounted series: the egress NIC the traffic is
// attributed to and the local endpoint address in dotted-decimal form.
type FlowKey struct {
	NIC string
	IP  string
}

// NICConfig names the three physical interfaces reported by the mapping
// authority: the LAN-facing capture interface and the two WAN uplinks.
type NICConfig struct {
	LAN  string `json:"lan" yaml:"lan"`
	WAN0 string `json:"wan0" yaml:"wan0"`
	WAN1 string `json:"wan1" yaml:"wan1"`
}

// StatusDocument is the mapping authority's response: the interface names
// plus per-endpoint egress assignments ("wan0" or "wan1", keyed by IP).
// A document is immutable once handed to the resolver; refreshes replace
// it wholesale.
type StatusDocument struct {
	Config   NICConfig         `json:"config"`
	Mappings map[string]string `json:"mappings"`
}

// WindowSnapshot is the result of draining the accumulator: the byte
// counts collected during one reporting window.
type WindowSnapshot struct {
	TxBytes    map[FlowKey]uint64
	RxBytes    map[FlowKey]uint64
	NICTxTotal map[string]uint64
	NICRxTotal map[string]uint64
}
