package subnet

import (
	"net"

	"LanMeter/internal/logging"
)

// LocalSubnets answers whether an IPv4 address belongs to the operator's
// local network. The set is immutable after construction; membership is a
// linear scan, which is fine for the handful of operator-configured ranges.
type LocalSubnets struct {
	nets []*net.IPNet
}

// New parses the given CIDR strings into a classifier. Malformed entries
// are logged and skipped; the classifier is built from whatever parses.
func New(cidrs []string) *LocalSubnets {
	s := &LocalSubnets{}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			logging.Errorf("Failed to parse local subnet %q: %v", cidr, err)
			continue
		}
		s.nets = append(s.nets, network)
		logging.Infof("Added local subnet: %s", network)
	}
	return s
}

// IsLocal reports whether ip falls within any configured subnet. Malformed
// or non-IPv4 addresses are "not local", never an error: classification
// runs on every captured frame and must not abort the capture loop.
func (s *LocalSubnets) IsLocal(ip string) bool {
	addr := net.ParseIP(ip)
	if addr == nil || addr.To4() == nil {
		return false
	}
	for _, network := range s.nets {
		if network.Contains(addr) {
			return true
		}
	}
	return false
}

// Len returns the number of usable subnets.
func (s *LocalSubnets) Len() int {
	return len(s.nets)
}
