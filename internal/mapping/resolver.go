package mapping

import (
	"sync/atomic"

	"LanMeter/internal/model"
)

// Egress tags the authority uses in its mappings table.
const (
	TagWAN0 = "wan0"
	TagWAN1 = "wan1"
)

// DefaultStatus is the hardcoded fallback used when the authority cannot be
// reached at startup.
func DefaultStatus() *model.StatusDocument {
	return &model.StatusDocument{
		Config: model.NICConfig{
			LAN:  "eth2",
			WAN0: "eth0",
			WAN1: "eth1",
		},
		Mappings: map[string]string{},
	}
}

// Resolver maps a local endpoint address to the name of the physical
// interface its traffic egresses through. The current StatusDocument sits
// behind an atomic pointer: lookups always see one fully-formed document,
// and a refresh swaps the whole document at once. Documents are never
// mutated after being installed.
type Resolver struct {
	current atomic.Pointer[model.StatusDocument]
}

// NewResolver creates a resolver seeded with the given document.
func NewResolver(initial *model.StatusDocument) *Resolver {
	r := &Resolver{}
	r.Replace(initial)
	return r
}

// Resolve returns the physical interface name for the endpoint. Endpoints
// absent from the mappings table, or tagged with an unrecognized label,
// fall back to the wan0 interface.
func (r *Resolver) Resolve(endpoint string) string {
	doc := r.current.Load()
	switch doc.Mappings[endpoint] {
	case TagWAN1:
		return doc.Config.WAN1
	default:
		return doc.Config.WAN0
	}
}

// Replace installs a new document as the current snapshot. A nil mappings
// table is normalized to an empty one so lookups never nil-check.
func (r *Resolver) Replace(doc *model.StatusDocument) {
	if doc.Mappings == nil {
		doc.Mappings = map[string]string{}
	}
	r.current.Store(doc)
}

// Current returns the document lookups are currently served from.
func (r *Resolver) Current() *model.StatusDocument {
	return r.current.Load()
}
