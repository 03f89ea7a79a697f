/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package router

import (
	"net"
	"sync"

	"github.com/dlep-router/dlep/protocol"
)

// Destination is the router's view of one remote peer reachable over the
// radio, keyed by its MAC address (spec.md section 3).
type Destination struct {
	MAC           net.HardwareAddr
	IPv4Addresses []net.IP
	IPv6Addresses []net.IP
	IPv4Subnets   []protocol.SubnetItem
	IPv6Subnets   []protocol.SubnetItem
	MDRR, MDRT    uint64
	CDRR, CDRT    uint64
	Latency       uint64
	Resources     uint8
	RLQR, RLQT    uint8
	MTU           uint16
}

func macKey(mac net.HardwareAddr) string { return string(mac) }

// applyMetrics folds a validated Metrics item set into d, in place. Used by
// both DestinationUp (initial values) and DestinationUpdate (deltas): Add
// address/subnet items append, Drop items remove, and any present
// numeric/percent field simply overwrites the previous value. Applying the
// same validated update twice is idempotent, since set membership and
// overwrite are both idempotent operations.
func (d *Destination) applyMetrics(m protocol.Metrics) {
	for _, a := range m.IPv4Addresses {
		d.IPv4Addresses = applyAddress(d.IPv4Addresses, a)
	}
	for _, a := range m.IPv6Addresses {
		d.IPv6Addresses = applyAddress(d.IPv6Addresses, a)
	}
	for _, s := range m.IPv4Subnets {
		d.IPv4Subnets = applySubnet(d.IPv4Subnets, s)
	}
	for _, s := range m.IPv6Subnets {
		d.IPv6Subnets = applySubnet(d.IPv6Subnets, s)
	}
	if m.MDRR != nil {
		d.MDRR = *m.MDRR
	}
	if m.MDRT != nil {
		d.MDRT = *m.MDRT
	}
	if m.CDRR != nil {
		d.CDRR = *m.CDRR
	}
	if m.CDRT != nil {
		d.CDRT = *m.CDRT
	}
	if m.Latency != nil {
		d.Latency = *m.Latency
	}
	if m.Resources != nil {
		d.Resources = *m.Resources
	}
	if m.RLQR != nil {
		d.RLQR = *m.RLQR
	}
	if m.RLQT != nil {
		d.RLQT = *m.RLQT
	}
	if m.MTU != nil {
		d.MTU = *m.MTU
	}
}

func applyAddress(cur []net.IP, item protocol.AddressItem) []net.IP {
	if item.Add {
		for _, ip := range cur {
			if ip.Equal(item.IP) {
				return cur
			}
		}
		return append(cur, item.IP)
	}
	out := cur[:0]
	for _, ip := range cur {
		if !ip.Equal(item.IP) {
			out = append(out, ip)
		}
	}
	return out
}

func applySubnet(cur []protocol.SubnetItem, item protocol.SubnetItem) []protocol.SubnetItem {
	if item.Add {
		for _, s := range cur {
			if s.IP.Equal(item.IP) && s.Prefix == item.Prefix {
				return cur
			}
		}
		return append(cur, protocol.SubnetItem{IP: item.IP, Prefix: item.Prefix, Add: true})
	}
	out := cur[:0]
	for _, s := range cur {
		if !(s.IP.Equal(item.IP) && s.Prefix == item.Prefix) {
			out = append(out, s)
		}
	}
	return out
}

// Destinations is the session-scoped table of known destinations (spec.md
// section 3), destroyed with the session. The engine is single-threaded so
// the mutex here only guards readers from another goroutine such as the
// run subcommand's periodic status print.
type Destinations struct {
	mu    sync.Mutex
	byMAC map[string]*Destination
}

// NewDestinations returns an empty destination table.
func NewDestinations() *Destinations {
	return &Destinations{byMAC: make(map[string]*Destination)}
}

// Insert adds a destination from a validated Destination Up message,
// overwriting any previous entry for the same MAC (the lifecycle in
// spec.md section 3 guarantees Destination Up always follows a Destination
// Down or no prior entry at all).
func (t *Destinations) Insert(up *protocol.DestinationUp) *Destination {
	d := &Destination{MAC: up.MAC}
	d.applyMetrics(up.Metrics)
	t.mu.Lock()
	t.byMAC[macKey(up.MAC)] = d
	t.mu.Unlock()
	return d
}

// Update applies a validated Destination Update to the existing entry. It
// is a no-op if the MAC is unknown (the modem updating a destination the
// router never saw Up is a protocol inconsistency the engine logs but does
// not treat as fatal).
func (t *Destinations) Update(upd *protocol.DestinationUpdate) (*Destination, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.byMAC[macKey(upd.MAC)]
	if !ok {
		return nil, false
	}
	d.applyMetrics(upd.Metrics)
	return d, true
}

// Remove deletes the destination named by a validated Destination Down
// message and reports whether it existed.
func (t *Destinations) Remove(mac net.HardwareAddr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := macKey(mac)
	if _, ok := t.byMAC[key]; !ok {
		return false
	}
	delete(t.byMAC, key)
	return true
}

// Get returns the destination for mac, if any.
func (t *Destinations) Get(mac net.HardwareAddr) (*Destination, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.byMAC[macKey(mac)]
	return d, ok
}

// Len reports how many destinations are currently known.
func (t *Destinations) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byMAC)
}

// Snapshot returns a defensive copy of the whole table, used by the run
// subcommand's periodic status print (cmd/dlep-router/show.go).
func (t *Destinations) Snapshot() []*Destination {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Destination, 0, len(t.byMAC))
	for _, d := range t.byMAC {
		cp := *d
		cp.MAC = append(net.HardwareAddr(nil), d.MAC...)
		cp.IPv4Addresses = append([]net.IP(nil), d.IPv4Addresses...)
		cp.IPv6Addresses = append([]net.IP(nil), d.IPv6Addresses...)
		cp.IPv4Subnets = append([]protocol.SubnetItem(nil), d.IPv4Subnets...)
		cp.IPv6Subnets = append([]protocol.SubnetItem(nil), d.IPv6Subnets...)
		out = append(out, &cp)
	}
	return out
}
