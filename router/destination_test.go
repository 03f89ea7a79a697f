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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlep-router/dlep/protocol"
)

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func TestDestinationsLifecycle(t *testing.T) {
	mac := mustMAC("02:00:00:00:00:01")
	table := NewDestinations()

	mdrr := uint64(1000)
	up := &protocol.DestinationUp{
		MAC: mac,
		Metrics: protocol.Metrics{
			IPv4Addresses: []protocol.AddressItem{{IP: net.ParseIP("10.0.0.1"), Add: true}},
			MDRR:          &mdrr,
		},
	}
	d := table.Insert(up)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, uint64(1000), d.MDRR)

	cdrr := uint64(500)
	upd := &protocol.DestinationUpdate{
		MAC: mac,
		Metrics: protocol.Metrics{
			CDRR: &cdrr,
		},
	}
	got, ok := table.Update(upd)
	require.True(t, ok)
	assert.Equal(t, uint64(500), got.CDRR)
	assert.Equal(t, uint64(1000), got.MDRR, "unrelated fields survive an update")

	removed := table.Remove(mac)
	assert.True(t, removed)
	assert.Equal(t, 0, table.Len())
}

func TestDestinationsUpdateUnknownMACIsNoop(t *testing.T) {
	table := NewDestinations()
	_, ok := table.Update(&protocol.DestinationUpdate{MAC: mustMAC("02:00:00:00:00:02")})
	assert.False(t, ok)
}

func TestApplyMetricsIdempotent(t *testing.T) {
	d := &Destination{}
	m := protocol.Metrics{
		IPv4Addresses: []protocol.AddressItem{{IP: net.ParseIP("10.0.0.1"), Add: true}},
		IPv4Subnets:   []protocol.SubnetItem{{IP: net.ParseIP("10.0.1.0"), Prefix: 24, Add: true}},
	}
	d.applyMetrics(m)
	first := append([]net.IP(nil), d.IPv4Addresses...)
	d.applyMetrics(m)
	assert.Equal(t, first, d.IPv4Addresses, "applying the same update twice must not duplicate entries")
	assert.Len(t, d.IPv4Subnets, 1)
}

func TestApplyMetricsDrop(t *testing.T) {
	d := &Destination{IPv4Addresses: []net.IP{net.ParseIP("10.0.0.1")}}
	d.applyMetrics(protocol.Metrics{
		IPv4Addresses: []protocol.AddressItem{{IP: net.ParseIP("10.0.0.1"), Add: false}},
	})
	assert.Empty(t, d.IPv4Addresses)
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	mac := mustMAC("02:00:00:00:00:03")
	table := NewDestinations()
	table.Insert(&protocol.DestinationUp{MAC: mac})

	snap := table.Snapshot()
	require.Len(t, snap, 1)
	snap[0].MDRR = 42

	d, ok := table.Get(mac)
	require.True(t, ok)
	assert.NotEqual(t, uint64(42), d.MDRR)
}
