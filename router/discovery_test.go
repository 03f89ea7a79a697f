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
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dlep-router/dlep/protocol"
)

// discoverySignal builds a raw UDP discovery signal buffer, the same shape
// protocol.BuildPeerDiscovery produces, for a signal type the protocol
// package otherwise only decodes (Peer Offer).
func discoverySignal(sig protocol.SignalType, items ...[]byte) []byte {
	var body []byte
	for _, it := range items {
		body = append(body, it...)
	}
	h := make([]byte, 8)
	copy(h[0:4], protocol.Magic[:])
	protocol.WriteU16(uint16(sig), h[4:])
	protocol.WriteU16(uint16(len(body)), h[6:])
	return append(h, body...)
}

// peerOfferFrame builds a Peer Offer signal carrying a single IPv4
// Connection Point with no explicit port, so the well-known port applies.
func peerOfferFrame(ip net.IP) []byte {
	payload := append([]byte{0}, ip.To4()...)
	return discoverySignal(protocol.SignalPeerOffer,
		itemBytes(protocol.ItemIPv4ConnectionPoint, payload),
	)
}

// TestEngineDiscoverOrConfiguredAcceptsPeerOffer exercises the Discovering
// state's UDP send/receive loop through the Dialer seam: MockDialer hands
// back a MockDatagramSocket, which replies to the Peer Discovery send with
// a scripted Peer Offer.
func TestEngineDiscoverOrConfiguredAcceptsPeerOffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dialer := NewMockDialer(ctrl)
	sock := NewMockDatagramSocket(ctrl)

	offer := peerOfferFrame(net.IPv4(10, 0, 0, 1))

	dialer.EXPECT().OpenDiscovery("ipv4", "lo").Return(sock, nil)
	sock.EXPECT().Send(gomock.Any()).Return(nil)
	sock.EXPECT().RecvWithTimeout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(buf []byte, _ time.Duration) (int, net.Addr, error) {
			return copy(buf, offer), nil, nil
		})
	sock.EXPECT().Close().Return(nil)

	e := NewEngine(testConfig(), nil, fixedClock{t: time.Unix(5000, 0)}, dialer)
	addr, port, zone, err := e.discoverOrConfigured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", addr)
	assert.Equal(t, protocol.WellKnownPort, port)
	assert.Empty(t, zone)
}

// TestEngineDiscoverOrConfiguredRetriesOnInvalidOffer confirms a malformed
// signal is logged and skipped rather than treated as fatal, by scripting
// one bad signal followed by a good one.
func TestEngineDiscoverOrConfiguredRetriesOnInvalidOffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dialer := NewMockDialer(ctrl)
	sock := NewMockDatagramSocket(ctrl)

	garbage := []byte("not a dlep signal")
	offer := peerOfferFrame(net.IPv4(10, 0, 0, 2))

	dialer.EXPECT().OpenDiscovery("ipv4", "lo").Return(sock, nil)
	sock.EXPECT().Send(gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		sock.EXPECT().RecvWithTimeout(gomock.Any(), gomock.Any()).DoAndReturn(
			func(buf []byte, _ time.Duration) (int, net.Addr, error) {
				return copy(buf, garbage), nil, nil
			}),
		sock.EXPECT().RecvWithTimeout(gomock.Any(), gomock.Any()).DoAndReturn(
			func(buf []byte, _ time.Duration) (int, net.Addr, error) {
				return copy(buf, offer), nil, nil
			}),
	)
	sock.EXPECT().Close().Return(nil)

	e := NewEngine(testConfig(), nil, fixedClock{t: time.Unix(5000, 0)}, dialer)
	addr, _, _, err := e.discoverOrConfigured(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", addr)
}
