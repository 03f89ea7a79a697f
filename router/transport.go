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
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"

	"github.com/dlep-router/dlep/protocol"
)

// DatagramSocket is the Discovering state's UDP collaborator (spec.md
// section 4.5): send a signal, wait for one with a timeout, close.
type DatagramSocket interface {
	Send(b []byte) error
	RecvWithTimeout(buf []byte, timeout time.Duration) (int, net.Addr, error)
	Close() error
}

// StreamSocket is the session TCP collaborator (spec.md section 4.5).
type StreamSocket interface {
	Send(b []byte) error
	RecvWithTimeout(buf []byte, timeout time.Duration) (int, error)
	Close() error
}

// Dialer is how the engine obtains sockets and resolves interface scope
// ids, so tests can substitute a mock instead of touching real network
// devices (SPEC_FULL.md section 11: go.uber.org/mock transport mocks).
type Dialer interface {
	OpenDiscovery(family string, iface string) (DatagramSocket, error)
	OpenSession(addr string, port int, zone string) (StreamSocket, error)
	ScopeID(iface string) (string, error)
}

// netDialer is the production Dialer, backed by real UDP/TCP sockets and
// rtnetlink interface lookups.
type netDialer struct{}

func (netDialer) OpenDiscovery(family string, iface string) (DatagramSocket, error) {
	return openUDP(family, iface, protocol.WellKnownPort)
}

func (netDialer) OpenSession(addr string, port int, zone string) (StreamSocket, error) {
	return openTCP(addr, port, zone)
}

func (netDialer) ScopeID(iface string) (string, error) {
	return resolveScopeID(iface)
}

// udpDiscoverySocket is the production DatagramSocket: bound to the DLEP
// well-known port, joined to the discovery multicast group on the
// configured interface, with multicast loopback enabled so a test harness
// running modem and router on the loopback interface sees its own traffic.
type udpDiscoverySocket struct {
	conn  *net.UDPConn
	group *net.UDPAddr
	v4    *ipv4.PacketConn
	v6    *ipv6.PacketConn
	ifi   *net.Interface
}

// openUDP opens and joins the DLEP discovery multicast group on iface,
// matching the IPv4/IPv6 split and multicast-loopback requirement of
// spec.md section 4.4's Discovering entry.
func openUDP(family string, iface string, port int) (*udpDiscoverySocket, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("resolving interface %s: %w", iface, err)
	}
	network, groupIP := "udp4", protocol.MulticastIPv4
	if family == "ipv6" {
		network, groupIP = "udp6", protocol.MulticastIPv6
	}
	laddr := &net.UDPAddr{Port: port}
	lc := net.ListenConfig{Control: setReuseAddr}
	packetConn, err := lc.ListenPacket(context.Background(), network, laddr.String())
	if err != nil {
		return nil, fmt.Errorf("binding discovery socket on %s: %w", laddr, err)
	}
	conn := packetConn.(*net.UDPConn)

	group := &net.UDPAddr{IP: net.ParseIP(groupIP), Port: port}
	s := &udpDiscoverySocket{conn: conn, group: group, ifi: ifi}
	if family == "ipv6" {
		s.v6 = ipv6.NewPacketConn(conn)
		if err := s.v6.JoinGroup(ifi, group); err != nil {
			conn.Close()
			return nil, fmt.Errorf("joining %s on %s: %w", groupIP, iface, err)
		}
		_ = s.v6.SetMulticastLoopback(true)
		_ = s.v6.SetMulticastInterface(ifi)
	} else {
		s.v4 = ipv4.NewPacketConn(conn)
		if err := s.v4.JoinGroup(ifi, group); err != nil {
			conn.Close()
			return nil, fmt.Errorf("joining %s on %s: %w", groupIP, iface, err)
		}
		_ = s.v4.SetMulticastLoopback(true)
		_ = s.v4.SetMulticastInterface(ifi)
	}
	return s, nil
}

func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// Send transmits b to the discovery multicast group (used for Peer
// Discovery; Peer Offer replies go to whichever address last sent us a
// Peer Discovery, so the modem side is symmetrical but this router side
// only ever sends to the group).
func (s *udpDiscoverySocket) Send(b []byte) error {
	_, err := s.conn.WriteToUDP(b, s.group)
	return err
}

// RecvWithTimeout waits up to timeout for one datagram.
func (s *udpDiscoverySocket) RecvWithTimeout(buf []byte, timeout time.Duration) (int, net.Addr, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, nil, err
	}
	n, addr, err := s.conn.ReadFromUDP(buf)
	return n, addr, err
}

// Close releases the multicast membership and the underlying socket.
func (s *udpDiscoverySocket) Close() error {
	if s.v4 != nil {
		_ = s.v4.LeaveGroup(s.ifi, s.group)
	}
	if s.v6 != nil {
		_ = s.v6.LeaveGroup(s.ifi, s.group)
	}
	return s.conn.Close()
}

// tcpSessionSocket is the production StreamSocket: a plain TCP connection
// to the modem's chosen Connection Point.
type tcpSessionSocket struct {
	conn net.Conn
}

// openTCP dials the session connection. zone, when non-empty, is appended
// to a link-local IPv6 address as the interface scope id (spec.md section
// 4.4's "interface scope id propagated to the connect address").
func openTCP(addr string, port int, zone string) (*tcpSessionSocket, error) {
	host := addr
	if zone != "" {
		host = addr + "%" + zone
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)), 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connecting to modem at %s: %w", host, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &tcpSessionSocket{conn: conn}, nil
}

// Send writes b in full.
func (s *tcpSessionSocket) Send(b []byte) error {
	_, err := s.conn.Write(b)
	return err
}

// RecvWithTimeout fills buf completely within timeout, returning the byte
// count read so far together with the error if the read stops short. The
// engine calls it once for the 4-byte header and again for
// the declared payload (spec.md section 4.4's two-reads-per-message rule).
func (s *tcpSessionSocket) RecvWithTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	return readFull(s.conn, buf)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close closes the session connection.
func (s *tcpSessionSocket) Close() error {
	return s.conn.Close()
}
