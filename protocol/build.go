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
package protocol

// itemBuilder accumulates data items into a contiguous buffer.
type itemBuilder struct {
	buf []byte
}

func (b *itemBuilder) put(t ItemType, payload []byte) {
	head := make([]byte, itemHeaderSize)
	WriteU16(uint16(t), head)
	WriteU16(uint16(len(payload)), head[2:])
	b.buf = append(b.buf, head...)
	b.buf = append(b.buf, payload...)
}

// buildDiscoverySignal wraps items in the UDP discovery header.
func buildDiscoverySignal(sig SignalType, items *itemBuilder) []byte {
	out := make([]byte, discoveryHeaderSize, discoveryHeaderSize+len(items.buf))
	copy(out[0:4], Magic[:])
	WriteU16(uint16(sig), out[4:])
	WriteU16(uint16(len(items.buf)), out[6:])
	out = append(out, items.buf...)
	return out
}

// buildSessionMessage wraps items in the TCP session header.
func buildSessionMessage(msg MessageType, items *itemBuilder) []byte {
	out := make([]byte, sessionHeaderSize, sessionHeaderSize+len(items.buf))
	WriteU16(uint16(msg), out)
	WriteU16(uint16(len(items.buf)), out[2:])
	out = append(out, items.buf...)
	return out
}

// BuildPeerDiscovery builds the UDP Peer Discovery signal sent repeatedly
// during the Discovering state.
func BuildPeerDiscovery(peerType string) []byte {
	items := &itemBuilder{}
	items.put(ItemPeerType, encodePeerType(PeerTypeItem{Text: peerType}))
	return buildDiscoverySignal(SignalPeerDiscovery, items)
}

// BuildSessionInit builds the Session Initialization message the router
// sends once a Peer Offer has selected a modem to connect to.
func BuildSessionInit(routerHeartbeatMillis uint32, peerType string) []byte {
	items := &itemBuilder{}
	hb := make([]byte, 4)
	WriteU32(routerHeartbeatMillis, hb)
	items.put(ItemHeartbeatInterval, hb)
	items.put(ItemPeerType, encodePeerType(PeerTypeItem{Text: peerType}))
	return buildSessionMessage(MessageSessionInit, items)
}

// BuildHeartbeat builds a Heartbeat message, which carries no data items.
func BuildHeartbeat() []byte {
	return buildSessionMessage(MessageHeartbeat, &itemBuilder{})
}

// BuildSessionTerm builds a Session Termination message carrying the given
// status code as the reason for tearing the session down.
func BuildSessionTerm(status Status) []byte {
	items := &itemBuilder{}
	items.put(ItemStatus, encodeStatus(StatusItem{Code: status}))
	return buildSessionMessage(MessageSessionTerm, items)
}

// BuildSessionTermResp builds a Session Termination Response message, which
// carries no data items.
func BuildSessionTermResp() []byte {
	return buildSessionMessage(MessageSessionTermResp, &itemBuilder{})
}

// buildMACStatusResponse is shared by the three acknowledgement builders
// that carry only a MAC Address and a Status.
func buildMACStatusResponse(msg MessageType, mac [6]byte, status Status) []byte {
	items := &itemBuilder{}
	items.put(ItemMACAddress, mac[:])
	items.put(ItemStatus, encodeStatus(StatusItem{Code: status}))
	return buildSessionMessage(msg, items)
}

// BuildDestinationUpResp builds a Destination Up Response acknowledgement.
func BuildDestinationUpResp(mac [6]byte, status Status) []byte {
	return buildMACStatusResponse(MessageDestinationUpResp, mac, status)
}

// BuildDestinationDownResp builds a Destination Down Response
// acknowledgement.
func BuildDestinationDownResp(mac [6]byte, status Status) []byte {
	return buildMACStatusResponse(MessageDestinationDownResp, mac, status)
}

// BuildLinkCharResp builds a Link Characteristics Response. The router
// never initiates a Link Characteristics Request, so this always carries
// StatusRequestDenied in practice.
func BuildLinkCharResp(mac [6]byte, status Status) []byte {
	return buildMACStatusResponse(MessageLinkCharResponse, mac, status)
}
