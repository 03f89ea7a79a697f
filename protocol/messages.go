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

import "net"

// PeerOffer is the structured view of a Peer Offer signal.
type PeerOffer struct {
	IPv4ConnectionPoints []ConnectionPoint
	IPv6ConnectionPoints []ConnectionPoint
	PeerType             *PeerTypeItem
}

// SessionInitResp is the structured view of a Session Initialization
// Response message.
type SessionInitResp struct {
	Status            StatusItem
	PeerType          PeerTypeItem
	HeartbeatInterval uint32 // milliseconds
	MDRR              uint64
	MDRT              uint64
	CDRR              uint64
	CDRT              uint64
	Latency           uint64
	Extensions        []uint16
	IPv4Addresses     []AddressItem
	IPv6Addresses     []AddressItem
	Resources         *uint8
	RLQR              *uint8
	RLQT              *uint8
	MTU               *uint16
}

// SessionTerm is the structured view of a Session Termination message.
type SessionTerm struct {
	Status StatusItem
}

// Metrics holds the repeatable address/subnet/rate data items shared by
// Session Update, Destination Up and Destination Update: the set of items
// whose presence is optional but whose values mutate router-side state.
type Metrics struct {
	IPv4Addresses []AddressItem
	IPv6Addresses []AddressItem
	IPv4Subnets   []SubnetItem
	IPv6Subnets   []SubnetItem
	MDRR          *uint64
	MDRT          *uint64
	CDRR          *uint64
	CDRT          *uint64
	Latency       *uint64
	Resources     *uint8
	RLQR          *uint8
	RLQT          *uint8
	MTU           *uint16
}

// SessionUpdate is the structured view of a Session Update message.
type SessionUpdate struct {
	Metrics
}

// DestinationUp is the structured view of a Destination Up message.
type DestinationUp struct {
	MAC net.HardwareAddr
	Metrics
}

// DestinationUpdate is the structured view of a Destination Update message.
type DestinationUpdate struct {
	MAC net.HardwareAddr
	Metrics
}

// DestinationDown is the structured view of a Destination Down message.
type DestinationDown struct {
	MAC net.HardwareAddr
}

// LinkCharRequest is the structured view of a Link Characteristics Request
// message. The router never initiates link characteristics negotiation; it
// only ever denies the request, so the requested-rate items are validated
// but not kept in this view.
type LinkCharRequest struct {
	MAC net.HardwareAddr
}
