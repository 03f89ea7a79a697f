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

import "fmt"

// processMetricsItem decodes one of the data items shared by Session
// Update, Destination Up and Destination Update (addresses, subnets, rate
// and quality metrics) into m. allowDrop controls whether a Drop-flagged
// address/subnet item is legal here (false for Destination Up, where only
// additions make sense per spec.md section 4.2). Address and subnet items
// are repeatable and therefore excluded from seen-set duplicate tracking;
// everything else here is a unique item and is tracked. It reports whether
// it recognized the item type at all.
func processMetricsItem(it rawItem, m *Metrics, allowDrop bool, seen seenSet) (bool, error) {
	switch it.typ {
	case ItemIPv4Address:
		a, err := decodeAddressItem(it.payload, false)
		if err != nil {
			return true, err
		}
		if !allowDrop && !a.Add {
			return true, fmt.Errorf("%w: Drop not allowed for %s here", ErrInvalidData, it.typ)
		}
		m.IPv4Addresses = append(m.IPv4Addresses, a)
		return true, nil
	case ItemIPv6Address:
		a, err := decodeAddressItem(it.payload, true)
		if err != nil {
			return true, err
		}
		if !allowDrop && !a.Add {
			return true, fmt.Errorf("%w: Drop not allowed for %s here", ErrInvalidData, it.typ)
		}
		m.IPv6Addresses = append(m.IPv6Addresses, a)
		return true, nil
	case ItemIPv4AttachedSubnet:
		s, err := decodeSubnetItem(it.payload, false)
		if err != nil {
			return true, err
		}
		if !allowDrop && !s.Add {
			return true, fmt.Errorf("%w: Drop not allowed for %s here", ErrInvalidData, it.typ)
		}
		m.IPv4Subnets = append(m.IPv4Subnets, s)
		return true, nil
	case ItemIPv6AttachedSubnet:
		s, err := decodeSubnetItem(it.payload, true)
		if err != nil {
			return true, err
		}
		if !allowDrop && !s.Add {
			return true, fmt.Errorf("%w: Drop not allowed for %s here", ErrInvalidData, it.typ)
		}
		m.IPv6Subnets = append(m.IPv6Subnets, s)
		return true, nil
	case ItemMDRR, ItemMDRT, ItemCDRR, ItemCDRT, ItemLatency:
		if err := seen.mark(it.typ); err != nil {
			return true, err
		}
		v, err := decodeU64(it.payload)
		if err != nil {
			return true, err
		}
		switch it.typ {
		case ItemMDRR:
			m.MDRR = &v
		case ItemMDRT:
			m.MDRT = &v
		case ItemCDRR:
			m.CDRR = &v
		case ItemCDRT:
			m.CDRT = &v
		case ItemLatency:
			m.Latency = &v
		}
		return true, nil
	case ItemResources, ItemRLQR, ItemRLQT:
		if err := seen.mark(it.typ); err != nil {
			return true, err
		}
		v, err := decodePercent(it.payload)
		if err != nil {
			return true, err
		}
		switch it.typ {
		case ItemResources:
			m.Resources = &v
		case ItemRLQR:
			m.RLQR = &v
		case ItemRLQT:
			m.RLQT = &v
		}
		return true, nil
	case ItemMTU:
		if err := seen.mark(it.typ); err != nil {
			return true, err
		}
		v, err := decodeMTU(it.payload)
		if err != nil {
			return true, err
		}
		m.MTU = &v
		return true, nil
	default:
		return false, nil
	}
}

// CheckPeerOfferSignal validates a UDP Peer Offer signal buffer and returns
// its structured view. Mandatory: at least one IPv4 or IPv6 Connection
// Point.
func CheckPeerOfferSignal(buf []byte) (*PeerOffer, error) {
	sig, payload, err := parseDiscoveryHeader(buf)
	if err != nil {
		return nil, err
	}
	if sig != SignalPeerOffer {
		return nil, fmt.Errorf("%w: expected Peer Offer, got %s", ErrUnexpectedMessage, sig)
	}
	offer := &PeerOffer{}
	seen := seenSet{}
	err = walkItems(payload, func(it rawItem) error {
		switch it.typ {
		case ItemIPv4ConnectionPoint:
			cp, err := decodeConnectionPoint(it.payload, false)
			if err != nil {
				return err
			}
			offer.IPv4ConnectionPoints = append(offer.IPv4ConnectionPoints, cp)
			return nil
		case ItemIPv6ConnectionPoint:
			cp, err := decodeConnectionPoint(it.payload, true)
			if err != nil {
				return err
			}
			offer.IPv6ConnectionPoints = append(offer.IPv6ConnectionPoints, cp)
			return nil
		case ItemPeerType:
			if err := seen.mark(it.typ); err != nil {
				return err
			}
			pt, err := decodePeerType(it.payload)
			if err != nil {
				return err
			}
			offer.PeerType = &pt
			return nil
		default:
			return fmt.Errorf("%w: unexpected item %s in Peer Offer", ErrInvalidData, it.typ)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(offer.IPv4ConnectionPoints) == 0 && len(offer.IPv6ConnectionPoints) == 0 {
		return nil, fmt.Errorf("%w: Peer Offer carries no Connection Point", ErrInvalidData)
	}
	return offer, nil
}

// CheckSessionInitRespMessage validates a Session Initialization Response
// message buffer. Mandatory: Status, Peer Type, Heartbeat Interval, MDRR,
// MDRT, CDRR, CDRT, Latency. Unknown items are tolerated (extension
// negotiation); Drop address items are rejected (only additions make sense
// here).
func CheckSessionInitRespMessage(buf []byte) (*SessionInitResp, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageSessionInitResp {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageSessionInitResp, msg)
	}
	resp := &SessionInitResp{}
	seen := seenSet{}
	m := &Metrics{}
	err = walkItems(payload, func(it rawItem) error {
		if handled, err := processMetricsItem(it, m, false, seen); handled {
			return err
		}
		switch it.typ {
		case ItemStatus:
			if err := seen.mark(it.typ); err != nil {
				return err
			}
			s, err := decodeStatus(it.payload)
			if err != nil {
				return err
			}
			resp.Status = s
			return nil
		case ItemPeerType:
			if err := seen.mark(it.typ); err != nil {
				return err
			}
			pt, err := decodePeerType(it.payload)
			if err != nil {
				return err
			}
			resp.PeerType = pt
			return nil
		case ItemHeartbeatInterval:
			if err := seen.mark(it.typ); err != nil {
				return err
			}
			v, err := decodeHeartbeatInterval(it.payload)
			if err != nil {
				return err
			}
			resp.HeartbeatInterval = v
			return nil
		case ItemExtensionsSupported:
			if err := seen.mark(it.typ); err != nil {
				return err
			}
			exts, err := decodeExtensions(it.payload)
			if err != nil {
				return err
			}
			resp.Extensions = exts
			return nil
		default:
			// Unknown items are tolerated here: extension negotiation in progress.
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	if !seen[ItemStatus] || !seen[ItemPeerType] || !seen[ItemHeartbeatInterval] ||
		m.MDRR == nil || m.MDRT == nil || m.CDRR == nil || m.CDRT == nil || m.Latency == nil {
		return nil, fmt.Errorf("%w: Session Initialization Response missing a mandatory item", ErrInvalidData)
	}
	resp.MDRR, resp.MDRT, resp.CDRR, resp.CDRT, resp.Latency = *m.MDRR, *m.MDRT, *m.CDRR, *m.CDRT, *m.Latency
	resp.IPv4Addresses, resp.IPv6Addresses = m.IPv4Addresses, m.IPv6Addresses
	resp.Resources, resp.RLQR, resp.RLQT, resp.MTU = m.Resources, m.RLQR, m.RLQT, m.MTU
	return resp, nil
}

// CheckSessionTermMessage validates a Session Termination message buffer.
// Mandatory: Status.
func CheckSessionTermMessage(buf []byte) (*SessionTerm, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageSessionTerm {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageSessionTerm, msg)
	}
	term := &SessionTerm{}
	seen := seenSet{}
	err = walkItems(payload, func(it rawItem) error {
		if it.typ != ItemStatus {
			return fmt.Errorf("%w: unexpected item %s in Session Termination", ErrInvalidData, it.typ)
		}
		if err := seen.mark(it.typ); err != nil {
			return err
		}
		s, err := decodeStatus(it.payload)
		if err != nil {
			return err
		}
		term.Status = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seen[ItemStatus] {
		return nil, fmt.Errorf("%w: Session Termination missing Status", ErrInvalidData)
	}
	return term, nil
}

// CheckSessionUpdateMessage validates a Session Update message buffer. No
// items are mandatory; both Add and Drop address/subnet items are legal.
func CheckSessionUpdateMessage(buf []byte) (*SessionUpdate, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageSessionUpdate {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageSessionUpdate, msg)
	}
	upd := &SessionUpdate{}
	seen := seenSet{}
	err = walkItems(payload, func(it rawItem) error {
		if handled, err := processMetricsItem(it, &upd.Metrics, true, seen); handled {
			return err
		}
		return fmt.Errorf("%w: unexpected item %s in Session Update", ErrInvalidData, it.typ)
	})
	if err != nil {
		return nil, err
	}
	return upd, nil
}

// CheckDestinationUpMessage validates a Destination Up message buffer.
// Mandatory: MAC Address. At least one IP item should be present but its
// absence is not rejected, only worth a caller-side warning. Drop address
// items are rejected (only additions make sense here).
func CheckDestinationUpMessage(buf []byte) (*DestinationUp, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageDestinationUp {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageDestinationUp, msg)
	}
	up := &DestinationUp{}
	seen := seenSet{}
	err = walkItems(payload, func(it rawItem) error {
		if handled, err := processMetricsItem(it, &up.Metrics, false, seen); handled {
			return err
		}
		if it.typ != ItemMACAddress {
			return fmt.Errorf("%w: unexpected item %s in Destination Up", ErrInvalidData, it.typ)
		}
		if err := seen.mark(it.typ); err != nil {
			return err
		}
		mac, err := decodeMAC(it.payload)
		if err != nil {
			return err
		}
		up.MAC = mac
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seen[ItemMACAddress] {
		return nil, fmt.Errorf("%w: Destination Up missing MAC Address", ErrInvalidData)
	}
	return up, nil
}

// CheckDestinationUpdateMessage validates a Destination Update message
// buffer. Mandatory: MAC Address. Both Add and Drop address/subnet items
// are legal.
func CheckDestinationUpdateMessage(buf []byte) (*DestinationUpdate, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageDestinationUpdate {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageDestinationUpdate, msg)
	}
	upd := &DestinationUpdate{}
	seen := seenSet{}
	err = walkItems(payload, func(it rawItem) error {
		if handled, err := processMetricsItem(it, &upd.Metrics, true, seen); handled {
			return err
		}
		if it.typ != ItemMACAddress {
			return fmt.Errorf("%w: unexpected item %s in Destination Update", ErrInvalidData, it.typ)
		}
		if err := seen.mark(it.typ); err != nil {
			return err
		}
		mac, err := decodeMAC(it.payload)
		if err != nil {
			return err
		}
		upd.MAC = mac
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seen[ItemMACAddress] {
		return nil, fmt.Errorf("%w: Destination Update missing MAC Address", ErrInvalidData)
	}
	return upd, nil
}

// CheckDestinationDownMessage validates a Destination Down message buffer.
// Mandatory: MAC Address.
func CheckDestinationDownMessage(buf []byte) (*DestinationDown, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageDestinationDown {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageDestinationDown, msg)
	}
	down := &DestinationDown{}
	seen := seenSet{}
	err = walkItems(payload, func(it rawItem) error {
		if it.typ != ItemMACAddress {
			return fmt.Errorf("%w: unexpected item %s in Destination Down", ErrInvalidData, it.typ)
		}
		if err := seen.mark(it.typ); err != nil {
			return err
		}
		mac, err := decodeMAC(it.payload)
		if err != nil {
			return err
		}
		down.MAC = mac
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seen[ItemMACAddress] {
		return nil, fmt.Errorf("%w: Destination Down missing MAC Address", ErrInvalidData)
	}
	return down, nil
}

// CheckLinkCharRequestMessage validates a Link Characteristics Request
// message buffer. Mandatory: MAC Address.
func CheckLinkCharRequestMessage(buf []byte) (*LinkCharRequest, error) {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return nil, err
	}
	if msg != MessageLinkCharRequest {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageLinkCharRequest, msg)
	}
	req := &LinkCharRequest{}
	seen := seenSet{}
	m := &Metrics{}
	err = walkItems(payload, func(it rawItem) error {
		// The router never acts on the requested-rate items, but it still
		// has to walk past them to find the frame boundary.
		if handled, err := processMetricsItem(it, m, true, seen); handled {
			return err
		}
		if it.typ != ItemMACAddress {
			return fmt.Errorf("%w: unexpected item %s in Link Characteristics Request", ErrInvalidData, it.typ)
		}
		if err := seen.mark(it.typ); err != nil {
			return err
		}
		mac, err := decodeMAC(it.payload)
		if err != nil {
			return err
		}
		req.MAC = mac
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !seen[ItemMACAddress] {
		return nil, fmt.Errorf("%w: Link Characteristics Request missing MAC Address", ErrInvalidData)
	}
	return req, nil
}

// CheckHeartbeatMessage validates a Heartbeat message buffer, which carries
// no data items.
func CheckHeartbeatMessage(buf []byte) error {
	msg, payload, err := parseSessionHeader(buf)
	if err != nil {
		return err
	}
	if msg != MessageHeartbeat {
		return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedMessage, MessageHeartbeat, msg)
	}
	if len(payload) != 0 {
		return fmt.Errorf("%w: Heartbeat carries unexpected items", ErrInvalidData)
	}
	return nil
}

// PeekMessageType reads just enough of buf to report the message id
// without validating its body, so the session engine can dispatch before
// running the full per-message check.
func PeekMessageType(buf []byte) (MessageType, error) {
	if len(buf) < sessionHeaderSize {
		return 0, fmt.Errorf("%w: short message header", ErrInvalidData)
	}
	return MessageType(ReadU16(buf)), nil
}
