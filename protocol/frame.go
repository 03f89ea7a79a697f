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

const discoveryHeaderSize = 8
const sessionHeaderSize = 4

// parseDiscoveryHeader validates the 8-byte UDP discovery header (magic +
// signal id + length) and returns the signal id and the data-item payload.
func parseDiscoveryHeader(buf []byte) (SignalType, []byte, error) {
	if len(buf) < discoveryHeaderSize {
		return 0, nil, fmt.Errorf("%w: short discovery header", ErrInvalidData)
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return 0, nil, fmt.Errorf("%w: bad signal magic", ErrInvalidData)
	}
	sig := SignalType(ReadU16(buf[4:]))
	declared := ReadU16(buf[6:])
	payload := buf[discoveryHeaderSize:]
	if int(declared) != len(payload) {
		return 0, nil, fmt.Errorf("%w: declared length %d != actual %d", ErrInvalidData, declared, len(payload))
	}
	return sig, payload, nil
}

// parseSessionHeader validates the 4-byte TCP session header (message id +
// length) and returns the message id and the data-item payload.
func parseSessionHeader(buf []byte) (MessageType, []byte, error) {
	if len(buf) < sessionHeaderSize {
		return 0, nil, fmt.Errorf("%w: short message header", ErrInvalidData)
	}
	msg := MessageType(ReadU16(buf))
	declared := ReadU16(buf[2:])
	payload := buf[sessionHeaderSize:]
	if int(declared) != len(payload) {
		return 0, nil, fmt.Errorf("%w: declared length %d != actual %d", ErrInvalidData, declared, len(payload))
	}
	return msg, payload, nil
}

// rawItem is one type-length-value data item as seen during the walk.
type rawItem struct {
	typ     ItemType
	payload []byte
}

// walkItems walks payload strictly sequentially, decoding one item header
// at a time, and calls fn with each item's type and payload slice (a
// sub-slice of payload, not a copy). It fails if a header or its declared
// payload runs past the end of the buffer, or if there are leftover bytes
// after the last item.
func walkItems(payload []byte, fn func(rawItem) error) error {
	off := 0
	for off < len(payload) {
		if len(payload)-off < itemHeaderSize {
			return fmt.Errorf("%w: truncated item header", ErrInvalidData)
		}
		typ := ItemType(ReadU16(payload[off:]))
		length := int(ReadU16(payload[off+2:]))
		off += itemHeaderSize
		if off+length > len(payload) {
			return fmt.Errorf("%w: item %s length %d overruns frame", ErrInvalidData, typ, length)
		}
		if err := fn(rawItem{typ: typ, payload: payload[off : off+length]}); err != nil {
			return err
		}
		off += length
	}
	if off != len(payload) {
		return fmt.Errorf("%w: trailing bytes after last item", ErrInvalidData)
	}
	return nil
}

// seenSet tracks which non-repeatable item types have already appeared in
// the current message, stack-local to a single validator call.
type seenSet map[ItemType]bool

func (s seenSet) mark(t ItemType) error {
	if s[t] {
		return fmt.Errorf("%w: duplicate %s item", ErrInvalidData, t)
	}
	s[t] = true
	return nil
}
