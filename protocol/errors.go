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

import "errors"

// ErrInvalidData is wrapped by every validator failure that corresponds to
// StatusInvalidData: malformed items, missing mandatory items, duplicate
// unique items, or a frame whose declared length does not match its actual
// length.
var ErrInvalidData = errors.New("invalid data")

// ErrUnexpectedMessage is returned when a frame's message id does not match
// what the caller expected to receive in the current session state.
var ErrUnexpectedMessage = errors.New("unexpected message")

// ErrUnknownMessage is returned when a frame carries a message id the
// router does not recognize at all.
var ErrUnknownMessage = errors.New("unknown message")

// StatusOf maps a validator error to the wire status code the session
// engine should report back to the modem, choosing StatusInvalidData for
// any error this package did not itself originate.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrUnknownMessage):
		return StatusUnknownMessage
	case errors.Is(err, ErrUnexpectedMessage):
		return StatusUnexpectedMessage
	default:
		return StatusInvalidData
	}
}
