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

import "time"

// IntervalElapsed compares now-start against the given interval in seconds,
// the way the session engine judges heartbeat and discovery deadlines. It
// returns -1 if less time has elapsed, 0 if exactly the interval has
// elapsed, and +1 if more. Both start and now must come from a monotonic
// clock reading (e.g. time.Now()); the comparison is done in nanoseconds so
// a borrow across the seconds boundary is handled by time.Duration itself.
func IntervalElapsed(start, now time.Time, seconds float64) int {
	elapsed := now.Sub(start)
	want := time.Duration(seconds * float64(time.Second))
	switch {
	case elapsed < want:
		return -1
	case elapsed > want:
		return 1
	default:
		return 0
	}
}
