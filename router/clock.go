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

import "time"

// Clock is the monotonic time source the engine uses for heartbeat and
// discovery deadlines (spec.md section 4.5). Abstracted so tests can freeze
// and advance time instead of sleeping.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock, backed by time.Now (monotonic on
// every supported platform).
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
