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
// Package stats collects counters and gauges describing a running router
// session: frames sent and received per message type, active destination
// count, state transitions, heartbeat jitter and the router process's own
// resource usage. It
// is a collaborator of router.Engine, never imported by it (spec.md
// section 4.5 keeps the core free of any specific metrics library).
package stats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dlep-router/dlep/protocol"
)

// Stats is the metric sink a running router binds to its session engine.
type Stats struct {
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	stateTransitions *prometheus.CounterVec
	destinationsActive prometheus.Gauge
	jitter *Jitter
	sys    *SysStats
}

// New registers every DLEP metric against registry and returns the sink.
func New(registry *prometheus.Registry) *Stats {
	s := &Stats{
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dlep_frames_sent_total",
			Help: "DLEP frames sent, by message type",
		}, []string{"message"}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dlep_frames_received_total",
			Help: "DLEP frames received, by message type",
		}, []string{"message"}),
		stateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dlep_session_state_transitions_total",
			Help: "Session engine state transitions, by target state",
		}, []string{"state"}),
		destinationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dlep_destinations_active",
			Help: "Destinations currently in the router's destination table",
		}),
		jitter: NewJitter(),
		sys:    NewSysStats(),
	}
	registry.MustRegister(s.framesSent, s.framesReceived, s.stateTransitions, s.destinationsActive)
	registry.MustRegister(s.jitter.collector())
	registry.MustRegister(s.sys.collectors()...)
	return s
}

// IncFramesSent records one outbound frame of the given message type.
func (s *Stats) IncFramesSent(msg protocol.MessageType) {
	s.framesSent.WithLabelValues(msg.String()).Inc()
}

// IncFramesReceived records one inbound frame of the given message type.
func (s *Stats) IncFramesReceived(msg protocol.MessageType) {
	s.framesReceived.WithLabelValues(msg.String()).Inc()
}

// IncStateTransition records a transition of the session state machine
// into the named state.
func (s *Stats) IncStateTransition(state string) {
	s.stateTransitions.WithLabelValues(state).Inc()
}

// SetDestinationsActive reports the current destination table size.
func (s *Stats) SetDestinationsActive(n int) {
	s.destinationsActive.Set(float64(n))
}

// ObserveHeartbeatArrival feeds one inter-heartbeat arrival gap, in
// seconds, into the jitter estimator.
func (s *Stats) ObserveHeartbeatArrival(gapSeconds float64) {
	s.jitter.Observe(gapSeconds)
}

// CollectSysStats refreshes the router process's CPU, RSS, goroutine and
// uptime gauges. Call periodically
// (mirrors sptp/client/sysstats.go's CollectRuntimeStats cadence).
func (s *Stats) CollectSysStats() error {
	return s.sys.Collect()
}
