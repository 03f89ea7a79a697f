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
package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlep-router/dlep/protocol"
)

func counterValue(t *testing.T, c *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.WithLabelValues(labels...).Write(m))
	return m.GetCounter().GetValue()
}

func TestStatsFrameCounters(t *testing.T) {
	s := New(prometheus.NewRegistry())

	s.IncFramesSent(protocol.MessageHeartbeat)
	s.IncFramesSent(protocol.MessageHeartbeat)
	s.IncFramesReceived(protocol.MessageDestinationUp)

	assert.Equal(t, float64(2), counterValue(t, s.framesSent, "Heartbeat"))
	assert.Equal(t, float64(1), counterValue(t, s.framesReceived, "Destination Up"))
}

func TestStatsDestinationsActiveGauge(t *testing.T) {
	s := New(prometheus.NewRegistry())

	s.SetDestinationsActive(3)

	m := &dto.Metric{}
	require.NoError(t, s.destinationsActive.Write(m))
	assert.Equal(t, float64(3), m.GetGauge().GetValue())
}

func TestJitterObserve(t *testing.T) {
	j := NewJitter()
	j.Observe(1.0)
	j.Observe(1.2)
	j.Observe(0.8)

	assert.InDelta(t, 1.0, j.s.Mean(), 0.01)
}
