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
	"github.com/eclesh/welford"
	"github.com/prometheus/client_golang/prometheus"
)

// Jitter tracks the running mean and variance of inter-heartbeat arrival
// gaps with Welford's algorithm, avoiding a growing sample buffer (same
// approach as fbclock/daemon/math.go's mean/variance/stddev helpers).
type Jitter struct {
	s *welford.Stats
}

// NewJitter returns an empty estimator.
func NewJitter() *Jitter {
	return &Jitter{s: welford.New()}
}

// Observe feeds one heartbeat arrival gap, in seconds, into the estimator.
func (j *Jitter) Observe(gapSeconds float64) {
	j.s.Add(gapSeconds)
}

// collector exposes the estimator's mean and standard deviation as a pair
// of Prometheus gauges, recomputed on every scrape.
func (j *Jitter) collector() prometheus.Collector {
	meanDesc := prometheus.NewDesc("dlep_heartbeat_gap_seconds_mean", "Mean inter-heartbeat arrival gap", nil, nil)
	stddevDesc := prometheus.NewDesc("dlep_heartbeat_gap_seconds_stddev", "Standard deviation of inter-heartbeat arrival gap", nil, nil)
	return &jitterCollector{j: j, meanDesc: meanDesc, stddevDesc: stddevDesc}
}

type jitterCollector struct {
	j          *Jitter
	meanDesc   *prometheus.Desc
	stddevDesc *prometheus.Desc
}

func (c *jitterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.meanDesc
	ch <- c.stddevDesc
}

func (c *jitterCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.meanDesc, prometheus.GaugeValue, c.j.s.Mean())
	ch <- prometheus.MustNewConstMetric(c.stddevDesc, prometheus.GaugeValue, c.j.s.Stddev())
}
