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
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/process"
)

// SysStats exposes host process metrics the way sptp/client/sysstats.go's
// CollectRuntimeStats does, bound to Prometheus gauges instead of a
// string-keyed map since DLEP has no equivalent ODS-style stats pipeline.
type SysStats struct {
	proc       *process.Process
	procStart  time.Time
	cpuPercent prometheus.Gauge
	rss        prometheus.Gauge
	goroutines prometheus.Gauge
	uptime     prometheus.Gauge
}

// NewSysStats binds to the current process. Errors locating it (should
// not happen for os.Getpid() on a running process) leave proc nil and
// Collect becomes a no-op.
func NewSysStats() *SysStats {
	s := &SysStats{
		procStart: time.Now(),
		cpuPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dlep_process_cpu_percent",
			Help: "Router process CPU usage percent",
		}),
		rss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dlep_process_rss_bytes",
			Help: "Router process resident set size",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dlep_process_goroutines",
			Help: "Running goroutine count",
		}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dlep_process_uptime_seconds",
			Help: "Seconds since the router process started",
		}),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = proc
	}
	return s
}

func (s *SysStats) collectors() []prometheus.Collector {
	return []prometheus.Collector{s.cpuPercent, s.rss, s.goroutines, s.uptime}
}

// Collect refreshes every gauge. Individual collection failures are
// ignored, matching sysstats.go's best-effort per-field style.
func (s *SysStats) Collect() error {
	s.goroutines.Set(float64(runtime.NumGoroutine()))
	s.uptime.Set(time.Since(s.procStart).Seconds())
	if s.proc == nil {
		return nil
	}
	if pct, err := s.proc.Percent(0); err == nil {
		s.cpuPercent.Set(pct)
	}
	if mem, err := s.proc.MemoryInfo(); err == nil {
		s.rss.Set(float64(mem.RSS))
	}
	return nil
}
