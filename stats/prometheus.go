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
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Exporter serves the /metrics endpoint backed by a Stats sink. It is the
// router's equivalent of sptp/stats/prom_exporter.go, wired to a fixed set
// of gauges and counters registered at construction time rather than
// discovered over HTTP, since the router's own metric set is known up
// front.
type Exporter struct {
	registry   *prometheus.Registry
	stats      *Stats
	listenAddr string
	srv        *http.Server
}

// NewExporter registers every DLEP metric against a fresh registry and
// prepares an HTTP server for listenAddr (not yet listening).
func NewExporter(listenAddr string) *Exporter {
	registry := prometheus.NewRegistry()
	s := New(registry)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	return &Exporter{
		registry:   registry,
		stats:      s,
		listenAddr: listenAddr,
		srv:        &http.Server{Addr: listenAddr, Handler: mux},
	}
}

// Stats returns the metric sink to bind to a running router.Engine.
func (e *Exporter) Stats() *Stats {
	return e.stats
}

// Run serves /metrics until ctx is cancelled, then shuts the server down.
func (e *Exporter) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("metrics exporter listening on %s", e.listenAddr)
		if err := e.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
