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
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dlep-router/dlep/router"
	"github.com/dlep-router/dlep/stats"
)

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9107", "address to serve /metrics on")
	runCmd.Flags().Duration("status-interval", time.Minute, "how often to print the destination table (0 disables)")
	runCmd.Flags().String("interface", "", "local network interface for discovery and the session (overrides config)")
	runCmd.Flags().Int("heartbeat", 0, "router heartbeat interval in seconds (overrides config)")
	runCmd.Flags().Bool("ipv6", false, "use IPv6 discovery instead of IPv4 (overrides config)")
}

var runCmd = &cobra.Command{
	Use:   "run [modem-addr] [port]",
	Short: "discover a modem and run the DLEP session loop until terminated",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		cfg := router.DefaultConfig()
		if configPath != "" {
			loaded, err := router.ReadConfig(configPath)
			if err != nil {
				log.Fatalf("loading config: %v", err)
			}
			cfg = loaded
		}
		applyCLIOverrides(cmd, cfg, args)
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid config: %v", err)
		}

		statusInterval, _ := cmd.Flags().GetDuration("status-interval")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		exporter := stats.NewExporter(metricsAddr)

		engine := router.NewEngine(*cfg, router.NewLogrusLogger(), nil, nil)
		engine.SetMetrics(exporter.Stats())
		engine.SetReadyHook(func() {
			sdNotify(daemon.SdNotifyReady)
		})
		engine.SetHeartbeatHook(func() {
			sdNotify(daemon.SdNotifyWatchdog)
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return exporter.Run(gctx)
		})
		if statusInterval > 0 {
			g.Go(func() error {
				printStatusLoop(gctx, engine, exporter, statusInterval)
				return nil
			})
		}
		g.Go(func() error {
			runSessionLoop(ctx, engine)
			return nil
		})

		if err := g.Wait(); err != nil {
			log.Errorf("exporter stopped: %v", err)
		}
	},
}

// applyCLIOverrides folds --interface, --heartbeat, --ipv6 and a positional
// modem address into cfg, CLI flags always winning over a loaded config
// file (mirrors cmd/sptp's prepareConfig).
func applyCLIOverrides(cmd *cobra.Command, cfg *router.Config, args []string) {
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if iface, _ := cmd.Flags().GetString("interface"); iface != "" {
		warn("interface")
		cfg.Interface = iface
	}
	if heartbeat, _ := cmd.Flags().GetInt("heartbeat"); heartbeat != 0 {
		warn("heartbeat")
		cfg.RouterHeartbeat = time.Duration(heartbeat) * time.Second
	}
	if ipv6, _ := cmd.Flags().GetBool("ipv6"); ipv6 {
		warn("ipv6")
		cfg.UseIPv6 = true
	}
	if len(args) > 0 {
		warn("target")
		target := &router.PeerAddress{IP: args[0]}
		if len(args) > 1 {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				log.Fatalf("invalid modem port %q: %v", args[1], err)
			}
			target.Port = port
		}
		cfg.Target = target
	}
}

// runSessionLoop re-enters discovery after every retryable session end,
// the outer loop spec.md section 1 leaves outside the core's scope.
func runSessionLoop(ctx context.Context, engine *router.Engine) {
	for {
		result := engine.Run(ctx)
		switch result.Outcome {
		case router.OutcomeGraceful:
			log.Info("session ended gracefully")
			return
		case router.OutcomeFatal:
			log.Fatalf("fatal session error: %v", result.Err)
		case router.OutcomeRetryable:
			log.Warnf("session ended, retrying discovery: %v", result.Err)
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

// printStatusLoop periodically renders the destination table and refreshes
// the process resource gauges (ptp/sptp/client's CollectRuntimeStats
// cadence), so the sysstats gauges read live values even with no scrape
// of /metrics in between.
func printStatusLoop(ctx context.Context, engine *router.Engine, exporter *stats.Exporter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := exporter.Stats().CollectSysStats(); err != nil {
				log.Warnf("collecting process stats: %v", err)
			}
			renderDestinations(os.Stdout, engine.State(), engine.Destinations().Snapshot())
		}
	}
}

// sdNotify reports state to systemd when running under it; absence of the
// notification socket is expected and logged at debug, not an error
// (ptp/c4u's SdNotify follows the same shape).
func sdNotify(state string) {
	supported, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warnf("sd_notify failed: %v", err)
		return
	}
	if !supported {
		log.Debug("sd_notify not supported; NOTIFY_SOCKET unset")
	}
}
