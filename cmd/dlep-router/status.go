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
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "localhost:9107", "address of a running dlep-router's /metrics endpoint")
}

// statusCmd fetches the running instance's Prometheus exposition and
// prints it, the way sptp's counters fetch queries a running daemon over
// HTTP instead of reaching into its process (ptp/sptp/stats.FetchCounters).
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "fetch metrics from a running dlep-router instance",
	Run: func(cmd *cobra.Command, args []string) {
		client := http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(fmt.Sprintf("http://%s/metrics", metricsAddr))
		if err != nil {
			log.Fatalf("fetching metrics from %s: %v", metricsAddr, err)
		}
		defer resp.Body.Close()
		if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
			log.Fatalf("reading metrics response: %v", err)
		}
	},
}
