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
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/dlep-router/dlep/router"
)

// renderDestinations prints the session state and the router's current
// destination table; the `run` subcommand calls it from its periodic
// status print while a session is active (mirrors cmd/ziffy/node's
// tablewriter-driven reports).
func renderDestinations(w io.Writer, state string, dests []*router.Destination) {
	fmt.Fprintln(w, "session:", sessionStatusLine(state))
	sort.Slice(dests, func(i, j int) bool { return dests[i].MAC.String() < dests[j].MAC.String() })

	table := tablewriter.NewWriter(w)
	table.Header([]string{"MAC", "IPv4", "MDRR", "MDRT", "CDRR", "CDRT", "Latency(us)", "RLQR", "RLQT"})
	for _, d := range dests {
		ipv4 := "-"
		if len(d.IPv4Addresses) > 0 {
			ipv4 = d.IPv4Addresses[0].String()
		}
		table.Append([]string{
			d.MAC.String(),
			ipv4,
			fmt.Sprintf("%d", d.MDRR),
			fmt.Sprintf("%d", d.MDRT),
			fmt.Sprintf("%d", d.CDRR),
			fmt.Sprintf("%d", d.CDRT),
			fmt.Sprintf("%d", d.Latency),
			linkQuality(d.RLQR),
			linkQuality(d.RLQT),
		})
	}
	_ = table.Render()
}

// linkQuality colorizes a DLEP Resource/Link Quality percentage: green when
// healthy, yellow when degraded, red when the link is close to unusable.
func linkQuality(pct uint8) string {
	s := fmt.Sprintf("%d%%", pct)
	switch {
	case pct >= 80:
		return color.GreenString(s)
	case pct >= 40:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func sessionStatusLine(state string) string {
	switch state {
	case "InSession":
		return color.GreenString(state)
	case "Discovering", "Initialising":
		return color.YellowString(state)
	default:
		return color.RedString(state)
	}
}
