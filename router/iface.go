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

import (
	"fmt"
	"strconv"

	"github.com/jsimonetti/rtnetlink/rtnl"
)

// resolveScopeID returns the zone id of iface as a string suitable for
// appending to a link-local IPv6 address ("fe80::1%<zone>"). The modem's
// Connection Point in a Peer Offer frequently carries a link-local address
// with no notion of which local interface it is reachable over; spec.md
// section 4.4 requires propagating the configured interface's scope id to
// the connect address, the Go equivalent of the C source's
// IPV6_MULTICAST_IF / sin6_scope_id handling (see SPEC_FULL.md section 12).
func resolveScopeID(iface string) (string, error) {
	conn, err := rtnl.Dial(nil)
	if err != nil {
		return "", fmt.Errorf("opening netlink connection: %w", err)
	}
	defer conn.Close()

	link, err := conn.LinkByName(iface)
	if err != nil {
		return "", fmt.Errorf("resolving interface %s: %w", iface, err)
	}
	return strconv.Itoa(link.Index), nil
}
