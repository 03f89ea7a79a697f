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
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/dlep-router/dlep/protocol"
)

// Config specifies the parameters a single run of the session engine needs.
// Everything the outer CLI front-end parses (spec.md section 1: out of
// core scope) is assembled into this struct before Run is called.
type Config struct {
	// Interface is the local network interface DLEP discovery and, for
	// link-local IPv6 peers, the session connection itself are scoped to.
	Interface string `yaml:"interface"`
	// UseIPv6 selects the IPv6 discovery multicast group and address
	// family instead of the IPv4 default.
	UseIPv6 bool `yaml:"use_ipv6"`
	// Target, if set, skips discovery and connects directly to this
	// modem address (operator-configured peer, spec.md section 4.4).
	Target *PeerAddress `yaml:"target,omitempty"`
	// RouterHeartbeat is the interval at which this router sends
	// Heartbeat messages once a session is established.
	RouterHeartbeat time.Duration `yaml:"router_heartbeat"`
	// PeerType is the free-text string advertised in Peer Discovery and
	// Session Initialization.
	PeerType string `yaml:"peer_type"`
	// DiscoveryRetry is how long the router waits between Peer Discovery
	// retransmissions while undiscovered.
	DiscoveryRetry time.Duration `yaml:"discovery_retry"`
}

// PeerAddress names a modem connection point: an IP address and, unless
// the well-known DLEP port applies, a TCP port.
type PeerAddress struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port,omitempty"`
}

// DefaultConfig returns a Config populated with the RFC 8175 well-known
// defaults (spec.md section 6).
func DefaultConfig() *Config {
	return &Config{
		Interface:       "eth0",
		RouterHeartbeat: protocol.DefaultHeartbeatMillis * time.Millisecond,
		PeerType:        "dlep-router",
		DiscoveryRetry:  protocol.DefaultDiscoveryRetrySeconds * time.Second,
	}
}

// ReadConfig loads a Config from a YAML file, starting from DefaultConfig
// so an operator only needs to set the fields they want to override
// (mirrors ptp4u/server's ReadDynamicConfig).
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports whether c is sane enough to start a session engine run.
func (c *Config) Validate() error {
	if c.Interface == "" {
		return fmt.Errorf("interface must be set")
	}
	if c.RouterHeartbeat <= 0 {
		return fmt.Errorf("routerheartbeat must be greater than zero")
	}
	if c.DiscoveryRetry <= 0 {
		return fmt.Errorf("discoveryretry must be greater than zero")
	}
	if c.PeerType == "" {
		return fmt.Errorf("peertype must not be empty")
	}
	if c.Target != nil && c.Target.IP == "" {
		return fmt.Errorf("target address must not be empty when set")
	}
	return nil
}
