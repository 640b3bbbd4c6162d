// Package config holds the per-endpoint and per-node configuration types
// for a Sparkplug session, their defaulting rules, and loaders backed by
// JSON-Schema (for raw JSON config blocks, matching the teacher's
// pkg/nats/config.go convention) and YAML (for standalone config files).
package config

import (
	"fmt"
	"os"

	applog "github.com/sparkplug-edge/edge-client/pkg/log"
)

// ConfigError reports an invalid node/endpoint configuration (§7:
// configuration error). Construction from a bad config always fails
// immediately; there is no partial session.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Reason)
}

// EndpointConfig is one broker endpoint a Node may connect to (§3, §6).
type EndpointConfig struct {
	Server           string `json:"server" yaml:"server" validate:"required"`
	Port             int    `json:"port,omitempty" yaml:"port,omitempty"`
	Username         string `json:"username,omitempty" yaml:"username,omitempty"`
	Password         string `json:"password,omitempty" yaml:"password,omitempty"`
	ClientID         string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	KeepaliveSeconds uint16 `json:"keepalive,omitempty" yaml:"keepalive,omitempty"`
	TLSEnabled       bool   `json:"tls_enabled,omitempty" yaml:"tls_enabled,omitempty"`
	CACerts          string `json:"ca_certs,omitempty" yaml:"ca_certs,omitempty"`
	CertFile         string `json:"certfile,omitempty" yaml:"certfile,omitempty"`
	KeyFile          string `json:"keyfile,omitempty" yaml:"keyfile,omitempty"`
}

const (
	defaultPort             = 1883
	defaultTLSPort          = 8883
	defaultKeepaliveSeconds = 60
)

// applyDefaults fills in EndpointConfig's documented defaults and warns
// about suspicious well-known-port/TLS combinations (§6).
func (e *EndpointConfig) applyDefaults(groupID, edgeNodeID string) {
	if e.Port == 0 {
		e.Port = defaultPort
	}
	if e.KeepaliveSeconds == 0 {
		e.KeepaliveSeconds = defaultKeepaliveSeconds
	}
	if e.ClientID == "" {
		e.ClientID = fmt.Sprintf("%s_%s_%d", groupID, edgeNodeID, os.Getpid())
	}
	if (e.Port == defaultPort && e.TLSEnabled) || (e.Port == defaultTLSPort && !e.TLSEnabled) {
		applog.Warnf("config: endpoint %s:%d has an unusual TLS setting for its port (tls_enabled=%v)", e.Server, e.Port, e.TLSEnabled)
	}
}

// NodeConfig configures a Node's identity, endpoint ring, and codec policy
// (§6).
type NodeConfig struct {
	GroupID    string           `json:"group_id" yaml:"group_id" validate:"required"`
	EdgeNodeID string           `json:"edge_node_id" yaml:"edge_node_id" validate:"required"`
	Endpoints  []EndpointConfig `json:"endpoints" yaml:"endpoints" validate:"required,min=1,dive"`

	// ProvideBdSeq and ProvideControls default to true; they are pointers
	// so an absent key in the source document is distinguishable from an
	// explicit false.
	ProvideBdSeq    *bool `json:"provide_bdseq,omitempty" yaml:"provide_bdseq,omitempty"`
	ProvideControls *bool `json:"provide_controls,omitempty" yaml:"provide_controls,omitempty"`

	U32InLong bool `json:"u32_in_long,omitempty" yaml:"u32_in_long,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// ApplyDefaults validates required fields and fills in documented defaults
// in place. It is always called before a NodeConfig is used to construct a
// session.
func (c *NodeConfig) ApplyDefaults() error {
	if c.GroupID == "" {
		return &ConfigError{Reason: "group_id is required"}
	}
	if c.EdgeNodeID == "" {
		return &ConfigError{Reason: "edge_node_id is required"}
	}
	if len(c.Endpoints) == 0 {
		return &ConfigError{Reason: "at least one endpoint is required"}
	}
	for i := range c.Endpoints {
		if c.Endpoints[i].Server == "" {
			return &ConfigError{Reason: "endpoint server is required"}
		}
		c.Endpoints[i].applyDefaults(c.GroupID, c.EdgeNodeID)
	}
	if c.ProvideBdSeq == nil {
		c.ProvideBdSeq = boolPtr(true)
	}
	if c.ProvideControls == nil {
		c.ProvideControls = boolPtr(true)
	}
	return nil
}
