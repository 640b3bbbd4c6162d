package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// NodeConfigSchema documents the accepted JSON shape for a NodeConfig,
// following the inline-const-schema convention of the teacher's
// pkg/nats/config.go.
const NodeConfigSchema = `{
    "type": "object",
    "description": "Configuration for a Sparkplug B edge node session.",
    "properties": {
        "group_id": {
            "description": "Sparkplug group identifier.",
            "type": "string"
        },
        "edge_node_id": {
            "description": "Sparkplug edge node identifier, unique within the group.",
            "type": "string"
        },
        "endpoints": {
            "description": "Broker endpoints tried in order, with failover between them.",
            "type": "array",
            "minItems": 1,
            "items": {
                "type": "object",
                "properties": {
                    "server": {"type": "string"},
                    "port": {"type": "integer"},
                    "username": {"type": "string"},
                    "password": {"type": "string"},
                    "client_id": {"type": "string"},
                    "keepalive": {"type": "integer"},
                    "tls_enabled": {"type": "boolean"},
                    "ca_certs": {"type": "string"},
                    "certfile": {"type": "string"},
                    "keyfile": {"type": "string"}
                },
                "required": ["server"]
            }
        },
        "provide_bdseq": {
            "description": "Whether to create and maintain the standard bdSeq metric.",
            "type": "boolean"
        },
        "provide_controls": {
            "description": "Whether to create the Node Control/Rebirth and Node Control/Next Server metrics.",
            "type": "boolean"
        },
        "u32_in_long": {
            "description": "Encode UInt32 metrics into long_value instead of int_value, for hosts that expect that.",
            "type": "boolean"
        }
    },
    "required": ["group_id", "edge_node_id", "endpoints"]
}`

const schemaResourceName = "sparkplug-node-config.json"

// ValidateJSON validates raw against NodeConfigSchema, returning a
// ConfigError describing the first violation.
func ValidateJSON(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceName, bytes.NewReader([]byte(NodeConfigSchema))); err != nil {
		return fmt.Errorf("config: invalid embedded schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResourceName)
	if err != nil {
		return fmt.Errorf("config: invalid embedded schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := schema.Validate(doc); err != nil {
		return &ConfigError{Reason: err.Error()}
	}
	return nil
}

// FromJSON validates and decodes raw into a NodeConfig with defaults
// applied.
func FromJSON(raw []byte) (*NodeConfig, error) {
	if err := ValidateJSON(raw); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var cfg NodeConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("decoding config: %v", err)}
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
