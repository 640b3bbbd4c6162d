package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaultsFillsEndpointDefaults(t *testing.T) {
	cfg := NodeConfig{
		GroupID:    "g1",
		EdgeNodeID: "e1",
		Endpoints:  []EndpointConfig{{Server: "broker.example.com"}},
	}
	require.NoError(t, cfg.ApplyDefaults())

	assert.Equal(t, defaultPort, cfg.Endpoints[0].Port)
	assert.Equal(t, uint16(defaultKeepaliveSeconds), cfg.Endpoints[0].KeepaliveSeconds)
	assert.NotEmpty(t, cfg.Endpoints[0].ClientID)
	require.NotNil(t, cfg.ProvideBdSeq)
	assert.True(t, *cfg.ProvideBdSeq)
	require.NotNil(t, cfg.ProvideControls)
	assert.True(t, *cfg.ProvideControls)
}

func TestApplyDefaultsRejectsMissingFields(t *testing.T) {
	cfg := NodeConfig{EdgeNodeID: "e1", Endpoints: []EndpointConfig{{Server: "x"}}}
	err := cfg.ApplyDefaults()
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestApplyDefaultsRejectsEmptyEndpoints(t *testing.T) {
	cfg := NodeConfig{GroupID: "g1", EdgeNodeID: "e1"}
	err := cfg.ApplyDefaults()
	require.Error(t, err)
}

func TestApplyDefaultsPreservesExplicitFalse(t *testing.T) {
	f := false
	cfg := NodeConfig{
		GroupID:         "g1",
		EdgeNodeID:      "e1",
		Endpoints:       []EndpointConfig{{Server: "x"}},
		ProvideBdSeq:    &f,
		ProvideControls: &f,
	}
	require.NoError(t, cfg.ApplyDefaults())
	assert.False(t, *cfg.ProvideBdSeq)
	assert.False(t, *cfg.ProvideControls)
}
