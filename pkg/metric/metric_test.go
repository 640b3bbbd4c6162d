package metric

import (
	"context"
	"testing"

	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricRejectsBadInitialValue(t *testing.T) {
	_, err := NewMetric("bad", Int32, "not an int")
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestNewMetricOptionFailureIsAtomic(t *testing.T) {
	_, err := NewMetric("m", Int32, int64(1),
		WithTypedProperty("Quality", Int32, int64(192)),
		WithTypedProperty("Quality", Int32, int64(192)), // duplicate
	)
	require.Error(t, err)
}

func TestToWireBirthCarriesNameAndAlias(t *testing.T) {
	m, err := NewMetric("Temp", Double, 21.5, WithAlias(7))
	require.NoError(t, err)

	pb, err := m.ToWire(true, Policy{})
	require.NoError(t, err)
	require.NotNil(t, pb.Name)
	assert.Equal(t, "Temp", *pb.Name)
	require.NotNil(t, pb.Alias)
	assert.Equal(t, uint64(7), *pb.Alias)
}

func TestToWireDataCarriesAliasOnly(t *testing.T) {
	m, err := NewMetric("Temp", Double, 21.5, WithAlias(7))
	require.NoError(t, err)

	pb, err := m.ToWire(false, Policy{})
	require.NoError(t, err)
	assert.Nil(t, pb.Name)
	require.NotNil(t, pb.Alias)
	assert.Equal(t, uint64(7), *pb.Alias)
}

func TestToWireWithoutAliasAlwaysCarriesName(t *testing.T) {
	m, err := NewMetric("Temp", Double, 21.5)
	require.NoError(t, err)

	pb, err := m.ToWire(false, Policy{})
	require.NoError(t, err)
	require.NotNil(t, pb.Name)
	assert.Equal(t, "Temp", *pb.Name)
}

func TestChangedSinceLastSentAndMarkSent(t *testing.T) {
	m, err := NewMetric("Temp", Double, 21.5)
	require.NoError(t, err)

	// A freshly constructed metric has never been sent.
	assert.True(t, m.ChangedSinceLastSent())

	_, err = m.ToWire(true, Policy{})
	require.NoError(t, err)
	m.MarkSent(true)
	assert.False(t, m.ChangedSinceLastSent())

	require.NoError(t, m.ChangeValue(22.0, 1000))
	assert.True(t, m.ChangedSinceLastSent())

	_, err = m.ToWire(false, Policy{})
	require.NoError(t, err)
	m.MarkSent(false)
	assert.False(t, m.ChangedSinceLastSent())
}

func TestReportWithDataPropertyForcesResend(t *testing.T) {
	m, err := NewMetric("Temp", Double, 21.5, WithTypedProperty(PropertyQuality, Int32, int64(192)))
	require.NoError(t, err)
	p, ok := m.Property(PropertyQuality)
	require.True(t, ok)
	p.SetReportWithData(true)

	_, err = m.ToWire(true, Policy{})
	require.NoError(t, err)
	m.MarkSent(true)
	assert.False(t, m.ChangedSinceLastSent())

	require.NoError(t, p.ChangeValue(int64(0)))
	assert.True(t, m.ChangedSinceLastSent())

	pb, err := m.ToWire(false, Policy{})
	require.NoError(t, err)
	require.NotNil(t, pb.Properties)
	assert.Len(t, pb.Properties.Keys, 1)
}

func TestHandleCommandInvokesHandler(t *testing.T) {
	var got interface{}
	m, err := NewMetric("Setpoint", Double, 0.0, WithCommandHandler(func(_ context.Context, _ *Metric, value interface{}) error {
		got = value
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, m.HandleCommand(context.Background(), 42.0))
	assert.Equal(t, 42.0, got)
	assert.Equal(t, 42.0, m.LastReceived())
}

func TestEngUnitPropertiesUseLowercaseFirstWireKeys(t *testing.T) {
	m, err := NewMetric("Temp", Double, 21.5, WithEngUnit("degC"), WithEngLow(-40.0), WithEngHigh(125.0))
	require.NoError(t, err)

	pb, err := m.ToWire(true, Policy{})
	require.NoError(t, err)
	require.NotNil(t, pb.Properties)
	assert.Contains(t, pb.Properties.Keys, "engUnit")
	assert.Contains(t, pb.Properties.Keys, "engLow")
	assert.Contains(t, pb.Properties.Keys, "engHigh")
	assert.NotContains(t, pb.Properties.Keys, "EngUnit")
	assert.NotContains(t, pb.Properties.Keys, "EngLow")
	assert.NotContains(t, pb.Properties.Keys, "EngHigh")
}

func TestFromWireDecodesUnderDeclaredDatatype(t *testing.T) {
	m, err := NewMetric("Count", Int32, int64(0))
	require.NoError(t, err)

	raw := uint32(0xFFFFFFFF) // -1 two's complement
	ts := uint64(5000)
	pb := &sparkplugpb.Metric{IntValue: &raw, Timestamp: &ts}
	v, err := m.FromWire(pb)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)
	assert.Equal(t, uint64(5000), m.Timestamp())
}
