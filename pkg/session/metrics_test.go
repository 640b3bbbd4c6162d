package session

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := &dto.Metric{}
	require.NoError(t, (<-ch).Write(m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := &dto.Metric{}
	require.NoError(t, (<-ch).Write(m))
	return m.GetGauge().GetValue()
}

func TestMetricsNilIsNoOp(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.publish("data")
		m.reconnect()
		m.decodeError("payload")
		m.rebirth()
		m.setConnectionState(StateOnline)
	})
}

func TestMetricsReportsConnectionStateGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.setConnectionState(StateConnecting)
	require.Equal(t, float64(StateConnecting), gaugeValue(t, m.connectionState))

	m.setConnectionState(StateOnline)
	require.Equal(t, float64(StateOnline), gaugeValue(t, m.connectionState))
}

func TestMetricsCountPublishesByVerb(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.publish("birth")
	m.publish("data")
	m.publish("data")

	require.Equal(t, float64(1), counterValue(t, m.publishesTotal.WithLabelValues("birth")))
	require.Equal(t, float64(2), counterValue(t, m.publishesTotal.WithLabelValues("data")))
}

func TestMetricsCountReconnectsDecodeErrorsRebirths(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.reconnect()
	m.reconnect()
	m.decodeError("command")
	m.rebirth()

	require.Equal(t, float64(2), counterValue(t, m.reconnectsTotal))
	require.Equal(t, float64(1), counterValue(t, m.decodeErrorsTotal.WithLabelValues("command")))
	require.Equal(t, float64(1), counterValue(t, m.rebirthsTotal))
}
