package session

import (
	"context"
	"testing"
	"time"

	"github.com/sparkplug-edge/edge-client/pkg/config"
	"github.com/sparkplug-edge/edge-client/pkg/metric"
	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
	"github.com/sparkplug-edge/edge-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDataChangedOnlySkipsUnchangedMetrics(t *testing.T) {
	n, ft := newTestNode(t, NewFakeClock(0))
	temp, err := n.AttachMetric("Temp", metric.Double, 20.0)
	require.NoError(t, err)
	pressure, err := n.AttachMetric("Pressure", metric.Double, 1.0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, n.Online(ctx))
	defer n.Offline()

	waitUntil(t, time.Second, func() bool { return n.IsConnected() })
	waitUntil(t, time.Second, func() bool { return len(ft.Published) > 0 })
	waitUntil(t, time.Second, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return !n.base.needsBirth
	})

	n.mu.Lock()
	preCount := len(ft.Published)
	n.mu.Unlock()

	require.NoError(t, temp.ChangeValue(25.0, 1))
	require.NoError(t, n.SendData(ctx, nil, true))

	n.mu.Lock()
	defer n.mu.Unlock()
	published := ft.Published[preCount:]
	require.Len(t, published, 1)

	pb := &sparkplugpb.Payload{}
	require.NoError(t, pb.Unmarshal(published[0].Payload))
	require.Len(t, pb.Metrics, 1)
	require.NotNil(t, pb.Metrics[0].DoubleValue)
	assert.Equal(t, 25.0, *pb.Metrics[0].DoubleValue)
	_ = pressure
}

func TestSendDataSkipsWhenDisconnected(t *testing.T) {
	n, _ := newTestNode(t, NewFakeClock(0))
	_, err := n.AttachMetric("Temp", metric.Double, 20.0)
	require.NoError(t, err)

	err = n.SendData(context.Background(), nil, false)
	require.NoError(t, err)
}

func TestPublishRateLimitDropsExcessData(t *testing.T) {
	var ft *transport.FakeTransport
	cfg := testConfig()
	n, err := NewNode(cfg, func(config.EndpointConfig) transport.Transport {
		ft = transport.NewFakeTransport()
		return ft
	}, NewFakeClock(0), WithPublishRateLimit(0, 1))
	require.NoError(t, err)

	temp, err := n.AttachMetric("Temp", metric.Double, 1.0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, n.Online(ctx))
	defer n.Offline()

	waitUntil(t, time.Second, func() bool { return n.IsConnected() })
	waitUntil(t, time.Second, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return !n.base.needsBirth
	})

	n.mu.Lock()
	preCount := len(ft.Published)
	n.mu.Unlock()

	// Burst of 1 with a zero refill rate: BIRTH bypasses the limiter, so the
	// single token is still there for the first DATA send, which succeeds;
	// the second is dropped.
	require.NoError(t, temp.ChangeValue(2.0, 1))
	require.NoError(t, n.SendData(ctx, nil, true))
	require.NoError(t, temp.ChangeValue(3.0, 2))
	require.NoError(t, n.SendData(ctx, nil, true))

	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Len(t, ft.Published[preCount:], 1)
}
