package session

import (
	"context"
	"testing"
	"time"

	"github.com/sparkplug-edge/edge-client/pkg/metric"
	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceBirthDefersToParentWhenParentNeedsBirth(t *testing.T) {
	n, ft := newTestNode(t, NewFakeClock(0))
	dev, err := n.AttachDevice("Pump1")
	require.NoError(t, err)
	_, err = dev.AttachMetric("Speed", metric.Double, 10.0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, n.Online(ctx))
	defer n.Offline()

	waitUntil(t, time.Second, func() bool { return n.IsConnected() })
	waitUntil(t, time.Second, func() bool { return len(ft.Published) > 0 })

	n.mu.Lock()
	firstTopic := ft.Published[0].Topic
	n.mu.Unlock()
	assert.Contains(t, firstTopic, "NBIRTH")

	// Once the node has birthed, the device's own pending birth follows on
	// a later driver tick.
	waitUntil(t, time.Second, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return !dev.base.needsBirth
	})

	n.mu.Lock()
	found := false
	for _, p := range ft.Published {
		if p.Topic == deviceTopic(n.groupID, n.edgeNodeID, dev.name, verbBirth) {
			found = true
		}
	}
	n.mu.Unlock()
	assert.True(t, found)
}

func TestDeviceDeathPayloadHasNoMetrics(t *testing.T) {
	n, ft := newTestNode(t, NewFakeClock(0))
	dev, err := n.AttachDevice("Pump1")
	require.NoError(t, err)
	_, err = dev.AttachMetric("Speed", metric.Double, 10.0)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, n.Online(ctx))
	defer n.Offline()

	waitUntil(t, time.Second, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return !dev.base.needsBirth
	})

	n.mu.Lock()
	err = dev.sendDeathLocked(ctx)
	n.mu.Unlock()
	require.NoError(t, err)

	n.mu.Lock()
	var last *sparkplugpb.Payload
	for i := len(ft.Published) - 1; i >= 0; i-- {
		if ft.Published[i].Topic == deviceTopic(n.groupID, n.edgeNodeID, dev.name, verbDeath) {
			last = &sparkplugpb.Payload{}
			require.NoError(t, last.Unmarshal(ft.Published[i].Payload))
			break
		}
	}
	n.mu.Unlock()

	require.NotNil(t, last)
	assert.Empty(t, last.Metrics)
}
