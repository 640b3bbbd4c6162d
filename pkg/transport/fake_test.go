package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTopicWildcards(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"spBv1.0/g1/NCMD/e1/#", "spBv1.0/g1/NCMD/e1", true},
		{"spBv1.0/g1/NCMD/e1/#", "spBv1.0/g1/NCMD/e1/extra", true},
		{"spBv1.0/g1/NCMD/e1", "spBv1.0/g1/NCMD/e1", true},
		{"spBv1.0/+/NCMD/e1", "spBv1.0/g2/NCMD/e1", true},
		{"spBv1.0/g1/NCMD/e1", "spBv1.0/g1/NDATA/e1", false},
		{"spBv1.0/g1/DCMD/e1/#", "spBv1.0/g1/NCMD/e1", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchTopic(c.pattern, c.topic), "%s vs %s", c.pattern, c.topic)
	}
}

func TestFakeTransportPublishRecordsMessages(t *testing.T) {
	ft := NewFakeTransport()
	require.NoError(t, ft.Connect(context.Background()))
	require.NoError(t, ft.Publish(context.Background(), "spBv1.0/g1/NDATA/e1", 0, false, []byte("payload")))
	require.Len(t, ft.Published, 1)
	assert.Equal(t, "spBv1.0/g1/NDATA/e1", ft.Published[0].Topic)
}

func TestFakeTransportSubscribeMatchesWildcard(t *testing.T) {
	ft := NewFakeTransport()
	var gotTopic string
	var gotPayload []byte
	require.NoError(t, ft.Subscribe(context.Background(), "spBv1.0/g1/NCMD/e1/#", 0, func(topic string, payload []byte) {
		gotTopic = topic
		gotPayload = payload
	}))

	ft.SimulateMessage("spBv1.0/g1/NCMD/e1", []byte("hi"))
	assert.Equal(t, "spBv1.0/g1/NCMD/e1", gotTopic)
	assert.Equal(t, []byte("hi"), gotPayload)
}

func TestFakeTransportUnsubscribeStopsDelivery(t *testing.T) {
	ft := NewFakeTransport()
	called := false
	topic := "spBv1.0/g1/NCMD/e1/#"
	require.NoError(t, ft.Subscribe(context.Background(), topic, 0, func(string, []byte) { called = true }))
	require.NoError(t, ft.Unsubscribe(context.Background(), topic))

	ft.SimulateMessage("spBv1.0/g1/NCMD/e1", []byte("hi"))
	assert.False(t, called)
}

func TestFakeTransportConnectErrFiresOnce(t *testing.T) {
	ft := NewFakeTransport()
	ft.ConnectErr = assert.AnError

	err := ft.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, ft.IsConnected())

	err = ft.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, ft.IsConnected())
}

func TestFakeTransportSimulateConnectionLostPublishesWill(t *testing.T) {
	ft := NewFakeTransport()
	ft.SetWill("spBv1.0/g1/NDEATH/e1", []byte("death"), 0, false)
	require.NoError(t, ft.Connect(context.Background()))

	var lostErr error
	ft.OnConnectionLost(func(err error) { lostErr = err })
	ft.SimulateConnectionLost(assert.AnError)

	assert.False(t, ft.IsConnected())
	assert.Equal(t, assert.AnError, lostErr)
	require.Len(t, ft.Published, 1)
	assert.Equal(t, "spBv1.0/g1/NDEATH/e1", ft.Published[0].Topic)
}
