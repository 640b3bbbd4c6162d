package eventbus

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEncodeContainsAllFields(t *testing.T) {
	ev := Event{
		Kind:       EventBirthSent,
		GroupID:    "g1",
		EdgeNodeID: "e1",
		Detail:     "reason",
		UnixMillis: 1234,
	}
	line := string(ev.encode())
	assert.True(t, strings.Contains(line, "1234"))
	assert.True(t, strings.Contains(line, string(EventBirthSent)))
	assert.True(t, strings.Contains(line, "g1"))
	assert.True(t, strings.Contains(line, "e1"))
	assert.True(t, strings.Contains(line, "reason"))
}

func TestConnectRejectsMissingAddress(t *testing.T) {
	_, err := Connect(Config{Subject: "sparkplug.events"})
	require.Error(t, err)
}

func TestConnectRejectsMissingSubject(t *testing.T) {
	_, err := Connect(Config{Address: "nats://localhost:4222"})
	require.Error(t, err)
}

func TestPublisherPublishOnClosedIsNoop(t *testing.T) {
	p := &Publisher{closed: true}
	assert.NotPanics(t, func() {
		p.Publish(EventBirthSent, "g1", "e1", "", time.Unix(0, 0))
	})
}
