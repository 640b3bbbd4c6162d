// Package transport abstracts the MQTT broker connection used by a session,
// so the state machine in pkg/session can be driven against a real broker
// (via MQTTTransport) or an in-memory fake in tests.
package transport

import "context"

// MessageHandler receives an inbound message on a subscribed topic.
type MessageHandler func(topic string, payload []byte)

// Transport is the narrow surface the session driver needs from an MQTT
// client: connect/disconnect with a Last-Will, publish, subscribe, and
// lifecycle callbacks. One Transport instance backs one session's
// connection (§5: a single background worker owns it).
type Transport interface {
	// SetWill configures the Last-Will message sent by the broker if the
	// connection drops uncleanly. Must be called before Connect.
	SetWill(topic string, payload []byte, qos byte, retained bool)

	// OnConnect registers a callback invoked every time the transport
	// establishes (or re-establishes) a connection.
	OnConnect(fn func())

	// OnConnectionLost registers a callback invoked when a previously
	// established connection drops. It is not invoked when the caller
	// requests Disconnect.
	OnConnectionLost(fn func(err error))

	// Connect opens the connection, blocking until it succeeds, fails, or
	// ctx is done.
	Connect(ctx context.Context) error

	// Disconnect closes the connection, waiting up to quiesceMs for
	// in-flight work to finish.
	Disconnect(quiesceMs uint)

	// IsConnected reports the transport's current connection state.
	IsConnected() bool

	// Publish sends payload to topic at the given QoS, blocking until the
	// broker has acknowledged it or ctx is done.
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error

	// Subscribe registers fn to receive messages published to topic.
	Subscribe(ctx context.Context, topic string, qos byte, fn MessageHandler) error

	// Unsubscribe stops delivery on the given topics.
	Unsubscribe(ctx context.Context, topics ...string) error
}
