package transport

import (
	"context"
	"strings"
	"sync"
)

// PublishedMessage records one call to FakeTransport.Publish.
type PublishedMessage struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// FakeTransport is an in-memory Transport for exercising pkg/session's state
// machine without a broker. It records every publish and lets a test
// trigger connect/disconnect/message delivery deterministically.
type FakeTransport struct {
	mu sync.Mutex

	connected bool
	will      *will

	onConnect        func()
	onConnectionLost func(error)
	subscriptions    []fakeSubscription

	Published []PublishedMessage

	// ConnectErr, if set, is returned by the next Connect call.
	ConnectErr error

	// SubscribeErr, if set, is returned by every Subscribe call whose topic
	// is in the set, instead of registering the subscription.
	SubscribeErr map[string]error
}

// NewFakeTransport returns an unconnected FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

type fakeSubscription struct {
	pattern string
	handler MessageHandler
}

// matchTopic implements MQTT's +/# wildcard matching against a topic
// filter, so a test can subscribe with the same wildcard filters the
// session driver really uses and then simulate a message on a concrete
// topic.
func matchTopic(pattern, topic string) bool {
	pParts := strings.Split(pattern, "/")
	tParts := strings.Split(topic, "/")
	for i, p := range pParts {
		if p == "#" {
			return true
		}
		if i >= len(tParts) {
			return false
		}
		if p != "+" && p != tParts[i] {
			return false
		}
	}
	return len(pParts) == len(tParts)
}

func (f *FakeTransport) SetWill(topic string, payload []byte, qos byte, retained bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.will = &will{topic: topic, payload: payload, qos: qos, retained: retained}
}

func (f *FakeTransport) OnConnect(fn func())             { f.onConnect = fn }
func (f *FakeTransport) OnConnectionLost(fn func(error)) { f.onConnectionLost = fn }

func (f *FakeTransport) Connect(ctx context.Context) error {
	f.mu.Lock()
	if f.ConnectErr != nil {
		err := f.ConnectErr
		f.ConnectErr = nil
		f.mu.Unlock()
		return err
	}
	f.connected = true
	cb := f.onConnect
	f.mu.Unlock()

	// Invoked without holding f.mu, matching paho's real behavior: the
	// OnConnect handler runs free to call back into the transport (e.g.
	// Subscribe) without risking a self-deadlock.
	if cb != nil {
		cb()
	}
	return nil
}

func (f *FakeTransport) Disconnect(quiesceMs uint) {
	f.mu.Lock()
	f.connected = false
	f.mu.Unlock()
}

func (f *FakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *FakeTransport) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published = append(f.Published, PublishedMessage{Topic: topic, Payload: append([]byte(nil), payload...), QoS: qos, Retained: retained})
	return nil
}

func (f *FakeTransport) Subscribe(ctx context.Context, topic string, qos byte, fn MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.SubscribeErr[topic]; ok {
		return err
	}
	f.subscriptions = append(f.subscriptions, fakeSubscription{pattern: topic, handler: fn})
	return nil
}

func (f *FakeTransport) Unsubscribe(ctx context.Context, topics ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	remove := make(map[string]bool, len(topics))
	for _, t := range topics {
		remove[t] = true
	}
	kept := f.subscriptions[:0]
	for _, s := range f.subscriptions {
		if !remove[s.pattern] {
			kept = append(kept, s)
		}
	}
	f.subscriptions = kept
	return nil
}

// SimulateConnectionLost invokes the registered OnConnectionLost callback
// and the Last-Will publish, the way a real broker would on an ungraceful
// disconnect, without actually touching the network.
func (f *FakeTransport) SimulateConnectionLost(err error) {
	f.mu.Lock()
	f.connected = false
	w := f.will
	cb := f.onConnectionLost
	f.mu.Unlock()
	if w != nil {
		f.mu.Lock()
		f.Published = append(f.Published, PublishedMessage{Topic: w.topic, Payload: append([]byte(nil), w.payload...), QoS: w.qos, Retained: w.retained})
		f.mu.Unlock()
	}
	if cb != nil {
		cb(err)
	}
}

// SimulateMessage delivers payload to whatever handler is subscribed on
// topic, if any.
func (f *FakeTransport) SimulateMessage(topic string, payload []byte) {
	f.mu.Lock()
	var handlers []MessageHandler
	for _, s := range f.subscriptions {
		if matchTopic(s.pattern, topic) {
			handlers = append(handlers, s.handler)
		}
	}
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(topic, payload)
	}
}

// Will returns the currently configured Last-Will, or nil.
func (f *FakeTransport) Will() (topic string, payload []byte, qos byte, retained bool, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.will == nil {
		return "", nil, 0, false, false
	}
	return f.will.topic, f.will.payload, f.will.qos, f.will.retained, true
}
