package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	applog "github.com/sparkplug-edge/edge-client/pkg/log"
)

// MQTTOptions configures an MQTTTransport.
type MQTTOptions struct {
	// Servers are broker URLs (tcp://, ssl://, ws://, wss://), tried in
	// order on connect and on every reconnect attempt (§6: endpoint list).
	Servers []string

	ClientID string
	Username string
	Password string

	// TLSConfig is used when any Servers URL requests a secure scheme.
	// Leaving it nil while using ssl:// lets paho fall back to the
	// platform default root pool.
	TLSConfig *tls.Config

	// AutoReconnect lets paho manage its own reconnect loop in addition to
	// the session driver's higher-level rebirth logic.
	AutoReconnect bool

	// KeepAliveSeconds is the MQTT keep-alive interval.
	KeepAliveSeconds uint16
}

type will struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// MQTTTransport is a Transport backed by eclipse/paho.mqtt.golang.
//
// The connect/publish/subscribe flow and its context-aware token waiting
// follow the mqttop bridge's Connect/Disconnect/waitToken pattern; the
// reconnect/error logging hooks follow the teacher's pkg/nats client
// callback wiring.
//
// paho freezes Last-Will configuration into mqtt.ClientOptions at client
// construction time, so the underlying mqtt.Client is built lazily on the
// first Connect call, after SetWill has had a chance to run.
type MQTTTransport struct {
	opts MQTTOptions
	will *will

	client mqtt.Client

	onConnect        func()
	onConnectionLost func(err error)
}

// NewMQTTTransport builds an MQTTTransport from opts. Call SetWill (if
// needed) before Connect; the underlying client is constructed on first
// Connect.
func NewMQTTTransport(opts MQTTOptions) *MQTTTransport {
	return &MQTTTransport{opts: opts}
}

func (t *MQTTTransport) SetWill(topic string, payload []byte, qos byte, retained bool) {
	t.will = &will{topic: topic, payload: payload, qos: qos, retained: retained}
}

func (t *MQTTTransport) OnConnect(fn func())             { t.onConnect = fn }
func (t *MQTTTransport) OnConnectionLost(fn func(error)) { t.onConnectionLost = fn }

func (t *MQTTTransport) ensureClient() {
	if t.client != nil {
		return
	}
	o := mqtt.NewClientOptions()
	for _, s := range t.opts.Servers {
		o.AddBroker(s)
	}
	if t.opts.ClientID != "" {
		o.SetClientID(t.opts.ClientID)
	}
	if t.opts.Username != "" {
		o.SetUsername(t.opts.Username)
	}
	if t.opts.Password != "" {
		o.SetPassword(t.opts.Password)
	}
	if t.opts.TLSConfig != nil {
		o.SetTLSConfig(t.opts.TLSConfig)
	}
	if t.opts.KeepAliveSeconds > 0 {
		o.SetKeepAlive(time.Duration(t.opts.KeepAliveSeconds) * time.Second)
	}
	o.SetAutoReconnect(t.opts.AutoReconnect)
	o.SetCleanSession(true)
	o.SetOrderMatters(true)
	if t.will != nil {
		o.SetWill(t.will.topic, string(t.will.payload), t.will.qos, t.will.retained)
	}

	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		applog.Warnf("transport: connection lost: %v", err)
		if t.onConnectionLost != nil {
			t.onConnectionLost(err)
		}
	})
	o.SetOnConnectHandler(func(_ mqtt.Client) {
		applog.Infof("transport: connected")
		if t.onConnect != nil {
			t.onConnect()
		}
	})

	t.client = mqtt.NewClient(o)
}

func (t *MQTTTransport) Connect(ctx context.Context) error {
	t.ensureClient()
	tok := t.client.Connect()
	return waitToken(ctx, tok)
}

func (t *MQTTTransport) Disconnect(quiesceMs uint) {
	if t.client == nil {
		return
	}
	t.client.Disconnect(quiesceMs)
}

func (t *MQTTTransport) IsConnected() bool {
	return t.client != nil && t.client.IsConnected()
}

func (t *MQTTTransport) Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error {
	tok := t.client.Publish(topic, qos, retained, payload)
	return waitToken(ctx, tok)
}

func (t *MQTTTransport) Subscribe(ctx context.Context, topic string, qos byte, fn MessageHandler) error {
	tok := t.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		fn(msg.Topic(), msg.Payload())
	})
	return waitToken(ctx, tok)
}

func (t *MQTTTransport) Unsubscribe(ctx context.Context, topics ...string) error {
	tok := t.client.Unsubscribe(topics...)
	return waitToken(ctx, tok)
}

func waitToken(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tok.Done():
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	return nil
}
