// Package eventbus optionally republishes session lifecycle events (BIRTH
// sent, DEATH observed, reconnect, rebirth requested) onto a local NATS
// subject, so a sidecar process can observe session state transitions
// without instrumenting the edge application itself. It is a fire-and-forget
// publisher, adapted from the teacher pack's pkg/nats Client with the
// subscribe/MessageHandler consumption side dropped.
package eventbus

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	applog "github.com/sparkplug-edge/edge-client/pkg/log"
)

// EventKind identifies the kind of session lifecycle transition being
// reported.
type EventKind string

const (
	EventBirthSent        EventKind = "birth_sent"
	EventDeathObserved    EventKind = "death_observed"
	EventReconnect        EventKind = "reconnect"
	EventRebirthRequested EventKind = "rebirth_requested"
)

// Event is the payload published for every lifecycle transition. Encoding is
// a minimal hand-rolled text line rather than a schema, since the bus exists
// for sidecar observability, not for another Sparkplug consumer.
type Event struct {
	Kind       EventKind
	GroupID    string
	EdgeNodeID string
	Detail     string
	UnixMillis int64
}

func (e Event) encode() []byte {
	return []byte(fmt.Sprintf("%d\t%s\t%s\t%s\t%s", e.UnixMillis, e.Kind, e.GroupID, e.EdgeNodeID, e.Detail))
}

// Publisher wraps a NATS connection dedicated to session lifecycle events.
// All methods are safe for concurrent use.
type Publisher struct {
	conn    *nats.Conn
	subject string
	mu      sync.Mutex
	closed  bool
}

// Config configures a Publisher's NATS connection.
type Config struct {
	Address       string `json:"address" yaml:"address"`
	Subject       string `json:"subject" yaml:"subject"`
	Username      string `json:"username" yaml:"username"`
	Password      string `json:"password" yaml:"password"`
	CredsFilePath string `json:"credsFilePath" yaml:"credsFilePath"`
}

// ConfigSchema documents Config's fields for an embedding application that
// validates its own configuration document alongside pkg/config's node
// schema; eventbus itself performs no JSON-Schema validation, since Config
// is always constructed directly by Go callers in this library.
const ConfigSchema = `{
    "type": "object",
    "description": "Configuration for the optional session lifecycle event bus.",
    "properties": {
        "address": {"description": "NATS server address, e.g. nats://localhost:4222.", "type": "string"},
        "subject": {"description": "Subject lifecycle events are published to.", "type": "string"},
        "username": {"description": "Username for NATS authentication (optional).", "type": "string"},
        "password": {"description": "Password for NATS authentication (optional).", "type": "string"},
        "credsFilePath": {"description": "Path to a NATS credentials file (optional).", "type": "string"}
    },
    "required": ["address", "subject"]
}`

// Connect dials the configured NATS server and returns a ready Publisher.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("eventbus: address is required")
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("eventbus: subject is required")
	}

	var opts []nats.Option

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.CredsFilePath != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFilePath))
	}

	opts = append(opts, nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
		if err != nil {
			applog.Warnf("eventbus: disconnected: %v", err)
		}
	}))
	opts = append(opts, nats.ReconnectHandler(func(nc *nats.Conn) {
		applog.Infof("eventbus: reconnected to %s", nc.ConnectedUrl())
	}))
	opts = append(opts, nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
		applog.Warnf("eventbus: error: %v", err)
	}))

	nc, err := nats.Connect(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect failed: %w", err)
	}

	applog.Infof("eventbus: connected to %s, publishing on %q", cfg.Address, cfg.Subject)

	return &Publisher{conn: nc, subject: cfg.Subject}, nil
}

// Publish emits an Event. Failures are logged and swallowed: the event bus is
// an observability side channel, never a dependency of session correctness
// (§7's non-fatal-by-default taxonomy applies here too).
func (p *Publisher) Publish(kind EventKind, groupID, edgeNodeID, detail string, now time.Time) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}

	ev := Event{
		Kind:       kind,
		GroupID:    groupID,
		EdgeNodeID: edgeNodeID,
		Detail:     detail,
		UnixMillis: now.UnixMilli(),
	}
	if err := p.conn.Publish(p.subject, ev.encode()); err != nil {
		applog.Warnf("eventbus: publish failed: %v", err)
	}
}

// IsConnected reports whether the underlying NATS connection is live.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Flush blocks until all buffered events are flushed to the server.
func (p *Publisher) Flush() error {
	return p.conn.Flush()
}

// Close flushes and closes the underlying NATS connection. Safe to call more
// than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.conn != nil {
		p.conn.Close()
		applog.Info("eventbus: connection closed")
	}
}
