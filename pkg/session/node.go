// Package session implements the Sparkplug B Node/Device state machine:
// connection lifecycle, sequence numbering, bdSeq/Last-Will coordination,
// inbound command dispatch, and the built-in Rebirth/Next-Server controls.
package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sparkplug-edge/edge-client/internal/eventbus"
	"github.com/sparkplug-edge/edge-client/pkg/config"
	"github.com/sparkplug-edge/edge-client/pkg/metric"
	"github.com/sparkplug-edge/edge-client/pkg/transport"

	applog "github.com/sparkplug-edge/edge-client/pkg/log"
)

const (
	PropertyRebirth    = "Node Control/Rebirth"
	PropertyNextServer = "Node Control/Next Server"
	metricNameBdSeq    = "bdSeq"
)

// TransportFactory builds a fresh, unconnected Transport for the given
// endpoint. Node calls it once per endpoint it connects to, so that
// Next-Server failover (§4.3) and reconnects each get a clean client —
// mirroring the reference implementation's _init_mqtt_client(reinit=True).
type TransportFactory func(config.EndpointConfig) transport.Transport

// Node is the top-level Sparkplug session entity (§3).
type Node struct {
	mu sync.Mutex

	groupID    string
	edgeNodeID string
	u32InLong  bool

	endpoints   []config.EndpointConfig
	endpointIdx int

	newTransport TransportFactory
	tr           transport.Transport

	clock Clock

	base
	devices []*Device

	seq uint64 // 0..255

	// lastPublishMillis is the clock time of the most recent successful
	// BIRTH or DATA publish, reported by the driver's heartbeat log line.
	lastPublishMillis uint64

	bdSeqAlias *int

	state              State
	connecting         bool
	reconnectRequested bool
	running            bool

	// limiter caps outbound DATA publishes per second, guarding against a
	// pathological change_value flood saturating the MQTT client. BIRTH and
	// DEATH are never throttled. Unlimited by default; see
	// WithPublishRateLimit.
	limiter *rate.Limiter

	// metrics is nil unless WithMetrics was supplied, in which case every
	// publish, reconnect, decode error and rebirth is counted against it.
	metrics *Metrics

	// events is nil unless WithEventBus was supplied, in which case session
	// lifecycle transitions are also republished onto a local NATS subject.
	events *eventbus.Publisher

	driver *driver
}

// NodeOption configures optional Node behavior at construction time.
type NodeOption func(*Node)

// WithPublishRateLimit caps outbound DATA publishes to eventsPerSecond,
// allowing bursts up to burst (§9: publish throttling against a flooding
// change_value caller, a concern the original Tahu client has no answer
// for).
func WithPublishRateLimit(eventsPerSecond float64, burst int) NodeOption {
	return func(n *Node) {
		n.limiter = rate.NewLimiter(rate.Limit(eventsPerSecond), burst)
	}
}

// WithEventBus republishes session lifecycle transitions (BIRTH sent, DEATH
// observed, reconnect, rebirth requested) onto pub's subject, so a sidecar
// process can observe session state without instrumenting the edge
// application itself.
func WithEventBus(pub *eventbus.Publisher) NodeOption {
	return func(n *Node) {
		n.events = pub
	}
}

// NewNode constructs an offline Node. cfg must already satisfy
// ApplyDefaults (NewNode calls it again defensively).
func NewNode(cfg config.NodeConfig, newTransport TransportFactory, clock Clock, opts ...NodeOption) (*Node, error) {
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}

	n := &Node{
		groupID:      cfg.GroupID,
		edgeNodeID:   cfg.EdgeNodeID,
		u32InLong:    cfg.U32InLong,
		endpoints:    append([]config.EndpointConfig(nil), cfg.Endpoints...),
		newTransport: newTransport,
		clock:        clock,
		base:         newBase(),
		state:        StateOffline,
		limiter:      rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(n)
	}

	if cfg.ProvideBdSeq != nil && *cfg.ProvideBdSeq {
		m, err := metric.NewMetric(metricNameBdSeq, metric.Int64, clock.NowMillis())
		if err != nil {
			return nil, err
		}
		idx, err := n.base.attach(m)
		if err != nil {
			return nil, err
		}
		n.bdSeqAlias = &idx
	}

	if cfg.ProvideControls != nil && *cfg.ProvideControls {
		rebirth, err := metric.NewMetric(PropertyRebirth, metric.Boolean, false,
			metric.WithCommandHandler(n.handleRebirthCommand))
		if err != nil {
			return nil, err
		}
		if _, err := n.base.attach(rebirth); err != nil {
			return nil, err
		}

		nextServer, err := metric.NewMetric(PropertyNextServer, metric.Boolean, false,
			metric.WithCommandHandler(n.handleNextServerCommand))
		if err != nil {
			return nil, err
		}
		if _, err := n.base.attach(nextServer); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// handleRebirthCommand runs from dispatch, with n.mu already held.
func (n *Node) handleRebirthCommand(_ context.Context, _ *metric.Metric, _ interface{}) error {
	applog.Info("session: rebirth command received")
	n.metrics.rebirth()
	n.emit(eventbus.EventRebirthRequested, "Node Control/Rebirth command")
	n.base.needsBirth = true
	return nil
}

// emit is a no-op unless WithEventBus was supplied.
func (n *Node) emit(kind eventbus.EventKind, detail string) {
	if n.events == nil {
		return
	}
	n.events.Publish(kind, n.groupID, n.edgeNodeID, detail, time.UnixMilli(int64(n.clock.NowMillis())))
}

// handleNextServerCommand runs from dispatch, with n.mu already held.
func (n *Node) handleNextServerCommand(_ context.Context, _ *metric.Metric, _ interface{}) error {
	applog.Info("session: next server command received")
	n.endpointIdx = (n.endpointIdx + 1) % len(n.endpoints)
	n.reconnectRequested = true
	return nil
}

// GroupID, EdgeNodeID report the node's identity.
func (n *Node) GroupID() string    { return n.groupID }
func (n *Node) EdgeNodeID() string { return n.edgeNodeID }

// State reports the node's current connection state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Node) policy() metric.Policy { return metric.Policy{U32InLong: n.u32InLong} }

// AttachMetric constructs and attaches a new Metric to the Node (§4.2).
// Attaching while online forces a DEATH+BIRTH cycle.
func (n *Node) AttachMetric(name string, datatype metric.Datatype, initial interface{}, opts ...metric.Option) (*metric.Metric, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	m, err := metric.NewMetric(name, datatype, initial, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := n.base.attach(m); err != nil {
		return nil, err
	}
	if n.isConnectedLocked() {
		if err := n.sendDeathLocked(false); err != nil {
			applog.Warnf("session: death on metric attach: %v", err)
		}
	}
	return m, nil
}

// AttachDevice creates and attaches a child Device, forcing a DEATH+BIRTH
// cycle if the Node is currently online (§4.4).
func (n *Node) AttachDevice(name string) (*Device, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	d := &Device{parent: n, name: name, base: newBase()}
	n.devices = append(n.devices, d)
	if n.isConnectedLocked() {
		if err := n.sendDeathLocked(false); err != nil {
			applog.Warnf("session: death on device attach: %v", err)
		}
	}
	n.base.needsBirth = true
	return d, nil
}

func (n *Node) isConnectedLocked() bool {
	return n.tr != nil && n.tr.IsConnected()
}

// IsConnected reports whether the node currently has a live, subscribed
// transport.
func (n *Node) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state == StateOnline
}

func (n *Node) nextSeqLocked() uint64 {
	s := n.seq
	n.seq = (n.seq + 1) % 256
	return s
}

// SendData publishes a DATA payload for the given metric aliases. If
// aliases is nil, every metric is considered; if changedOnly is true, only
// metrics whose value (or a report-with-data property) changed since their
// last publish are included (§8.9). A pending BIRTH always takes priority
// (§4.3).
func (n *Node) SendData(ctx context.Context, aliases []int, changedOnly bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sendDataLocked(ctx, aliases, changedOnly)
}

func (n *Node) sendDataLocked(ctx context.Context, aliases []int, changedOnly bool) error {
	if !n.isConnectedLocked() {
		applog.Warn("session: send data while not connected, skipping")
		return nil
	}
	if n.base.needsBirth {
		return n.sendBirthLocked(ctx)
	}
	if aliases == nil {
		aliases = n.base.allAliases()
	}
	if changedOnly {
		var filtered []int
		for _, idx := range aliases {
			if n.base.tags[idx].ChangedSinceLastSent() {
				filtered = append(filtered, idx)
			}
		}
		aliases = filtered
	}
	if len(aliases) == 0 {
		return nil
	}
	if !n.limiter.Allow() {
		applog.Warn("session: publish rate limit exceeded, dropping DATA")
		return nil
	}
	pb, err := n.base.buildPayload(n.clock, n.nextSeqLocked(), aliases, false, n.policy())
	if err != nil {
		return err
	}
	data, err := pb.Marshal()
	if err != nil {
		return err
	}
	topic := nodeTopic(n.groupID, n.edgeNodeID, verbData)
	if err := n.tr.Publish(ctx, topic, 0, false, data); err != nil {
		return &TransportError{Op: "publish DATA", Err: err}
	}
	n.metrics.publish("data")
	n.lastPublishMillis = n.clock.NowMillis()
	n.base.markSent(aliases, false)
	return nil
}

func (n *Node) sendBirthLocked(ctx context.Context) error {
	if !n.isConnectedLocked() {
		applog.Warn("session: send birth while not connected, skipping")
		return nil
	}
	n.seq = 0
	pb, err := n.base.buildPayload(n.clock, n.nextSeqLocked(), nil, true, n.policy())
	if err != nil {
		return err
	}
	data, err := pb.Marshal()
	if err != nil {
		return err
	}
	topic := nodeTopic(n.groupID, n.edgeNodeID, verbBirth)
	if err := n.tr.Publish(ctx, topic, 0, false, data); err != nil {
		return &TransportError{Op: "publish BIRTH", Err: err}
	}
	n.metrics.publish("birth")
	n.emit(eventbus.EventBirthSent, "")
	n.lastPublishMillis = n.clock.NowMillis()
	n.base.markSent(nil, true)
	n.base.needsBirth = false
	for _, d := range n.devices {
		d.base.needsBirth = true
	}
	return nil
}

// sendDeathLocked builds and, unless forWill, publishes a DEATH payload. If
// forWill, the payload is only returned for registration as a Last-Will and
// not published directly (the broker publishes it later); a fresh bdSeq is
// generated in that case (§4.3's bdSeq evolution rule).
func (n *Node) sendDeathLocked(forWill bool) error {
	topic, payload, err := n.buildDeathLocked(forWill)
	if err != nil {
		return err
	}
	if forWill {
		n.tr.SetWill(topic, payload, 0, false)
		return nil
	}
	if !n.isConnectedLocked() {
		applog.Warn("session: send death while not connected, skipping")
		return nil
	}
	if err := n.tr.Publish(context.Background(), topic, 0, false, payload); err != nil {
		// "Even if this publish didn't succeed, it's safer to rebirth
		// unnecessarily" — the reference implementation proceeds anyway.
		applog.Warnf("session: publish DEATH: %v", err)
	} else {
		n.metrics.publish("death")
	}
	n.base.needsBirth = true
	for _, d := range n.devices {
		d.base.needsBirth = true
	}
	return nil
}

func (n *Node) buildDeathLocked(forWill bool) (topic string, payload []byte, err error) {
	var aliases []int
	if n.bdSeqAlias != nil {
		if forWill {
			newBdSeq := n.clock.NowMillis()
			if err := n.base.tags[*n.bdSeqAlias].ChangeValue(newBdSeq, 0); err != nil {
				return "", nil, err
			}
		}
		aliases = []int{*n.bdSeqAlias}
	}
	pb, err := n.base.buildPayload(n.clock, n.nextSeqLocked(), aliases, false, n.policy())
	if err != nil {
		return "", nil, err
	}
	pb.Timestamp = nil
	if len(pb.Metrics) > 0 {
		name := metricNameBdSeq
		pb.Metrics[0].Name = &name
	}
	data, err := pb.Marshal()
	if err != nil {
		return "", nil, err
	}
	return nodeTopic(n.groupID, n.edgeNodeID, verbDeath), data, nil
}
