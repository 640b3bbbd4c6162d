package session

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/sparkplug-edge/edge-client/internal/eventbus"
	applog "github.com/sparkplug-edge/edge-client/pkg/log"
	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
	"github.com/sparkplug-edge/edge-client/pkg/transport"
)

// driverTickInterval is how often the background driver re-checks
// connection state, pending births, and reconnect requests. The MQTT
// network loop itself is pumped by the transport (paho runs its own
// goroutines); this loop is the higher-level reactive pass described in
// §4.3/§5 — "a single background worker ... reacts to connection events,
// triggers births, handles next-server reinitialization".
const driverTickInterval = 200 * time.Millisecond

type driver struct {
	scheduler gocron.Scheduler
}

// Online transitions the Node from offline to connecting and starts the
// background driver (§4.3, §5). It is idempotent: calling it on an
// already-running Node is a no-op.
func (n *Node) Online(ctx context.Context) error {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return nil
	}
	n.running = true
	n.state = StateConnecting
	n.metrics.setConnectionState(StateConnecting)
	n.mu.Unlock()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(driverTickInterval),
		gocron.NewTask(func() { n.driverTick(ctx) }),
	); err != nil {
		return err
	}
	n.mu.Lock()
	n.driver = &driver{scheduler: scheduler}
	n.mu.Unlock()

	scheduler.Start()
	n.driverTick(ctx)
	return nil
}

// Offline requests termination: the driver stops ticking and the current
// transport is torn down. Safe to call from any goroutine other than a
// driver tick itself (§5: cancellation).
func (n *Node) Offline() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	n.state = StateTerminating
	n.metrics.setConnectionState(StateTerminating)
	tr := n.tr
	drv := n.driver
	n.mu.Unlock()

	if drv != nil {
		if err := drv.scheduler.Shutdown(); err != nil {
			applog.Warnf("session: scheduler shutdown: %v", err)
		}
	}
	if tr != nil {
		// Explicit unsubscribe before disconnect, rather than relying on the
		// client teardown to drop them implicitly (the teacher's
		// pkg/nats Client.Close does the same for its own subscriptions).
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := tr.Unsubscribe(ctx, nodeCmdSubscription(n.groupID, n.edgeNodeID), deviceCmdSubscription(n.groupID, n.edgeNodeID)); err != nil {
			applog.Warnf("session: unsubscribe on offline: %v", err)
		}
		cancel()
		tr.Disconnect(500)
	}

	n.mu.Lock()
	n.state = StateOffline
	n.metrics.setConnectionState(StateOffline)
	n.tr = nil
	n.driver = nil
	n.mu.Unlock()
}

func (n *Node) driverTick(ctx context.Context) {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}

	if n.reconnectRequested {
		n.reconnectRequested = false
		if n.tr != nil {
			n.tr.Disconnect(250)
		}
		n.tr = nil
		n.state = StateConnecting
		n.metrics.setConnectionState(StateConnecting)
	}

	applog.Debugf("session: heartbeat state=%s seq=%d sincePublishMs=%d", n.state, n.seq, n.clock.NowMillis()-n.lastPublishMillis)

	if n.tr == nil && !n.connecting {
		n.connecting = true
		ep := n.endpoints[n.endpointIdx]
		tr := n.newTransport(ep)
		n.wireTransportLocked(tr)
		n.tr = tr
		n.mu.Unlock()
		go n.connectAsync(ctx, tr)
		return
	}

	if n.isConnectedLocked() {
		if n.base.needsBirth {
			if err := n.sendBirthLocked(ctx); err != nil {
				applog.Warnf("session: birth failed: %v", err)
			}
		} else {
			for _, d := range n.devices {
				if d.base.needsBirth {
					if err := d.sendBirthLocked(ctx); err != nil {
						applog.Warnf("session: device birth failed for %s: %v", d.name, err)
					}
				}
			}
		}
	}
	n.mu.Unlock()
}

func (n *Node) wireTransportLocked(tr transport.Transport) {
	tr.OnConnect(func() {
		n.mu.Lock()
		n.connecting = false
		n.state = StateSubscribing
		n.metrics.setConnectionState(StateSubscribing)
		cur := n.tr
		n.mu.Unlock()

		// BIRTH must not reach the broker before NCMD/DCMD are confirmed
		// subscribed, or a command sent right after BIRTH could be dropped
		// (§4.3: connecting -> subscribing -> online on SUBACK).
		ctx := context.Background()
		errNCMD := cur.Subscribe(ctx, nodeCmdSubscription(n.groupID, n.edgeNodeID), 0, n.handleMessage)
		if errNCMD != nil {
			applog.Warnf("session: subscribe NCMD failed: %v", errNCMD)
		}
		errDCMD := cur.Subscribe(ctx, deviceCmdSubscription(n.groupID, n.edgeNodeID), 0, n.handleMessage)
		if errDCMD != nil {
			applog.Warnf("session: subscribe DCMD failed: %v", errDCMD)
		}

		n.mu.Lock()
		defer n.mu.Unlock()
		if n.tr != cur {
			// Transport was swapped out (next-server, reconnect) while the
			// subscribe calls were in flight; this callback no longer applies.
			return
		}
		if errNCMD != nil || errDCMD != nil {
			cur.Disconnect(250)
			n.tr = nil
			n.state = StateConnecting
			n.metrics.setConnectionState(StateConnecting)
			return
		}

		n.state = StateOnline
		n.metrics.setConnectionState(StateOnline)
		n.base.needsBirth = true
		for _, d := range n.devices {
			d.base.needsBirth = true
		}
	})

	tr.OnConnectionLost(func(err error) {
		applog.Warnf("session: connection lost: %v", err)
		n.metrics.reconnect()
		detail := ""
		if err != nil {
			detail = err.Error()
		}
		n.emit(eventbus.EventDeathObserved, detail)
		n.emit(eventbus.EventReconnect, "")
		n.mu.Lock()
		n.connecting = false
		n.state = StateConnecting
		n.metrics.setConnectionState(StateConnecting)
		if err2 := n.sendDeathLocked(true); err2 != nil {
			applog.Warnf("session: re-registering will after disconnect: %v", err2)
		}
		n.mu.Unlock()
	})
}

func (n *Node) connectAsync(ctx context.Context, tr transport.Transport) {
	n.mu.Lock()
	if err := n.sendDeathLocked(true); err != nil {
		applog.Warnf("session: registering initial will: %v", err)
	}
	n.mu.Unlock()

	if err := tr.Connect(ctx); err != nil {
		applog.Warnf("session: connect failed: %v", err)
		n.mu.Lock()
		n.connecting = false
		if n.tr == tr {
			n.tr = nil
		}
		n.mu.Unlock()
		return
	}

	n.mu.Lock()
	n.connecting = false
	n.mu.Unlock()
}

// handleMessage routes an inbound message to the Node or the Device whose
// watched CMD topic equals the message topic (§4.3).
func (n *Node) handleMessage(topic string, payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	pb := &sparkplugpb.Payload{}
	if err := pb.Unmarshal(payload); err != nil {
		applog.Warnf("session: decode error on %s: %v", topic, err)
		n.metrics.decodeError("payload")
		return
	}

	if topic == nodeTopic(n.groupID, n.edgeNodeID, verbCmd) {
		n.base.dispatch(context.Background(), topic, pb, n.metrics)
		return
	}
	for _, d := range n.devices {
		if topic == deviceTopic(n.groupID, n.edgeNodeID, d.name, verbCmd) {
			d.base.dispatch(context.Background(), topic, pb, n.metrics)
			return
		}
	}
	applog.Infof("session: ignoring message on unrecognized topic %s", topic)
}
