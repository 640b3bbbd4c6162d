package session

import (
	"context"

	applog "github.com/sparkplug-edge/edge-client/pkg/log"
	"github.com/sparkplug-edge/edge-client/pkg/metric"
)

// Device is a Node-scoped child entity sharing the parent's transport and
// sequence counter (§3, §4.4). It owns its own metric arena and publishes
// under D-topics, but never registers its own Last-Will.
type Device struct {
	parent *Node
	name   string

	base
}

// Name returns the device's name.
func (d *Device) Name() string { return d.name }

// AttachMetric constructs and attaches a new Metric to the Device.
// Attaching while the parent Node is online forces the Device's own
// needs_birth flag (Device DEATH carries no metrics; see §4.4).
func (d *Device) AttachMetric(name string, datatype metric.Datatype, initial interface{}, opts ...metric.Option) (*metric.Metric, error) {
	d.parent.mu.Lock()
	defer d.parent.mu.Unlock()

	m, err := metric.NewMetric(name, datatype, initial, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := d.base.attach(m); err != nil {
		return nil, err
	}
	if d.isConnectedLocked() {
		if err := d.sendDeathLocked(context.Background()); err != nil {
			applog.Warnf("session: death on device metric attach: %v", err)
		}
	}
	return m, nil
}

func (d *Device) isConnectedLocked() bool {
	return d.parent.isConnectedLocked()
}

// IsConnected reports whether the parent Node is online.
func (d *Device) IsConnected() bool { return d.parent.IsConnected() }

// sendBirthLocked publishes the Device's BIRTH, but only once the parent
// Node itself has already birthed (§4.3: "If the Node's needs_birth is set,
// no Device may publish BIRTH ... until the Node has birthed").
func (d *Device) sendBirthLocked(ctx context.Context) error {
	if d.parent.base.needsBirth {
		return d.parent.sendBirthLocked(ctx)
	}
	if !d.isConnectedLocked() {
		applog.Warn("session: send device birth while not connected, skipping")
		return nil
	}
	pb, err := d.base.buildPayload(d.parent.clock, d.parent.nextSeqLocked(), nil, true, d.parent.policy())
	if err != nil {
		return err
	}
	data, err := pb.Marshal()
	if err != nil {
		return err
	}
	topic := deviceTopic(d.parent.groupID, d.parent.edgeNodeID, d.name, verbBirth)
	if err := d.parent.tr.Publish(ctx, topic, 0, false, data); err != nil {
		return &TransportError{Op: "publish device BIRTH", Err: err}
	}
	d.parent.metrics.publish("dbirth")
	d.base.markSent(nil, true)
	d.base.needsBirth = false
	return nil
}

// sendDeathLocked publishes an empty-metric-list DEATH for the Device: the
// Node-level Last-Will covers session death, so a Device DEATH exists only
// to signal the specific device is being torn down (e.g. on metric attach
// while online), per §4.4.
func (d *Device) sendDeathLocked(ctx context.Context) error {
	if !d.isConnectedLocked() {
		applog.Warn("session: send device death while not connected, skipping")
		return nil
	}
	pb, err := d.base.buildPayload(d.parent.clock, d.parent.nextSeqLocked(), []int{}, false, d.parent.policy())
	if err != nil {
		return err
	}
	data, err := pb.Marshal()
	if err != nil {
		return err
	}
	topic := deviceTopic(d.parent.groupID, d.parent.edgeNodeID, d.name, verbDeath)
	if err := d.parent.tr.Publish(ctx, topic, 0, false, data); err != nil {
		applog.Warnf("session: publish device DEATH: %v", err)
	} else {
		d.parent.metrics.publish("ddeath")
	}
	d.base.needsBirth = true
	return nil
}

// SendData publishes a DATA payload for the device (§4.4).
func (d *Device) SendData(ctx context.Context, aliases []int, changedOnly bool) error {
	d.parent.mu.Lock()
	defer d.parent.mu.Unlock()

	if !d.isConnectedLocked() {
		applog.Warn("session: send device data while not connected, skipping")
		return nil
	}
	if d.parent.base.needsBirth || d.base.needsBirth {
		return d.sendBirthLocked(ctx)
	}
	if aliases == nil {
		aliases = d.base.allAliases()
	}
	if changedOnly {
		var filtered []int
		for _, idx := range aliases {
			if d.base.tags[idx].ChangedSinceLastSent() {
				filtered = append(filtered, idx)
			}
		}
		aliases = filtered
	}
	if len(aliases) == 0 {
		return nil
	}
	if !d.parent.limiter.Allow() {
		applog.Warn("session: publish rate limit exceeded, dropping device DATA")
		return nil
	}
	pb, err := d.base.buildPayload(d.parent.clock, d.parent.nextSeqLocked(), aliases, false, d.parent.policy())
	if err != nil {
		return err
	}
	data, err := pb.Marshal()
	if err != nil {
		return err
	}
	topic := deviceTopic(d.parent.groupID, d.parent.edgeNodeID, d.name, verbData)
	if err := d.parent.tr.Publish(ctx, topic, 0, false, data); err != nil {
		return &TransportError{Op: "publish device DATA", Err: err}
	}
	d.parent.metrics.publish("ddata")
	d.base.markSent(aliases, false)
	return nil
}
