package session

import (
	"context"

	"github.com/sparkplug-edge/edge-client/pkg/metric"
	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"

	applog "github.com/sparkplug-edge/edge-client/pkg/log"
)

// base is the shared metric-arena and payload-building capability common to
// Node and Device (§9: "inheritance between Node and Device is replaced by
// a shared entity capability set"). All methods assume the caller already
// holds the owning Node's mutex.
type base struct {
	tags       []*metric.Metric
	tagIndex   map[string]int
	needsBirth bool
}

func newBase() base {
	return base{tagIndex: make(map[string]int)}
}

// attach appends m to the arena and returns its index. A metric that has no
// alias of its own is given its index as alias (the alias-stability
// invariant of §8.1).
func (b *base) attach(m *metric.Metric) (int, error) {
	if _, exists := b.tagIndex[m.Name()]; exists {
		return 0, &ConfigError{Reason: "duplicate metric name " + m.Name()}
	}
	idx := len(b.tags)
	if _, ok := m.Alias(); !ok {
		if err := metric.WithAlias(uint64(idx))(m); err != nil {
			return 0, err
		}
	}
	b.tags = append(b.tags, m)
	b.tagIndex[m.Name()] = idx
	b.needsBirth = true
	return idx, nil
}

func (b *base) allAliases() []int {
	out := make([]int, len(b.tags))
	for i := range b.tags {
		out[i] = i
	}
	return out
}

func (b *base) changedAliases() []int {
	var out []int
	for i, m := range b.tags {
		if m.ChangedSinceLastSent() {
			out = append(out, i)
		}
	}
	return out
}

// buildPayload renders the given aliases (or every tag, if birth) into a
// Payload carrying seq and the current time from clock.
func (b *base) buildPayload(clock Clock, seq uint64, aliases []int, birth bool, policy metric.Policy) (*sparkplugpb.Payload, error) {
	if birth {
		aliases = b.allAliases()
	}
	ts := clock.NowMillis()
	pb := &sparkplugpb.Payload{Timestamp: &ts, Seq: &seq}
	for _, idx := range aliases {
		wireMetric, err := b.tags[idx].ToWire(birth, policy)
		if err != nil {
			return nil, err
		}
		pb.Metrics = append(pb.Metrics, wireMetric)
	}
	return pb, nil
}

func (b *base) markSent(aliases []int, birth bool) {
	if birth {
		for _, m := range b.tags {
			m.MarkSent(true)
		}
		return
	}
	for _, idx := range aliases {
		b.tags[idx].MarkSent(false)
	}
}

// dispatch applies every metric in an inbound CMD payload to this entity's
// tags, by alias first and then by name (§4.3). Unmatched or malformed
// entries are routing misses: logged and skipped, never fatal (§7).
func (b *base) dispatch(ctx context.Context, topic string, pb *sparkplugpb.Payload, metrics *Metrics) {
	for _, pm := range pb.Metrics {
		var target *metric.Metric
		switch {
		case pm.Alias != nil:
			for _, m := range b.tags {
				if a, ok := m.Alias(); ok && a == *pm.Alias {
					target = m
					break
				}
			}
			if target == nil {
				applog.Warn((&RoutingError{Topic: topic, Alias: pm.Alias}).Error())
				continue
			}
		case pm.Name != nil:
			idx, ok := b.tagIndex[*pm.Name]
			if !ok {
				applog.Warn((&RoutingError{Topic: topic, Name: *pm.Name}).Error())
				continue
			}
			target = b.tags[idx]
		default:
			applog.Warn("session: routing miss on " + topic + ": metric has neither alias nor name")
			continue
		}
		value, err := target.FromWire(pm)
		if err != nil {
			applog.Warnf("session: decode error for %s on %s: %v", target.Name(), topic, err)
			metrics.decodeError("command")
			continue
		}
		if err := target.HandleCommand(ctx, value); err != nil {
			applog.Warnf("session: command handler failed for %s on %s: %v", target.Name(), topic, err)
		}
	}
}
