package metric

import (
	"context"
	"fmt"

	"github.com/sparkplug-edge/edge-client/pkg/quality"
	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
)

// Well-known property key names from the Sparkplug B specification's
// engineering-unit/quality metadata convention.
const (
	PropertyQuality       = "Quality"
	PropertyEngUnit       = "engUnit"
	PropertyEngLow        = "engLow"
	PropertyEngHigh       = "engHigh"
	PropertyDocumentation = "Documentation"
)

// CommandHandler is invoked when an inbound CMD payload targets this metric
// (§5: handle_command). Returning an error does not fail the session; it is
// logged as a command handler failure and the command is otherwise dropped.
type CommandHandler func(ctx context.Context, m *Metric, value interface{}) error

// Metric is a single named, typed value cell within a Node or Device,
// together with its metadata properties and change-tracking state (§3).
type Metric struct {
	name         string
	alias        *uint64
	datatype     Datatype
	value        interface{}
	lastSent     interface{}
	lastReceived interface{}
	timestamp    uint64

	properties []*Property
	propIndex  map[string]int

	onCommand CommandHandler
}

// Option configures a Metric at construction time.
type Option func(*Metric) error

// WithAlias assigns a numeric alias, sent instead of the metric name on
// every payload after BIRTH (§3, §4.3).
func WithAlias(alias uint64) Option {
	return func(m *Metric) error {
		m.alias = &alias
		return nil
	}
}

// WithCommandHandler registers the callback invoked on an inbound CMD for
// this metric (§5).
func WithCommandHandler(h CommandHandler) Option {
	return func(m *Metric) error {
		m.onCommand = h
		return nil
	}
}

// WithProperty attaches a property, inferring its datatype from value's Go
// type.
func WithProperty(name string, value interface{}) Option {
	return func(m *Metric) error {
		p, err := inferredProperty(name, value)
		if err != nil {
			return err
		}
		return m.addProperty(p)
	}
}

// WithTypedProperty attaches a property with an explicit datatype.
func WithTypedProperty(name string, datatype Datatype, value interface{}) Option {
	return func(m *Metric) error {
		p, err := NewProperty(name, datatype, value)
		if err != nil {
			return err
		}
		return m.addProperty(p)
	}
}

// WithQuality attaches the standard Quality property.
func WithQuality(code quality.Code) Option {
	return WithTypedProperty(PropertyQuality, Int32, int64(code))
}

// WithEngUnit attaches the standard engUnit property.
func WithEngUnit(unit string) Option { return WithTypedProperty(PropertyEngUnit, String, unit) }

// WithEngLow attaches the standard engLow property.
func WithEngLow(v float64) Option { return WithTypedProperty(PropertyEngLow, Double, v) }

// WithEngHigh attaches the standard engHigh property.
func WithEngHigh(v float64) Option { return WithTypedProperty(PropertyEngHigh, Double, v) }

// WithDocumentation attaches the standard Documentation property.
func WithDocumentation(doc string) Option {
	return WithTypedProperty(PropertyDocumentation, String, doc)
}

// NewMetric constructs a Metric. Construction failures (bad initial value,
// duplicate property names, ...) are returned immediately and fatally
// (§7: configuration error) rather than producing a partially built metric.
// A datatype of Unknown is inferred from initial's Go type.
func NewMetric(name string, datatype Datatype, initial interface{}, opts ...Option) (*Metric, error) {
	if name == "" {
		return nil, &ConfigError{Reason: "metric name must not be empty"}
	}
	if datatype == Unknown {
		d, ok := datatypeForGoValue(initial)
		if !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("cannot infer a datatype for metric %q", name)}
		}
		datatype = d
	}
	if _, err := encode(datatype, initial, Policy{}); err != nil {
		return nil, err
	}
	m := &Metric{
		name:      name,
		datatype:  datatype,
		value:     initial,
		propIndex: make(map[string]int),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metric) addProperty(p *Property) error {
	if _, exists := m.propIndex[p.name]; exists {
		return &ConfigError{Reason: fmt.Sprintf("duplicate property %q on metric %q", p.name, m.name)}
	}
	m.propIndex[p.name] = len(m.properties)
	m.properties = append(m.properties, p)
	return nil
}

func (m *Metric) Name() string       { return m.name }
func (m *Metric) Alias() (uint64, bool) {
	if m.alias == nil {
		return 0, false
	}
	return *m.alias, true
}
func (m *Metric) Datatype() Datatype   { return m.datatype }
func (m *Metric) Value() interface{}   { return m.value }
func (m *Metric) Timestamp() uint64    { return m.timestamp }

// Property looks up an attached property by name.
func (m *Metric) Property(name string) (*Property, bool) {
	i, ok := m.propIndex[name]
	if !ok {
		return nil, false
	}
	return m.properties[i], true
}

// Properties returns the attached properties in declaration order.
func (m *Metric) Properties() []*Property {
	return append([]*Property(nil), m.properties...)
}

// ChangeValue updates the metric's current value and timestamp. The value
// is type-checked against the metric's declared datatype; a mismatch is a
// configuration error and the metric is left unchanged (§4.2, §7).
func (m *Metric) ChangeValue(value interface{}, timestampMs uint64) error {
	if _, err := encode(m.datatype, value, Policy{}); err != nil {
		return err
	}
	m.value = value
	m.timestamp = timestampMs
	return nil
}

// ChangedSinceLastSent reports whether the metric's value, or any of its
// report-with-data properties, differ from what was last published — the
// condition gating inclusion in the next outgoing DATA payload (§3, §4.4).
func (m *Metric) ChangedSinceLastSent() bool {
	if !valuesEqual(m.value, m.lastSent) {
		return true
	}
	for _, p := range m.properties {
		if p.reportWithData && p.ChangedSinceLastSent() {
			return true
		}
	}
	return false
}

// MarkSent records the metric's current value as having been published.
// birth must match the birth argument passed to the preceding ToWire call:
// on birth every property was included and is marked sent; otherwise only
// report-with-data properties were (potentially) included.
func (m *Metric) MarkSent(birth bool) {
	m.lastSent = m.value
	for _, p := range m.properties {
		if birth || p.reportWithData {
			p.MarkSent()
		}
	}
}

// HandleCommand applies an inbound command value: it records the value as
// received and, if a handler is registered, invokes it. A missing handler
// is not an error — a metric may be write-exposed with no side effect.
func (m *Metric) HandleCommand(ctx context.Context, value interface{}) error {
	if _, err := encode(m.datatype, value, Policy{}); err != nil {
		return err
	}
	m.lastReceived = value
	if m.onCommand == nil {
		return nil
	}
	return m.onCommand(ctx, m, value)
}

// LastReceived returns the last value applied through HandleCommand.
func (m *Metric) LastReceived() interface{} { return m.lastReceived }

// ToWire renders the metric into a sparkplugpb.Metric for inclusion in a
// BIRTH or DATA payload. BIRTH payloads carry both name and alias so a host
// can learn the mapping; DATA payloads carry the alias alone once one has
// been assigned (§4.3). birth selects which; callers pass true for BIRTH
// and false for DATA.
func (m *Metric) ToWire(birth bool, policy Policy) (*sparkplugpb.Metric, error) {
	w, err := encode(m.datatype, m.value, policy)
	if err != nil {
		return nil, err
	}
	datatype := uint32(m.datatype)
	timestamp := m.timestamp
	pb := &sparkplugpb.Metric{
		Datatype:  &datatype,
		Timestamp: &timestamp,
	}
	pb.Alias = m.alias
	if birth || m.alias == nil {
		name := m.name
		pb.Name = &name
	}
	w.applyToMetricPB(pb)

	var included []*Property
	for _, p := range m.properties {
		if birth || (p.reportWithData && p.ChangedSinceLastSent()) {
			included = append(included, p)
		}
	}
	if len(included) > 0 {
		ps, err := propertySetToWire(included, policy)
		if err != nil {
			return nil, err
		}
		pb.Properties = ps
	}
	return pb, nil
}

// FromWire applies an inbound sparkplugpb.Metric to m, decoding its value
// under m's declared datatype (permissive decode, §4.1, §7: decode error).
func (m *Metric) FromWire(pb *sparkplugpb.Metric) (interface{}, error) {
	w := wireFromMetricPB(pb)
	v, err := decode(w, m.datatype)
	if err != nil {
		return nil, err
	}
	if pb.Timestamp != nil {
		m.timestamp = *pb.Timestamp
	}
	return v, nil
}

func propertySetToWire(props []*Property, policy Policy) (*sparkplugpb.PropertySet, error) {
	ps := &sparkplugpb.PropertySet{}
	for _, p := range props {
		flat, err := p.toWirePB(policy)
		if err != nil {
			return nil, err
		}
		pv := &sparkplugpb.PropertyValue{Type: uint32(flat.datatype)}
		flat.wire.applyToPropertyValuePB(pv)
		ps.Keys = append(ps.Keys, flat.key)
		ps.Values = append(ps.Values, pv)
	}
	return ps, nil
}
