package metric

// Property is a single named entry in a Metric's PropertySet: typically
// metadata like engineering units or quality, but capable of carrying any
// scalar datatype (§3, §6).
type Property struct {
	name     string
	datatype Datatype
	value    interface{}
	lastSent interface{}
	// reportWithData marks a property whose changes should force its owning
	// metric onto the next outgoing DATA payload, the way changing a
	// metric's own value does.
	reportWithData bool
}

// NewProperty constructs a Property with an explicit datatype.
func NewProperty(name string, datatype Datatype, value interface{}) (*Property, error) {
	if name == "" {
		return nil, &ConfigError{Reason: "property name must not be empty"}
	}
	if _, err := encode(datatype, value, Policy{}); err != nil {
		return nil, err
	}
	return &Property{name: name, datatype: datatype, value: value}, nil
}

// inferredProperty constructs a Property inferring its datatype from value's
// Go type (§4.2).
func inferredProperty(name string, value interface{}) (*Property, error) {
	d, ok := datatypeForGoValue(value)
	if !ok {
		return nil, &ConfigError{Reason: "cannot infer a datatype for property " + name}
	}
	return NewProperty(name, d, value)
}

func (p *Property) Name() string       { return p.name }
func (p *Property) Datatype() Datatype { return p.datatype }
func (p *Property) Value() interface{} { return p.value }

// ReportWithData reports whether a change to this property alone should
// force its owning metric to be re-sent.
func (p *Property) ReportWithData() bool { return p.reportWithData }

// SetReportWithData configures ReportWithData.
func (p *Property) SetReportWithData(report bool) { p.reportWithData = report }

// ChangeValue updates the property's current value, type-checking it
// against the declared datatype (§7: configuration error on mismatch).
func (p *Property) ChangeValue(value interface{}) error {
	if _, err := encode(p.datatype, value, Policy{}); err != nil {
		return err
	}
	p.value = value
	return nil
}

// ChangedSinceLastSent reports whether Value differs from what was last
// marked sent via MarkSent.
func (p *Property) ChangedSinceLastSent() bool {
	return !valuesEqual(p.value, p.lastSent)
}

// MarkSent records the current value as having been published.
func (p *Property) MarkSent() { p.lastSent = p.value }

func (p *Property) toWirePB(policy Policy) (*propertyPB, error) {
	w, err := encode(p.datatype, p.value, policy)
	if err != nil {
		return nil, err
	}
	return &propertyPB{key: p.name, datatype: p.datatype, wire: w}, nil
}

// propertyPB is the flattened shape needed to assemble a
// sparkplugpb.PropertySet's parallel Keys/Values arrays.
type propertyPB struct {
	key      string
	datatype Datatype
	wire     wireValue
}
