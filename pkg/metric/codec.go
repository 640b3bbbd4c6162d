package metric

import (
	"fmt"

	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
)

// Policy controls interop switches that affect wire encoding (§4.1).
type Policy struct {
	// U32InLong encodes UInt32 metrics into long_value instead of int_value.
	// Sparkplug host applications disagree on this point; off by default to
	// match the reference Python implementation.
	U32InLong bool
}

// wireValue is the encoding-agnostic set of scalar fields shared by
// sparkplugpb.Metric, sparkplugpb.PropertyValue and sparkplugpb.DataSetValue.
// Those three wire types carry identical field names but are distinct Go
// structs, so encode/decode is written once against this shape and copied
// in and out of whichever concrete struct is in play.
type wireValue struct {
	isNull       bool
	intValue     *uint32
	longValue    *uint64
	floatValue   *float32
	doubleValue  *float64
	booleanValue *bool
	stringValue  *string
	bytesValue   []byte
	datasetValue *sparkplugpb.DataSet
	templateValue *sparkplugpb.Template
}

// encode converts a Go domain value into its wire representation for d.
func encode(d Datatype, v interface{}, policy Policy) (wireValue, error) {
	if v == nil {
		return wireValue{isNull: true}, nil
	}

	switch {
	case d == Int8 || d == Int16 || d == Int32:
		iv, err := toInt64(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		u := uint32(int32(iv))
		return wireValue{intValue: &u}, nil

	case d == Int64:
		iv, err := toInt64(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		u := uint64(iv)
		return wireValue{longValue: &u}, nil

	case d == UInt8 || d == UInt16:
		uv, err := toUint64(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		u := uint32(uv)
		return wireValue{intValue: &u}, nil

	case d == UInt32:
		uv, err := toUint64(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		if policy.U32InLong {
			u := uv
			return wireValue{longValue: &u}, nil
		}
		u := uint32(uv)
		return wireValue{intValue: &u}, nil

	case d == UInt64 || d == DateTime:
		uv, err := toUint64(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		return wireValue{longValue: &uv}, nil

	case d == Float:
		f, err := toFloat32(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		return wireValue{floatValue: &f}, nil

	case d == Double:
		f, err := toFloat64(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		return wireValue{doubleValue: &f}, nil

	case d == Boolean:
		b, err := toBool(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		return wireValue{booleanValue: &b}, nil

	case d == String || d == Text || d == UUID:
		s, err := toString(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		return wireValue{stringValue: &s}, nil

	case d == Bytes || d == File:
		b, err := toBytes(v)
		if err != nil {
			return wireValue{}, &ConfigError{Reason: err.Error()}
		}
		return wireValue{bytesValue: b}, nil

	case d == DataSet:
		ds, ok := v.(*Dataset)
		if !ok {
			return wireValue{}, &ConfigError{Reason: fmt.Sprintf("value %T is not a *Dataset", v)}
		}
		pb, err := ds.toWire()
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{datasetValue: pb}, nil

	case d == Template:
		tpl, ok := v.(*sparkplugpb.Template)
		if !ok {
			return wireValue{}, &ConfigError{Reason: fmt.Sprintf("value %T is not a *sparkplugpb.Template", v)}
		}
		return wireValue{templateValue: tpl}, nil

	default:
		return wireValue{}, &ConfigError{Reason: fmt.Sprintf("unsupported datatype %s", d)}
	}
}

// decode converts a wire value back into a Go domain value under the
// declared datatype d, applying the permissive cross-field acceptance and
// saturating-clamp rules of §4.1.
func decode(w wireValue, d Datatype) (interface{}, error) {
	if w.isNull {
		return nil, nil
	}

	switch {
	case d.IsInteger() || d == DateTime:
		var raw uint64
		switch {
		case w.intValue != nil:
			raw = uint64(*w.intValue)
		case w.longValue != nil:
			raw = *w.longValue
		case w.booleanValue != nil:
			if *w.booleanValue {
				raw = 1
			}
		default:
			return nil, &DecodeError{Datatype: d, Reason: "no int_value, long_value, or boolean_value present"}
		}

		if d.IsSignedInteger() {
			var signed int64
			switch {
			case w.intValue != nil:
				signed = int64(int32(uint32(raw)))
			default:
				signed = int64(raw)
			}
			return clampSigned(d, signed), nil
		}
		if d == DateTime {
			return raw, nil
		}
		return clampUnsigned(d, raw), nil

	case d == Boolean:
		switch {
		case w.booleanValue != nil:
			return *w.booleanValue, nil
		case w.intValue != nil:
			return *w.intValue != 0, nil
		case w.longValue != nil:
			return *w.longValue != 0, nil
		default:
			return nil, &DecodeError{Datatype: d, Reason: "no boolean_value, int_value, or long_value present"}
		}

	case d == Float || d == Double:
		switch {
		case w.floatValue != nil:
			if d == Float {
				return *w.floatValue, nil
			}
			return float64(*w.floatValue), nil
		case w.doubleValue != nil:
			if d == Double {
				return *w.doubleValue, nil
			}
			return float32(*w.doubleValue), nil
		default:
			return nil, &DecodeError{Datatype: d, Reason: "no float_value or double_value present"}
		}

	case d == String || d == Text || d == UUID:
		if w.stringValue == nil {
			return nil, &DecodeError{Datatype: d, Reason: "no string_value present"}
		}
		return *w.stringValue, nil

	case d == Bytes || d == File:
		if w.bytesValue == nil {
			return nil, &DecodeError{Datatype: d, Reason: "no bytes_value present"}
		}
		return w.bytesValue, nil

	case d == DataSet:
		if w.datasetValue == nil {
			return nil, &DecodeError{Datatype: d, Reason: "no dataset_value present"}
		}
		return datasetFromWire(w.datasetValue)

	case d == Template:
		if w.templateValue == nil {
			return nil, &DecodeError{Datatype: d, Reason: "no template_value present"}
		}
		return w.templateValue, nil

	default:
		return nil, &DecodeError{Datatype: d, Reason: "datatype carries no decodable value"}
	}
}

// --- wireValue <-> sparkplugpb.Metric ---

func wireFromMetricPB(m *sparkplugpb.Metric) wireValue {
	return wireValue{
		isNull:        m.IsNull != nil && *m.IsNull,
		intValue:      m.IntValue,
		longValue:     m.LongValue,
		floatValue:    m.FloatValue,
		doubleValue:   m.DoubleValue,
		booleanValue:  m.BooleanValue,
		stringValue:   m.StringValue,
		bytesValue:    m.BytesValue,
		datasetValue:  m.DatasetValue,
		templateValue: m.TemplateValue,
	}
}

func (w wireValue) applyToMetricPB(m *sparkplugpb.Metric) {
	if w.isNull {
		t := true
		m.IsNull = &t
		return
	}
	m.IntValue = w.intValue
	m.LongValue = w.longValue
	m.FloatValue = w.floatValue
	m.DoubleValue = w.doubleValue
	m.BooleanValue = w.booleanValue
	m.StringValue = w.stringValue
	m.BytesValue = w.bytesValue
	m.DatasetValue = w.datasetValue
	m.TemplateValue = w.templateValue
}

// --- wireValue <-> sparkplugpb.PropertyValue ---

func wireFromPropertyValuePB(p *sparkplugpb.PropertyValue) wireValue {
	return wireValue{
		isNull:       p.IsNull != nil && *p.IsNull,
		intValue:     p.IntValue,
		longValue:    p.LongValue,
		floatValue:   p.FloatValue,
		doubleValue:  p.DoubleValue,
		booleanValue: p.BooleanValue,
		stringValue:  p.StringValue,
	}
}

func (w wireValue) applyToPropertyValuePB(p *sparkplugpb.PropertyValue) {
	if w.isNull {
		t := true
		p.IsNull = &t
		return
	}
	p.IntValue = w.intValue
	p.LongValue = w.longValue
	p.FloatValue = w.floatValue
	p.DoubleValue = w.doubleValue
	p.BooleanValue = w.booleanValue
	p.StringValue = w.stringValue
}

// --- wireValue <-> sparkplugpb.DataSetValue ---

func wireFromDataSetValuePB(v *sparkplugpb.DataSetValue) wireValue {
	return wireValue{
		intValue:     v.IntValue,
		longValue:    v.LongValue,
		floatValue:   v.FloatValue,
		doubleValue:  v.DoubleValue,
		booleanValue: v.BooleanValue,
		stringValue:  v.StringValue,
	}
}

func (w wireValue) applyToDataSetValuePB(v *sparkplugpb.DataSetValue) {
	v.IntValue = w.intValue
	v.LongValue = w.longValue
	v.FloatValue = w.floatValue
	v.DoubleValue = w.doubleValue
	v.BooleanValue = w.booleanValue
	v.StringValue = w.stringValue
}
