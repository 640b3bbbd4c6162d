// Package sparkplugpb holds the Sparkplug B wire message types and their
// binary codec.
//
// In a normal Go project these types and their Marshal/Unmarshal methods
// would be emitted by protoc-gen-go from the published sparkplug_b.proto
// schema. No protoc toolchain is available here, so this package is a
// hand-authored stand-in built directly on the same low-level wire
// primitives (google.golang.org/protobuf/encoding/protowire) codegen would
// use, keeping the exact field numbers and wire types the published schema
// defines. Callers outside this package should treat it the way they would
// a generated package: read and write the struct fields, never the wire
// bytes directly.
package sparkplugpb

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers, fixed by the published Sparkplug B protobuf schema.
const (
	fnPayloadTimestamp = 1
	fnPayloadMetrics   = 2
	fnPayloadSeq       = 3

	fnMetricName       = 1
	fnMetricAlias      = 2
	fnMetricTimestamp  = 3
	fnMetricDatatype   = 4
	fnMetricIsNull     = 7
	fnMetricProperties = 9
	fnMetricInt        = 10
	fnMetricLong       = 11
	fnMetricFloat      = 12
	fnMetricDouble     = 13
	fnMetricBoolean    = 14
	fnMetricString     = 15
	fnMetricBytes      = 16
	fnMetricDataset    = 17
	fnMetricTemplate   = 18

	fnPropSetKeys   = 1
	fnPropSetValues = 2

	fnPropValType    = 1
	fnPropValIsNull  = 2
	fnPropValInt     = 3
	fnPropValLong    = 4
	fnPropValFloat   = 5
	fnPropValDouble  = 6
	fnPropValBoolean = 7
	fnPropValString  = 8

	fnDataSetNumCols = 1
	fnDataSetColumns = 2
	fnDataSetTypes   = 3
	fnDataSetRows    = 4

	fnRowElements = 1

	fnDSValInt     = 1
	fnDSValLong    = 2
	fnDSValFloat   = 3
	fnDSValDouble  = 4
	fnDSValBoolean = 5
	fnDSValString  = 6

	fnTemplateVersion      = 1
	fnTemplateMetrics      = 2
	fnTemplateRef          = 4
	fnTemplateIsDefinition = 5
)

// Payload is the envelope carried by every BIRTH/DEATH/DATA/CMD message.
type Payload struct {
	Timestamp *uint64
	Metrics   []*Metric
	Seq       *uint64
}

// Metric is one entry in a Payload's metric list.
type Metric struct {
	Name       *string
	Alias      *uint64
	Timestamp  *uint64
	Datatype   *uint32
	IsNull     *bool
	Properties *PropertySet

	IntValue      *uint32
	LongValue     *uint64
	FloatValue    *float32
	DoubleValue   *float64
	BooleanValue  *bool
	StringValue   *string
	BytesValue    []byte
	DatasetValue  *DataSet
	TemplateValue *Template
}

// PropertySet is an ordered (keys, values) pair, index-aligned.
type PropertySet struct {
	Keys   []string
	Values []*PropertyValue
}

// PropertyValue is a single typed property value.
type PropertyValue struct {
	Type   uint32
	IsNull *bool

	IntValue     *uint32
	LongValue    *uint64
	FloatValue   *float32
	DoubleValue  *float64
	BooleanValue *bool
	StringValue  *string
}

// DataSet is a typed table: columns carry names and types, rows carry cells.
type DataSet struct {
	NumOfColumns uint64
	Columns      []string
	Types        []uint32
	Rows         []*DataSetRow
}

// DataSetRow is one row of a DataSet.
type DataSetRow struct {
	Elements []*DataSetValue
}

// DataSetValue is a single cell of a DataSet row.
type DataSetValue struct {
	IntValue     *uint32
	LongValue    *uint64
	FloatValue   *float32
	DoubleValue  *float64
	BooleanValue *bool
	StringValue  *string
}

// Template is carried structurally; this library never interprets it.
type Template struct {
	Version      *string
	Metrics      []*Metric
	TemplateRef  *string
	IsDefinition *bool
}

func u64p(v uint64) *uint64   { return &v }
func u32p(v uint32) *uint32   { return &v }
func f32p(v float32) *float32 { return &v }
func f64p(v float64) *float64 { return &v }
func boolp(v bool) *bool      { return &v }
func strp(v string) *string   { return &v }

// Marshal encodes a Payload to Sparkplug B wire bytes.
func (p *Payload) Marshal() ([]byte, error) {
	var b []byte
	if p.Timestamp != nil {
		b = appendUint64(b, fnPayloadTimestamp, *p.Timestamp)
	}
	for _, m := range p.Metrics {
		mb, err := m.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnPayloadMetrics, mb)
	}
	if p.Seq != nil {
		b = appendUint64(b, fnPayloadSeq, *p.Seq)
	}
	return b, nil
}

// Unmarshal decodes Sparkplug B wire bytes into p.
func (p *Payload) Unmarshal(data []byte) error {
	*p = Payload{}
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		switch num {
		case fnPayloadTimestamp:
			p.Timestamp = u64p(scalar)
		case fnPayloadMetrics:
			m := &Metric{}
			if err := m.unmarshal(v); err != nil {
				return err
			}
			p.Metrics = append(p.Metrics, m)
		case fnPayloadSeq:
			p.Seq = u64p(scalar)
		}
		return nil
	})
}

func (m *Metric) marshal() ([]byte, error) {
	var b []byte
	if m.Name != nil {
		b = appendString(b, fnMetricName, *m.Name)
	}
	if m.Alias != nil {
		b = appendUint64(b, fnMetricAlias, *m.Alias)
	}
	if m.Timestamp != nil {
		b = appendUint64(b, fnMetricTimestamp, *m.Timestamp)
	}
	if m.Datatype != nil {
		b = appendUint32(b, fnMetricDatatype, *m.Datatype)
	}
	if m.IsNull != nil {
		b = appendBool(b, fnMetricIsNull, *m.IsNull)
	}
	if m.Properties != nil {
		pb, err := m.Properties.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnMetricProperties, pb)
	}
	switch {
	case m.IntValue != nil:
		b = appendUint32(b, fnMetricInt, *m.IntValue)
	case m.LongValue != nil:
		b = appendUint64(b, fnMetricLong, *m.LongValue)
	case m.FloatValue != nil:
		b = appendFloat32(b, fnMetricFloat, *m.FloatValue)
	case m.DoubleValue != nil:
		b = appendFloat64(b, fnMetricDouble, *m.DoubleValue)
	case m.BooleanValue != nil:
		b = appendBool(b, fnMetricBoolean, *m.BooleanValue)
	case m.StringValue != nil:
		b = appendString(b, fnMetricString, *m.StringValue)
	case m.BytesValue != nil:
		b = appendBytes(b, fnMetricBytes, m.BytesValue)
	case m.DatasetValue != nil:
		db, err := m.DatasetValue.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnMetricDataset, db)
	case m.TemplateValue != nil:
		tb, err := m.TemplateValue.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnMetricTemplate, tb)
	}
	return b, nil
}

func (m *Metric) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		switch num {
		case fnMetricName:
			m.Name = strp(string(v))
		case fnMetricAlias:
			m.Alias = u64p(scalar)
		case fnMetricTimestamp:
			m.Timestamp = u64p(scalar)
		case fnMetricDatatype:
			m.Datatype = u32p(uint32(scalar))
		case fnMetricIsNull:
			m.IsNull = boolp(scalar != 0)
		case fnMetricProperties:
			ps := &PropertySet{}
			if err := ps.unmarshal(v); err != nil {
				return err
			}
			m.Properties = ps
		case fnMetricInt:
			m.IntValue = u32p(uint32(scalar))
		case fnMetricLong:
			m.LongValue = u64p(scalar)
		case fnMetricFloat:
			m.FloatValue = f32p(math.Float32frombits(uint32(scalar)))
		case fnMetricDouble:
			m.DoubleValue = f64p(math.Float64frombits(scalar))
		case fnMetricBoolean:
			m.BooleanValue = boolp(scalar != 0)
		case fnMetricString:
			m.StringValue = strp(string(v))
		case fnMetricBytes:
			m.BytesValue = append([]byte(nil), v...)
		case fnMetricDataset:
			ds := &DataSet{}
			if err := ds.unmarshal(v); err != nil {
				return err
			}
			m.DatasetValue = ds
		case fnMetricTemplate:
			t := &Template{}
			if err := t.unmarshal(v); err != nil {
				return err
			}
			m.TemplateValue = t
		}
		return nil
	})
}

func (ps *PropertySet) marshal() ([]byte, error) {
	var b []byte
	for _, k := range ps.Keys {
		b = appendString(b, fnPropSetKeys, k)
	}
	for _, v := range ps.Values {
		vb, err := v.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnPropSetValues, vb)
	}
	return b, nil
}

func (ps *PropertySet) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		switch num {
		case fnPropSetKeys:
			ps.Keys = append(ps.Keys, string(v))
		case fnPropSetValues:
			pv := &PropertyValue{}
			if err := pv.unmarshal(v); err != nil {
				return err
			}
			ps.Values = append(ps.Values, pv)
		}
		return nil
	})
}

func (pv *PropertyValue) marshal() ([]byte, error) {
	b := appendUint32(nil, fnPropValType, pv.Type)
	if pv.IsNull != nil {
		b = appendBool(b, fnPropValIsNull, *pv.IsNull)
	}
	switch {
	case pv.IntValue != nil:
		b = appendUint32(b, fnPropValInt, *pv.IntValue)
	case pv.LongValue != nil:
		b = appendUint64(b, fnPropValLong, *pv.LongValue)
	case pv.FloatValue != nil:
		b = appendFloat32(b, fnPropValFloat, *pv.FloatValue)
	case pv.DoubleValue != nil:
		b = appendFloat64(b, fnPropValDouble, *pv.DoubleValue)
	case pv.BooleanValue != nil:
		b = appendBool(b, fnPropValBoolean, *pv.BooleanValue)
	case pv.StringValue != nil:
		b = appendString(b, fnPropValString, *pv.StringValue)
	}
	return b, nil
}

func (pv *PropertyValue) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		switch num {
		case fnPropValType:
			pv.Type = uint32(scalar)
		case fnPropValIsNull:
			pv.IsNull = boolp(scalar != 0)
		case fnPropValInt:
			pv.IntValue = u32p(uint32(scalar))
		case fnPropValLong:
			pv.LongValue = u64p(scalar)
		case fnPropValFloat:
			pv.FloatValue = f32p(math.Float32frombits(uint32(scalar)))
		case fnPropValDouble:
			pv.DoubleValue = f64p(math.Float64frombits(scalar))
		case fnPropValBoolean:
			pv.BooleanValue = boolp(scalar != 0)
		case fnPropValString:
			pv.StringValue = strp(string(v))
		}
		return nil
	})
}

func (ds *DataSet) marshal() ([]byte, error) {
	b := appendUint64(nil, fnDataSetNumCols, ds.NumOfColumns)
	for _, c := range ds.Columns {
		b = appendString(b, fnDataSetColumns, c)
	}
	for _, t := range ds.Types {
		b = appendUint32(b, fnDataSetTypes, t)
	}
	for _, r := range ds.Rows {
		rb, err := r.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnDataSetRows, rb)
	}
	return b, nil
}

func (ds *DataSet) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		switch num {
		case fnDataSetNumCols:
			ds.NumOfColumns = scalar
		case fnDataSetColumns:
			ds.Columns = append(ds.Columns, string(v))
		case fnDataSetTypes:
			ds.Types = append(ds.Types, uint32(scalar))
		case fnDataSetRows:
			row := &DataSetRow{}
			if err := row.unmarshal(v); err != nil {
				return err
			}
			ds.Rows = append(ds.Rows, row)
		}
		return nil
	})
}

func (r *DataSetRow) marshal() ([]byte, error) {
	var b []byte
	for _, e := range r.Elements {
		eb, err := e.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnRowElements, eb)
	}
	return b, nil
}

func (r *DataSetRow) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		if num == fnRowElements {
			e := &DataSetValue{}
			if err := e.unmarshal(v); err != nil {
				return err
			}
			r.Elements = append(r.Elements, e)
		}
		return nil
	})
}

func (v *DataSetValue) marshal() ([]byte, error) {
	var b []byte
	switch {
	case v.IntValue != nil:
		b = appendUint32(b, fnDSValInt, *v.IntValue)
	case v.LongValue != nil:
		b = appendUint64(b, fnDSValLong, *v.LongValue)
	case v.FloatValue != nil:
		b = appendFloat32(b, fnDSValFloat, *v.FloatValue)
	case v.DoubleValue != nil:
		b = appendFloat64(b, fnDSValDouble, *v.DoubleValue)
	case v.BooleanValue != nil:
		b = appendBool(b, fnDSValBoolean, *v.BooleanValue)
	case v.StringValue != nil:
		b = appendString(b, fnDSValString, *v.StringValue)
	}
	return b, nil
}

func (v *DataSetValue) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, raw []byte, scalar uint64) error {
		switch num {
		case fnDSValInt:
			v.IntValue = u32p(uint32(scalar))
		case fnDSValLong:
			v.LongValue = u64p(scalar)
		case fnDSValFloat:
			v.FloatValue = f32p(math.Float32frombits(uint32(scalar)))
		case fnDSValDouble:
			v.DoubleValue = f64p(math.Float64frombits(scalar))
		case fnDSValBoolean:
			v.BooleanValue = boolp(scalar != 0)
		case fnDSValString:
			v.StringValue = strp(string(raw))
		}
		return nil
	})
}

func (t *Template) marshal() ([]byte, error) {
	var b []byte
	if t.Version != nil {
		b = appendString(b, fnTemplateVersion, *t.Version)
	}
	for _, m := range t.Metrics {
		mb, err := m.marshal()
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, fnTemplateMetrics, mb)
	}
	if t.TemplateRef != nil {
		b = appendString(b, fnTemplateRef, *t.TemplateRef)
	}
	if t.IsDefinition != nil {
		b = appendBool(b, fnTemplateIsDefinition, *t.IsDefinition)
	}
	return b, nil
}

func (t *Template) unmarshal(data []byte) error {
	return forEachField(data, func(num protowire.Number, typ protowire.Type, v []byte, scalar uint64) error {
		switch num {
		case fnTemplateVersion:
			t.Version = strp(string(v))
		case fnTemplateMetrics:
			m := &Metric{}
			if err := m.unmarshal(v); err != nil {
				return err
			}
			t.Metrics = append(t.Metrics, m)
		case fnTemplateRef:
			t.TemplateRef = strp(string(v))
		case fnTemplateIsDefinition:
			t.IsDefinition = boolp(scalar != 0)
		}
		return nil
	})
}

// --- low-level wire helpers ---

func appendUint64(b []byte, field protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, field, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendUint32(b []byte, field protowire.Number, v uint32) []byte {
	return appendUint64(b, field, uint64(v))
}

func appendBool(b []byte, field protowire.Number, v bool) []byte {
	var n uint64
	if v {
		n = 1
	}
	return appendUint64(b, field, n)
}

func appendFloat32(b []byte, field protowire.Number, v float32) []byte {
	b = protowire.AppendTag(b, field, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, math.Float32bits(v))
}

func appendFloat64(b []byte, field protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, field, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendString(b []byte, field protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendBytes(b, []byte(v))
}

func appendBytes(b []byte, field protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessage(b []byte, field protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, field, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// forEachField walks the top-level fields of a wire-encoded message,
// handing each one to fn along with a scalar view (valid for Varint and
// both Fixed types) and a raw byte view (valid for BytesType).
func forEachField(data []byte, fn func(num protowire.Number, typ protowire.Type, raw []byte, scalar uint64) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("sparkplugpb: invalid tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var raw []byte
		var scalar uint64
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("sparkplugpb: invalid varint: %w", protowire.ParseError(n))
			}
			scalar = v
			data = data[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("sparkplugpb: invalid fixed32: %w", protowire.ParseError(n))
			}
			scalar = uint64(v)
			data = data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("sparkplugpb: invalid fixed64: %w", protowire.ParseError(n))
			}
			scalar = v
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("sparkplugpb: invalid bytes: %w", protowire.ParseError(n))
			}
			raw = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("sparkplugpb: invalid field: %w", protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}
		if err := fn(num, typ, raw, scalar); err != nil {
			return err
		}
	}
	return nil
}
