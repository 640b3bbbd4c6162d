// Package metric implements the Sparkplug B metric model: the Datatype
// enumeration, the typed Value union, the wire codec between Value and the
// sparkplugpb containers, and the Metric/Property types that track
// change-since-last-sent state and dispatch inbound commands.
package metric

import "fmt"

// Datatype is the Sparkplug B metric datatype enumeration (§6).
type Datatype uint32

const (
	Unknown Datatype = 0
	Int8    Datatype = 1
	Int16   Datatype = 2
	Int32   Datatype = 3
	Int64   Datatype = 4
	UInt8   Datatype = 5
	UInt16  Datatype = 6
	UInt32  Datatype = 7
	UInt64  Datatype = 8
	Float   Datatype = 9
	Double  Datatype = 10
	Boolean Datatype = 11
	String  Datatype = 12
	// DateTime values are milliseconds since the Unix epoch.
	DateTime        Datatype = 13
	Text            Datatype = 14
	UUID            Datatype = 15
	DataSet         Datatype = 16
	Bytes           Datatype = 17
	File            Datatype = 18
	Template        Datatype = 19
	PropertySet     Datatype = 20
	PropertySetList Datatype = 21
)

func (d Datatype) String() string {
	switch d {
	case Unknown:
		return "Unknown"
	case Int8:
		return "Int8"
	case Int16:
		return "Int16"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case UInt8:
		return "UInt8"
	case UInt16:
		return "UInt16"
	case UInt32:
		return "UInt32"
	case UInt64:
		return "UInt64"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case DateTime:
		return "DateTime"
	case Text:
		return "Text"
	case UUID:
		return "UUID"
	case DataSet:
		return "DataSet"
	case Bytes:
		return "Bytes"
	case File:
		return "File"
	case Template:
		return "Template"
	case PropertySet:
		return "PropertySet"
	case PropertySetList:
		return "PropertySetList"
	default:
		return fmt.Sprintf("Datatype(%d)", uint32(d))
	}
}

// IsSignedInteger reports whether d is one of the signed integer datatypes,
// which require the two's-complement reinterpret dance on the wire (§4.1).
func (d Datatype) IsSignedInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsInteger reports whether d is any integer datatype (signed or unsigned).
func (d Datatype) IsInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	default:
		return false
	}
}

// intRange holds the nominal [min, max] of an integer datatype as
// int64/uint64, reported through the wider of the two depending on sign.
type intRange struct {
	signed     bool
	minSigned  int64
	maxSigned  int64
	maxUnsigned uint64
}

var intRanges = map[Datatype]intRange{
	Int8:   {signed: true, minSigned: -128, maxSigned: 127},
	Int16:  {signed: true, minSigned: -32768, maxSigned: 32767},
	Int32:  {signed: true, minSigned: -2147483648, maxSigned: 2147483647},
	Int64:  {signed: true, minSigned: -9223372036854775808, maxSigned: 9223372036854775807},
	UInt8:  {signed: false, maxUnsigned: 255},
	UInt16: {signed: false, maxUnsigned: 65535},
	UInt32: {signed: false, maxUnsigned: 4294967295},
	UInt64: {signed: false, maxUnsigned: 18446744073709551615},
}

// clampSigned saturates v to d's nominal range. d must be a signed integer
// datatype.
func clampSigned(d Datatype, v int64) int64 {
	r := intRanges[d]
	if v < r.minSigned {
		return r.minSigned
	}
	if v > r.maxSigned {
		return r.maxSigned
	}
	return v
}

// clampUnsigned saturates v to d's nominal range. d must be an unsigned
// integer datatype.
func clampUnsigned(d Datatype, v uint64) uint64 {
	r := intRanges[d]
	if v > r.maxUnsigned {
		return r.maxUnsigned
	}
	return v
}

// datatypeForGoValue infers a Datatype for a bare Go value, used when a
// Metric is constructed with datatype Unknown or a Property is attached
// with WithProperty (§4.2).
func datatypeForGoValue(v interface{}) (Datatype, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int64, true
	case float32, float64:
		return Double, true
	case bool:
		return Boolean, true
	case string:
		return String, true
	case []byte:
		return Bytes, true
	default:
		return Unknown, false
	}
}
