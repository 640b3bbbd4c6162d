package metric

import (
	"fmt"
	"reflect"
)

// Value cells are represented as bare Go values rather than a closed sum
// type: int64/uint64 for integer datatypes, float32/float64, bool, string,
// []byte, *Dataset, or a passthrough *sparkplugpb.Template. A nil value
// always means "null" regardless of datatype (§4.1). Construction and
// change_value are the type-checked boundary referred to throughout this
// package: toInt64/toUint64/etc. below check that a value converts, and the
// value is then stored exactly as the caller passed it.

func toInt64(v interface{}) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("metric: value %v (%T) is not an integer", v, v)
	}
}

func toUint64(v interface{}) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), nil
	default:
		return 0, fmt.Errorf("metric: value %v (%T) is not an integer", v, v)
	}
}

func toFloat32(v interface{}) (float32, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return float32(rv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float32(rv.Int()), nil
	default:
		return 0, fmt.Errorf("metric: value %v (%T) is not numeric", v, v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	default:
		return 0, fmt.Errorf("metric: value %v (%T) is not numeric", v, v)
	}
}

func toBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("metric: value %v (%T) is not a bool", v, v)
	}
	return b, nil
}

func toString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("metric: value %v (%T) is not a string", v, v)
	}
	return s, nil
}

func toBytes(v interface{}) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("metric: value %v (%T) is not []byte", v, v)
	}
	return b, nil
}

// valuesEqual reports whether two decoded/stored values are equal, used to
// implement changed_since_last_sent (§3). Byte slices compare by content.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ab, aIsBytes := a.([]byte)
	bb, bIsBytes := b.([]byte)
	if aIsBytes && bIsBytes {
		if len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	}
	return a == b
}
