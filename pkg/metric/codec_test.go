package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		dt   Datatype
		in   interface{}
	}{
		{"int8", Int8, int64(-12)},
		{"int16", Int16, int64(-1000)},
		{"int32", Int32, int64(-100000)},
		{"int64", Int64, int64(-1 << 40)},
		{"uint8", UInt8, uint64(200)},
		{"uint16", UInt16, uint64(60000)},
		{"uint32", UInt32, uint64(3000000000)},
		{"uint64", UInt64, uint64(1 << 60)},
		{"float", Float, float32(1.5)},
		{"double", Double, float64(2.25)},
		{"bool", Boolean, true},
		{"string", String, "hello"},
		{"bytes", Bytes, []byte{1, 2, 3}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, err := encode(c.dt, c.in, Policy{})
			require.NoError(t, err)
			got, err := decode(w, c.dt)
			require.NoError(t, err)
			assert.Equal(t, c.in, got)
		})
	}
}

func TestEncodeNilIsNull(t *testing.T) {
	w, err := encode(Int32, nil, Policy{})
	require.NoError(t, err)
	assert.True(t, w.isNull)

	v, err := decode(w, Int32)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSignedIntegerReinterpret(t *testing.T) {
	// -1 as Int32 must round-trip through the uint32 two's-complement
	// encoding used for int_value on the wire.
	w, err := encode(Int32, int64(-1), Policy{})
	require.NoError(t, err)
	require.NotNil(t, w.intValue)
	assert.Equal(t, uint32(0xFFFFFFFF), *w.intValue)

	v, err := decode(w, Int32)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)
}

func TestSaturatingClampOnDecode(t *testing.T) {
	// A long_value larger than Int32's nominal range, decoded as Int32,
	// must clamp rather than silently truncate or overflow.
	raw := uint64(1) << 40
	w := wireValue{longValue: &raw}
	v, err := decode(w, Int32)
	require.NoError(t, err)
	assert.Equal(t, int64(2147483647), v)
}

func TestU32InLongPolicySwitch(t *testing.T) {
	w, err := encode(UInt32, uint64(4000000000), Policy{U32InLong: false})
	require.NoError(t, err)
	assert.NotNil(t, w.intValue)
	assert.Nil(t, w.longValue)

	w2, err := encode(UInt32, uint64(4000000000), Policy{U32InLong: true})
	require.NoError(t, err)
	assert.Nil(t, w2.intValue)
	require.NotNil(t, w2.longValue)
	assert.Equal(t, uint64(4000000000), *w2.longValue)
}

func TestPermissiveDecodeAcceptsCrossField(t *testing.T) {
	// A UInt32 metric whose wire value arrived in long_value (the
	// U32InLong-enabled producer's form) must still decode for a consumer
	// that hasn't enabled the policy switch.
	raw := uint64(4000000000)
	w := wireValue{longValue: &raw}
	v, err := decode(w, UInt32)
	require.NoError(t, err)
	assert.Equal(t, uint64(4000000000), v)

	// Boolean decode permissively accepts an int_value of 0/1 too.
	one := uint32(1)
	wb := wireValue{intValue: &one}
	vb, err := decode(wb, Boolean)
	require.NoError(t, err)
	assert.Equal(t, true, vb)
}

func TestDecodeMissingFieldIsDecodeError(t *testing.T) {
	_, err := decode(wireValue{}, Int32)
	require.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestEncodeTypeMismatchIsConfigError(t *testing.T) {
	_, err := encode(Int32, "not an int", Policy{})
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}
