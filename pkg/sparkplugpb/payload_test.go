package sparkplugpb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	name := "Temp"
	alias := uint64(7)
	ts := uint64(123456)
	datatype := uint32(10) // Double
	dv := 21.5
	seq := uint64(42)

	p := &Payload{
		Timestamp: &ts,
		Seq:       &seq,
		Metrics: []*Metric{
			{Name: &name, Alias: &alias, Timestamp: &ts, Datatype: &datatype, DoubleValue: &dv},
		},
	}

	data, err := p.Marshal()
	require.NoError(t, err)

	got := &Payload{}
	require.NoError(t, got.Unmarshal(data))

	require.NotNil(t, got.Timestamp)
	assert.Equal(t, ts, *got.Timestamp)
	require.NotNil(t, got.Seq)
	assert.Equal(t, seq, *got.Seq)
	require.Len(t, got.Metrics, 1)
	require.NotNil(t, got.Metrics[0].Name)
	assert.Equal(t, name, *got.Metrics[0].Name)
	require.NotNil(t, got.Metrics[0].Alias)
	assert.Equal(t, alias, *got.Metrics[0].Alias)
	require.NotNil(t, got.Metrics[0].DoubleValue)
	assert.Equal(t, dv, *got.Metrics[0].DoubleValue)
}

func TestPropertySetRoundTrip(t *testing.T) {
	qualityType := uint32(3) // Int32
	qv := uint32(192)
	ps := &PropertySet{
		Keys: []string{"Quality"},
		Values: []*PropertyValue{
			{Type: qualityType, IntValue: &qv},
		},
	}
	data, err := ps.marshal()
	require.NoError(t, err)

	got := &PropertySet{}
	require.NoError(t, got.unmarshal(data))
	require.Len(t, got.Keys, 1)
	assert.Equal(t, "Quality", got.Keys[0])
	require.Len(t, got.Values, 1)
	require.NotNil(t, got.Values[0].IntValue)
	assert.Equal(t, qv, *got.Values[0].IntValue)
}

func TestDataSetRoundTrip(t *testing.T) {
	iv := uint32(5)
	ds := &DataSet{
		NumOfColumns: 1,
		Columns:      []string{"id"},
		Types:        []uint32{3},
		Rows: []*DataSetRow{
			{Elements: []*DataSetValue{{IntValue: &iv}}},
		},
	}
	data, err := ds.marshal()
	require.NoError(t, err)

	got := &DataSet{}
	require.NoError(t, got.unmarshal(data))
	assert.Equal(t, ds.Columns, got.Columns)
	assert.Equal(t, ds.Types, got.Types)
	require.Len(t, got.Rows, 1)
	require.Len(t, got.Rows[0].Elements, 1)
	require.NotNil(t, got.Rows[0].Elements[0].IntValue)
	assert.Equal(t, iv, *got.Rows[0].Elements[0].IntValue)
}

func TestEmptyPayloadRoundTrip(t *testing.T) {
	p := &Payload{}
	data, err := p.Marshal()
	require.NoError(t, err)
	got := &Payload{}
	require.NoError(t, got.Unmarshal(data))
	assert.Nil(t, got.Timestamp)
	assert.Nil(t, got.Seq)
	assert.Empty(t, got.Metrics)
}
