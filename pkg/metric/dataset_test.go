package metric

import (
	"testing"

	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetRoundTrip(t *testing.T) {
	ds, err := NewDataset([]string{"id", "value"}, []Datatype{Int32, Double})
	require.NoError(t, err)
	require.NoError(t, ds.AddRow(int64(1), 3.5))
	require.NoError(t, ds.AddRow(int64(2), 4.5))

	pb, err := ds.toWire()
	require.NoError(t, err)

	back, err := datasetFromWire(pb)
	require.NoError(t, err)
	assert.Equal(t, ds.ColumnNames(), back.ColumnNames())
	assert.Equal(t, ds.ColumnTypes(), back.ColumnTypes())
	require.Equal(t, 2, back.NumRows())
	assert.Equal(t, []interface{}{int64(1), 3.5}, back.Row(0))
	assert.Equal(t, []interface{}{int64(2), 4.5}, back.Row(1))
}

func TestNewDatasetRejectsMismatchedColumnCounts(t *testing.T) {
	_, err := NewDataset([]string{"a", "b"}, []Datatype{Int32})
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestNewDatasetRejectsZeroColumns(t *testing.T) {
	_, err := NewDataset(nil, nil)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestDatasetFromWireRejectsZeroColumns(t *testing.T) {
	_, err := datasetFromWire(&sparkplugpb.DataSet{})
	require.Error(t, err)
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestNewDatasetRejectsNonScalarColumnType(t *testing.T) {
	_, err := NewDataset([]string{"nested"}, []Datatype{DataSet})
	require.Error(t, err)
}

func TestAddRowRejectsArityMismatch(t *testing.T) {
	ds, err := NewDataset([]string{"a"}, []Datatype{Int32})
	require.NoError(t, err)
	err = ds.AddRow(int64(1), int64(2))
	require.Error(t, err)
}
