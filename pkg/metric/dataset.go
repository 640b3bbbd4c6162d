package metric

import (
	"fmt"

	"github.com/sparkplug-edge/edge-client/pkg/sparkplugpb"
)

// Dataset is the Go-native form of a Sparkplug B DataSet value: a fixed set
// of typed, named columns and zero or more rows of scalar values.
//
// The column-name field is spelled columnNames here, matching the protobuf
// schema's "columns" field name rather than the "_columns_names" typo that
// ships in some reference implementations of this message.
type Dataset struct {
	columnNames []string
	columnTypes []Datatype
	rows        [][]interface{}
}

// NewDataset builds an empty Dataset with the given column names and types.
// Construction fails fatally (§7: configuration error) if the two slices
// differ in length or a column type is not a primitive scalar datatype.
func NewDataset(columnNames []string, columnTypes []Datatype) (*Dataset, error) {
	if len(columnNames) == 0 {
		return nil, &ConfigError{Reason: "dataset must have at least one column"}
	}
	if len(columnNames) != len(columnTypes) {
		return nil, &ConfigError{Reason: "dataset column name/type count mismatch"}
	}
	for _, t := range columnTypes {
		if t == DataSet || t == Template || t == PropertySet || t == PropertySetList || t == Unknown {
			return nil, &ConfigError{Reason: fmt.Sprintf("dataset column type %s is not a scalar datatype", t)}
		}
	}
	names := append([]string(nil), columnNames...)
	types := append([]Datatype(nil), columnTypes...)
	return &Dataset{columnNames: names, columnTypes: types}, nil
}

func (ds *Dataset) ColumnNames() []string { return append([]string(nil), ds.columnNames...) }
func (ds *Dataset) ColumnTypes() []Datatype { return append([]Datatype(nil), ds.columnTypes...) }
func (ds *Dataset) NumRows() int            { return len(ds.rows) }

// Row returns a copy of row i's values, in column order.
func (ds *Dataset) Row(i int) []interface{} {
	return append([]interface{}(nil), ds.rows[i]...)
}

// AddRow appends a row of values, one per column, in column order.
func (ds *Dataset) AddRow(values ...interface{}) error {
	if len(values) != len(ds.columnTypes) {
		return &ConfigError{Reason: "dataset row value count does not match column count"}
	}
	row := append([]interface{}(nil), values...)
	ds.rows = append(ds.rows, row)
	return nil
}

func (ds *Dataset) toWire() (*sparkplugpb.DataSet, error) {
	types := make([]uint32, len(ds.columnTypes))
	for i, t := range ds.columnTypes {
		types[i] = uint32(t)
	}
	pb := &sparkplugpb.DataSet{
		NumOfColumns: uint64(len(ds.columnNames)),
		Columns:      append([]string(nil), ds.columnNames...),
		Types:        types,
	}
	for _, row := range ds.rows {
		pbRow := &sparkplugpb.DataSetRow{Elements: make([]*sparkplugpb.DataSetValue, len(row))}
		for i, v := range row {
			wv, err := encode(ds.columnTypes[i], v, Policy{})
			if err != nil {
				return nil, err
			}
			elem := &sparkplugpb.DataSetValue{}
			wv.applyToDataSetValuePB(elem)
			pbRow.Elements[i] = elem
		}
		pb.Rows = append(pb.Rows, pbRow)
	}
	return pb, nil
}

func datasetFromWire(pb *sparkplugpb.DataSet) (*Dataset, error) {
	if len(pb.Columns) == 0 {
		return nil, &DecodeError{Datatype: DataSet, Reason: "dataset must have at least one column"}
	}
	if len(pb.Columns) != len(pb.Types) {
		return nil, &DecodeError{Datatype: DataSet, Reason: "column name/type count mismatch on the wire"}
	}
	types := make([]Datatype, len(pb.Types))
	for i, t := range pb.Types {
		types[i] = Datatype(t)
	}
	ds := &Dataset{
		columnNames: append([]string(nil), pb.Columns...),
		columnTypes: types,
	}
	for _, pbRow := range pb.Rows {
		if len(pbRow.Elements) != len(ds.columnTypes) {
			return nil, &DecodeError{Datatype: DataSet, Reason: "row element count does not match column count"}
		}
		row := make([]interface{}, len(pbRow.Elements))
		for i, elem := range pbRow.Elements {
			wv := wireFromDataSetValuePB(elem)
			v, err := decode(wv, ds.columnTypes[i])
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}
