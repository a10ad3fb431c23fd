package frame

import (
	"fmt"
	"math"
	"strings"

	"github.com/dot5enko/rethinking-bridge/schema"
	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// Frame is the host-native table. Schema mirrors DF column by column and
// keeps the interchange types that dataframe-go does not distinguish
// (categorical vs string, int32 vs int64).
type Frame struct {
	Schema schema.Schema
	DF     *dataframe.DataFrame
}

func newFrame(name string, columns []schema.Column, series []dataframe.Series) (*Frame, error) {

	if len(columns) != len(series) {
		return nil, fmt.Errorf("schema has %d columns, got %d series", len(columns), len(series))
	}

	seen := map[string]bool{}
	rows := -1

	for idx, it := range series {
		col := columns[idx]

		// dataframe-go compares series names case-insensitively
		key := strings.ToLower(col.Name)
		if seen[key] {
			return nil, &schema.ConversionError{Column: col.Name, Reason: "duplicate column name"}
		}
		seen[key] = true

		if rows == -1 {
			rows = it.NRows()
		} else if it.NRows() != rows {
			return nil, fmt.Errorf("column '%s' has %d rows, expected %d", col.Name, it.NRows(), rows)
		}
	}

	return &Frame{
		Schema: schema.Schema{Name: name, Columns: columns},
		DF:     dataframe.NewDataFrame(series...),
	}, nil
}

// FromFloat64Columns builds a frame of numeric columns. All columns must have equal length.
func FromFloat64Columns(name string, names []string, values [][]float64) (*Frame, error) {

	if len(names) != len(values) {
		return nil, fmt.Errorf("got %d column names for %d columns", len(names), len(values))
	}

	columns := make([]schema.Column, len(names))
	series := make([]dataframe.Series, len(names))

	for idx, colName := range names {
		columns[idx] = schema.Column{Name: colName, Type: schema.Float64FieldType}
		series[idx] = float64Series(colName, values[idx])
	}

	return newFrame(name, columns, series)
}

func float64Series(name string, values []float64) *dataframe.SeriesFloat64 {
	return dataframe.NewSeriesFloat64(name, &dataframe.SeriesInit{Capacity: len(values)}, values)
}

func (f *Frame) NRows() int {
	if len(f.DF.Series) == 0 {
		return 0
	}
	return f.DF.NRows()
}

func (f *Frame) NCols() int {
	return len(f.Schema.Columns)
}

func (f *Frame) Names() []string {
	return f.Schema.Names()
}

func (f *Frame) column(name string) (dataframe.Series, schema.Column, error) {
	idx := f.Schema.Index(name)
	if idx == -1 {
		return nil, schema.Column{}, fmt.Errorf("column '%s' does not exist", name)
	}
	return f.DF.Series[idx], f.Schema.Columns[idx], nil
}

// Float64s returns a copy of a numeric column widened to float64. Nulls become NaN.
func (f *Frame) Float64s(name string) ([]float64, error) {

	series, col, err := f.column(name)
	if err != nil {
		return nil, err
	}

	switch s := series.(type) {
	case *dataframe.SeriesFloat64:
		out := make([]float64, len(s.Values))
		copy(out, s.Values)
		return out, nil
	case *dataframe.SeriesInt64:
		out := make([]float64, s.NRows())
		for i := range out {
			if v := s.Value(i); v == nil {
				out[i] = math.NaN()
			} else {
				out[i] = float64(v.(int64))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("column '%s' of type %s is not numeric", name, col.Type.String())
	}
}

// Strings returns a copy of a string or categorical column. Nulls become "".
func (f *Frame) Strings(name string) ([]string, error) {

	series, col, err := f.column(name)
	if err != nil {
		return nil, err
	}

	s, ok := series.(*dataframe.SeriesString)
	if !ok {
		return nil, fmt.Errorf("column '%s' of type %s is not a string column", name, col.Type.String())
	}

	out := make([]string, s.NRows())
	for i := range out {
		if v := s.Value(i); v != nil {
			out[i] = v.(string)
		}
	}
	return out, nil
}

// Value returns a single cell, nil for nulls.
func (f *Frame) Value(row int, name string) (any, error) {
	series, _, err := f.column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= series.NRows() {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, series.NRows())
	}
	return series.Value(row), nil
}

func (f *Frame) String() string {
	if len(f.DF.Series) == 0 {
		return fmt.Sprintf("%s: empty frame", f.Schema.Name)
	}
	return f.DF.String()
}
