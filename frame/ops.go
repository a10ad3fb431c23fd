package frame

import (
	"fmt"
	"math"

	"github.com/dot5enko/rethinking-bridge/schema"
	dataframe "github.com/rocketlaunchr/dataframe-go"
)

func gatherSeries(src dataframe.Series, rows []int) (dataframe.Series, error) {

	init := &dataframe.SeriesInit{Capacity: len(rows)}

	switch s := src.(type) {
	case *dataframe.SeriesFloat64:
		values := make([]float64, len(rows))
		for idx, row := range rows {
			values[idx] = s.Values[row]
		}
		return dataframe.NewSeriesFloat64(s.Name(), init, values), nil
	case *dataframe.SeriesInt64:
		out := dataframe.NewSeriesInt64(s.Name(), init)
		for _, row := range rows {
			out.Append(s.Value(row))
		}
		return out, nil
	case *dataframe.SeriesString:
		out := dataframe.NewSeriesString(s.Name(), init)
		for _, row := range rows {
			out.Append(s.Value(row))
		}
		return out, nil
	case *dataframe.SeriesGeneric:
		out := dataframe.NewSeriesGeneric(s.Name(), false, init)
		for _, row := range rows {
			out.Append(s.Value(row))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported series %T", src)
	}
}

// Filter returns a new frame holding the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) (*Frame, error) {

	rows := []int{}
	for row := 0; row < f.NRows(); row++ {
		if keep(row) {
			rows = append(rows, row)
		}
	}

	series := make([]dataframe.Series, len(f.DF.Series))
	for idx, it := range f.DF.Series {
		gathered, err := gatherSeries(it, rows)
		if err != nil {
			return nil, err
		}
		series[idx] = gathered
	}

	columns := make([]schema.Column, len(f.Schema.Columns))
	copy(columns, f.Schema.Columns)

	return newFrame(f.Schema.Name, columns, series)
}

// WithFloat64 returns a new frame with the named numeric column added or replaced.
func (f *Frame) WithFloat64(name string, values []float64) (*Frame, error) {

	if f.NCols() > 0 && len(values) != f.NRows() {
		return nil, fmt.Errorf("column '%s' has %d rows, frame has %d", name, len(values), f.NRows())
	}

	columns := make([]schema.Column, 0, len(f.Schema.Columns)+1)
	series := make([]dataframe.Series, 0, len(f.DF.Series)+1)
	replaced := false

	for idx, col := range f.Schema.Columns {
		if col.Name == name {
			columns = append(columns, schema.Column{Name: name, Type: schema.Float64FieldType})
			series = append(series, float64Series(name, values))
			replaced = true
			continue
		}
		columns = append(columns, col)
		series = append(series, f.DF.Series[idx].Copy())
	}

	if !replaced {
		columns = append(columns, schema.Column{Name: name, Type: schema.Float64FieldType})
		series = append(series, float64Series(name, values))
	}

	return newFrame(f.Schema.Name, columns, series)
}

type ColumnSummary struct {
	Name   string
	Type   schema.FieldType
	Bounds schema.BoundsFloat
	Mean   float64
	Nulls  int
}

// Describe summarises every numeric column.
func (f *Frame) Describe() []ColumnSummary {

	result := []ColumnSummary{}

	for _, col := range f.Schema.Columns {
		if !col.Type.IsNumeric() {
			continue
		}

		values, err := f.Float64s(col.Name)
		if err != nil {
			continue
		}

		summary := ColumnSummary{
			Name:   col.Name,
			Type:   col.Type,
			Bounds: schema.GetMaxMinBoundsFloat(values),
			Mean:   math.NaN(),
		}

		sum := 0.0
		present := 0
		for _, v := range values {
			if math.IsNaN(v) {
				summary.Nulls++
				continue
			}
			sum += v
			present++
		}
		if present > 0 {
			summary.Mean = sum / float64(present)
		}

		result = append(result, summary)
	}

	return result
}
