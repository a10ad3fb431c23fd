package frame

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/dot5enko/rethinking-bridge/schema"
	dataframe "github.com/rocketlaunchr/dataframe-go"
)

type valueArray[T any] interface {
	Len() int
	IsNull(i int) bool
	Value(i int) T
}

type appender interface {
	Append(val interface{}, opts ...dataframe.Options) int
}

// appendValues pushes arr into s through Append so the series keeps its nil count.
func appendValues[T any](s appender, arr valueArray[T], conv func(T) any) {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			s.Append(nil)
		} else {
			s.Append(conv(arr.Value(i)))
		}
	}
}

func toFloat64[T float32 | float64](v T) any { return float64(v) }

func toInt64[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32](v T) any { return int64(v) }

func fromFloat16(v float16.Num) any { return float64(v.Float32()) }

func asIs[T any](v T) any { return v }

// FromRecord converts a single interchange record batch into a frame.
func FromRecord(name string, rec arrow.Record) (*Frame, error) {
	return FromRecords(name, rec.Schema(), []arrow.Record{rec})
}

// FromRecords converts a sequence of record batches sharing one schema into a frame.
// Column order follows the interchange schema.
func FromRecords(name string, arrowSchema *arrow.Schema, records []arrow.Record) (*Frame, error) {

	hostSchema, err := schema.FromArrow(name, arrowSchema)
	if err != nil {
		return nil, err
	}

	totalRows := 0
	for _, rec := range records {
		if !rec.Schema().Equal(arrowSchema) {
			return nil, &schema.ConversionError{Reason: "record batches do not share a schema"}
		}
		totalRows += int(rec.NumRows())
	}

	series := make([]dataframe.Series, len(hostSchema.Columns))

	for idx, col := range hostSchema.Columns {

		chunks := make([]arrow.Array, len(records))
		for recIdx, rec := range records {
			chunk := rec.Column(idx)
			if int64(chunk.Len()) != rec.NumRows() {
				return nil, fmt.Errorf("column '%s' has %d rows in a batch of %d", col.Name, chunk.Len(), rec.NumRows())
			}
			chunks[recIdx] = chunk
		}

		s, convErr := seriesFromChunks(col, chunks, totalRows)
		if convErr != nil {
			return nil, convErr
		}

		series[idx] = s
	}

	return newFrame(name, hostSchema.Columns, series)
}

func unexpectedArray(col schema.Column, arr arrow.Array) error {
	return &schema.ConversionError{
		Column: col.Name,
		Type:   arr.DataType().String(),
		Reason: fmt.Sprintf("unexpected array %T for host type %s", arr, col.Type.String()),
	}
}

func seriesFromChunks(col schema.Column, chunks []arrow.Array, rows int) (dataframe.Series, error) {

	init := &dataframe.SeriesInit{Capacity: rows}

	switch col.Type {
	case schema.Float64FieldType:
		s := dataframe.NewSeriesFloat64(col.Name, init)
		for _, chunk := range chunks {
			switch arr := chunk.(type) {
			case *array.Float64:
				appendValues(s, arr, toFloat64[float64])
			case *array.Float32:
				appendValues(s, arr, toFloat64[float32])
			case *array.Float16:
				appendValues(s, arr, fromFloat16)
			default:
				return nil, unexpectedArray(col, chunk)
			}
		}
		return s, nil

	case schema.Int32FieldType, schema.Int64FieldType:
		s := dataframe.NewSeriesInt64(col.Name, init)
		for _, chunk := range chunks {
			switch arr := chunk.(type) {
			case *array.Int64:
				appendValues(s, arr, toInt64[int64])
			case *array.Int32:
				appendValues(s, arr, toInt64[int32])
			case *array.Int16:
				appendValues(s, arr, toInt64[int16])
			case *array.Int8:
				appendValues(s, arr, toInt64[int8])
			case *array.Uint8:
				appendValues(s, arr, toInt64[uint8])
			case *array.Uint16:
				appendValues(s, arr, toInt64[uint16])
			case *array.Uint32:
				appendValues(s, arr, toInt64[uint32])
			default:
				return nil, unexpectedArray(col, chunk)
			}
		}
		return s, nil

	case schema.StringFieldType:
		s := dataframe.NewSeriesString(col.Name, init)
		for _, chunk := range chunks {
			switch arr := chunk.(type) {
			case *array.String:
				appendValues(s, arr, asIs[string])
			case *array.LargeString:
				appendValues(s, arr, asIs[string])
			default:
				return nil, unexpectedArray(col, chunk)
			}
		}
		return s, nil

	case schema.CategoricalFieldType:
		s := dataframe.NewSeriesString(col.Name, init)
		for _, chunk := range chunks {
			arr, ok := chunk.(*array.Dictionary)
			if !ok {
				return nil, unexpectedArray(col, chunk)
			}

			levels, levelsErr := dictionaryLevels(col, arr.Dictionary())
			if levelsErr != nil {
				return nil, levelsErr
			}

			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					s.Append(nil)
				} else {
					s.Append(levels[arr.GetValueIndex(i)])
				}
			}
		}
		return s, nil

	case schema.BoolFieldType:
		s := dataframe.NewSeriesGeneric(col.Name, false, init)
		for _, chunk := range chunks {
			arr, ok := chunk.(*array.Boolean)
			if !ok {
				return nil, unexpectedArray(col, chunk)
			}
			for i := 0; i < arr.Len(); i++ {
				if arr.IsNull(i) {
					s.Append(nil)
				} else {
					s.Append(arr.Value(i))
				}
			}
		}
		return s, nil
	}

	return nil, &schema.ConversionError{Column: col.Name, Type: col.Type.String(), Reason: "no host series for type"}
}

func dictionaryLevels(col schema.Column, dict arrow.Array) ([]string, error) {
	switch values := dict.(type) {
	case *array.String:
		return stringLevels(values), nil
	case *array.LargeString:
		return stringLevels(values), nil
	default:
		return nil, unexpectedArray(col, dict)
	}
}

func stringLevels(arr valueArray[string]) []string {
	levels := make([]string, arr.Len())
	for i := range levels {
		if !arr.IsNull(i) {
			levels[i] = arr.Value(i)
		}
	}
	return levels
}

func (f *Frame) arrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(f.Schema.Columns))
	for idx, col := range f.Schema.Columns {
		fields[idx] = arrow.Field{Name: col.Name, Type: col.Type.ArrowType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// Record converts the frame back into a single interchange record batch.
// The caller owns the returned record and must Release it.
func (f *Frame) Record(mem memory.Allocator) (arrow.Record, error) {

	if mem == nil {
		mem = memory.DefaultAllocator
	}

	rb := array.NewRecordBuilder(mem, f.arrowSchema())
	defer rb.Release()

	rows := f.NRows()

	for idx, col := range f.Schema.Columns {
		series := f.DF.Series[idx]

		switch col.Type {
		case schema.Float64FieldType:
			fb := rb.Field(idx).(*array.Float64Builder)
			values, err := f.Float64s(col.Name)
			if err != nil {
				return nil, err
			}
			for _, v := range values {
				if math.IsNaN(v) {
					fb.AppendNull()
				} else {
					fb.Append(v)
				}
			}

		case schema.Int32FieldType, schema.Int64FieldType:
			if _, ok := series.(*dataframe.SeriesInt64); !ok {
				return nil, fmt.Errorf("column '%s' is backed by %T", col.Name, series)
			}
			if b, isInt32 := rb.Field(idx).(*array.Int32Builder); isInt32 {
				for row := 0; row < rows; row++ {
					if v := series.Value(row); v == nil {
						b.AppendNull()
					} else {
						b.Append(int32(v.(int64)))
					}
				}
				continue
			}
			b := rb.Field(idx).(*array.Int64Builder)
			for row := 0; row < rows; row++ {
				if v := series.Value(row); v == nil {
					b.AppendNull()
				} else {
					b.Append(v.(int64))
				}
			}

		case schema.StringFieldType:
			if _, ok := series.(*dataframe.SeriesString); !ok {
				return nil, fmt.Errorf("column '%s' is backed by %T", col.Name, series)
			}
			b := rb.Field(idx).(*array.StringBuilder)
			for row := 0; row < rows; row++ {
				if v := series.Value(row); v == nil {
					b.AppendNull()
				} else {
					b.Append(v.(string))
				}
			}

		case schema.CategoricalFieldType:
			if _, ok := series.(*dataframe.SeriesString); !ok {
				return nil, fmt.Errorf("column '%s' is backed by %T", col.Name, series)
			}
			b := rb.Field(idx).(*array.BinaryDictionaryBuilder)
			for row := 0; row < rows; row++ {
				v := series.Value(row)
				if v == nil {
					b.AppendNull()
				} else if err := b.AppendString(v.(string)); err != nil {
					return nil, fmt.Errorf("unable to encode categorical '%s': %w", col.Name, err)
				}
			}

		case schema.BoolFieldType:
			b := rb.Field(idx).(*array.BooleanBuilder)
			for row := 0; row < rows; row++ {
				val := series.Value(row)
				if val == nil {
					b.AppendNull()
				} else {
					b.Append(val.(bool))
				}
			}
		}
	}

	return rb.NewRecord(), nil
}
