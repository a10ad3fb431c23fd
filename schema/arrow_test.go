package schema

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTypeFromArrow(t *testing.T) {
	cases := []struct {
		typ      arrow.DataType
		expected FieldType
	}{
		{arrow.PrimitiveTypes.Float64, Float64FieldType},
		{arrow.PrimitiveTypes.Float32, Float64FieldType},
		{arrow.PrimitiveTypes.Int32, Int32FieldType},
		{arrow.PrimitiveTypes.Int64, Int64FieldType},
		{arrow.PrimitiveTypes.Uint8, Int64FieldType},
		{arrow.BinaryTypes.String, StringFieldType},
		{arrow.BinaryTypes.LargeString, StringFieldType},
		{arrow.FixedWidthTypes.Boolean, BoolFieldType},
		{&arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}, CategoricalFieldType},
	}

	for _, it := range cases {
		t.Run(it.typ.String(), func(t *testing.T) {
			got, err := FieldTypeFromArrow("col", it.typ)
			require.NoError(t, err)
			assert.Equal(t, it.expected, got)
		})
	}
}

func TestFieldTypeFromArrowUnsupported(t *testing.T) {
	_, err := FieldTypeFromArrow("when", arrow.FixedWidthTypes.Date32)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "when", convErr.Column)

	_, err = FieldTypeFromArrow("codes", &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.PrimitiveTypes.Int64})
	require.True(t, errors.As(err, &convErr))
}

func TestFromArrowKeepsOrder(t *testing.T) {
	s := arrow.NewSchema([]arrow.Field{
		{Name: "y", Type: arrow.BinaryTypes.String},
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	result, err := FromArrow("d", s)
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "x"}, result.Names())
	assert.Equal(t, 1, result.Index("x"))
	assert.Equal(t, -1, result.Index("z"))
}

func TestArrowTypeRoundTrip(t *testing.T) {
	for _, typ := range []FieldType{Float64FieldType, Int32FieldType, Int64FieldType, StringFieldType, CategoricalFieldType, BoolFieldType} {
		back, err := FieldTypeFromArrow("c", typ.ArrowType())
		require.NoError(t, err)
		assert.Equal(t, typ, back, typ.String())
	}
}
