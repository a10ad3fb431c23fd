package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// FieldTypeFromArrow maps an interchange column type onto a host column type.
func FieldTypeFromArrow(column string, typ arrow.DataType) (FieldType, error) {
	switch typ.ID() {
	case arrow.FLOAT64, arrow.FLOAT32, arrow.FLOAT16:
		return Float64FieldType, nil
	case arrow.INT32:
		return Int32FieldType, nil
	case arrow.INT64, arrow.INT16, arrow.INT8, arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return Int64FieldType, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return StringFieldType, nil
	case arrow.BOOL:
		return BoolFieldType, nil
	case arrow.DICTIONARY:
		dict := typ.(*arrow.DictionaryType)
		switch dict.ValueType.ID() {
		case arrow.STRING, arrow.LARGE_STRING:
			return CategoricalFieldType, nil
		}
		return 0, &ConversionError{Column: column, Type: typ.String(), Reason: "only string dictionaries are supported"}
	}

	return 0, &ConversionError{Column: column, Type: typ.String(), Reason: "no host mapping"}
}

// ArrowType is the interchange type a host column is written back as.
func (f FieldType) ArrowType() arrow.DataType {
	switch f {
	case Float64FieldType:
		return arrow.PrimitiveTypes.Float64
	case Int32FieldType:
		return arrow.PrimitiveTypes.Int32
	case Int64FieldType:
		return arrow.PrimitiveTypes.Int64
	case StringFieldType:
		return arrow.BinaryTypes.String
	case CategoricalFieldType:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	case BoolFieldType:
		return arrow.FixedWidthTypes.Boolean
	default:
		panic("unknown field type " + f.String())
	}
}

// FromArrow builds a host schema from an interchange schema.
func FromArrow(name string, s *arrow.Schema) (Schema, error) {
	result := Schema{Name: name, Columns: make([]Column, 0, s.NumFields())}

	for _, field := range s.Fields() {
		typ, err := FieldTypeFromArrow(field.Name, field.Type)
		if err != nil {
			return Schema{}, err
		}
		result.Columns = append(result.Columns, Column{Name: field.Name, Type: typ})
	}

	return result, nil
}
