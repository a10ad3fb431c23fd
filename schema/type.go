package schema

type FieldType uint8

const (
	Float64FieldType FieldType = iota
	Int32FieldType
	Int64FieldType
	StringFieldType
	CategoricalFieldType
	BoolFieldType
)

func (f FieldType) String() string {
	switch f {
	case Float64FieldType:
		return "Float64"
	case Int32FieldType:
		return "Int32"
	case Int64FieldType:
		return "Int64"
	case StringFieldType:
		return "String"
	case CategoricalFieldType:
		return "Categorical"
	case BoolFieldType:
		return "Bool"
	default:
		return ""
	}
}

// IsNumeric reports whether values of the type can be widened to float64.
func (f FieldType) IsNumeric() bool {
	switch f {
	case Float64FieldType, Int32FieldType, Int64FieldType:
		return true
	default:
		return false
	}
}
