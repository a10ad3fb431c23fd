package schema

import "fmt"

// ConversionError is returned when a column type has no mapping in the
// interchange format or in the host table.
type ConversionError struct {
	Column string
	Type   string
	Reason string
}

func (e *ConversionError) Error() string {
	switch {
	case e.Column != "" && e.Type != "":
		return fmt.Sprintf("unable to convert column '%s' of type %s: %s", e.Column, e.Type, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("unable to convert column '%s': %s", e.Column, e.Reason)
	default:
		return fmt.Sprintf("conversion failed: %s", e.Reason)
	}
}
