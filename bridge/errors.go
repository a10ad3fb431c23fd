package bridge

import (
	"errors"
	"fmt"

	"github.com/dot5enko/rethinking-bridge/schema"
)

// EnvironmentError is returned when a snippet raises inside the foreign environment.
type EnvironmentError struct {
	Snippet string
	Message string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("foreign environment error: %s", e.Message)
}

// LookupError is returned when a variable is not bound after execution.
type LookupError struct {
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("variable '%s' is not bound in the foreign environment", e.Name)
}

type ConversionError = schema.ConversionError

var (
	ErrSessionClosed = errors.New("foreign session is closed")
)
