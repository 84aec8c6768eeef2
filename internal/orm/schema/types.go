// Package schema describes entities: how they are presented (list columns,
// form fields), how they are stored (tables, columns, foreign keys) and how
// their fields are read and written by name through typed accessor tables.
package schema

import (
	"errors"
	"fmt"

	"github.com/careboard/careboard/internal/codec"
)

// InputType is a presentation hint for a form field
type InputType int

const (
	InputText InputType = iota
	InputNumber
	InputEmail
	InputDate
	InputTime
	InputTextarea
)

// String returns the HTML input type name
func (i InputType) String() string {
	switch i {
	case InputText:
		return "text"
	case InputNumber:
		return "number"
	case InputEmail:
		return "email"
	case InputDate:
		return "date"
	case InputTime:
		return "time"
	case InputTextarea:
		return "textarea"
	default:
		return "unknown"
	}
}

// ParseInputType converts a string to an InputType
func ParseInputType(s string) (InputType, error) {
	switch s {
	case "", "text":
		return InputText, nil
	case "number":
		return InputNumber, nil
	case "email":
		return InputEmail, nil
	case "date":
		return InputDate, nil
	case "time":
		return InputTime, nil
	case "textarea":
		return InputTextarea, nil
	default:
		return 0, fmt.Errorf("unknown input type: %s", s)
	}
}

// CascadeAction represents the ON DELETE action of a foreign key
type CascadeAction int

const (
	CascadeNoAction CascadeAction = iota
	CascadeCascade
	CascadeSetNull
	CascadeRestrict
)

// String returns the string representation of the cascade action
func (c CascadeAction) String() string {
	switch c {
	case CascadeNoAction:
		return "no_action"
	case CascadeCascade:
		return "cascade"
	case CascadeSetNull:
		return "set_null"
	case CascadeRestrict:
		return "restrict"
	default:
		return "unknown"
	}
}

// SQL returns the referential action keyword
func (c CascadeAction) SQL() string {
	switch c {
	case CascadeCascade:
		return "CASCADE"
	case CascadeSetNull:
		return "SET NULL"
	case CascadeRestrict:
		return "RESTRICT"
	default:
		return "NO ACTION"
	}
}

var (
	// ErrUnknownEntity is returned when an entity name is not registered
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrUnknownField is returned when a record has no accessor for a field
	ErrUnknownField = errors.New("unknown field")

	// ErrValidation is matched by every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
)

// ValidationError is raised when a value assigned to a record field breaks
// an entity invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IsValidationError checks if an error is a field invariant violation
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Column is a list-view column
type Column struct {
	Name  string
	Label string
}

// FieldDescriptor describes one form field
type FieldDescriptor struct {
	Name      string
	Label     string
	InputType InputType
	Parser    codec.Parser
	Required  bool
}
