package resource

import (
	"errors"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
)

// Errors surfaced by the engine. Callers match them with errors.Is.
var (
	// ErrUnknownEntity is returned for an entity name absent from the registry
	ErrUnknownEntity = schema.ErrUnknownEntity

	// ErrNotFound is returned when a key does not resolve to a record,
	// including keys whose path segments are malformed
	ErrNotFound = crud.ErrNotFound

	// ErrFormat is matched by a submitted value that cannot be decoded
	ErrFormat = codec.ErrFormat

	// ErrValidation is matched by a field invariant violation
	ErrValidation = schema.ErrValidation

	// ErrConstraintViolation is matched by storage constraint failures
	ErrConstraintViolation = crud.ErrConstraintViolation

	// ErrInvalidValue is matched by a value its column cannot hold
	ErrInvalidValue = crud.ErrInvalidValue

	// ErrKeyMismatch is returned when an edit submits a primary-key field
	// whose value differs from the key of the record being edited
	ErrKeyMismatch = errors.New("primary key cannot be changed")
)

// IsClientError reports whether err is caused by the request rather than by
// the store: a format, validation, constraint, invalid value or key
// mismatch error.
func IsClientError(err error) bool {
	return errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrKeyMismatch)
}

// outcome labels err for metrics
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFormat):
		return "format_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ErrKeyMismatch):
		return "key_mismatch"
	case errors.Is(err, ErrUnknownEntity):
		return "unknown_entity"
	default:
		return "error"
	}
}
