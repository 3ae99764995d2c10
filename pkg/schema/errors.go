package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNilSchema is returned when a schema argument is nil.
	ErrNilSchema = errors.New("schema cannot be undefined or null")

	// ErrInvalidSchema indicates a schema that fails construction checks.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrCoercion indicates a value that cannot be converted to a declared type.
	ErrCoercion = errors.New("coercion error")

	// ErrInvalidArgument indicates a programmer error in a call argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSchemaNotFound is returned by catalogs and stores for unknown keys.
	ErrSchemaNotFound = errors.New("schema not found")
)

// SchemaError reports a schema that cannot be used to build a mapper or validator.
type SchemaError struct {
	Field  string // Schema field at fault (resourceType, version, ...)
	Reason string // Human-readable reason
}

func (e *SchemaError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrInvalidSchema) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// CoercionError reports a value that could not be converted to the declared type
// of the property at Path.
type CoercionError struct {
	Path   string
	Target DataType
	Got    Kind
}

func (e *CoercionError) Error() string {
	switch e.Target {
	case TypeArray, TypeObject:
		return fmt.Sprintf("Expected %s at '%s', got: %s", e.Target, e.Path, e.Got)
	default:
		return fmt.Sprintf("Cannot convert value at '%s' to %s. Got: %s", e.Path, e.Target, e.Got)
	}
}

// Is makes errors.Is(err, ErrCoercion) match.
func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

// ArgumentError reports an invalid call argument.
type ArgumentError struct {
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrInvalidArgument) match.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// CheckSchema runs the construction checks shared by every consumer of a schema:
// it must be non-nil, name a resource type and a version, and declare a
// properties map and a required list.
func CheckSchema(s *Schema) error {
	if s == nil {
		return ErrNilSchema
	}
	if isBlank(s.ResourceType) {
		return &SchemaError{Field: "resourceType", Reason: "schema must have a valid resourceType"}
	}
	if isBlank(s.Version) {
		return &SchemaError{Field: "version", Reason: "schema must have a valid version"}
	}
	if s.Properties == nil {
		return &SchemaError{Field: "properties", Reason: "schema must have a properties definition"}
	}
	if s.Required == nil {
		return &SchemaError{Field: "required", Reason: "schema must have a required properties array"}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
