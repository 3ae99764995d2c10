package propschema

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/propschema/pkg/mapper"
	"github.com/aretw0/propschema/pkg/schema"
)

// Validator is the entry point for validating and shaping property bags of one
// resource type and API version.
//
// A Validator is immutable after New and safe for concurrent use.
type Validator struct {
	schema *schema.Schema
	mapper *mapper.Mapper
	hooks  Hooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Validator.
type Option func(*Validator)

// WithLogger sets a custom structured logger for the validator.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(v *Validator) {
		v.hooks = hooks
	}
}

// New creates a Validator for s. It fails when s is nil, when its resource type
// or version is blank, or when the mapper rejects it.
func New(s *schema.Schema, opts ...Option) (*Validator, error) {
	if s == nil {
		return nil, schema.ErrNilSchema
	}
	if isBlank(s.ResourceType) {
		return nil, &schema.SchemaError{Field: "resourceType", Reason: "schema must have a valid resourceType"}
	}
	if isBlank(s.Version) {
		return nil, &schema.SchemaError{Field: "version", Reason: "schema must have a valid version"}
	}

	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	m, err := mapper.New(s, mapper.WithLogger(v.logger))
	if err != nil {
		return nil, err
	}
	v.logger = v.logger.With("resource_type", s.ResourceType, "version", s.Version)
	v.mapper = m
	v.schema = m.Schema()
	return v, nil
}

// ValidateProps validates bag against the schema. It never panics and never
// returns an error: every problem, internal faults included, is reported in the
// result.
func (v *Validator) ValidateProps(bag map[string]any) (result schema.ValidationResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = schema.Invalid(fmt.Sprintf("Validation failed: %v", r))
			v.logger.Warn("Validation aborted", "panic", r)
		}
		v.emit(v.hooks.OnValidate, &Event{
			Operation: OpValidate,
			Valid:     result.Valid,
			Errors:    len(result.Errors),
			Warnings:  len(result.Warnings),
		}, start)
	}()

	if bag == nil {
		return schema.Invalid("Properties cannot be undefined or null")
	}
	return v.mapper.ValidateProperties(bag)
}

// ValidateSchema checks the structure of the schema itself. Missing fields are
// errors; an empty required list or an empty properties map are warnings.
func (v *Validator) ValidateSchema() schema.ValidationResult {
	errs := []string{}
	warnings := []string{}

	if v.schema.ResourceType == "" {
		errs = append(errs, "Schema is missing resourceType")
	}
	if v.schema.Version == "" {
		errs = append(errs, "Schema is missing version")
	}
	if v.schema.Properties == nil {
		errs = append(errs, "Schema is missing properties definition")
	}
	if v.schema.Required == nil {
		errs = append(errs, "Schema is missing required properties array")
	}

	if v.schema.Required != nil && len(v.schema.Required) == 0 {
		warnings = append(warnings, "Schema has no required properties defined")
	}
	if v.schema.Properties != nil && len(v.schema.Properties) == 0 {
		warnings = append(warnings, "Schema has no properties defined")
	}

	return schema.ValidationResult{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// ApplyDefaults returns a copy of bag with the schema's defaults filled in for
// missing properties. A nil bag is treated as empty.
func (v *Validator) ApplyDefaults(bag map[string]any) (out map[string]any, err error) {
	start := time.Now()
	defer func() {
		v.emit(v.hooks.OnDefaults, &Event{Operation: OpDefaults, Err: err}, start)
	}()

	if bag == nil {
		bag = map[string]any{}
	}
	out, err = v.mapper.ApplyDefaults(bag)
	if err != nil {
		v.logger.Warn("Default application failed", "err", err)
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return out, nil
}

// TransformTo reshapes bag into the shape of target, renaming keys through the
// target's transformation rules and coercing declared properties.
func (v *Validator) TransformTo(bag map[string]any, target *schema.Schema) (out map[string]any, err error) {
	start := time.Now()
	defer func() {
		ev := &Event{Operation: OpTransform, Err: err}
		if target != nil {
			ev.TargetVersion = target.Version
		}
		v.emit(v.hooks.OnTransform, ev, start)
	}()

	return v.mapper.TransformProperties(bag, target)
}

// FormatValidationErrors flattens result into one list: general errors first,
// then every path-keyed error as "[path] message", paths in sorted order.
func (v *Validator) FormatValidationErrors(result schema.ValidationResult) []string {
	return FormatValidationErrors(result)
}

// FormatValidationErrors is the package-level form of Validator.FormatValidationErrors.
func FormatValidationErrors(result schema.ValidationResult) []string {
	out := make([]string, 0, len(result.Errors))
	out = append(out, result.Errors...)
	for _, path := range slices.Sorted(maps.Keys(result.PropertyErrors)) {
		for _, msg := range result.PropertyErrors[path] {
			out = append(out, fmt.Sprintf("[%s] %s", path, msg))
		}
	}
	return out
}

// Schema returns a copy of the schema this validator was built with.
func (v *Validator) Schema() *schema.Schema {
	return v.schema.Clone()
}

// ResourceType returns the schema's resource type.
func (v *Validator) ResourceType() string {
	return v.schema.ResourceType
}

// Version returns the schema's API version.
func (v *Validator) Version() string {
	return v.schema.Version
}

// IsPropertyRequired reports whether name is in the schema's required list.
func (v *Validator) IsPropertyRequired(name string) bool {
	return slices.Contains(v.schema.Required, name)
}

// IsPropertyDeprecated reports whether name is declared and flagged deprecated.
func (v *Validator) IsPropertyDeprecated(name string) bool {
	def, ok := v.schema.Properties[name]
	return ok && def.Deprecated
}

// GetRequiredProperties returns a copy of the required list in declared order.
func (v *Validator) GetRequiredProperties() []string {
	if v.schema.Required == nil {
		return []string{}
	}
	return slices.Clone(v.schema.Required)
}

// GetDeprecatedProperties returns the names of deprecated properties, sorted.
func (v *Validator) GetDeprecatedProperties() []string {
	out := []string{}
	for _, name := range v.schema.PropertyNames() {
		if v.schema.Properties[name].Deprecated {
			out = append(out, name)
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
