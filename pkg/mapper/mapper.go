package mapper

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/propschema/internal/coerce"
	"github.com/aretw0/propschema/internal/rules"
	"github.com/aretw0/propschema/pkg/schema"
)

// ErrNilTarget is returned by TransformProperties when the target schema is nil.
var ErrNilTarget = fmt.Errorf("target %w", schema.ErrNilSchema)

// frameworkProperties are configuration keys of the resource construction layer
// that never belong to a provider schema.
var frameworkProperties = map[string]struct{}{
	"apiVersion":              {},
	"enableMigrationAnalysis": {},
	"enableValidation":        {},
	"enableTransformation":    {},
	"ignoreChanges":           {},
	"resourceGroupId":         {},
	"monitoring":              {},
	"virtualNetworkId":        {},
}

// IsFrameworkProperty reports whether name is skipped by property validation.
func IsFrameworkProperty(name string) bool {
	_, ok := frameworkProperties[name]
	return ok
}

// FrameworkProperties returns the keys skipped by property validation, sorted.
func FrameworkProperties() []string {
	return slices.Sorted(maps.Keys(frameworkProperties))
}

// Mapper validates and transforms property bags for one schema.
type Mapper struct {
	schema *schema.Schema
	rules  *rules.Evaluator
	logger *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the structured logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Mapper for s. It fails when s is nil or does not declare a
// resource type, a version, a properties map and a required list.
func New(s *schema.Schema, opts ...Option) (*Mapper, error) {
	if err := schema.CheckSchema(s); err != nil {
		return nil, err
	}

	m := &Mapper{
		schema: s.Clone(),
		rules:  rules.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("resource_type", s.ResourceType, "version", s.Version)
	return m, nil
}

// Schema returns a copy of the schema the Mapper was built with.
func (m *Mapper) Schema() *schema.Schema {
	return m.schema.Clone()
}

// ApplyDefaults returns a shallow copy of bag in which every declared property
// that is missing and has a default is set to a copy of that default. Keys that
// are present, even with a null or undefined value, are left alone. A nil bag is
// treated as empty.
func (m *Mapper) ApplyDefaults(bag map[string]any) (out map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("default value application failed: %v", r)
		}
	}()

	out = make(map[string]any, len(bag)+len(m.schema.Properties))
	maps.Copy(out, bag)

	for _, name := range m.schema.PropertyNames() {
		def := m.schema.Properties[name]
		if _, present := out[name]; present || !def.HasDefault() {
			continue
		}
		out[name] = schema.CopyValue(def.Default)
	}
	return out, nil
}

// TransformProperties reshapes source into target's shape. Every key is renamed
// through target's transformation rules; values of keys the target declares are
// coerced to the declared type, absent values fall back to the declared default,
// and undeclared keys are copied through. Only the top level is transformed.
//
// Source keys are visited in sorted order, so when two keys resolve to the same
// output key the last one in that order wins.
func (m *Mapper) TransformProperties(source map[string]any, target *schema.Schema) (map[string]any, error) {
	if source == nil {
		return map[string]any{}, nil
	}
	if target == nil {
		return nil, ErrNilTarget
	}

	out := make(map[string]any, len(source))
	for _, key := range slices.Sorted(maps.Keys(source)) {
		value := source[key]
		targetKey := target.Rename(key)

		if def, ok := target.Properties[targetKey]; ok {
			converted, err := coerce.Property(value, def, targetKey)
			if err != nil {
				return nil, fmt.Errorf("property transformation failed: %w", err)
			}
			value = converted
		}
		if schema.KindOf(value) == schema.KindUndefined {
			continue
		}
		out[targetKey] = value
	}

	m.logger.Debug("Properties transformed",
		"target_version", target.Version,
		"keys", len(out),
	)
	return out, nil
}

// MapProperty converts a single value into the type declared by target.
func (m *Mapper) MapProperty(name string, value any, target *schema.PropertyDefinition) (any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &schema.ArgumentError{Reason: "property name cannot be empty"}
	}
	if target == nil {
		return nil, &schema.ArgumentError{Reason: "target property definition cannot be undefined"}
	}

	converted, err := coerce.Property(value, *target, name)
	if err != nil {
		return nil, fmt.Errorf("property mapping failed for '%s': %w", name, err)
	}
	return converted, nil
}
