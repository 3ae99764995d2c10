package dsl

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/propschema/pkg/schema"
)

// Builder manages the schema construction.
type Builder struct {
	resourceType string
	version      string
	order        []string
	properties   map[string]*PropertyBuilder
	renames      map[string]string
	bindings     []schema.PropertyValidation
}

// New creates a new schema builder for one resource type and API version.
func New(resourceType, version string) *Builder {
	return &Builder{
		resourceType: resourceType,
		version:      version,
		properties:   make(map[string]*PropertyBuilder),
		renames:      make(map[string]string),
	}
}

// Property declares a property of the given type.
// If the property already exists, it returns the existing builder unchanged.
func (b *Builder) Property(name string, dataType schema.DataType) *PropertyBuilder {
	if pb, ok := b.properties[name]; ok {
		return pb
	}
	pb := &PropertyBuilder{
		name:    name,
		def:     schema.PropertyDefinition{DataType: dataType},
		builder: b,
	}
	b.properties[name] = pb
	b.order = append(b.order, name)
	return pb
}

// Rename maps a property name of an earlier version to its name in this one.
func (b *Builder) Rename(oldName, newName string) *Builder {
	b.renames[oldName] = newName
	return b
}

// Rule binds rules to a property at schema level. The property does not have to
// be declared.
func (b *Builder) Rule(property string, rules ...schema.ValidationRule) *Builder {
	b.bindings = append(b.bindings, schema.PropertyValidation{
		Property: property,
		Rules:    slices.Clone(rules),
	})
	return b
}

// Build assembles the schema. The required, optional and deprecated lists are
// derived from the declared properties in declaration order. Build reports every
// problem it finds, joined, and returns a schema only when there are none.
func (b *Builder) Build() (*schema.Schema, error) {
	s := &schema.Schema{
		ResourceType: b.resourceType,
		Version:      b.version,
		Properties:   make(map[string]schema.PropertyDefinition, len(b.order)),
		Required:     []string{},
		Optional:     []string{},
		Deprecated:   []string{},
	}
	if len(b.renames) > 0 {
		s.TransformationRules = make(map[string]string, len(b.renames))
		for from, to := range b.renames {
			s.TransformationRules[from] = to
		}
	}
	if len(b.bindings) > 0 {
		s.ValidationRules = slices.Clone(b.bindings)
	}

	var errs []error
	if err := schema.CheckSchema(s); err != nil {
		errs = append(errs, err)
	}

	for _, name := range b.order {
		def := b.properties[name].def
		if strings.TrimSpace(name) == "" {
			errs = append(errs, &schema.SchemaError{Field: "properties", Reason: "property name cannot be empty"})
			continue
		}
		if _, err := schema.ParseDataType(string(def.DataType)); err != nil {
			errs = append(errs, &schema.SchemaError{
				Field:  "properties." + name,
				Reason: fmt.Sprintf("property '%s': %v", name, err),
			})
		}
		for _, rule := range def.Validation {
			if rule.Kind == schema.RuleValueRange && rule.Range != nil &&
				rule.Range.Min != nil && rule.Range.Max != nil && *rule.Range.Min > *rule.Range.Max {
				errs = append(errs, &schema.SchemaError{
					Field:  "properties." + name,
					Reason: fmt.Sprintf("property '%s': range minimum is greater than maximum", name),
				})
			}
		}

		s.Properties[name] = def
		if def.Required {
			s.Required = append(s.Required, name)
		} else {
			s.Optional = append(s.Optional, name)
		}
		if def.Deprecated {
			s.Deprecated = append(s.Deprecated, name)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// MustBuild is like Build but panics on error. It is meant for schemas declared
// in code, where a construction error is a programming mistake.
func (b *Builder) MustBuild() *schema.Schema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: %v", err))
	}
	return s
}
