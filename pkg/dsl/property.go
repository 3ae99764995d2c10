package dsl

import (
	"slices"

	"github.com/aretw0/propschema/pkg/schema"
)

// PropertyBuilder provides a fluent API for configuring a property.
type PropertyBuilder struct {
	name    string
	def     schema.PropertyDefinition
	builder *Builder
}

// Required marks the property as required.
func (p *PropertyBuilder) Required() *PropertyBuilder {
	p.def.Required = true
	return p
}

// Default sets the value injected when the property is missing.
// A nil value means no default.
func (p *PropertyBuilder) Default(value any) *PropertyBuilder {
	p.def.Default = value
	return p
}

// Deprecated marks the property as deprecated; using it only produces a warning.
func (p *PropertyBuilder) Deprecated() *PropertyBuilder {
	p.def.Deprecated = true
	return p
}

// Description documents the property.
func (p *PropertyBuilder) Description(text string) *PropertyBuilder {
	p.def.Description = text
	return p
}

// Since records the API version that introduced the property.
func (p *PropertyBuilder) Since(version string) *PropertyBuilder {
	p.def.AddedInVersion = version
	return p
}

// Until records the API version that removed the property.
func (p *PropertyBuilder) Until(version string) *PropertyBuilder {
	p.def.RemovedInVersion = version
	return p
}

// Pattern adds an ECMAScript regular expression the value must match.
// An empty message selects the default one.
func (p *PropertyBuilder) Pattern(pattern, message string) *PropertyBuilder {
	return p.Rule(schema.ValidationRule{Kind: schema.RulePatternMatch, Pattern: pattern, Message: message})
}

// Range adds inclusive numeric bounds.
func (p *PropertyBuilder) Range(min, max float64, message string) *PropertyBuilder {
	return p.Rule(schema.ValidationRule{Kind: schema.RuleValueRange, Range: schema.Between(min, max), Message: message})
}

// NotEmpty adds a required rule, which rejects null, undefined and "".
func (p *PropertyBuilder) NotEmpty(message string) *PropertyBuilder {
	return p.Rule(schema.ValidationRule{Kind: schema.RuleRequired, Message: message})
}

// Rule appends arbitrary rules to the property.
func (p *PropertyBuilder) Rule(rules ...schema.ValidationRule) *PropertyBuilder {
	p.def.Validation = append(p.def.Validation, rules...)
	return p
}

// Property declares the next property on the parent builder.
func (p *PropertyBuilder) Property(name string, dataType schema.DataType) *PropertyBuilder {
	return p.builder.Property(name, dataType)
}

// Rename forwards to the parent builder.
func (p *PropertyBuilder) Rename(oldName, newName string) *Builder {
	return p.builder.Rename(oldName, newName)
}

// Build forwards to the parent builder.
func (p *PropertyBuilder) Build() (*schema.Schema, error) {
	return p.builder.Build()
}

// MustBuild forwards to the parent builder.
func (p *PropertyBuilder) MustBuild() *schema.Schema {
	return p.builder.MustBuild()
}

// Definition returns a copy of the property definition built so far.
func (p *PropertyBuilder) Definition() schema.PropertyDefinition {
	def := p.def
	def.Validation = slices.Clone(p.def.Validation)
	return def
}
