package schema

import (
	"fmt"
	"maps"
	"slices"
)

// DataType is the declared type of a property.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeBoolean DataType = "boolean"
	TypeObject  DataType = "object"
	TypeArray   DataType = "array"
	TypeAny     DataType = "any"
)

// DataTypes returns every supported data type.
func DataTypes() []DataType {
	return []DataType{TypeString, TypeNumber, TypeBoolean, TypeObject, TypeArray, TypeAny}
}

// ParseDataType converts a type name into a DataType.
func ParseDataType(name string) (DataType, error) {
	t := DataType(name)
	if !slices.Contains(DataTypes(), t) {
		return "", fmt.Errorf("unsupported data type: %s", name)
	}
	return t, nil
}

// RuleKind identifies how a ValidationRule is evaluated.
type RuleKind string

const (
	// RuleRequired rejects undefined, null and empty-string values.
	RuleRequired RuleKind = "required"
	// RuleTypeCheck is reserved; type checks run as part of property validation.
	RuleTypeCheck RuleKind = "type-check"
	// RulePatternMatch matches string values against an ECMAScript regular expression.
	RulePatternMatch RuleKind = "pattern-match"
	// RuleValueRange bounds numeric values.
	RuleValueRange RuleKind = "value-range"
	// RuleCustomValidation is a reserved extension point and never evaluated.
	RuleCustomValidation RuleKind = "custom-validation"
)

// RuleKinds returns every declared rule kind.
func RuleKinds() []RuleKind {
	return []RuleKind{RuleRequired, RuleTypeCheck, RulePatternMatch, RuleValueRange, RuleCustomValidation}
}

// ParseRuleKind converts a rule type name into a RuleKind.
func ParseRuleKind(name string) (RuleKind, error) {
	k := RuleKind(name)
	if !slices.Contains(RuleKinds(), k) {
		return "", fmt.Errorf("unsupported rule type: %s", name)
	}
	return k, nil
}

// Range is the payload of a value-range rule. Nil bounds are not checked.
type Range struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
}

// Between returns a Range with both bounds set.
func Between(min, max float64) *Range {
	return &Range{Min: &min, Max: &max}
}

// ValidationRule is a single check applied to a property value.
type ValidationRule struct {
	Kind RuleKind `json:"ruleType"`
	// Pattern is the regular expression source of a pattern-match rule.
	Pattern string `json:"pattern,omitempty"`
	// Range is the payload of a value-range rule.
	Range *Range `json:"range,omitempty"`
	// Message replaces the generated error text when set.
	Message string `json:"message,omitempty"`
}

// PropertyDefinition describes one property of a resource.
type PropertyDefinition struct {
	DataType   DataType `json:"dataType"`
	Required   bool     `json:"required,omitempty"`
	Default    any      `json:"defaultValue,omitempty"`
	Deprecated bool     `json:"deprecated,omitempty"`

	Description      string `json:"description,omitempty"`
	AddedInVersion   string `json:"addedInVersion,omitempty"`
	RemovedInVersion string `json:"removedInVersion,omitempty"`

	Validation []ValidationRule `json:"validation,omitempty"`
}

// HasDefault reports whether the definition declares a default value.
func (p PropertyDefinition) HasDefault() bool {
	return p.Default != nil
}

// PropertyValidation binds rules to a property name at schema level. The property
// does not have to be declared in Schema.Properties.
type PropertyValidation struct {
	Property string           `json:"property"`
	Rules    []ValidationRule `json:"rules"`
}

// Schema is the description of one resource type at one API version.
//
// A nil Properties map or a nil Required slice means the schema does not declare
// them at all, which the engine rejects; empty values are accepted.
type Schema struct {
	ResourceType string                        `json:"resourceType"`
	Version      string                        `json:"version"`
	Properties   map[string]PropertyDefinition `json:"properties"`
	Required     []string                      `json:"required"`
	Optional     []string                      `json:"optional,omitempty"`
	Deprecated   []string                      `json:"deprecated,omitempty"`

	// TransformationRules renames properties (old name -> new name) when a bag is
	// transformed into this schema's shape.
	TransformationRules map[string]string `json:"transformationRules,omitempty"`

	// ValidationRules run in addition to the per-property rules.
	ValidationRules []PropertyValidation `json:"validationRules,omitempty"`
}

// Key returns the catalog key of the schema, "<resourceType>@<version>".
func (s *Schema) Key() string {
	return Key(s.ResourceType, s.Version)
}

// Key builds a catalog key from a resource type and a version.
func Key(resourceType, version string) string {
	return resourceType + "@" + version
}

// Property returns the definition of name, if declared.
func (s *Schema) Property(name string) (PropertyDefinition, bool) {
	def, ok := s.Properties[name]
	return def, ok
}

// PropertyNames returns the declared property names in sorted order.
func (s *Schema) PropertyNames() []string {
	return slices.Sorted(maps.Keys(s.Properties))
}

// Rename resolves the output name of a source key through the rename table.
func (s *Schema) Rename(key string) string {
	if renamed, ok := s.TransformationRules[key]; ok && renamed != "" {
		return renamed
	}
	return key
}

// Clone returns a copy that shares no maps or slices with s, default values
// included.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		ResourceType:        s.ResourceType,
		Version:             s.Version,
		Required:            slices.Clone(s.Required),
		Optional:            slices.Clone(s.Optional),
		Deprecated:          slices.Clone(s.Deprecated),
		TransformationRules: maps.Clone(s.TransformationRules),
	}
	if s.Properties != nil {
		out.Properties = make(map[string]PropertyDefinition, len(s.Properties))
		for name, def := range s.Properties {
			def.Validation = cloneRules(def.Validation)
			def.Default = CopyValue(def.Default)
			out.Properties[name] = def
		}
	}
	if s.ValidationRules != nil {
		out.ValidationRules = make([]PropertyValidation, len(s.ValidationRules))
		for i, pv := range s.ValidationRules {
			out.ValidationRules[i] = PropertyValidation{Property: pv.Property, Rules: cloneRules(pv.Rules)}
		}
	}
	return out
}

func cloneRules(rules []ValidationRule) []ValidationRule {
	if rules == nil {
		return nil
	}
	out := make([]ValidationRule, len(rules))
	for i, r := range rules {
		if r.Range != nil {
			r.Range = &Range{Min: cloneBound(r.Range.Min), Max: cloneBound(r.Range.Max)}
		}
		out[i] = r
	}
	return out
}

func cloneBound(b *float64) *float64 {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
