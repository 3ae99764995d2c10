package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// File is a catalog document holding several schemas.
type File struct {
	Schemas []Document `json:"schemas" yaml:"schemas" mapstructure:"schemas"`
}

// Document is the serialized form of one schema.
type Document struct {
	ResourceType        string                      `json:"resourceType" yaml:"resourceType" mapstructure:"resourceType"`
	Version             string                      `json:"version" yaml:"version" mapstructure:"version"`
	Properties          map[string]PropertyDocument `json:"properties" yaml:"properties" mapstructure:"properties"`
	Required            []string                    `json:"required" yaml:"required" mapstructure:"required"`
	Optional            []string                    `json:"optional,omitempty" yaml:"optional,omitempty" mapstructure:"optional"`
	Deprecated          []string                    `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated"`
	TransformationRules map[string]string           `json:"transformationRules,omitempty" yaml:"transformationRules,omitempty" mapstructure:"transformationRules"`
	ValidationRules     []BindingDocument           `json:"validationRules,omitempty" yaml:"validationRules,omitempty" mapstructure:"validationRules"`
}

type PropertyDocument struct {
	DataType         string         `json:"dataType" yaml:"dataType" mapstructure:"dataType"`
	Required         bool           `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	DefaultValue     any            `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty" mapstructure:"defaultValue"`
	Deprecated       bool           `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated"`
	Description      string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	AddedInVersion   string         `json:"addedInVersion,omitempty" yaml:"addedInVersion,omitempty" mapstructure:"addedInVersion"`
	RemovedInVersion string         `json:"removedInVersion,omitempty" yaml:"removedInVersion,omitempty" mapstructure:"removedInVersion"`
	Validation       []RuleDocument `json:"validation,omitempty" yaml:"validation,omitempty" mapstructure:"validation"`
}

// RuleDocument is a serialized validation rule. Value holds the pattern source
// of a pattern-match rule and a {min, max} map for a value-range rule.
type RuleDocument struct {
	RuleType string `json:"ruleType" yaml:"ruleType" mapstructure:"ruleType"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
}

type BindingDocument struct {
	Property string         `json:"property" yaml:"property" mapstructure:"property"`
	Rules    []RuleDocument `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// decode maps a generic document tree onto out.
func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Schema converts the document into a schema. It does not run construction
// checks; Catalog.Add does.
func (d Document) Schema() (*schema.Schema, error) {
	s := &schema.Schema{
		ResourceType:        d.ResourceType,
		Version:             d.Version,
		Required:            d.Required,
		Optional:            d.Optional,
		Deprecated:          d.Deprecated,
		TransformationRules: d.TransformationRules,
	}
	if d.Properties != nil {
		s.Properties = make(map[string]schema.PropertyDefinition, len(d.Properties))
	}
	for _, name := range slices.Sorted(maps.Keys(d.Properties)) {
		def, err := d.Properties[name].definition()
		if err != nil {
			return nil, fmt.Errorf("property '%s': %w", name, err)
		}
		s.Properties[name] = def
	}
	for i, b := range d.ValidationRules {
		rules, err := convertRules(b.Rules)
		if err != nil {
			return nil, fmt.Errorf("validationRules[%d] '%s': %w", i, b.Property, err)
		}
		s.ValidationRules = append(s.ValidationRules, schema.PropertyValidation{Property: b.Property, Rules: rules})
	}
	return s, nil
}

func (p PropertyDocument) definition() (schema.PropertyDefinition, error) {
	dataType, err := schema.ParseDataType(p.DataType)
	if err != nil {
		return schema.PropertyDefinition{}, err
	}
	rules, err := convertRules(p.Validation)
	if err != nil {
		return schema.PropertyDefinition{}, err
	}
	return schema.PropertyDefinition{
		DataType:         dataType,
		Required:         p.Required,
		Default:          p.DefaultValue,
		Deprecated:       p.Deprecated,
		Description:      p.Description,
		AddedInVersion:   p.AddedInVersion,
		RemovedInVersion: p.RemovedInVersion,
		Validation:       rules,
	}, nil
}

func convertRules(docs []RuleDocument) ([]schema.ValidationRule, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	rules := make([]schema.ValidationRule, 0, len(docs))
	for i, d := range docs {
		kind, err := schema.ParseRuleKind(d.RuleType)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rule := schema.ValidationRule{Kind: kind, Message: d.Message}

		switch kind {
		case schema.RulePatternMatch:
			pattern, ok := d.Value.(string)
			if !ok {
				return nil, fmt.Errorf("rule %d: pattern-match value must be a string", i)
			}
			rule.Pattern = pattern
		case schema.RuleValueRange:
			if d.Value != nil {
				var r schema.Range
				if err := decode(d.Value, &r); err != nil {
					return nil, fmt.Errorf("rule %d: value-range value: %w", i, err)
				}
				// Length bounds ({minLength, maxLength}) decode to an empty range.
				if r.Min != nil || r.Max != nil {
					rule.Range = &r
				}
			}
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ToDocument converts a schema into its serialized form.
func ToDocument(s *schema.Schema) Document {
	d := Document{
		ResourceType:        s.ResourceType,
		Version:             s.Version,
		Properties:          make(map[string]PropertyDocument, len(s.Properties)),
		Required:            s.Required,
		Optional:            s.Optional,
		Deprecated:          s.Deprecated,
		TransformationRules: s.TransformationRules,
	}
	if d.Required == nil {
		d.Required = []string{}
	}
	for name, def := range s.Properties {
		d.Properties[name] = PropertyDocument{
			DataType:         string(def.DataType),
			Required:         def.Required,
			DefaultValue:     def.Default,
			Deprecated:       def.Deprecated,
			Description:      def.Description,
			AddedInVersion:   def.AddedInVersion,
			RemovedInVersion: def.RemovedInVersion,
			Validation:       ruleDocuments(def.Validation),
		}
	}
	for _, b := range s.ValidationRules {
		d.ValidationRules = append(d.ValidationRules, BindingDocument{Property: b.Property, Rules: ruleDocuments(b.Rules)})
	}
	return d
}

func ruleDocuments(rules []schema.ValidationRule) []RuleDocument {
	if len(rules) == 0 {
		return nil
	}
	docs := make([]RuleDocument, 0, len(rules))
	for _, r := range rules {
		d := RuleDocument{RuleType: string(r.Kind), Message: r.Message}
		switch {
		case r.Kind == schema.RulePatternMatch:
			d.Value = r.Pattern
		case r.Kind == schema.RuleValueRange && r.Range != nil:
			bounds := map[string]any{}
			if r.Range.Min != nil {
				bounds["min"] = *r.Range.Min
			}
			if r.Range.Max != nil {
				bounds["max"] = *r.Range.Max
			}
			d.Value = bounds
		}
		docs = append(docs, d)
	}
	return docs
}
