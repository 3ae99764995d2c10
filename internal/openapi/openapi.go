// Package openapi exports property schemas as OpenAPI 3 documents.
package openapi

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// FromSchema describes the property bag accepted by s as an object schema.
// Only the first pattern and the first numeric range of a property are kept.
func FromSchema(s *schema.Schema) *openapi3.Schema {
	obj := openapi3.NewObjectSchema()
	obj.Title = s.Key()
	obj.Description = fmt.Sprintf("Properties of %s at API version %s", s.ResourceType, s.Version)

	for _, name := range s.PropertyNames() {
		obj.WithProperty(name, FromProperty(s.Properties[name]))
	}
	if len(s.Required) > 0 {
		obj.Required = append([]string(nil), s.Required...)
	}
	return obj
}

// FromProperty describes one property.
func FromProperty(def schema.PropertyDefinition) *openapi3.Schema {
	var out *openapi3.Schema
	switch def.DataType {
	case schema.TypeString:
		out = openapi3.NewStringSchema()
	case schema.TypeNumber:
		out = openapi3.NewFloat64Schema()
	case schema.TypeBoolean:
		out = openapi3.NewBoolSchema()
	case schema.TypeArray:
		out = openapi3.NewArraySchema()
		out.Items = openapi3.NewSchemaRef("", openapi3.NewSchema())
	case schema.TypeObject:
		out = openapi3.NewObjectSchema()
	default:
		out = openapi3.NewSchema()
	}

	out.Description = def.Description
	out.Deprecated = def.Deprecated
	if def.HasDefault() {
		out.Default = def.Default
	}

	var havePattern, haveRange bool
	for _, rule := range def.Validation {
		switch rule.Kind {
		case schema.RulePatternMatch:
			if !havePattern && rule.Pattern != "" {
				out.Pattern = rule.Pattern
				havePattern = true
			}
		case schema.RuleValueRange:
			if !haveRange && rule.Range != nil {
				if rule.Range.Min != nil {
					out.WithMin(*rule.Range.Min)
				}
				if rule.Range.Max != nil {
					out.WithMax(*rule.Range.Max)
				}
				haveRange = true
			}
		}
	}

	if def.AddedInVersion != "" || def.RemovedInVersion != "" {
		out.Extensions = map[string]any{}
		if def.AddedInVersion != "" {
			out.Extensions["x-added-in-version"] = def.AddedInVersion
		}
		if def.RemovedInVersion != "" {
			out.Extensions["x-removed-in-version"] = def.RemovedInVersion
		}
	}
	return out
}

// ComponentName turns a schema key into a valid OpenAPI component name.
func ComponentName(s *schema.Schema) string {
	return strings.NewReplacer("/", "_", "@", "_", " ", "_").Replace(s.Key())
}

// YAML renders any kin-openapi value as YAML.
func YAML(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}
