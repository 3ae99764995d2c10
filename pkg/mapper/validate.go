package mapper

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/propschema/pkg/schema"
)

// collector accumulates the messages of one validation run.
type collector struct {
	errors   []string
	warnings []string
	byPath   map[string][]string
}

func newCollector() *collector {
	return &collector{
		errors:   []string{},
		warnings: []string{},
		byPath:   make(map[string][]string),
	}
}

func (c *collector) fail(path string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	c.errors = append(c.errors, msgs...)
	c.byPath[path] = append(c.byPath[path], msgs...)
}

func (c *collector) warn(msg string) {
	c.warnings = append(c.warnings, msg)
}

func (c *collector) result() schema.ValidationResult {
	r := schema.ValidationResult{
		Valid:    len(c.errors) == 0,
		Errors:   c.errors,
		Warnings: c.warnings,
	}
	if len(c.byPath) > 0 {
		r.PropertyErrors = c.byPath
	}
	return r
}

// ValidateProperties checks bag against the schema and reports every problem.
//
// It runs three passes: the schema's required list, each key present in the bag
// (framework keys excluded), and the schema-level rule bindings. Unknown and
// deprecated keys only produce warnings. A rule that cannot be evaluated ends the
// run with a single "Validation failed" error. The method never panics.
func (m *Mapper) ValidateProperties(bag map[string]any) (result schema.ValidationResult) {
	if bag == nil {
		return schema.Invalid("Properties cannot be undefined or null")
	}

	c := newCollector()
	defer func() {
		if r := recover(); r != nil {
			c.errors = append(c.errors, fmt.Sprintf("Validation failed: %v", r))
			result = c.result()
		}
	}()

	if err := m.validate(bag, c); err != nil {
		c.errors = append(c.errors, "Validation failed: "+err.Error())
	}

	result = c.result()
	m.logger.Debug("Properties validated",
		"valid", result.Valid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)
	return result
}

func (m *Mapper) validate(bag map[string]any, c *collector) error {
	m.checkRequired(bag, c)
	if err := m.checkProperties(bag, c); err != nil {
		return err
	}
	return m.checkSchemaRules(bag, c)
}

// checkRequired is driven by the schema's required list. A key holding null
// counts as present here; the per-property pass reports it instead.
func (m *Mapper) checkRequired(bag map[string]any, c *collector) {
	for _, name := range m.schema.Required {
		value, present := bag[name]
		if !present || schema.KindOf(value) == schema.KindUndefined {
			c.fail(name, fmt.Sprintf("Required property '%s' is missing", name))
		}
	}
}

func (m *Mapper) checkProperties(bag map[string]any, c *collector) error {
	for _, name := range slices.Sorted(maps.Keys(bag)) {
		if IsFrameworkProperty(name) {
			continue
		}

		def, ok := m.schema.Properties[name]
		if !ok {
			c.warn(fmt.Sprintf("Unknown property '%s' not defined in schema", name))
			continue
		}
		if def.Deprecated {
			c.warn(fmt.Sprintf("Property '%s' is deprecated", name))
		}

		value := bag[name]
		c.fail(name, checkType(value, def, name)...)

		msgs, err := m.rules.Apply(value, def.Validation, name)
		c.fail(name, msgs...)
		if err != nil {
			return err
		}
	}
	return nil
}

// checkSchemaRules applies schema-level bindings, whether or not the bound
// property is declared.
func (m *Mapper) checkSchemaRules(bag map[string]any, c *collector) error {
	for _, binding := range m.schema.ValidationRules {
		value, present := bag[binding.Property]
		if !present {
			value = schema.Undefined
		}
		msgs, err := m.rules.Apply(value, binding.Rules, binding.Property)
		c.fail(binding.Property, msgs...)
		if err != nil {
			return err
		}
	}
	return nil
}

// checkType is driven by the property's own required flag and declared type.
func checkType(value any, def schema.PropertyDefinition, path string) []string {
	kind := schema.KindOf(value)
	if kind == schema.KindNull || kind == schema.KindUndefined {
		if def.Required {
			return []string{fmt.Sprintf("Property '%s' is required but is %s", path, kind)}
		}
		return nil
	}

	var expected schema.Kind
	var article string
	switch def.DataType {
	case schema.TypeString:
		expected, article = schema.KindString, "a"
	case schema.TypeNumber:
		expected, article = schema.KindNumber, "a"
	case schema.TypeBoolean:
		expected, article = schema.KindBoolean, "a"
	case schema.TypeArray:
		expected, article = schema.KindArray, "an"
	case schema.TypeObject:
		expected, article = schema.KindObject, "an"
	case schema.TypeAny:
		return nil
	default:
		return []string{fmt.Sprintf("Unknown data type '%s' for property '%s'", def.DataType, path)}
	}

	if kind != expected {
		return []string{fmt.Sprintf("Property '%s' must be %s %s, got: %s", path, article, def.DataType, kind)}
	}
	return nil
}
