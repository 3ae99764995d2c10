package propschema_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/aretw0/propschema"
	"github.com/aretw0/propschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resourceGroupSchema() *schema.Schema {
	return &schema.Schema{
		ResourceType: "Microsoft.Resources/resourceGroups",
		Version:      "2024-11-01",
		Properties: map[string]schema.PropertyDefinition{
			"name": {
				DataType: schema.TypeString,
				Required: true,
				Validation: []schema.ValidationRule{
					{Kind: schema.RulePatternMatch, Pattern: "^[a-zA-Z0-9-]+$", Message: "Name must be alphanumeric with hyphens"},
				},
			},
			"location":  {DataType: schema.TypeString, Required: true},
			"tags":      {DataType: schema.TypeObject, Default: map[string]any{}},
			"managedBy": {DataType: schema.TypeString, Deprecated: true},
			"count":     {DataType: schema.TypeNumber, Default: 42},
			"legacyTag": {DataType: schema.TypeString, Deprecated: true},
		},
		Required:   []string{"name", "location"},
		Optional:   []string{"tags", "count"},
		Deprecated: []string{"managedBy", "legacyTag"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*schema.Schema) *schema.Schema
		wantErr error
		wantMsg string
	}{
		{"valid", func(s *schema.Schema) *schema.Schema { return s }, nil, ""},
		{"nil", func(*schema.Schema) *schema.Schema { return nil }, schema.ErrNilSchema, "schema cannot be undefined or null"},
		{"blank resource type", func(s *schema.Schema) *schema.Schema { s.ResourceType = ""; return s }, schema.ErrInvalidSchema, "schema must have a valid resourceType"},
		{"whitespace version", func(s *schema.Schema) *schema.Schema { s.Version = "  "; return s }, schema.ErrInvalidSchema, "schema must have a valid version"},
		{"no properties", func(s *schema.Schema) *schema.Schema { s.Properties = nil; return s }, schema.ErrInvalidSchema, "schema must have a properties definition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := propschema.New(tt.mutate(resourceGroupSchema()))
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "Microsoft.Resources/resourceGroups", v.ResourceType())
				assert.Equal(t, "2024-11-01", v.Version())
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestValidateProps(t *testing.T) {
	v, err := propschema.New(resourceGroupSchema())
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		result := v.ValidateProps(map[string]any{"name": "rg-1", "location": "eastus"})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("nil bag", func(t *testing.T) {
		result := v.ValidateProps(nil)
		assert.False(t, result.Valid)
		assert.Equal(t, []string{"Properties cannot be undefined or null"}, result.Errors)
		assert.NotNil(t, result.Warnings)
	})

	t.Run("bad name", func(t *testing.T) {
		result := v.ValidateProps(map[string]any{"name": "bad name!", "location": "eastus"})
		assert.False(t, result.Valid)
		assert.Contains(t, result.Errors, "Name must be alphanumeric with hyphens")
	})

	t.Run("deprecated only warns", func(t *testing.T) {
		result := v.ValidateProps(map[string]any{"name": "rg", "location": "eastus", "managedBy": "me"})
		assert.True(t, result.Valid)
		assert.Equal(t, []string{"Property 'managedBy' is deprecated"}, result.Warnings)
	})
}

func TestValidateSchema(t *testing.T) {
	v, err := propschema.New(resourceGroupSchema())
	require.NoError(t, err)
	result := v.ValidateSchema()
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)

	empty := &schema.Schema{
		ResourceType: "Microsoft.Test/empty",
		Version:      "2024-01-01",
		Properties:   map[string]schema.PropertyDefinition{},
		Required:     []string{},
	}
	v, err = propschema.New(empty)
	require.NoError(t, err)
	result = v.ValidateSchema()
	assert.True(t, result.Valid)
	assert.Equal(t, []string{
		"Schema has no required properties defined",
		"Schema has no properties defined",
	}, result.Warnings)
}

func TestApplyDefaults(t *testing.T) {
	v, err := propschema.New(resourceGroupSchema())
	require.NoError(t, err)

	out, err := v.ApplyDefaults(map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x", "tags": map[string]any{}, "count": 42}, out)

	out, err = v.ApplyDefaults(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"tags": map[string]any{}, "count": 42}, out)

	again, err := v.ApplyDefaults(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestTransformTo(t *testing.T) {
	v, err := propschema.New(resourceGroupSchema())
	require.NoError(t, err)

	target := resourceGroupSchema()
	target.Version = "2025-03-01"
	target.TransformationRules = map[string]string{"oldName": "name"}

	out, err := v.TransformTo(map[string]any{"oldName": "v", "count": "7"}, target)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "v", "count": float64(7)}, out)

	_, err = v.TransformTo(map[string]any{"count": "seven"}, target)
	assert.ErrorIs(t, err, schema.ErrCoercion)

	_, err = v.TransformTo(map[string]any{"a": 1}, nil)
	assert.ErrorIs(t, err, schema.ErrNilSchema)
}

func TestFormatValidationErrors(t *testing.T) {
	result := schema.ValidationResult{
		Errors: []string{"general"},
		PropertyErrors: map[string][]string{
			"zeta":  {"z1"},
			"alpha": {"a1", "a2"},
		},
	}
	assert.Equal(t, []string{"general", "[alpha] a1", "[alpha] a2", "[zeta] z1"}, propschema.FormatValidationErrors(result))

	v, err := propschema.New(resourceGroupSchema())
	require.NoError(t, err)
	formatted := v.FormatValidationErrors(v.ValidateProps(map[string]any{"location": "eastus"}))
	assert.Equal(t, []string{
		"Required property 'name' is missing",
		"[name] Required property 'name' is missing",
	}, formatted)
}

func TestAccessors(t *testing.T) {
	v, err := propschema.New(resourceGroupSchema())
	require.NoError(t, err)

	assert.True(t, v.IsPropertyRequired("name"))
	assert.False(t, v.IsPropertyRequired("tags"))
	assert.False(t, v.IsPropertyRequired("nope"))
	assert.True(t, v.IsPropertyDeprecated("managedBy"))
	assert.False(t, v.IsPropertyDeprecated("name"))
	assert.False(t, v.IsPropertyDeprecated("nope"))

	required := v.GetRequiredProperties()
	assert.Equal(t, []string{"name", "location"}, required)
	required[0] = "mutated"
	assert.Equal(t, []string{"name", "location"}, v.GetRequiredProperties())

	assert.Equal(t, []string{"legacyTag", "managedBy"}, v.GetDeprecatedProperties())

	s := v.Schema()
	s.Required = nil
	assert.True(t, v.IsPropertyRequired("name"))
}

func TestHooks(t *testing.T) {
	var mu sync.Mutex
	var events []*propschema.Event
	record := func(ev *propschema.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	v, err := propschema.New(resourceGroupSchema(), propschema.WithHooks(propschema.Hooks{
		OnValidate:  record,
		OnDefaults:  record,
		OnTransform: record,
	}))
	require.NoError(t, err)

	v.ValidateProps(map[string]any{"location": "eastus", "extra": 1})
	_, _ = v.ApplyDefaults(nil)
	target := resourceGroupSchema()
	target.Version = "2025-03-01"
	_, _ = v.TransformTo(map[string]any{"count": "nan-ish"}, target)

	require.Len(t, events, 3)

	assert.Equal(t, propschema.OpValidate, events[0].Operation)
	assert.Equal(t, "Microsoft.Resources/resourceGroups", events[0].ResourceType)
	assert.False(t, events[0].Valid)
	assert.Equal(t, 1, events[0].Errors)
	assert.Equal(t, 1, events[0].Warnings)

	assert.Equal(t, propschema.OpDefaults, events[1].Operation)
	assert.NoError(t, events[1].Err)

	assert.Equal(t, propschema.OpTransform, events[2].Operation)
	assert.Equal(t, "2025-03-01", events[2].TargetVersion)
	assert.ErrorIs(t, events[2].Err, schema.ErrCoercion)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	v, err := propschema.New(resourceGroupSchema(), propschema.WithLogger(logger))
	require.NoError(t, err)
	v.ValidateProps(map[string]any{"name": "rg", "location": "eastus"})

	assert.Contains(t, buf.String(), `"resource_type":"Microsoft.Resources/resourceGroups"`)
	assert.Contains(t, buf.String(), "Properties validated")
}
