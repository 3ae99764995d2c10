// Package schema defines the versioned description of a resource type's shape.
//
// A Schema names a resource type and an API version and owns the property
// definitions, the required/optional/deprecated name lists, the rename table used
// when moving a property bag between versions, and schema-level rule bindings.
//
//	s := &schema.Schema{
//	    ResourceType: "Microsoft.Resources/resourceGroups",
//	    Version:      "2024-11-01",
//	    Properties: map[string]schema.PropertyDefinition{
//	        "location": {DataType: schema.TypeString, Required: true},
//	        "tags":     {DataType: schema.TypeObject, Default: map[string]any{}},
//	    },
//	    Required: []string{"location"},
//	}
//
// Property bags are plain map[string]any values. KindOf classifies any value held
// in a bag into one closed set of kinds (string, number, boolean, array, object,
// null, undefined); validation and coercion dispatch on that classification only.
//
// The package has no dependencies beyond the standard library so that schema
// catalogs can be declared without pulling in the validation engine.
package schema
