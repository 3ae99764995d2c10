/*
Package propschema validates, defaults and migrates untyped resource property bags
against versioned API schemas.

A schema describes one resource type at one API version: the properties it accepts,
their declared types, defaults and rules, which of them are required or deprecated,
and how property names were renamed from earlier versions. The Validator wraps a
schema and answers three questions about a property bag:

  - Is it valid? ValidateProps reports every problem at once and never fails.
  - What does it look like with defaults? ApplyDefaults fills in missing properties.
  - What does it look like in another version? TransformTo renames and coerces it.

# Usage

	s, err := dsl.New("Microsoft.Resources/resourceGroups", "2024-11-01").
		Property("name", schema.TypeString).Required().
		Pattern(`^[a-zA-Z0-9-]+$`, "Name must be alphanumeric with hyphens").
		Property("location", schema.TypeString).Required().
		Property("tags", schema.TypeObject).Default(map[string]any{}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	v, err := propschema.New(s)
	if err != nil {
		log.Fatal(err)
	}

	result := v.ValidateProps(map[string]any{"name": "bad name!", "location": "eastus"})
	for _, line := range v.FormatValidationErrors(result) {
		fmt.Println(line)
	}

Schemas are usually loaded from YAML or JSON documents through pkg/catalog rather
than built in code. The propschema command serves a catalog over the CLI, an HTTP
API and the Model Context Protocol.

Construction problems (a nil schema, a blank resource type or version) are
returned by New as errors wrapping schema.ErrNilSchema or schema.ErrInvalidSchema.
Coercion failures during ApplyDefaults and TransformTo wrap schema.ErrCoercion.
*/
package propschema
