package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var metaSchemaJSON []byte

const metaSchemaURL = "file:///propschema/catalog.schema.json"

var (
	metaOnce   sync.Once
	metaSchema *jsonschema.Schema
	metaErr    error
)

func loadMetaSchema() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(metaSchemaURL, bytes.NewReader(metaSchemaJSON)); err != nil {
		metaErr = err
		return
	}
	metaSchema, metaErr = c.Compile(metaSchemaURL)
}

// DocumentError reports a catalog document that cannot be turned into schemas.
type DocumentError struct {
	Source string
	Err    error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, schema.ErrInvalidSchema) match.
func (e *DocumentError) Is(target error) bool {
	return target == schema.ErrInvalidSchema
}

// Decode parses a YAML or JSON catalog document, either a single schema or a
// {schemas: [...]} list, after checking it against the catalog meta-schema.
// source names the document in errors.
func Decode(data []byte, source string) ([]*schema.Schema, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &DocumentError{Source: source, Err: err}
	}
	if raw == nil {
		return nil, &DocumentError{Source: source, Err: errors.New("empty document")}
	}
	if err := check(raw); err != nil {
		return nil, &DocumentError{Source: source, Err: err}
	}

	var docs []Document
	if m, ok := raw.(map[string]any); ok && m["schemas"] != nil {
		var f File
		if err := decode(raw, &f); err != nil {
			return nil, &DocumentError{Source: source, Err: err}
		}
		docs = f.Schemas
	} else {
		var d Document
		if err := decode(raw, &d); err != nil {
			return nil, &DocumentError{Source: source, Err: err}
		}
		docs = []Document{d}
	}

	out := make([]*schema.Schema, 0, len(docs))
	for _, d := range docs {
		s, err := d.Schema()
		if err != nil {
			return nil, &DocumentError{Source: source, Err: fmt.Errorf("%s: %w", schema.Key(d.ResourceType, d.Version), err)}
		}
		out = append(out, s)
	}
	return out, nil
}

// check validates a generic document tree against the embedded meta-schema.
func check(raw any) error {
	metaOnce.Do(loadMetaSchema)
	if metaErr != nil {
		return fmt.Errorf("catalog meta-schema: %w", metaErr)
	}

	// Round-trip through JSON so the validator sees JSON types only.
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return metaSchema.Validate(v)
}

// Encode serializes s as a single-schema JSON document.
func Encode(s *schema.Schema) ([]byte, error) {
	return json.MarshalIndent(ToDocument(s), "", "  ")
}
