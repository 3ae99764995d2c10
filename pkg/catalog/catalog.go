package catalog

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/propschema"
	"github.com/aretw0/propschema/pkg/schema"
)

// Catalog holds schemas keyed by resource type and exact version.
// Safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	schemas    map[string]*schema.Schema
	validators map[string]*propschema.Validator

	validatorOpts []propschema.Option
	logger        *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used to report loading.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithValidatorOptions sets the options every Validator built by the catalog gets.
func WithValidatorOptions(opts ...propschema.Option) Option {
	return func(c *Catalog) {
		c.validatorOpts = append(c.validatorOpts, opts...)
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		schemas:    make(map[string]*schema.Schema),
		validators: make(map[string]*propschema.Validator),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Add stores copies of the given schemas, replacing entries with the same key.
// Nothing is added unless every schema passes the construction checks.
func (c *Catalog) Add(schemas ...*schema.Schema) error {
	for _, s := range schemas {
		if err := schema.CheckSchema(s); err != nil {
			if s != nil {
				return fmt.Errorf("%s: %w", s.Key(), err)
			}
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range schemas {
		key := s.Key()
		if _, exists := c.schemas[key]; exists {
			c.logger.Warn("Schema replaced", "schema", key)
		}
		c.schemas[key] = s.Clone()
		delete(c.validators, key)
	}
	return nil
}

// Load adds every path, which may be a document file or a directory of them.
func (c *Catalog) Load(paths ...string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		if info.IsDir() {
			err = c.LoadDir(path)
		} else {
			err = c.LoadFile(path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadFile adds the schemas of one YAML or JSON document.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}
	schemas, err := Decode(data, path)
	if err != nil {
		return err
	}
	if err := c.Add(schemas...); err != nil {
		return &DocumentError{Source: path, Err: err}
	}
	c.logger.Debug("Catalog file loaded", "path", path, "schemas", len(schemas))
	return nil
}

// LoadDir adds every *.yaml, *.yml and *.json file under dir, recursively, in
// lexical order.
func (c *Catalog) LoadDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isDocument(path) {
			return nil
		}
		return c.LoadFile(path)
	})
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Get returns a copy of the schema for the exact resource type and version.
func (c *Catalog) Get(resourceType, version string) (*schema.Schema, error) {
	key := schema.Key(resourceType, version)

	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrSchemaNotFound, key)
	}
	return s.Clone(), nil
}

// Validator returns the Validator for the exact resource type and version. It is
// built on first use and shared afterwards.
func (c *Catalog) Validator(resourceType, version string) (*propschema.Validator, error) {
	key := schema.Key(resourceType, version)

	c.mu.RLock()
	v, ok := c.validators[key]
	s := c.schemas[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", schema.ErrSchemaNotFound, key)
	}

	v, err := propschema.New(s, c.validatorOpts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Only cache if the schema was not replaced meanwhile.
	if c.schemas[key] == s {
		if cached, ok := c.validators[key]; ok {
			return cached, nil
		}
		c.validators[key] = v
	}
	return v, nil
}

// List returns every "<resourceType>@<version>" key, sorted.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.schemas))
}

// Schemas returns copies of every schema, ordered by key.
func (c *Catalog) Schemas() []*schema.Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*schema.Schema, 0, len(c.schemas))
	for _, key := range slices.Sorted(maps.Keys(c.schemas)) {
		out = append(out, c.schemas[key].Clone())
	}
	return out
}

// Versions returns the versions known for resourceType, sorted.
func (c *Catalog) Versions(resourceType string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	versions := []string{}
	for _, s := range c.schemas {
		if s.ResourceType == resourceType {
			versions = append(versions, s.Version)
		}
	}
	slices.Sort(versions)
	return versions
}

// Len returns the number of schemas.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schemas)
}
