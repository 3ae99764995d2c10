package catalog

import (
	"context"
	"fmt"

	"github.com/aretw0/propschema/pkg/ports"
)

// Publish saves every schema of the catalog into store as a JSON document.
func (c *Catalog) Publish(ctx context.Context, store ports.CatalogStore) error {
	for _, s := range c.Schemas() {
		doc, err := Encode(s)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", s.Key(), err)
		}
		if err := store.Save(ctx, s.Key(), doc); err != nil {
			return fmt.Errorf("failed to publish %s: %w", s.Key(), err)
		}
	}
	c.logger.Info("Catalog published", "schemas", c.Len())
	return nil
}

// FromStore builds a catalog from every document in store.
func FromStore(ctx context.Context, store ports.CatalogStore, opts ...Option) (*Catalog, error) {
	keys, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog store: %w", err)
	}

	c := New(opts...)
	for _, key := range keys {
		doc, err := store.Load(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", key, err)
		}
		schemas, err := Decode(doc, "store:"+key)
		if err != nil {
			return nil, err
		}
		if err := c.Add(schemas...); err != nil {
			return nil, err
		}
	}
	c.logger.Debug("Catalog loaded from store", "schemas", c.Len())
	return c, nil
}
