package ports

import "context"

// CatalogStore persists schema documents keyed by "<resourceType>@<version>".
// Documents are opaque bytes to the store; pkg/catalog encodes and decodes them.
type CatalogStore interface {
	// Save creates or replaces the document stored under key.
	Save(ctx context.Context, key string, doc []byte) error

	// Load returns the document stored under key, or schema.ErrSchemaNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key in sorted order.
	List(ctx context.Context) ([]string, error)
}
