package middleware

import "github.com/aretw0/propschema/pkg/ports"

// Middleware allows wrapping a CatalogStore to add behavior.
type Middleware func(ports.CatalogStore) ports.CatalogStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.CatalogStore, mws ...Middleware) ports.CatalogStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
