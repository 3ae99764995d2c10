/*
Package ports defines the driven ports (interfaces) for propschema adapters.

These interfaces decouple schema catalogs from where their documents live, so the
same catalog can be loaded from files, shared through Redis between server
instances, or kept in memory in tests.

# Key Interfaces

  - CatalogStore: persists and lists schema documents keyed by resource type and version.

RunCatalogStoreContract is a reusable test suite every CatalogStore implementation
runs against itself.
*/
package ports
