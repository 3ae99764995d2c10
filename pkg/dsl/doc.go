/*
Package dsl provides a fluent builder for constructing versioned property schemas in Go.

It is an alternative to YAML or JSON catalog documents when schemas are generated
programmatically or declared next to the code that uses them, for example in tests.

Example usage:

	s, err := dsl.New("Microsoft.Storage/storageAccounts", "2023-05-01").
		Property("name", schema.TypeString).Required().
		Pattern(`^[a-z0-9]{3,24}$`, "Storage account names are 3-24 lowercase letters or digits").
		Property("kind", schema.TypeString).Default("StorageV2").
		Property("accessTier", schema.TypeString).Deprecated().
		Property("retentionDays", schema.TypeNumber).Range(1, 365, "").
		Rename("sku_name", "skuName").
		Build()

Build derives the required, optional and deprecated lists from the declared
properties and rejects schemas a mapper would refuse.
*/
package dsl
