// Package mapper validates, defaults and transforms property bags against one
// resolved schema.
//
// A Mapper captures a private copy of its schema at construction and keeps no
// per-call state, so one Mapper can serve any number of concurrent callers.
//
//	m, err := mapper.New(resourceGroupSchema)
//	if err != nil {
//	    // the schema itself is malformed
//	}
//
//	result := m.ValidateProperties(map[string]any{"name": "rg-prod", "location": "eastus"})
//	if !result.Valid {
//	    // result.Errors and result.PropertyErrors describe every problem at once
//	}
//
// ValidateProperties never fails: problems are reported in the returned
// schema.ValidationResult. ApplyDefaults, TransformProperties and MapProperty
// return an error on the first value that cannot be converted.
package mapper
