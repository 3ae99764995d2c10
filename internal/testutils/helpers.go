package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles creates a temporary directory holding the given files (relative
// path to content) and returns its absolute path. It fails the test immediately
// on error.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	absPath, err := filepath.Abs(dir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(absPath, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return absPath
}

// ResourceGroupCatalog is a small catalog document used across package tests.
const ResourceGroupCatalog = `schemas:
  - resourceType: Microsoft.Resources/resourceGroups
    version: "2024-11-01"
    required: [name, location]
    properties:
      name:
        dataType: string
        required: true
        validation:
          - ruleType: pattern-match
            value: "^[a-zA-Z0-9-]+$"
            message: Name must be alphanumeric with hyphens
      location:
        dataType: string
        required: true
      tags:
        dataType: object
        defaultValue: {}
      count:
        dataType: number
        defaultValue: 42
        validation:
          - ruleType: value-range
            value: { min: 1, max: 100 }
      managedBy:
        dataType: string
        deprecated: true
  - resourceType: Microsoft.Resources/resourceGroups
    version: "2025-01-01"
    required: [name, location]
    transformationRules:
      oldName: name
    properties:
      name:
        dataType: string
        required: true
      location:
        dataType: string
        required: true
      count:
        dataType: number
`
