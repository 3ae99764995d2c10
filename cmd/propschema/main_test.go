package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/propschema/internal/adapters/file"
	"github.com/aretw0/propschema/internal/adapters/redis"
	"github.com/aretw0/propschema/internal/config"
	"github.com/aretw0/propschema/internal/logging"
	"github.com/aretw0/propschema/internal/testutils"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/aretw0/propschema/pkg/schema"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const rg = "Microsoft.Resources/resourceGroups"

type fixture struct {
	dir     string
	catalog string
}

func newFixture(t *testing.T, extra map[string]string) fixture {
	t.Helper()
	files := map[string]string{"schemas/rg.yaml": testutils.ResourceGroupCatalog}
	for k, v := range extra {
		files[k] = v
	}
	dir := testutils.WriteFiles(t, files)
	return fixture{dir: dir, catalog: filepath.Join(dir, "schemas")}
}

func (f fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

// run executes the CLI with a config path that does not exist, so only flags
// configure it.
func (f fixture) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", f.path("missing.yaml"), "--catalog", f.catalog}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidateCmd(t *testing.T) {
	f := newFixture(t, map[string]string{
		"good.yaml": "name: rg-1\nlocation: eastus\n",
		"bad.yaml":  "name: bad name!\ncount: 500\nextra: 1\n",
	})

	t.Run("valid", func(t *testing.T) {
		out, _, err := f.run(t, "", "validate", rg, "2024-11-01", f.path("good.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "✔ valid Microsoft.Resources/resourceGroups@2024-11-01\n", out)
	})

	t.Run("invalid", func(t *testing.T) {
		out, _, err := f.run(t, "", "validate", rg, "2024-11-01", f.path("bad.yaml"))
		assert.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "✖ invalid Microsoft.Resources/resourceGroups@2024-11-01")
		assert.Contains(t, out, "error Required property 'location' is missing")
		assert.Contains(t, out, "error [name] Name must be alphanumeric with hyphens")
		assert.Contains(t, out, "warn Unknown property 'extra' not defined in schema")
	})

	t.Run("json from stdin", func(t *testing.T) {
		out, _, err := f.run(t, `{"name":"rg-1"}`, "validate", rg, "2024-11-01", "-", "-o", "json")
		assert.ErrorIs(t, err, errInvalid)

		var got validateOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.False(t, got.Valid)
		assert.Equal(t, []string{
			"Required property 'location' is missing",
			"[location] Required property 'location' is missing",
		}, got.Formatted)
	})

	t.Run("unknown schema", func(t *testing.T) {
		_, _, err := f.run(t, "", "validate", rg, "1999-01-01", f.path("good.yaml"))
		assert.ErrorIs(t, err, schema.ErrSchemaNotFound)
	})

	t.Run("missing bag file", func(t *testing.T) {
		_, _, err := f.run(t, "", "validate", rg, "2024-11-01", f.path("nope.yaml"))
		assert.ErrorContains(t, err, "failed to read bag")
	})
}

func TestDefaultsCmd(t *testing.T) {
	f := newFixture(t, map[string]string{"bag.yaml": "name: rg-1\n"})

	out, _, err := f.run(t, "", "defaults", rg, "2024-11-01", f.path("bag.yaml"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "rg-1", got["name"])
	assert.Equal(t, 42, got["count"])
	assert.Equal(t, map[string]any{}, got["tags"])

	out, _, err = f.run(t, "", "defaults", rg, "2024-11-01", f.path("bag.yaml"), "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 42`)

	_, _, err = f.run(t, "", "defaults", rg, "2024-11-01", f.path("bag.yaml"), "-o", "xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestTransformCmd(t *testing.T) {
	f := newFixture(t, map[string]string{
		"bag.yaml":    "oldName: rg-1\nlocation: eastus\ncount: \"7\"\n",
		"broken.yaml": "count: many\n",
	})

	out, _, err := f.run(t, "", "transform", rg, "2024-11-01", "2025-01-01", f.path("bag.yaml"), "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{"name": "rg-1", "location": "eastus", "count": float64(7)}, got)

	_, _, err = f.run(t, "", "transform", rg, "2024-11-01", "2025-01-01", f.path("broken.yaml"))
	assert.ErrorIs(t, err, schema.ErrCoercion)

	_, _, err = f.run(t, "", "transform", rg, "2024-11-01", "2030-01-01", f.path("bag.yaml"))
	assert.ErrorIs(t, err, schema.ErrSchemaNotFound)
}

func TestDescribeCmd(t *testing.T) {
	f := newFixture(t, nil)

	out, _, err := f.run(t, "", "describe", rg, "2024-11-01")
	require.NoError(t, err)
	assert.Contains(t, out, "# Microsoft.Resources/resourceGroups")
	assert.Contains(t, out, "`managedBy` (deprecated)")

	out, _, err = f.run(t, "", "describe", rg, "2024-11-01", "--format", "openapi")
	require.NoError(t, err)
	var tree struct {
		Title      string   `yaml:"title"`
		Required   []string `yaml:"required"`
		Properties map[string]struct {
			Pattern string `yaml:"pattern"`
		} `yaml:"properties"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "Microsoft.Resources/resourceGroups@2024-11-01", tree.Title)
	assert.Equal(t, []string{"name", "location"}, tree.Required)
	assert.Equal(t, "^[a-zA-Z0-9-]+$", tree.Properties["name"].Pattern)

	out, _, err = f.run(t, "", "describe", rg, "2025-01-01", "-f", "json")
	require.NoError(t, err)
	schemas, err := catalog.Decode([]byte(out), "stdout")
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, map[string]string{"oldName": "name"}, schemas[0].TransformationRules)

	_, _, err = f.run(t, "", "describe", rg, "2024-11-01", "-f", "pdf")
	assert.ErrorContains(t, err, `unknown format "pdf"`)
}

func TestSchemasCmd(t *testing.T) {
	f := newFixture(t, nil)

	out, _, err := f.run(t, "", "schemas")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "RESOURCE TYPE")
	assert.Contains(t, lines[1], "2024-11-01")
	assert.Contains(t, lines[2], "2025-01-01")

	out, _, err = f.run(t, "", "schemas", "Contoso/widgets")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1)
}

func TestGraphCmd(t *testing.T) {
	f := newFixture(t, nil)

	out, _, err := f.run(t, "", "graph", rg, "--from", "2024-11-01")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, "oldName → name")
	assert.Contains(t, out, "class Microsoft_Resources_resourceGroups_2024_11_01 source;")

	_, _, err = f.run(t, "", "graph", "Contoso/widgets")
	assert.ErrorIs(t, err, schema.ErrSchemaNotFound)
}

func TestCatalogCheckCmd(t *testing.T) {
	f := newFixture(t, nil)

	out, _, err := f.run(t, "", "catalog", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✔ valid Microsoft.Resources/resourceGroups@2024-11-01")
	assert.Contains(t, out, "✔ valid Microsoft.Resources/resourceGroups@2025-01-01")
}

func TestCatalogPushCmd(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t, nil)

	out, _, err := f.run(t, "", "catalog", "push", "--redis", mr.Addr())
	require.NoError(t, err)
	assert.Equal(t, "✔ published 2 schemas\n", out)

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Microsoft.Resources/resourceGroups@2024-11-01",
		"Microsoft.Resources/resourceGroups@2025-01-01",
	}, keys)

	c, err := catalog.FromStore(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCatalogPushCmd_NoStore(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.run(t, "", "catalog", "push")
	assert.ErrorContains(t, err, "no catalog store")
}

func TestCatalogPushCmd_EncryptedDirectory(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	f := newFixture(t, map[string]string{
		".propschema.yaml": "catalog: [schemas]\nstore:\n  dir: published\n  encryption_key: " + key + "\n",
	})

	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", f.path(".propschema.yaml"), "catalog", "push"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "✔ published 2 schemas\n", stdout.String())

	raw, err := file.New(f.path("published")).Load(context.Background(), rg+"@2024-11-01")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "__encrypted__")
	assert.NotContains(t, string(raw), "resourceGroups")

	cfg, err := config.Load(f.path(".propschema.yaml"))
	require.NoError(t, err)
	a := &app{cfg: cfg, logger: logging.NewNop()}
	serve := &cobra.Command{}
	serve.Flags().String("redis", "", "")
	serve.Flags().String("dir", "", "")
	serve.SetContext(context.Background())

	c, err := a.sourceCatalog(serve, "store")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	a.cfg.Store.EncryptionKey = ""
	_, err = a.sourceCatalog(serve, "store")
	assert.Error(t, err, "encrypted documents are not readable without the key")

	_, err = a.sourceCatalog(serve, "ftp")
	assert.ErrorContains(t, err, `unknown catalog source "ftp"`)
}

func TestConfigFile(t *testing.T) {
	f := newFixture(t, map[string]string{
		".propschema.yaml": "catalog: [schemas]\nlog_level: debug\n",
		"bag.yaml":         "name: rg-1\nlocation: eastus\n",
	})

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", f.path(".propschema.yaml"), "validate", rg, "2024-11-01", f.path("bag.yaml")})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "✔ valid")
	assert.Contains(t, stderr.String(), "Catalog loaded")
}

func TestNoCatalog(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "schemas"})
	assert.ErrorIs(t, cmd.Execute(), errNoCatalog)
}

func TestBadLogLevel(t *testing.T) {
	f := newFixture(t, nil)
	_, _, err := f.run(t, "", "--log-level", "loud", "schemas")
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}

func TestVersionCmd(t *testing.T) {
	f := newFixture(t, nil)
	out, _, err := f.run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "propschema version dev\n", out)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8081", baseURL(":8081"))
	assert.Equal(t, "http://10.0.0.1:9000", baseURL("10.0.0.1:9000"))
}
