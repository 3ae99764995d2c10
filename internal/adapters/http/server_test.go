package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/propschema/internal/testutils"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	dir := testutils.WriteFiles(t, map[string]string{"rg.yaml": testutils.ResourceGroupCatalog})
	c := catalog.New()
	require.NoError(t, c.Load(dir))
	return NewHandler(c, opts...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestGetHealth(t *testing.T) {
	rr := do(t, newTestHandler(t), "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[map[string]string](t, rr)
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	rr := do(t, newTestHandler(t, WithVersion("1.2.3")), "GET", "/info", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[map[string]string](t, rr)
	assert.Equal(t, "propschema-http", resp["app"])
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, APIVersion, resp["api_version"])
}

func TestGetSpec(t *testing.T) {
	rr := do(t, newTestHandler(t), "GET", "/openapi.yaml", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Microsoft.Resources_resourceGroups_2024-11-01")
	assert.Contains(t, rr.Body.String(), "/v1/validate")
}

func TestListSchemas(t *testing.T) {
	rr := do(t, newTestHandler(t), "GET", "/v1/schemas", "")

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[[]SchemaSummary](t, rr)
	require.Len(t, resp, 2)
	assert.Equal(t, SchemaSummary{ResourceType: "Microsoft.Resources/resourceGroups", Version: "2024-11-01", Properties: 5}, resp[0])
}

func TestGetSchema(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, "GET", "/v1/schemas/Microsoft.Resources%2FresourceGroups/2024-11-01", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	doc := decodeBody[catalog.Document](t, rr)
	assert.Equal(t, "Microsoft.Resources/resourceGroups", doc.ResourceType)
	assert.Equal(t, []string{"name", "location"}, doc.Required)
	assert.Equal(t, "pattern-match", doc.Properties["name"].Validation[0].RuleType)

	rr = do(t, h, "GET", "/v1/schemas/Microsoft.Resources%2FresourceGroups/2024-11-01?format=openapi", "")
	require.Equal(t, http.StatusOK, rr.Code)
	spec := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "object", spec["type"])

	rr = do(t, h, "GET", "/v1/schemas/Microsoft.Resources%2FresourceGroups/2024-11-01?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "GET", "/v1/schemas/Microsoft.Resources%2FresourceGroups/1999-01-01", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestValidate(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, "POST", "/v1/validate", `{
		"resourceType": "Microsoft.Resources/resourceGroups",
		"version": "2024-11-01",
		"properties": {"name": "bad name!", "location": "eastus", "count": 150, "extra": 1}
	}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[ValidateResponse](t, rr)
	assert.False(t, resp.Valid)
	assert.Equal(t, []string{
		"Property 'count' must be at most 100",
		"Name must be alphanumeric with hyphens",
	}, resp.Errors)
	assert.Equal(t, []string{"Unknown property 'extra' not defined in schema"}, resp.Warnings)
	assert.Equal(t, []string{
		"Property 'count' must be at most 100",
		"Name must be alphanumeric with hyphens",
		"[count] Property 'count' must be at most 100",
		"[name] Name must be alphanumeric with hyphens",
	}, resp.Formatted)
}

func TestValidate_NullProperties(t *testing.T) {
	rr := do(t, newTestHandler(t), "POST", "/v1/validate", `{"resourceType": "Microsoft.Resources/resourceGroups", "version": "2024-11-01"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[ValidateResponse](t, rr)
	assert.Equal(t, []string{"Properties cannot be undefined or null"}, resp.Errors)
}

func TestValidate_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"resourceType":`, http.StatusBadRequest},
		{"missing version", `{"resourceType": "Microsoft.Resources/resourceGroups"}`, http.StatusBadRequest},
		{"unknown schema", `{"resourceType": "Microsoft.Resources/resourceGroups", "version": "latest", "properties": {}}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, "POST", "/v1/validate", tt.body)
			assert.Equal(t, tt.code, rr.Code)
			resp := decodeBody[map[string]string](t, rr)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestValidate_BodyTooLarge(t *testing.T) {
	body := `{"resourceType": "Microsoft.Resources/resourceGroups", "version": "2024-11-01", "properties": {"name": "` +
		strings.Repeat("a", MaxBodyBytes) + `"}}`
	rr := do(t, newTestHandler(t), "POST", "/v1/validate", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	resp := decodeBody[map[string]string](t, rr)
	assert.Equal(t, "Request body too large", resp["error"])
}

func TestApplyDefaults(t *testing.T) {
	rr := do(t, newTestHandler(t), "POST", "/v1/defaults", `{
		"resourceType": "Microsoft.Resources/resourceGroups",
		"version": "2024-11-01",
		"properties": {"name": "rg"}
	}`)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeBody[BagResponse](t, rr)
	assert.Equal(t, map[string]any{"name": "rg", "tags": map[string]any{}, "count": float64(42)}, resp.Properties)
}

func TestTransform(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, "POST", "/v1/transform", `{
		"resourceType": "Microsoft.Resources/resourceGroups",
		"version": "2024-11-01",
		"targetVersion": "2025-01-01",
		"properties": {"oldName": "rg", "location": "eastus", "count": "7"}
	}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decodeBody[BagResponse](t, rr)
	assert.Equal(t, map[string]any{"name": "rg", "location": "eastus", "count": float64(7)}, resp.Properties)

	rr = do(t, h, "POST", "/v1/transform", `{
		"resourceType": "Microsoft.Resources/resourceGroups",
		"version": "2024-11-01",
		"targetVersion": "2025-01-01",
		"properties": {"count": "seven"}
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rr)["error"], "Cannot convert value at 'count' to number. Got: string")

	rr = do(t, h, "POST", "/v1/transform", `{"resourceType": "Microsoft.Resources/resourceGroups", "version": "2024-11-01", "properties": {}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, "POST", "/v1/transform", `{"resourceType": "Microsoft.Resources/resourceGroups", "version": "2024-11-01", "targetVersion": "2030-01-01", "properties": {}}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})

	rr := do(t, newTestHandler(t, WithMetrics(metrics)), "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# metrics", rr.Body.String())

	rr = do(t, newTestHandler(t), "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
