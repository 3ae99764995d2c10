package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aretw0/propschema"
	"github.com/aretw0/propschema/internal/openapi"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/aretw0/propschema/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// APIVersion is the version of the HTTP contract.
const APIVersion = "1.0.0"

// Catalog is the schema source the server answers from.
type Catalog interface {
	Get(resourceType, version string) (*schema.Schema, error)
	Validator(resourceType, version string) (*propschema.Validator, error)
	Schemas() []*schema.Schema
}

// MaxBodyBytes caps the size of /v1 request bodies.
const MaxBodyBytes = 1 << 20

// Server serves validation, defaulting and transformation over JSON.
type Server struct {
	Catalog Catalog
	Version string

	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the build version reported by /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// NewHandler creates a new HTTP handler for the catalog.
func NewHandler(c Catalog, opts ...Option) http.Handler {
	server := &Server{Catalog: c, Version: "dev"}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/openapi.yaml", server.GetSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/schemas", server.ListSchemas)
		r.Get("/schemas/{resourceType}/{version}", server.GetSchema)
		r.Post("/validate", server.Validate)
		r.Post("/defaults", server.ApplyDefaults)
		r.Post("/transform", server.Transform)
	})
	return r
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>propschema API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// BagRequest is the body of /v1/validate, /v1/defaults and /v1/transform.
type BagRequest struct {
	ResourceType  string         `json:"resourceType"`
	Version       string         `json:"version"`
	TargetVersion string         `json:"targetVersion,omitempty"`
	Properties    map[string]any `json:"properties"`
}

// BagResponse carries a defaulted or transformed bag.
type BagResponse struct {
	Properties map[string]any `json:"properties"`
}

// ValidateResponse is a ValidationResult plus its flattened form.
type ValidateResponse struct {
	schema.ValidationResult
	Formatted []string `json:"formatted"`
}

// SchemaSummary identifies one catalog entry.
type SchemaSummary struct {
	ResourceType string `json:"resourceType"`
	Version      string `json:"version"`
	Properties   int    `json:"properties"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "propschema-http",
		"version":     s.Version,
		"api_version": APIVersion,
	})
}

// GetSpec handles GET /openapi.yaml. The document includes one component per
// catalog schema.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := openapi.YAML(openapi.Document("propschema", APIVersion, s.Catalog.Schemas()))
	if err != nil {
		s.logger.Error("Failed to render spec", "err", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load spec")
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(spec)
}

// ListSchemas handles GET /v1/schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := s.Catalog.Schemas()
	out := make([]SchemaSummary, 0, len(schemas))
	for _, sc := range schemas {
		out = append(out, SchemaSummary{ResourceType: sc.ResourceType, Version: sc.Version, Properties: len(sc.Properties)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetSchema handles GET /v1/schemas/{resourceType}/{version}. The resource type
// is path-escaped because it contains a slash. ?format=openapi returns the
// OpenAPI object schema instead of the catalog document.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	resourceType, err := url.PathUnescape(chi.URLParam(r, "resourceType"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid resource type")
		return
	}
	version, err := url.PathUnescape(chi.URLParam(r, "version"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid version")
		return
	}

	sc, err := s.Catalog.Get(resourceType, version)
	if err != nil {
		s.fail(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "openapi":
		s.writeJSON(w, http.StatusOK, openapi.FromSchema(sc))
	case "", "document":
		s.writeJSON(w, http.StatusOK, catalog.ToDocument(sc))
	default:
		s.writeError(w, http.StatusBadRequest, "Unknown format")
	}
}

// Validate handles POST /v1/validate. It answers 200 whenever the schema exists,
// whether the bag is valid or not.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	body, v, ok := s.decode(w, r)
	if !ok {
		return
	}
	result := v.ValidateProps(body.Properties)
	s.writeJSON(w, http.StatusOK, ValidateResponse{
		ValidationResult: result,
		Formatted:        v.FormatValidationErrors(result),
	})
}

// ApplyDefaults handles POST /v1/defaults.
func (s *Server) ApplyDefaults(w http.ResponseWriter, r *http.Request) {
	body, v, ok := s.decode(w, r)
	if !ok {
		return
	}
	out, err := v.ApplyDefaults(body.Properties)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, BagResponse{Properties: out})
}

// Transform handles POST /v1/transform.
func (s *Server) Transform(w http.ResponseWriter, r *http.Request) {
	body, v, ok := s.decode(w, r)
	if !ok {
		return
	}
	if body.TargetVersion == "" {
		s.writeError(w, http.StatusBadRequest, "targetVersion is required")
		return
	}
	target, err := s.Catalog.Get(body.ResourceType, body.TargetVersion)
	if err != nil {
		s.fail(w, err)
		return
	}
	out, err := v.TransformTo(body.Properties, target)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, BagResponse{Properties: out})
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (BagRequest, *propschema.Validator, bool) {
	var body BagRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return body, nil, false
		}
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return body, nil, false
	}
	if body.ResourceType == "" || body.Version == "" {
		s.writeError(w, http.StatusBadRequest, "resourceType and version are required")
		return body, nil, false
	}

	v, err := s.Catalog.Validator(body.ResourceType, body.Version)
	if err != nil {
		s.fail(w, err)
		return body, nil, false
	}
	return body, v, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schema.ErrSchemaNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, schema.ErrCoercion), errors.Is(err, schema.ErrNilSchema):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("Request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Response encode failed", "err", err)
	}
}
