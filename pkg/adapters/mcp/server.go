package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/propschema"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/aretw0/propschema/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource that lists every schema in the catalog.
const CatalogURI = "propschema://catalog"

// Catalog is the schema source the MCP server answers from.
type Catalog interface {
	Get(resourceType, version string) (*schema.Schema, error)
	Validator(resourceType, version string) (*propschema.Validator, error)
	Schemas() []*schema.Schema
}

// ValidateResponse is the structured result of validate_properties.
type ValidateResponse struct {
	schema.ValidationResult
	Formatted []string `json:"formatted" jsonschema_description:"Errors followed by per-property errors as '[path] message'"`
}

// BagResponse is the structured result of apply_defaults and transform_properties.
type BagResponse struct {
	Properties map[string]any `json:"properties" jsonschema_description:"The resulting property bag"`
}

// SchemaSummary identifies one catalog entry.
type SchemaSummary struct {
	ResourceType string `json:"resourceType"`
	Version      string `json:"version"`
	Properties   int    `json:"properties"`
}

// Server exposes a schema catalog as MCP tools and resources.
type Server struct {
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures and transport events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(c Catalog, version string, opts ...Option) *Server {
	s := &Server{
		catalog:   c,
		mcpServer: server.NewMCPServer("propschema-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_properties",
		mcp.WithDescription("Validate a property bag against a resource schema. Invalid bags are reported in the result, not as tool errors."),
		mcp.WithString("resourceType", mcp.Required(), mcp.Description("Resource type, e.g. Microsoft.Resources/resourceGroups")),
		mcp.WithString("version", mcp.Required(), mcp.Description("API version of the schema")),
		mcp.WithString("properties", mcp.Required(), mcp.Description("JSON object with the property bag")),
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("apply_defaults",
		mcp.WithDescription("Fill absent properties with the defaults declared by the schema."),
		mcp.WithString("resourceType", mcp.Required(), mcp.Description("Resource type")),
		mcp.WithString("version", mcp.Required(), mcp.Description("API version of the schema")),
		mcp.WithString("properties", mcp.Required(), mcp.Description("JSON object with the property bag")),
		mcp.WithOutputSchema[BagResponse](),
	), mcp.NewStructuredToolHandler(s.handleDefaults))

	s.mcpServer.AddTool(mcp.NewTool("transform_properties",
		mcp.WithDescription("Reshape a property bag from one API version into another, applying renames and type coercion."),
		mcp.WithString("resourceType", mcp.Required(), mcp.Description("Resource type")),
		mcp.WithString("version", mcp.Required(), mcp.Description("API version the bag conforms to")),
		mcp.WithString("targetVersion", mcp.Required(), mcp.Description("API version to transform into")),
		mcp.WithString("properties", mcp.Required(), mcp.Description("JSON object with the property bag")),
		mcp.WithOutputSchema[BagResponse](),
	), mcp.NewStructuredToolHandler(s.handleTransform))

	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List every resource type and version in the catalog."),
	), s.handleList)

	s.mcpServer.AddTool(mcp.NewTool("describe_schema",
		mcp.WithDescription("Return the catalog document of one schema."),
		mcp.WithString("resourceType", mcp.Required(), mcp.Description("Resource type")),
		mcp.WithString("version", mcp.Required(), mcp.Description("API version of the schema")),
	), s.handleDescribe)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ValidateResponse, error) {
	v, bag, err := s.prepare(args)
	if err != nil {
		return ValidateResponse{}, err
	}
	result := v.ValidateProps(bag)
	return ValidateResponse{ValidationResult: result, Formatted: v.FormatValidationErrors(result)}, nil
}

func (s *Server) handleDefaults(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (BagResponse, error) {
	v, bag, err := s.prepare(args)
	if err != nil {
		return BagResponse{}, err
	}
	out, err := v.ApplyDefaults(bag)
	if err != nil {
		s.logger.Warn("MCP apply_defaults failed", "err", err)
		return BagResponse{}, err
	}
	return BagResponse{Properties: out}, nil
}

func (s *Server) handleTransform(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (BagResponse, error) {
	v, bag, err := s.prepare(args)
	if err != nil {
		return BagResponse{}, err
	}
	targetVersion, _ := args["targetVersion"].(string)
	if targetVersion == "" {
		return BagResponse{}, errors.New("targetVersion is required")
	}
	target, err := s.catalog.Get(v.ResourceType(), targetVersion)
	if err != nil {
		return BagResponse{}, err
	}
	out, err := v.TransformTo(bag, target)
	if err != nil {
		s.logger.Warn("MCP transform_properties failed", "err", err)
		return BagResponse{}, err
	}
	return BagResponse{Properties: out}, nil
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.summaries())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resourceType := request.GetString("resourceType", "")
	version := request.GetString("version", "")
	sc, err := s.catalog.Get(resourceType, version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, err := json.Marshal(catalog.ToDocument(sc))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// prepare resolves the validator named by args and decodes the bag. The bag may
// arrive as a JSON string or, from clients that send objects, as a map.
func (s *Server) prepare(args map[string]any) (*propschema.Validator, map[string]any, error) {
	resourceType, _ := args["resourceType"].(string)
	version, _ := args["version"].(string)
	if resourceType == "" || version == "" {
		return nil, nil, errors.New("resourceType and version are required")
	}

	v, err := s.catalog.Validator(resourceType, version)
	if err != nil {
		return nil, nil, err
	}

	var bag map[string]any
	switch raw := args["properties"].(type) {
	case map[string]any:
		bag = raw
	case string:
		if err := json.Unmarshal([]byte(raw), &bag); err != nil {
			return nil, nil, fmt.Errorf("properties must be a JSON object: %w", err)
		}
	case nil:
	default:
		return nil, nil, fmt.Errorf("properties must be a JSON object, got %T", raw)
	}
	return v, bag, nil
}

func (s *Server) summaries() []SchemaSummary {
	schemas := s.catalog.Schemas()
	out := make([]SchemaSummary, 0, len(schemas))
	for _, sc := range schemas {
		out = append(out, SchemaSummary{ResourceType: sc.ResourceType, Version: sc.Version, Properties: len(sc.Properties)})
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Schema Catalog",
		mcp.WithResourceDescription("Every resource type and version known to the server"),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.summaries())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
