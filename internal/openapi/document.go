package openapi

import (
	"net/http"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// Document describes the HTTP API for the given schemas: one component per
// schema plus the request and response shapes of the /v1 routes.
func Document(title, version string, schemas []*schema.Schema) *openapi3.T {
	resultSchema := validationResult()
	errSchema := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	components := openapi3.Schemas{
		"ValidationResult": openapi3.NewSchemaRef("", resultSchema),
		"Error":            openapi3.NewSchemaRef("", errSchema),
	}
	for _, s := range schemas {
		components[ComponentName(s)] = openapi3.NewSchemaRef("", FromSchema(s))
	}

	bag := openapi3.NewObjectSchema()
	bag.Description = "Property bag of one resource instance"

	request := openapi3.NewObjectSchema().
		WithProperty("resourceType", openapi3.NewStringSchema()).
		WithProperty("version", openapi3.NewStringSchema()).
		WithProperty("properties", bag)
	request.Required = []string{"resourceType", "version"}

	transformRequest := openapi3.NewObjectSchema().
		WithProperty("resourceType", openapi3.NewStringSchema()).
		WithProperty("version", openapi3.NewStringSchema()).
		WithProperty("targetVersion", openapi3.NewStringSchema()).
		WithProperty("properties", bag)
	transformRequest.Required = []string{"resourceType", "version", "targetVersion"}

	bagResponse := openapi3.NewObjectSchema().WithProperty("properties", bag)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Components: &openapi3.Components{Schemas: components},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/v1/validate", &openapi3.PathItem{
				Post: operation("validateProperties", "Validate a property bag", request, errSchema,
					response(http.StatusOK, "Validation result", openapi3.NewSchemaRef("#/components/schemas/ValidationResult", resultSchema))),
			}),
			openapi3.WithPath("/v1/defaults", &openapi3.PathItem{
				Post: operation("applyDefaults", "Fill in default values", request, errSchema,
					response(http.StatusOK, "Defaulted property bag", openapi3.NewSchemaRef("", bagResponse))),
			}),
			openapi3.WithPath("/v1/transform", &openapi3.PathItem{
				Post: operation("transformProperties", "Reshape a property bag into another API version", transformRequest, errSchema,
					response(http.StatusOK, "Transformed property bag", openapi3.NewSchemaRef("", bagResponse))),
			}),
		),
	}
	return doc
}

func validationResult() *openapi3.Schema {
	list := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
	byPath := openapi3.NewObjectSchema().WithAdditionalProperties(list)

	s := openapi3.NewObjectSchema().
		WithProperty("valid", openapi3.NewBoolSchema()).
		WithProperty("errors", list).
		WithProperty("warnings", list).
		WithProperty("propertyErrors", byPath).
		WithProperty("formatted", list)
	s.Required = []string{"valid", "errors", "warnings"}
	return s
}

func operation(id, summary string, body, errSchema *openapi3.Schema, ok openapi3.NewResponsesOption) *openapi3.Operation {
	errRef := openapi3.NewSchemaRef("#/components/schemas/Error", errSchema)

	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
	}
	op.Responses = openapi3.NewResponses(
		ok,
		response(http.StatusBadRequest, "Malformed request body", errRef),
		response(http.StatusNotFound, "Unknown resource type or version", errRef),
		response(http.StatusUnprocessableEntity, "A value cannot be converted to its declared type", errRef),
	)
	return op
}

func response(status int, description string, ref *openapi3.SchemaRef) openapi3.NewResponsesOption {
	return openapi3.WithStatus(status, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(ref),
	})
}
