package api

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/gaspardpetit/promptrelay/internal/relay"
)

var openapiJSON = mustOpenAPISchema()

// OpenAPIDocument describes the public HTTP surface.
func OpenAPIDocument() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "promptrelay API",
			Description: "Forwards prompts with a fixed system instruction to an upstream chat-completion API.",
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}

	errSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewStringSchema().WithEnum(
			string(relay.KindInvalidRequest), string(relay.KindConfiguration), string(relay.KindTimeout),
			string(relay.KindHTTP), string(relay.KindNetwork), string(relay.KindParse), string(relay.KindUnknown),
		)).
		WithProperty("upstream_status", openapi3.NewIntegerSchema()).
		WithProperty("upstream_body", openapi3.NewStringSchema())
	errSchema.Required = []string{"error", "status"}

	reqSchema := openapi3.NewObjectSchema().
		WithProperty("prompt", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("model", openapi3.NewStringSchema())
	reqSchema.Required = []string{"prompt"}

	genSchema := openapi3.NewObjectSchema().
		WithProperty(relay.FieldSelectedModelName, openapi3.NewStringSchema()).
		WithProperty(relay.FieldSelectedModelID, openapi3.NewStringSchema()).
		WithProperty(relay.FieldModelDescription, openapi3.NewStringSchema()).
		WithAnyAdditionalProperties()

	gen := operation("generate", "Generate content from a prompt")
	gen.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(reqSchema)}
	gen.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Upstream completion with selected model fields").WithJSONSchema(genSchema))
	for _, code := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		gen.AddResponse(code, openapi3.NewResponse().WithDescription(http.StatusText(code)).WithJSONSchema(errSchema))
	}
	doc.AddOperation("/api/generate", http.MethodPost, gen)

	healthSchema := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewStringSchema()).
		WithProperty("api_key_set", openapi3.NewBoolSchema()).
		WithProperty("api_key_format_ok", openapi3.NewBoolSchema()).
		WithProperty("default_model", openapi3.NewStringSchema()).
		WithProperty("upstream_host", openapi3.NewStringSchema())
	health := operation("getHealth", "Report configuration health")
	health.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Health snapshot").WithJSONSchema(healthSchema))
	doc.AddOperation("/api/health", http.MethodGet, health)

	modelSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("display_name", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("api_model", openapi3.NewStringSchema()).
		WithProperty("aliases", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())).
		WithProperty("capabilities", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	modelsSchema := openapi3.NewObjectSchema().
		WithProperty("models", openapi3.NewArraySchema().WithItems(modelSchema)).
		WithProperty("default", openapi3.NewStringSchema())
	models := operation("listModels", "List selectable models")
	models.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Model table").WithJSONSchema(modelsSchema))
	doc.AddOperation("/api/models", http.MethodGet, models)

	healthz := operation("getHealthz", "Liveness probe")
	healthz.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("OK"))
	healthz.AddResponse(http.StatusServiceUnavailable, openapi3.NewResponse().WithDescription("Draining"))
	doc.AddOperation("/healthz", http.MethodGet, healthz)

	return doc
}

func operation(id, summary string) *openapi3.Operation {
	return &openapi3.Operation{OperationID: id, Summary: summary, Responses: &openapi3.Responses{}}
}

func mustOpenAPISchema() []byte {
	b, err := OpenAPIDocument().MarshalJSON()
	if err != nil {
		panic(err)
	}
	return b
}
