// Package ginstructstream serves extractions over HTTP with gin. Partial
// values stream to the client as server-sent events while the model is
// still answering.
package ginstructstream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/deepankarm/structstream/pkg/structstream"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

// SSE event names.
const (
	EventChunk  = "chunk"
	EventResult = "result"
	EventError  = "error"
)

// requestShape is the body every extraction endpoint accepts.
var requestShape = shape.Object(
	shape.Field("context", shape.String(), shape.Instruction("Text to extract from.")),
)

// API holds the registered extraction endpoints and their OpenAPI
// description.
type API struct {
	mu        sync.RWMutex
	endpoints map[string]*EndpointSpec // key: "METHOD /path"
	info      APIInfo
}

type APIInfo struct {
	Title       string
	Version     string
	Description string
}

type EndpointSpec struct {
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool

	// Shape of the extracted value
	Shape           *shape.Shape
	RequestExamples map[string]any
}

// Result is the payload of the result event and of non-streaming responses.
type Result struct {
	ID       string              `json:"id"`
	Value    *structstream.Value `json:"value"`
	Attempts int                 `json:"attempts"`
}

// ErrorBody is the payload of the error event and of error responses.
type ErrorBody struct {
	Error   string                        `json:"error"`
	Details structstream.ValidationErrors `json:"details,omitempty"`
}

// New creates a new API instance
func New(title, version string) *API {
	return &API{
		endpoints: make(map[string]*EndpointSpec),
		info: APIInfo{
			Title:   title,
			Version: version,
		},
	}
}

// Register adds POST path, which runs an extraction of s, and GET
// path/schema, which returns the JSON schema of s.
func (api *API) Register(routes gin.IRoutes, path string, extractor *structstream.Extractor, s *shape.Shape, opts ...EndpointOption) {
	routes.POST(path, api.Extraction(path, extractor, s, opts...))

	schemaPath := strings.TrimSuffix(path, "/") + "/schema"
	spec := &EndpointSpec{Method: http.MethodGet, Path: schemaPath, Shape: s}
	for _, opt := range opts {
		opt(spec)
	}
	spec.Summary = "JSON schema of the extracted value"
	spec.Description = ""
	spec.RequestExamples = nil

	api.mu.Lock()
	api.endpoints[spec.Method+" "+spec.Path] = spec
	api.mu.Unlock()

	routes.GET(schemaPath, SchemaHandler(s))
}

// Extraction returns a handler that reads {"context": "..."} and extracts a
// value of shape s from it.
//
// By default the response is a text/event-stream: one chunk event per partial
// value, then a single result or error event. With ?stream=false the handler
// waits and answers with plain JSON instead.
func (api *API) Extraction(path string, extractor *structstream.Extractor, s *shape.Shape, opts ...EndpointOption) gin.HandlerFunc {
	spec := &EndpointSpec{
		Method: http.MethodPost,
		Path:   path,
		Shape:  s,
	}
	for _, opt := range opts {
		opt(spec)
	}

	api.mu.Lock()
	api.endpoints[spec.Method+" "+spec.Path] = spec
	api.mu.Unlock()

	return func(c *gin.Context) {
		text, ok := readContext(c)
		if !ok {
			return
		}

		if c.Query("stream") == "false" {
			res, err := extractor.Extract(c.Request.Context(), s, text, nil)
			if err != nil {
				c.JSON(errorStatus(err), errorBody(err))
				return
			}
			c.JSON(http.StatusOK, Result{ID: res.ID, Value: res.Value, Attempts: res.Attempts})
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)

		res, err := extractor.Extract(c.Request.Context(), s, text, func(v *structstream.Value) {
			c.SSEvent(EventChunk, v)
			c.Writer.Flush()
		})
		if err != nil {
			if c.Request.Context().Err() != nil {
				// Client went away
				return
			}
			c.SSEvent(EventError, errorBody(err))
			c.Writer.Flush()
			return
		}
		c.SSEvent(EventResult, Result{ID: res.ID, Value: res.Value, Attempts: res.Attempts})
		c.Writer.Flush()
	}
}

// readContext validates the request body and returns its context field. On
// failure the error response has already been sent.
func readContext(c *gin.Context) (string, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: "failed to read request body"})
		return "", false
	}

	value, errs := structstream.Validate(requestShape, body)
	if errs != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
			Error:   "validation failed",
			Details: errs,
		})
		return "", false
	}
	return value.Field("context").Str(), true
}

func errorBody(err error) ErrorBody {
	var extractionErr *structstream.ExtractionError
	if errors.As(err, &extractionErr) {
		return ErrorBody{Error: extractionErr.Error(), Details: extractionErr.Errors}
	}
	return ErrorBody{Error: err.Error()}
}

func errorStatus(err error) int {
	var transportErr *structstream.TransportError
	switch {
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// SchemaHandler serves the JSON schema of s.
func SchemaHandler(s *shape.Shape) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.JSONSchema())
	}
}

// OpenAPIHandler returns a handler that serves the OpenAPI spec
func (api *API) OpenAPIHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		spec := api.GenerateOpenAPI()
		c.JSON(http.StatusOK, spec)
	}
}

// GenerateOpenAPI generates the OpenAPI 3.0 specification
func (api *API) GenerateOpenAPI() map[string]any {
	api.mu.RLock()
	defer api.mu.RUnlock()

	paths := make(map[string]any)
	keys := make([]string, 0, len(api.endpoints))
	for key := range api.endpoints {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		endpoint := api.endpoints[key]
		openAPIPath := ConvertGinPathToOpenAPI(endpoint.Path)

		pathItem, ok := paths[openAPIPath].(map[string]any)
		if !ok {
			pathItem = make(map[string]any)
			paths[openAPIPath] = pathItem
		}
		pathItem[strings.ToLower(endpoint.Method)] = api.buildOperation(endpoint, openAPIPath)
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       api.info.Title,
			"version":     api.info.Version,
			"description": api.info.Description,
		},
		"paths": paths,
	}
}

// buildOperation creates an OpenAPI operation object for an endpoint
func (api *API) buildOperation(endpoint *EndpointSpec, openAPIPath string) map[string]any {
	operation := make(map[string]any)

	// Add basic metadata
	if endpoint.Summary != "" {
		operation["summary"] = endpoint.Summary
	}
	if endpoint.Description != "" {
		operation["description"] = endpoint.Description
	}
	if len(endpoint.Tags) > 0 {
		operation["tags"] = endpoint.Tags
	}
	if endpoint.Deprecated {
		operation["deprecated"] = true
	}

	if endpoint.Method == http.MethodGet {
		operation["parameters"] = pathParameters(openAPIPath)
		operation["responses"] = map[string]any{
			"200": map[string]any{
				"description": "JSON schema of the extracted value",
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"type": "object"},
						"example": schemaMap(endpoint.Shape),
					},
				},
			},
		}
		return operation
	}

	params := []any{map[string]any{
		"name":        "stream",
		"in":          "query",
		"schema":      map[string]any{"type": "boolean", "default": true},
		"description": "Stream partial values as server-sent events",
	}}
	operation["parameters"] = append(params, pathParameters(openAPIPath)...)

	requestContent := map[string]any{"schema": schemaMap(requestShape)}
	if len(endpoint.RequestExamples) > 0 {
		requestContent["examples"] = endpoint.RequestExamples
	}
	operation["requestBody"] = map[string]any{
		"required": true,
		"content": map[string]any{
			"application/json": requestContent,
		},
	}

	valueSchema := schemaMap(endpoint.Shape)
	operation["responses"] = map[string]any{
		"200": map[string]any{
			"description": "Extracted value",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"id":       map[string]any{"type": "string"},
							"attempts": map[string]any{"type": "integer"},
							"value":    valueSchema,
						},
					},
				},
				"text/event-stream": map[string]any{
					"schema": map[string]any{"type": "string"},
				},
			},
		},
		"400": map[string]any{"description": "Invalid request body"},
		"422": map[string]any{"description": "The model output failed validation on every attempt"},
		"502": map[string]any{"description": "The provider failed"},
	}

	return operation
}

func pathParameters(openAPIPath string) []any {
	params := []any{}
	for _, name := range ExtractPathParameters(openAPIPath) {
		params = append(params, map[string]any{
			"name":     name,
			"in":       "path",
			"required": true,
			"schema":   map[string]any{"type": "string"},
		})
	}
	return params
}

// schemaMap renders the JSON schema of s without the $schema keyword.
func schemaMap(s *shape.Shape) map[string]any {
	m, err := s.SchemaMap()
	if err != nil {
		return map[string]any{}
	}
	delete(m, "$schema")
	return m
}

// MarshalOpenAPI returns the OpenAPI spec as JSON bytes
func (api *API) MarshalOpenAPI() ([]byte, error) {
	spec := api.GenerateOpenAPI()
	return json.MarshalIndent(spec, "", "  ")
}

// ConvertGinPathToOpenAPI converts Gin path format to OpenAPI format
// e.g., /extract/:kind -> /extract/{kind}
func ConvertGinPathToOpenAPI(ginPath string) string {
	result := ginPath
	for {
		start := strings.Index(result, ":")
		if start == -1 {
			break
		}
		end := start + 1
		for end < len(result) && result[end] != '/' {
			end++
		}
		result = result[:start] + "{" + result[start+1:end] + "}" + result[end:]
	}
	return result
}

// ExtractPathParameters extracts parameter names from an OpenAPI path
// e.g., /extract/{kind} -> ["kind"]
func ExtractPathParameters(path string) []string {
	var params []string
	for {
		start := strings.Index(path, "{")
		if start == -1 {
			break
		}
		end := strings.Index(path[start:], "}")
		if end == -1 {
			break
		}
		params = append(params, path[start+1:start+end])
		path = path[start+end+1:]
	}
	return params
}
