package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/budget-ledger/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the subset of an OpenAPI 3.0 document the API publishes
type OpenAPI3Spec struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OpenAPI3Handler serves the generated Swagger 2.0 document converted to OpenAPI 3.0
func OpenAPI3Handler(servers []Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec, err := convertSwagger(servers)
		if err != nil {
			return NewInternalError(c, "Failed to read API documentation")
		}
		return c.JSON(http.StatusOK, spec)
	}
}

func convertSwagger(servers []Server) (*OpenAPI3Spec, error) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return nil, err
	}

	var swagger2 map[string]any
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return nil, err
	}

	info, _ := swagger2["info"].(map[string]any)
	paths, _ := swagger2["paths"].(map[string]any)

	components := make(map[string]any)
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]any); ok {
		components["securitySchemes"] = securitySchemes(secDefs)
	}
	if definitions, ok := swagger2["definitions"].(map[string]any); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	converted := make(map[string]any, len(paths))
	for path, item := range paths {
		operations, ok := item.(map[string]any)
		if !ok {
			continue
		}
		convertedOps := make(map[string]any, len(operations))
		for method, op := range operations {
			if operation, ok := op.(map[string]any); ok {
				convertedOps[method] = convertOperation(operation)
			}
		}
		converted[path] = convertedOps
	}

	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      converted,
		Components: components,
	}, nil
}

// convertOperation moves body parameters into requestBody and wraps response
// schemas in a content map
func convertOperation(op map[string]any) map[string]any {
	result := make(map[string]any, len(op))
	consumes := mediaTypes(op["consumes"])
	produces := mediaTypes(op["produces"])

	for key, value := range op {
		switch key {
		case "consumes", "produces":
		case "parameters":
			params, _ := value.([]any)
			var kept []any
			for _, p := range params {
				param, ok := p.(map[string]any)
				if !ok {
					continue
				}
				if param["in"] == "body" {
					result["requestBody"] = map[string]any{
						"description": param["description"],
						"required":    param["required"],
						"content":     content(consumes, param["schema"]),
					}
					continue
				}
				kept = append(kept, convertParameter(param))
			}
			if len(kept) > 0 {
				result["parameters"] = kept
			}
		case "responses":
			responses, _ := value.(map[string]any)
			out := make(map[string]any, len(responses))
			for status, r := range responses {
				resp, ok := r.(map[string]any)
				if !ok {
					continue
				}
				converted := map[string]any{"description": resp["description"]}
				if schema, ok := resp["schema"]; ok {
					converted["content"] = content(produces, schema)
				}
				out[status] = converted
			}
			result["responses"] = out
		default:
			result[key] = rewriteRefs(value)
		}
	}
	return result
}

// convertParameter nests the type fields of a non-body parameter under schema
func convertParameter(param map[string]any) map[string]any {
	result := make(map[string]any)
	schema := make(map[string]any)
	for key, value := range param {
		switch key {
		case "name", "in", "description", "required":
			result[key] = value
		case "type", "format", "enum", "default", "minimum", "maximum", "items":
			schema[key] = rewriteRefs(value)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

func content(types []string, schema any) map[string]any {
	if len(types) == 0 {
		types = []string{"application/json"}
	}
	out := make(map[string]any, len(types))
	for _, t := range types {
		out[t] = map[string]any{"schema": rewriteRefs(schema)}
	}
	return out
}

func mediaTypes(v any) []string {
	list, _ := v.([]any)
	types := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			types = append(types, s)
		}
	}
	return types
}

// securitySchemes converts Swagger 2.0 apiKey definitions. Authorization headers
// become bearer schemes.
func securitySchemes(defs map[string]any) map[string]any {
	out := make(map[string]any, len(defs))
	for name, d := range defs {
		def, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if def["in"] == "header" && strings.EqualFold(asString(def["name"]), "Authorization") {
			out[name] = map[string]any{"type": "http", "scheme": "bearer", "description": def["description"]}
			continue
		}
		out[name] = def
	}
	return out
}

// rewriteRefs points #/definitions/ references at #/components/schemas/
func rewriteRefs(data any) any {
	switch v := data.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	default:
		return data
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
