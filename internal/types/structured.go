package types

import "fmt"

// ResponseFormatType specifies how the LLM should format its response
type ResponseFormatType string

const (
	// ResponseFormatText indicates default, free-form text output
	ResponseFormatText ResponseFormatType = "text"
	// ResponseFormatJSONObject indicates any valid JSON object output
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	// ResponseFormatJSONSchema indicates JSON output matching a specific schema
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// String returns the string representation of ResponseFormatType
func (r ResponseFormatType) String() string {
	return string(r)
}

// IsValid checks if the response format type is valid
func (r ResponseFormatType) IsValid() bool {
	switch r {
	case ResponseFormatText, ResponseFormatJSONObject, ResponseFormatJSONSchema:
		return true
	default:
		return false
	}
}

// JSONSchema represents a JSON Schema for structured LLM output. Router
// decisions, guardrail verdicts, plans, and extracted query parameters are
// all requested through schemas built from this type.
type JSONSchema struct {
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Enum                 []any                  `json:"enum,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	AdditionalProperties *bool                  `json:"additionalProperties,omitempty"`
}

// ResponseFormat specifies the desired response structure from the LLM.
type ResponseFormat struct {
	// Type specifies the response format (text, json_object, json_schema)
	Type ResponseFormatType `json:"type"`

	// Name is an optional schema name for tracing and debugging
	Name string `json:"name,omitempty"`

	// Schema defines the JSON schema (required for json_schema type)
	Schema *JSONSchema `json:"schema,omitempty"`

	// Strict enforces exact schema match when true (provider-dependent)
	Strict bool `json:"strict,omitempty"`
}

// NewTextFormat creates a ResponseFormat for plain text output
func NewTextFormat() ResponseFormat {
	return ResponseFormat{Type: ResponseFormatText}
}

// NewJSONObjectFormat creates a ResponseFormat for any valid JSON output
func NewJSONObjectFormat(name string) ResponseFormat {
	return ResponseFormat{Type: ResponseFormatJSONObject, Name: name}
}

// NewJSONSchemaFormat creates a ResponseFormat with a specific JSON schema
func NewJSONSchemaFormat(name string, schema *JSONSchema, strict bool) ResponseFormat {
	return ResponseFormat{
		Type:   ResponseFormatJSONSchema,
		Name:   name,
		Schema: schema,
		Strict: strict,
	}
}

// Validate checks if the ResponseFormat is valid
func (r ResponseFormat) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("invalid response format type: %q", r.Type)
	}
	if r.Type == ResponseFormatJSONSchema {
		if r.Schema == nil {
			return fmt.Errorf("schema is required for json_schema format")
		}
		if r.Name == "" {
			return fmt.Errorf("name is required for json_schema format")
		}
	}
	return nil
}
