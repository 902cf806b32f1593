package types

import "fmt"

// Endpoint represents a single API operation extracted from an OpenAPI document.
// Identity is the (Method, Path) pair.
type Endpoint struct {
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	Tags        []string            `json:"tags"`
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary"`
	Description string              `json:"description"`
	Parameters  []Parameter         `json:"parameters"`
	Responses   map[string]Response `json:"responses"`
}

// Parameter represents an API parameter
type Parameter struct {
	Name        string      `json:"name"`
	In          string      `json:"in"`
	Required    bool        `json:"required"`
	Schema      interface{} `json:"schema,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
}

// Response represents an API response
type Response struct {
	Description string      `json:"description"`
	Schema      interface{} `json:"schema,omitempty"`
}

// Key returns the "METHOD /path" identity of the endpoint.
func (e Endpoint) Key() string {
	return fmt.Sprintf("%s %s", e.Method, e.Path)
}

// PrimaryTag returns the first tag, or fallback when the endpoint has none.
func (e Endpoint) PrimaryTag(fallback string) string {
	if len(e.Tags) == 0 {
		return fallback
	}
	return e.Tags[0]
}
