package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"api-testcase-generator/internal/types"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// supportedMethods are the HTTP methods turned into endpoints; anything else under a
// path item (parameters, servers, head, options, extensions) is ignored.
var supportedMethods = map[string]bool{
	"get":    true,
	"post":   true,
	"put":    true,
	"delete": true,
	"patch":  true,
}

// Document carries the document-level facts reported alongside the endpoints.
type Document struct {
	Title   string
	Version string
	Source  string
}

// SwaggerParser handles fetching of Swagger/OpenAPI specifications from a running service
type SwaggerParser struct {
	baseURL string
	client  *http.Client
}

// NewSwaggerParser creates a new instance of SwaggerParser
func NewSwaggerParser(baseURL string) *SwaggerParser {
	return &SwaggerParser{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// ParseEndpoints fetches the OpenAPI document from the first well-known location that
// answers and extracts its endpoints.
func (p *SwaggerParser) ParseEndpoints(ctx context.Context) ([]types.Endpoint, *Document, error) {
	urls := []string{
		fmt.Sprintf("%s/openapi.json", p.baseURL),
		fmt.Sprintf("%s/swagger/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/swagger.json", p.baseURL),
		fmt.Sprintf("%s/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/api/swagger.json", p.baseURL),
		fmt.Sprintf("%s/api/v1/swagger.json", p.baseURL),
		fmt.Sprintf("%s/swagger/v1/swagger", p.baseURL),
		fmt.Sprintf("%s/swagger", p.baseURL),
	}

	var lastErr error
	for _, url := range urls {
		log.Debug().Str("url", url).Msg("trying to fetch OpenAPI documentation")
		body, err := p.fetch(ctx, url)
		if err != nil {
			lastErr = err
			log.Debug().Err(err).Str("url", url).Msg("fetch failed")
			continue
		}

		endpoints, doc, err := ExtractEndpoints(body)
		if err != nil {
			return nil, nil, &SpecParseError{Path: url, Err: err}
		}
		doc.Source = url
		log.Info().Str("url", url).Int("endpoints", len(endpoints)).Msg("fetched OpenAPI documentation")
		return endpoints, doc, nil
	}

	return nil, nil, &SpecNotFoundError{
		Path: p.baseURL,
		Err:  fmt.Errorf("no known OpenAPI location answered, last error: %w", lastErr),
	}
}

// ParseURL is a shorthand for NewSwaggerParser(baseURL).ParseEndpoints(ctx).
func ParseURL(ctx context.Context, baseURL string) ([]types.Endpoint, *Document, error) {
	return NewSwaggerParser(baseURL).ParseEndpoints(ctx)
}

func (p *SwaggerParser) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// ParseFile reads the OpenAPI document at path and extracts its endpoints.
func ParseFile(path string) ([]types.Endpoint, *Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &SpecNotFoundError{Path: path}
		}
		return nil, nil, &SpecNotFoundError{Path: path, Err: err}
	}

	endpoints, doc, err := ExtractEndpoints(data)
	if err != nil {
		return nil, nil, &SpecParseError{Path: path, Err: err}
	}
	doc.Source = path
	return endpoints, doc, nil
}

// ExtractEndpoints parses an OpenAPI document and returns its operations in document
// order: paths as they appear in the file, and methods as they appear under each path.
func ExtractEndpoints(data []byte) ([]types.Endpoint, *Document, error) {
	// Decoded maps lose key order, so the order is read from the raw document.
	var (
		paths []rawPath
		err   error
	)
	isJSON := bytes.HasPrefix(bytes.TrimSpace(data), []byte("{"))
	if isJSON {
		paths, err = jsonPaths(data)
	} else {
		paths, err = yamlPaths(data)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("invalid document: %w", err)
	}

	oas, err := load(data, isJSON)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	doc := &Document{}
	if oas.Info != nil {
		doc.Title = oas.Info.Title
		doc.Version = oas.Info.Version
	}

	endpoints := []types.Endpoint{}
	for _, rp := range paths {
		var item *openapi3.PathItem
		if oas.Paths != nil {
			item = oas.Paths.Value(rp.path)
		}

		for _, ro := range rp.operations {
			method := strings.ToUpper(ro.method)

			var operation *openapi3.Operation
			if item != nil {
				operation = item.GetOperation(method)
			}
			if operation == nil {
				operation, err = ro.decode()
				if err != nil {
					return nil, nil, fmt.Errorf("invalid operation %s %s: %w", method, rp.path, err)
				}
			}

			endpoints = append(endpoints, buildEndpoint(method, rp.path, operation))
		}
	}

	return endpoints, doc, nil
}

// rawPath is one entry of the paths object with its operations in document order.
type rawPath struct {
	path       string
	operations []rawOperation
}

// rawOperation keeps an operation undecoded until the loader turns out not to have it
// (for example under an upper-case method key).
type rawOperation struct {
	method string
	decode func() (*openapi3.Operation, error)
}

func jsonPaths(data []byte) ([]rawPath, error) {
	var top struct {
		Paths json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if !isJSONObject(top.Paths) {
		return nil, nil
	}

	items := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(top.Paths, items); err != nil {
		return nil, err
	}

	var paths []rawPath
	for pair := items.Oldest(); pair != nil; pair = pair.Next() {
		if !isJSONObject(pair.Value) {
			continue
		}
		methods := orderedmap.New[string, json.RawMessage]()
		if err := json.Unmarshal(pair.Value, methods); err != nil {
			return nil, err
		}

		rp := rawPath{path: pair.Key}
		for m := methods.Oldest(); m != nil; m = m.Next() {
			if !supportedMethods[strings.ToLower(m.Key)] {
				continue
			}
			raw := m.Value
			rp.operations = append(rp.operations, rawOperation{
				method: m.Key,
				decode: func() (*openapi3.Operation, error) { return decodeOperation(raw) },
			})
		}
		paths = append(paths, rp)
	}
	return paths, nil
}

func yamlPaths(data []byte) ([]rawPath, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("top level is not an object")
	}

	pathsNode := mappingValue(root.Content[0], "paths")
	if pathsNode == nil || pathsNode.Kind != yaml.MappingNode {
		return nil, nil
	}

	var paths []rawPath
	for i := 0; i+1 < len(pathsNode.Content); i += 2 {
		itemNode := pathsNode.Content[i+1]
		if itemNode.Kind != yaml.MappingNode {
			continue
		}

		rp := rawPath{path: pathsNode.Content[i].Value}
		for j := 0; j+1 < len(itemNode.Content); j += 2 {
			key := itemNode.Content[j].Value
			if !supportedMethods[strings.ToLower(key)] {
				continue
			}
			node := itemNode.Content[j+1]
			rp.operations = append(rp.operations, rawOperation{
				method: key,
				decode: func() (*openapi3.Operation, error) {
					raw, err := nodeJSON(node)
					if err != nil {
						return nil, err
					}
					return decodeOperation(raw)
				},
			})
		}
		paths = append(paths, rp)
	}
	return paths, nil
}

// load runs the kin-openapi loader. A document whose references cannot be resolved is
// still accepted: it is decoded without resolution and unresolved references stay as
// bare $ref values.
func load(data []byte, isJSON bool) (*openapi3.T, error) {
	oas, loadErr := openapi3.NewLoader().LoadFromData(data)
	if loadErr == nil {
		return oas, nil
	}

	raw := data
	if !isJSON {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, loadErr
		}
		var err error
		if raw, err = nodeJSON(&root); err != nil {
			return nil, loadErr
		}
	}

	oas = &openapi3.T{}
	if err := oas.UnmarshalJSON(raw); err != nil {
		return nil, loadErr
	}
	log.Warn().Err(loadErr).Msg("OpenAPI references could not be resolved; unresolved references are kept as-is")
	return oas, nil
}

func decodeOperation(raw []byte) (*openapi3.Operation, error) {
	operation := openapi3.NewOperation()
	if err := operation.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return operation, nil
}

// nodeJSON re-encodes a YAML node as JSON.
func nodeJSON(node *yaml.Node) ([]byte, error) {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(jsonValue(v))
}

// jsonValue converts YAML mappings with non-string keys (such as unquoted response
// codes) into string-keyed maps.
func jsonValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = jsonValue(val)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = jsonValue(val)
		}
		return m
	case []interface{}:
		for i, val := range t {
			t[i] = jsonValue(val)
		}
		return t
	default:
		return v
	}
}

func isJSONObject(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}

func buildEndpoint(method, path string, operation *openapi3.Operation) types.Endpoint {
	endpoint := types.Endpoint{
		Method:      method,
		Path:        path,
		Tags:        append([]string{}, operation.Tags...),
		OperationID: operation.OperationID,
		Summary:     operation.Summary,
		Description: operation.Description,
		Parameters:  make([]types.Parameter, 0, len(operation.Parameters)),
		Responses:   make(map[string]types.Response),
	}

	for _, param := range operation.Parameters {
		if param == nil {
			continue
		}
		if param.Value == nil {
			endpoint.Parameters = append(endpoint.Parameters, types.Parameter{Name: param.Ref, In: "ref"})
			continue
		}
		endpoint.Parameters = append(endpoint.Parameters, types.Parameter{
			Name:     param.Value.Name,
			In:       param.Value.In,
			Required: param.Value.Required,
			Schema:   param.Value.Schema,
		})
	}

	if operation.Responses != nil {
		for statusCode, response := range operation.Responses.Map() {
			if response == nil || response.Value == nil {
				endpoint.Responses[statusCode] = types.Response{}
				continue
			}

			description := ""
			if response.Value.Description != nil {
				description = *response.Value.Description
			}

			var schema interface{}
			if content := response.Value.Content.Get("application/json"); content != nil {
				schema = content.Schema
			}

			endpoint.Responses[statusCode] = types.Response{
				Description: description,
				Schema:      schema,
			}
		}
	}

	return endpoint
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// SpecNotFoundError reports an OpenAPI document that could not be read.
type SpecNotFoundError struct {
	Path string
	Err  error
}

func (e *SpecNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("OpenAPI specification not found at: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("OpenAPI specification not found at: %s", e.Path)
}

func (e *SpecNotFoundError) Unwrap() error {
	return e.Err
}

// SpecParseError reports an OpenAPI document that exists but is malformed.
type SpecParseError struct {
	Path string
	Err  error
}

func (e *SpecParseError) Error() string {
	return fmt.Sprintf("invalid OpenAPI specification %s: %v", e.Path, e.Err)
}

func (e *SpecParseError) Unwrap() error {
	return e.Err
}
