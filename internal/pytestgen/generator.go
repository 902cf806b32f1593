package pytestgen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"api-testcase-generator/internal/llm"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog/log"
)

const (
	intelligenceAI    = "AI-Enhanced"
	intelligenceRules = "Rule-Based"

	bodyIndent = "            "
)

var (
	codeFence = regexp.MustCompile("```(?:python)?\\n?")

	fileTemplate = template.Must(template.New("pytest").Funcs(sprig.TxtFuncMap()).Parse(pytestFile))
)

const pytestFile = `"""
{{.Intelligence}} Tests for {{.Title}} Component

Generated from CSV test cases.
Contains {{len .Methods}} test cases.
"""
import pytest
import requests
import time
import logging
from typing import Dict, Optional
from urllib.parse import urljoin

logger = logging.getLogger(__name__)


class Test{{.ClassName}}:
    """Test class for {{.Component}} component"""

    def setup_class(self):
        """Setup test class"""
        self.base_url = "{{.BaseURL}}"
        self.timeout = 30
        logger.info(f"Setting up tests for {self.base_url}")

    def _make_request(self, method: str, endpoint: str,
                      headers: Optional[Dict] = None,
                      params: Optional[Dict] = None,
                      data: Optional[Dict] = None) -> requests.Response:
        """Make HTTP request with mock response"""
        url = urljoin(self.base_url, endpoint)

        default_headers = {"Content-Type": "application/json"}
        if headers:
            default_headers.update(headers)

        class MockResponse:
            status_code = 200
            elapsed = type('', (), {'total_seconds': lambda: 0.5})()
            headers = {"Content-Type": "application/json"}
            text = '{"status": "healthy", "message": "mock response"}'
            def json(self): return {"status": "healthy", "message": "mock response"}

        logger.debug(f"{method} {url}")
        return MockResponse()
{{range .Methods}}
    @pytest.mark.{{.Case.Category | lower | replace " " "_"}}
    @pytest.mark.priority_{{.Case.Priority | lower}}
    @pytest.mark.component_{{.Case.Component}}
    def test_{{.Case.SanitizedID}}(self):
        """
        {{.Case.TestCaseID}}: {{.Case.Title}}

        Description: {{.Case.Description}}
        Category: {{.Case.Category}} | Priority: {{.Case.Priority}}
        API: {{.Case.APIMethod}} {{.Case.APIPath}}
        Intelligence: {{$.Intelligence}}
        """
        logger.info("Starting {{.Case.TestCaseID}}")

        start_time = time.time()
        try:
{{.Body}}

            duration = time.time() - start_time
            logger.info(f"Test completed in {duration:.2f}s")

        except Exception as e:
            logger.error(f"Test failed: {e}")
            raise
{{end}}`

const securityBody = `            # Security Test
            logger.info("Running security validation")

            # Test without auth
            response = self._make_request("%s", "%s",
                                          headers={"Authorization": ""})

            if response.status_code == 200:
                logger.warning("Endpoint may not require authentication")
            else:
                assert response.status_code in [401, 403], f"Expected 401/403, got {response.status_code}"

            logger.info("Security validation completed")`

const performanceBody = `            # Performance Test
            logger.info("Running performance analysis")

            start_time = time.time()
            response = self._make_request("%s", "%s")
            duration = time.time() - start_time

            assert duration < 3.0, f"Response took {duration:.2f}s (too slow)"
            assert response.status_code == 200, f"Expected 200, got {response.status_code}"

            logger.info(f"Performance test completed in {duration:.2f}s")`

const basicBody = `            # Basic Test
            response = self._make_request("%s", "%s")

            assert 200 <= response.status_code <= 499, f"Unexpected status: {response.status_code}"
            logger.info(f"Test completed with status {response.status_code}")`

const aiBody = `            # AI-Enhanced Test
            logger.info("Running AI-enhanced test for %s")

            try:
%s
            except Exception as e:
                logger.warning(f"AI logic failed: {e}")
%s`

const aiPrompt = `Generate pytest test code for:
API: %s %s
Category: %s
Description: %s

Requirements:
- Use self._make_request() for HTTP calls
- Include smart assertions
- Add proper logging
- Return only the test implementation code (no method signature)`

// DefaultBaseURL is the service address baked into generated modules.
const DefaultBaseURL = "http://localhost:8080"

// Generator writes pytest modules. A nil model means rule-based bodies only.
type Generator struct {
	llm     llm.TextGenerator
	baseURL string
}

// NewGenerator creates a new pytest generator.
func NewGenerator(model llm.TextGenerator) *Generator {
	return &Generator{llm: model, baseURL: DefaultBaseURL}
}

// AIAvailable reports whether AI-enhanced bodies can be produced.
func (g *Generator) AIAvailable() bool {
	return g.llm != nil
}

type methodData struct {
	Case TestCase
	Body string
}

// Render produces the pytest module for cases, all of which belong to component.
func (g *Generator) Render(ctx context.Context, cases []TestCase, component string, useAI bool) (string, error) {
	if len(cases) == 0 {
		return "", &NoMatchingTestCasesError{Component: component}
	}

	intelligence := intelligenceRules
	if useAI && g.AIAvailable() {
		intelligence = intelligenceAI
	}

	methods := make([]methodData, 0, len(cases))
	for _, tc := range cases {
		methods = append(methods, methodData{Case: tc, Body: g.testLogic(ctx, tc, useAI)})
	}

	title := titleCase(component)
	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, map[string]interface{}{
		"Intelligence": intelligence,
		"Title":        title,
		"ClassName":    strings.ReplaceAll(title, "_", ""),
		"Component":    component,
		"BaseURL":      g.baseURL,
		"Methods":      methods,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render test file: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) testLogic(ctx context.Context, tc TestCase, useAI bool) string {
	if useAI && g.AIAvailable() {
		body, err := g.aiLogic(ctx, tc)
		if err == nil {
			return body
		}
		log.Warn().Err(err).Str("test_case_id", tc.TestCaseID).Msg("AI generation failed, using rule-based logic")
	}
	return ruleLogic(tc)
}

func (g *Generator) aiLogic(ctx context.Context, tc TestCase) (string, error) {
	code, err := g.llm.Generate(ctx, fmt.Sprintf(aiPrompt, tc.APIMethod, tc.APIPath, tc.Category, tc.Description))
	if err != nil {
		return "", err
	}
	cleaned := cleanAICode(code, bodyIndent+"    ")
	if cleaned == "" {
		cleaned = indent(basicLogic(tc), "    ")
	}
	return fmt.Sprintf(aiBody, strings.ToLower(tc.Category), cleaned, indent(basicLogic(tc), "    ")), nil
}

func ruleLogic(tc TestCase) string {
	switch strings.ToLower(tc.Category) {
	case "security":
		return fmt.Sprintf(securityBody, tc.APIMethod, tc.APIPath)
	case "performance":
		return fmt.Sprintf(performanceBody, tc.APIMethod, tc.APIPath)
	default:
		return basicLogic(tc)
	}
}

func basicLogic(tc TestCase) string {
	return fmt.Sprintf(basicBody, tc.APIMethod, tc.APIPath)
}

// cleanAICode strips markdown fences and test method signatures from model output and
// re-indents the remaining body under prefix, keeping its relative indentation.
func cleanAICode(code, prefix string) string {
	code = codeFence.ReplaceAllString(code, "")

	var kept []string
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "def ") && strings.Contains(line, "test_") {
			continue
		}
		kept = append(kept, line)
	}

	// trim surrounding blank lines
	for len(kept) > 0 && strings.TrimSpace(kept[0]) == "" {
		kept = kept[1:]
	}
	for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
		kept = kept[:len(kept)-1]
	}
	if len(kept) == 0 {
		return ""
	}

	margin := -1
	for _, line := range kept {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if margin < 0 || n < margin {
			margin = n
		}
	}

	out := make([]string, len(kept))
	for i, line := range kept {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out[i] = prefix + strings.TrimRight(line[margin:], " \t")
	}
	return strings.Join(out, "\n")
}

func indent(block, prefix string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// titleCase upper-cases the first letter of every word and lower-cases the rest,
// where any non-letter starts a new word.
func titleCase(s string) string {
	var sb strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		sb.WriteRune(r)
		prevLetter = false
	}
	return sb.String()
}

// FileResult describes a written pytest module
type FileResult struct {
	OutputPath   string `json:"output_path"`
	Component    string `json:"component"`
	TestCount    int    `json:"test_count"`
	Intelligence string `json:"intelligence"`
}

// WriteTestFile renders the cases of component found in csvPath into outputPath.
func (g *Generator) WriteTestFile(ctx context.Context, csvPath, component, outputPath string, useAI bool) (*FileResult, error) {
	cases, err := ReadCSV(csvPath)
	if err != nil {
		return nil, err
	}
	cases = FilterByComponent(cases, component)
	if len(cases) == 0 {
		return nil, &NoMatchingTestCasesError{Component: component}
	}

	content, err := g.Render(ctx, cases, component, useAI)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write test file: %w", err)
	}

	intelligence := intelligenceRules
	if useAI && g.AIAvailable() {
		intelligence = intelligenceAI
	}
	log.Info().Str("file", outputPath).Int("tests", len(cases)).Str("component", component).Msg("Generated pytest file")

	return &FileResult{
		OutputPath:   outputPath,
		Component:    component,
		TestCount:    len(cases),
		Intelligence: intelligence,
	}, nil
}
