// Package intelligence pulls coarse business signal out of a previously generated test plan
// so workflow test cases can reference it.
package intelligence

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// DefaultPath is where the generated test plan is read from.
const DefaultPath = "output/test_plan.md"

// NoContext is the application context reported when no test plan exists.
const NoContext = "API testing without specific business context"

const maxRequirements = 5

var (
	workflowIndicators = []string{
		"workflow", "process", "sequence", "integration", "end-to-end",
		"business logic", "transaction", "pipeline", "orchestration",
	}
	performanceKeywords = []string{"performance", "response time", "throughput", "latency", "load"}
	securityKeywords    = []string{"security", "authentication", "authorization", "encryption", "owasp"}
)

// Context is the signal extracted from a test plan.
type Context struct {
	ApplicationContext      string   `json:"application_context"`
	BusinessWorkflows       []string `json:"business_workflows"`
	PerformanceRequirements []string `json:"performance_requirements"`
	SecurityRequirements    []string `json:"security_requirements"`
}

// Empty returns the context used when no test plan is available.
func Empty() *Context {
	return &Context{
		ApplicationContext:      NoContext,
		BusinessWorkflows:       []string{},
		PerformanceRequirements: []string{},
		SecurityRequirements:    []string{},
	}
}

// Load reads the test plan at path. A missing plan is not an error and yields Empty().
func Load(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("error loading test plan intelligence: %w", err)
	}
	return ExtractContext(string(data)), nil
}

// ExtractContext scans a narrative test plan.
//
// The application context is the text following an "Executive Summary" or "Strategic
// Overview" heading, up to the next bold heading that is not itself about the executive
// summary. It is only looked for when the plan mentions "Executive Summary" at all.
// Workflow, performance and security lines are matched on the lower-cased text.
func ExtractContext(text string) *Context {
	intel := &Context{
		BusinessWorkflows:       []string{},
		PerformanceRequirements: []string{},
		SecurityRequirements:    []string{},
	}

	if strings.Contains(text, "Executive Summary") {
		intel.ApplicationContext = summary(strings.Split(text, "\n"))
	}

	for _, line := range strings.Split(strings.ToLower(text), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 20 && containsAny(line, workflowIndicators) {
			intel.BusinessWorkflows = append(intel.BusinessWorkflows, trimmed)
		}
		if len(intel.PerformanceRequirements) < maxRequirements && containsAny(line, performanceKeywords) {
			intel.PerformanceRequirements = append(intel.PerformanceRequirements, line)
		}
		if len(intel.SecurityRequirements) < maxRequirements && containsAny(line, securityKeywords) {
			intel.SecurityRequirements = append(intel.SecurityRequirements, line)
		}
	}

	return intel
}

// summary concatenates the non-empty lines of the summary section, each followed by a
// single space.
func summary(lines []string) string {
	var sb strings.Builder
	inSummary := false

	for _, line := range lines {
		if strings.Contains(line, "Executive Summary") || strings.Contains(line, "Strategic Overview") {
			inSummary = true
			continue
		}
		if !inSummary {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "**") && !strings.Contains(line, "Executive") {
			break
		}
		if trimmed != "" {
			sb.WriteString(trimmed)
			sb.WriteString(" ")
		}
	}

	return sb.String()
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
