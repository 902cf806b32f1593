package testcase

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"api-testcase-generator/internal/intelligence"
	"api-testcase-generator/internal/relations"
	"api-testcase-generator/internal/types"

	"github.com/Masterminds/sprig/v3"
)

// WorkflowMarker is the substring that switches on workflow templates, relationship
// analysis and test plan loading when any enabled suffix contains it.
const WorkflowMarker = "WORKFLOW"

// Template is one catalog entry rendered for a specific endpoint.
type Template struct {
	Suffix          string
	Title           string
	Description     string
	Category        string
	Priority        string
	TestLevel       string
	RiskLevel       string
	TestSteps       string
	ExpectedResults string
	TestData        string
	Tags            string
}

// entry is a declarative catalog row. Title, description, steps, expected results and
// test data are text/template sources rendered against templateData.
type entry struct {
	suffix    string
	category  string
	priority  string
	testLevel string
	riskLevel string
	tags      string

	title           string
	description     string
	testSteps       string
	expectedResults string
	testData        string

	tmpl *template.Template
}

// templateData is what catalog templates can reference.
type templateData struct {
	Method string
	Path   string

	Partner      *types.Endpoint
	CRUD         *relations.CRUDWorkflow
	AppContext   string
	CrossModules []string
}

var funcs = func() template.FuncMap {
	fm := sprig.TxtFuncMap()
	// clip truncates to n characters rather than n bytes.
	fm["clip"] = func(n int, s string) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n])
	}
	return fm
}()

var staticEntries = compile([]*entry{
	{
		suffix: "FUNC-HAPPY", category: "Functional", priority: "High", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Happy Path",
		description:     "Verify successful {{.Method}} request to {{.Path}} with valid data",
		testSteps:       "1. Prepare valid request data for {{.Path}}\n2. Set up proper authentication headers\n3. Send {{.Method}} request to {{.Path}}\n4. Verify response status code (200-299)\n5. Validate response body structure matches API specification\n6. Check response headers are correct\n7. Verify response time is within acceptable limits",
		expectedResults: "Status code: 200-299; Valid response body structure; Correct content-type header; Response time < 2 seconds; All required fields present in response",
		testData:        "Valid input parameters as per OpenAPI specification",
		tags:            "api, functional, smoke, regression, happy-path",
	},
	{
		suffix: "FUNC-NEGATIVE", category: "Functional", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Negative Scenarios",
		description:     "Verify {{.Method}} request to {{.Path}} handles negative scenarios properly",
		testSteps:       "1. Test with missing required parameters\n2. Send {{.Method}} request with wrong data types\n3. Test with negative numbers where positive expected\n4. Try invalid enum values if applicable\n5. Test with extremely long strings\n6. Verify proper error responses for each scenario\n7. Ensure system stability maintained",
		expectedResults: "Appropriate error codes (400, 422) returned; Clear error messages explaining failures; System remains stable; No data corruption occurs",
		testData:        "Missing parameters, wrong data types, invalid enum values, oversized strings, negative numbers",
		tags:            "api, functional, negative, validation, error-scenarios",
	},
	{
		suffix: "FUNC-VALIDATION", category: "Functional", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Input Validation",
		description:     "Verify {{.Method}} request to {{.Path}} validates input data correctly",
		testSteps:       "1. Test field length validations (min/max)\n2. Validate data format requirements (email, phone, URL)\n3. Test special character handling in text fields\n4. Validate numeric range constraints\n5. Test date/time format validations\n6. Verify required field validations\n7. Test conditional field validations",
		expectedResults: "Input validation rules properly enforced; Clear validation error messages; Consistent validation behavior across all fields",
		testData:        "Field length violations, format violations, special characters, out-of-range numbers, invalid dates",
		tags:            "api, functional, validation, input-validation, data-integrity",
	},
	{
		suffix: "FUNC-WORKFLOW", category: "Functional", priority: "High", testLevel: "System", riskLevel: "High",
		title:           "Test {{.Method}} {{.Path}} - Business Workflow",
		description:     "Verify {{.Method}} request to {{.Path}} follows correct business logic and workflow",
		testSteps:       "1. Test business rule enforcement\n2. Verify workflow state transitions\n3. Test dependent resource relationships\n4. Validate business logic calculations\n5. Test workflow permissions and approvals\n6. Verify audit trail creation\n7. Test rollback scenarios if applicable",
		expectedResults: "Business rules correctly enforced; Proper workflow state management; Dependent resources updated correctly; Audit trails created",
		testData:        "Business workflow scenarios, state transition data, dependent resource relationships",
		tags:            "api, functional, workflow, business-logic, state-management",
	},
	{
		suffix: "FUNC-BOUNDARY", category: "Functional", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Functional Boundary Conditions",
		description:     "Verify {{.Method}} request to {{.Path}} handles functional boundary conditions",
		testSteps:       "1. Test with minimum allowed values\n2. Test with maximum allowed values\n3. Test with values just inside boundaries\n4. Test with values just outside boundaries\n5. Test with zero values where applicable\n6. Test with null/empty values for optional fields\n7. Verify consistent boundary behavior",
		expectedResults: "Boundary values handled correctly; Clear responses for out-of-bounds values; Consistent behavior at all boundaries",
		testData:        "Minimum values, maximum values, boundary edge cases, zero values, null values",
		tags:            "api, functional, boundary-testing, edge-cases, limits",
	},
	{
		suffix: "SEC-AUTH", category: "Security", priority: "Critical", testLevel: "Integration", riskLevel: "High",
		title:           "Test {{.Method}} {{.Path}} - Authentication Required",
		description:     "Verify {{.Method}} request to {{.Path}} requires proper authentication",
		testSteps:       "1. Prepare valid request data for {{.Path}}\n2. Send {{.Method}} request WITHOUT authentication headers\n3. Verify response status code is 401\n4. Validate error message indicates authentication required\n5. Ensure no sensitive data is returned\n6. Verify proper WWW-Authenticate header is returned",
		expectedResults: "Status code: 401 Unauthorized; Error message indicates authentication required; No sensitive data in response; Proper security headers present",
		testData:        "Valid request data but no authentication token",
		tags:            "api, security, authentication, negative, unauthorized",
	},
	{
		suffix: "SEC-AUTHZ", category: "Security", priority: "Critical", testLevel: "Integration", riskLevel: "High",
		title:           "Test {{.Method}} {{.Path}} - Authorization Check",
		description:     "Verify {{.Method}} request to {{.Path}} checks user permissions",
		testSteps:       "1. Prepare valid request data for {{.Path}}\n2. Use authentication token with insufficient permissions\n3. Send {{.Method}} request to {{.Path}}\n4. Verify response status code is 403\n5. Validate error message indicates insufficient permissions\n6. Ensure no unauthorized data access occurs",
		expectedResults: "Status code: 403 Forbidden; Error message indicates insufficient permissions; No unauthorized data returned",
		testData:        "Valid request data with low-privilege authentication token",
		tags:            "api, security, authorization, negative, forbidden",
	},
	{
		suffix: "ERR-NOTFOUND", category: "Error Handling", priority: "Medium", testLevel: "Integration", riskLevel: "Low",
		title:           "Test {{.Method}} {{.Path}} - Resource Not Found",
		description:     "Verify {{.Method}} request to {{.Path}} handles non-existent resources",
		testSteps:       "1. Prepare request for non-existent resource in {{.Path}}\n2. Set up proper authentication headers\n3. Send {{.Method}} request to non-existent resource\n4. Verify response status code is 404\n5. Validate error message is user-friendly\n6. Ensure no system errors occur",
		expectedResults: "Status code: 404 Not Found; User-friendly error message; No system errors or stack traces exposed",
		testData:        "Request parameters pointing to non-existent resources",
		tags:            "api, error-handling, negative, not-found",
	},
	{
		suffix: "ERR-INVALID", category: "Error Handling", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Invalid Input Data",
		description:     "Verify {{.Method}} request to {{.Path}} handles invalid input correctly",
		testSteps:       "1. Prepare INVALID request data for {{.Path}}\n2. Set up proper authentication headers\n3. Send {{.Method}} request with invalid data\n4. Verify response status code is 400\n5. Validate error message provides helpful information\n6. Ensure system remains stable\n7. Check that partial data is not processed",
		expectedResults: "Status code: 400 Bad Request; Clear error message indicating validation failures; System remains stable; No partial processing of invalid data",
		testData:        "Invalid input parameters (wrong data types, missing required fields, malformed data)",
		tags:            "api, error-handling, negative, validation, bad-request",
	},
	{
		suffix: "EDGE-BOUNDARY", category: "Edge Cases", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Boundary Values",
		description:     "Verify {{.Method}} request to {{.Path}} handles boundary conditions correctly",
		testSteps:       "1. Prepare boundary value test data (min/max lengths, numbers)\n2. Set up proper authentication headers\n3. Send {{.Method}} request with boundary values\n4. Verify response behavior at limits\n5. Test empty strings, null values, zero values\n6. Validate proper error handling for out-of-range values",
		expectedResults: "Proper handling of boundary conditions; Clear validation messages for out-of-range values; No system crashes or unexpected behavior",
		testData:        "Minimum/maximum values, empty strings, null values, edge case inputs",
		tags:            "api, edge-cases, boundary, validation",
	},
	{
		suffix: "SEC-CONTENT", category: "Security", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Content Type Validation",
		description:     "Verify {{.Method}} request to {{.Path}} validates content types correctly",
		testSteps:       "1. Prepare valid request data\n2. Set up proper authentication headers\n3. Send {{.Method}} request with wrong Content-Type header\n4. Try XML data with JSON Content-Type\n5. Send request without Content-Type header\n6. Verify proper rejection of unsupported content types",
		expectedResults: "Status code: 415 Unsupported Media Type for wrong content types; Clear error messages; No processing of malformed content",
		testData:        "Valid data with incorrect Content-Type headers (text/xml, text/plain, etc.)",
		tags:            "api, security, content-type, validation, negative",
	},
	{
		suffix: "PERF-LOAD", category: "Performance", priority: "Medium", testLevel: "System", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Load Testing",
		description:     "Verify {{.Method}} request to {{.Path}} performs well under expected load",
		testSteps:       "1. Prepare valid request data for {{.Path}}\n2. Set up load testing tool (e.g., JMeter, Artillery)\n3. Configure 10 concurrent users for 5 minutes\n4. Send continuous {{.Method}} requests to {{.Path}}\n5. Monitor response times and error rates\n6. Verify system remains stable under normal load",
		expectedResults: "Average response time < 2 seconds; 95th percentile < 5 seconds; Error rate < 1%; System remains stable; No memory leaks or resource exhaustion",
		testData:        "Valid test data set for normal load simulation",
		tags:            "api, performance, load-testing, non-functional",
	},
	{
		suffix: "PERF-STRESS", category: "Performance", priority: "Medium", testLevel: "System", riskLevel: "High",
		title:           "Test {{.Method}} {{.Path}} - Stress Testing",
		description:     "Verify {{.Method}} request to {{.Path}} behavior beyond normal capacity",
		testSteps:       "1. Prepare valid request data for {{.Path}}\n2. Set up stress testing configuration\n3. Gradually increase load from 50 to 200 concurrent users\n4. Continue until response times degrade significantly\n5. Monitor system behavior at breaking point\n6. Verify graceful degradation and recovery",
		expectedResults: "System degrades gracefully; No data corruption; Error messages are appropriate; System recovers after load reduction",
		testData:        "High volume test data for stress conditions",
		tags:            "api, performance, stress-testing, non-functional, breaking-point",
	},
	{
		suffix: "PERF-SPIKE", category: "Performance", priority: "Medium", testLevel: "System", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Spike Testing",
		description:     "Verify {{.Method}} request to {{.Path}} handles sudden traffic spikes",
		testSteps:       "1. Start with normal load baseline (5 users)\n2. Suddenly spike to 100 concurrent users\n3. Monitor system response to sudden load increase\n4. Return to normal load\n5. Repeat spike pattern multiple times\n6. Verify system stability during spikes",
		expectedResults: "System handles traffic spikes without crashes; Response times recover quickly; No permanent performance degradation",
		testData:        "Burst traffic simulation data",
		tags:            "api, performance, spike-testing, non-functional, traffic-burst",
	},
	{
		suffix: "RELI-TIMEOUT", category: "Reliability", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Timeout Handling",
		description:     "Verify {{.Method}} request to {{.Path}} handles timeouts gracefully",
		testSteps:       "1. Configure client with short timeout (1 second)\n2. Send {{.Method}} request to {{.Path}}\n3. If response takes longer, verify timeout behavior\n4. Test with various timeout values\n5. Verify no hanging connections\n6. Check proper error messages",
		expectedResults: "Proper timeout exception thrown; Clear error messages; No resource leaks; Connection properly closed",
		testData:        "Normal request data with timeout constraints",
		tags:            "api, reliability, timeout, non-functional, resilience",
	},
	{
		suffix: "RELI-RETRY", category: "Reliability", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Retry Mechanism",
		description:     "Verify {{.Method}} request to {{.Path}} retry behavior on failures",
		testSteps:       "1. Simulate network failures or 5xx errors\n2. Configure retry mechanism with exponential backoff\n3. Send {{.Method}} request to {{.Path}}\n4. Verify retry attempts are made\n5. Check backoff timing is appropriate\n6. Ensure eventual success or proper failure",
		expectedResults: "Appropriate retry attempts made; Exponential backoff implemented; Circuit breaker pattern if applicable; Final success or clear failure",
		testData:        "Request data for retry scenario testing",
		tags:            "api, reliability, retry, non-functional, resilience, circuit-breaker",
	},
	{
		suffix: "SCALE-CONCURRENT", category: "Scalability", priority: "Medium", testLevel: "System", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Concurrent Users",
		description:     "Verify {{.Method}} request to {{.Path}} handles multiple concurrent users",
		testSteps:       "1. Set up test with 50-500 concurrent users\n2. Each user sends {{.Method}} requests continuously\n3. Monitor response times across all users\n4. Check for race conditions or data inconsistency\n5. Verify resource utilization scales appropriately\n6. Test connection pooling effectiveness",
		expectedResults: "Linear or acceptable response time scaling; No race conditions; Data consistency maintained; Resource usage scales predictably",
		testData:        "Concurrent user simulation data with unique identifiers",
		tags:            "api, scalability, concurrent-users, non-functional, race-conditions",
	},
	{
		suffix: "COMPAT-VERSIONS", category: "Compatibility", priority: "Low", testLevel: "Integration", riskLevel: "Low",
		title:           "Test {{.Method}} {{.Path}} - API Version Compatibility",
		description:     "Verify {{.Method}} request to {{.Path}} works across API versions",
		testSteps:       "1. Test with different API version headers\n2. Send {{.Method}} request with v1, v2 headers\n3. Verify backward compatibility\n4. Check deprecated endpoint warnings\n5. Validate response format consistency\n6. Test version negotiation",
		expectedResults: "Backward compatibility maintained; Proper version handling; Clear deprecation warnings; Consistent response formats",
		testData:        "Version-specific request data and headers",
		tags:            "api, compatibility, versioning, non-functional, backward-compatibility",
	},
	{
		suffix: "SEC-ENCRYPTION", category: "Security", priority: "High", testLevel: "Integration", riskLevel: "High",
		title:           "Test {{.Method}} {{.Path}} - Data Encryption",
		description:     "Verify {{.Method}} request to {{.Path}} uses proper encryption",
		testSteps:       "1. Verify HTTPS is enforced (no HTTP allowed)\n2. Check TLS version is 1.2 or higher\n3. Validate SSL certificate\n4. Test cipher suite strength\n5. Verify sensitive data is encrypted in transit\n6. Check for proper security headers",
		expectedResults: "Only HTTPS connections allowed; Strong TLS version used; Valid SSL certificate; Strong cipher suites; Security headers present (HSTS, etc.)",
		testData:        "Requests over HTTP vs HTTPS with sensitive data",
		tags:            "api, security, encryption, tls, https, non-functional",
	},
})

var workflowEntries = compile([]*entry{
	{
		suffix: "WORKFLOW-E2E", category: "Workflow Integration", priority: "High", testLevel: "System", riskLevel: "High",
		title:           "Test {{.Method}} {{.Path}} - End-to-End Business Workflow",
		description:     "Verify {{.Method}} {{.Path}} works correctly within complete business workflows based on test plan analysis",
		testSteps:       "1. Identify complete business workflow involving {{.Path}}\n2. Set up prerequisite data and system state\n3. Execute workflow sequence including {{.Method}} {{.Path}}\n4. Verify end-to-end workflow completion\n5. Validate business rules and data consistency\n6. Check audit trails and logging\n7. Verify rollback scenarios if workflow fails",
		expectedResults: "Complete workflow executes successfully; Business rules enforced; Data consistency maintained; Proper error handling in workflow failures; Context: {{clip 100 .AppContext}}...",
		testData:        "Complete workflow scenario data, prerequisite resources, business rule test cases",
		tags:            "api, workflow, e2e, business-process, integration, system-test",
	},
	{
		suffix: "WORKFLOW-SEQUENCE", category: "Workflow Integration", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - API Sequence Integration",
		description:     "Test {{.Method}} {{.Path}} in sequence with {{with .Partner}}{{.Method}} {{.Path}}{{else}}related APIs{{end}}",
		testSteps:       "1. Identify API sequence involving {{.Path}}\n2. Test prerequisite API calls\n3. Execute {{.Method}} {{.Path}} in sequence\n4. Verify data flow between APIs\n5. Test sequence with invalid intermediate states\n6. Validate error propagation in sequence\n7. Test sequence rollback scenarios",
		expectedResults: "API sequence executes correctly; Data flows properly between calls; Error handling works in sequence; State consistency maintained",
		testData:        "Sequence test data, intermediate state data, dependency chain test cases",
		tags:            "api, workflow, sequence, integration, data-flow",
	},
	{
		suffix: "WORKFLOW-CRUD", category: "Workflow Integration", priority: "Medium", testLevel: "Integration", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - CRUD Workflow Integration",
		description:     "Verify {{.Method}} {{.Path}} works correctly within CRUD operations workflow",
		testSteps:       "1. Test CREATE operation and data setup\n2. Verify READ operations can access created data\n3. Test {{.Method}} {{.Path}} with existing data\n4. Execute UPDATE operations and verify changes\n5. Test DELETE operations and cleanup\n6. Verify referential integrity throughout CRUD cycle\n7. Test concurrent CRUD operations",
		expectedResults: "CRUD workflow operates correctly; Data integrity maintained; Proper resource lifecycle management; {{with .CRUD}}Part of {{.Tag}} CRUD workflow: {{join \", \" .Operations}}{{end}}",
		testData:        "CRUD workflow test data, resource lifecycle scenarios, concurrent operation test cases",
		tags:            "api, workflow, crud, lifecycle, data-integrity",
	},
	{
		suffix: "WORKFLOW-INTEGRATION", category: "Workflow Integration", priority: "Medium", testLevel: "System", riskLevel: "Medium",
		title:           "Test {{.Method}} {{.Path}} - Cross-Module Integration",
		description:     "Verify {{.Method}} {{.Path}} integrates correctly with other system modules",
		testSteps:       "1. Identify cross-module dependencies for {{.Path}}\n2. Test integration with external modules\n3. Verify data exchange between modules\n4. Test module isolation and error boundaries\n5. Validate cross-module authentication/authorization\n6. Test module failover scenarios\n7. Verify cross-module transaction consistency",
		expectedResults: "Cross-module integration works correctly; Module boundaries respected; Data consistency across modules; {{if .AppContext}}Integration with other modules in {{clip 50 .AppContext}}...{{else}}Cross-module integration testing{{end}}",
		testData:        "Cross-module integration data, external dependency mocks, module boundary test scenarios{{with .CrossModules}}; related modules: {{join \", \" .}}{{end}}",
		tags:            "api, workflow, integration, cross-module, system-integration",
	},
})

func compile(entries []*entry) []*entry {
	for _, e := range entries {
		t := template.New(e.suffix).Funcs(funcs)
		template.Must(t.New("title").Parse(e.title))
		template.Must(t.New("description").Parse(e.description))
		template.Must(t.New("test_steps").Parse(e.testSteps))
		template.Must(t.New("expected_results").Parse(e.expectedResults))
		template.Must(t.New("test_data").Parse(e.testData))
		e.tmpl = t
	}
	return entries
}

func (e *entry) render(data templateData) (Template, error) {
	out := Template{
		Suffix:    e.suffix,
		Category:  e.category,
		Priority:  e.priority,
		TestLevel: e.testLevel,
		RiskLevel: e.riskLevel,
		Tags:      e.tags,
	}

	fields := []struct {
		name string
		dst  *string
	}{
		{"title", &out.Title},
		{"description", &out.Description},
		{"test_steps", &out.TestSteps},
		{"expected_results", &out.ExpectedResults},
		{"test_data", &out.TestData},
	}

	var buf bytes.Buffer
	for _, f := range fields {
		buf.Reset()
		if err := e.tmpl.ExecuteTemplate(&buf, f.name, data); err != nil {
			return Template{}, fmt.Errorf("failed to render %s for %s: %w", f.name, e.suffix, err)
		}
		*f.dst = buf.String()
	}

	return out, nil
}

// StaticCatalog renders the fixed templates for ep in catalog order.
func StaticCatalog(ep types.Endpoint) ([]Template, error) {
	data := templateData{Method: ep.Method, Path: ep.Path}

	catalog := make([]Template, 0, len(staticEntries))
	for _, e := range staticEntries {
		t, err := e.render(data)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, t)
	}
	return catalog, nil
}

// WorkflowCatalog renders the workflow templates for the endpoint at idx. Their text
// draws on the relationship analysis and the test plan context.
func WorkflowCatalog(idx int, endpoints []types.Endpoint, analysis *relations.Analysis, intel *intelligence.Context) ([]Template, error) {
	ep := endpoints[idx]
	primary := ep.PrimaryTag(DefaultTag)

	data := templateData{
		Method:       ep.Method,
		Path:         ep.Path,
		AppContext:   intel.ApplicationContext,
		CrossModules: analysis.CrossModuleTags(idx, primary),
	}
	if partner, ok := analysis.Partner(idx); ok {
		data.Partner = &partner
	}
	if wf, ok := analysis.CRUDFor(ep, primary); ok {
		data.CRUD = &wf
	}

	catalog := make([]Template, 0, len(workflowEntries))
	for _, e := range workflowEntries {
		t, err := e.render(data)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, t)
	}
	return catalog, nil
}

// BuildCatalog returns the full candidate list for the endpoint at idx: the static
// templates, followed by the workflow templates when withWorkflow is set.
func BuildCatalog(idx int, endpoints []types.Endpoint, analysis *relations.Analysis, intel *intelligence.Context, withWorkflow bool) ([]Template, error) {
	catalog, err := StaticCatalog(endpoints[idx])
	if err != nil {
		return nil, err
	}
	if !withWorkflow {
		return catalog, nil
	}

	workflow, err := WorkflowCatalog(idx, endpoints, analysis, intel)
	if err != nil {
		return nil, err
	}
	return append(catalog, workflow...), nil
}

// CatalogSuffixes lists every suffix the catalog can produce, static ones first.
func CatalogSuffixes() []string {
	suffixes := make([]string, 0, len(staticEntries)+len(workflowEntries))
	for _, e := range staticEntries {
		suffixes = append(suffixes, e.suffix)
	}
	for _, e := range workflowEntries {
		suffixes = append(suffixes, e.suffix)
	}
	return suffixes
}

// HasWorkflow reports whether any suffix contains WorkflowMarker. FUNC-WORKFLOW counts.
func HasWorkflow(suffixes []string) bool {
	for _, s := range suffixes {
		if strings.Contains(s, WorkflowMarker) {
			return true
		}
	}
	return false
}

// UnknownSuffixes returns the enabled suffixes no catalog entry matches, without repeats.
func UnknownSuffixes(suffixes []string) []string {
	known := make(map[string]bool)
	for _, s := range CatalogSuffixes() {
		known[s] = true
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, s := range suffixes {
		if known[s] || seen[s] {
			continue
		}
		seen[s] = true
		unknown = append(unknown, s)
	}
	return unknown
}
