// Package testcase expands API endpoints into templated test-case records.
//
// Every endpoint is crossed with the enabled template suffixes. Identifiers take the form
// TC-{primaryTag}-{suffix}-{seq:03d}, where seq comes from a Counter shared by all
// endpoints of one expansion.
package testcase

import (
	"fmt"
	"time"

	"api-testcase-generator/internal/intelligence"
	"api-testcase-generator/internal/relations"
	"api-testcase-generator/internal/testconfig"
	"api-testcase-generator/internal/types"

	"github.com/rs/zerolog/log"
)

// DefaultTag is the primary tag of endpoints without tags.
const DefaultTag = "API"

const dateLayout = "2006-01-02"

// Record is one generated test case.
type Record struct {
	TestCaseID          string `json:"test_case_id"`
	TestSuite           string `json:"test_suite"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Category            string `json:"category"`
	Priority            string `json:"priority"`
	TestLevel           string `json:"test_level"`
	RiskLevel           string `json:"risk_level"`
	AutomationCandidate bool   `json:"automation_candidate"`
	APIMethod           string `json:"api_method"`
	APIPath             string `json:"api_path"`
	OperationID         string `json:"operation_id"`
	APISummary          string `json:"api_summary"`
	Preconditions       string `json:"preconditions"`
	TestSteps           string `json:"test_steps"`
	ExpectedResults     string `json:"expected_results"`
	TestData            string `json:"test_data"`
	PostConditions      string `json:"post_conditions"`
	Dependencies        string `json:"dependencies"`
	Tags                string `json:"tags"`
	EstimatedDuration   string `json:"estimated_duration"`
	Author              string `json:"author"`
	CreationDate        string `json:"creation_date"`
	LastUpdated         string `json:"last_updated"`
	Status              string `json:"status"`
	ExecutionNotes      string `json:"execution_notes"`
	BugReferences       string `json:"bug_references"`
}

// Counter hands out test-case sequence numbers starting at 1.
type Counter struct {
	next int
}

// NewCounter returns a counter whose first value is 1.
func NewCounter() *Counter {
	return &Counter{next: 1}
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() int {
	if c.next == 0 {
		c.next = 1
	}
	n := c.next
	c.next++
	return n
}

// Expander turns endpoints into records. Now supplies the creation date.
type Expander struct {
	Now func() time.Time
}

// NewExpander returns an Expander dated by the wall clock.
func NewExpander() *Expander {
	return &Expander{Now: time.Now}
}

// Expand emits one record per (endpoint, template) pair whose suffix is enabled, in
// endpoint order and then catalog order. Enabled suffixes that match no template produce
// nothing. Workflow templates are only built when HasWorkflow(suffixes); analysis and
// intel may be nil, in which case they are derived from endpoints or left empty.
func (x *Expander) Expand(endpoints []types.Endpoint, suffixes []string, analysis *relations.Analysis, intel *intelligence.Context, counter *Counter) ([]Record, error) {
	if counter == nil {
		counter = NewCounter()
	}

	enabled := make(map[string]bool, len(suffixes))
	for _, s := range suffixes {
		enabled[s] = true
	}

	withWorkflow := HasWorkflow(suffixes)
	if withWorkflow {
		if analysis == nil {
			analysis = relations.Analyze(endpoints)
		}
		if intel == nil {
			intel = intelligence.Empty()
		}
	}

	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	date := now().Format(dateLayout)

	records := []Record{}
	for idx, ep := range endpoints {
		catalog, err := BuildCatalog(idx, endpoints, analysis, intel, withWorkflow)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog for %s: %w", ep.Key(), err)
		}

		tag := ep.PrimaryTag(DefaultTag)
		for _, t := range catalog {
			if !enabled[t.Suffix] {
				continue
			}
			records = append(records, newRecord(ep, tag, t, counter.Next(), date))
		}
	}

	return records, nil
}

func newRecord(ep types.Endpoint, tag string, t Template, seq int, date string) Record {
	return Record{
		TestCaseID:          fmt.Sprintf("TC-%s-%s-%03d", tag, t.Suffix, seq),
		TestSuite:           fmt.Sprintf("%s %s Tests", tag, t.Category),
		Title:               t.Title,
		Description:         t.Description,
		Category:            t.Category,
		Priority:            t.Priority,
		TestLevel:           t.TestLevel,
		RiskLevel:           t.RiskLevel,
		AutomationCandidate: true,
		APIMethod:           ep.Method,
		APIPath:             ep.Path,
		OperationID:         ep.OperationID,
		APISummary:          ep.Summary,
		Preconditions:       "API server is running and accessible",
		TestSteps:           t.TestSteps,
		ExpectedResults:     t.ExpectedResults,
		TestData:            t.TestData,
		PostConditions:      "System state remains consistent",
		Dependencies:        "Authentication service, Database connection, API service",
		Tags:                t.Tags,
		EstimatedDuration:   "5 minutes",
		Author:              "Test Case Generator",
		CreationDate:        date,
		LastUpdated:         date,
		Status:              "Draft",
	}
}

// Generate resolves the enabled suffixes from cfg and expands endpoints with a fresh
// counter. The test plan at planPath is read and relationships are analyzed only when
// a workflow suffix is enabled.
func (x *Expander) Generate(endpoints []types.Endpoint, cfg *testconfig.Config, planPath string) ([]Record, error) {
	suffixes := testconfig.ResolveEnabledSuffixes(cfg)

	if unknown := UnknownSuffixes(suffixes); len(unknown) > 0 {
		log.Warn().Strs("suffixes", unknown).Msg("enabled test suffixes match no template and will be skipped")
	}

	var analysis *relations.Analysis
	var intel *intelligence.Context
	if HasWorkflow(suffixes) {
		var err error
		intel, err = intelligence.Load(planPath)
		if err != nil {
			return nil, err
		}
		analysis = relations.Analyze(endpoints)
		log.Debug().
			Int("crud_workflows", len(analysis.CRUDWorkflows)).
			Int("sequences", len(analysis.Sequences)).
			Msg("analyzed API relationships")
	}

	return x.Expand(endpoints, suffixes, analysis, intel, NewCounter())
}
