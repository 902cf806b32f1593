package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"api-testcase-generator/internal/plan"
	"api-testcase-generator/internal/pytestgen"
	"api-testcase-generator/internal/service"
	"api-testcase-generator/internal/testconfig"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// withSpinner shows progress on stderr while fn runs; stdout carries the result.
func withSpinner(message string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	err := fn()
	s.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, text.FgRed.Sprint("✗ "+message))
	}
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if len(header) > 0 {
		row := make(table.Row, len(header))
		for i, h := range header {
			row[i] = text.FgHiCyan.Sprint(h)
		}
		t.AppendHeader(row)
	}
	return t
}

// render writes v in the requested format. Types without a table view fall back to JSON.
func render(w io.Writer, format string, v interface{}) error {
	if format == outputJSON {
		return writeJSON(w, v)
	}

	switch r := v.(type) {
	case *service.CasesResult:
		renderCases(w, r)
	case *plan.Result:
		renderPlan(w, r)
	case *service.PipelineResult:
		renderPlan(w, r.Plan)
		renderCases(w, r.Cases)
	case *testconfig.Summary:
		renderConfig(w, r)
	case *testconfig.ProfileSwitch:
		renderSwitch(w, r)
	case *pytestgen.Summary:
		renderTestCases(w, r)
	default:
		return writeJSON(w, v)
	}
	return nil
}

func renderCases(w io.Writer, r *service.CasesResult) {
	fmt.Fprintln(w, text.FgGreen.Sprint(r.Message))

	t := newTable(w, "PROPERTY", "VALUE")
	t.AppendRow(table.Row{"Excel file", r.OutputFile})
	if r.CSVFile != "" {
		t.AppendRow(table.Row{"CSV file", r.CSVFile})
	}
	if r.JSONFile != "" {
		t.AppendRow(table.Row{"JSON file", r.JSONFile})
	}
	if r.ExportBatchID != "" {
		t.AppendRow(table.Row{"Export batch", r.ExportBatchID})
	}
	stats := r.Statistics
	t.AppendRow(table.Row{"Test suites", stats.TotalTestSuites})
	t.AppendRow(table.Row{"Test cases", stats.TotalTestCases})
	t.AppendRow(table.Row{"Endpoints analyzed", stats.APIEndpointsAnalyzed})
	t.AppendRow(table.Row{"Automation candidates", stats.AutomationCandidates})
	t.AppendRow(table.Row{"Categories", formatCounts(stats.Categories)})
	t.AppendRow(table.Row{"Priorities", formatCounts(stats.Priorities)})
	t.AppendRow(table.Row{"Sheets", strings.Join(stats.SheetsCreated, ", ")})
	t.Render()
}

func renderPlan(w io.Writer, r *plan.Result) {
	fmt.Fprintln(w, text.FgGreen.Sprintf("Test plan saved to %s", r.OutputFile))
	t := newTable(w, "CHECK", "RESULT")
	t.AppendRow(table.Row{"Valid", r.Validation.IsValid})
	t.AppendRow(table.Row{"Message", r.Validation.Message})
	t.Render()
}

func renderConfig(w io.Writer, s *testconfig.Summary) {
	fmt.Fprintf(w, "Current profile: %s\n", text.Bold.Sprint(s.CurrentProfile))
	if s.ProfileDescription != "" {
		fmt.Fprintf(w, "Description: %s\n", s.ProfileDescription)
	}
	fmt.Fprintf(w, "Tests per endpoint: %d\n", s.TestsPerEndpoint)
	fmt.Fprintf(w, "Configuration file: %s\n\n", s.ConfigurationFile)

	t := newTable(w, "TYPE", "PRIORITY", "TESTS")
	for _, et := range s.EnabledTestTypes {
		t.AppendRow(table.Row{et.Type, et.Priority, strings.Join(et.Tests, ", ")})
	}
	t.Render()

	if s.AvailableProfiles == nil || s.AvailableProfiles.Len() == 0 {
		return
	}
	p := newTable(w, "PROFILE", "TYPES", "TESTS/ENDPOINT", "DESCRIPTION")
	for pair := s.AvailableProfiles.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		if name == s.CurrentProfile {
			name = text.FgGreen.Sprint(name + " *")
		}
		p.AppendRow(table.Row{name, strings.Join(pair.Value.EnabledTypes, ", "), pair.Value.TestsPerEndpoint, pair.Value.Description})
	}
	p.Render()
}

func renderSwitch(w io.Writer, s *testconfig.ProfileSwitch) {
	fmt.Fprintln(w, text.FgGreen.Sprint(s.Message))
	t := newTable(w, "PROPERTY", "VALUE")
	t.AppendRow(table.Row{"Profile", s.SwitchedTo})
	t.AppendRow(table.Row{"Description", s.Description})
	t.AppendRow(table.Row{"Types", strings.Join(s.EnabledTypes, ", ")})
	t.AppendRow(table.Row{"Tests", strings.Join(s.EnabledSuffixes, ", ")})
	t.AppendRow(table.Row{"Tests per endpoint", s.TestsPerEndpoint})
	t.Render()
}

func renderTestCases(w io.Writer, s *pytestgen.Summary) {
	fmt.Fprintf(w, "Total test cases: %d\n", s.TotalTestCases)

	c := newTable(w, "COMPONENT", "TEST CASES")
	for pair := s.Components.Oldest(); pair != nil; pair = pair.Next() {
		c.AppendRow(table.Row{pair.Key, pair.Value})
	}
	c.Render()

	if len(s.TestCases) == 0 {
		return
	}
	t := newTable(w, "ID", "CATEGORY", "PRIORITY", "API")
	for _, tc := range s.TestCases {
		t.AppendRow(table.Row{tc.TestCaseID, tc.Category, tc.Priority, tc.APIMethod + " " + tc.APIPath})
	}
	t.Render()
}

// formatCounts renders a count map as "a: 1, b: 2" in key order.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, counts[k])
	}
	return strings.Join(parts, ", ")
}
