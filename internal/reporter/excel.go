package reporter

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"api-testcase-generator/internal/testcase"
	"api-testcase-generator/internal/types"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 50

// TestCaseColumns is the header of the Test Cases sheet and of the CSV export.
var TestCaseColumns = []string{
	"test_case_id", "test_suite", "title", "description", "category", "priority",
	"test_level", "risk_level", "automation_candidate", "api_method", "api_path",
	"operation_id", "api_summary", "preconditions", "test_steps", "expected_results",
	"test_data", "post_conditions", "dependencies", "tags", "estimated_duration",
	"author", "creation_date", "last_updated", "status", "execution_notes", "bug_references",
}

var executionColumns = []string{
	"Test Case ID", "Title", "Priority", "Category", "Status", "Execution Date",
	"Executed By", "Result", "Actual vs Expected", "Bugs Found", "Notes",
}

var endpointColumns = []string{
	"Method", "Path", "Operation ID", "Summary", "Description", "Tags",
	"Parameters Count", "Response Codes", "Test Cases Generated",
}

// TestCaseRow flattens a record in TestCaseColumns order.
func TestCaseRow(r testcase.Record) []string {
	return []string{
		r.TestCaseID, r.TestSuite, r.Title, r.Description, r.Category, r.Priority,
		r.TestLevel, r.RiskLevel, yesNo(r.AutomationCandidate), r.APIMethod, r.APIPath,
		r.OperationID, r.APISummary, r.Preconditions, r.TestSteps, r.ExpectedResults,
		r.TestData, r.PostConditions, r.Dependencies, r.Tags, r.EstimatedDuration,
		r.Author, r.CreationDate, r.LastUpdated, r.Status, r.ExecutionNotes, r.BugReferences,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteExcel writes the four-sheet workbook for report to path.
func WriteExcel(path string, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTestCases); err != nil {
		return err
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{SheetTestCases, TestCaseColumns, testCaseRows(report.Records)},
		{SheetTestExecution, executionColumns, executionRows(report.Records)},
		{SheetMetadata, []string{"Property", "Value"}, metadataRows(report)},
		{SheetEndpoints, endpointColumns, endpointRows(report.Endpoints, report.Records)},
	}

	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.rows); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", s.name, err)
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// writeSheet writes a header and rows starting at A1 and sizes every column to its
// longest value plus two, capped at maxColumnWidth.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	widths := make([]int, len(header))

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for i, row := range rows {
		for c, v := range row {
			if c < len(widths) {
				if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
					widths[c] = n
				}
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	for c, w := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			return err
		}
	}

	return nil
}

func testCaseRows(records []testcase.Record) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		values := TestCaseRow(r)
		row := make([]interface{}, len(values))
		for i, v := range values {
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows
}

func executionRows(records []testcase.Record) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.TestCaseID, r.Title, r.Priority, r.Category, "Not Executed", "", "", "", "", "", "",
		})
	}
	return rows
}

func metadataRows(report *Report) [][]interface{} {
	var categories []string
	seen := make(map[string]bool)
	priorities := make(map[string]int)
	automated := 0
	for _, r := range report.Records {
		if !seen[r.Category] {
			seen[r.Category] = true
			categories = append(categories, r.Category)
		}
		priorities[r.Priority]++
		if r.AutomationCandidate {
			automated++
		}
	}

	total := len(report.Records)
	return [][]interface{}{
		{"Generated Date", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Test Cases", total},
		{"Total API Endpoints", len(report.Endpoints)},
		{"Test Categories", strings.Join(categories, ", ")},
		{"Priority Distribution", fmt.Sprintf("Critical: %d, High: %d, Medium: %d", priorities["Critical"], priorities["High"], priorities["Medium"])},
		{"Automation Candidates", fmt.Sprintf("%d out of %d", automated, total)},
		{"Generator Version", GeneratorVersion},
		{"Input Source", fmt.Sprintf("OpenAPI Specification from %s", report.InputSource)},
		{"API Title", report.APITitle},
		{"API Version", report.APIVersion},
		{"Generation ID", report.GenerationID},
	}
}

func endpointRows(endpoints []types.Endpoint, records []testcase.Record) [][]interface{} {
	generated := make(map[string]int)
	for _, r := range records {
		generated[r.APIMethod+" "+r.APIPath]++
	}

	rows := make([][]interface{}, 0, len(endpoints))
	for _, ep := range endpoints {
		codes := make([]string, 0, len(ep.Responses))
		for code := range ep.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		rows = append(rows, []interface{}{
			ep.Method,
			ep.Path,
			ep.OperationID,
			ep.Summary,
			ep.Description,
			strings.Join(ep.Tags, ", "),
			len(ep.Parameters),
			strings.Join(codes, ", "),
			generated[ep.Key()],
		})
	}
	return rows
}
