package reporter

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"api-testcase-generator/internal/testcase"
	"api-testcase-generator/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()

	endpoints := []types.Endpoint{
		{
			Method:      "GET",
			Path:        "/users",
			Tags:        []string{"Users", "Admin"},
			OperationID: "listUsers",
			Summary:     "List users",
			Parameters:  []types.Parameter{{Name: "limit", In: "query"}, {Name: "offset", In: "query"}},
			Responses:   map[string]types.Response{"404": {}, "200": {Description: "ok"}},
		},
		{Method: "DELETE", Path: "/users/{id}"},
	}

	x := &testcase.Expander{Now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }}
	records, err := x.Expand(endpoints, []string{"FUNC-HAPPY", "SEC-AUTH", "COMPAT-VERSIONS"}, nil, nil, testcase.NewCounter())
	require.NoError(t, err)

	report := NewReport(records, endpoints, "input", "Users API", "")
	report.GeneratedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return report
}

func TestComputeStatistics(t *testing.T) {
	report := sampleReport(t)
	stats := report.Statistics

	assert.Equal(t, 6, stats.TotalTestCases)
	assert.Equal(t, 2, stats.APIEndpointsAnalyzed)
	assert.Equal(t, "excel", stats.OutputFormat)
	// Users and API tags times three categories.
	assert.Equal(t, 6, stats.TotalTestSuites)
	assert.Equal(t, map[string]int{"Functional": 2, "Security": 2, "Compatibility": 2}, stats.Categories)
	assert.Equal(t, map[string]int{"High": 2, "Critical": 2, "Low": 2}, stats.Priorities)
	assert.Equal(t, 6, stats.AutomationCandidates)
	assert.Equal(t, Sheets, stats.SheetsCreated)
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, 3)
	assert.Zero(t, stats.TotalTestCases)
	assert.Zero(t, stats.TotalTestSuites)
	assert.Equal(t, 3, stats.APIEndpointsAnalyzed)
	assert.Empty(t, stats.Categories)
}

func TestNewReport_Defaults(t *testing.T) {
	report := NewReport(nil, nil, "in", "", "")
	assert.Equal(t, "Unknown API", report.APITitle)
	assert.Equal(t, "Unknown", report.APIVersion)
	assert.Len(t, report.GenerationID, 36)
}

func TestReporter_WriteAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	r := NewReporter(Config{Formats: []string{FormatExcel, FormatCSV, FormatJSON, "pdf"}, OutputDir: dir})

	report := sampleReport(t)
	artifacts, err := r.Write(report)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ExcelFileName), artifacts.ExcelFile)
	assert.Equal(t, filepath.Join(dir, CSVFileName), artifacts.CSVFile)
	assert.Equal(t, filepath.Join(dir, "report_20240102_030405.json"), artifacts.JSONFile)

	data, err := os.ReadFile(artifacts.JSONFile)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.GenerationID, decoded["generation_id"])
	assert.Len(t, decoded["test_cases"], 6)
}

func TestReporter_WriteLeavesNothingOnFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	// A directory in the CSV's place makes the last move fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, CSVFileName, "keep"), 0755))

	r := NewReporter(Config{Formats: []string{FormatExcel, FormatCSV}, OutputDir: dir})
	_, err := r.Write(sampleReport(t))
	require.ErrorContains(t, err, "failed to save "+CSVFileName)

	assert.NoFileExists(t, filepath.Join(dir, ExcelFileName))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CSVFileName, entries[0].Name())
}

func TestWriteExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), ExcelFileName)
	report := sampleReport(t)
	require.NoError(t, WriteExcel(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, Sheets, f.GetSheetList())

	rows, err := f.GetRows(SheetTestCases)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, TestCaseColumns, rows[0])
	assert.Equal(t, "TC-Users-FUNC-HAPPY-001", rows[1][0])
	assert.Equal(t, "Yes", rows[1][8])

	rows, err = f.GetRows(SheetTestExecution)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, executionColumns, rows[0])
	assert.Equal(t, "Not Executed", rows[1][4])

	rows, err = f.GetRows(SheetMetadata)
	require.NoError(t, err)
	metadata := make(map[string]string)
	for _, row := range rows[1:] {
		require.Len(t, row, 2)
		metadata[row[0]] = row[1]
	}
	assert.Equal(t, "2024-01-02 03:04:05", metadata["Generated Date"])
	assert.Equal(t, "6", metadata["Total Test Cases"])
	assert.Equal(t, "2", metadata["Total API Endpoints"])
	assert.Equal(t, "Functional, Security, Compatibility", metadata["Test Categories"])
	assert.Equal(t, "Critical: 2, High: 2, Medium: 0", metadata["Priority Distribution"])
	assert.Equal(t, "6 out of 6", metadata["Automation Candidates"])
	assert.Equal(t, GeneratorVersion, metadata["Generator Version"])
	assert.Equal(t, "OpenAPI Specification from input", metadata["Input Source"])
	assert.Equal(t, "Users API", metadata["API Title"])
	assert.Equal(t, "Unknown", metadata["API Version"])

	rows, err = f.GetRows(SheetEndpoints)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"GET", "/users", "listUsers", "List users", "", "Users, Admin", "2", "200, 404", "3"}, rows[1])
	assert.Equal(t, "DELETE", rows[2][0])
	assert.Equal(t, "3", rows[2][8])

	// Steps are long, so the column is capped; the method column is sized to its header.
	width, err := f.GetColWidth(SheetTestCases, "O")
	require.NoError(t, err)
	assert.Equal(t, float64(maxColumnWidth), width)

	width, err = f.GetColWidth(SheetTestCases, "J")
	require.NoError(t, err)
	assert.Equal(t, float64(len("api_method")+2), width)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFileName)
	report := sampleReport(t)
	require.NoError(t, WriteCSV(path, report.Records))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, TestCaseColumns, rows[0])

	steps := rows[1][14]
	assert.True(t, strings.HasPrefix(steps, "1. Prepare valid request data for /users\n2."))
}
