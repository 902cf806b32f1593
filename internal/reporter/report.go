package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"api-testcase-generator/internal/testcase"
	"api-testcase-generator/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Supported output formats.
const (
	FormatExcel = "xlsx"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Artifact file names inside the output directory.
const (
	ExcelFileName = "test_cases.xlsx"
	CSVFileName   = "test_cases.csv"
)

// GeneratorVersion is recorded in the workbook metadata.
const GeneratorVersion = "2.0 (Excel Direct Generation)"

// Sheet names, in workbook order.
const (
	SheetTestCases     = "Test Cases"
	SheetTestExecution = "Test Execution"
	SheetMetadata      = "Metadata"
	SheetEndpoints     = "API Endpoints"
)

// Sheets lists the workbook sheets in order.
var Sheets = []string{SheetTestCases, SheetTestExecution, SheetMetadata, SheetEndpoints}

// Report represents one generation run handed to the serialization boundary
type Report struct {
	GenerationID string            `json:"generation_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	InputSource  string            `json:"input_source"`
	APITitle     string            `json:"api_title"`
	APIVersion   string            `json:"api_version"`
	Statistics   Statistics        `json:"statistics"`
	Endpoints    []types.Endpoint  `json:"-"`
	Records      []testcase.Record `json:"test_cases"`
}

// Statistics summarizes the generated records.
type Statistics struct {
	TotalTestSuites      int            `json:"total_test_suites"`
	TotalTestCases       int            `json:"total_test_cases"`
	APIEndpointsAnalyzed int            `json:"api_endpoints_analyzed"`
	OutputFormat         string         `json:"output_format"`
	Categories           map[string]int `json:"categories"`
	Priorities           map[string]int `json:"priorities"`
	AutomationCandidates int            `json:"automation_candidates"`
	SheetsCreated        []string       `json:"sheets_created"`
}

// ComputeStatistics aggregates records generated for the given number of endpoints.
func ComputeStatistics(records []testcase.Record, endpoints int) Statistics {
	stats := Statistics{
		TotalTestCases:       len(records),
		APIEndpointsAnalyzed: endpoints,
		OutputFormat:         "excel",
		Categories:           make(map[string]int),
		Priorities:           make(map[string]int),
		SheetsCreated:        append([]string(nil), Sheets...),
	}

	suites := make(map[string]bool)
	for _, r := range records {
		suites[r.TestSuite] = true
		stats.Categories[r.Category]++
		stats.Priorities[r.Priority]++
		if r.AutomationCandidate {
			stats.AutomationCandidates++
		}
	}
	stats.TotalTestSuites = len(suites)

	return stats
}

// NewReport assembles a report for records generated from endpoints.
func NewReport(records []testcase.Record, endpoints []types.Endpoint, inputSource, apiTitle, apiVersion string) *Report {
	if apiTitle == "" {
		apiTitle = "Unknown API"
	}
	if apiVersion == "" {
		apiVersion = "Unknown"
	}

	return &Report{
		GenerationID: uuid.New().String(),
		GeneratedAt:  time.Now(),
		InputSource:  inputSource,
		APITitle:     apiTitle,
		APIVersion:   apiVersion,
		Statistics:   ComputeStatistics(records, len(endpoints)),
		Endpoints:    endpoints,
		Records:      records,
	}
}

// Artifacts lists the files written for a report.
type Artifacts struct {
	ExcelFile string `json:"output_file,omitempty"`
	CSVFile   string `json:"csv_file,omitempty"`
	JSONFile  string `json:"json_file,omitempty"`
}

// Reporter handles the generation of test case artifacts
type Reporter struct {
	config Config
}

// Config holds the configuration for reporting
type Config struct {
	Formats   []string
	OutputDir string
}

// NewReporter creates a new instance of Reporter
func NewReporter(config Config) *Reporter {
	if len(config.Formats) == 0 {
		config.Formats = []string{FormatExcel, FormatCSV}
	}
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}
	return &Reporter{config: config}
}

// OutputDir returns the directory artifacts are written to.
func (r *Reporter) OutputDir() string {
	return r.config.OutputDir
}

// Write serializes report in every configured format. The artifacts are staged in a
// scratch directory and moved into place together, so a failed run leaves none of them.
func (r *Reporter) Write(report *Report) (*Artifacts, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	staging, err := os.MkdirTemp(r.config.OutputDir, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	var staged []string
	artifacts := &Artifacts{}
	for _, format := range r.config.Formats {
		switch strings.ToLower(format) {
		case FormatExcel:
			if err := WriteExcel(filepath.Join(staging, ExcelFileName), report); err != nil {
				return nil, fmt.Errorf("failed to generate Excel report: %w", err)
			}
			staged = append(staged, ExcelFileName)
			artifacts.ExcelFile = filepath.Join(r.config.OutputDir, ExcelFileName)
		case FormatCSV:
			if err := WriteCSV(filepath.Join(staging, CSVFileName), report.Records); err != nil {
				return nil, fmt.Errorf("failed to generate CSV report: %w", err)
			}
			staged = append(staged, CSVFileName)
			artifacts.CSVFile = filepath.Join(r.config.OutputDir, CSVFileName)
		case FormatJSON:
			name, err := writeJSON(staging, report)
			if err != nil {
				return nil, fmt.Errorf("failed to generate JSON report: %w", err)
			}
			staged = append(staged, name)
			artifacts.JSONFile = filepath.Join(r.config.OutputDir, name)
		default:
			log.Warn().Str("format", format).Msg("unsupported report format skipped")
		}
	}

	if err := commit(staging, r.config.OutputDir, staged); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// commit moves the staged files into dir. When one move fails the files already moved
// are removed again.
func commit(staging, dir string, names []string) error {
	for i, name := range names {
		if err := os.Rename(filepath.Join(staging, name), filepath.Join(dir, name)); err != nil {
			for _, done := range names[:i] {
				if rmErr := os.Remove(filepath.Join(dir, done)); rmErr != nil {
					log.Warn().Err(rmErr).Str("file", done).Msg("failed to remove partial report")
				}
			}
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
	}
	return nil
}

// writeJSON writes a timestamped JSON copy of the report into dir and returns its name.
func writeJSON(dir string, report *Report) (string, error) {
	name := fmt.Sprintf("report_%s.json", report.GeneratedAt.Format("20060102_150405"))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", err
	}
	return name, nil
}
