// Package service exposes the generator's operations to every transport. Calls that read
// or write the test-type configuration are serialized.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"api-testcase-generator/internal/parser"
	"api-testcase-generator/internal/plan"
	"api-testcase-generator/internal/pytestgen"
	"api-testcase-generator/internal/reporter"
	"api-testcase-generator/internal/testcase"
	"api-testcase-generator/internal/testconfig"

	"github.com/rs/zerolog/log"
)

// DefaultSpecFile is the OpenAPI document looked up inside an input directory.
const DefaultSpecFile = "openapi.json"

// ErrPlannerUnavailable is returned when plan generation is requested without a model.
var ErrPlannerUnavailable = errors.New("test plan generation requires an LLM: set GROQ_API_KEY or OPENAI_API_KEY")

// Exporter receives every generated batch of test cases
type Exporter interface {
	Export(ctx context.Context, records []testcase.Record) (string, error)
}

// Options wires the service's collaborators. Planner and Exporter are optional.
type Options struct {
	TestConfigPath string
	PlanPath       string
	SpecFile       string
	Planner        *plan.Generator
	Reporter       *reporter.Reporter
	Pytest         *pytestgen.Generator
	Exporter       Exporter
}

// Service runs the generator operations
type Service struct {
	mu       sync.Mutex
	store    *testconfig.Store
	planPath string
	specFile string
	planner  *plan.Generator
	reporter *reporter.Reporter
	pytest   *pytestgen.Generator
	exporter Exporter
	expander *testcase.Expander
}

// New creates a new service
func New(opts Options) *Service {
	if opts.PlanPath == "" {
		opts.PlanPath = plan.DefaultOutputPath
	}
	if opts.SpecFile == "" {
		opts.SpecFile = DefaultSpecFile
	}
	if opts.Reporter == nil {
		opts.Reporter = reporter.NewReporter(reporter.Config{})
	}
	if opts.Pytest == nil {
		opts.Pytest = pytestgen.NewGenerator(nil)
	}

	return &Service{
		store:    testconfig.NewStore(opts.TestConfigPath),
		planPath: opts.PlanPath,
		specFile: opts.SpecFile,
		planner:  opts.Planner,
		reporter: opts.Reporter,
		pytest:   opts.Pytest,
		exporter: opts.Exporter,
		expander: testcase.NewExpander(),
	}
}

// GenerateTestPlan drafts and saves a test plan from the documents in inputDir.
func (s *Service) GenerateTestPlan(ctx context.Context, inputDir string) (*plan.Result, error) {
	if s.planner == nil {
		return nil, ErrPlannerUnavailable
	}
	result, err := s.planner.Generate(ctx, inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to generate test plan: %w", err)
	}
	return result, nil
}

// CasesResult is the outcome of a test case generation run
type CasesResult struct {
	Success       bool                `json:"success"`
	OutputFile    string              `json:"output_file,omitempty"`
	CSVFile       string              `json:"csv_file,omitempty"`
	JSONFile      string              `json:"json_file,omitempty"`
	ExportBatchID string              `json:"export_batch_id,omitempty"`
	Statistics    reporter.Statistics `json:"statistics"`
	Message       string              `json:"message"`
}

// GenerateTestCases expands the OpenAPI document in inputDir under the current test-type
// configuration and writes the configured artifacts. Nothing is written when parsing or
// expansion fails.
func (s *Service) GenerateTestCases(ctx context.Context, inputDir string) (*CasesResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	log.Info().Str("profile", cfg.CurrentProfile).Msg("Loaded test configuration")

	specPath := filepath.Join(inputDir, s.specFile)
	endpoints, doc, err := parser.ParseFile(specPath)
	if err != nil {
		return nil, err
	}
	log.Info().Int("endpoints", len(endpoints)).Msg("Found API endpoints to generate test cases for")

	records, err := s.expander.Generate(endpoints, cfg, s.planPath)
	if err != nil {
		return nil, fmt.Errorf("failed to generate test cases: %w", err)
	}

	report := reporter.NewReport(records, endpoints, specPath, doc.Title, doc.Version)
	artifacts, err := s.reporter.Write(report)
	if err != nil {
		return nil, err
	}

	result := &CasesResult{
		Success:    true,
		OutputFile: artifacts.ExcelFile,
		CSVFile:    artifacts.CSVFile,
		JSONFile:   artifacts.JSONFile,
		Statistics: report.Statistics,
		Message:    fmt.Sprintf("Successfully generated %d test cases for %d API endpoints in Excel format", len(records), len(endpoints)),
	}

	if s.exporter != nil {
		batchID, err := s.exporter.Export(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("failed to export test cases: %w", err)
		}
		result.ExportBatchID = batchID
	}

	return result, nil
}

// ShowTestConfig describes the current test-type configuration.
func (s *Service) ShowTestConfig() (*testconfig.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return s.store.Describe(cfg), nil
}

// SwitchTestProfile makes name the active profile.
func (s *Service) SwitchTestProfile(name string) (*testconfig.ProfileSwitch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.SwitchProfile(name)
}

// ReadTestCases summarizes a CSV export, optionally limited to one component.
func (s *Service) ReadTestCases(csvPath, component string) (*pytestgen.Summary, error) {
	return pytestgen.ReadTestCases(csvPath, component)
}

// GenerateTestFile writes the pytest module for one component of a CSV export.
func (s *Service) GenerateTestFile(ctx context.Context, csvPath, component, outputPath string, useAI bool) (*pytestgen.FileResult, error) {
	return s.pytest.WriteTestFile(ctx, csvPath, component, outputPath, useAI)
}

// ConfigFilesResult lists the pytest support files written
type ConfigFilesResult struct {
	OutputDir string   `json:"output_dir"`
	Files     []string `json:"files"`
}

// GenerateConfigFiles writes pytest.ini and requirements.txt into outputDir.
func (s *Service) GenerateConfigFiles(outputDir string) (*ConfigFilesResult, error) {
	files, err := pytestgen.WriteConfigFiles(outputDir)
	if err != nil {
		return nil, err
	}
	return &ConfigFilesResult{OutputDir: outputDir, Files: files}, nil
}

// PipelineResult holds the outputs of both pipeline stages
type PipelineResult struct {
	Plan  *plan.Result `json:"test_plan"`
	Cases *CasesResult `json:"test_cases"`
}

// RunPipeline generates the test plan and then the test cases, stopping at the first
// failure. The plan feeds the workflow templates of the second stage.
func (s *Service) RunPipeline(ctx context.Context, inputDir string) (*PipelineResult, error) {
	planResult, err := s.GenerateTestPlan(ctx, inputDir)
	if err != nil {
		return nil, fmt.Errorf("test plan stage: %w", err)
	}

	cases, err := s.GenerateTestCases(ctx, inputDir)
	if err != nil {
		return &PipelineResult{Plan: planResult}, fmt.Errorf("test case stage: %w", err)
	}

	return &PipelineResult{Plan: planResult, Cases: cases}, nil
}
