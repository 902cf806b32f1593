// Package plan drafts a narrative QA test plan from the documents in an input directory.
package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"api-testcase-generator/internal/llm"

	"github.com/rs/zerolog/log"
)

// DefaultOutputPath is where generated plans are saved.
const DefaultOutputPath = "output/test_plan.md"

// ErrNoReadableFiles is returned when the input directory yields no content.
var ErrNoReadableFiles = errors.New("no readable files found in the specified directory")

// InvalidPlanError is returned when the model's plan fails validation. Nothing is saved.
type InvalidPlanError struct {
	Validation Validation
}

func (e *InvalidPlanError) Error() string {
	return e.Validation.Message
}

// Result is the outcome of a successful plan generation
type Result struct {
	TestPlan   string     `json:"test_plan"`
	OutputFile string     `json:"output_file"`
	Validation Validation `json:"validation"`
}

// Generator turns an input directory into a saved, validated test plan
type Generator struct {
	llm        llm.TextGenerator
	fetcher    *Fetcher
	outputPath string
}

// NewGenerator creates a new plan generator. A nil fetcher disables urls.txt fetching.
func NewGenerator(generator llm.TextGenerator, fetcher *Fetcher, outputPath string) *Generator {
	if outputPath == "" {
		outputPath = DefaultOutputPath
	}
	return &Generator{
		llm:        generator,
		fetcher:    fetcher,
		outputPath: outputPath,
	}
}

// OutputPath returns where plans are written.
func (g *Generator) OutputPath() string {
	return g.outputPath
}

// Generate reads inputDir, prompts the model, validates the answer and saves it.
func (g *Generator) Generate(ctx context.Context, inputDir string) (*Result, error) {
	log.Info().Str("input_dir", inputDir).Msg("Reading and preprocessing input files")
	content, err := ReadInputs(ctx, inputDir, g.fetcher)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, ErrNoReadableFiles
	}

	content, truncated := TruncateContent(content)
	if truncated {
		log.Info().Int("limit", MaxContentLength).Msg("Input content truncated")
	}

	log.Info().Msg("Generating test plan")
	testPlan, err := g.llm.Generate(ctx, BuildPrompt(content))
	if err != nil {
		return nil, fmt.Errorf("failed to generate test plan: %w", err)
	}

	validation := Validate(testPlan)
	if !validation.IsValid {
		return nil, &InvalidPlanError{Validation: validation}
	}

	if err := os.MkdirAll(filepath.Dir(g.outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(g.outputPath, []byte(testPlan), 0644); err != nil {
		return nil, fmt.Errorf("failed to save test plan: %w", err)
	}
	log.Info().Str("file", g.outputPath).Msg("Test plan saved")

	return &Result{
		TestPlan:   testPlan,
		OutputFile: g.outputPath,
		Validation: validation,
	}, nil
}
