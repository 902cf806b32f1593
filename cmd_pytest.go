package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"api-testcase-generator/internal/pytestgen"

	"github.com/spf13/cobra"
)

func pytestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pytest",
		Short: "Generate pytest modules from exported test cases",
	}

	cmd.AddCommand(pytestReadCmd(opts))
	cmd.AddCommand(pytestGenerateCmd(opts))
	cmd.AddCommand(pytestConfigCmd(opts))

	return cmd
}

func pytestReadCmd(opts *rootOptions) *cobra.Command {
	var csvPath, component string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Summarize the test cases in a CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				summary, err := a.svc.ReadTestCases(csvPath, component)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, summary)
			})
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "output/test_cases.csv", "CSV export to read")
	cmd.Flags().StringVar(&component, "component", "", "Only count this component")

	return cmd
}

func pytestGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		csvPath    string
		component  string
		outputPath string
		useAI      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the pytest module for one component",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = filepath.Join("tests", fmt.Sprintf("test_%s.py", strings.ToLower(component)))
			}
			return withApp(cmd, opts, func(a *app) error {
				var result *pytestgen.FileResult
				err := withSpinner(fmt.Sprintf("Generating tests for %s...", component), func() error {
					var err error
					result, err = a.svc.GenerateTestFile(cmd.Context(), csvPath, component, outputPath, useAI)
					return err
				})
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, result)
			})
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "output/test_cases.csv", "CSV export to read")
	cmd.Flags().StringVar(&component, "component", "", "Component to generate tests for")
	cmd.Flags().StringVar(&outputPath, "out", "", "Output file (default tests/test_<component>.py)")
	cmd.Flags().BoolVar(&useAI, "use-ai", false, "Ask the LLM for test bodies")
	cmd.MarkFlagRequired("component")

	return cmd
}

func pytestConfigCmd(opts *rootOptions) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write pytest.ini and requirements.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				result, err := a.svc.GenerateConfigFiles(outputDir)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, result)
			})
		},
	}

	cmd.Flags().StringVar(&outputDir, "dir", "tests", "Output directory")

	return cmd
}
