package main

import (
	"api-testcase-generator/internal/plan"
	"api-testcase-generator/internal/service"

	"github.com/spf13/cobra"
)

func generatePlanCmd(opts *rootOptions) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "generate-plan",
		Short: "Draft a test plan from the documents in a directory",
		Long: `Reads every text and JSON file in the input directory, fetches the URLs listed
in urls.txt, asks the configured LLM for a test plan and saves it as markdown.
Requires GROQ_API_KEY or OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				var result *plan.Result
				err := withSpinner("Generating test plan...", func() error {
					var err error
					result, err = a.svc.GenerateTestPlan(cmd.Context(), inputDir)
					return err
				})
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, result)
			})
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory containing the input documents")
	cmd.MarkFlagRequired("input-dir")

	return cmd
}

func generateCasesCmd(opts *rootOptions) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "generate-cases",
		Short: "Generate test cases from the OpenAPI document in a directory",
		Long: `Expands every operation of the OpenAPI document (openapi.json by default)
into test cases for the enabled test types of the current profile and writes
them to the output directory as Excel and CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				result, err := a.svc.GenerateTestCases(cmd.Context(), inputDir)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, result)
			})
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory containing openapi.json")
	cmd.MarkFlagRequired("input-dir")

	return cmd
}

func pipelineCmd(opts *rootOptions) *cobra.Command {
	var inputDir string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Generate the test plan and then the test cases",
		Long: `Runs generate-plan followed by generate-cases on the same input directory,
stopping at the first failure. The saved plan feeds the workflow test cases.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				var result *service.PipelineResult
				err := withSpinner("Running test generation pipeline...", func() error {
					var err error
					result, err = a.svc.RunPipeline(cmd.Context(), inputDir)
					return err
				})
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, result)
			})
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "Directory containing the input documents and openapi.json")
	cmd.MarkFlagRequired("input-dir")

	return cmd
}
