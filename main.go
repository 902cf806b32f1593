package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"api-testcase-generator/internal/config"
	"api-testcase-generator/internal/logger"

	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	output     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "api-testcase-generator",
		Short: "Generate test plans and test cases from API documentation",
		Long: `api-testcase-generator turns an OpenAPI document into a catalog of test cases
(Excel and CSV), drafts test plans from project documents with an LLM, and
generates pytest modules from the exported cases.

The same operations are available as MCP tools (serve), over HTTP (serve-http)
and from an interactive client (client).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(opts.logLevel, os.Stderr)
			if opts.output != outputTable && opts.output != outputJSON {
				return fmt.Errorf("unsupported output format %q (use %s or %s)", opts.output, outputTable, outputJSON)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Application config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table, json)")

	rootCmd.AddCommand(generatePlanCmd(opts))
	rootCmd.AddCommand(generateCasesCmd(opts))
	rootCmd.AddCommand(pipelineCmd(opts))
	rootCmd.AddCommand(showConfigCmd(opts))
	rootCmd.AddCommand(switchProfileCmd(opts))
	rootCmd.AddCommand(pytestCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(serveHTTPCmd(opts))
	rootCmd.AddCommand(clientCmd(opts))

	return rootCmd
}

// withApp builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	a, err := newApp(cmd.Context(), opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
