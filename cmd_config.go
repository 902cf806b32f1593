package main

import "github.com/spf13/cobra"

func showConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show-config",
		Short: "Show the current test configuration and available profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				summary, err := a.svc.ShowTestConfig()
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, summary)
			})
		},
	}
}

func switchProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "switch-profile <profile>",
		Short: "Switch to a predefined test profile",
		Long: `Makes a predefined profile current. Only the test types it names stay enabled;
the change is saved to the test configuration file and applies to the next
generate-cases run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				result, err := a.svc.SwitchTestProfile(args[0])
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, result)
			})
		},
	}
}
