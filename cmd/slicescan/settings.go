package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/slicescan/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Check tracing and telemetry settings",
	}
	cmd.AddCommand(newSettingsCheckCmd(), newSettingsValidateCmd())
	return cmd
}

func newSettingsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <agent-key>...",
		Short: "Report whether agent configuration keys may be set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prohibited int
			for _, key := range args {
				if settings.IsPermittedAgentKey(key) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", paint(green, "permitted "), key)
					continue
				}
				prohibited++
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", paint(red, "prohibited"), key)
			}
			if prohibited > 0 {
				return fmt.Errorf("%d of %d keys prohibited", prohibited, len(args))
			}
			return nil
		},
	}
}

func newSettingsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Apply the configured settings to a scratch gate and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fail(cmd, err)
			}
			gate := settings.NewDynamic(nil)
			if err := gate.Apply(cfg.Settings); err != nil {
				return fail(cmd, err)
			}
			snap := gate.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "recording: %t\ntracing:   %t\n", snap.Recording, snap.Tracing)
			return nil
		},
	}
}
