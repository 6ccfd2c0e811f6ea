package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose, debug bool

	ctx := newCommandContext(&configFlag, &verbose, &debug)

	rootCmd := &cobra.Command{
		Use:           "baylight",
		Short:         "Light enclosure bay LEDs for the drives that are present",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log drive changes (info level)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log topology decisions (debug level)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newBaysCommand(ctx))
	rootCmd.AddCommand(newLEDsCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
