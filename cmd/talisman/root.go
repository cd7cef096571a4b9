package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var patchFlag string
	var urlFlag string
	var localFlag string
	var cacheFlag string
	var cacheDirFlag string

	ctx := newCommandContext(&configFlag, &patchFlag, &urlFlag, &localFlag, &cacheFlag, &cacheDirFlag)

	rootCmd := &cobra.Command{
		Use:           "talisman",
		Short:         "Extract game item icons from patch bundles",
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
	rootCmd.PersistentFlags().StringVar(&patchFlag, "patch", "", "Game patch version to fetch bundles for")
	rootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "Base URL of a bundle mirror")
	rootCmd.PersistentFlags().StringVar(&localFlag, "local", "", "Path to an extracted bundle tree on disk")
	rootCmd.PersistentFlags().StringVar(&cacheFlag, "cache", "", "Bundle cache mode: none, memory, or disk")
	rootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "Directory for the disk cache")

	rootCmd.AddCommand(newAssetsCommand(ctx))
	rootCmd.AddCommand(newShaCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
