package main

import (
	"github.com/spf13/cobra"

	"inkstone/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "inkstone",
		Short: "Inkstone is a personal document-management backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				cmd.PrintErrln(warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSpaceCmd(cfg, &jsonOutput),
		newAddCmd(cfg),
		newImportCmd(cfg),
		newRemoveCmd(cfg),
		newMoveCmd(cfg),
		newLsCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newTagCmd(cfg, &jsonOutput),
		newAttrCmd(cfg, &jsonOutput),
		newSearchCmd(cfg, &jsonOutput),
		newOverviewCmd(cfg, &jsonOutput),
		newReindexCmd(cfg, &jsonOutput),
		newAnalyzeCmd(cfg, &jsonOutput),
		newExportCmd(cfg),
		newConfigCmd(cfg),
	)

	return cmd
}
