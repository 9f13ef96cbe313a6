package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDefault is the embedded config.yaml, used when no file is given
var configDefault string

var rootCmd = &cobra.Command{
	Use:           "link-editor-service",
	Short:         "Link editor service for the Web link type",
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the command line with the embedded default configuration
func Execute(defaultConfig string) {
	configDefault = defaultConfig
	if err := rootCmd.Execute(); err != nil {
		bootstrapLogger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
