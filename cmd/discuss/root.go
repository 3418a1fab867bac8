package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ljosc/discuss/internal/config"
	"github.com/ljosc/discuss/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "discuss",
		Short: "Local web client for a discussion forum",
		Long: `discuss serves the forum's pages for one browser profile on a local
address and keeps that profile's login in a credential store on disk.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringP("config", "c", ".", "folder containing config.yaml and an optional .env")

	root.AddCommand(newServeCmd(), newLogoutCmd(), newStatusCmd())
	return root
}

// loadConfig reads the config folder named by --config and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	folder, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(folder)
	if err != nil {
		return nil, err
	}
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)
	return cfg, nil
}
