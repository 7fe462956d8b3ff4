package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pricewatch/internal/app"
	"pricewatch/internal/config"
	"pricewatch/internal/logging"
)

var (
	cfgFile    string
	logLevel   string
	dataPath   string
	dataSource string
	appHandle  *app.App
)

var rootCmd = &cobra.Command{
	Use:           "pricewatch",
	Short:         "Report ASINs with recent settled-price volatility",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if dataPath != "" || dataSource != "" {
			if dataPath != "" {
				cfg.Dataset.Path = dataPath
			}
			if dataSource != "" {
				cfg.Dataset.Source = dataSource
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		appHandle.Out = cmd.OutOrStdout()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Dataset file path (overrides dataset.path)")
	rootCmd.PersistentFlags().StringVar(&dataSource, "source", "", "Dataset source: xlsx, csv, sqlite, postgres (default: inferred from --data)")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
