// Package cli provides the command-line interface for coverage-reporter.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cfme-qe/coverage-reporter/internal"
	"github.com/cfme-qe/coverage-reporter/internal/logging"
	"github.com/cfme-qe/coverage-reporter/internal/settings"
)

var (
	cfgFile string
	verbose bool

	log         zerolog.Logger
	appSettings *settings.AppSettings
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coverage-reporter",
		Short: "Upload appliance coverage data from a Jenkins job to SonarQube",
		Long: `coverage-reporter finds the Jenkins builds matching a work appliance's
version, merges their per-process coverage archives on the appliance and
uploads the merged result to SonarQube.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log = logging.New(verbose)
			if err := settings.ReadDotenv(internal.DotEnvPath); err != nil {
				return err
			}
			appSettings = settings.NewSettings()
			if cfgFile != "" {
				if err := appSettings.LoadConfigFile(cfgFile); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(
		&cfgFile, "config", "c", "", "YAML configuration file path")
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newRunCmd(),
		newWatchCmd(),
		newServeCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
