// Package cmd contains CLI command definitions
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	cfgFile string
	envFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "pixelgate",
		Short: "Pixelgate - visual regression test runner",
		Long: `Pixelgate captures screenshots of web UI test cases across browsers
and compares them pixel by pixel against committed baselines.

Test cases are discovered from configured sources (a running storybook,
or a static list of pages) and captured with bounded concurrency.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if envFile != "" {
				if err := godotenv.Overload(envFile); err != nil {
					return fmt.Errorf("loading env file %s: %w", envFile, err)
				}
			}

			if verbose {
				Logger.SetLevel(logrus.DebugLevel)
			}

			return nil
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize the shared logger
	Logger = logrus.New()

	// Set log level from environment variable
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // Default to info
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fmt.Printf("Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevel)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "suite configuration file (default pixelgate.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "environment file to load (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
