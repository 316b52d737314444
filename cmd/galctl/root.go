package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/galkit/internal/config"
	"github.com/joshuapare/galkit/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	cfgFile string

	// Loaded in PersistentPreRunE.
	cfg         = config.Defaults()
	closeLogger = func() {}

	printer = message.NewPrinter(language.English)
)

var rootCmd = &cobra.Command{
	Use:   "galctl",
	Short: "Exercise galkit record storage from the command line",
	Long: `galctl drives the galkit record storage subsystem: it loads property
catalogs into a registry, demonstrates record array growth, measures pool
churn, and writes extension columns in the compressed column format.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML); GALKIT_* env vars override")
}

// setup loads configuration and starts the logger.
func setup() error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	opts := c.LoggerOptions()
	if verbose && !opts.Enabled {
		opts.Enabled = true
		opts.Writer = os.Stderr
	}
	closer, err := logger.Init(opts)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	cfg = c
	closeLogger = closer
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		printer.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		printer.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
