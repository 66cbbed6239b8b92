/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Akaylee Learner. Provides
comprehensive command-line options, configuration management, and beautiful
user interface for controlling learning sessions with advanced logging
capabilities.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/akaylee-learner/cmd/learner/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	logLevel   string
	jsonLogs   bool

	// Target configuration
	targetPath string
	alphabet   string

	// Session configuration
	initialLimit int
	maxRounds    int
	maxEqLength  int

	// Output configuration
	metricsEnabled bool
	metricsVersion string

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
	logMaxSize  int64
	logCompress bool
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "akaylee-learner",
		Short: "Akaylee Learner - Active learning engine for one-counter languages",
		Long: `Akaylee Learner is a production-grade active learning engine for realtime
one-counter languages. It learns an automaton for an unknown target language by
asking membership and counter-value queries, maintaining an incremental
observation table over a shared prefix tree, and refining hypotheses against an
equivalence oracle until convergence.`,
		Version: "1.0.0",
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")

	// Add logging-specific flags
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Int64Var(&logMaxSize, "log-max-size", 100*1024*1024, "Maximum log file size in bytes")
	rootCmd.PersistentFlags().BoolVar(&logCompress, "log-compress", false, "Compress rotated log files")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_max_size", rootCmd.PersistentFlags().Lookup("log-max-size"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))

	// Add learn command
	learnCmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn an automaton for a target machine",
		Long: `Run a learning session against a target machine defined in a YAML file.
The learner asks membership and counter-value queries, builds hypotheses, and
refines them with counterexamples until the equivalence oracle accepts.`,
		RunE: commands.RunLearn,
	}

	// Add learn command flags
	learnCmd.Flags().StringVar(&targetPath, "target", "", "Path to target machine YAML definition (required)")
	learnCmd.Flags().StringVar(&alphabet, "alphabet", "", "Input alphabet override (defaults to the target's)")
	learnCmd.Flags().IntVar(&initialLimit, "initial-limit", 0, "Initial counter limit")
	learnCmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "Maximum hypothesis rounds (0 = unbounded)")
	learnCmd.Flags().IntVar(&maxEqLength, "max-eq-length", 8, "Maximum word length the equivalence oracle explores")
	learnCmd.Flags().BoolVar(&metricsEnabled, "metrics", false, "Write session statistics to the metrics directory")
	learnCmd.Flags().StringVar(&metricsVersion, "metrics-version", "1.0.0", "Version tag for metrics files")

	// Mark required flags
	learnCmd.MarkFlagRequired("target")

	// Bind flags to viper
	viper.BindPFlag("target_path", learnCmd.Flags().Lookup("target"))
	viper.BindPFlag("alphabet", learnCmd.Flags().Lookup("alphabet"))
	viper.BindPFlag("initial_limit", learnCmd.Flags().Lookup("initial-limit"))
	viper.BindPFlag("max_rounds", learnCmd.Flags().Lookup("max-rounds"))
	viper.BindPFlag("max_eq_length", learnCmd.Flags().Lookup("max-eq-length"))
	viper.BindPFlag("metrics", learnCmd.Flags().Lookup("metrics"))
	viper.BindPFlag("metrics_version", learnCmd.Flags().Lookup("metrics-version"))

	rootCmd.AddCommand(learnCmd)

	// Add inspect command for target validation
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect and validate a target machine definition",
		Long: `Load a target machine YAML definition, validate it, and print a summary of
its alphabet, states, and transitions. Useful for checking a definition before
starting a learning session.`,
		RunE: commands.RunInspect,
	}

	inspectCmd.Flags().String("target", "", "Path to target machine YAML definition (required)")
	inspectCmd.Flags().StringSlice("probe", []string{}, "Words to run against the target (comma-separated)")
	inspectCmd.MarkFlagRequired("target")

	viper.BindPFlag("inspect_target", inspectCmd.Flags().Lookup("target"))
	viper.BindPFlag("inspect_probe", inspectCmd.Flags().Lookup("probe"))

	rootCmd.AddCommand(inspectCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
