/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learn.go
Description: Learn command implementation for the Akaylee Learner. Handles the
main learning session with comprehensive configuration, query accounting, and
final statistics reporting.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/akaylee-learner/pkg/learner"
	"github.com/kleascm/akaylee-learner/pkg/logging"
	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/utils"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sessionResult is the JSON shape of one session's final statistics.
type sessionResult struct {
	SessionID      string        `json:"session_id"`
	Target         string        `json:"target"`
	Converged      bool          `json:"converged"`
	Stats          learner.Stats `json:"stats"`
	MemberQueries  int64         `json:"member_queries"`
	CounterQueries int64         `json:"counter_queries"`
}

// RunLearn executes a learning session against a YAML-defined target machine
func RunLearn(cmd *cobra.Command, args []string) error {
	fmt.Println("🧠 Akaylee Learner - Starting Learning Session")
	fmt.Println("==============================================")
	fmt.Println()

	// Load configuration first
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup logging
	if err := SetupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	logConfig := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    logging.LogFormat(viper.GetString("log_format")),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		MaxSize:   viper.GetInt64("log_max_size"),
		Timestamp: true,
		Colors:    !viper.GetBool("json_logs"),
		Compress:  viper.GetBool("log_compress"),
	}
	if err := logConfig.Validate(); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	sessionLogger, err := logging.NewLogger(logConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sessionLogger.Close()

	// Load the target machine
	targetPath := viper.GetString("target_path")
	target, err := oracles.LoadDROCA(targetPath)
	if err != nil {
		return fmt.Errorf("failed to load target: %w", err)
	}
	fmt.Printf("🎯 Target: %s (%d states, %d transitions)\n",
		targetPath, len(target.StateNames()), target.TransitionCount())

	// Resolve the alphabet
	alphabet := target.Alphabet()
	if override := viper.GetString("alphabet"); override != "" {
		alphabet = words.AlphabetFromString(override)
	}
	fmt.Printf("🔤 Alphabet: %d symbols\n", alphabet.Size())

	// Wrap the target with query accounting
	counting := oracles.NewCountingOracle(target)
	equiv := &oracles.BoundedEquivalenceOracle{
		Target:    target,
		MaxLength: viper.GetInt("max_eq_length"),
	}

	// Create the learner
	l, err := learner.New(learner.Config{
		Alphabet:            alphabet,
		InitialCounterLimit: viper.GetInt("initial_limit"),
		MaxRounds:           viper.GetInt("max_rounds"),
	}, counting, equiv, sessionLogger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to create learner: %w", err)
	}
	fmt.Printf("🆔 Session: %s\n\n", l.SessionID())

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n🛑 Received shutdown signal, stopping learner...")
		cancel()
	}()

	// Run the session
	hypothesis, learnErr := l.Learn(ctx)

	// Print final statistics
	stats := l.Stats()
	fmt.Println()
	fmt.Println("📊 Session Statistics")
	fmt.Println("---------------------")
	fmt.Printf("  Rounds:           %d\n", stats.Rounds)
	fmt.Printf("  Promotions:       %d\n", stats.Promotions)
	fmt.Printf("  Suffixes added:   %d\n", stats.SuffixesAdded)
	fmt.Printf("  Limit raises:     %d\n", stats.LimitRaises)
	fmt.Printf("  Counterexamples:  %d\n", stats.Counterexamples)
	fmt.Printf("  Counter limit:    %d\n", stats.CounterLimit)
	fmt.Printf("  Member queries:   %d\n", counting.MemberQueries())
	fmt.Printf("  Counter queries:  %d\n", counting.CounterQueries())

	// Write metrics if enabled
	if viper.GetBool("metrics") {
		result := sessionResult{
			SessionID:      l.SessionID().String(),
			Target:         targetPath,
			Converged:      learnErr == nil,
			Stats:          stats,
			MemberQueries:  counting.MemberQueries(),
			CounterQueries: counting.CounterQueries(),
		}
		path, werr := utils.WriteMetricsResult("session", viper.GetString("metrics_version"), result)
		if werr != nil {
			return fmt.Errorf("failed to write metrics: %w", werr)
		}
		fmt.Printf("\n💾 Metrics written to %s\n", path)
	}

	if learnErr != nil {
		return fmt.Errorf("learning session failed: %w", learnErr)
	}

	fmt.Printf("\n✨ Learning session converged: %d states\n", hypothesis.StateCount())
	return nil
}
