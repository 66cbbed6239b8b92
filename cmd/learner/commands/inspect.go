/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inspect.go
Description: Inspect command implementation for the Akaylee Learner. Loads and
validates a target machine definition and prints a summary, optionally running
probe words against it. Useful for checking a definition before learning.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunInspect validates a target machine definition and prints a summary
func RunInspect(cmd *cobra.Command, args []string) error {
	fmt.Println("🔍 Akaylee Learner - Target Inspection")
	fmt.Println("======================================")
	fmt.Println()

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	targetPath := viper.GetString("inspect_target")
	target, err := oracles.LoadDROCA(targetPath)
	if err != nil {
		return fmt.Errorf("failed to load target: %w", err)
	}

	symbols := make([]string, 0, target.Alphabet().Size())
	for _, sym := range target.Alphabet().Symbols() {
		symbols = append(symbols, string(rune(sym)))
	}

	fmt.Printf("✅ Definition valid: %s\n\n", targetPath)
	fmt.Printf("  Alphabet:    {%s}\n", strings.Join(symbols, ", "))
	fmt.Printf("  States:      %d (%s)\n", len(target.StateNames()), strings.Join(target.StateNames(), ", "))
	fmt.Printf("  Accepting:   %s\n", strings.Join(target.AcceptingStates(), ", "))
	fmt.Printf("  Transitions: %d\n", target.TransitionCount())

	probes := viper.GetStringSlice("inspect_probe")
	if len(probes) > 0 {
		fmt.Println()
		fmt.Println("🧪 Probe Results")
		fmt.Println("----------------")
		for _, p := range probes {
			w := words.FromString(p)
			r := target.Run(w)
			verdict := "reject"
			if target.Member(w) {
				verdict = "accept"
			}
			fmt.Printf("  %-12s %s (alive=%v counter=%d excursion=%d)\n",
				w.String(), verdict, r.Alive, r.Counter, r.Excursion)
		}
	}

	return nil
}
