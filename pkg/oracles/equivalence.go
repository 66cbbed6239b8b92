/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: equivalence.go
Description: Bounded equivalence oracle for the Akaylee Learner. Exhaustively
compares a hypothesis against a reference DROCA target over all words up to a
length bound, returning the first disagreement as a counterexample together
with its counter excursion.
*/

package oracles

import "github.com/kleascm/akaylee-learner/pkg/words"

// BoundedEquivalenceOracle enumerates words breadth-first up to MaxLength and
// reports the first word on which hypothesis and target disagree. Suitable
// for tests and small experiment targets; real deployments plug in their own
// EquivalenceOracle.
type BoundedEquivalenceOracle struct {
	Target    *DROCA
	MaxLength int
}

// FindCounterexample implements EquivalenceOracle.
func (o *BoundedEquivalenceOracle) FindCounterexample(h Hypothesis) *Counterexample {
	symbols := o.Target.Alphabet().Symbols()
	frontier := []words.Word{words.Epsilon()}
	for depth := 0; ; depth++ {
		for _, w := range frontier {
			if o.Target.Member(w) != h.Accepts(w) {
				return &Counterexample{Word: w, Excursion: o.Target.Excursion(w)}
			}
		}
		if depth == o.MaxLength {
			return nil
		}
		next := make([]words.Word, 0, len(frontier)*len(symbols))
		for _, w := range frontier {
			for _, sym := range symbols {
				next = append(next, w.Append(sym))
			}
		}
		frontier = next
	}
}
