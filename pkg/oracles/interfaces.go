/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Oracle interfaces for the Akaylee Learner. Defines the membership
and counter-value query boundary the observation structure consumes, with batch
forms so an external oracle can answer whole query passes together.
*/

package oracles

import "github.com/kleascm/akaylee-learner/pkg/words"

// MembershipOracle answers whether a word belongs to the target language.
// Answers must be pure and deterministic: the prefix tree caches every answer
// forever and never re-asks.
type MembershipOracle interface {
	Member(w words.Word) bool
	MemberBatch(ws []words.Word) []bool
}

// CounterValueOracle answers the counter value associated with a word. The
// answer is only meaningful for words already established to be prefixes of
// the target language; asking anything else is a caller bug.
type CounterValueOracle interface {
	CounterValue(w words.Word) int
	CounterValueBatch(ws []words.Word) []int
}

// QueryOracle combines both query kinds. This is the full interface the
// prefix tree and observation table operate against.
type QueryOracle interface {
	MembershipOracle
	CounterValueOracle
}

// Counterexample is a word on which a hypothesis and the target disagree.
// Excursion is the highest counter value reached while the target reads the
// word; the learner raises the counter limit when it exceeds the current one.
type Counterexample struct {
	Word      words.Word
	Excursion int
}

// Hypothesis is the minimal view of a learned model an equivalence oracle
// needs: run a word, get an accept/reject verdict.
type Hypothesis interface {
	Accepts(w words.Word) bool
}

// EquivalenceOracle searches for a counterexample between a hypothesis and
// the target language. Returns nil when none is found.
type EquivalenceOracle interface {
	FindCounterexample(h Hypothesis) *Counterexample
}

// LanguageOracle adapts plain functions to a QueryOracle. Batch forms answer
// element-wise. Handy for tests and small hand-written targets.
type LanguageOracle struct {
	Accepts func(w words.Word) bool
	Counter func(w words.Word) int
}

// Member implements MembershipOracle.
func (o *LanguageOracle) Member(w words.Word) bool {
	return o.Accepts(w)
}

// MemberBatch implements MembershipOracle.
func (o *LanguageOracle) MemberBatch(ws []words.Word) []bool {
	out := make([]bool, len(ws))
	for i, w := range ws {
		out[i] = o.Accepts(w)
	}
	return out
}

// CounterValue implements CounterValueOracle.
func (o *LanguageOracle) CounterValue(w words.Word) int {
	return o.Counter(w)
}

// CounterValueBatch implements CounterValueOracle.
func (o *LanguageOracle) CounterValueBatch(ws []words.Word) []int {
	out := make([]int, len(ws))
	for i, w := range ws {
		out[i] = o.Counter(w)
	}
	return out
}
