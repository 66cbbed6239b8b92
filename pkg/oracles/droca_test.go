/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: droca_test.go
Description: Tests for the oracles package. Covers machine construction and
validation, YAML loading, run semantics, excursion reporting, the counting
decorator, and the bounded equivalence oracle.
*/

package oracles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anbnSpec() *oracles.DROCASpec {
	return &oracles.DROCASpec{
		Alphabet:  "ab",
		Initial:   "q0",
		Accepting: []string{"q0", "q1"},
		Transitions: []oracles.TransitionSpec{
			{From: "q0", On: "a", When: "any", To: "q0", Delta: 1},
			{From: "q0", On: "b", When: "positive", To: "q1", Delta: -1},
			{From: "q1", On: "b", When: "positive", To: "q1", Delta: -1},
		},
	}
}

// TestNewDROCAValidation tests spec validation
func TestNewDROCAValidation(t *testing.T) {
	_, err := oracles.NewDROCA(&oracles.DROCASpec{Initial: "q0"})
	assert.Error(t, err) // empty alphabet

	_, err = oracles.NewDROCA(&oracles.DROCASpec{Alphabet: "ab"})
	assert.Error(t, err) // missing initial state

	spec := anbnSpec()
	spec.Transitions = append(spec.Transitions, oracles.TransitionSpec{From: "q0", On: "c", To: "q0"})
	_, err = oracles.NewDROCA(spec)
	assert.Error(t, err) // symbol not in alphabet

	spec = anbnSpec()
	spec.Transitions[0].When = "sometimes"
	_, err = oracles.NewDROCA(spec)
	assert.Error(t, err) // unknown guard

	spec = anbnSpec()
	spec.Transitions = append(spec.Transitions, oracles.TransitionSpec{From: "q0", On: "a", When: "zero", To: "q1"})
	_, err = oracles.NewDROCA(spec)
	assert.Error(t, err) // duplicate guarded transition
}

// TestDROCARunSemantics tests membership, counter values, and excursions
func TestDROCARunSemantics(t *testing.T) {
	m, err := oracles.NewDROCA(anbnSpec())
	require.NoError(t, err)

	for _, accept := range []string{"", "ab", "aabb", "aaabbb"} {
		assert.True(t, m.Member(words.FromString(accept)), accept)
	}
	for _, reject := range []string{"a", "b", "ba", "abb", "aab", "abab"} {
		assert.False(t, m.Member(words.FromString(reject)), reject)
	}

	assert.Equal(t, 2, m.CounterValue(words.FromString("aa")))
	assert.Equal(t, 1, m.CounterValue(words.FromString("aab")))
	assert.Equal(t, 0, m.CounterValue(words.FromString("aabb")))

	assert.Equal(t, 3, m.Excursion(words.FromString("aaabbb")))
	assert.Equal(t, 0, m.Excursion(words.Epsilon()))

	// A missing transition kills the run.
	assert.False(t, m.Run(words.FromString("ba")).Alive)
	// q1 has no a-transition, so the run dies after the first block.
	assert.False(t, m.Run(words.FromString("abab")).Alive)
	// A b under the zero guard would drive the counter negative: dead too.
	assert.False(t, m.Run(words.FromString("b")).Alive)
}

// TestDROCAAccessors tests the summary accessors
func TestDROCAAccessors(t *testing.T) {
	m, err := oracles.NewDROCA(anbnSpec())
	require.NoError(t, err)

	assert.Equal(t, []string{"q0", "q1"}, m.StateNames())
	assert.Equal(t, []string{"q0", "q1"}, m.AcceptingStates())
	assert.Equal(t, 4, m.TransitionCount()) // "any" expands to both guards
	assert.Equal(t, 2, m.Alphabet().Size())
}

// TestLoadDROCA tests YAML loading
func TestLoadDROCA(t *testing.T) {
	definition := `
alphabet: ab
initial: q0
accepting: [q0, q1]
transitions:
  - { from: q0, on: a, when: any, to: q0, delta: 1 }
  - { from: q0, on: b, when: positive, to: q1, delta: -1 }
  - { from: q1, on: b, when: positive, to: q1, delta: -1 }
`
	path := filepath.Join(t.TempDir(), "anbn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definition), 0644))

	m, err := oracles.LoadDROCA(path)
	require.NoError(t, err)
	assert.True(t, m.Member(words.FromString("aabb")))
	assert.False(t, m.Member(words.FromString("aab")))

	_, err = oracles.LoadDROCA(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestCountingOracle tests the accounting decorator
func TestCountingOracle(t *testing.T) {
	m, err := oracles.NewDROCA(anbnSpec())
	require.NoError(t, err)
	c := oracles.NewCountingOracle(m)

	ab := words.FromString("ab")
	assert.True(t, c.Member(ab))
	assert.True(t, c.Member(ab))
	c.MemberBatch([]words.Word{ab, words.FromString("a")})

	assert.Equal(t, int64(4), c.MemberQueries())
	assert.Equal(t, 3, c.MemberAsks(ab))
	assert.Equal(t, 1, c.MemberAsks(words.FromString("a")))

	assert.Equal(t, 1, c.CounterValue(words.FromString("a")))
	c.CounterValueBatch([]words.Word{words.FromString("aa")})
	assert.Equal(t, int64(2), c.CounterQueries())
	assert.Equal(t, 1, c.CounterAsks(words.FromString("a")))
	assert.Equal(t, 0, c.CounterAsks(ab))
}

// acceptNothing is a hypothesis rejecting every word.
type acceptNothing struct{}

func (acceptNothing) Accepts(w words.Word) bool { return false }

// mirror adapts a machine's membership into the hypothesis view.
type mirror struct{ m *oracles.DROCA }

func (h mirror) Accepts(w words.Word) bool { return h.m.Member(w) }

// TestBoundedEquivalenceOracle tests counterexample search
func TestBoundedEquivalenceOracle(t *testing.T) {
	m, err := oracles.NewDROCA(anbnSpec())
	require.NoError(t, err)
	o := &oracles.BoundedEquivalenceOracle{Target: m, MaxLength: 4}

	// The all-rejecting hypothesis disagrees on epsilon first.
	ce := o.FindCounterexample(acceptNothing{})
	require.NotNil(t, ce)
	assert.True(t, ce.Word.IsEpsilon())
	assert.Equal(t, 0, ce.Excursion)

	// The target is equivalent to itself within any bound.
	assert.Nil(t, o.FindCounterexample(mirror{m}))
}
