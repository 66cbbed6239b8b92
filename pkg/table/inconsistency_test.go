/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inconsistency_test.go
Description: Tests for inconsistency detection and resolution. Covers
Sigma-consistency of closed tables and the bottom-inconsistency cycle: a
known/unknown counter mismatch inside one Approx class, witness search in the
prefix tree, and classification of the synthesized suffix.
*/

package table_test

import (
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/table"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abOnlyOracle answers for the language { ab }. The counter of a prefix is its
// depth into the word ab.
func abOnlyOracle() *oracles.CountingOracle {
	return oracles.NewCountingOracle(&oracles.LanguageOracle{
		Accepts: func(w words.Word) bool { return w.String() == "ab" },
		Counter: func(w words.Word) int {
			if w.String() == "a" {
				return 1
			}
			return 0
		},
	})
}

// TestSigmaConsistentAfterInitialize tests that a fresh one-class table
// reports no Sigma-inconsistency
func TestSigmaConsistentAfterInitialize(t *testing.T) {
	o := epsilonOnlyOracle()
	tbl := newTable(t, "ab", 0)
	_, err := tbl.Initialize([]words.Word{words.Epsilon()}, []words.Word{words.Epsilon()}, o)
	require.NoError(t, err)

	assert.Nil(t, tbl.FindSigmaInconsistency())
	assert.Nil(t, tbl.FindBottomInconsistency())
}

// TestBottomInconsistencyCycle tests detection and resolution over L = { ab }:
// after promoting a, the rows a and b share an Approx class, but only a has a
// known counter value on the epsilon suffix
func TestBottomInconsistencyCycle(t *testing.T) {
	o := abOnlyOracle()
	tbl := newTable(t, "ab", 1)
	unclosed, err := tbl.Initialize(
		[]words.Word{words.Epsilon()},
		[]words.Word{words.Epsilon(), words.FromString("ab")},
		o,
	)
	require.NoError(t, err)

	// Row a carries a known counter value but matches no short row: unclosed.
	require.Len(t, unclosed, 1)
	require.Equal(t, "a", unclosed[0].Representative().Word().String())
	for len(unclosed) > 0 {
		reps := make([]*table.Row, len(unclosed))
		for i, g := range unclosed {
			reps[i] = g.Representative()
		}
		unclosed, err = tbl.ToShortPrefixes(reps, o)
		require.NoError(t, err)
	}
	require.True(t, tbl.IsClosed())

	require.Nil(t, tbl.FindSigmaInconsistency())

	desc := tbl.FindBottomInconsistency()
	require.NotNil(t, desc)
	assert.Equal(t, "a", desc.KnownRow.Word().String())
	assert.Equal(t, "b", desc.UnknownRow.Word().String())
	assert.True(t, desc.Suffix.IsEpsilon())

	// The witness below a is ab; the unknown side (b·b) never reaches the
	// language, so the suffix must be classical.
	suffix, classical := tbl.ResolveBottomInconsistency(desc, o)
	assert.Equal(t, "b", suffix.String())
	assert.True(t, classical)

	_, err = tbl.AddSuffixes([]words.Word{suffix}, o)
	require.NoError(t, err)

	// The new column separates a (ab accepted) from b (bb rejected).
	assert.NotEqual(t,
		tbl.RowFor(words.FromString("a")).ClassID(),
		tbl.RowFor(words.FromString("b")).ClassID(),
	)
}

// TestLanguageOnlySuffixUpgrade tests that re-adding a language-only suffix as
// classical upgrades the column in place
func TestLanguageOnlySuffixUpgrade(t *testing.T) {
	o := abOnlyOracle()
	tbl := newTable(t, "ab", 1)
	_, err := tbl.Initialize([]words.Word{words.Epsilon()}, []words.Word{words.Epsilon()}, o)
	require.NoError(t, err)

	_, err = tbl.AddSuffixesOnlyForLanguage([]words.Word{words.FromString("b")}, o)
	require.NoError(t, err)
	n := tbl.NumberOfSuffixes()
	require.False(t, tbl.SuffixIsClassical(n-1))

	_, err = tbl.AddSuffixes([]words.Word{words.FromString("b")}, o)
	require.NoError(t, err)
	assert.Equal(t, n, tbl.NumberOfSuffixes())
	assert.True(t, tbl.SuffixIsClassical(n-1))
}

// aaBaaOracle answers for the language { aa, baa }. The live prefixes carry
// different counter values: C(a) = 1 while C(ba) = 2.
func aaBaaOracle() *oracles.CountingOracle {
	return oracles.NewCountingOracle(&oracles.LanguageOracle{
		Accepts: func(w words.Word) bool { return w.String() == "aa" || w.String() == "baa" },
		Counter: func(w words.Word) int {
			switch w.String() {
			case "a":
				return 1
			case "ba":
				return 2
			}
			return 0
		},
	})
}

// TestSuffixUpgradeSplitsClasses tests that upgrading a language-only suffix
// to classical reclassifies rows whose counter values in that column were
// already known through shared tree nodes
func TestSuffixUpgradeSplitsClasses(t *testing.T) {
	o := aaBaaOracle()
	tbl := newTable(t, "ab", 2)
	_, err := tbl.Initialize([]words.Word{words.Epsilon()}, []words.Word{words.Epsilon()}, o)
	require.NoError(t, err)
	_, err = tbl.AddShortPrefixes([]words.Word{words.FromString("aa"), words.FromString("baa")}, o)
	require.NoError(t, err)

	// eps and b reject everything observed and agree on every known counter:
	// one class.
	eps := tbl.RowFor(words.Epsilon())
	b := tbl.RowFor(words.FromString("b"))
	require.Equal(t, eps.ClassID(), b.ClassID())

	// The language-only column a lands on nodes whose counters are already
	// known (1 under eps, 2 under b) but does not take part in compatibility.
	_, err = tbl.AddSuffixesOnlyForLanguage([]words.Word{words.FromString("a")}, o)
	require.NoError(t, err)
	require.Equal(t, eps.ClassID(), b.ClassID())

	// Upgrading the column makes those counters count: the class must split
	// even though no cell content changed.
	_, err = tbl.AddSuffixes([]words.Word{words.FromString("a")}, o)
	require.NoError(t, err)
	assert.NotEqual(t, eps.ClassID(), b.ClassID())
}
