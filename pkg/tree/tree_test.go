/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tree_test.go
Description: Tests for the prefix tree. Covers path creation, derived cell
suppression, outside-limit propagation, counter-limit raising, and the query
accounting guarantees (answers asked at most once, no re-asks after a raise).
*/

package tree_test

import (
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/tree"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// anbnOracle answers for the language { a^n b^n | n >= 0 }. The counter value
// of a prefix a^i b^j is i-j.
func anbnOracle() *oracles.LanguageOracle {
	return &oracles.LanguageOracle{
		Accepts: func(w words.Word) bool {
			n := w.Len()
			if n%2 != 0 {
				return false
			}
			half := n / 2
			for i, sym := range w {
				if i < half && sym != 'a' {
					return false
				}
				if i >= half && sym != 'b' {
					return false
				}
			}
			return true
		},
		Counter: func(w words.Word) int {
			c := 0
			for _, sym := range w {
				if sym == 'a' {
					c++
				} else {
					c--
				}
			}
			return c
		},
	}
}

// TestGetOrCreatePathIdempotent tests that path creation never duplicates nodes
func TestGetOrCreatePathIdempotent(t *testing.T) {
	tr := tree.New(1)
	a := tr.GetOrCreatePath(words.FromString("ab"))
	b := tr.GetOrCreatePath(words.FromString("ab"))
	assert.Equal(t, a, b)
	assert.Equal(t, 3, tr.Size()) // epsilon, a, ab
	assert.Equal(t, int64(0), tr.MemberQueries())
	assert.Equal(t, int64(0), tr.CounterQueries())
}

// TestNegativeLimitPanics tests the constructor guard
func TestNegativeLimitPanics(t *testing.T) {
	assert.Panics(t, func() { tree.New(-1) })
}

// TestEpsilonAcceptedCell tests the derived cell of an accepted epsilon
func TestEpsilonAcceptedCell(t *testing.T) {
	o := oracles.NewCountingOracle(&oracles.LanguageOracle{
		Accepts: func(w words.Word) bool { return w.IsEpsilon() },
		Counter: func(w words.Word) int { return 0 },
	})
	tr := tree.New(0)
	id := tr.RegisterCell(tr.Root(), words.Epsilon(), 0, 0, true, o)
	c := tr.Cell(id)
	assert.True(t, c.Accepted)
	assert.True(t, c.CounterKnown)
	assert.Equal(t, 0, c.CounterValue)
	// Epsilon's counter value is 0 by definition; only membership was asked.
	assert.Equal(t, int64(1), tr.MemberQueries())
	assert.Equal(t, int64(0), tr.CounterQueries())
}

// TestRegisterCellAsksMembershipOnce tests the ask-at-most-once guarantee
func TestRegisterCellAsksMembershipOnce(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(1)
	ab := words.FromString("ab")
	n1 := tr.RegisterCell(tr.Root(), ab, 0, 0, true, o)
	n2 := tr.RegisterCell(tr.Root(), ab, 1, 0, true, o)
	assert.Equal(t, n1, n2)
	assert.Equal(t, 1, o.MemberAsks(ab))
}

// TestOutsideLimitSuppressesCell tests Scenario: a^n b^n at limit 0. The word
// ab is accepted but climbs to counter 1 on the way, so it is outside limit 0.
func TestOutsideLimitSuppressesCell(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(0)
	id := tr.RegisterCell(tr.Root(), words.FromString("ab"), 0, 0, true, o)

	assert.True(t, tr.OutsideLimit(id))
	assert.True(t, tr.Cell(id).Trivial())
	// One membership query for ab, one counter probe at the ancestor a.
	assert.Equal(t, 1, o.MemberAsks(words.FromString("ab")))
	assert.Equal(t, 1, o.CounterAsks(words.FromString("a")))
	assert.Equal(t, 0, o.CounterAsks(words.FromString("ab")))
}

// TestOutsideLimitInheritedByDescendants tests downward monotonicity
func TestOutsideLimitInheritedByDescendants(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(0)
	tr.RegisterCell(tr.Root(), words.FromString("ab"), 0, 0, true, o)

	// New nodes below an outside-limit node are born outside it, and
	// registering cells on them asks no queries.
	before := o.MemberQueries()
	deep := tr.RegisterCell(tr.Root(), words.FromString("abb"), 0, 1, true, o)
	assert.True(t, tr.OutsideLimit(deep))
	assert.Equal(t, before, o.MemberQueries())
}

// TestRaiseCounterLimitRecovers tests that a raise revives suppressed cells
// without re-asking cached answers
func TestRaiseCounterLimitRecovers(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(0)
	ab := words.FromString("ab")
	id := tr.RegisterCell(tr.Root(), ab, 0, 0, true, o)
	require.True(t, tr.OutsideLimit(id))

	tr.RaiseCounterLimit(1, o)

	c := tr.Cell(id)
	assert.True(t, c.Accepted)
	assert.True(t, c.CounterKnown)
	assert.Equal(t, 0, c.CounterValue)
	// The membership answer for ab and the counter value of a were cached:
	// the raise decides from them alone.
	assert.Equal(t, 1, o.MemberAsks(ab))
	assert.Equal(t, 1, o.CounterAsks(words.FromString("a")))
}

// TestRaiseCounterLimitMustIncrease tests the raise guard
func TestRaiseCounterLimitMustIncrease(t *testing.T) {
	tr := tree.New(2)
	o := oracles.NewCountingOracle(anbnOracle())
	assert.Panics(t, func() { tr.RaiseCounterLimit(2, o) })
	assert.Panics(t, func() { tr.RaiseCounterLimit(1, o) })
}

// TestInPrefixChainContiguity tests that marking a deep node marks the chain
func TestInPrefixChainContiguity(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(2)
	id := tr.RegisterCell(tr.Root(), words.FromString("aabb"), 0, 0, true, o)

	c := tr.Cell(id)
	require.True(t, c.Accepted)
	cur := id
	for cur != tr.Root() {
		assert.True(t, tr.InPrefix(cur))
		cur = tr.GetOrCreatePath(tr.Word(cur).Prefix(tr.Word(cur).Len() - 1))
	}
	assert.True(t, tr.InPrefix(tr.Root()))
}

// TestAcceptedWithinLimit tests the bottom-inconsistency helper
func TestAcceptedWithinLimit(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(1)
	assert.True(t, tr.AcceptedWithinLimit(words.FromString("ab"), o))
	assert.False(t, tr.AcceptedWithinLimit(words.FromString("aabb"), o)) // climbs to 2
	assert.False(t, tr.AcceptedWithinLimit(words.FromString("ba"), o))
}

// TestFindAcceptedDescendant tests witness search over explored nodes
func TestFindAcceptedDescendant(t *testing.T) {
	o := oracles.NewCountingOracle(anbnOracle())
	tr := tree.New(1)
	tr.RegisterCell(tr.Root(), words.FromString("ab"), 0, 0, true, o)

	a := tr.GetOrCreatePath(words.FromString("a"))
	suffix, ok := tr.FindAcceptedDescendant(a)
	require.True(t, ok)
	assert.Equal(t, "b", suffix.String())

	root, ok := tr.FindAcceptedDescendant(tr.Root())
	require.True(t, ok)
	assert.Equal(t, "ab", root.String())
}
