/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: counting.go
Description: Query-counting oracle decorator for the Akaylee Learner. Wraps any
QueryOracle and records per-word and total ask counts, so tests and session
statistics can verify that cached answers are never re-asked.
*/

package oracles

import "github.com/kleascm/akaylee-learner/pkg/words"

// CountingOracle decorates a QueryOracle with ask accounting. Not safe for
// concurrent use; the learning core is single-threaded by design.
type CountingOracle struct {
	inner QueryOracle

	memberCount  int64
	counterCount int64
	memberAsks   map[string]int
	counterAsks  map[string]int
}

// NewCountingOracle wraps the given oracle.
func NewCountingOracle(inner QueryOracle) *CountingOracle {
	return &CountingOracle{
		inner:       inner,
		memberAsks:  make(map[string]int),
		counterAsks: make(map[string]int),
	}
}

// Member implements MembershipOracle.
func (c *CountingOracle) Member(w words.Word) bool {
	c.memberCount++
	c.memberAsks[w.Key()]++
	return c.inner.Member(w)
}

// MemberBatch implements MembershipOracle.
func (c *CountingOracle) MemberBatch(ws []words.Word) []bool {
	c.memberCount += int64(len(ws))
	for _, w := range ws {
		c.memberAsks[w.Key()]++
	}
	return c.inner.MemberBatch(ws)
}

// CounterValue implements CounterValueOracle.
func (c *CountingOracle) CounterValue(w words.Word) int {
	c.counterCount++
	c.counterAsks[w.Key()]++
	return c.inner.CounterValue(w)
}

// CounterValueBatch implements CounterValueOracle.
func (c *CountingOracle) CounterValueBatch(ws []words.Word) []int {
	c.counterCount += int64(len(ws))
	for _, w := range ws {
		c.counterAsks[w.Key()]++
	}
	return c.inner.CounterValueBatch(ws)
}

// MemberQueries returns the total number of membership queries asked.
func (c *CountingOracle) MemberQueries() int64 {
	return c.memberCount
}

// CounterQueries returns the total number of counter-value queries asked.
func (c *CountingOracle) CounterQueries() int64 {
	return c.counterCount
}

// MemberAsks returns how many times the membership of w was asked.
func (c *CountingOracle) MemberAsks(w words.Word) int {
	return c.memberAsks[w.Key()]
}

// CounterAsks returns how many times the counter value of w was asked.
func (c *CountingOracle) CounterAsks(w words.Word) int {
	return c.counterAsks[w.Key()]
}
