/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: node.go
Description: Node storage for the Akaylee Learner prefix tree. One node per
distinct word ever referenced, held in a growable arena and addressed by
integer NodeID so that the table, rows, and tree can cross-reference each
other without ownership cycles.
*/

package tree

import "github.com/kleascm/akaylee-learner/pkg/words"

// NodeID addresses a node inside the tree's arena.
type NodeID int32

// NoNode is the null NodeID (the root's parent).
const NoNode NodeID = -1

// Acceptance is the raw membership-oracle answer stored on a node.
type Acceptance int8

const (
	// AcceptanceUnknown means the membership oracle was never asked.
	AcceptanceUnknown Acceptance = iota
	// Accepted means the word is in the target language.
	Accepted
	// Rejected means the word is not in the target language.
	Rejected
)

// UnknownCounterValue marks a counter value the oracle was never asked for.
const UnknownCounterValue = -1

// cellRef points back at a table cell using this node: the row id and the
// index of the suffix within the row. Needed to propagate re-derivation when
// the node's flags change.
type cellRef struct {
	row    int
	suffix int
}

// node is one word's worth of lazily-computed knowledge.
//
// Path invariants: along any root-to-leaf path the inPrefix trues form a
// contiguous prefix and the outsideLimit trues form a contiguous suffix.
type node struct {
	parent   NodeID
	depth    int
	word     words.Word
	children map[words.Symbol]NodeID

	output       Acceptance // membership answer, asked at most once
	counterValue int        // counter answer, asked at most once; UnknownCounterValue otherwise

	inPrefix     bool // known to be a prefix of an accepted word within the counter limit
	outsideLimit bool // some ancestor (or the node itself) provably exceeds the counter limit
	markEpoch    int  // counter-limit epoch of the last outsideLimit marking

	classicalUse bool // some registered cell needs this node's counter value
	refs         []cellRef
}

// Cell is the derived view of a node as exposed to the observation table.
// The zero value is the empty cell: not accepted, counter unknown.
type Cell struct {
	Accepted     bool
	CounterKnown bool
	CounterValue int
}

// Trivial reports whether the cell carries no information: derived rejected
// with no known counter value.
func (c Cell) Trivial() bool {
	return !c.Accepted && !c.CounterKnown
}

// CellObserver is notified whenever the derived content of a registered cell
// changes, so the table can mark the owning row for Approx recomputation.
type CellObserver interface {
	CellChanged(row, suffixIndex int)
}
