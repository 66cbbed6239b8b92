/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: row.go
Description: Row handle for the Akaylee Learner observation table. A row binds
a prefix word to its slice of prefix-tree nodes (one per registered suffix)
and to the bookkeeping the table needs: short/long role, current Approx class
id, and current same-outputs bucket id.
*/

package table

import (
	"github.com/kleascm/akaylee-learner/pkg/tree"
	"github.com/kleascm/akaylee-learner/pkg/words"
)

// NoClass is the class id of a row with an empty Approx set. A long-prefix
// row with NoClass and at least one non-trivial cell is unclosed; one whose
// cells are all trivial acts as the implicit bin.
const NoClass = -1

// Row is a thin handle owned by the table. All cross-references are integer
// ids into the table's and tree's arenas; rows never own tree nodes.
type Row struct {
	id   int
	word words.Word
	node tree.NodeID

	// cells[i] is the tree node for word·suffixes[i].
	cells []tree.NodeID

	short    bool
	classID  int // current Approx class, NoClass if empty
	bucketID int // current same-outputs bucket, -1 before first classification
}

// ID returns the row's stable identifier.
func (r *Row) ID() int {
	return r.id
}

// Word returns the prefix word the row stands for.
func (r *Row) Word() words.Word {
	return r.word
}

// IsShortPrefix reports whether the row is a short-prefix row (a candidate
// automaton state) rather than a long-prefix successor.
func (r *Row) IsShortPrefix() bool {
	return r.short
}

// ClassID returns the row's current Approx class id, NoClass if unset.
func (r *Row) ClassID() int {
	return r.classID
}

// RowGroup is a set of rows sharing identical full content. The refinement
// loop closes one representative per group.
type RowGroup []*Row

// Representative returns the group's stable representative (lowest row id).
func (g RowGroup) Representative() *Row {
	return g[0]
}
