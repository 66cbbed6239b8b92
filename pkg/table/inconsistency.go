/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inconsistency.go
Description: Inconsistency detection and resolution for the Akaylee Learner
observation table. Sigma-inconsistencies (two approximately-equivalent short
prefixes whose successors separate) yield a new classical suffix by symbol
prepending; bottom-inconsistencies (two equivalent rows disagreeing on which
classical suffixes have a known counter value) yield a witness-derived suffix
that is either language-only or classical. A reported inconsistency whose
guaranteed witness cannot be found is an internal defect and aborts loudly.
*/

package table

import (
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/words"
)

// SigmaInconsistency describes two rows of one Approx class whose successors
// under Symbol land in classes with an empty intersection. NewSuffix is the
// synthesized classical suffix (Symbol prepended to the separating suffix of
// the two successors) whose addition is guaranteed to split the class.
type SigmaInconsistency struct {
	RowA, RowB *Row
	Symbol     words.Symbol
	Separator  words.Word
	NewSuffix  words.Word
}

// BottomInconsistency describes two rows of one Approx class that disagree on
// whether the counter value of a classical suffix is known: KnownRow's cell
// has one, UnknownRow's does not.
type BottomInconsistency struct {
	KnownRow, UnknownRow *Row
	SuffixIndex          int
	Suffix               words.Word
}

// newSigmaInconsistency builds the descriptor for a separating pair,
// synthesizing the new suffix. The reported inconsistency guarantees a
// separating suffix exists between the two successors; failing to find one
// means the table's invariants are broken.
func (t *Table) newSigmaInconsistency(u, v *Row, sym words.Symbol) *SigmaInconsistency {
	ua, va := t.successorRow(u, sym), t.successorRow(v, sym)
	sep, ok := t.findSeparator(ua, va)
	if !ok {
		panic(fmt.Sprintf("observation table: bogus Sigma-inconsistency between %q and %q under %q",
			u.word, v.word, string(rune(sym))))
	}
	return &SigmaInconsistency{
		RowA:      u,
		RowB:      v,
		Symbol:    sym,
		Separator: sep,
		NewSuffix: words.Word{sym}.Concat(sep),
	}
}

// findSeparator locates a suffix on which two rows provably differ: distinct
// derived outputs on any suffix, or distinct known counter values on a
// classical suffix.
func (t *Table) findSeparator(a, b *Row) (words.Word, bool) {
	for i := range t.suffixes {
		ca, cb := t.tree.Cell(a.cells[i]), t.tree.Cell(b.cells[i])
		if ca.Accepted != cb.Accepted {
			return t.suffixes[i], true
		}
		if t.suffixClassical[i] && ca.CounterKnown && cb.CounterKnown && ca.CounterValue != cb.CounterValue {
			return t.suffixes[i], true
		}
	}
	return nil, false
}

// shortRowsByClass groups the short-prefix rows sharing one Approx class id.
func (t *Table) shortRowsByClass() map[int][]*Row {
	groups := make(map[int][]*Row)
	for _, id := range t.shortRows {
		r := t.rows[id]
		groups[r.classID] = append(groups[r.classID], r)
	}
	return groups
}

// FindSigmaInconsistency returns a descriptor for the first pair of
// same-class short-prefix rows whose successors under some symbol separate,
// or nil when the table is Sigma-consistent. The scan order is stable.
func (t *Table) FindSigmaInconsistency() *SigmaInconsistency {
	groups := t.shortRowsByClass()
	for _, id := range t.shortRows {
		rows := groups[t.rows[id].classID]
		if len(rows) < 2 || rows[0].id != id {
			// Each group is scanned once, from its lowest member.
			continue
		}
		for _, sym := range t.alphabet.Symbols() {
			for i := 0; i < len(rows); i++ {
				for j := i + 1; j < len(rows); j++ {
					if desc := t.sigmaPair(rows[i], rows[j], sym); desc != nil {
						return desc
					}
				}
			}
		}
	}
	return nil
}

// sigmaPair checks one same-class pair under one symbol.
func (t *Table) sigmaPair(u, v *Row, sym words.Symbol) *SigmaInconsistency {
	ua, va := t.successorRow(u, sym), t.successorRow(v, sym)
	binA, binB := t.isBin(ua), t.isBin(va)
	if (ua.classID == NoClass && !binA) || (va.classID == NoClass && !binB) {
		// Unclosed successors; closedness is restored before consistency
		// is checked.
		return nil
	}
	if binA && binB {
		return nil
	}
	if binA != binB {
		// One successor is still pure bin, the other already carries
		// content: only a genuine output difference separates them.
		return t.newSigmaInconsistency(u, v, sym)
	}
	members := make(map[int]bool)
	for _, m := range t.classes[ua.classID].members {
		members[m] = true
	}
	for _, m := range t.classes[va.classID].members {
		if members[m] {
			return nil
		}
	}
	return t.newSigmaInconsistency(u, v, sym)
}

// FindBottomInconsistency returns a descriptor for the first pair of rows in
// one Approx class whose domains of known counter values differ on some
// classical suffix, or nil when the table is bottom-consistent.
func (t *Table) FindBottomInconsistency() *BottomInconsistency {
	groups := make(map[int][]*Row)
	var classOrder []int
	for _, r := range t.rows {
		if r.classID == NoClass {
			continue
		}
		if _, ok := groups[r.classID]; !ok {
			classOrder = append(classOrder, r.classID)
		}
		groups[r.classID] = append(groups[r.classID], r)
	}
	for _, cid := range classOrder {
		rows := groups[cid]
		for i := 0; i < len(rows); i++ {
			for j := i + 1; j < len(rows); j++ {
				if desc := t.bottomPair(rows[i], rows[j]); desc != nil {
					return desc
				}
			}
		}
	}
	return nil
}

// bottomPair checks one same-class pair for a known/unknown counter mismatch.
func (t *Table) bottomPair(u, v *Row) *BottomInconsistency {
	for i := range t.suffixes {
		if !t.suffixClassical[i] {
			continue
		}
		cu, cv := t.tree.Cell(u.cells[i]), t.tree.Cell(v.cells[i])
		if cu.CounterKnown == cv.CounterKnown {
			continue
		}
		known, unknown := u, v
		if cv.CounterKnown {
			known, unknown = v, u
		}
		return &BottomInconsistency{
			KnownRow:    known,
			UnknownRow:  unknown,
			SuffixIndex: i,
			Suffix:      t.suffixes[i],
		}
	}
	return nil
}

// ResolveBottomInconsistency derives the new suffix for a reported
// bottom-inconsistency. The known side's cell is in-prefix, so the tree
// already holds a witness word accepted within the limit below it; the
// witness-extended suffix is language-only when the unknown side also
// reaches the language through it (the check itself teaches the tree that
// the unknown side's cell is a language prefix), classical otherwise.
// Returns the suffix and whether it must be added as classical.
func (t *Table) ResolveBottomInconsistency(desc *BottomInconsistency, o oracles.QueryOracle) (words.Word, bool) {
	witness, ok := t.tree.FindAcceptedDescendant(desc.KnownRow.cells[desc.SuffixIndex])
	if !ok {
		panic(fmt.Sprintf("observation table: bogus bottom-inconsistency: no accepted witness below %q·%q",
			desc.KnownRow.word, desc.Suffix))
	}
	newSuffix := desc.Suffix.Concat(witness)
	other := desc.UnknownRow.word.Concat(newSuffix)
	if t.tree.AcceptedWithinLimit(other, o) {
		return newSuffix, false
	}
	return newSuffix, true
}
