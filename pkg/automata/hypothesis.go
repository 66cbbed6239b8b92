/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: hypothesis.go
Description: Hypothesis automaton export for the Akaylee Learner. Turns the
observation table's canonical rows and canonical successor map into a runnable
model: one state per Approx class among the short prefixes, plus an implicit
rejecting sink for the bin class.
*/

package automata

import (
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/table"
	"github.com/kleascm/akaylee-learner/pkg/words"
)

// State identifies a hypothesis state.
type State int

// Sink is the implicit rejecting sink every bin transition lands in.
const Sink State = -1

// Hypothesis is the exported model. Immutable once built; rebuilding after a
// table mutation yields the model for the new table.
type Hypothesis struct {
	alphabet    *words.Alphabet
	initial     State
	accepting   []bool
	transitions []map[words.Symbol]State
	access      []words.Word // canonical access word per state
}

// FromTable builds the hypothesis for a closed and consistent table. Returns
// an error when the table still carries a Sigma-inconsistency, since the
// canonical successor map is ill-defined then.
func FromTable(t *table.Table) (*Hypothesis, error) {
	epsilonIdx := -1
	for i, s := range t.Suffixes() {
		if s.IsEpsilon() {
			epsilonIdx = i
			break
		}
	}
	if epsilonIdx < 0 {
		return nil, fmt.Errorf("hypothesis: table has no epsilon suffix; acceptance is undefined")
	}
	canon := t.CanonicalRows()
	stateOf := make(map[int]State, len(canon))
	for i, r := range canon {
		stateOf[r.ClassID()] = State(i)
	}
	h := &Hypothesis{
		alphabet:    t.Alphabet(),
		accepting:   make([]bool, len(canon)),
		transitions: make([]map[words.Symbol]State, len(canon)),
		access:      make([]words.Word, len(canon)),
	}
	initialRow := t.RowFor(words.Epsilon())
	if initialRow == nil {
		return nil, fmt.Errorf("hypothesis: table has no epsilon row")
	}
	h.initial = stateOf[initialRow.ClassID()]
	for i, r := range canon {
		h.access[i] = r.Word()
		h.accepting[i] = t.FullRowContents(r)[epsilonIdx].Accepted
		h.transitions[i] = make(map[words.Symbol]State, t.Alphabet().Size())
		for _, sym := range t.Alphabet().Symbols() {
			succ, desc := t.CanonicalSuccessor(r.ClassID(), sym)
			if desc != nil {
				return nil, fmt.Errorf("hypothesis: table is Sigma-inconsistent between %q and %q under %q",
					desc.RowA.Word(), desc.RowB.Word(), string(rune(desc.Symbol)))
			}
			if succ == table.NoClass {
				h.transitions[i][sym] = Sink
				continue
			}
			h.transitions[i][sym] = stateOf[succ]
		}
	}
	return h, nil
}

// Alphabet returns the alphabet the hypothesis runs over.
func (h *Hypothesis) Alphabet() *words.Alphabet {
	return h.alphabet
}

// StateCount returns the number of explicit states (the sink excluded).
func (h *Hypothesis) StateCount() int {
	return len(h.accepting)
}

// Initial returns the initial state.
func (h *Hypothesis) Initial() State {
	return h.initial
}

// AccessWord returns the canonical access word of a state.
func (h *Hypothesis) AccessWord(s State) words.Word {
	return h.access[s]
}

// Accepts runs the hypothesis on a word.
func (h *Hypothesis) Accepts(w words.Word) bool {
	cur := h.initial
	for _, sym := range w {
		next, ok := h.transitions[cur][sym]
		if !ok || next == Sink {
			return false
		}
		cur = next
	}
	return h.accepting[cur]
}
