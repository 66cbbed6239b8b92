/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tree.go
Description: Prefix tree for the Akaylee Learner. Stores partial, lazily
computed knowledge about every explored word: cached oracle answers, the
in-prefix and outside-limit flags, and their propagation to ancestors and
descendants. Minimizes oracle queries by inferring from known ancestor counter
values whether deeper words can possibly stay within the counter limit, and
only probes at the one ancestor depth where the answer is undetermined.
*/

package tree

import (
	"fmt"
	"sort"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/words"
)

// Tree owns all nodes. Rows and the table hold NodeIDs, never pointers.
// Single-threaded by design; see the learner's concurrency contract.
type Tree struct {
	limit int
	epoch int // bumped on every counter-limit raise; guards fresh outside marks
	nodes []node

	observer CellObserver

	// Query accounting
	memberQueries  int64
	counterQueries int64
}

// New creates a tree holding only the root (epsilon) node. The counter value
// of epsilon is 0 by definition and is stored without asking the oracle.
func New(limit int) *Tree {
	if limit < 0 {
		panic(fmt.Sprintf("prefix tree: negative counter limit %d", limit))
	}
	t := &Tree{limit: limit, epoch: 1}
	t.nodes = append(t.nodes, node{
		parent:       NoNode,
		word:         words.Epsilon(),
		counterValue: 0,
	})
	return t
}

// SetObserver installs the cell-change observer (the observation table).
func (t *Tree) SetObserver(obs CellObserver) {
	t.observer = obs
}

// Root returns the id of the epsilon node.
func (t *Tree) Root() NodeID {
	return 0
}

// Limit returns the current counter limit.
func (t *Tree) Limit() int {
	return t.limit
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// MemberQueries returns how many membership queries the tree has issued.
func (t *Tree) MemberQueries() int64 {
	return t.memberQueries
}

// CounterQueries returns how many counter-value queries the tree has issued.
func (t *Tree) CounterQueries() int64 {
	return t.counterQueries
}

// Word returns the word a node stands for.
func (t *Tree) Word(id NodeID) words.Word {
	return t.nodes[id].word
}

// RawOutput returns the cached membership answer, AcceptanceUnknown if never asked.
func (t *Tree) RawOutput(id NodeID) Acceptance {
	return t.nodes[id].output
}

// RawCounterValue returns the cached counter answer, UnknownCounterValue if never asked.
func (t *Tree) RawCounterValue(id NodeID) int {
	return t.nodes[id].counterValue
}

// InPrefix reports the node's in-prefix flag.
func (t *Tree) InPrefix(id NodeID) bool {
	return t.nodes[id].inPrefix
}

// OutsideLimit reports the node's outside-limit flag.
func (t *Tree) OutsideLimit(id NodeID) bool {
	return t.nodes[id].outsideLimit
}

// Cell returns the derived view of a node: the value the table sees. Both
// fields are suppressed while the node is outside the limit or not known to
// be a language prefix; accepted words always report counter value 0.
func (t *Tree) Cell(id NodeID) Cell {
	n := &t.nodes[id]
	if n.outsideLimit || !n.inPrefix {
		return Cell{}
	}
	if n.output == Accepted {
		return Cell{Accepted: true, CounterKnown: true, CounterValue: 0}
	}
	if n.counterValue != UnknownCounterValue && n.counterValue <= t.limit {
		return Cell{CounterKnown: true, CounterValue: n.counterValue}
	}
	return Cell{}
}

// GetOrCreatePath walks or extends the tree from the root along the word.
// Never asks a query; idempotent.
func (t *Tree) GetOrCreatePath(w words.Word) NodeID {
	return t.extend(t.Root(), w)
}

// extend walks or extends the tree from a node along a suffix. Fresh nodes
// inherit the outside-limit marking of their parent (monotone downward).
func (t *Tree) extend(from NodeID, suffix words.Word) NodeID {
	cur := from
	for _, sym := range suffix {
		n := &t.nodes[cur]
		if child, ok := n.children[sym]; ok {
			cur = child
			continue
		}
		child := NodeID(len(t.nodes))
		if n.children == nil {
			n.children = make(map[words.Symbol]NodeID)
		}
		n.children[sym] = child
		t.nodes = append(t.nodes, node{
			parent:       cur,
			depth:        n.depth + 1,
			word:         n.word.Append(sym),
			counterValue: UnknownCounterValue,
			outsideLimit: n.outsideLimit,
			markEpoch:    n.markEpoch,
		})
		cur = child
	}
	return cur
}

// PrimeOutputs submits one batch membership pass for every listed word whose
// answer is still unknown, caching the raw answers. Flag derivation happens
// when the corresponding cells are registered.
func (t *Tree) PrimeOutputs(ws []words.Word, o oracles.MembershipOracle) {
	var ids []NodeID
	var ask []words.Word
	seen := make(map[NodeID]bool)
	for _, w := range ws {
		id := t.GetOrCreatePath(w)
		n := &t.nodes[id]
		if seen[id] || n.output != AcceptanceUnknown || n.outsideLimit {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		ask = append(ask, n.word)
	}
	if len(ask) == 0 {
		return
	}
	answers := o.MemberBatch(ask)
	t.memberQueries += int64(len(ask))
	for i, id := range ids {
		if answers[i] {
			t.nodes[id].output = Accepted
		} else {
			t.nodes[id].output = Rejected
		}
	}
}

// RegisterCell resolves the node for prefix·suffix on behalf of a table cell:
// records the (row, suffixIndex) back-reference, asks at most one membership
// query and the counter queries the in-prefix decision requires, and settles
// the node's flags. Returns the node id the cell should hold.
func (t *Tree) RegisterCell(prefix NodeID, suffix words.Word, row, suffixIndex int, classical bool, o oracles.QueryOracle) NodeID {
	id := t.extend(prefix, suffix)
	n := &t.nodes[id]
	n.refs = append(n.refs, cellRef{row: row, suffix: suffixIndex})
	if classical {
		n.classicalUse = true
	}
	if n.outsideLimit {
		// Derived content is pinned until the counter limit rises; asking
		// anything now would be wasted queries.
		return id
	}
	t.ensureOutput(id, o)
	t.settle(id, o)
	return id
}

// PromoteCellClassical upgrades a node previously registered only by
// language-only suffixes: its counter value is now semantically needed, so a
// skipped counter query may have to be backfilled.
func (t *Tree) PromoteCellClassical(id NodeID, o oracles.QueryOracle) {
	n := &t.nodes[id]
	if n.classicalUse {
		return
	}
	n.classicalUse = true
	if !n.outsideLimit && n.output != AcceptanceUnknown {
		t.settle(id, o)
	}
}

// ensureOutput asks the membership oracle once if the answer is not cached.
func (t *Tree) ensureOutput(id NodeID, o oracles.MembershipOracle) {
	n := &t.nodes[id]
	if n.output != AcceptanceUnknown {
		return
	}
	before := t.Cell(id)
	if o.Member(n.word) {
		n.output = Accepted
	} else {
		n.output = Rejected
	}
	t.memberQueries++
	t.notifyIfChanged(id, before)
}

// settle brings a node with a known membership answer into a consistent flag
// state, asking the counter queries the current knowledge requires. Safe to
// call repeatedly.
func (t *Tree) settle(id NodeID, o oracles.QueryOracle) {
	n := &t.nodes[id]
	switch n.output {
	case AcceptanceUnknown:
		panic("prefix tree: settle on a node with no membership answer")
	case Accepted:
		if !n.inPrefix {
			t.decideAccepted(id, o)
			return
		}
		// Already within the limit; an accepted word sits at counter 0, the
		// query is confirmation for classical users.
		if n.classicalUse && n.counterValue == UnknownCounterValue {
			t.askCounter(id, o)
		}
	case Rejected:
		if n.inPrefix && n.classicalUse && n.counterValue == UnknownCounterValue {
			if cv := t.askCounter(id, o); cv > t.limit {
				t.markOutsideLimit(id)
			}
		}
	}
}

// decideAccepted decides whether an accepted word is accepted within the
// current counter limit. Walks up to the nearest ancestor with a known
// counter value and, while the candidate is too deep for that ancestor's
// slack, probes the one ancestor depth where the answer is undetermined.
func (t *Tree) decideAccepted(id NodeID, o oracles.QueryOracle) {
	base := id
	for base != NoNode && t.nodes[base].counterValue == UnknownCounterValue {
		base = t.nodes[base].parent
	}
	if base == NoNode {
		panic("prefix tree: no counter base on the path to the root")
	}
	for {
		bv := t.nodes[base].counterValue
		if bv > t.limit {
			t.markOutsideLimit(base)
			return
		}
		gap := t.nodes[id].depth - t.nodes[base].depth
		slack := t.limit + 1 - bv
		if gap <= slack {
			break
		}
		probe := t.ancestorAtDepth(id, t.nodes[base].depth+slack)
		if cv := t.askCounter(probe, o); cv > t.limit {
			// The word climbs past the limit before it can come back down:
			// rejected within the limit after all, and so is everything below.
			t.markOutsideLimit(probe)
			return
		}
		t.markInPrefixChain(probe, o)
		base = probe
	}
	// No prefix of the word can exceed the limit: accepted within it.
	t.nodes[id].counterValue = 0
	t.markInPrefixChain(id, o)
}

// ancestorAtDepth returns the ancestor of id sitting at the given depth.
func (t *Tree) ancestorAtDepth(id NodeID, depth int) NodeID {
	cur := id
	for t.nodes[cur].depth > depth {
		cur = t.nodes[cur].parent
	}
	if t.nodes[cur].depth != depth {
		panic(fmt.Sprintf("prefix tree: no ancestor at depth %d", depth))
	}
	return cur
}

// askCounter asks the counter-value oracle once and caches the answer.
func (t *Tree) askCounter(id NodeID, o oracles.CounterValueOracle) int {
	n := &t.nodes[id]
	if n.counterValue != UnknownCounterValue {
		return n.counterValue
	}
	before := t.Cell(id)
	n.counterValue = o.CounterValue(n.word)
	t.counterQueries++
	t.notifyIfChanged(id, before)
	return n.counterValue
}

// markInPrefixChain marks a node and all its ancestors as known language
// prefixes within the limit, backfilling counter values for chain members
// whose counter is now needed. One batch counter pass for the backfills.
func (t *Tree) markInPrefixChain(id NodeID, o oracles.CounterValueOracle) {
	type pending struct {
		id     NodeID
		before Cell
	}
	var chain []pending
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		if t.nodes[cur].inPrefix {
			// Contiguity invariant: everything above is already marked.
			break
		}
		chain = append(chain, pending{id: cur, before: t.Cell(cur)})
		t.nodes[cur].inPrefix = true
	}
	var fill []NodeID
	var ask []words.Word
	for _, p := range chain {
		n := &t.nodes[p.id]
		if n.counterValue != UnknownCounterValue {
			continue
		}
		if n.output == Accepted {
			n.counterValue = 0
		} else if n.classicalUse {
			fill = append(fill, p.id)
			ask = append(ask, n.word)
		}
	}
	if len(fill) > 0 {
		values := o.CounterValueBatch(ask)
		t.counterQueries += int64(len(ask))
		for i, fid := range fill {
			if values[i] > t.limit {
				panic(fmt.Sprintf("prefix tree: counter value %d exceeds limit %d on in-prefix word %q",
					values[i], t.limit, t.nodes[fid].word))
			}
			t.nodes[fid].counterValue = values[i]
		}
	}
	for _, p := range chain {
		t.notifyIfChanged(p.id, p.before)
	}
}

// markOutsideLimit marks a node and every descendant as outside the counter
// limit. Iterative; subtrees already marked in the current epoch are skipped,
// which makes the marking monotone and the propagation cost proportional to
// the newly-marked region.
func (t *Tree) markOutsideLimit(start NodeID) {
	type pending struct {
		id     NodeID
		before Cell
	}
	var changed []pending
	stack := []NodeID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if n.outsideLimit && n.markEpoch == t.epoch {
			continue
		}
		changed = append(changed, pending{id: id, before: t.Cell(id)})
		n.outsideLimit = true
		n.inPrefix = false
		n.markEpoch = t.epoch
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	for _, p := range changed {
		t.notifyIfChanged(p.id, p.before)
	}
}

// RaiseCounterLimit raises the counter limit and re-decides the in-prefix and
// outside-limit flags of every previously undetermined node. Depth-first and
// iterative; recursion into a subtree stops as soon as the subtree is
// confirmed to stay outside the new limit.
func (t *Tree) RaiseCounterLimit(newLimit int, o oracles.QueryOracle) {
	if newLimit <= t.limit {
		panic(fmt.Sprintf("prefix tree: counter limit must increase (%d -> %d)", t.limit, newLimit))
	}
	t.limit = newLimit
	t.epoch++
	stack := []NodeID{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if n.outsideLimit && n.markEpoch == t.epoch {
			// Re-marked by a probe earlier in this pass; subtree is settled.
			continue
		}
		if n.counterValue != UnknownCounterValue && n.counterValue > newLimit {
			// Confirmed outside even the new limit; descendants were marked
			// when the node was and stay marked.
			continue
		}
		if n.outsideLimit {
			before := t.Cell(id)
			n.outsideLimit = false
			t.notifyIfChanged(id, before)
		}
		if n.counterValue != UnknownCounterValue && !n.inPrefix {
			// A counter value within the limit proves a language prefix.
			t.markInPrefixChain(id, o)
		}
		if n.output == AcceptanceUnknown && len(n.refs) > 0 {
			// A registered cell whose queries were skipped while outside.
			t.ensureOutput(id, o)
		}
		if n.output != AcceptanceUnknown {
			t.settle(id, o)
		}
		if t.nodes[id].outsideLimit {
			// settle pushed the node back out under the new limit.
			continue
		}
		for _, child := range t.nodes[id].children {
			stack = append(stack, child)
		}
	}
}

// AcceptedWithinLimit reports whether a word is accepted within the current
// counter limit, asking the oracle queries the decision needs. Used by the
// bottom-inconsistency resolution to classify a synthesized suffix.
func (t *Tree) AcceptedWithinLimit(w words.Word, o oracles.QueryOracle) bool {
	id := t.GetOrCreatePath(w)
	if t.nodes[id].outsideLimit {
		return false
	}
	t.ensureOutput(id, o)
	if t.nodes[id].output == Rejected {
		return false
	}
	if !t.nodes[id].inPrefix {
		t.decideAccepted(id, o)
	}
	return t.nodes[id].inPrefix && !t.nodes[id].outsideLimit
}

// FindAcceptedDescendant searches the already-explored subtree below id for a
// word accepted within the current limit, returning the connecting suffix.
// Children are visited in symbol order so the pick is stable.
func (t *Tree) FindAcceptedDescendant(id NodeID) (words.Word, bool) {
	baseDepth := t.nodes[id].depth
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[cur]
		if n.outsideLimit {
			continue
		}
		if n.output == Accepted && n.inPrefix {
			return n.word.SuffixFrom(baseDepth), true
		}
		syms := make([]words.Symbol, 0, len(n.children))
		for sym := range n.children {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
		// Reverse push so the smallest symbol is explored first.
		for i := len(syms) - 1; i >= 0; i-- {
			stack = append(stack, n.children[syms[i]])
		}
	}
	return nil, false
}

// notifyIfChanged compares the derived cell against a snapshot and notifies
// every registered back-reference on a difference.
func (t *Tree) notifyIfChanged(id NodeID, before Cell) {
	if t.observer == nil {
		return
	}
	after := t.Cell(id)
	if after == before {
		return
	}
	for _, ref := range t.nodes[id].refs {
		t.observer.CellChanged(ref.row, ref.suffix)
	}
}
