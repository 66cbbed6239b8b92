/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: Observation table for the Akaylee Learner. Owns all rows and
suffixes, delegates every raw query to the prefix tree, maintains the Approx
partition incrementally, and exposes the mutation operations the refinement
loop drives: suffix addition, short-prefix promotion, counter-limit raising,
and alphabet growth. Every mutator completes fully (including all oracle
queries it needs) before returning.
*/

package table

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kleascm/akaylee-learner/pkg/oracles"
	"github.com/kleascm/akaylee-learner/pkg/tree"
	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/sirupsen/logrus"
)

// Table is the incremental observation structure. Single-threaded: callers
// wanting concurrent learning sessions must own independent instances.
type Table struct {
	alphabet *words.Alphabet
	tree     *tree.Tree
	logger   *logrus.Logger

	rows      []*Row
	rowIndex  map[string]int
	shortRows []int
	longRows  []int

	suffixes        []words.Word
	suffixClassical []bool
	suffixIndex     map[string]int

	// Approx state
	buckets     []*bucket
	bucketIndex map[string]int
	classes     []*approxClass
	classIndex  map[string]int
	dirty       map[int]struct{}

	initialized bool
}

// New creates an empty table over the given alphabet with the given initial
// counter limit. The limit is required up front: the prefix tree cannot
// derive any cell without one.
func New(alphabet *words.Alphabet, counterLimit int, logger *logrus.Logger) (*Table, error) {
	if alphabet == nil || alphabet.Size() == 0 {
		return nil, fmt.Errorf("observation table: empty alphabet")
	}
	if counterLimit < 0 {
		return nil, fmt.Errorf("observation table: missing or negative initial counter limit (%d)", counterLimit)
	}
	if logger == nil {
		logger = logrus.New()
	}
	t := &Table{
		alphabet:    alphabet,
		tree:        tree.New(counterLimit),
		logger:      logger,
		rowIndex:    make(map[string]int),
		suffixIndex: make(map[string]int),
		bucketIndex: make(map[string]int),
		classIndex:  make(map[string]int),
		dirty:       make(map[int]struct{}),
	}
	t.tree.SetObserver(t)
	return t, nil
}

// CellChanged implements tree.CellObserver: the tree reports that a row's
// derived content changed, so the row's bucket must be recomputed.
func (t *Table) CellChanged(row, suffixIndex int) {
	_ = suffixIndex
	t.dirty[row] = struct{}{}
}

// Tree exposes the underlying prefix tree (read-side: query accounting,
// derived cells). Mutating it directly bypasses the table's invariants.
func (t *Table) Tree() *tree.Tree {
	return t.tree
}

// Alphabet returns the table's input alphabet.
func (t *Table) Alphabet() *words.Alphabet {
	return t.alphabet
}

// CounterLimit returns the current counter limit.
func (t *Table) CounterLimit() int {
	return t.tree.Limit()
}

// NumberOfSuffixes returns how many suffixes are registered.
func (t *Table) NumberOfSuffixes() int {
	return len(t.suffixes)
}

// Suffixes returns the registered suffixes in order.
func (t *Table) Suffixes() []words.Word {
	out := make([]words.Word, len(t.suffixes))
	copy(out, t.suffixes)
	return out
}

// SuffixIsClassical reports whether the suffix at index i contributes
// counter-value information.
func (t *Table) SuffixIsClassical(i int) bool {
	return t.suffixClassical[i]
}

// Rows returns every row, short and long, in creation order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// ShortPrefixRows returns the short-prefix rows in creation order.
func (t *Table) ShortPrefixRows() []*Row {
	return t.rowsFor(t.shortRows)
}

// LongPrefixRows returns the long-prefix rows in creation order.
func (t *Table) LongPrefixRows() []*Row {
	return t.rowsFor(t.longRows)
}

func (t *Table) rowsFor(ids []int) []*Row {
	out := make([]*Row, len(ids))
	for i, id := range ids {
		out[i] = t.rows[id]
	}
	return out
}

// RowFor returns the row registered for a word, nil if none.
func (t *Table) RowFor(w words.Word) *Row {
	if id, ok := t.rowIndex[w.Key()]; ok {
		return t.rows[id]
	}
	return nil
}

// FullRowContents returns the derived cell of every suffix for the row.
func (t *Table) FullRowContents(r *Row) []tree.Cell {
	out := make([]tree.Cell, len(r.cells))
	for i, nid := range r.cells {
		out[i] = t.tree.Cell(nid)
	}
	return out
}

// Initialize registers the initial short prefixes (prefix-closed, epsilon
// first) and suffixes, creates the one-symbol successors, fills every cell,
// and computes the initial Approx partition. Returns the groups of currently
// unclosed long-prefix rows.
func (t *Table) Initialize(shortPrefixes, suffixes []words.Word, o oracles.QueryOracle) ([]RowGroup, error) {
	if t.initialized {
		return nil, fmt.Errorf("observation table: already initialized")
	}
	if len(shortPrefixes) == 0 || !shortPrefixes[0].IsEpsilon() {
		return nil, fmt.Errorf("observation table: initial short prefixes must start with epsilon")
	}
	keys := make(map[string]bool, len(shortPrefixes))
	for _, w := range shortPrefixes {
		keys[w.Key()] = true
	}
	for _, w := range shortPrefixes {
		for i := 0; i < w.Len(); i++ {
			if !keys[w.Prefix(i).Key()] {
				return nil, fmt.Errorf("observation table: initial short prefixes not prefix-closed (missing %q for %q)",
					w.Prefix(i), w)
			}
		}
		for _, sym := range w {
			if !t.alphabet.Contains(sym) {
				return nil, fmt.Errorf("observation table: symbol %q of %q not in alphabet", string(rune(sym)), w)
			}
		}
	}
	t.initialized = true

	for _, s := range suffixes {
		if _, ok := t.suffixIndex[s.Key()]; ok {
			continue
		}
		t.internSuffix(s, true)
	}
	var fresh []*Row
	for _, w := range shortPrefixes {
		if t.RowFor(w) != nil {
			continue
		}
		fresh = append(fresh, t.createRow(w, true))
	}
	fresh = append(fresh, t.createSuccessors(fresh)...)
	t.fillCells(fresh, o)
	t.updateApprox()
	t.logger.WithFields(logrus.Fields{
		"short_prefixes": len(t.shortRows),
		"suffixes":       len(t.suffixes),
		"counter_limit":  t.tree.Limit(),
	}).Debug("Observation table initialized")
	return t.UnclosedGroups(), nil
}

// AddSuffixes registers new classical suffixes on every existing row and
// recomputes Approx for the touched rows. Suffixes already present as
// classical are ignored; ones present as language-only are upgraded.
func (t *Table) AddSuffixes(newSuffixes []words.Word, o oracles.QueryOracle) ([]RowGroup, error) {
	return t.addSuffixes(newSuffixes, true, o)
}

// AddSuffixesOnlyForLanguage registers new suffixes that act purely as
// accept/reject witnesses and never contribute counter-value information.
func (t *Table) AddSuffixesOnlyForLanguage(newSuffixes []words.Word, o oracles.QueryOracle) ([]RowGroup, error) {
	return t.addSuffixes(newSuffixes, false, o)
}

func (t *Table) addSuffixes(newSuffixes []words.Word, classical bool, o oracles.QueryOracle) ([]RowGroup, error) {
	if !t.initialized {
		return nil, fmt.Errorf("observation table: not initialized")
	}
	var added []int
	for _, s := range newSuffixes {
		if idx, ok := t.suffixIndex[s.Key()]; ok {
			if classical && !t.suffixClassical[idx] {
				// Upgrade: the counter value of every cell in this column is
				// now semantically needed.
				t.suffixClassical[idx] = true
				for _, r := range t.rows {
					t.tree.PromoteCellClassical(r.cells[idx], o)
				}
				// The column now participates in counter compatibility, so
				// classes can change even where no cell content did (counter
				// values already known through shared nodes).
				t.markAllDirty()
				t.logger.WithField("suffix", s.String()).Debug("Suffix upgraded to classical")
			}
			continue
		}
		added = append(added, t.internSuffix(s, classical))
	}
	if len(added) > 0 {
		var pass []words.Word
		for _, r := range t.rows {
			for _, idx := range added {
				pass = append(pass, r.word.Concat(t.suffixes[idx]))
			}
		}
		t.tree.PrimeOutputs(pass, o)
		for _, r := range t.rows {
			for _, idx := range added {
				r.cells = append(r.cells, t.tree.RegisterCell(r.node, t.suffixes[idx], r.id, idx, t.suffixClassical[idx], o))
			}
			t.dirty[r.id] = struct{}{}
		}
		t.logger.WithFields(logrus.Fields{
			"added":     len(added),
			"classical": classical,
			"total":     len(t.suffixes),
		}).Debug("Suffixes added")
	}
	t.updateApprox()
	return t.UnclosedGroups(), nil
}

// ToShortPrefixes promotes long-prefix rows to short-prefix rows, creates
// their successors, and recomputes Approx. This is how the table closes.
func (t *Table) ToShortPrefixes(rows []*Row, o oracles.QueryOracle) ([]RowGroup, error) {
	ws := make([]words.Word, len(rows))
	for i, r := range rows {
		ws[i] = r.word
	}
	return t.AddShortPrefixes(ws, o)
}

// AddShortPrefixes promotes (or creates) short-prefix rows for the given
// words and every proper prefix of them, keeping the short prefixes
// prefix-closed by construction.
func (t *Table) AddShortPrefixes(wordsIn []words.Word, o oracles.QueryOracle) ([]RowGroup, error) {
	if !t.initialized {
		return nil, fmt.Errorf("observation table: not initialized")
	}
	for _, w := range wordsIn {
		for _, sym := range w {
			if !t.alphabet.Contains(sym) {
				return nil, fmt.Errorf("observation table: symbol %q of %q not in alphabet", string(rune(sym)), w)
			}
		}
	}
	fresh, promoted := t.promoteWords(wordsIn)
	fresh = append(fresh, t.createSuccessors(append(append([]*Row{}, fresh...), promoted...))...)
	t.fillCells(fresh, o)
	t.updateApprox()
	return t.UnclosedGroups(), nil
}

// promoteWords makes every word and its prefixes short. Returns brand-new
// rows (no cells yet) and previously-long rows flipped to short.
func (t *Table) promoteWords(wordsIn []words.Word) (fresh, promoted []*Row) {
	for _, w := range wordsIn {
		for _, p := range w.Prefixes() {
			r := t.RowFor(p)
			switch {
			case r == nil:
				fresh = append(fresh, t.createRow(p, true))
			case !r.short:
				t.promote(r)
				promoted = append(promoted, r)
			}
		}
	}
	return fresh, promoted
}

// promote flips a long-prefix row to short. The row's content is unchanged,
// but the Approx sets of its whole bucket must be recomputed: the bucket has
// gained a short member.
func (t *Table) promote(r *Row) {
	r.short = true
	for i, id := range t.longRows {
		if id == r.id {
			t.longRows = append(t.longRows[:i], t.longRows[i+1:]...)
			break
		}
	}
	t.shortRows = append(t.shortRows, r.id)
	t.dirty[r.id] = struct{}{}
	t.logger.WithField("row", r.word.String()).Debug("Row promoted to short prefix")
}

// createSuccessors creates the missing one-symbol successors of the given
// short rows as long-prefix rows.
func (t *Table) createSuccessors(shorts []*Row) []*Row {
	var created []*Row
	for _, r := range shorts {
		if !r.short {
			continue
		}
		for _, sym := range t.alphabet.Symbols() {
			succ := r.word.Append(sym)
			if t.RowFor(succ) == nil {
				created = append(created, t.createRow(succ, false))
			}
		}
	}
	return created
}

// createRow allocates a row with no cells. Rows are never deleted.
func (t *Table) createRow(w words.Word, short bool) *Row {
	r := &Row{
		id:       len(t.rows),
		word:     w,
		node:     t.tree.GetOrCreatePath(w),
		short:    short,
		classID:  NoClass,
		bucketID: -1,
	}
	t.rows = append(t.rows, r)
	t.rowIndex[w.Key()] = r.id
	if short {
		t.shortRows = append(t.shortRows, r.id)
	} else {
		t.longRows = append(t.longRows, r.id)
	}
	return r
}

// fillCells registers every suffix on the given cell-less rows: one batch
// membership pass, then per-cell resolution (counter queries are adaptive).
func (t *Table) fillCells(rows []*Row, o oracles.QueryOracle) {
	if len(rows) == 0 {
		return
	}
	var pass []words.Word
	for _, r := range rows {
		for _, s := range t.suffixes {
			pass = append(pass, r.word.Concat(s))
		}
	}
	t.tree.PrimeOutputs(pass, o)
	for _, r := range rows {
		r.cells = make([]tree.NodeID, len(t.suffixes))
		for i, s := range t.suffixes {
			r.cells[i] = t.tree.RegisterCell(r.node, s, r.id, i, t.suffixClassical[i], o)
		}
		t.dirty[r.id] = struct{}{}
	}
}

// internSuffix appends a suffix, returning its index.
func (t *Table) internSuffix(s words.Word, classical bool) int {
	idx := len(t.suffixes)
	t.suffixes = append(t.suffixes, s)
	t.suffixClassical = append(t.suffixClassical, classical)
	t.suffixIndex[s.Key()] = idx
	return idx
}

// IncreaseCounterLimit raises the tree's counter limit, performs the given
// short-prefix and suffix additions, then recomputes Approx globally, since
// previously-suppressed cells may have flipped anywhere.
func (t *Table) IncreaseCounterLimit(newLimit int, newShortPrefixes, newSuffixes []words.Word, o oracles.QueryOracle) ([]RowGroup, error) {
	if !t.initialized {
		return nil, fmt.Errorf("observation table: not initialized")
	}
	if newLimit <= t.tree.Limit() {
		return nil, fmt.Errorf("observation table: counter limit must increase (%d -> %d)", t.tree.Limit(), newLimit)
	}
	t.logger.WithFields(logrus.Fields{
		"old_limit": t.tree.Limit(),
		"new_limit": newLimit,
	}).Debug("Raising counter limit")
	t.tree.RaiseCounterLimit(newLimit, o)
	if len(newShortPrefixes) > 0 {
		if _, err := t.AddShortPrefixes(newShortPrefixes, o); err != nil {
			return nil, err
		}
	}
	if len(newSuffixes) > 0 {
		if _, err := t.AddSuffixes(newSuffixes, o); err != nil {
			return nil, err
		}
	}
	t.markAllDirty()
	t.updateApprox()
	return t.UnclosedGroups(), nil
}

// AddAlphabetSymbol grows the alphabet, extends every short-prefix row with
// the new successor, and recomputes Approx.
func (t *Table) AddAlphabetSymbol(sym words.Symbol, o oracles.QueryOracle) ([]RowGroup, error) {
	if !t.initialized {
		return nil, fmt.Errorf("observation table: not initialized")
	}
	if !t.alphabet.Add(sym) {
		return nil, fmt.Errorf("observation table: symbol %q already in alphabet", string(rune(sym)))
	}
	fresh := t.createSuccessors(t.ShortPrefixRows())
	t.fillCells(fresh, o)
	t.updateApprox()
	t.logger.WithField("symbol", string(rune(sym))).Debug("Alphabet symbol added")
	return t.UnclosedGroups(), nil
}

// RowIsTrivial reports whether every cell of the row is trivial: derived
// rejected with no known counter value. Such rows carry no content, are
// exempt from closedness, and act as the implicit bin.
func (t *Table) RowIsTrivial(r *Row) bool {
	for _, nid := range r.cells {
		if !t.tree.Cell(nid).Trivial() {
			return false
		}
	}
	return true
}

// contentSignature renders the row's full derived content, used to group
// identical unclosed rows.
func (t *Table) contentSignature(r *Row) string {
	var sb strings.Builder
	for i, nid := range r.cells {
		if i > 0 {
			sb.WriteByte('|')
		}
		c := t.tree.Cell(nid)
		if c.Accepted {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		sb.WriteByte(':')
		if c.CounterKnown {
			sb.WriteString(strconv.Itoa(c.CounterValue))
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// UnclosedGroups returns the long-prefix rows with non-trivial content and an
// empty Approx class, grouped by identical full content so the refinement
// loop can close one representative per group.
func (t *Table) UnclosedGroups() []RowGroup {
	groups := make(map[string]RowGroup)
	var order []string
	for _, id := range t.longRows {
		r := t.rows[id]
		if r.classID != NoClass || len(r.cells) == 0 || t.RowIsTrivial(r) {
			continue
		}
		sig := t.contentSignature(r)
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], r)
	}
	out := make([]RowGroup, 0, len(groups))
	for _, sig := range order {
		g := groups[sig]
		sort.Slice(g, func(i, j int) bool { return g[i].id < g[j].id })
		out = append(out, g)
	}
	return out
}

// IsClosed reports whether no unclosed long-prefix row remains.
func (t *Table) IsClosed() bool {
	return len(t.UnclosedGroups()) == 0
}

// ClassMembers returns the short-prefix rows of an Approx class.
func (t *Table) ClassMembers(classID int) []*Row {
	if classID == NoClass {
		return nil
	}
	return t.rowsFor(t.classes[classID].members)
}

// CanonicalRow returns the stable canonical representative of a class.
func (t *Table) CanonicalRow(classID int) *Row {
	if classID == NoClass {
		return nil
	}
	return t.rows[t.classes[classID].canonical]
}

// CanonicalRows returns one row per distinct Approx class among the short
// prefixes: the candidate automaton states, in canonical-row order.
func (t *Table) CanonicalRows() []*Row {
	seen := make(map[int]bool)
	var out []*Row
	for _, id := range t.shortRows {
		r := t.rows[id]
		if r.classID == NoClass {
			// A short row always belongs to its own Approx set.
			panic(fmt.Sprintf("observation table: short-prefix row %q has empty Approx class", r.word))
		}
		if seen[r.classID] {
			continue
		}
		seen[r.classID] = true
		out = append(out, t.CanonicalRow(r.classID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// isBin reports whether the row acts as the implicit bin: empty Approx class
// with no content.
func (t *Table) isBin(r *Row) bool {
	return r.classID == NoClass && t.RowIsTrivial(r)
}

// successorRow returns the row for r's word extended by sym. Short rows
// always have their successors registered.
func (t *Table) successorRow(r *Row, sym words.Symbol) *Row {
	succ := t.RowFor(r.word.Append(sym))
	if succ == nil {
		panic(fmt.Sprintf("observation table: short-prefix row %q has no successor under %q", r.word, string(rune(sym))))
	}
	return succ
}

// CanonicalSuccessor intersects the classes reached by every row of a class
// after reading sym. Returns the successor class id (NoClass for the bin) and
// the pick is stable between mutations. A non-nil descriptor means the
// intersection emptied: the table is Sigma-inconsistent on this transition.
func (t *Table) CanonicalSuccessor(classID int, sym words.Symbol) (int, *SigmaInconsistency) {
	members := t.classes[classID].members
	inter := make(map[int]bool)
	first := true
	var firstRow *Row
	for _, id := range members {
		u := t.rows[id]
		ua := t.successorRow(u, sym)
		if t.isBin(ua) {
			// No information: the bin constrains nothing.
			continue
		}
		if ua.classID == NoClass {
			panic(fmt.Sprintf("observation table: successor row %q is unclosed", ua.word))
		}
		if first {
			for _, m := range t.classes[ua.classID].members {
				inter[m] = true
			}
			first, firstRow = false, u
			continue
		}
		next := make(map[int]bool)
		for _, m := range t.classes[ua.classID].members {
			if inter[m] {
				next[m] = true
			}
		}
		if len(next) == 0 {
			return NoClass, t.newSigmaInconsistency(firstRow, u, sym)
		}
		inter = next
	}
	if first {
		// Every member's successor is the bin.
		return NoClass, nil
	}
	pick := -1
	for m := range inter {
		if pick < 0 || m < pick {
			pick = m
		}
	}
	return t.rows[pick].classID, nil
}
