/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: alphabet.go
Description: Ordered input alphabet for the Akaylee Learner. Symbols keep their
insertion order so that table iteration, canonical successor computation, and
hypothesis construction stay deterministic between refinement rounds.
*/

package words

// Alphabet is an ordered, deduplicated set of input symbols. It grows but
// never shrinks: the observation table extends every short-prefix row when a
// symbol is added, and removal would orphan those rows.
type Alphabet struct {
	symbols []Symbol
	index   map[Symbol]int
}

// NewAlphabet creates an alphabet from the given symbols, dropping duplicates
// while preserving first-occurrence order.
func NewAlphabet(symbols ...Symbol) *Alphabet {
	a := &Alphabet{index: make(map[Symbol]int)}
	for _, s := range symbols {
		a.Add(s)
	}
	return a
}

// AlphabetFromString creates an alphabet from the runes of s.
func AlphabetFromString(s string) *Alphabet {
	a := &Alphabet{index: make(map[Symbol]int)}
	for _, r := range s {
		a.Add(Symbol(r))
	}
	return a
}

// Add appends a symbol to the alphabet. Returns false if already present.
func (a *Alphabet) Add(s Symbol) bool {
	if _, ok := a.index[s]; ok {
		return false
	}
	a.index[s] = len(a.symbols)
	a.symbols = append(a.symbols, s)
	return true
}

// Contains reports whether the symbol is in the alphabet.
func (a *Alphabet) Contains(s Symbol) bool {
	_, ok := a.index[s]
	return ok
}

// Index returns the position of the symbol, or -1 if absent.
func (a *Alphabet) Index(s Symbol) int {
	if i, ok := a.index[s]; ok {
		return i
	}
	return -1
}

// Size returns the number of symbols.
func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// Symbols returns the symbols in insertion order. The slice is a copy.
func (a *Alphabet) Symbols() []Symbol {
	out := make([]Symbol, len(a.symbols))
	copy(out, a.symbols)
	return out
}
