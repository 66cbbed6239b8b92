/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: word.go
Description: Word type for the Akaylee Learner. Words are finite sequences of
alphabet symbols with the standard prefix/suffix/concatenation operations used
throughout the observation structure. The empty word is the zero value.
*/

package words

import "strings"

// Symbol is a single input symbol of the target language's alphabet.
type Symbol rune

// Word is a finite sequence of symbols. The empty slice (or nil) is epsilon.
// Words are treated as immutable values: every operation that would extend a
// word allocates a fresh backing array so callers can never alias each other.
type Word []Symbol

// Epsilon returns the empty word.
func Epsilon() Word {
	return Word{}
}

// FromString builds a word from the runes of s.
func FromString(s string) Word {
	w := make(Word, 0, len(s))
	for _, r := range s {
		w = append(w, Symbol(r))
	}
	return w
}

// Len returns the number of symbols in the word.
func (w Word) Len() int {
	return len(w)
}

// IsEpsilon reports whether the word is empty.
func (w Word) IsEpsilon() bool {
	return len(w) == 0
}

// String renders the word's symbols. Epsilon renders as "ε" for display.
func (w Word) String() string {
	if len(w) == 0 {
		return "ε"
	}
	var b strings.Builder
	for _, s := range w {
		b.WriteRune(rune(s))
	}
	return b.String()
}

// Key returns a stable map key for the word. Unlike String, epsilon maps to
// the empty string so keys compose under concatenation.
func (w Word) Key() string {
	var b strings.Builder
	for _, s := range w {
		b.WriteRune(rune(s))
	}
	return b.String()
}

// Append returns a new word equal to w followed by the symbol a.
func (w Word) Append(a Symbol) Word {
	out := make(Word, len(w)+1)
	copy(out, w)
	out[len(w)] = a
	return out
}

// Concat returns a new word equal to w followed by other.
func (w Word) Concat(other Word) Word {
	out := make(Word, len(w)+len(other))
	copy(out, w)
	copy(out[len(w):], other)
	return out
}

// Prefix returns the first n symbols of w. n must be in [0, len(w)].
func (w Word) Prefix(n int) Word {
	out := make(Word, n)
	copy(out, w[:n])
	return out
}

// SuffixFrom returns the symbols of w starting at index i.
func (w Word) SuffixFrom(i int) Word {
	out := make(Word, len(w)-i)
	copy(out, w[i:])
	return out
}

// Equals reports whether two words are symbol-wise identical.
func (w Word) Equals(other Word) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf reports whether w is a (not necessarily proper) prefix of other.
func (w Word) IsPrefixOf(other Word) bool {
	if len(w) > len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

// Prefixes returns every prefix of w from epsilon to w itself, in increasing
// length order.
func (w Word) Prefixes() []Word {
	out := make([]Word, 0, len(w)+1)
	for i := 0; i <= len(w); i++ {
		out = append(out, w.Prefix(i))
	}
	return out
}
