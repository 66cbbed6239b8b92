/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: word_test.go
Description: Tests for the words package. Covers word construction, immutable
extension operations, prefix enumeration, and alphabet behavior.
*/

package words_test

import (
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEpsilon tests the empty word
func TestEpsilon(t *testing.T) {
	eps := words.Epsilon()
	assert.True(t, eps.IsEpsilon())
	assert.Equal(t, 0, eps.Len())
	assert.Equal(t, "ε", eps.String())
}

// TestFromString tests word construction from strings
func TestFromString(t *testing.T) {
	w := words.FromString("abc")
	require.Equal(t, 3, w.Len())
	assert.Equal(t, "abc", w.String())
	assert.False(t, w.IsEpsilon())
	assert.True(t, words.FromString("").IsEpsilon())
}

// TestAppendDoesNotAlias tests that extension operations copy
func TestAppendDoesNotAlias(t *testing.T) {
	base := words.FromString("ab")
	x := base.Append('c')
	y := base.Append('d')
	assert.Equal(t, "abc", x.String())
	assert.Equal(t, "abd", y.String())
	assert.Equal(t, "ab", base.String())
}

// TestConcat tests concatenation
func TestConcat(t *testing.T) {
	u := words.FromString("ab")
	v := words.FromString("cd")
	assert.Equal(t, "abcd", u.Concat(v).String())
	assert.Equal(t, "ab", u.Concat(words.Epsilon()).String())
	assert.Equal(t, "cd", words.Epsilon().Concat(v).String())
}

// TestPrefixesAndSuffixes tests prefix and suffix slicing
func TestPrefixesAndSuffixes(t *testing.T) {
	w := words.FromString("abc")
	ps := w.Prefixes()
	require.Len(t, ps, 4)
	assert.True(t, ps[0].IsEpsilon())
	assert.Equal(t, "a", ps[1].String())
	assert.Equal(t, "ab", ps[2].String())
	assert.Equal(t, "abc", ps[3].String())

	assert.Equal(t, "bc", w.SuffixFrom(1).String())
	assert.Equal(t, "ab", w.Prefix(2).String())
	assert.True(t, words.FromString("ab").IsPrefixOf(w))
	assert.False(t, words.FromString("ac").IsPrefixOf(w))
}

// TestEqualsAndKey tests equality and map keys
func TestEqualsAndKey(t *testing.T) {
	assert.True(t, words.FromString("ab").Equals(words.FromString("ab")))
	assert.False(t, words.FromString("ab").Equals(words.FromString("ba")))
	assert.Equal(t, words.FromString("ab").Key(), words.FromString("ab").Key())
	assert.NotEqual(t, words.FromString("ab").Key(), words.FromString("abc").Key())
}

// TestAlphabet tests the growable ordered alphabet
func TestAlphabet(t *testing.T) {
	a := words.AlphabetFromString("ab")
	require.Equal(t, 2, a.Size())
	assert.True(t, a.Contains('a'))
	assert.False(t, a.Contains('c'))
	assert.Equal(t, 0, a.Index('a'))
	assert.Equal(t, 1, a.Index('b'))

	assert.True(t, a.Add('c'))
	assert.False(t, a.Add('c'))
	assert.Equal(t, 3, a.Size())
	assert.Equal(t, []words.Symbol{'a', 'b', 'c'}, a.Symbols())
}
