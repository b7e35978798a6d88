package wordtrie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraxlines/wordrect/charindex"
)

// buildIndex seeds the histogram with the full a-z alphabet so the
// selection lands on Identity: dense order then coincides with byte order
// and the fixtures below can be written in plain alphabetic sort.
func buildIndex(t *testing.T, words []string) *charindex.CharIndex {
	t.Helper()
	h := charindex.NewHistogram()
	for b := byte('a'); b <= 'z'; b++ {
		h.Observe(b)
	}
	for _, w := range words {
		for i := 0; i < len(w); i++ {
			h.Observe(w[i])
		}
	}
	return h.Build(1)
}

func insertAll(t *testing.T, trie *Trie, words []string) []Node {
	t.Helper()
	nodes := make([]Node, len(words))
	prev := Nil
	for i, w := range words {
		n, err := trie.Insert([]byte(w), prev)
		require.NoError(t, err)
		nodes[i] = n
		prev = n
	}
	return nodes
}

func TestInsertAndWordRoundTrip(t *testing.T) {
	words := []string{"acts", "aged", "ants", "arts"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	nodes := insertAll(t, trie, words)

	for i, w := range words {
		assert.True(t, trie.IsWord(nodes[i]))
		assert.Equal(t, []byte(w), trie.Word(nodes[i]))
	}
}

func TestFirstWordIsLexicographicallySmallest(t *testing.T) {
	words := []string{"acts", "aged", "ants", "arts"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	insertAll(t, trie, words)

	first := trie.FirstWord(trie.Root())
	require.NotEqual(t, Nil, first)
	assert.Equal(t, "acts", string(trie.Word(first)))
}

func TestNextStemSkipsToNextDistinctPrefix(t *testing.T) {
	// next_stem returns an internal node, not a word-node directly (callers
	// always chase it with FirstWord, as the rectangle search does). Here
	// the "ac" prefix's next stem within the "a" branch is "ag", whose
	// first word is "aged".
	words := []string{"acts", "aged", "ants", "arts", "bold"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	insertAll(t, trie, words)

	root := trie.Root()
	a := trie.BranchAtIndex(root, ci.Index('a'))
	require.NotEqual(t, Nil, a)
	acNode := trie.BranchAtIndex(a, ci.Index('c'))
	require.NotEqual(t, Nil, acNode)

	next := trie.NextStem(acNode)
	require.NotEqual(t, Nil, next)
	assert.Equal(t, "aged", string(trie.Word(trie.FirstWord(next))))
}

func TestNextStemNilAtLastWord(t *testing.T) {
	words := []string{"acts", "aged"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	nodes := insertAll(t, trie, words)

	last := nodes[len(nodes)-1]
	assert.Equal(t, Nil, trie.NextStem(last))
}

func TestFirstWordFromIndexUsesDirectBranchOrSiblingChain(t *testing.T) {
	words := []string{"acts", "bold", "dogs"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	insertAll(t, trie, words)

	root := trie.Root()
	// Direct hit: index for 'b' has a real branch.
	w := trie.FirstWordFromIndex(root, ci.Index('b'))
	require.NotEqual(t, Nil, w)
	assert.Equal(t, "bold", string(trie.Word(w)))

	// No branch at 'c', falls through to the next real branch ('d').
	between := ci.Index('c')
	w = trie.FirstWordFromIndex(root, between)
	require.NotEqual(t, Nil, w)
	assert.Equal(t, "dogs", string(trie.Word(w)))

	// Past every branch: nothing left.
	assert.Equal(t, Nil, trie.FirstWordFromIndex(root, ci.Index('d')+1))
}

// Chasing FirstWord/NextStem from the root must visit every word exactly
// once, in insertion (sorted) order.
func TestForwardLinkWalkReproducesSortedInput(t *testing.T) {
	words := []string{"acts", "aged", "ants", "arts", "bold", "dogs"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	insertAll(t, trie, words)

	var visited []string
	for n := trie.FirstWord(trie.Root()); n != Nil; {
		visited = append(visited, string(trie.Word(n)))
		next := trie.NextStem(n)
		if next == Nil {
			break
		}
		n = trie.FirstWord(next)
	}
	assert.Equal(t, words, visited)
}

func TestReinsertingSameWordIsNoOp(t *testing.T) {
	words := []string{"acts", "aged"}
	ci := buildIndex(t, words)
	trie := New(ci, 4, NewInterner())
	nodes := insertAll(t, trie, words)
	before := trie.NumNodes()

	again, err := trie.Insert([]byte("aged"), nodes[len(nodes)-1])
	require.NoError(t, err)
	assert.Equal(t, nodes[len(nodes)-1], again)
	assert.Equal(t, before, trie.NumNodes())
}

func TestInsertRejectsWrongLength(t *testing.T) {
	ci := buildIndex(t, []string{"acts"})
	trie := New(ci, 4, NewInterner())
	_, err := trie.Insert([]byte("ac"), Nil)
	assert.ErrorIs(t, err, ErrWrongLength)
}

func TestInsertRejectsOutOfOrderWord(t *testing.T) {
	words := []string{"aged"}
	ci := buildIndex(t, []string{"acts", "aged"})
	trie := New(ci, 4, NewInterner())
	nodes := insertAll(t, trie, words)

	_, err := trie.Insert([]byte("acts"), nodes[0])
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestInsertRejectsUnmappedByte(t *testing.T) {
	ci := buildIndex(t, []string{"acts"})
	trie := New(ci, 4, NewInterner())
	_, err := trie.Insert([]byte("ac!!"), Nil) // '!' lies outside the observed byte range
	assert.ErrorIs(t, err, ErrUnmappedByte)
}

func TestInternerSharedAcrossWords(t *testing.T) {
	words := []string{"acts", "aged"}
	ci := buildIndex(t, words)
	interner := NewInterner()
	trie := New(ci, 4, interner)
	insertAll(t, trie, words)
	assert.Equal(t, len("actsaged"), interner.Len())
}
