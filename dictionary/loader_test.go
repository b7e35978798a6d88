package dictionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestLoadBuildsOneTriePerLength(t *testing.T) {
	l := NewLoader(1)
	src := NewSliceSource(words("ab", "abet", "acts", "aged", "at", "bold", "dogs"))
	require.NoError(t, l.Load(src))

	assert.ElementsMatch(t, []int{2, 4}, l.Lengths())
	assert.Equal(t, 7, l.WordCount())
	assert.NotNil(t, l.Trie(2))
	assert.NotNil(t, l.Trie(4))
	assert.Nil(t, l.Trie(5))
}

func TestLoadSkipsExactDuplicates(t *testing.T) {
	l := NewLoader(1)
	src := NewSliceSource(words("acts", "acts", "aged"))
	require.NoError(t, l.Load(src))

	assert.Equal(t, 2, l.WordCount())
	assert.Equal(t, 1, l.DuplicateCount())
}

func TestLoadRejectsOutOfOrderInput(t *testing.T) {
	l := NewLoader(1)
	src := NewSliceSource(words("bold", "acts"))
	err := l.Load(src)
	assert.ErrorIs(t, err, ErrUnsorted)
}

func TestContainsMatchesLoadedWords(t *testing.T) {
	l := NewLoader(1)
	src := NewSliceSource(words("acts", "aged", "bold"))
	require.NoError(t, l.Load(src))

	assert.True(t, l.Contains([]byte("acts")))
	assert.True(t, l.Contains([]byte("bold")))
	assert.False(t, l.Contains([]byte("acre")))
	assert.False(t, l.Contains([]byte("act"))) // wrong length entirely
}

func TestVerifyContainsAgreesWithContains(t *testing.T) {
	l := NewLoader(1)
	src := NewSliceSource(words("acts", "aged", "bold"))
	require.NoError(t, l.Load(src))

	for _, w := range []string{"acts", "aged", "bold"} {
		assert.True(t, l.VerifyContains([]byte(w)))
		assert.Equal(t, l.Contains([]byte(w)), l.VerifyContains([]byte(w)))
	}
	assert.False(t, l.VerifyContains([]byte("zzzz")))
}

func TestLoadTolerantRecoversFromUnsortedInput(t *testing.T) {
	l := NewLoader(1)
	unsorted := words("bold", "acts", "dogs", "aged")
	require.NoError(t, l.LoadTolerant(unsorted))

	assert.Equal(t, 4, l.WordCount())
	for _, w := range []string{"bold", "acts", "dogs", "aged"} {
		assert.True(t, l.Contains([]byte(w)))
	}
}

func TestLoadSkipsWordsWithBelowThresholdBytes(t *testing.T) {
	// 'b' occurs once across the dictionary, below minCount=2, so "aaab"
	// is the only word it appears in; "aaaa" and "zzzz" use only bytes
	// observed often enough to stay mapped.
	l := NewLoader(2)
	src := NewSliceSource(words("aaaa", "aaab", "zzzz"))
	require.NoError(t, l.Load(src))

	assert.Equal(t, 2, l.WordCount())
	assert.Equal(t, 1, l.SkippedCount())
	assert.True(t, l.Contains([]byte("aaaa")))
	assert.True(t, l.Contains([]byte("zzzz")))
	assert.False(t, l.Contains([]byte("aaab")))
}

func TestBuildReportCoversEveryLoadedLength(t *testing.T) {
	l := NewLoader(1)
	src := NewSliceSource(words("ab", "acts", "aged", "bold"))
	require.NoError(t, l.Load(src))

	report := l.BuildReport()
	assert.Equal(t, "dictionary", report.Name)
	assert.Greater(t, report.TotalBytes, 0)

	var names []string
	for _, child := range report.Children {
		names = append(names, child.Name)
	}
	assert.Contains(t, names, "trie[2]")
	assert.Contains(t, names, "trie[4]")
	assert.Contains(t, names, "interned words")
	assert.Contains(t, names, "succinct trie (all lengths)")
}
