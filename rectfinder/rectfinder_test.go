package rectfinder

import (
	"os"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraxlines/wordrect/dictionary"
	"github.com/spraxlines/wordrect/errutil"
)

func TestMain(m *testing.M) {
	errutil.EnableDebug()
	os.Exit(m.Run())
}

func loadWords(t *testing.T, ss ...string) *dictionary.Loader {
	t.Helper()
	sorted := append([]string(nil), ss...)
	sort.Strings(sorted)
	words := make([][]byte, len(sorted))
	for i, s := range sorted {
		words[i] = []byte(s)
	}
	l := dictionary.NewLoader(1)
	require.NoError(t, l.Load(dictionary.NewSliceSource(words)))
	return l
}

func runAll(f interface {
	Run(*atomic.Int64, func(Rectangle)) int
}) []Rectangle {
	var out []Rectangle
	var watermark atomic.Int64
	f.Run(&watermark, func(r Rectangle) { out = append(out, r) })
	return out
}

// squareWords is a 4x4 grid built symmetric by construction (grid[r][c] ==
// grid[c][r]), so its own rows are exactly its own columns: any dictionary
// containing them as words is guaranteed to contain a 4x4 word square.
var squareWords = []string{"abcd", "befg", "cfhi", "dgij"}

// A dictionary that contains an exact 4x4 word square must be found, rows
// and columns both spelling words.
func TestRectFinderFindsFourByFourSquare(t *testing.T) {
	words := squareWords
	l := loadWords(t, words...)
	finder := NewRectFinder(l.Trie(4), l.Trie(4), 0, 0)

	rects := runAll(finder)
	require.NotEmpty(t, rects)
	for _, r := range rects {
		assert.Equal(t, 4, r.W)
		assert.Equal(t, 4, r.H)
		for c := 0; c < 4; c++ {
			col := make([]byte, 4)
			for rr := 0; rr < 4; rr++ {
				col[rr] = r.Rows[rr][c]
			}
			assert.Contains(t, words, string(col), "column %d must be a dictionary word", c)
		}
	}
}

// With W != H, rows use a different trie (length W) than columns
// (length H), and the Symmetric flag must stay unset.
func TestRectFinderAsymmetricRectangle(t *testing.T) {
	l := loadWords(t,
		"abet", "aced", "aces", "ante", // 4-letter rows
		"aa", "bc", "ee", "tt", // 2-letter columns (not necessarily real words, just fixture data)
	)
	finder := NewRectFinder(l.Trie(4), l.Trie(2), 0, 0)
	rects := runAll(finder)
	for _, r := range rects {
		assert.Equal(t, 4, r.W)
		assert.Equal(t, 2, r.H)
		assert.False(t, r.Symmetric)
	}
}

// A dictionary with no valid completion must return an empty result, not
// an error or panic.
func TestRectFinderNoRectangleExists(t *testing.T) {
	l := loadWords(t, "abcd", "efgh") // no word starts with 'b' or 'f', so column 1 can never start
	finder := NewRectFinder(l.Trie(4), l.Trie(4), 0, 0)
	rects := runAll(finder)
	assert.Empty(t, rects)
}

// TestRectFinderQuotaStopsEarly checks that a quota > 0 halts Run once
// enough rectangles have been emitted, returning the task's area.
func TestRectFinderQuotaStopsEarly(t *testing.T) {
	words := squareWords
	l := loadWords(t, words...)
	finder := NewRectFinder(l.Trie(4), l.Trie(4), 0, 1)

	var watermark atomic.Int64
	var count int
	result := finder.Run(&watermark, func(Rectangle) { count++ })
	assert.Equal(t, 1, count)
	assert.Equal(t, 16, result) // area = w*h = 4*4
}

// An unlimited-quota run that exhausts its search space after finding
// rectangles still reports success: its own area, not 0.
func TestRectFinderReturnsAreaWhenExhaustedWithFinds(t *testing.T) {
	l := loadWords(t, squareWords...)
	finder := NewRectFinder(l.Trie(4), l.Trie(4), 0, 0)

	var watermark atomic.Int64
	var count int
	result := finder.Run(&watermark, func(Rectangle) { count++ })
	assert.Positive(t, count)
	assert.Equal(t, 16, result)
}

// A trumping area already recorded by another worker must cancel the
// search immediately, once at least one row has been placed.
func TestRectFinderWatermarkAborts(t *testing.T) {
	words := squareWords
	l := loadWords(t, words...)
	finder := NewRectFinder(l.Trie(4), l.Trie(4), 0, 0)

	var watermark atomic.Int64
	watermark.Store(1 << 30) // bigger than any area this finder could report
	var count int
	result := finder.Run(&watermark, func(Rectangle) { count++ })
	assert.Equal(t, Aborted, result)
	assert.Zero(t, count)
}

// Repeated runs over the same dictionary must emit rectangles in the same
// order, since the search is a plain depth-first walk over a fixed trie.
func TestRectFinderDeterministicOrdering(t *testing.T) {
	words := squareWords
	l := loadWords(t, words...)

	first := runAll(NewRectFinder(l.Trie(4), l.Trie(4), 0, 0))
	second := runAll(NewRectFinder(l.Trie(4), l.Trie(4), 0, 0))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Rows, second[i].Rows)
	}
}

// A 3x3 word lattice has full 3-letter words on rows 0 and 2 and columns
// 0 and 2, with row 1 carrying only the letters forced by columns 0 and 2
// at its even positions and a blank at its one odd position.
func TestLatticeFinderThreeByThree(t *testing.T) {
	words := []string{"cat", "cot", "tar", "tor"}
	l := loadWords(t, words...)
	finder := NewLatticeFinder(l.Trie(3), l.Trie(3), 0, 0)
	rects := runAll(finder)
	require.NotEmpty(t, rects)
	for _, r := range rects {
		require.Len(t, r.Rows, 3)
		assert.Equal(t, byte(' '), r.Rows[1][1]) // (odd, odd) is blank

		col0 := string([]byte{r.Rows[0][0], r.Rows[1][0], r.Rows[2][0]})
		col2 := string([]byte{r.Rows[0][2], r.Rows[1][2], r.Rows[2][2]})
		assert.Contains(t, words, col0)
		assert.Contains(t, words, col2)
	}
}

// TestLatticeFinderSetsSymmetricFlag checks that collect reports
// Symmetric consistently with the grid's actual row/column equality,
// rather than leaving it at its zero value.
func TestLatticeFinderSetsSymmetricFlag(t *testing.T) {
	words := []string{"cat", "cot", "tar", "tor"}
	l := loadWords(t, words...)
	finder := NewLatticeFinder(l.Trie(3), l.Trie(3), 0, 0)
	rects := runAll(finder)
	require.NotEmpty(t, rects)
	for _, r := range rects {
		want := true
		for row := 0; row < r.H; row++ {
			for col := 0; col < r.W; col++ {
				if r.Rows[row][col] != r.Rows[col][row] {
					want = false
				}
			}
		}
		assert.Equal(t, want, r.Symmetric)
	}
}

// TestLatticeFinderRejectsEvenDimensions documents the invariant (guarded
// by errutil.BugOn with Debug enabled) that both dimensions must be odd.
func TestLatticeFinderRejectsEvenDimensions(t *testing.T) {
	l := loadWords(t, "acts", "aged")
	assert.Panics(t, func() {
		NewLatticeFinder(l.Trie(4), l.Trie(4), 0, 0)
	})
}

// TestWaffleFinderThreeByThree builds a 3x3 waffle by hand (row0/row2 full
// 3-letter words, row1 an oddWide=2-letter word at the even columns) and
// checks the finder recovers a grid whose minor columns are valid words
// too, not just its rows.
func TestWaffleFinderThreeByThree(t *testing.T) {
	l := loadWords(t, "cat", "cob", "tan", "ban", "oa", "aa")
	finder := NewWaffleFinder(l.Trie(3), l.Trie(2), l.Trie(3), l.Trie(2), 0, 0)

	rects := runAll(finder)
	require.NotEmpty(t, rects)
	for _, r := range rects {
		require.Len(t, r.Rows, 3)
		assert.Equal(t, byte(' '), r.Rows[1][1]) // odd row's odd column is blank

		col0 := string([]byte{r.Rows[0][0], r.Rows[1][0], r.Rows[2][0]})
		col2 := string([]byte{r.Rows[0][2], r.Rows[1][2], r.Rows[2][2]})
		col1 := string([]byte{r.Rows[0][1], r.Rows[2][1]})
		oddRow := string([]byte{r.Rows[1][0], r.Rows[1][2]})

		assert.True(t, l.Contains([]byte(col0)), "column 0 %q must be a 3-letter word", col0)
		assert.True(t, l.Contains([]byte(col2)), "column 2 %q must be a 3-letter word", col2)
		assert.True(t, l.Contains([]byte(col1)), "column 1 %q must be a 2-letter word", col1)
		assert.True(t, l.Contains([]byte(oddRow)), "row 1 %q must be a 2-letter word", oddRow)
	}
}

// TestWaffleFinderRejectsMismatchedOddTries documents that NewWaffleFinder
// validates the odd-row/odd-col tries' word lengths against (W+1)/2 and
// (H+1)/2.
func TestWaffleFinderRejectsMismatchedOddTries(t *testing.T) {
	l := loadWords(t, "cat", "cob", "tan", "ban", "oa", "aa", "abc")
	assert.Panics(t, func() {
		NewWaffleFinder(l.Trie(3), l.Trie(3), l.Trie(3), l.Trie(2), 0, 0)
	})
}
