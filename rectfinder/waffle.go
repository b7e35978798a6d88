package rectfinder

import (
	"sync/atomic"

	"github.com/spraxlines/wordrect/errutil"
	"github.com/spraxlines/wordrect/wordtrie"
)

// WaffleFinder finds W x H word waffles: every row and every column is a
// full word, but rows alternate between W-letter and oddWide-letter
// ((W+1)/2-letter) words, and columns alternate between H-letter and
// oddTall-letter words, so that a waffle looks like a word rectangle with
// its minor diagonal rows/cols also spelling words.
type WaffleFinder struct {
	rowTrie, oddRowTrie *wordtrie.Trie // row length W, oddWide = (W+1)/2
	colTrie, oddColTrie *wordtrie.Trie // col length H, oddTall = (H+1)/2
	w, h                int
	oddWide, oddTall    int
	workerID            int
	quota               int
}

// NewWaffleFinder returns a finder for a W x H waffle. rowTrie/oddRowTrie
// must hold W-letter and (W+1)/2-letter words respectively; colTrie/
// oddColTrie must hold H-letter and (H+1)/2-letter words. quota caps
// emitted waffles per Run call (0 means unlimited).
func NewWaffleFinder(rowTrie, oddRowTrie, colTrie, oddColTrie *wordtrie.Trie, workerID, quota int) *WaffleFinder {
	w, h := rowTrie.WordLength(), colTrie.WordLength()
	oddWide, oddTall := (w+1)/2, (h+1)/2
	errutil.BugOn(oddRowTrie.WordLength() != oddWide, "waffle odd-row trie must hold %d-letter words, got %d", oddWide, oddRowTrie.WordLength())
	errutil.BugOn(oddColTrie.WordLength() != oddTall, "waffle odd-col trie must hold %d-letter words, got %d", oddTall, oddColTrie.WordLength())
	return &WaffleFinder{
		rowTrie:    rowTrie,
		oddRowTrie: oddRowTrie,
		colTrie:    colTrie,
		oddColTrie: oddColTrie,
		w:          w,
		h:          h,
		oddWide:    oddWide,
		oddTall:    oddTall,
		workerID:   workerID,
		quota:      quota,
	}
}

// waffleGrid is grid's waffle analogue: rowNodes[r] is always sized w+1
// and colNodes[c] is always sized h+1, even on odd rows/cols that only use
// a prefix of that capacity. Odd rows walk their own compressed column
// range 0..oddWide-1 while writing column state back at the real (doubled)
// column index, so every column's history stays at one index across rows.
type waffleGrid struct {
	w, h     int
	rowNodes [][]Node
	colNodes [][]Node
	rowWord  []Node // word-node chosen for row r, in whichever trie owns it
}

func newWaffleGrid(w, h int) *waffleGrid {
	g := &waffleGrid{w: w, h: h}
	g.rowNodes = make([][]Node, h)
	for r := range g.rowNodes {
		g.rowNodes[r] = make([]Node, w+1)
	}
	g.colNodes = make([][]Node, w)
	for c := range g.colNodes {
		g.colNodes[c] = make([]Node, h+1)
	}
	g.rowWord = make([]Node, h)
	return g
}

func (g *waffleGrid) rowAt(r, c int) Node     { return g.rowNodes[r][c+1] }
func (g *waffleGrid) setRow(r, c int, n Node) { g.rowNodes[r][c+1] = n }
func (g *waffleGrid) colAt(c, r int) Node     { return g.colNodes[c][r+1] }
func (g *waffleGrid) setCol(c, r int, n Node) { g.colNodes[c][r+1] = n }

// Run performs the search and calls emit for each waffle found, following
// the same return-value convention as RectFinder.Run.
func (f *WaffleFinder) Run(trumping *atomic.Int64, emit func(Rectangle)) int {
	g := newWaffleGrid(f.w, f.h)
	for c := 0; c < f.w; c++ {
		g.setCol(c, -1, pickColTrie(f, c).Root())
	}
	found := 0
	area := f.w * f.h

	var placeRow func(haveTall int) int
	placeRow = func(haveTall int) int {
		if haveTall > 1 && int64(area) <= trumping.Load() {
			return Aborted
		}

		evenRow := haveTall%2 == 0
		lastCol := f.w - 1
		rowTrie := f.rowTrie
		if !evenRow {
			lastCol = f.oddWide - 1
			rowTrie = f.oddRowTrie
		}
		prevTall := haveTall - 1

		var rowWordNode Node
		switch {
		case haveTall == 0:
			rowWordNode = f.rowTrie.FirstWord(f.rowTrie.Root())
		case haveTall < f.h:
			col0Trie := f.colTrie // column 0 is always even
			letter := col0Trie.Word(g.colAt(0, prevTall))[haveTall]
			idx := rowTrie.CharIndex().Index(letter)
			rowWordNode = rowTrie.FirstWordFromIndex(rowTrie.Root(), idx)
		default:
			found++
			emit(f.collect(g))
			return area // signal success up one level; the caller decides whether to keep searching
		}
		if rowWordNode == Nil {
			return 0
		}

		g.setRow(haveTall, -1, rowTrie.Root())
		col := 0
		evenCol := true

		for rowWordNode != Nil {
			word := rowTrie.Word(rowWordNode)

			for {
				rowIdx := rowTrie.CharIndex().Index(word[col])
				rowNode := rowTrie.BranchAtIndex(g.rowAt(haveTall, col-1), rowIdx)
				g.setRow(haveTall, col, rowNode)

				var parent Node
				var colT *wordtrie.Trie
				realCol := col
				switch {
				case evenRow && haveTall == 0:
					parent, colT = g.colAt(col, -1), pickColTrie(f, col)
				case evenRow && evenCol:
					parent, colT = g.colAt(col, prevTall), f.colTrie
				case evenRow:
					parent, colT = g.colAt(col, prevTall-1), f.oddColTrie
				default:
					// odd rows span only the even real columns
					realCol = col * 2
					parent, colT = g.colAt(realCol, prevTall), f.colTrie
				}
				colIdx := colT.CharIndex().Index(word[col])
				colBranch := colT.BranchAtIndex(parent, colIdx)
				if colBranch == Nil {
					break
				}
				g.setCol(realCol, haveTall, colBranch)

				if col == lastCol {
					g.rowWord[haveTall] = rowWordNode
					sub := placeRow(haveTall + 1)
					if sub < 0 || (sub > 0 && f.quota > 0 && found >= f.quota) {
						return sub
					}
					break
				}
				col++
				evenCol = !evenCol
			}

			next := rowTrie.NextStem(g.rowAt(haveTall, col))
			if next == Nil {
				return 0
			}
			col = rowTrie.Depth(next) - 1
			evenCol = col%2 == 0
			rowWordNode = rowTrie.FirstWord(next)
		}
		return 0
	}

	res := placeRow(0)
	if res == 0 && found > 0 {
		return area
	}
	return res
}

// pickColTrie returns the trie that owns column col: even columns hold
// H-letter words, odd columns hold oddTall-letter words.
func pickColTrie(f *WaffleFinder, col int) *wordtrie.Trie {
	if col%2 == 0 {
		return f.colTrie
	}
	return f.oddColTrie
}

// collect reads the completed grid's row words into a Rectangle. Odd rows
// are oddWide letters long; their letters are placed at the even columns
// with the odd columns left blank, since a waffle's odd rows only span its
// even columns.
func (f *WaffleFinder) collect(g *waffleGrid) Rectangle {
	rows := make([]string, f.h)
	for r := 0; r < f.h; r++ {
		if r%2 == 0 {
			rows[r] = string(f.rowTrie.Word(g.rowWord[r]))
			continue
		}
		word := f.oddRowTrie.Word(g.rowWord[r])
		buf := make([]byte, f.w)
		for c := range buf {
			buf[c] = ' '
		}
		for i, b := range word {
			buf[i*2] = b
		}
		rows[r] = string(buf)
	}
	return Rectangle{
		W:         f.w,
		H:         f.h,
		Rows:      rows,
		Symmetric: f.w == f.h && isSymmetric(f.w, f.h, rows),
		WorkerID:  f.workerID,
	}
}
