package rectfinder

import (
	"sync/atomic"

	"github.com/spraxlines/wordrect/errutil"
	"github.com/spraxlines/wordrect/wordtrie"
)

// LatticeFinder finds W x H word lattices: full words run down every even
// row and across every even column; the intervening odd rows/columns carry
// no word constraint at all except at an (odd-row, even-column) crossing,
// which takes whatever letter an even-column word happens to have there.
// (odd-row, odd-column) cells are blank. W and H must both be odd.
type LatticeFinder struct {
	rowTrie, colTrie *wordtrie.Trie
	w, h             int
	workerID         int
	quota            int
}

// NewLatticeFinder returns a finder for w-letter even rows and h-letter
// even columns. w and h must both be odd; quota caps emitted lattices per
// Run call (0 means unlimited).
func NewLatticeFinder(rowTrie, colTrie *wordtrie.Trie, workerID, quota int) *LatticeFinder {
	errutil.BugOn(rowTrie.WordLength()%2 == 0, "lattice row length must be odd, got %d", rowTrie.WordLength())
	errutil.BugOn(colTrie.WordLength()%2 == 0, "lattice column length must be odd, got %d", colTrie.WordLength())
	return &LatticeFinder{
		rowTrie:  rowTrie,
		colTrie:  colTrie,
		w:        rowTrie.WordLength(),
		h:        colTrie.WordLength(),
		workerID: workerID,
		quota:    quota,
	}
}

// Run performs the search and calls emit for each lattice found, following
// the same return-value convention as RectFinder.Run.
func (f *LatticeFinder) Run(trumping *atomic.Int64, emit func(Rectangle)) int {
	g := newGrid(f.w, f.h)
	found := 0
	area := f.w * f.h

	var placeRow func(r int) int
	var placeOddCols func(oddRow, col int) int

	// placeRow places a full word on even row r, validating only the
	// even-column crossings against the colTrie, then hands off to
	// placeOddCols to fill the unconstrained row between r and r+2 (or,
	// at the last even row, finishes and emits).
	placeRow = func(r int) int {
		if r >= 2 && int64(area) <= trumping.Load() {
			return Aborted
		}

		var candidate Node
		if r == 0 {
			candidate = f.rowTrie.FirstWord(f.rowTrie.Root())
		} else {
			firstCol0 := f.colTrie.FirstWord(g.colAt(0, r-1))
			if firstCol0 == Nil {
				return 0
			}
			letter := f.colTrie.Word(firstCol0)[r]
			idx := f.rowTrie.CharIndex().Index(letter)
			candidate = f.rowTrie.FirstWordFromIndex(f.rowTrie.Root(), idx)
		}
		if candidate == Nil {
			return 0
		}

		g.setRow(r, -1, f.rowTrie.Root())
		startCol := 0

		for candidate != Nil {
			word := f.rowTrie.Word(candidate)
			failDepth := f.w

			for c := startCol; c < f.w; c++ {
				rowIdx := f.rowTrie.CharIndex().Index(word[c])
				rowNode := f.rowTrie.BranchAtIndex(g.rowAt(r, c-1), rowIdx)
				g.setRow(r, c, rowNode)

				if c%2 != 0 {
					continue // odd columns of an even row carry no column word
				}
				colIdx := f.colTrie.CharIndex().Index(word[c])
				colNode := f.colTrie.BranchAtIndex(g.colAt(c, r-1), colIdx)
				if colNode == Nil {
					failDepth = c
					break
				}
				g.setCol(c, r, colNode)
			}

			sub := 0
			if failDepth == f.w {
				g.rowWordNode[r] = candidate
				if r == f.h-1 {
					found++
					emit(f.collect(g))
					if f.quota > 0 && found >= f.quota {
						sub = area
					}
				} else {
					sub = placeOddCols(r+1, 0)
				}
				failDepth = f.w - 1 // w is odd, so w-1 is always an even column
			}
			if sub != 0 {
				return sub
			}

			next := f.rowTrie.NextStem(g.rowAt(r, failDepth))
			if next == Nil {
				return 0
			}
			candidate = f.rowTrie.FirstWord(next)
			startCol = f.rowTrie.Depth(next) - 1
		}
		return 0
	}

	// placeOddCols enumerates every possible letter at the unconstrained
	// (oddRow, col) positions for col = 0, 2, 4, ... < w, then recurses
	// into the next even row once the odd row is (arbitrarily) filled.
	// An (odd-row, even-column) cell is constrained only by the
	// even-column word already fixed above it, so every child of that
	// column's current node is a valid choice and must be tried.
	placeOddCols = func(oddRow, col int) int {
		if col >= f.w {
			return placeRow(oddRow + 1)
		}
		if col%2 != 0 {
			return placeOddCols(oddRow, col+1)
		}

		parent := g.colAt(col, oddRow-1)
		for child := f.colTrie.FirstBranch(parent); child != Nil; child = f.colTrie.NextBranch(child) {
			g.setCol(col, oddRow, child)
			if sub := placeOddCols(oddRow, col+1); sub != 0 {
				return sub
			}
		}
		return 0
	}

	res := placeRow(0)
	if res == 0 && found > 0 {
		return area
	}
	return res
}

// collect reads the completed grid into a Rectangle, filling in blanks
// for (odd-row, odd-column) cells and the (odd-row, even-column) letters
// chosen by placeOddCols via LetterAt.
func (f *LatticeFinder) collect(g *grid) Rectangle {
	rows := make([]string, f.h)
	for r := 0; r < f.h; r++ {
		if r%2 == 0 {
			rows[r] = string(f.rowTrie.Word(g.rowWordNode[r]))
			continue
		}
		buf := make([]byte, f.w)
		for c := 0; c < f.w; c++ {
			if c%2 != 0 {
				buf[c] = ' '
				continue
			}
			letter, ok := f.colTrie.LetterAt(g.colAt(c, r))
			if !ok {
				buf[c] = ' '
			} else {
				buf[c] = letter
			}
		}
		rows[r] = string(buf)
	}
	return Rectangle{
		W:         f.w,
		H:         f.h,
		Rows:      rows,
		WorkerID:  f.workerID,
		Symmetric: isSymmetric(f.w, f.h, rows),
	}
}
