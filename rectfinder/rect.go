package rectfinder

import (
	"sync/atomic"

	"github.com/spraxlines/wordrect/wordtrie"
)

// Aborted is returned by Run when the shared watermark has already reached
// or passed this finder's target area.
const Aborted = -1

// RectFinder finds W x H word rectangles from a row-trie (word length W)
// and a column-trie (word length H).
type RectFinder struct {
	rowTrie, colTrie *wordtrie.Trie
	w, h             int
	workerID         int
	quota            int // max rectangles this Run call will emit; <= 0 means unlimited
}

// NewRectFinder returns a finder for w-letter rows and h-letter columns.
// quota caps how many rectangles a single Run call emits before returning;
// pass 0 for no cap.
func NewRectFinder(rowTrie, colTrie *wordtrie.Trie, workerID, quota int) *RectFinder {
	return &RectFinder{
		rowTrie:  rowTrie,
		colTrie:  colTrie,
		w:        rowTrie.WordLength(),
		h:        colTrie.WordLength(),
		workerID: workerID,
		quota:    quota,
	}
}

// Run performs the depth-first search and calls emit for each rectangle
// found. trumping is the shared cross-worker watermark; Run checks it
// before placing every row but the first. The return value is positive
// (the task's own area, W*H) if at least one rectangle was found, 0 if the
// search space was exhausted empty, Aborted if trumped.
func (f *RectFinder) Run(trumping *atomic.Int64, emit func(Rectangle)) int {
	g := newGrid(f.w, f.h)
	found := 0
	area := f.w * f.h

	var place func(r int) int
	place = func(r int) int {
		if r >= 1 && int64(area) <= trumping.Load() {
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

				colIdx := f.colTrie.CharIndex().Index(word[c])
				colNode := f.colTrie.BranchAtIndex(g.colAt(c, r-1), colIdx)
				if colNode == Nil {
					failDepth = c
					break
				}
				g.setCol(c, r, colNode)
			}

			if failDepth == f.w {
				g.rowWordNode[r] = candidate
				if r == f.h-1 {
					found++
					emit(f.collect(g))
					if f.quota > 0 && found >= f.quota {
						return area
					}
					failDepth = f.w - 1
				} else if sub := place(r + 1); sub != 0 {
					return sub
				} else {
					failDepth = f.w - 1
				}
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

	res := place(0)
	if res == 0 && found > 0 {
		return area
	}
	return res
}

// collect reads the completed grid's row words into a Rectangle.
func (f *RectFinder) collect(g *grid) Rectangle {
	rows := make([]string, f.h)
	for r := 0; r < f.h; r++ {
		rows[r] = string(f.rowTrie.Word(g.rowWordNode[r]))
	}
	return Rectangle{
		W:         f.w,
		H:         f.h,
		Rows:      rows,
		Symmetric: isSymmetric(f.w, f.h, rows),
		WorkerID:  f.workerID,
	}
}
