package dictionary

import (
	"sort"
	"strconv"

	succincttrie "github.com/siongui/go-succinct-data-structure-trie"

	"github.com/spraxlines/wordrect/utils"
)

// BuildReport walks the Loader's state and its interned buffer to produce
// a hierarchical utils.MemReport: one child per loaded word length (its
// trie's estimated node cost) alongside a sibling showing what a succinct
// trie encoding of the same words would cost instead. Never on the load's
// hot path; call it only when asked to (e.g. a CLI "-stats" flag).
func (l *Loader) BuildReport() utils.MemReport {
	const bytesPerNode = 48 // arena node: int32 fields + branches slice header, a rough accounting

	children := utils.Map(l.lengths, func(n int) utils.MemReport {
		nodes := l.tries[n].NumNodes()
		return utils.MemReport{
			Name:       lengthLabel(n),
			TotalBytes: nodes * bytesPerNode,
		}
	})
	children = append(children, utils.MemReport{
		Name:       "interned words",
		TotalBytes: l.interner.Len(),
	})
	children = append(children, utils.MemReport{
		Name:       "succinct trie (all lengths)",
		TotalBytes: l.succinctBytes(),
	})

	return utils.MemReport{
		Name:       "dictionary",
		TotalBytes: l.interner.Len(),
		Children:   children,
	}
}

func (l *Loader) succinctBytes() int {
	var allWords []string
	for _, words := range l.wordLists {
		allWords = append(allWords, words...)
	}
	sort.Strings(allWords) // the succinct trie requires alphabetical insertion

	st := succincttrie.Trie{}
	st.Init()
	for _, w := range allWords {
		st.Insert(w)
	}
	return len(st.Encode())
}

func lengthLabel(n int) string {
	return "trie[" + strconv.Itoa(n) + "]"
}
