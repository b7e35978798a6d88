package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	rbtzmph "github.com/SaveTheRbtz/mph"
	"github.com/dgryski/go-radixsort"
	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/zeebo/xxh3"

	"github.com/spraxlines/wordrect/charindex"
	"github.com/spraxlines/wordrect/wordtrie"
)

// Loader builds one wordtrie.Trie per word length from a Source, sharing a
// single CharIndex (selected from a histogram over the whole dictionary)
// and a single interned byte buffer.
type Loader struct {
	minCount uint64

	charIndex *charindex.CharIndex
	interner  *wordtrie.Interner
	tries     map[int]*wordtrie.Trie
	lengths   []int

	wordLists  map[int][]string // every word inserted, by length, for MPH verification
	membership map[int]*rbtzmph.Table

	verify *iradix.Tree // independent structure queried by VerifyContains

	wordCount int
	dupCount  int
	skipCount int
}

// NewLoader returns an empty Loader. minCount is the CharIndex selection
// floor: bytes observed fewer than minCount times are walled off from the
// dense index range.
func NewLoader(minCount uint64) *Loader {
	return &Loader{
		minCount:   minCount,
		tries:      make(map[int]*wordtrie.Trie),
		wordLists:  make(map[int][]string),
		membership: make(map[int]*rbtzmph.Table),
		verify:     iradix.New(),
	}
}

// CharIndex returns the CharIndex selected during Load.
func (l *Loader) CharIndex() *charindex.CharIndex { return l.charIndex }

// Lengths returns the distinct word lengths loaded, in ascending order.
func (l *Loader) Lengths() []int { return l.lengths }

// Trie returns the trie for word length n, or nil if no words of that
// length were loaded.
func (l *Loader) Trie(n int) *wordtrie.Trie { return l.tries[n] }

// WordCount returns the number of distinct words successfully inserted.
func (l *Loader) WordCount() int { return l.wordCount }

// DuplicateCount returns the number of input words skipped as exact
// duplicates of their immediate predecessor at the same length.
func (l *Loader) DuplicateCount() int { return l.dupCount }

// SkippedCount returns the number of input words discarded because they
// contained a byte walled off by the CharIndex's minCount floor: the word
// is dropped, the file keeps scanning.
func (l *Loader) SkippedCount() int { return l.skipCount }

// Load makes two passes over src: the first builds the character
// histogram, the second inserts every word into its length's trie. src
// must yield words in ascending byte order; out-of-order input surfaces
// as ErrUnsorted from src itself or, if a later word maps to an earlier
// dense index under the chosen CharIndex, as wordtrie.ErrOutOfOrder from
// the insertion. Callers with genuinely unsorted data should use
// LoadTolerant instead.
func (l *Loader) Load(src Source) error {
	h := charindex.NewHistogram()
	for {
		word, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for _, b := range word {
			h.Observe(b)
		}
	}
	l.charIndex = h.Build(l.minCount)

	if err := src.Rewind(); err != nil {
		return fmt.Errorf("dictionary: rewind for insertion pass: %w", err)
	}
	l.interner = wordtrie.NewInterner()

	prevNode := make(map[int]wordtrie.Node)
	lastWord := make(map[int][]byte)
	lastHash := make(map[int]uint64)

	insertOne := func(word []byte) error {
		n := len(word)
		hash := xxh3.Hash(word)
		if lw, seen := lastWord[n]; seen && hash == lastHash[n] && bytes.Equal(lw, word) {
			l.dupCount++
			return nil
		}

		trie, ok := l.tries[n]
		if !ok {
			trie = wordtrie.New(l.charIndex, n, l.interner)
			l.tries[n] = trie
			l.lengths = append(l.lengths, n)
			prevNode[n] = wordtrie.Nil
		}

		wordNode, err := trie.Insert(word, prevNode[n])
		if errors.Is(err, wordtrie.ErrUnmappedByte) {
			l.skipCount++
			return nil
		}
		if err != nil {
			return fmt.Errorf("dictionary: inserting %q: %w", word, err)
		}

		prevNode[n] = wordNode
		lastWord[n] = append([]byte(nil), word...)
		lastHash[n] = hash

		l.wordLists[n] = append(l.wordLists[n], string(word))
		l.verify, _, _ = l.verify.Insert(word, n)
		l.wordCount++
		return nil
	}

	if l.charIndex.Variant() == charindex.FreqFirst {
		// Under FreqFirst the tries' dense-index order diverges from the
		// byte order the file is sorted in, and insertion is only defined
		// over dense order. Buffer the words and re-sort before replay.
		var all [][]byte
		for {
			word, ok, err := src.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			all = append(all, append([]byte(nil), word...))
		}
		sort.SliceStable(all, func(i, j int) bool { return l.denseLess(all[i], all[j]) })
		for _, w := range all {
			if err := insertOne(w); err != nil {
				return err
			}
		}
	} else {
		for {
			word, ok, err := src.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if err := insertOne(word); err != nil {
				return err
			}
		}
	}

	sort.Ints(l.lengths)
	l.buildMembership()
	return nil
}

// denseLess orders words by their dense char indices, shorter prefixes
// first. Within one length this is exactly the order wordtrie.Trie.Insert
// requires; across lengths it only needs to be consistent.
func (l *Loader) denseLess(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai, bi := l.charIndex.Index(a[i]), l.charIndex.Index(b[i])
		if ai != bi {
			return ai < bi
		}
	}
	return len(a) < len(b)
}

// LoadTolerant takes words in arbitrary order (e.g. from ReadWordsUnsorted),
// groups them by length, radix-sorts each group into byte order, merges the
// groups into one byte-ordered stream, and replays that stream through the
// same insertion path as Load: the explicit
// opt-in alternative to Load rejecting unsorted input outright. Should the
// replayed histogram select FreqFirst, Load's own dense re-sort takes over
// from there.
func (l *Loader) LoadTolerant(words [][]byte) error {
	byLength := make(map[int][][]byte)
	for _, w := range words {
		byLength[len(w)] = append(byLength[len(w)], append([]byte(nil), w...))
	}

	var lengths []int
	for n := range byLength {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	var rebuilt [][]byte
	for _, n := range lengths {
		group := byLength[n]
		radixsort.Bytes(group)
		rebuilt = append(rebuilt, group...)
	}
	// Load's source checks byte order across the whole stream, not per
	// length, so the sorted groups are merged before replay.
	sort.SliceStable(rebuilt, func(i, j int) bool { return bytes.Compare(rebuilt[i], rebuilt[j]) < 0 })

	return l.Load(NewSliceSource(rebuilt))
}

// buildMembership constructs, per length, an independent minimal perfect
// hash membership index over the words actually inserted, used by
// Contains as an O(1) cross-check that never walks the trie.
func (l *Loader) buildMembership() {
	for n, words := range l.wordLists {
		l.membership[n] = rbtzmph.Build(words)
	}
}

// Contains reports whether word was loaded, checked purely against the
// per-length MPH table built by buildMembership, independent of any trie
// traversal. An MPH lookup on a non-member key returns an arbitrary slot,
// so the slot's word is compared back against the query.
func (l *Loader) Contains(word []byte) bool {
	n := len(word)
	table, ok := l.membership[n]
	if !ok {
		return false
	}
	words := l.wordLists[n]
	idx, _ := table.Lookup(string(word))
	if int(idx) >= len(words) {
		return false
	}
	return words[idx] == string(word)
}

// AllWords returns every distinct word loaded, across all lengths, in
// ascending-length then insertion order. Used by rectio.Printer's verify
// mode to build an independent membership index over the whole
// dictionary.
func (l *Loader) AllWords() []string {
	var out []string
	for _, n := range l.lengths {
		out = append(out, l.wordLists[n]...)
	}
	return out
}

// VerifyContains checks word against the independently-built immutable
// radix tree rather than the MPH table or any trie, so a bug shared between
// the trie and the MPH construction wouldn't go unnoticed. Neither the CLI
// nor search.Manager calls it.
func (l *Loader) VerifyContains(word []byte) bool {
	_, ok := l.verify.Get(word)
	return ok
}
