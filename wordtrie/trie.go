// Package wordtrie implements a fixed-word-length trie with forward links:
// every node keeps firstWord (the lexicographically smallest word under it)
// and nextStem (a node leading to the first stem strictly greater than it), so
// a rectangle search can jump straight to the next candidate on a mismatch
// instead of backtracking character by character.
package wordtrie

import (
	"errors"
	"fmt"

	"github.com/spraxlines/wordrect/charindex"
	"github.com/spraxlines/wordrect/errutil"
)

const rootIdx idx = 0

// ErrWrongLength is returned by Insert when a word's length does not match
// the trie's fixed word length.
var ErrWrongLength = errors.New("wordtrie: wrong word length")

// ErrUnmappedByte is returned by Insert when a word contains a byte the
// trie's CharIndex has no slot for.
var ErrUnmappedByte = errors.New("wordtrie: unmapped byte")

// ErrOutOfOrder is returned by Insert when a word sorts before the
// previously inserted one under the trie's dense-index order. The
// forward-link bookkeeping cannot recover from unsorted insertion, so it
// is rejected rather than silently corrupting nextStem.
var ErrOutOfOrder = errors.New("wordtrie: words must be inserted in dense-index order")

// Node is the public handle to a trie position, returned by Insert and the
// query primitives below. It is just an arena index; the zero Node is the
// trie's root.
type Node = idx

// Nil is the sentinel "no such node" value.
const Nil = nilIdx

// Trie is a fixed-word-length trie over one shared charindex.CharIndex. It
// must be fed words in ascending dense-index order (see dictionary.Loader);
// Insert's forward-link bookkeeping assumes it.
type Trie struct {
	charIndex  *charindex.CharIndex
	wordLength int
	interner   *Interner
	nodes      []node
}

// New returns an empty Trie for words of exactly wordLength bytes, sharing
// ci and interner with every other Trie the same dictionary load produces.
func New(ci *charindex.CharIndex, wordLength int, interner *Interner) *Trie {
	t := &Trie{charIndex: ci, wordLength: wordLength, interner: interner}
	t.nodes = append(t.nodes, newNode(0, nilIdx, ci.TargetSize()))
	return t
}

// WordLength returns the fixed word length this trie accepts.
func (t *Trie) WordLength() int { return t.wordLength }

// CharIndex returns the shared char index this trie was built with.
func (t *Trie) CharIndex() *charindex.CharIndex { return t.charIndex }

// NumNodes returns the number of nodes currently in the arena, root included.
func (t *Trie) NumNodes() int { return len(t.nodes) }

func (t *Trie) newNodeIdx(depth int32, parent idx) idx {
	t.nodes = append(t.nodes, newNode(depth, parent, t.charIndex.TargetSize()))
	return idx(len(t.nodes) - 1)
}

// Insert adds word to the trie. prevWordNode must be the Node most recently
// returned by Insert on this same Trie (or Nil for the very first word); it
// drives the nextStem/firstWord fixup in readAsDictWord, so words must
// arrive in the dense-index order matching t.charIndex (see
// dictionary.Loader, which sorts for this).
//
// Re-inserting the immediately preceding word is a no-op that returns its
// existing word-node; anything earlier is rejected as out of order.
func (t *Trie) Insert(word []byte, prevWordNode Node) (Node, error) {
	if len(word) != t.wordLength {
		return nilIdx, fmt.Errorf("%w: %q has length %d, want %d", ErrWrongLength, word, len(word), t.wordLength)
	}
	if prevWordNode != nilIdx && t.compareDense(t.Word(prevWordNode), word) > 0 {
		return nilIdx, fmt.Errorf("%w: %q after %q", ErrOutOfOrder, word, t.Word(prevWordNode))
	}

	node := rootIdx
	var wordOff int32
	created := false
	for _, b := range word {
		ci := t.charIndex.Index(b)
		if ci >= t.charIndex.TargetSize() {
			return nilIdx, fmt.Errorf("%w: %q in %q", ErrUnmappedByte, b, word)
		}

		child := t.nodes[node].branches[ci]
		if child == nilIdx {
			if !created {
				wordOff = t.interner.Intern(word)
				created = true
			}
			child = t.newNodeIdx(t.nodes[node].depth+1, node)
			t.nodes[child].stemOff = wordOff

			// Thread the new branch into the first_branch/next_branch
			// linked list, which assumes ascending-index insertion: we
			// only ever need to look leftward for the nearest existing
			// sibling to patch.
			if t.nodes[node].firstBranch == nilIdx {
				t.nodes[node].firstBranch = child
			} else {
				for ib := ci - 1; ib >= 0; ib-- {
					if sib := t.nodes[node].branches[ib]; sib != nilIdx {
						t.nodes[sib].nextBranch = child
						break
					}
				}
			}
			t.nodes[node].branches[ci] = child
		}
		node = child
	}

	if !created {
		return node, nil // word already present
	}
	t.readAsDictWord(node, prevWordNode)
	return node, nil
}

// readAsDictWord runs the sorted-order fixup after a word-node lands: it
// sets firstWord on every ancestor that doesn't already have one, and, when
// there was a previous word, threads nextStem from every ancestor of
// prevWordNode up to (but not including) the nearest common ancestor with
// the new word.
func (t *Trie) readAsDictWord(wordNode, prevWordNode Node) {
	if prevWordNode == nilIdx {
		for parent := wordNode; parent != nilIdx; parent = t.nodes[parent].parent {
			if t.nodes[parent].firstWord != nilIdx {
				break // all shallower nodes already point to an earlier word
			}
			t.nodes[parent].firstWord = wordNode
		}
		return
	}

	nodeParent := wordNode
	prevParent := prevWordNode
	nextChild := wordNode
	for t.nodes[nodeParent].firstWord == nilIdx {
		t.nodes[nodeParent].firstWord = wordNode
		nextChild = nodeParent
		nodeParent = t.nodes[nodeParent].parent
		prevParent = t.nodes[prevParent].parent
		errutil.BugOn(nodeParent == nilIdx, "readAsDictWord: ran off the root without finding a common ancestor")
	}
	for pwn := prevWordNode; pwn != prevParent; pwn = t.nodes[pwn].parent {
		t.nodes[pwn].nextStem = nextChild
	}
}

// Root returns the trie's root node.
func (t *Trie) Root() Node { return rootIdx }

// Parent returns node's parent, or Nil for the root.
func (t *Trie) Parent(node Node) Node { return t.nodes[node].parent }

// Depth returns the number of letters from the root to node.
func (t *Trie) Depth(node Node) int { return int(t.nodes[node].depth) }

// IsWord reports whether node is exactly the word-node of its own stem
// (as opposed to an internal prefix node): a node is a word-node iff its
// firstWord is itself.
func (t *Trie) IsWord(node Node) bool { return t.nodes[node].firstWord == node }

// FirstWord returns the lexicographically smallest word-node reachable
// under node (node included), or Nil if node has no completions at all.
func (t *Trie) FirstWord(node Node) Node { return t.nodes[node].firstWord }

// NextStem returns the node whose FirstWord is the first word with a prefix
// (at node's depth) strictly greater than node's own stem, or Nil if node's
// stem is the trie's last. The returned node is the child of the common
// ancestor on that word's path, usually an internal node, so callers chase
// it with FirstWord.
func (t *Trie) NextStem(node Node) Node { return t.nodes[node].nextStem }

// BranchAtIndex returns the child of node reached by dense char index i,
// or Nil.
func (t *Trie) BranchAtIndex(node Node, i int) Node { return t.nodes[node].branches[i] }

// FirstWordFromIndex returns the first-word node of the smallest branch of
// node whose dense index is >= i. It walks node's firstBranch/nextBranch
// chain, so the cost is proportional to the number of actual branches
// rather than the char index's target size. The chain is keyed off each
// branch's dense index, not its raw letter, since dense order and byte
// order diverge under FreqFirst.
func (t *Trie) FirstWordFromIndex(node Node, i int) Node {
	n := &t.nodes[node]
	if direct := n.branches[i]; direct != nilIdx {
		return t.nodes[direct].firstWord
	}
	for b := n.firstBranch; b != nilIdx; b = t.nodes[b].nextBranch {
		if t.branchIndex(node, b) >= i {
			return t.nodes[b].firstWord
		}
	}
	return nilIdx
}

// compareDense compares two equal-length words in dense-index order, the
// order insertion and the forward links are defined over. Under Identity
// and CompactNatural this coincides with byte order; under FreqFirst it
// does not.
func (t *Trie) compareDense(a, b []byte) int {
	for i := range a {
		ai, bi := t.charIndex.Index(a[i]), t.charIndex.Index(b[i])
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	}
	return 0
}

// branchIndex returns the dense char index of the letter that leads from
// parent to branch.
func (t *Trie) branchIndex(parent, branch Node) int {
	depth := t.nodes[parent].depth
	letter := t.interner.Bytes(t.nodes[branch].stemOff, t.wordLength)[depth]
	return t.charIndex.Index(letter)
}

// Word returns the full word stored at a word-node. Calling it on a
// non-word-node still returns the stem of the first word under it, which is
// only meaningful as a prefix.
func (t *Trie) Word(node Node) []byte {
	return t.interner.Bytes(t.nodes[node].stemOff, t.wordLength)
}

// Stem is an alias for Word kept for callers walking internal nodes where
// "stem" reads more naturally than "word".
func (t *Trie) Stem(node Node) []byte { return t.Word(node) }

// FirstBranch returns node's smallest-index child, or Nil. Combined with
// NextBranch this walks every actual branch of a node in ascending index
// order, used by the lattice finder to enumerate unconstrained positions.
func (t *Trie) FirstBranch(node Node) Node { return t.nodes[node].firstBranch }

// NextBranch returns node's next sibling in ascending index order, or Nil.
func (t *Trie) NextBranch(node Node) Node { return t.nodes[node].nextBranch }

// LetterAt returns the byte consumed on the edge leading into node from
// its parent (node's own depth's letter). It is derived from node's
// firstWord rather than stored directly: an internal node has no
// dedicated byte of its own, and firstWord always shares node's prefix.
func (t *Trie) LetterAt(node Node) (byte, bool) {
	fw := t.nodes[node].firstWord
	if fw == nilIdx || t.nodes[node].depth == 0 {
		return 0, false
	}
	return t.interner.Bytes(t.nodes[fw].stemOff, t.wordLength)[t.nodes[node].depth-1], true
}
