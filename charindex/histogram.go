package charindex

import "github.com/bits-and-blooms/bitset"

// Histogram accumulates per-byte occurrence counts over a dictionary, plus
// the set of bytes actually observed. It is the single pass a TrieLoader
// makes before picking a CharIndex variant; the counts and the seen set are
// then handed to Build.
type Histogram struct {
	counts [256]uint64
	seen   *bitset.BitSet
	total  uint64
}

// NewHistogram returns an empty Histogram.
func NewHistogram() *Histogram {
	return &Histogram{seen: bitset.New(256)}
}

// Observe records one occurrence of b.
func (h *Histogram) Observe(b byte) {
	h.counts[b]++
	h.seen.Set(uint(b))
	h.total++
}

// Count returns the number of times b was observed.
func (h *Histogram) Count(b byte) uint64 { return h.counts[b] }

// Total returns the total number of bytes observed.
func (h *Histogram) Total() uint64 { return h.total }

// bounds returns the smallest and largest observed byte, and whether any
// byte was observed at all.
func (h *Histogram) bounds() (lo, hi byte, ok bool) {
	first, any := h.seen.NextSet(0)
	if !any {
		return 0, 0, false
	}
	lo = byte(first)
	hi = byte(first)
	for i, ok2 := h.seen.NextSet(first + 1); ok2; i, ok2 = h.seen.NextSet(i + 1) {
		hi = byte(i)
	}
	return lo, hi, true
}
