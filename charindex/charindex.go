// Package charindex implements a bijective map between raw byte values and
// a dense small-integer index range: Identity, CompactNatural and FreqFirst
// variants, chosen once from a dictionary histogram.
package charindex

import (
	"sort"

	"github.com/hillbig/rsdic"
)

// Variant names which of the three char-to-index strategies a CharIndex
// uses.
type Variant int

const (
	Identity Variant = iota
	CompactNatural
	FreqFirst
)

func (v Variant) String() string {
	switch v {
	case Identity:
		return "identity"
	case CompactNatural:
		return "compact-natural"
	case FreqFirst:
		return "frequency-first"
	default:
		return "unknown"
	}
}

// CharIndex is a frozen byte-to-dense-index map. It is built once from a
// Histogram and is immutable and safely shared by every Trie and every
// search worker thereafter.
type CharIndex struct {
	variant    Variant
	sourceMin  byte
	sourceMax  byte
	targetSize int

	// table[b-sourceMin] is the dense index for byte b, or targetSize if b
	// is unmapped.
	table []int

	// reverse[idx] is the byte that produced dense index idx; used by
	// ByteAt to go the other way.
	reverse []byte

	// seen freezes the observed-byte bitmap (over the source range) into a
	// succinct rank/select structure. It answers "was this byte observed
	// at all, regardless of the minCount floor" in O(1) without keeping a
	// second [256]bool around, used by Observed.
	seen *rsdic.RSDic
}

// minCountHolesRatio is the variant-selection threshold:
// holes/targetSize > 6/52 + 0.01 picks FreqFirst.
const minCountHolesRatio = 6.0/52.0 + 0.01

// Build selects a CharIndex variant from h and the minCount floor (bytes
// observed fewer than minCount times map to the unmapped sentinel) and
// constructs it. Let holes be the gap count inside the observed byte
// range: a hole-heavy range picks FreqFirst, a lightly holed one
// CompactNatural, an (almost) contiguous one Identity.
func (h *Histogram) Build(minCount uint64) *CharIndex {
	lo, hi, any := h.bounds()
	if !any {
		return &CharIndex{sourceMin: 0, sourceMax: 0, targetSize: 0, table: nil, seen: rsdic.New()}
	}

	type kept struct {
		b     byte
		count uint64
	}
	var keptBytes []kept
	seen := rsdic.New()
	for b := int(lo); b <= int(hi); b++ {
		seen.PushBack(h.counts[byte(b)] > 0)
		if h.counts[byte(b)] >= minCount {
			keptBytes = append(keptBytes, kept{byte(b), h.counts[byte(b)]})
		}
	}

	targetSize := len(keptBytes)
	domainSpread := int(hi) - int(lo) + 1
	holes := domainSpread - targetSize

	var variant Variant
	switch {
	case targetSize > 0 && float64(holes)/float64(targetSize) > minCountHolesRatio:
		variant = FreqFirst
	case holes > 2:
		variant = CompactNatural
	default:
		variant = Identity
	}

	ci := &CharIndex{
		variant:   variant,
		sourceMin: lo,
		sourceMax: hi,
		seen:      seen,
	}
	ci.table = make([]int, domainSpread)
	for i := range ci.table {
		ci.table[i] = targetSize // sentinel: unmapped, fixed up below
	}

	switch variant {
	case Identity:
		// index = byte - sourceMin; every byte in range keeps its own slot,
		// rare bytes below the minCount floor are walled off to the
		// sentinel (domainSpread, one past the last real slot).
		ci.targetSize = domainSpread
		ci.reverse = make([]byte, domainSpread)
		for b := int(lo); b <= int(hi); b++ {
			if h.counts[byte(b)] >= minCount {
				ci.table[b-int(lo)] = b - int(lo)
				ci.reverse[b-int(lo)] = byte(b)
			} else {
				ci.table[b-int(lo)] = domainSpread
			}
		}

	case CompactNatural:
		ci.reverse = make([]byte, 0, targetSize)
		next := 0
		for b := int(lo); b <= int(hi); b++ {
			if h.counts[byte(b)] >= minCount {
				ci.table[b-int(lo)] = next
				ci.reverse = append(ci.reverse, byte(b))
				next++
			}
		}
		ci.targetSize = next

	case FreqFirst:
		sort.SliceStable(keptBytes, func(i, j int) bool {
			if keptBytes[i].count != keptBytes[j].count {
				return keptBytes[i].count > keptBytes[j].count
			}
			return keptBytes[i].b < keptBytes[j].b
		})
		ci.reverse = make([]byte, len(keptBytes))
		for idx, k := range keptBytes {
			ci.table[int(k.b)-int(lo)] = idx
			ci.reverse[idx] = k.b
		}
		ci.targetSize = len(keptBytes)
	}

	return ci
}

// Index returns the dense index for b, or TargetSize() if b is unmapped
// (outside [sourceMin,sourceMax] or below the minCount floor).
func (ci *CharIndex) Index(b byte) int {
	if b < ci.sourceMin || b > ci.sourceMax {
		return ci.targetSize
	}
	return ci.table[int(b)-int(ci.sourceMin)]
}

// TargetSize returns the number of distinct dense indices; Index returns
// exactly this value for any unmapped byte.
func (ci *CharIndex) TargetSize() int { return ci.targetSize }

// SourceRange returns the smallest and largest byte actually observed.
func (ci *CharIndex) SourceRange() (min, max byte) { return ci.sourceMin, ci.sourceMax }

// Variant reports which selection the histogram picked.
func (ci *CharIndex) Variant() Variant { return ci.variant }

// ByteAt recovers the original byte that produced dense index idx. It is
// used by diagnostics (the CLI's -stats report) to turn a dense index back
// into a letter.
func (ci *CharIndex) ByteAt(idx int) (byte, bool) {
	if idx < 0 || idx >= len(ci.reverse) || ci.reverse[idx] == 0 {
		// under Identity a hole inside the source range keeps an index
		// slot but maps no byte; word bytes are always > 0x20, so a zero
		// entry can only be a hole
		return 0, false
	}
	return ci.reverse[idx], true
}

// Observed reports whether b occurred at all in the dictionary the
// histogram was built from, regardless of the minCount floor. It answers
// that question in O(1) against the frozen succinct bitmap rather than
// against the raw count table, which a production deployment would not
// keep around once the CharIndex is built.
func (ci *CharIndex) Observed(b byte) bool {
	if b < ci.sourceMin || b > ci.sourceMax || ci.seen == nil {
		return false
	}
	return ci.seen.Bit(uint64(b) - uint64(ci.sourceMin))
}
