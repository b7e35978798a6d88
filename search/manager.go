// Package search implements the parallel search manager: it enumerates
// (W, H) dimension pairs, fans each out to a bounded worker pool, and
// shares a monotonic "best area found" watermark across workers so a
// worker whose target area can no longer beat the best can abort early.
package search

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"

	"github.com/spraxlines/wordrect/rectfinder"
	"github.com/spraxlines/wordrect/wordtrie"
)

// Variant selects which finder a (W, H) task runs.
type Variant int

const (
	VariantRect Variant = iota
	VariantLattice
	VariantWaffle
)

// Dictionary is the trie collaborator a Manager searches over; satisfied
// by *dictionary.Loader.
type Dictionary interface {
	Trie(wordLength int) *wordtrie.Trie
}

// Progress receives search-lifecycle notifications; satisfied by
// *rectio.Printer. DimensionDone is called from worker goroutines;
// StartSearch and FinishSearch from the goroutine running Manager.Run.
type Progress interface {
	StartSearch(totalPairs int64)
	DimensionDone(w, h int)
	FinishSearch()
}

// Config is a Manager run's parameter set.
type Config struct {
	MinTall, MaxTall int
	MinArea, MaxArea int
	MaxWordLength    int // the widest row word allowed, capped by the dictionary's longest
	Ascending        bool
	Variant          Variant
	OddOnly          bool // restrict to odd W and H, the shape LatticeFinder requires anyway
	AbortIfTrumped   bool
	PerSizeQuota     int // 0 means unlimited per (W,H) task
	TotalQuota       int // 0 means unlimited across the whole run
	Workers          int // 0 selects min(16, floor(1.5*NumCPU))
}

const hardCapWorkers = 16

func workerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	n := int(1.5 * float64(runtime.NumCPU()))
	if n < 1 {
		n = 1
	}
	if n > hardCapWorkers {
		n = hardCapWorkers
	}
	return n
}

// Pair is one (W, H) dimension task.
type Pair struct {
	W, H int
}

// EnumeratePairs returns the (W, H) pairs satisfying MinArea <= W*H <=
// MaxArea, MinTall <= H <= MaxTall, H <= W <= MaxWordLength, ordered by
// area: descending by default (the largest-area-first search order),
// ascending when Config.Ascending is set.
func EnumeratePairs(cfg Config) []Pair {
	var pairs []Pair
	for h := cfg.MinTall; h <= cfg.MaxTall; h++ {
		for w := h; w <= cfg.MaxWordLength; w++ {
			if area := w * h; area >= cfg.MinArea && area <= cfg.MaxArea {
				pairs = append(pairs, Pair{W: w, H: h})
			}
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) bool {
		if cfg.Ascending {
			return a.W*a.H < b.W*b.H
		}
		return a.W*a.H > b.W*b.H
	})
	return pairs
}

// Manager runs the parallel dimension search.
type Manager struct {
	cfg      Config
	dict     Dictionary
	emit     func(rectfinder.Rectangle)
	progress Progress

	watermark  atomic.Int64
	totalFound atomic.Int64
	mu         sync.Mutex // guards emit and total-quota bookkeeping
	start      time.Time
}

// NewManager returns a Manager. emit is the printer/result collaborator;
// it is called from worker goroutines, serialized by Manager's internal
// critical section, so it need not be concurrency-safe itself.
func NewManager(cfg Config, dict Dictionary, emit func(rectfinder.Rectangle)) *Manager {
	return &Manager{cfg: cfg, dict: dict, emit: emit}
}

// SetProgress attaches an optional progress collaborator, notified as
// dimension tasks start and finish.
func (m *Manager) SetProgress(p Progress) { m.progress = p }

// Run enumerates (W, H) pairs and dispatches a finder task per pair to an
// N-worker pool, where N = min(16, floor(1.5*NumCPU)) unless Config.Workers
// overrides it. It returns once every dispatched task has completed or the
// total quota has been met and all outstanding finders have observed the
// terminal watermark.
func (m *Manager) Run() int {
	m.start = time.Now()
	pairs := EnumeratePairs(m.cfg)

	n := workerCount(m.cfg.Workers)
	jobs := make(chan Pair, len(pairs))
	var wg sync.WaitGroup

	workers := n
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if m.progress != nil {
		m.progress.StartSearch(int64(len(pairs)))
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for pair := range jobs {
				if !m.quotaMet() {
					m.runPair(pair, workerID)
				}
				if m.progress != nil {
					m.progress.DimensionDone(pair.W, pair.H)
				}
			}
		}(w)
	}

	for _, p := range pairs {
		if m.quotaMet() {
			break
		}
		jobs <- p
	}
	close(jobs)
	wg.Wait()
	if m.progress != nil {
		m.progress.FinishSearch()
	}

	return int(m.totalFound.Load())
}

func (m *Manager) quotaMet() bool {
	return m.cfg.TotalQuota > 0 && int(m.totalFound.Load()) >= m.cfg.TotalQuota
}

func (m *Manager) runPair(p Pair, workerID int) {
	if m.cfg.OddOnly && (p.W%2 == 0 || p.H%2 == 0) {
		return
	}
	if m.cfg.AbortIfTrumped && int64(p.W*p.H) <= m.watermark.Load() {
		return // a larger rectangle already exists; this pair can't beat it
	}
	rowTrie := m.dict.Trie(p.W)
	colTrie := m.dict.Trie(p.H)
	if rowTrie == nil || colTrie == nil {
		return
	}

	emit := func(r rectfinder.Rectangle) {
		m.mu.Lock()
		defer m.mu.Unlock()
		r.WorkerID = workerID
		r.Elapsed = time.Since(m.start).Seconds()
		m.emit(r)
		m.totalFound.Add(1)
		if m.cfg.TotalQuota > 0 && int(m.totalFound.Load()) >= m.cfg.TotalQuota {
			m.raiseWatermark(int64(m.cfg.MaxArea))
		}
	}

	var area int
	switch m.cfg.Variant {
	case VariantLattice:
		if p.W%2 == 0 || p.H%2 == 0 {
			return
		}
		area = rectfinder.NewLatticeFinder(rowTrie, colTrie, workerID, m.cfg.PerSizeQuota).Run(&m.watermark, emit)
	case VariantWaffle:
		oddWide, oddTall := (p.W+1)/2, (p.H+1)/2
		oddRow, oddCol := m.dict.Trie(oddWide), m.dict.Trie(oddTall)
		if oddRow == nil || oddCol == nil {
			return
		}
		area = rectfinder.NewWaffleFinder(rowTrie, oddRow, colTrie, oddCol, workerID, m.cfg.PerSizeQuota).Run(&m.watermark, emit)
	default:
		area = rectfinder.NewRectFinder(rowTrie, colTrie, workerID, m.cfg.PerSizeQuota).Run(&m.watermark, emit)
	}

	if area > 0 && m.cfg.AbortIfTrumped {
		m.raiseWatermark(int64(area))
	}
}

// raiseWatermark is the monotonic "best area found" update: a
// compare-and-swap retry loop instead of a mutex, since the watermark is
// read far more often than it's written.
func (m *Manager) raiseWatermark(area int64) {
	for {
		cur := m.watermark.Load()
		if area <= cur {
			return
		}
		if m.watermark.CompareAndSwap(cur, area) {
			return
		}
	}
}
