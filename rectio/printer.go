// Package rectio is the printer collaborator found rectangles are handed
// to: it owns all terminal/output concerns so the search packages stay
// free of formatting and I/O.
package rectio

import (
	"fmt"
	"io"
	"sync"

	"github.com/aelaguiz/mph"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/spraxlines/wordrect/rectfinder"
)

// Printer formats and emits found rectangles, one at a time, from
// whichever worker goroutine found them. All of its state is guarded by a
// single mutex.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool

	verifier *mph.CHD // non-nil once WithVerify succeeds

	bar   *progressbar.ProgressBar
	count int
}

// Option configures a Printer at construction time.
type Option func(*Printer)

// WithColor enables colorstring-wrapped TTY output for row/column letters.
func WithColor(enabled bool) Option {
	return func(p *Printer) { p.color = enabled }
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer, opts ...Option) *Printer {
	p := &Printer{out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithVerify builds an independent minimal perfect hash over words (the
// whole loaded dictionary, from dictionary.Loader.AllWords), used by
// Print to double-check every row and column of a found rectangle is
// really a dictionary word without re-walking the trie that produced it.
func (p *Printer) WithVerify(words []string) error {
	b := mph.Builder()
	for _, w := range words {
		b.Add([]byte(w), []byte(w))
	}
	table, err := b.Build()
	if err != nil {
		return fmt.Errorf("rectio: building verification hash: %w", err)
	}
	p.verifier = table
	return nil
}

// StartSearch begins a verbose progress bar over the dimension tasks a
// search will run.
func (p *Printer) StartSearch(totalPairs int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar = progressbar.Default(totalPairs, "dimensions")
}

// DimensionDone advances the progress bar past one finished (W,H) task.
// A no-op if StartSearch hasn't been called.
func (p *Printer) DimensionDone(w, h int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Describe(fmt.Sprintf("%dx%d done", w, h))
		_ = p.bar.Add(1)
	}
}

// FinishSearch closes out the progress bar.
func (p *Printer) FinishSearch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// Print formats and writes one found rectangle: dimensions, the letter
// rows, the symmetric-square marker, which worker found it and when. Held
// under Printer's single critical section.
func (p *Printer) Print(r rectfinder.Rectangle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.count++
	header := fmt.Sprintf("#%d  %dx%d  worker=%d  t=%s", p.count, r.W, r.H,
		r.WorkerID, humanize.FormatFloat("#,###.###", r.Elapsed))
	if r.Symmetric {
		header += "  (symmetric)"
	}
	fmt.Fprintln(p.out, header)

	for _, row := range r.Rows {
		fmt.Fprintln(p.out, p.colorize(row))
	}

	if p.verifier != nil {
		if bad := p.firstUnverifiedWord(r); bad != "" {
			fmt.Fprintf(p.out, "WARNING: %q failed independent verification\n", bad)
		}
	}
	fmt.Fprintln(p.out)
}

// colorize wraps a rectangle row in a color escape when enabled,
// leaving width-wrapping to the terminal itself; term.GetSize is consulted
// only to decide whether wrapping would even be legible.
func (p *Printer) colorize(row string) string {
	if !p.color {
		return row
	}
	if w, _, err := term.GetSize(0); err == nil && w > 0 && w < len(row) {
		return row // terminal too narrow to usefully color-wrap; print plain
	}
	return colorstring.Color("[green]" + row + "[reset]")
}

// firstUnverifiedWord returns the first row or (non-blank) column word of
// r that the independent MPH verifier does not recognize, or "" if every
// word checks out.
func (p *Printer) firstUnverifiedWord(r rectfinder.Rectangle) string {
	for _, row := range r.Rows {
		if trimmed := trimBlanks(row); trimmed != "" {
			if p.verifier.Get([]byte(trimmed)) == nil {
				return trimmed
			}
		}
	}
	for c := 0; c < r.W; c++ {
		buf := make([]byte, 0, r.H)
		whole := true
		for _, row := range r.Rows {
			if row[c] == ' ' {
				whole = false
				break
			}
			buf = append(buf, row[c])
		}
		if !whole || len(buf) == 0 {
			continue // a column with any blank cell isn't a full-length word (lattice/waffle)
		}
		if p.verifier.Get(buf) == nil {
			return string(buf)
		}
	}
	return ""
}

func trimBlanks(s string) string {
	for _, b := range []byte(s) {
		if b == ' ' {
			return "" // a row with any blank isn't a contiguous word (lattice/waffle odd rows)
		}
	}
	return s
}
