// Command wordrect finds word rectangles, lattices, and waffles from a
// sorted dictionary file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spraxlines/wordrect/dictionary"
	"github.com/spraxlines/wordrect/errutil"
	"github.com/spraxlines/wordrect/rectio"
	"github.com/spraxlines/wordrect/search"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	var (
		dictPath   = flag.String("dict", "", "path to a sorted dictionary file, one word per line")
		variant    = flag.String("variant", "rect", "rectangle variant: rect, lattice, or waffle")
		ascending  = flag.Bool("ascending", false, "search dimensions smallest-area-first instead of largest-area-first")
		abortTrump = flag.Bool("abort-if-trumped", true, "abandon a dimension once its area can no longer beat the best found")
		oddOnly    = flag.Bool("odd-only", false, "restrict the search to odd W and H")
		workers    = flag.Int("workers", 0, "worker pool size (0 selects min(16, floor(1.5*NumCPU)))")
		verifyOut  = flag.Bool("verify-output", false, "cross-check every emitted word against an independent membership index")
		verbose    = flag.Bool("v", false, "show a per-dimension progress bar")
		color      = flag.Bool("color", false, "colorize rectangle output")
		stats      = flag.Bool("stats", false, "print a memory and branch-distribution report after loading")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] min_area min_tall max_tall max_area min_char_count per_size_quota total_quota\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 7 {
		flag.Usage()
		os.Exit(2)
	}
	nums := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			log.Fatalf("wordrect: positional argument %q is not an integer: %v", a, err)
		}
		nums[i] = n
	}
	minArea, minTall, maxTall, maxArea, minCharCount, perSizeQuota, totalQuota := nums[0], nums[1], nums[2], nums[3], nums[4], nums[5], nums[6]

	if *dictPath == "" {
		log.Fatalf("wordrect: -dict is required")
	}

	v, err := parseVariant(*variant)
	if err != nil {
		log.Fatalf("wordrect: %v", err)
	}

	loader := dictionary.NewLoader(uint64(minCharCount))
	src := dictionary.NewFileSource(*dictPath)
	loadErr := loader.Load(src)
	if err := errutil.First(loadErr, src.Close()); err != nil {
		log.Fatalf("wordrect: loading %s: %v", *dictPath, err)
	}
	if loader.WordCount() == 0 {
		fmt.Fprintln(os.Stderr, "wordrect: no words loaded")
		os.Exit(1)
	}

	maxFoundWordLength := loader.Lengths()[len(loader.Lengths())-1]
	if maxFoundWordLength < minTall {
		fmt.Fprintln(os.Stderr, "wordrect: longest loaded word is shorter than min_tall")
		os.Exit(1)
	}

	if *stats {
		printStats(loader)
	}

	printer := rectio.NewPrinter(os.Stdout, rectio.WithColor(*color))
	if *verifyOut {
		if err := printer.WithVerify(loader.AllWords()); err != nil {
			log.Fatalf("wordrect: %v", err)
		}
	}

	cfg := search.Config{
		MinTall:        minTall,
		MaxTall:        maxTall,
		MinArea:        minArea,
		MaxArea:        maxArea,
		MaxWordLength:  maxFoundWordLength,
		Ascending:      *ascending,
		Variant:        v,
		OddOnly:        *oddOnly,
		AbortIfTrumped: *abortTrump,
		PerSizeQuota:   perSizeQuota,
		TotalQuota:     totalQuota,
		Workers:        *workers,
	}

	if *verbose {
		log.Printf("wordrect: searching %d-%d tall, area %d-%d, variant=%s", minTall, maxTall, minArea, maxArea, *variant)
	}

	mgr := search.NewManager(cfg, loader, printer.Print)
	if *verbose {
		mgr.SetProgress(printer)
	}
	found := mgr.Run()
	log.Printf("wordrect: found %d rectangle(s)", found)
}

// printStats prints the loaded dictionary's memory report and, per word
// length, how the trie's branches distribute over the dense char indices:
// a heavily front-loaded distribution means the chosen CharIndex variant
// is letting the search try likely letters first.
func printStats(loader *dictionary.Loader) {
	loader.BuildReport().Print(0)
	ci := loader.CharIndex()
	lo, hi := ci.SourceRange()
	fmt.Printf("char index: variant=%s target_size=%d source=[%q..%q]\n",
		ci.Variant(), ci.TargetSize(), lo, hi)
	for _, n := range loader.Lengths() {
		trie := loader.Trie(n)
		fmt.Printf("trie[%d]: %d nodes\n", n, trie.NumNodes())
		for _, bs := range trie.Stats() {
			if bs.BranchCount == 0 {
				continue
			}
			letter, _ := ci.ByteAt(bs.Index)
			fmt.Printf("  %c: %d branches in %d parents (max %d at one depth)\n",
				letter, bs.BranchCount, bs.ParentCount, bs.MaxBranchesAt)
		}
	}
}

func parseVariant(s string) (search.Variant, error) {
	switch s {
	case "rect", "":
		return search.VariantRect, nil
	case "lattice":
		return search.VariantLattice, nil
	case "waffle":
		return search.VariantWaffle, nil
	default:
		return 0, fmt.Errorf("unknown -variant %q (want rect, lattice, or waffle)", s)
	}
}
