// Package errutil collects small error-handling helpers shared by the
// core packages: First for picking the first non-nil error out of a group,
// and Bug/BugOn for invariant violations that indicate a programming error
// in the core rather than a bad input.
package errutil

import "fmt"

// Debug enables the Bug/BugOn panics. It is off by default so that a
// violated invariant in a release build degrades rather than crashing the
// whole search; tests turn it on via EnableDebug.
var Debug = false

// EnableDebug flips Debug on, meant to be called from TestMain in packages
// that want invariant violations to fail loudly.
func EnableDebug() { Debug = true }

// First returns the first non-nil error among errs, or nil if all are nil.
func First(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Bug panics with a formatted message when Debug is enabled; it is a no-op
// otherwise. Call sites use it for conditions that can only arise from a
// broken forward link or arena index, never from user input.
func Bug(format string, args ...any) {
	if Debug {
		panic(fmt.Sprintf("bug: "+format, args...))
	}
}

// BugOn calls Bug if cond is true.
func BugOn(cond bool, format string, args ...any) {
	if cond {
		Bug(format, args...)
	}
}
