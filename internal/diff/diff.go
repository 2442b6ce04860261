// Package diff derives minimal edit operations from pairs of full-text
// snapshots so that an editing surface reporting only whole-buffer changes
// can still send the engine precise insert/delete calls.
package diff

import "unicode/utf8"

// Options configures snapshot comparison.
type Options struct {
	// DetectReplacements enables a suffix scan for snapshots of equal
	// length, so an in-place substitution produces a delete/insert pair.
	// When false, equal-length changes yield no operation: the comparison
	// is a pure common-prefix scan and cannot see them.
	DetectReplacements bool
}

// DefaultOptions returns the default comparison options. Replacement
// detection is off: callers that capture edits at the input-event level
// never produce same-length snapshots pairs, and the scan is pure overhead
// for them.
func DefaultOptions() Options {
	return Options{}
}

// Compute compares the previous and new snapshots with a common-prefix scan
// and returns the single operation that transforms prev into next, if one
// exists. For a longer next the operation is an insert at the first
// divergence; for a shorter next it is a delete. Equal-length snapshots
// return ok = false even when their contents differ.
//
// The guarantee is reproduction, not intent: when prev holds a repeated
// pattern around the edit the chosen offset may sit inside the repetition
// rather than where the user typed, but applying the operation to prev
// always yields next for single-region edits.
func Compute(prev, next string) (op Operation, ok bool) {
	if len(next) == len(prev) {
		return Operation{}, false
	}
	i := commonPrefixLen(prev, next)
	if len(next) > len(prev) {
		grown := len(next) - len(prev)
		return Insert(i, next[i:i+grown]), true
	}
	return Delete(i, len(prev)-len(next)), true
}

// ComputeAll compares two snapshots and returns every operation needed to
// transform prev into next, in application order. Length-changing edits
// defer to Compute and yield a single operation. With
// Options.DetectReplacements set, an equal-length difference yields a
// delete followed by an insert covering the changed subrange, widened
// outward to rune boundaries so the insert payload is valid UTF-8.
// Identical snapshots yield nil.
func ComputeAll(prev, next string, opts Options) []Operation {
	if prev == next {
		return nil
	}
	if len(prev) != len(next) {
		op, ok := Compute(prev, next)
		if !ok {
			return nil
		}
		return []Operation{op}
	}
	if !opts.DetectReplacements {
		return nil
	}

	start := commonPrefixLen(prev, next)
	for start > 0 && !utf8.RuneStart(prev[start]) {
		start--
	}
	suffix := commonSuffixLen(prev, next, start)
	end := len(prev) - suffix
	for end < len(prev) && !utf8.RuneStart(prev[end]) {
		end++
	}
	return []Operation{
		Delete(start, end-start),
		Insert(start, next[start:end]),
	}
}

// commonPrefixLen returns the length of the longest common prefix of a and
// b, bounded by the shorter string.
func commonPrefixLen(a, b string) int {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	i := 0
	for i < limit && a[i] == b[i] {
		i++
	}
	return i
}

// commonSuffixLen returns the length of the longest common suffix of two
// equal-length strings without crossing the already-matched prefix.
func commonSuffixLen(a, b string, prefix int) int {
	n := 0
	for n < len(a)-prefix && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}
