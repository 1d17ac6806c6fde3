// Package pagerange parses the "min-max" page window used to project a slice
// of an archive's filtered image list. Indices are zero-based and inclusive.
package pagerange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shishobooks/toshokan/pkg/errcodes"
)

// Range is a value type; the zero Range means "no range requested".
type Range struct {
	Min     int
	Max     int
	present bool
}

// New builds a present range. Callers are expected to pass min <= max; Parse
// is the validating entry point for untrusted input.
func New(min, max int) Range {
	return Range{Min: min, Max: max, present: true}
}

// Parse interprets "min-max". An empty string yields the absent range. Any
// other shape, negative numbers, or min > max fail with a malformed-range
// error. No upper bound is enforced here; out-of-range slicing is reported by
// the entry selector against the actual image list.
func Parse(s string) (Range, error) {
	if s == "" {
		return Range{}, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Range{}, errcodes.MalformedRange(s)
	}
	min, err := strconv.Atoi(parts[0])
	if err != nil || min < 0 {
		return Range{}, errcodes.MalformedRange(s)
	}
	max, err := strconv.Atoi(parts[1])
	if err != nil || max < min {
		return Range{}, errcodes.MalformedRange(s)
	}
	return Range{Min: min, Max: max, present: true}, nil
}

// Present reports whether a range was requested.
func (r Range) Present() bool {
	return r.present
}

// Count returns the number of pages the window selects, not counting a cover
// appendix. Zero for the absent range.
func (r Range) Count() int {
	if !r.present {
		return 0
	}
	return r.Max - r.Min + 1
}

// String renders "min-max", or "" for the absent range, round-tripping Parse.
func (r Range) String() string {
	if !r.present {
		return ""
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
