// Package naturalsort orders strings the way readers expect page files to
// sort: maximal digit runs compare as integers, everything else compares by
// code point. "page2" therefore sorts before "page10".
package naturalsort

import "sort"

// Compare is a total order over strings. Digit runs are compared numerically
// with leading zeros ignored; when two runs denote the same value, the longer
// run (more leading zeros) sorts first so the order stays antisymmetric.
// Non-digit segments compare by Unicode code point.
func Compare(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if isDigit(ca) && isDigit(cb) {
			ia, va := digitRun(ra, i)
			jb, vb := digitRun(rb, j)
			if va != vb {
				if va < vb {
					return -1
				}
				return 1
			}
			// Same value: the longer run wins the tie so "001" < "01" < "1".
			la, lb := ia-i, jb-j
			if la != lb {
				if la > lb {
					return -1
				}
				return 1
			}
			i, j = ia, jb
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(ra):
		return 1
	case j < len(rb):
		return -1
	}
	return 0
}

// Less is a convenience wrapper over Compare for sort predicates.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort orders ss in place under the natural order.
func Sort(ss []string) {
	sort.SliceStable(ss, func(i, j int) bool { return Less(ss[i], ss[j]) })
}

// SortBy orders items in place by the natural order of their keys.
func SortBy[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return Less(key(items[i]), key(items[j])) })
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// digitRun consumes the maximal digit run starting at i and returns the index
// past the run plus the run's numeric value. Values are accumulated in a
// uint64 with saturation; page numbers never get near the cap.
func digitRun(rs []rune, i int) (int, uint64) {
	var v uint64
	for i < len(rs) && isDigit(rs[i]) {
		d := uint64(rs[i] - '0')
		if v > (1<<63)/10 {
			v = 1 << 63 // saturate
		} else {
			v = v*10 + d
		}
		i++
	}
	return i, v
}
