package archmigrate

import (
	"strconv"
	"strings"
)

// Version is a parsed Debian-style package version: [epoch:]upstream[-revision].
// Epoch defaults to 0 when absent. Comparison follows dpkg's algorithm, not
// semver: alternating runs of non-digits and digits are compared in order,
// with "~" sorting before everything, including the empty string.
type Version struct {
	Epoch    int
	Upstream string
	Revision string

	raw string // original string, for String()
}

func (v Version) String() string {
	if v.raw != "" {
		return v.raw
	}
	var b strings.Builder
	if v.Epoch != 0 {
		b.WriteString(strconv.Itoa(v.Epoch))
		b.WriteByte(':')
	}
	b.WriteString(v.Upstream)
	if v.Revision != "" {
		b.WriteByte('-')
		b.WriteString(v.Revision)
	}
	return b.String()
}

// ParseVersion parses s into a Version. Malformed epochs are treated as 0 and
// folded into the upstream part, matching dpkg's lenient behaviour.
func ParseVersion(s string) Version {
	v := Version{raw: s}
	rest := s
	if idx := strings.IndexByte(rest, ':'); idx > -1 {
		if n, err := strconv.Atoi(rest[:idx]); err == nil {
			v.Epoch = n
			rest = rest[idx+1:]
		}
	}
	if idx := strings.LastIndexByte(rest, '-'); idx > -1 {
		v.Upstream = rest[:idx]
		v.Revision = rest[idx+1:]
	} else {
		v.Upstream = rest
		v.Revision = ""
	}
	return v
}

// orderChar assigns every byte a sort weight so that '~' sorts below
// everything (including end-of-string), letters sort below '~''s complement
// but above digits do not apply here (digits are handled separately by
// compareFragment), and all other bytes sort by their ASCII value shifted up.
func orderChar(c byte) int {
	switch {
	case c == '~':
		return -1
	case c >= '0' && c <= '9':
		return 0
	case isAlpha(c):
		return int(c)
	case c == 0:
		return 0
	default:
		return int(c) + 256
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// compareNonDigits implements dpkg's "compare non-digit part" step: walk both
// strings comparing orderChar values until they diverge or either is
// exhausted (end-of-string sorts like a null byte, i.e. lower than anything
// except another '~').
func compareNonDigits(a, b string) int {
	i, j := 0, 0
	for {
		var ca, cb byte
		if i < len(a) {
			ca = a[i]
		}
		if j < len(b) {
			cb = b[j]
		}
		if ca == 0 && cb == 0 {
			return 0
		}
		wa, wb := orderChar(ca), orderChar(cb)
		if wa != wb {
			if wa < wb {
				return -1
			}
			return 1
		}
		if ca == 0 || cb == 0 {
			return 0
		}
		i++
		j++
	}
}

func splitDigitRun(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func splitNonDigitRun(s string) (nondigits, rest string) {
	i := 0
	for i < len(s) && !(s[i] >= '0' && s[i] <= '9') {
		i++
	}
	return s[:i], s[i:]
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}

// compareFragment compares one upstream-or-revision string, alternating
// between non-digit and digit runs the way dpkg's verrevcmp does.
func compareFragment(a, b string) int {
	for len(a) > 0 || len(b) > 0 {
		na, ra := splitNonDigitRun(a)
		nb, rb := splitNonDigitRun(b)
		if c := compareNonDigits(na, nb); c != 0 {
			return c
		}
		a, b = ra, rb

		da, ra2 := splitDigitRun(a)
		db, rb2 := splitDigitRun(b)
		da = trimLeadingZeros(da)
		db = trimLeadingZeros(db)
		if len(da) != len(db) {
			if len(da) < len(db) {
				return -1
			}
			return 1
		}
		if da != db {
			if da < db {
				return -1
			}
			return 1
		}
		a, b = ra2, rb2
	}
	return 0
}

// Compare returns -1, 0 or 1 as v is less than, equal to or greater than w,
// using dpkg's epoch/upstream/revision ordering (§3 of the data model: this
// is the ordering every "newerintesting"/downgrade check in the excuse
// builder and migration driver relies on).
func (v Version) Compare(w Version) int {
	if v.Epoch != w.Epoch {
		if v.Epoch < w.Epoch {
			return -1
		}
		return 1
	}
	if c := compareFragment(v.Upstream, w.Upstream); c != 0 {
		return c
	}
	return compareFragment(v.Revision, w.Revision)
}

func (v Version) Less(w Version) bool    { return v.Compare(w) < 0 }
func (v Version) Equal(w Version) bool   { return v.Compare(w) == 0 }
func (v Version) Greater(w Version) bool { return v.Compare(w) > 0 }
