package archmigrate

import "strings"

// ArchTable is the set of architecture identifiers a migration run knows
// about. Per the design note on global state (§9), this replaces a
// module-level singleton: every Context carries its own table instead of
// every package reaching for a shared map.
type ArchTable map[string]bool

// NewArchTable builds a table from a list of architecture identifiers, e.g.
// as read from a Release file's Architectures field.
func NewArchTable(archs ...string) ArchTable {
	t := make(ArchTable, len(archs))
	for _, a := range archs {
		t[a] = true
	}
	return t
}

// HasArchSuffix reports whether pkg ends in a known architecture identifier
// (e.g. libfoo-amd64) and returns the identifier.
func (t ArchTable) HasArchSuffix(pkg string) (archIdentifier string, ok bool) {
	for a := range t {
		if strings.HasSuffix(pkg, "-"+a) {
			return a, true
		}
	}
	return "", false
}

// LikelyFullySpecified returns true if pkg contains an architecture
// identifier in the middle, e.g. a binNMU migration item libfoo-amd64-1.2.
func (t ArchTable) LikelyFullySpecified(pkg string) bool {
	for a := range t {
		if strings.Contains(pkg, "-"+a+"-") {
			return true
		}
	}
	return false
}

// Sorted returns the architecture identifiers in a deterministic order, used
// whenever output (HeidiResult, nuninst files) must be reproducible across
// runs (§8: "two runs over the same inputs produce bit-identical outputs").
func (t ArchTable) Sorted() []string {
	out := make([]string, 0, len(t))
	for a := range t {
		out = append(out, a)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
