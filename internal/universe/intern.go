package universe

import (
	"sort"
	"strings"

	"github.com/distr1/archmigrate"
)

// Interner hash-conses sets of BinaryId (one CNF clause, or a whole CNF
// depends-set) so that identical clauses across many binaries share one
// backing slice, and so clause identity can be compared by pointer in the
// tester's hot loop (§3, §9).
type Interner struct {
	clauses map[string][]archmigrate.BinaryId
}

// NewInterner returns a ready-to-use Interner.
func NewInterner() *Interner {
	return &Interner{clauses: make(map[string][]archmigrate.BinaryId)}
}

func clauseKey(ids []archmigrate.BinaryId) string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x00")
}

// Intern returns the canonical, deduplicated, sorted slice equal to ids. Two
// calls with sets comparing equal (independent of input order or
// duplicates) return the identical backing slice.
func (in *Interner) Intern(ids []archmigrate.BinaryId) []archmigrate.BinaryId {
	seen := make(map[archmigrate.BinaryId]bool, len(ids))
	dedup := make([]archmigrate.BinaryId, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		dedup = append(dedup, id)
	}
	sort.Slice(dedup, func(i, j int) bool { return dedup[i].String() < dedup[j].String() })

	key := clauseKey(dedup)
	if existing, ok := in.clauses[key]; ok {
		return existing
	}
	in.clauses[key] = dedup
	return dedup
}
