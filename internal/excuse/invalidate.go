package excuse

import "github.com/distr1/archmigrate/internal/policy"

// Invalidate implements §4.I: given every excuse and the set of currently
// valid candidates, propagate "impossible dependency" rejections to
// dependents of an unconsidered item until fixpoint.
//
// blocked reports, for a source name, whether that item was itself rejected
// because it's blocked (vs merely waiting its turn) — this decides whether
// a dependent inherits REJECTED_BLOCKED_BY_ANOTHER_ITEM or
// REJECTED_WAITING_FOR_ANOTHER_ITEM.
func Invalidate(excuses []*Excuse, valid map[string]bool, blocked func(name string) bool) {
	byName := make(map[string]*Excuse, len(excuses))
	dependents := make(map[string][]*Excuse)
	for _, e := range excuses {
		byName[e.Item.Name] = e
		for _, dep := range e.Dependencies {
			dependents[dep] = append(dependents[dep], e)
		}
	}

	var unconsidered []*Excuse
	for _, e := range excuses {
		if !valid[e.Item.Name] {
			unconsidered = append(unconsidered, e)
		}
	}

	seen := make(map[string]bool)
	for len(unconsidered) > 0 {
		cur := unconsidered[0]
		unconsidered = unconsidered[1:]
		if seen[cur.Item.Name] {
			continue
		}
		seen[cur.Item.Name] = true

		for _, dep := range dependents[cur.Item.Name] {
			if dep.Invalid {
				continue
			}
			if hasEquivalentAlternative(dep, cur) {
				continue
			}
			dep.Invalid = true
			dep.Note = "Impossible dependency"
			if blocked != nil && blocked(cur.Item.Name) {
				dep.Verdict = policy.REJECTED_BLOCKED_BY_ANOTHER_ITEM
			} else {
				dep.Verdict = policy.REJECTED_WAITING_FOR_ANOTHER_ITEM
			}
			unconsidered = append(unconsidered, dep)
		}
	}
}

// hasEquivalentAlternative reports whether dep's requirement on blocker can
// still be met by an equivalent binNMU or source variant. The excuse
// construction step doesn't currently track per-dependency alternatives, so
// this is conservative (always false) until the Excuse Builder threads
// equivalence-class candidates through Dependencies; documented as a
// simplification rather than silently assumed away.
func hasEquivalentAlternative(dep, blocker *Excuse) bool {
	return false
}
