package tester

import (
	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/universe"
)

// snapshot is the solver's whole working state: packages committed to be
// installed (musts), packages ruled out (never), and disjunctions still
// awaiting a decision (choices). §9 requires the search itself to be written
// iteratively with an explicit stack rather than recursively; snapshot is
// what that stack holds copies of.
type snapshot struct {
	musts   map[archmigrate.BinaryId]bool
	never   map[archmigrate.BinaryId]bool
	choices []archmigrate.Clause
}

// choicePoint is a suspended branch: base is the state to resume from, and
// candidates lists the alternatives of one disjunction not yet tried.
type choicePoint struct {
	base       snapshot
	candidates []archmigrate.BinaryId
}

// computeEssential derives, per architecture, the unit-propagation closure
// of every essential binary (§4.B "pseudo-essential set"), filtered against
// present exactly as every other propagation step is. Only unit propagation
// runs here; any disjunction an essential package pulls in that isn't
// already resolved to a single candidate is left as a pending choice, to be
// decided fresh by each query that seeds from this snapshot.
func computeEssential(u *universe.PackageUniverse, archs archmigrate.ArchTable, essentialIDs []archmigrate.BinaryId, present map[archmigrate.BinaryId]bool) map[string]snapshot {
	byArch := make(map[string][]archmigrate.BinaryId)
	for _, id := range essentialIDs {
		byArch[id.Arch] = append(byArch[id.Arch], id)
	}
	out := make(map[string]snapshot, len(archs))
	for arch := range archs {
		s := snapshot{
			musts:   make(map[archmigrate.BinaryId]bool),
			never:   make(map[archmigrate.BinaryId]bool),
			choices: nil,
		}
		for _, id := range byArch[arch] {
			s.musts[id] = true
		}
		propagate(u, present, &s)
		out[arch] = s
	}
	return out
}

// search runs the backtracking installability check from start, mutating
// nothing outside its own local state (§4.B, §9: no recursion — an explicit
// stack of choicePoint values stands in for the call stack a recursive
// DPLL-style solver would otherwise use).
func (t *Tester) search(start snapshot) bool {
	var stack []choicePoint
	cur := start
	for {
		if !propagate(t.u, t.present, &cur) {
			if !t.backtrack(&stack, &cur) {
				return false
			}
			continue
		}
		if len(cur.choices) == 0 {
			return true
		}

		idx := smallestChoice(cur.choices)
		clause := t.reduceEquivalence(filterNever(cur.choices[idx], cur.never))
		rest := removeAt(cur.choices, idx)
		if len(clause) == 0 {
			if !t.backtrack(&stack, &cur) {
				return false
			}
			continue
		}

		base := snapshot{musts: cur.musts, never: cur.never, choices: rest}
		cand := clause[0]
		remaining := clause[1:]
		if len(remaining) > 0 {
			t.stats.BacktrackPointsCreated.Inc()
			stack = append(stack, choicePoint{base: cloneSnapshot(base), candidates: remaining})
		}
		cur = commitTo(base, cand)
	}
}

// backtrack pops the most recent unresolved choicePoint and commits to its
// next untried candidate, discarding exhausted points along the way. It
// reports whether a new state was produced.
func (t *Tester) backtrack(stack *[]choicePoint, cur *snapshot) bool {
	for len(*stack) > 0 {
		top := (*stack)[len(*stack)-1]
		if len(top.candidates) == 0 {
			*stack = (*stack)[:len(*stack)-1]
			continue
		}
		t.stats.BacktrackPointsUsed.Inc()
		cand := top.candidates[0]
		remaining := top.candidates[1:]
		if len(remaining) > 0 {
			(*stack)[len(*stack)-1] = choicePoint{base: top.base, candidates: remaining}
		} else {
			*stack = (*stack)[:len(*stack)-1]
		}
		*cur = commitTo(cloneSnapshot(top.base), cand)
		return true
	}
	return false
}

func commitTo(base snapshot, cand archmigrate.BinaryId) snapshot {
	base.musts[cand] = true
	return base
}

func cloneSnapshot(s snapshot) snapshot {
	return snapshot{
		musts:   cloneSet(s.musts),
		never:   cloneSet(s.never),
		choices: append([]archmigrate.Clause(nil), s.choices...),
	}
}

// propagate runs unit propagation to fixpoint, restricting every candidate
// to what's actually present in the target suite (§3 "PresentSet", §4.B
// "is_installable": "true iff there exists S ⊆ PresentSet ..."), matching
// the original's `candidates = (depgroup & testing) - never` and
// `never.update(relations.negative_dependencies & testing)`: a negative dep
// or clause candidate that isn't present can neither block nor satisfy
// anything, so it's dropped before the must/never/choice bookkeeping below
// ever sees it. Every must's negative deps (that are present) join never,
// every must's CNF clauses are filtered against present and never and
// either collapse to a new must, become a pending choice, or (if already
// satisfied) drop out. Returns false on a must/never conflict or an empty
// clause, signalling the caller to backtrack.
func propagate(u *universe.PackageUniverse, present map[archmigrate.BinaryId]bool, s *snapshot) bool {
	processed := make(map[archmigrate.BinaryId]bool, len(s.musts))
	for {
		progress := false
		for id := range s.musts {
			if processed[id] {
				continue
			}
			processed[id] = true
			progress = true

			rel, ok := u.Relations(id)
			if !ok || rel.Broken {
				return false
			}
			for _, neg := range rel.NegativeDeps {
				if !present[neg] {
					continue
				}
				if s.musts[neg] {
					return false
				}
				s.never[neg] = true
			}
			for _, clause := range rel.CNFDepends {
				reduced := filterCandidates(archmigrate.Clause(clause), present, s.never)
				if len(reduced) == 0 {
					return false
				}
				if len(reduced) == 1 {
					s.musts[reduced[0]] = true
					continue
				}
				if !clauseSatisfied(reduced, s.musts) && !containsChoice(s.choices, reduced) {
					s.choices = append(s.choices, reduced)
				}
			}
		}
		if !progress {
			break
		}
	}
	if setsIntersect(s.musts, s.never) {
		return false
	}
	// A previously pending choice may have been satisfied, emptied, or
	// collapsed to a unit clause by later propagation; sweep once more.
	var kept []archmigrate.Clause
	for _, c := range s.choices {
		reduced := filterNever(c, s.never)
		if clauseSatisfied(reduced, s.musts) {
			continue
		}
		if len(reduced) == 0 {
			return false
		}
		if len(reduced) == 1 {
			s.musts[reduced[0]] = true
			continue
		}
		kept = append(kept, reduced)
	}
	s.choices = kept
	return true
}

func filterNever(c archmigrate.Clause, never map[archmigrate.BinaryId]bool) archmigrate.Clause {
	out := make(archmigrate.Clause, 0, len(c))
	for _, id := range c {
		if !never[id] {
			out = append(out, id)
		}
	}
	return out
}

// filterCandidates keeps only the clause members currently present in the
// target and not yet ruled out, the CNF-clause equivalent of the original's
// `(depgroup & testing) - never`.
func filterCandidates(c archmigrate.Clause, present, never map[archmigrate.BinaryId]bool) archmigrate.Clause {
	out := make(archmigrate.Clause, 0, len(c))
	for _, id := range c {
		if present[id] && !never[id] {
			out = append(out, id)
		}
	}
	return out
}

func clauseSatisfied(c archmigrate.Clause, musts map[archmigrate.BinaryId]bool) bool {
	for _, id := range c {
		if musts[id] {
			return true
		}
	}
	return false
}

func containsChoice(choices []archmigrate.Clause, c archmigrate.Clause) bool {
	for _, existing := range choices {
		if len(existing) != len(c) {
			continue
		}
		same := true
		seen := make(map[archmigrate.BinaryId]bool, len(existing))
		for _, id := range existing {
			seen[id] = true
		}
		for _, id := range c {
			if !seen[id] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func setsIntersect(a, b map[archmigrate.BinaryId]bool) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for id := range small {
		if big[id] {
			return true
		}
	}
	return false
}

// smallestChoice returns the index of the shortest pending clause, matching
// the teacher's smallest-set-first heuristic for keeping backtracking
// branches narrow.
func smallestChoice(choices []archmigrate.Clause) int {
	best := 0
	for i, c := range choices {
		if len(c) < len(choices[best]) {
			best = i
		}
	}
	return best
}

func removeAt(choices []archmigrate.Clause, idx int) []archmigrate.Clause {
	out := make([]archmigrate.Clause, 0, len(choices)-1)
	out = append(out, choices[:idx]...)
	out = append(out, choices[idx+1:]...)
	return out
}

// reduceEquivalence collapses every candidate in c to one representative per
// equivalence class (§3, §4.B): trying more than one member of the same
// class can never change the outcome, so the search need only branch once
// per class.
func (t *Tester) reduceEquivalence(c archmigrate.Clause) archmigrate.Clause {
	if len(c) < 2 {
		return c
	}
	seenClass := make(map[archmigrate.BinaryId]bool)
	out := make(archmigrate.Clause, 0, len(c))
	reduced := false
	for _, id := range c {
		rel, ok := t.u.Relations(id)
		repr := id
		if ok && len(rel.EquivalenceClass) > 0 {
			repr = rel.EquivalenceClass[0]
		}
		if seenClass[repr] {
			reduced = true
			continue
		}
		seenClass[repr] = true
		out = append(out, id)
	}
	if reduced {
		t.stats.EquivalenceReductions.Inc()
	}
	return out
}
