package tester

import (
	"fmt"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/universe"
)

// UnknownPackage is returned when a query names a BinaryId the universe has
// no Relations for (§4.B "Failures").
type UnknownPackage struct {
	ID archmigrate.BinaryId
}

func (e *UnknownPackage) Error() string {
	return fmt.Sprintf("tester: unknown package %s", e.ID)
}

// Tester answers is_installable-style queries against a frozen
// PackageUniverse plus a mutable "present" set representing what the target
// suite currently contains (§4.B). Like the teacher's scheduler, a Tester is
// not safe for concurrent use: the migration driver that owns it runs
// single-threaded (§5).
type Tester struct {
	u     *universe.PackageUniverse
	archs archmigrate.ArchTable
	stats *Stats

	present map[archmigrate.BinaryId]bool

	// essentialIDs is computed into essential lazily, on the first
	// IsInstallable call, not at New: the snapshot's unit propagation must
	// see the target's full present set (§4.B "pseudo-essential set"), which
	// suitestate.New only finishes seeding after New returns.
	essentialIDs   []archmigrate.BinaryId
	essential      map[string]snapshot
	essentialReady bool

	// installable caches a proven verdict per BinaryId. A missing entry
	// means "not yet computed"; AddBinary/RemoveBinary drop entries that the
	// mutation could have invalidated.
	installable map[archmigrate.BinaryId]bool
}

// New builds a Tester over u. essentialIDs lists every binary the archive
// marks Essential: yes, across every loaded suite; Tester precomputes one
// pseudo-essential snapshot per architecture from it. Passing a nil stats
// registers fresh counters on the default Prometheus registry.
func New(u *universe.PackageUniverse, archs archmigrate.ArchTable, essentialIDs []archmigrate.BinaryId, stats *Stats) *Tester {
	if stats == nil {
		stats = NewStats(nil)
	}
	return &Tester{
		u:            u,
		archs:        archs,
		stats:        stats,
		present:      make(map[archmigrate.BinaryId]bool),
		essentialIDs: essentialIDs,
		installable:  make(map[archmigrate.BinaryId]bool),
	}
}

// ensureEssential computes the pseudo-essential snapshot against the
// present set as it stands on first use, since that's the first point every
// caller is guaranteed to have finished seeding it (engine.go always builds
// the suitestate.State, which seeds present, before issuing any query).
func (t *Tester) ensureEssential() {
	if t.essentialReady {
		return
	}
	t.essential = computeEssential(t.u, t.archs, t.essentialIDs, t.present)
	t.essentialReady = true
}

// IsInstallable reports whether id is installable in the target suite,
// seeded by its architecture's pseudo-essential set (§4.B "is_installable").
// A package not currently present in the target is never installable,
// matching the original's own first check before doing any solving work.
// Results are cached until a mutation invalidates them.
func (t *Tester) IsInstallable(id archmigrate.BinaryId) (bool, error) {
	rel, ok := t.u.Relations(id)
	if !ok {
		return false, &UnknownPackage{ID: id}
	}
	if !t.present[id] {
		return false, nil
	}
	t.ensureEssential()
	if rel.Broken {
		t.installable[id] = false
		return false, nil
	}
	if v, ok := t.installable[id]; ok {
		t.stats.CacheHits.Inc()
		return v, nil
	}
	t.stats.CacheMisses.Inc()

	base := t.essential[id.Arch]
	start := snapshot{
		musts:   cloneSet(base.musts),
		never:   cloneSet(base.never),
		choices: append([]archmigrate.Clause(nil), base.choices...),
	}
	start.musts[id] = true
	if start.never[id] {
		t.stats.ConflictsWithEssential.Inc()
		t.installable[id] = false
		return false, nil
	}

	ok = t.search(start)
	t.installable[id] = ok
	return ok, nil
}

// AddBinary marks id present in the target suite (§4.B "add_binary") and
// drops cached verdicts for every binary that depends, directly or
// transitively through reverse deps, on id, since id's addition can only
// make such binaries more (never less) likely to be installable and stale
// negative cache entries must not survive.
func (t *Tester) AddBinary(id archmigrate.BinaryId) {
	t.present[id] = true
	t.invalidate(id)
}

// RemoveBinary marks id absent from the target suite (§4.B "remove_binary")
// and drops cached verdicts the same way AddBinary does.
func (t *Tester) RemoveBinary(id archmigrate.BinaryId) {
	delete(t.present, id)
	t.invalidate(id)
}

// invalidate drops id's own cache entry plus every reverse-dependent's,
// transitively, matching the teacher's cache-drop-on-mutation idiom.
func (t *Tester) invalidate(id archmigrate.BinaryId) {
	seen := map[archmigrate.BinaryId]bool{}
	var walk func(archmigrate.BinaryId)
	walk = func(cur archmigrate.BinaryId) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		if _, ok := t.installable[cur]; ok {
			delete(t.installable, cur)
			t.stats.CacheDrops.Inc()
		}
		rel, ok := t.u.Relations(cur)
		if !ok {
			return
		}
		for rdep := range rel.ReverseDeps {
			walk(rdep)
		}
	}
	walk(id)
}

// IsPkgPresent reports whether id is currently marked present in the target
// suite (§4.B "is_pkg_present").
func (t *Tester) IsPkgPresent(id archmigrate.BinaryId) bool {
	return t.present[id]
}

// AnyOfTheseArePresent reports whether any id in ids is currently present
// (§4.B "any_of_these_are_in_the_suite").
func (t *Tester) AnyOfTheseArePresent(ids []archmigrate.BinaryId) bool {
	for _, id := range ids {
		if t.present[id] {
			return true
		}
	}
	return false
}

// AreEquivalent reports whether a and b belong to the same equivalence class
// (§4.B "are_equivalent", §3): interchangeable for installability purposes.
func (t *Tester) AreEquivalent(a, b archmigrate.BinaryId) bool {
	if a == b {
		return true
	}
	rel, ok := t.u.Relations(a)
	if !ok || rel.EquivalenceClass == nil {
		return false
	}
	for _, id := range rel.EquivalenceClass {
		if id == b {
			return true
		}
	}
	return false
}

func cloneSet(m map[archmigrate.BinaryId]bool) map[archmigrate.BinaryId]bool {
	out := make(map[archmigrate.BinaryId]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
