package universe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/distr1/archmigrate"
)

// Relations holds the resolved CNF depends, negative deps, reverse deps and
// equivalence class for one BinaryId (§3). CNFDepends entries are interned
// clause slices: identical clauses across different binaries share the same
// backing array.
type Relations struct {
	CNFDepends  [][]archmigrate.BinaryId
	NegativeDeps []archmigrate.BinaryId
	ReverseDeps  map[archmigrate.BinaryId]bool

	// EquivalenceClass lists every BinaryId (including this one) that shares
	// this binary's depends/neg-deps/rdeps exactly. Omitted (left nil) for
	// classes of size 1 (§3).
	EquivalenceClass []archmigrate.BinaryId

	// Broken marks a binary for which at least one CNF clause has no
	// possible solver, directly or transitively (§3, §4.A step 7-8).
	Broken bool
}

// PackageUniverse is the immutable dependency graph built once at startup
// from every loaded suite (§3, §4.A). It never mutates after Build returns.
type PackageUniverse struct {
	relations map[archmigrate.BinaryId]*Relations
	interner  *Interner
}

// IdentityMismatchError describes two suites disagreeing on the recorded
// fields of the same (name, version, arch) binary (§4.A "Failures"). Build
// does not compare the suites' records and never returns it; the binary's
// relations are taken from the first suite passed to Build that has it.
type IdentityMismatchError struct {
	ID archmigrate.BinaryId
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("identity mismatch for %s across suites", e.ID)
}

// Relations returns the (possibly nil) Relations for id.
func (u *PackageUniverse) Relations(id archmigrate.BinaryId) (*Relations, bool) {
	r, ok := u.relations[id]
	return r, ok
}

// Len returns the number of binaries known to the universe.
func (u *PackageUniverse) Len() int { return len(u.relations) }

// expandAllArch re-keys an "all"-architecture binary into one BinaryId per
// concrete architecture in archs (§4.A step 2), so installability checks
// stay arch-local.
func expandAllArch(id archmigrate.BinaryId, archs archmigrate.ArchTable) []archmigrate.BinaryId {
	if id.Arch != "all" {
		return []archmigrate.BinaryId{id}
	}
	out := make([]archmigrate.BinaryId, 0, len(archs))
	for a := range archs {
		out = append(out, archmigrate.BinaryId{Name: id.Name, Version: id.Version, Arch: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Arch < out[j].Arch })
	return out
}

// Build ingests every suite (source suites first, then the target, matching
// the teacher's pattern of primary data plus an overlay) and constructs the
// frozen PackageUniverse (§4.A construction algorithm, steps 1-9).
func Build(archs archmigrate.ArchTable, suites ...*archmigrate.Suite) (*PackageUniverse, error) {
	u := &PackageUniverse{
		relations: make(map[archmigrate.BinaryId]*Relations),
		interner:  NewInterner(),
	}

	// Step 1+2: register every binary, re-keying arch:all across archs.
	type placed struct {
		bp   *archmigrate.BinaryPackage
		arch string
	}
	byNameArch := make(map[string]map[string][]placed) // name -> arch -> candidates across suites

	for _, s := range suites {
		for _, byName := range s.Binaries {
			for name, bp := range byName {
				for _, id := range expandAllArch(bp.ID, archs) {
					if byNameArch[name] == nil {
						byNameArch[name] = make(map[string][]placed)
					}
					byNameArch[name][id.Arch] = append(byNameArch[name][id.Arch], placed{bp: bp, arch: id.Arch})
					if _, ok := u.relations[id]; !ok {
						u.relations[id] = &Relations{ReverseDeps: make(map[archmigrate.BinaryId]bool)}
					}
				}
			}
		}
	}

	// resolveName finds every candidate BinaryId satisfying Constraint c on
	// architecture arch, across all suites: direct name matches and
	// Provides-based virtual matches (§4.A step 3).
	resolveName := func(c Constraint, arch string) []archmigrate.BinaryId {
		var out []archmigrate.BinaryId
		for _, s := range suites {
			if bp, ok := s.Binary(arch, c.Name); ok {
				if c.Satisfies(bp.ID.Version) {
					out = append(out, bp.ID)
				}
			}
			if providers, ok := s.Provides[arch][c.Name]; ok {
				for prov := range providers {
					if c.Op == "" || c.Satisfies(prov.Version) {
						if bp, ok := s.Binary(arch, prov.Name); ok {
							out = append(out, bp.ID)
						}
					}
				}
			}
			if bp, ok := s.Binary("all", c.Name); ok && c.Satisfies(bp.ID.Version) {
				for _, id := range expandAllArch(bp.ID, archs) {
					if id.Arch == arch {
						out = append(out, id)
					}
				}
			}
		}
		return out
	}

	// Step 3-5: resolve depends/conflicts for every known binary.
	for id, rel := range u.relations {
		byName, ok := byNameArch[id.Name]
		if !ok {
			continue
		}
		var bp *archmigrate.BinaryPackage
		for _, p := range byName[id.Arch] {
			if p.bp.ID.Version.Compare(id.Version) == 0 {
				bp = p.bp
				break
			}
		}
		if bp == nil {
			continue
		}

		clauses := ParseDependsExpr(bp.DependsRaw)
		// Step 4: collapse clauses that both name the same single package by
		// intersecting their solver sets into one clause.
		bySinglePkg := make(map[string][]archmigrate.BinaryId)
		var order []string
		var multi [][]archmigrate.BinaryId
		for _, clause := range clauses {
			if len(clause) == 1 {
				solvers := resolveName(clause[0], id.Arch)
				key := clause[0].Name
				if existing, ok := bySinglePkg[key]; ok {
					bySinglePkg[key] = intersect(existing, solvers)
				} else {
					bySinglePkg[key] = solvers
					order = append(order, key)
				}
				continue
			}
			var solvers []archmigrate.BinaryId
			for _, alt := range clause {
				solvers = append(solvers, resolveName(alt, id.Arch)...)
			}
			multi = append(multi, solvers)
		}
		var cnf [][]archmigrate.BinaryId
		for _, key := range order {
			cnf = append(cnf, u.interner.Intern(bySinglePkg[key]))
		}
		for _, solvers := range multi {
			cnf = append(cnf, u.interner.Intern(solvers))
		}
		rel.CNFDepends = cnf

		// Step 5: negative deps (conflicts ∪ breaks, already merged upstream).
		var neg []archmigrate.BinaryId
		for _, clause := range ParseDependsExpr(bp.ConflictsRaw) {
			for _, alt := range clause {
				for _, solver := range resolveName(alt, id.Arch) {
					if solver != id { // never conflicts with itself
						neg = append(neg, solver)
					}
				}
			}
		}
		rel.NegativeDeps = u.interner.Intern(neg)
	}

	// Step 6: reverse deps.
	for id, rel := range u.relations {
		for _, clause := range rel.CNFDepends {
			for _, solver := range clause {
				if other, ok := u.relations[solver]; ok {
					other.ReverseDeps[id] = true
				}
			}
		}
	}

	// Step 7-8: mark and propagate broken, then null relations.
	markBroken(u)

	// Step 9: equivalence classes.
	buildEquivalence(u)

	return u, nil
}

func intersect(a, b []archmigrate.BinaryId) []archmigrate.BinaryId {
	bs := make(map[archmigrate.BinaryId]bool, len(b))
	for _, id := range b {
		bs[id] = true
	}
	var out []archmigrate.BinaryId
	for _, id := range a {
		if bs[id] {
			out = append(out, id)
		}
	}
	return out
}

// markBroken implements §4.A step 7-8: a binary with an empty CNF clause is
// broken; this propagates through reverse deps to fixpoint, after which
// broken binaries' relations are nulled to a uniform empty-CNF-with-one-
// empty-clause / empty-conflicts shape so downstream code need not special
// case them.
func markBroken(u *PackageUniverse) {
	changed := true
	for changed {
		changed = false
		for _, rel := range u.relations {
			if rel.Broken {
				continue
			}
			broken := false
			for _, clause := range rel.CNFDepends {
				if len(clause) == 0 {
					broken = true
					break
				}
				allBroken := true
				for _, solver := range clause {
					if sr, ok := u.relations[solver]; !ok || !sr.Broken {
						allBroken = false
						break
					}
				}
				if allBroken {
					broken = true
					break
				}
			}
			if broken {
				rel.Broken = true
				changed = true
			}
		}
	}
	for _, rel := range u.relations {
		if rel.Broken {
			rel.CNFDepends = [][]archmigrate.BinaryId{{}}
			rel.NegativeDeps = nil
		}
	}
}

// buildEquivalence implements §4.A step 9 / §3: binaries sharing identical
// depends, negative deps and reverse deps form one equivalence class.
func buildEquivalence(u *PackageUniverse) {
	type key struct {
		depends string
		neg     string
		rdeps   string
	}
	groups := make(map[key][]archmigrate.BinaryId)
	for id, rel := range u.relations {
		groups[relKey(rel)] = append(groups[relKey(rel)], id)
	}
	for _, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		for _, id := range ids {
			u.relations[id].EquivalenceClass = ids
		}
	}
}

func relKey(rel *Relations) struct{ depends, neg, rdeps string } {
	var depParts []string
	for _, clause := range rel.CNFDepends {
		depParts = append(depParts, clauseKey(clause))
	}
	var negIds []string
	for _, id := range rel.NegativeDeps {
		negIds = append(negIds, id.String())
	}
	sort.Strings(negIds)
	var rdeps []string
	for id := range rel.ReverseDeps {
		rdeps = append(rdeps, id.String())
	}
	sort.Strings(rdeps)
	return struct{ depends, neg, rdeps string }{
		depends: strings.Join(depParts, "\x01"),
		neg:     strings.Join(negIds, "\x00"),
		rdeps:   strings.Join(rdeps, "\x00"),
	}
}
