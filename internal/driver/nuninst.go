// Package driver implements the Migration Driver (§4.H): batch and
// hint-driven entry modes over a schedule produced by internal/order,
// tracking installability counters and rolling back regressions through
// internal/txn.
package driver

import (
	"sort"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/tester"
)

// Nuninst is the installability counters file's in-memory shape: for each
// architecture, the sorted set of currently-broken binaries (§6 "nuninst
// counters file").
type Nuninst map[string][]archmigrate.BinaryId

// Compute walks every binary in target for each architecture in archs and
// records the ones the tester reports as not installable.
func Compute(t *tester.Tester, target *archmigrate.Suite, archs archmigrate.ArchTable) Nuninst {
	n := make(Nuninst, len(archs))
	for arch := range archs {
		n[arch] = computeArch(t, target, arch)
	}
	return n
}

func computeArch(t *tester.Tester, target *archmigrate.Suite, arch string) []archmigrate.BinaryId {
	byName := target.Binaries[arch]
	broken := make([]archmigrate.BinaryId, 0, len(byName))
	for _, bp := range byName {
		ok, err := t.IsInstallable(bp.ID)
		if err != nil || !ok {
			broken = append(broken, bp.ID)
		}
	}
	sort.Slice(broken, func(i, j int) bool { return broken[i].String() < broken[j].String() })
	return broken
}

// merge returns a copy of before with every architecture in arches replaced
// by its freshly recomputed value from after, leaving every other
// architecture's counters untouched (§4.H "recompute ... only for the
// affected arches").
func merge(before, after Nuninst, arches []string) Nuninst {
	out := make(Nuninst, len(before))
	for arch, ids := range before {
		out[arch] = ids
	}
	for _, arch := range arches {
		out[arch] = after[arch]
	}
	return out
}

func toSet(ids []archmigrate.BinaryId) map[archmigrate.BinaryId]bool {
	s := make(map[archmigrate.BinaryId]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// acceptable reports whether going from before to after does not worsen
// installability on arches not exempted by their architecture category
// (§4.H "Architecture categories influence acceptance"), and does not newly
// break anything in keep (constraints.keep-installable).
func acceptable(ctx *archmigrate.Context, before, after Nuninst, arches []string, keep map[archmigrate.BinaryId]bool) bool {
	for _, arch := range arches {
		beforeSet := toSet(before[arch])
		afterSet := toSet(after[arch])
		for id := range afterSet {
			if !beforeSet[id] && keep[id] {
				return false
			}
		}
		switch ctx.Category(arch) {
		case archmigrate.CategoryBreak, archmigrate.CategoryNew, archmigrate.CategoryOutOfSync:
			continue
		}
		if len(afterSet) > len(beforeSet) {
			return false
		}
	}
	return true
}

// AffectedArches returns the union of every group's architecture, or every
// architecture in archs if any group is a source-wide item (§4.H "the union
// over items of their arch, or all arches if any item is 'source'").
func AffectedArches(items []archmigrate.MigrationItem, archs archmigrate.ArchTable) []string {
	set := make(map[string]bool)
	for _, it := range items {
		if it.Arch == archmigrate.SourceArch || it.Arch == "" {
			return archs.Sorted()
		}
		set[it.Arch] = true
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
