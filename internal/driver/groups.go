package driver

import (
	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/excuse"
	"github.com/distr1/archmigrate/internal/order"
)

// GroupFromExcuse turns one excuse into the order.Group that would carry out
// its migration: on every architecture (or, for a single-arch binNMU
// excuse, just that arch) the source suite's binary whose name equals the
// item's name replaces the target suite's binary of that name. Other
// binaries built by the same source are neither added nor removed. A
// removal excuse produces a Removes-only group.
func GroupFromExcuse(e *excuse.Excuse, target, source *archmigrate.Suite, archs archmigrate.ArchTable) order.Group {
	g := order.Group{Item: e.Item}

	arches := archs.Sorted()
	if e.Item.Arch != archmigrate.SourceArch && e.Item.Arch != "" {
		arches = []string{e.Item.Arch}
	}

	for _, arch := range arches {
		if old, ok := target.Binary(arch, e.Item.Name); ok {
			g.Removes = append(g.Removes, old.ID)
		}
		if e.Item.IsRemoval {
			continue
		}
		if bin, ok := source.Binary(arch, e.Item.Name); ok {
			g.Adds = append(g.Adds, bin.ID)
		}
	}
	return g
}

// GroupsFromExcuses filters excuses down to the ones ready to migrate (PASS
// or PASS_HINTED, not invalidated) and builds their order.Group
// representation, ready to hand to internal/order.Solve.
func GroupsFromExcuses(excuses []*excuse.Excuse, target, source *archmigrate.Suite, archs archmigrate.ArchTable) []order.Group {
	var groups []order.Group
	for _, e := range excuses {
		if e.Invalid || e.Verdict.IsRejected() {
			continue
		}
		groups = append(groups, GroupFromExcuse(e, target, source, archs))
	}
	return groups
}
