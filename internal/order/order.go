// Package order implements the Partial-Order Solver (§4.G): given the set of
// groups a migration batch wants to apply, build a before/after ordering
// graph, contract strongly connected components, and linearise the result
// into the migration schedule.
//
// Unlike the teacher's internal/batch scheduler, which this package's graph
// construction and cycle handling are grounded on, this solver never spawns
// workers or runs a build: per §5 the migration core is single-threaded, and
// this package's only job is to decide an order, not to execute anything.
package order

import (
	"fmt"
	"sort"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/universe"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Group is one migration candidate's effect on the target suite: the
// binaries it would add and the binaries it would remove.
type Group struct {
	Item    archmigrate.MigrationItem
	Adds    []archmigrate.BinaryId
	Removes []archmigrate.BinaryId
}

// ConstraintViolation reports a group dropped from the batch before solving
// because applying it would violate a migration constraint, e.g. a
// downgrade (§4.G "Failure").
type ConstraintViolation struct {
	Item   archmigrate.MigrationItem
	Reason string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Item, e.Reason)
}

type groupNode struct {
	id  int64
	grp *Group
}

func (n *groupNode) ID() int64 { return n.id }

// Solve builds the ordering graph for groups, contracts SCCs with an
// iterative Tarjan, and linearises the schedule: each returned slice is one
// migration step (a singleton, or a strongly-connected batch that must be
// applied together). Groups that fail checkDowngrade are dropped and
// reported separately, never entering the graph.
func Solve(groups []Group, u *universe.PackageUniverse) (schedule [][]Group, dropped []*ConstraintViolation) {
	var kept []Group
	for _, g := range groups {
		if v := checkDowngrade(g, u); v != nil {
			dropped = append(dropped, v)
			continue
		}
		kept = append(kept, g)
	}
	if len(kept) == 0 {
		return nil, dropped
	}

	g := simple.NewDirectedGraph()
	nodes := make([]*groupNode, len(kept))
	addedBy := make(map[archmigrate.BinaryId]int)
	removedBy := make(map[archmigrate.BinaryId]int)
	for i := range kept {
		nodes[i] = &groupNode{id: int64(i), grp: &kept[i]}
		g.AddNode(nodes[i])
		for _, id := range kept[i].Adds {
			addedBy[id] = i
		}
		for _, id := range kept[i].Removes {
			removedBy[id] = i
		}
	}

	goingOut := make(map[archmigrate.BinaryId]bool)
	for _, grp := range kept {
		for _, id := range grp.Removes {
			goingOut[id] = true
		}
	}
	// stillSatisfied reports whether clause has a candidate that is not
	// itself being removed by this batch (target ∖ going-out).
	stillSatisfied := func(clause []archmigrate.BinaryId) bool {
		for _, cand := range clause {
			if !goingOut[cand] {
				return true
			}
		}
		return false
	}

	addBefore := func(before, after int) {
		if before == after {
			return
		}
		g.SetEdge(g.NewEdge(nodes[before], nodes[after]))
	}

	for i, grp := range kept {
		// Removed binaries: if an rdep's satisfying clause no longer holds
		// once this binary is gone, and another group supplies that rdep,
		// remove-this-group must run before remove-that-group (§4.G step 1,
		// first bullet): "we want to remove last" means the rdep's own
		// group must go after us.
		for _, rem := range grp.Removes {
			rel, ok := u.Relations(rem)
			if !ok {
				continue
			}
			for rdep := range rel.ReverseDeps {
				rrel, ok := u.Relations(rdep)
				if !ok {
					continue
				}
				for _, clause := range rrel.CNFDepends {
					if !clauseContains(clause, rem) {
						continue
					}
					if stillSatisfied(clause) {
						continue
					}
					if g2, ok := addedBy[rdep]; ok {
						addBefore(i, g2)
					}
					if g2, ok := removedBy[rdep]; ok {
						addBefore(i, g2)
					}
				}
			}
			// Conflicts being dropped: a package this group removes might
			// have conflicted with something another group is adding; we
			// must go before whichever group adds the formerly-conflicting
			// package (§4.G step 1, third bullet).
			for _, neg := range rel.NegativeDeps {
				if g2, ok := addedBy[neg]; ok {
					addBefore(i, g2)
				}
			}
		}

		// Added binaries: for every depends clause not already satisfied
		// without the going-out set, whoever supplies a candidate must run
		// before us, and whoever removes a candidate must run after us
		// (§4.G step 1, second bullet).
		for _, add := range grp.Adds {
			rel, ok := u.Relations(add)
			if !ok {
				continue
			}
			for _, clause := range rel.CNFDepends {
				if stillSatisfied(clause) {
					continue
				}
				for _, cand := range clause {
					if g2, ok := addedBy[cand]; ok {
						addBefore(g2, i)
					}
					if g2, ok := removedBy[cand]; ok {
						addBefore(i, g2)
					}
				}
			}
		}
	}

	return linearise(g, nodes), dropped
}

func clauseContains(clause []archmigrate.BinaryId, id archmigrate.BinaryId) bool {
	for _, c := range clause {
		if c == id {
			return true
		}
	}
	return false
}

// checkDowngrade is a placeholder for the broader set of migration
// constraints §4.G's Failure clause names (downgrade attempts chief among
// them); a real check needs the target's currently-installed version, which
// the driver supplies via Group construction, so this only catches the case
// where a group's own Adds/Removes are internally inconsistent (adding and
// removing the same BinaryId).
func checkDowngrade(g Group, u *universe.PackageUniverse) *ConstraintViolation {
	removed := make(map[archmigrate.BinaryId]bool, len(g.Removes))
	for _, id := range g.Removes {
		removed[id] = true
	}
	for _, id := range g.Adds {
		if removed[id] {
			return &ConstraintViolation{Item: g.Item, Reason: "group both adds and removes " + id.String()}
		}
	}
	return nil
}

// linearise contracts g's SCCs (iterative Tarjan via gonum's topo package, no
// recursion) and emits the migration schedule: SCCs with no predecessor are
// queued smallest-first, popped, emitted, and their successors re-queued as
// they become free (§4.G step 2-3).
func linearise(g graph.Directed, nodes []*groupNode) [][]Group {
	sccs := topo.TarjanSCC(g)
	sccOf := make(map[int64]int, len(nodes))
	for sccIdx, comp := range sccs {
		for _, n := range comp {
			sccOf[n.ID()] = sccIdx
		}
	}

	succ := make(map[int]map[int]bool, len(sccs))
	indegree := make([]int, len(sccs))
	for _, n := range nodes {
		from := sccOf[n.ID()]
		it := g.From(n.ID())
		for it.Next() {
			to := sccOf[it.Node().ID()]
			if to == from {
				continue
			}
			if succ[from] == nil {
				succ[from] = make(map[int]bool)
			}
			if !succ[from][to] {
				succ[from][to] = true
				indegree[to]++
			}
		}
	}

	var ready []int
	for i := range sccs {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	var schedule [][]Group
	emitted := make(map[int]bool, len(sccs))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return len(sccs[ready[i]]) < len(sccs[ready[j]]) })
		sccIdx := ready[0]
		ready = ready[1:]
		if emitted[sccIdx] {
			continue
		}
		emitted[sccIdx] = true

		var step []Group
		for _, n := range sccs[sccIdx] {
			step = append(step, *n.(*groupNode).grp)
		}
		schedule = append(schedule, step)

		for to := range succ[sccIdx] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}
	return schedule
}
