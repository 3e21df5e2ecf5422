package driver

import (
	"fmt"
	"strings"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/order"
	"github.com/distr1/archmigrate/internal/suitestate"
	"github.com/distr1/archmigrate/internal/tester"
	"github.com/distr1/archmigrate/internal/trace"
	"github.com/distr1/archmigrate/internal/txn"
	"github.com/distr1/archmigrate/internal/universe"
)

// Driver runs migration attempts against a target suite state, committing
// or rolling back through internal/txn depending on whether the resulting
// installability counters are acceptable (§4.H).
type Driver struct {
	Ctx      *archmigrate.Context
	State    *suitestate.State
	Tester   *tester.Tester
	Universe *universe.PackageUniverse
	Source   *archmigrate.Suite

	// KeepInstallable is constraints.keep-installable: binaries that must
	// never newly break, even on arch categories that otherwise tolerate
	// regressions.
	KeepInstallable map[archmigrate.BinaryId]bool

	// SeedNuninst, when set, is used as RunBatch's starting counters instead
	// of a from-scratch Compute (nuninst-cache round-trip). Each attempt is
	// compared against these counters as given, so a stale seed can change
	// which attempts are accepted; RunBatch does not call CheckPostCondition.
	SeedNuninst Nuninst
}

// Report summarises one driver run for rendering into excuses/logs.
type Report struct {
	Accepted []order.Group
	Rejected []order.Group
}

// applyGroup mutates the target suite per g's Adds/Removes and the source
// records they come from, recording undo items in tx for rollback (§4.F).
func (d *Driver) applyGroup(tx *txn.Transaction, g order.Group) {
	for _, id := range g.Removes {
		old, ok := d.State.Target.Binary(id.Arch, id.Name)
		if !ok {
			continue
		}
		oldCopy := old
		tx.AddUndoItem(txn.KindBinaryReplace, func() { d.State.AddBinary(oldCopy) })
		d.State.RemoveBinary(id.Arch, id.Name)
	}
	for _, id := range g.Adds {
		bp, ok := d.Source.Binary(id.Arch, id.Name)
		if !ok {
			continue
		}
		idCopy := id
		tx.AddUndoItem(txn.KindBinaryAddConsequence, func() { d.State.RemoveBinary(idCopy.Arch, idCopy.Name) })
		d.State.AddBinary(bp)
	}
	if src, ok := d.Source.Sources[g.Item.Name]; ok {
		old, hadOld := d.State.Target.Sources[g.Item.Name]
		name := g.Item.Name
		tx.AddUndoItem(txn.KindSourceAdd, func() {
			if hadOld {
				d.State.AddSource(old)
			} else {
				d.State.RemoveSource(name)
			}
		})
		d.State.AddSource(src)
	}
}

// attempt applies groups inside a fresh transaction, recomputes nuninst for
// the affected architectures, and commits or rolls back based on
// acceptability (§4.H).
func (d *Driver) attempt(groups []order.Group, before Nuninst) (Nuninst, bool) {
	ev := trace.Event("migrate "+groupNames(groups), 0)
	ev.Type = "B"
	ev.Done()
	defer func() {
		end := trace.Event("migrate "+groupNames(groups), 0)
		end.Type = "E"
		end.Done()
	}()

	tx := txn.New(nil)
	for _, g := range groups {
		d.applyGroup(tx, g)
	}

	items := make([]archmigrate.MigrationItem, len(groups))
	for i, g := range groups {
		items[i] = g.Item
	}
	arches := AffectedArches(items, d.Ctx.Archs)
	after := Compute(d.Tester, d.State.Target, archmigrate.NewArchTable(arches...))
	merged := merge(before, after, arches)

	if acceptable(d.Ctx, before, merged, arches, d.KeepInstallable) {
		tx.Commit()
		return merged, true
	}
	tx.Rollback()
	return before, false
}

// groupNames renders an SCC's item names for the trace sink, e.g.
// "green+libgreen1" for the two-item regression-avoidance case in §8.
func groupNames(groups []order.Group) string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Item.Name
	}
	return strings.Join(names, "+")
}

// RunBatch processes every SCC in schedule (§4.H "Batch" mode): accepted
// groups retry any previously-failed singletons (maybe_rescheduled folding
// back into rescheduled); an SCC larger than one item that regresses is
// split into singletons and retried individually before giving up on it.
func (d *Driver) RunBatch(schedule [][]order.Group) *Report {
	nuninst := d.SeedNuninst
	if nuninst == nil {
		nuninst = Compute(d.Tester, d.State.Target, d.Ctx.Archs)
	}
	var report Report
	var maybeRescheduled []order.Group

	retryRescheduled := func() {
		if len(maybeRescheduled) == 0 {
			return
		}
		retry := maybeRescheduled
		maybeRescheduled = nil
		for _, g := range retry {
			if n2, ok := d.attempt([]order.Group{g}, nuninst); ok {
				nuninst = n2
				report.Accepted = append(report.Accepted, g)
			} else {
				maybeRescheduled = append(maybeRescheduled, g)
			}
		}
	}

	for _, step := range schedule {
		if n2, ok := d.attempt(step, nuninst); ok {
			nuninst = n2
			report.Accepted = append(report.Accepted, step...)
			retryRescheduled()
			continue
		}
		if len(step) == 1 {
			maybeRescheduled = append(maybeRescheduled, step...)
			continue
		}
		for _, g := range step {
			if n2, ok := d.attempt([]order.Group{g}, nuninst); ok {
				nuninst = n2
				report.Accepted = append(report.Accepted, g)
			} else {
				maybeRescheduled = append(maybeRescheduled, g)
			}
		}
	}
	report.Rejected = maybeRescheduled
	return report
}

// HintMode selects one of the hint-driven entry modes (§4.H "Hint-driven").
type HintMode int

const (
	// ModeEasy tries a named set of groups without recursing into leftovers.
	ModeEasy HintMode = iota
	// ModeHint is the `hint` entry mode. RunHint handles it exactly like
	// ModeEasy: only the named set is attempted, and no other candidates
	// are tried afterwards.
	ModeHint
	// ModeForceHint commits regardless of counter regressions.
	ModeForceHint
)

// RunHint applies one hint-driven entry (§4.H). For ModeForceHint, the
// transaction always commits; the returned Nuninst still reflects the true
// post-commit counters so later steps see accurate state, even though the
// regression was accepted unconditionally.
func (d *Driver) RunHint(mode HintMode, groups []order.Group, before Nuninst) (Nuninst, bool) {
	if mode != ModeForceHint {
		return d.attempt(groups, before)
	}
	tx := txn.New(nil)
	for _, g := range groups {
		d.applyGroup(tx, g)
	}
	items := make([]archmigrate.MigrationItem, len(groups))
	for i, g := range groups {
		items[i] = g.Item
	}
	arches := AffectedArches(items, d.Ctx.Archs)
	after := Compute(d.Tester, d.State.Target, archmigrate.NewArchTable(arches...))
	tx.Commit()
	return merge(before, after, arches), true
}

// PostConditionError reports the fatal assertion failure §4.H's
// post-condition check raises when a from-scratch nuninst computation
// disagrees with the incrementally-maintained counters on a non-break
// architecture.
type PostConditionError struct {
	Arch      string
	Cached    []archmigrate.BinaryId
	Recomputed []archmigrate.BinaryId
}

func (e *PostConditionError) Error() string {
	return fmt.Sprintf("post-condition check failed on %s: cached %d broken, recomputed %d broken", e.Arch, len(e.Cached), len(e.Recomputed))
}

// CheckPostCondition reruns the full installability computation from
// scratch and asserts it matches cached on every architecture that isn't
// categorised Break (§4.H, §8 invariant 4). Break-arch discrepancies are
// returned as warnings (non-nil but distinct) rather than aborting the run
// (§7: "break arches downgrade to warning").
func (d *Driver) CheckPostCondition(cached Nuninst) (fatal []*PostConditionError, warnings []*PostConditionError) {
	fresh := Compute(d.Tester, d.State.Target, d.Ctx.Archs)
	for arch := range d.Ctx.Archs {
		if !sameSet(cached[arch], fresh[arch]) {
			err := &PostConditionError{Arch: arch, Cached: cached[arch], Recomputed: fresh[arch]}
			if d.Ctx.Category(arch) == archmigrate.CategoryBreak {
				warnings = append(warnings, err)
			} else {
				fatal = append(fatal, err)
			}
		}
	}
	return fatal, warnings
}

func sameSet(a, b []archmigrate.BinaryId) bool {
	if len(a) != len(b) {
		return false
	}
	sa := toSet(a)
	for _, id := range b {
		if !sa[id] {
			return false
		}
	}
	return true
}

// SmoothUpdatesPass removes binaries that are eligible for the
// smooth-updates grace period (§4.H "final pass removes smooth-update
// leftovers"): present in the target, no longer referenced by any source in
// the target, and whose suite class allows smooth updates.
func (d *Driver) SmoothUpdatesPass(class archmigrate.SuiteClass) []archmigrate.BinaryId {
	if !archmigrate.ParticipatesInSmoothUpdates(class) {
		return nil
	}
	var removed []archmigrate.BinaryId
	for arch, byName := range d.State.Target.Binaries {
		for name, bp := range byName {
			if _, ok := d.State.Target.Sources[bp.SourceName]; ok {
				continue
			}
			d.State.RemoveBinary(arch, name)
			removed = append(removed, bp.ID)
		}
	}
	return removed
}
