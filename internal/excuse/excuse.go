// Package excuse builds per-candidate Excuses (§4.D) and runs the
// dependency-driven invalidation fixpoint (§4.I).
package excuse

import (
	"fmt"
	"sort"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/hints"
	"github.com/distr1/archmigrate/internal/policy"
	"github.com/distr1/archmigrate/internal/universe"
)

// Excuse records why one candidate did or did not migrate (§3, §7: "the
// excuses file is the single source of truth for 'why did X not migrate'").
type Excuse struct {
	Item archmigrate.MigrationItem

	FromVersion archmigrate.Version // zero value if not currently in target
	ToVersion   archmigrate.Version

	Verdict policy.Verdict
	Reasons []string

	// DependsFailed marks an unsatisfiable dependency clause found during
	// the §4.D step 4 scan.
	DependsFailed bool

	// Dependencies lists other excuses' Item.Key() this one's migration
	// depends on (the "dep" edges from §4.D step 4), used by Invalidate.
	Dependencies []string

	// Invalid is set once invalidation (§4.I) determines this excuse's
	// dependency cannot be satisfied.
	Invalid bool
	Note    string
}

// Builder assembles excuses from the target/source suites plus the
// pre-built universe and policy engine.
type Builder struct {
	Target   *archmigrate.Suite
	Source   *archmigrate.Suite
	Universe *universe.PackageUniverse
	Engine   *policy.Engine
	Archs    archmigrate.ArchTable
}

// BuildRemoval produces a `-name` excuse for a source that disappeared from
// the primary source suite but is still present in the target, unless a
// block/block-udeb hint overrides the removal (§4.D step 1).
func (b *Builder) BuildRemoval(name string, hs []hints.Hint) *Excuse {
	tgtSrc, ok := b.Target.Sources[name]
	if !ok {
		return nil
	}
	item := archmigrate.MigrationItem{Name: name, Arch: archmigrate.SourceArch, IsRemoval: true}
	e := &Excuse{Item: item, FromVersion: tgtSrc.Version, Verdict: policy.PASS}
	for _, h := range hs {
		if h.Kind == hints.Block || h.Kind == hints.BlockUdeb {
			e.Verdict = policy.REJECTED_NEEDS_APPROVAL
			e.Reasons = append(e.Reasons, string(h.Kind))
			return e
		}
	}
	return e
}

// BuildBinaryOnly produces a `name/arch` excuse when the target and source
// suite agree on the source version but the source suite carries newer
// binaries for arch (a binNMU), with cruft detection for binaries whose
// source-version no longer matches any source (§4.D step 2).
func (b *Builder) BuildBinaryOnly(name, arch string) *Excuse {
	srcPkg, ok := b.Source.Sources[name]
	if !ok {
		return nil
	}
	tgtPkg, ok := b.Target.Sources[name]
	if !ok || tgtPkg.Version.Compare(srcPkg.Version) != 0 {
		return nil
	}
	srcBin, okS := b.Source.Binary(arch, name)
	tgtBin, okT := b.Target.Binary(arch, name)
	if !okS || (okT && srcBin.ID.Version.Compare(tgtBin.ID.Version) <= 0) {
		return nil
	}
	item := archmigrate.MigrationItem{Name: name, Arch: arch}
	e := &Excuse{Item: item, ToVersion: srcBin.ID.Version, Verdict: policy.PASS}
	if okT {
		e.FromVersion = tgtBin.ID.Version
	}

	// Cruft detection: any target binary on arch whose SourceVersion no
	// longer matches the (possibly now-removed) source it claims is recorded
	// as a "cruft:<name>" reason on the excuse. It is not removed here, and
	// GroupFromExcuse does not act on these reasons.
	if byName, ok := b.Target.Binaries[arch]; ok {
		for bn, bp := range byName {
			if bp.SourceName != name {
				continue
			}
			if bp.SourceVersion.Compare(tgtPkg.Version) != 0 {
				e.Reasons = append(e.Reasons, "cruft:"+bn)
			}
		}
	}
	return e
}

// BuildFullSource produces a `name` excuse when the source-suite version
// exceeds the target's, collecting out-of-date builds per architecture and
// honouring remove/block/block-all/unblock/force/urgent hints with their
// documented precedence (§4.D step 3).
func (b *Builder) BuildFullSource(name string, hs []hints.Hint) *Excuse {
	srcPkg, ok := b.Source.Sources[name]
	if !ok {
		return nil
	}
	item := archmigrate.MigrationItem{Name: name, Arch: archmigrate.SourceArch}
	e := &Excuse{Item: item, ToVersion: srcPkg.Version, Verdict: policy.PASS}

	if tgtPkg, ok := b.Target.Sources[name]; ok {
		e.FromVersion = tgtPkg.Version
		if srcPkg.Version.Compare(tgtPkg.Version) <= 0 {
			e.Verdict = policy.REJECTED_PERMANENTLY
			e.Reasons = append(e.Reasons, "newerintesting")
			return e
		}
	}

	for arch := range b.Archs {
		_, okS := b.Source.Binary(arch, name)
		tgtBin, okT := b.Target.Binary(arch, name)
		if !okS {
			e.Reasons = append(e.Reasons, "missing-build:"+arch)
			continue
		}
		if okT && tgtBin.SourceVersion.Compare(srcPkg.Version) != 0 {
			e.Reasons = append(e.Reasons, "old-cruft:"+arch)
		}
	}

	forced := false
	blocked := false
	approved := false
	for _, h := range hs {
		switch h.Kind {
		case hints.Remove:
			e.Verdict = policy.REJECTED_PERMANENTLY
			e.Reasons = append(e.Reasons, "remove")
			return e
		case hints.Block, hints.BlockAll:
			blocked = true
		case hints.Unblock:
			for _, it := range h.Items {
				if it.Version.Compare(srcPkg.Version) == 0 {
					blocked = false
					approved = true
				}
			}
		case hints.Force:
			forced = true
		case hints.Urgent:
			approved = true
		}
	}
	if blocked && !approved {
		e.Verdict = policy.REJECTED_NEEDS_APPROVAL
		e.Reasons = append(e.Reasons, "block")
	}
	if forced {
		e.Verdict = policy.PASS_HINTED
		e.Reasons = append(e.Reasons, "force")
	}
	return e
}

// ScanDepends runs the §4.D step 4 unsatisfiable-dependency scan, on each
// architecture, for the source suite's binary named like the candidate
// source; other binaries built by that source are not scanned. Clauses the universe marks
// Broken tag the excuse depends-failed; satisfiable clauses record a "dep"
// edge to whichever other source supplies each candidate.
func (b *Builder) ScanDepends(e *Excuse, name string) {
	for arch := range b.Archs {
		bp, ok := b.Source.Binary(arch, name)
		if !ok {
			continue
		}
		rel, ok := b.Universe.Relations(bp.ID)
		if !ok {
			continue
		}
		if rel.Broken {
			e.DependsFailed = true
			e.Reasons = append(e.Reasons, "depends")
			continue
		}
		for _, clause := range rel.CNFDepends {
			for _, cand := range clause {
				if cbp, ok := b.Source.Binary(cand.Arch, cand.Name); ok && cbp.SourceName != name {
					e.Dependencies = append(e.Dependencies, cbp.SourceName)
				}
			}
		}
	}
	e.Dependencies = dedupStrings(e.Dependencies)
}

// Evaluate hands the excuse to the Policy Engine and records the merged
// verdict unless a hint has already produced a terminal verdict (§4.D
// step 5).
func (b *Builder) Evaluate(e *Excuse, c policy.Candidate) {
	if e.Verdict == policy.REJECTED_PERMANENTLY || e.Verdict == policy.PASS_HINTED {
		return
	}
	res := b.Engine.Evaluate(c)
	if res.Verdict > e.Verdict {
		e.Verdict = res.Verdict
	}
	if res.Reason != "" {
		e.Reasons = append(e.Reasons, res.Reason)
	}
	if e.DependsFailed && e.Verdict < policy.REJECTED_WAITING_FOR_ANOTHER_ITEM {
		e.Verdict = policy.REJECTED_WAITING_FOR_ANOTHER_ITEM
	}
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (e *Excuse) String() string {
	return fmt.Sprintf("%s: %s (%v)", e.Item, e.Verdict, e.Reasons)
}
