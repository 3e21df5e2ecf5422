package excuse

import (
	"testing"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/hints"
	"github.com/distr1/archmigrate/internal/policy"
	"github.com/distr1/archmigrate/internal/universe"
)

func bp(name, version, arch, depends string) *archmigrate.BinaryPackage {
	return &archmigrate.BinaryPackage{
		ID:         archmigrate.BinaryId{Name: name, Version: archmigrate.ParseVersion(version), Arch: arch},
		SourceName: name, SourceVersion: archmigrate.ParseVersion(version),
		DependsRaw: depends,
	}
}

func sp(name, version string) *archmigrate.SourcePackage {
	return &archmigrate.SourcePackage{Name: name, Version: archmigrate.ParseVersion(version)}
}

func newBuilder(t *testing.T, target, source *archmigrate.Suite) *Builder {
	t.Helper()
	archs := archmigrate.NewArchTable("amd64")
	u, err := universe.Build(archs, target, source)
	if err != nil {
		t.Fatal(err)
	}
	return &Builder{Target: target, Source: source, Universe: u, Engine: policy.NewEngine(), Archs: archs}
}

func TestBuildFullSourceSimplePass(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.Sources["libc6"] = sp("libc6", "1")
	target.AddBinary(bp("libc6", "1", "amd64", ""))

	source := archmigrate.NewSuite(archmigrate.PrimarySource, "unstable", "u")
	source.Sources["libc6"] = sp("libc6", "2")
	source.AddBinary(bp("libc6", "2", "amd64", ""))

	b := newBuilder(t, target, source)
	e := b.BuildFullSource("libc6", nil)
	if e == nil {
		t.Fatal("expected an excuse")
	}
	if e.Verdict != policy.PASS {
		t.Errorf("expected PASS, got %s (%v)", e.Verdict, e.Reasons)
	}
}

func TestBuildFullSourceNewerInTesting(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.Sources["foo"] = sp("foo", "5")
	source := archmigrate.NewSuite(archmigrate.PrimarySource, "unstable", "u")
	source.Sources["foo"] = sp("foo", "3")

	b := newBuilder(t, target, source)
	e := b.BuildFullSource("foo", nil)
	if e.Verdict != policy.REJECTED_PERMANENTLY {
		t.Errorf("expected REJECTED_PERMANENTLY, got %s", e.Verdict)
	}
}

func TestBuildFullSourceBlockHint(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.Sources["foo"] = sp("foo", "1")
	source := archmigrate.NewSuite(archmigrate.PrimarySource, "unstable", "u")
	source.Sources["foo"] = sp("foo", "2")

	b := newBuilder(t, target, source)
	hs := []hints.Hint{{Kind: hints.Block, Author: "release-team"}}
	e := b.BuildFullSource("foo", hs)
	if e.Verdict != policy.REJECTED_NEEDS_APPROVAL {
		t.Errorf("expected REJECTED_NEEDS_APPROVAL, got %s", e.Verdict)
	}
}

func TestBuildFullSourceForceOverridesReject(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.Sources["lightgreen"] = sp("lightgreen", "1")
	source := archmigrate.NewSuite(archmigrate.PrimarySource, "unstable", "u")
	source.Sources["lightgreen"] = sp("lightgreen", "1.1~beta")
	source.AddBinary(bp("lightgreen", "1.1~beta", "amd64", "libgreen1 (>= 2)"))
	source.AddBinary(bp("libgreen1", "1", "amd64", ""))

	b := newBuilder(t, target, source)
	e := b.BuildFullSource("lightgreen", nil)
	b.ScanDepends(e, "lightgreen")
	if !e.DependsFailed {
		t.Fatalf("expected depends-failed: only libgreen1 1 exists, need >= 2")
	}

	hs := []hints.Hint{{Kind: hints.Force, Author: "release-team"}}
	e2 := b.BuildFullSource("lightgreen", hs)
	if e2.Verdict != policy.PASS_HINTED {
		t.Errorf("expected PASS_HINTED once forced, got %s", e2.Verdict)
	}
}

func TestInvalidatePropagatesToDependent(t *testing.T) {
	blocker := &Excuse{Item: archmigrate.MigrationItem{Name: "blocker"}, Verdict: policy.REJECTED_NEEDS_APPROVAL}
	dependent := &Excuse{Item: archmigrate.MigrationItem{Name: "dependent"}, Dependencies: []string{"blocker"}}
	valid := map[string]bool{"dependent": true} // blocker is unconsidered

	Invalidate([]*Excuse{blocker, dependent}, valid, func(name string) bool { return true })

	if !dependent.Invalid {
		t.Errorf("expected dependent to be invalidated")
	}
	if dependent.Verdict != policy.REJECTED_BLOCKED_BY_ANOTHER_ITEM {
		t.Errorf("expected REJECTED_BLOCKED_BY_ANOTHER_ITEM, got %s", dependent.Verdict)
	}
}
