package driver

import (
	"log/slog"
	"testing"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/order"
	"github.com/distr1/archmigrate/internal/suitestate"
	"github.com/distr1/archmigrate/internal/tester"
	"github.com/distr1/archmigrate/internal/universe"
)

func bp(name, version, arch, depends string) *archmigrate.BinaryPackage {
	return &archmigrate.BinaryPackage{
		ID:         archmigrate.BinaryId{Name: name, Version: archmigrate.ParseVersion(version), Arch: arch},
		SourceName: name, SourceVersion: archmigrate.ParseVersion(version),
		DependsRaw: depends,
	}
}

func id(name, version, arch string) archmigrate.BinaryId {
	return archmigrate.BinaryId{Name: name, Version: archmigrate.ParseVersion(version), Arch: arch}
}

func newDriver(t *testing.T, target, source *archmigrate.Suite) *Driver {
	t.Helper()
	archs := archmigrate.NewArchTable("amd64")
	u, err := universe.Build(archs, target, source)
	if err != nil {
		t.Fatal(err)
	}
	tt := tester.New(u, archs, nil, nil)
	state := suitestate.New(target, tt, archs)
	ctx := &archmigrate.Context{Log: slog.Default(), Archs: archs}
	return &Driver{Ctx: ctx, State: state, Tester: tt, Universe: u, Source: source, KeepInstallable: map[archmigrate.BinaryId]bool{}}
}

// TestSimplePass exercises §8 end-to-end scenario 1: target has libc6 1,
// unstable has libc6 2, no rdeps. libc6 should migrate.
func TestSimplePass(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.Sources["libc6"] = &archmigrate.SourcePackage{Name: "libc6", Version: archmigrate.ParseVersion("1")}
	target.AddBinary(bp("libc6", "1", "amd64", ""))

	source := archmigrate.NewSuite(archmigrate.PrimarySource, "unstable", "u")
	source.Sources["libc6"] = &archmigrate.SourcePackage{Name: "libc6", Version: archmigrate.ParseVersion("2")}
	source.AddBinary(bp("libc6", "2", "amd64", ""))

	d := newDriver(t, target, source)
	groups := []order.Group{{
		Item:    archmigrate.MigrationItem{Name: "libc6", Arch: archmigrate.SourceArch},
		Adds:    []archmigrate.BinaryId{id("libc6", "2", "amd64")},
		Removes: []archmigrate.BinaryId{id("libc6", "1", "amd64")},
	}}
	report := d.RunBatch([][]order.Group{groups})
	if len(report.Accepted) != 1 {
		t.Fatalf("expected libc6 to migrate, got accepted=%v rejected=%v", report.Accepted, report.Rejected)
	}
	if _, ok := target.Binary("amd64", "libc6"); !ok {
		t.Fatal("expected libc6 to be present in target")
	}
	if bp, _ := target.Binary("amd64", "libc6"); bp.ID.Version.Compare(archmigrate.ParseVersion("2")) != 0 {
		t.Errorf("expected libc6 2 in target, got %s", bp.ID.Version)
	}
}

// TestDependsRegressionSCC exercises §8 scenario 2: green 2 depends on
// libgreen1 (>= 2); target has green 1 depending on libgreen1 (unversioned);
// unstable's libgreen1 2 satisfies both. green and libgreen1 migrate
// together as one SCC.
func TestDependsRegressionSCC(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.Sources["green"] = &archmigrate.SourcePackage{Name: "green", Version: archmigrate.ParseVersion("1")}
	target.Sources["libgreen1"] = &archmigrate.SourcePackage{Name: "libgreen1", Version: archmigrate.ParseVersion("1")}
	target.AddBinary(bp("green", "1", "amd64", "libgreen1"))
	target.AddBinary(bp("libgreen1", "1", "amd64", ""))

	source := archmigrate.NewSuite(archmigrate.PrimarySource, "unstable", "u")
	source.Sources["green"] = &archmigrate.SourcePackage{Name: "green", Version: archmigrate.ParseVersion("2")}
	source.Sources["libgreen1"] = &archmigrate.SourcePackage{Name: "libgreen1", Version: archmigrate.ParseVersion("2")}
	source.AddBinary(bp("green", "2", "amd64", "libgreen1 (>= 2)"))
	source.AddBinary(bp("libgreen1", "2", "amd64", ""))

	d := newDriver(t, target, source)
	groups := []order.Group{
		{
			Item:    archmigrate.MigrationItem{Name: "green", Arch: archmigrate.SourceArch},
			Adds:    []archmigrate.BinaryId{id("green", "2", "amd64")},
			Removes: []archmigrate.BinaryId{id("green", "1", "amd64")},
		},
		{
			Item:    archmigrate.MigrationItem{Name: "libgreen1", Arch: archmigrate.SourceArch},
			Adds:    []archmigrate.BinaryId{id("libgreen1", "2", "amd64")},
			Removes: []archmigrate.BinaryId{id("libgreen1", "1", "amd64")},
		},
	}
	// Both committed together as one step: green 2 alone breaks on the
	// missing libgreen1 >= 2.
	report := d.RunBatch([][]order.Group{groups})
	if len(report.Accepted) != 2 {
		t.Fatalf("expected both green and libgreen1 to migrate together, got accepted=%v rejected=%v", report.Accepted, report.Rejected)
	}
}
