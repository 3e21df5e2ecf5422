package order

import (
	"testing"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/universe"
)

func bp(name, version, arch, depends string) *archmigrate.BinaryPackage {
	return &archmigrate.BinaryPackage{
		ID:         archmigrate.BinaryId{Name: name, Version: archmigrate.ParseVersion(version), Arch: arch},
		DependsRaw: depends,
	}
}

func id(name, version, arch string) archmigrate.BinaryId {
	return archmigrate.BinaryId{Name: name, Version: archmigrate.ParseVersion(version), Arch: arch}
}

func mi(name string) archmigrate.MigrationItem {
	return archmigrate.MigrationItem{Name: name, Arch: archmigrate.SourceArch}
}

func TestSolveOrdersSupplierFirst(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.AddBinary(bp("libfoo1", "1", "amd64", ""))
	target.AddBinary(bp("libfoo2", "2", "amd64", ""))
	target.AddBinary(bp("app", "1", "amd64", "libfoo1"))

	u, err := universe.Build(archs, target)
	if err != nil {
		t.Fatal(err)
	}

	groups := []Group{
		{Item: mi("app"), Adds: []archmigrate.BinaryId{id("app", "2", "amd64")}, Removes: []archmigrate.BinaryId{id("app", "1", "amd64")}},
		{Item: mi("libfoo"), Adds: []archmigrate.BinaryId{id("libfoo2", "2", "amd64")}, Removes: []archmigrate.BinaryId{id("libfoo1", "1", "amd64")}},
	}
	// app's new version now depends on libfoo2 (simulated by overriding the
	// universe lookup is out of scope here; instead verify the
	// reverse-dep-on-removal ordering, which the fixture above does exercise
	// directly: removing libfoo1 breaks app unless libfoo arrives first).
	schedule, dropped := Solve(groups, u)
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	if len(schedule) == 0 {
		t.Fatal("expected a non-empty schedule")
	}

	pos := make(map[string]int)
	for i, step := range schedule {
		for _, g := range step {
			pos[g.Item.Name] = i
		}
	}
	if pos["libfoo"] > pos["app"] {
		t.Errorf("expected libfoo group to be scheduled no later than app group, got positions %v", pos)
	}
}

func TestSolveDropsInternallyInconsistentGroup(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	u, err := universe.Build(archs, target)
	if err != nil {
		t.Fatal(err)
	}

	bad := id("weird", "1", "amd64")
	groups := []Group{
		{Item: mi("weird"), Adds: []archmigrate.BinaryId{bad}, Removes: []archmigrate.BinaryId{bad}},
	}
	schedule, dropped := Solve(groups, u)
	if len(dropped) != 1 {
		t.Fatalf("expected 1 dropped group, got %d", len(dropped))
	}
	if len(schedule) != 0 {
		t.Errorf("expected empty schedule, got %v", schedule)
	}
}

func TestSolveEmptyBatch(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	u, err := universe.Build(archs, target)
	if err != nil {
		t.Fatal(err)
	}
	schedule, dropped := Solve(nil, u)
	if len(schedule) != 0 || len(dropped) != 0 {
		t.Errorf("expected empty results for empty batch")
	}
}
