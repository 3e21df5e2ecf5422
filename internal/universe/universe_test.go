package universe

import (
	"testing"

	"github.com/distr1/archmigrate"
)

func bp(name, version, arch, depends string) *archmigrate.BinaryPackage {
	return &archmigrate.BinaryPackage{
		ID:         archmigrate.BinaryId{Name: name, Version: archmigrate.ParseVersion(version), Arch: arch},
		DependsRaw: depends,
	}
}

func TestBuildSimple(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.AddBinary(bp("libc6", "1", "amd64", ""))

	u, err := Build(archs, target)
	if err != nil {
		t.Fatal(err)
	}
	id := archmigrate.BinaryId{Name: "libc6", Version: archmigrate.ParseVersion("1"), Arch: "amd64"}
	rel, ok := u.Relations(id)
	if !ok {
		t.Fatalf("no relations for %v", id)
	}
	if rel.Broken {
		t.Errorf("libc6 should not be broken")
	}
}

func TestBuildBrokenPropagates(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	target := archmigrate.NewSuite(archmigrate.Target, "target", "t")
	target.AddBinary(bp("green", "2", "amd64", "libgreen1 (>= 3)"))
	target.AddBinary(bp("libgreen1", "1", "amd64", ""))
	target.AddBinary(bp("lightgreen", "1", "amd64", "green"))

	u, err := Build(archs, target)
	if err != nil {
		t.Fatal(err)
	}
	greenID := archmigrate.BinaryId{Name: "green", Version: archmigrate.ParseVersion("2"), Arch: "amd64"}
	rel, _ := u.Relations(greenID)
	if !rel.Broken {
		t.Errorf("green should be broken: no libgreen1 >= 3 available")
	}
	lgID := archmigrate.BinaryId{Name: "lightgreen", Version: archmigrate.ParseVersion("1"), Arch: "amd64"}
	lgRel, _ := u.Relations(lgID)
	if !lgRel.Broken {
		t.Errorf("lightgreen should be broken transitively through green")
	}
}
