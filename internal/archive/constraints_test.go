package archive

import (
	"strings"
	"testing"

	"github.com/distr1/archmigrate"
)

func TestParseFauxPackagesFansOutPerArch(t *testing.T) {
	const data = `Fake-Source: archive-meta
Version: 1

`
	archs := archmigrate.NewArchTable("amd64", "arm64")
	fps, err := ParseFauxPackages(strings.NewReader(data), archs)
	if err != nil {
		t.Fatal(err)
	}
	if len(fps) != 2 {
		t.Fatalf("expected 2 faux binaries, got %d", len(fps))
	}
	for _, fp := range fps {
		if fp.Binary.Section != "faux" {
			t.Errorf("expected faux section, got %q", fp.Binary.Section)
		}
		if !fp.Source.IsFake {
			t.Error("expected source marked IsFake")
		}
	}
}

func TestParseConstraintsSkipsUnsupportedKind(t *testing.T) {
	const data = `Kind: present-and-installable
Package: libfoo

Kind: something-else
Package: libbar

`
	cs, err := ParseConstraints(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 1 || cs[0].Package != "libfoo" {
		t.Fatalf("expected only libfoo to survive, got %+v", cs)
	}
}

func TestKeepInstallableSet(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "t", "t")
	target.AddBinary(&archmigrate.BinaryPackage{
		ID: archmigrate.BinaryId{Name: "libfoo", Version: archmigrate.ParseVersion("1"), Arch: "amd64"},
	})
	archs := archmigrate.NewArchTable("amd64")
	cs := []Constraint{{Kind: ConstraintPresentAndInstallable, Package: "libfoo"}}
	set := KeepInstallableSet(cs, target, archs)
	want := archmigrate.BinaryId{Name: "libfoo", Version: archmigrate.ParseVersion("1"), Arch: "amd64"}
	if !set[want] {
		t.Errorf("expected %v in keep-installable set, got %v", want, set)
	}
}
