package archive

import (
	"strings"
	"testing"

	"github.com/distr1/archmigrate"
)

func TestParsePackagesMergesPreDependsAndBreaks(t *testing.T) {
	const data = `Package: libfoo
Version: 1.0-1
Architecture: amd64
Source: foosrc (1.0-2)
Pre-Depends: libc6 (>= 2.27)
Depends: libbar
Breaks: libold
Conflicts: libother
Provides: libfoo-abi

`
	archs := archmigrate.NewArchTable("amd64")
	bins, err := ParsePackages(strings.NewReader(data), "amd64", archs)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 1 {
		t.Fatalf("expected 1 binary, got %d", len(bins))
	}
	bp := bins[0]
	if bp.DependsRaw != "libc6 (>= 2.27), libbar" {
		t.Errorf("unexpected merged Depends: %q", bp.DependsRaw)
	}
	if bp.ConflictsRaw != "libold, libother" {
		t.Errorf("unexpected merged Conflicts: %q", bp.ConflictsRaw)
	}
	if bp.SourceName != "foosrc" {
		t.Errorf("expected source name foosrc, got %q", bp.SourceName)
	}
	if bp.SourceVersion.Compare(archmigrate.ParseVersion("1.0-2")) != 0 {
		t.Errorf("expected source version 1.0-2, got %s", bp.SourceVersion)
	}
	if len(bp.Provides) != 1 || bp.Provides[0].Name != "libfoo-abi" {
		t.Errorf("unexpected Provides: %+v", bp.Provides)
	}
}

func TestParsePackagesArchitectureAllFansOut(t *testing.T) {
	const data = `Package: data-pkg
Version: 1
Architecture: all

`
	archs := archmigrate.NewArchTable("amd64", "arm64")
	bins, err := ParsePackages(strings.NewReader(data), "amd64", archs)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 2 {
		t.Fatalf("expected 2 binaries (one per arch), got %d", len(bins))
	}
}

func TestParseSourcesDropsExtraSourceOnly(t *testing.T) {
	const data = `Package: keep
Version: 1

Package: drop
Version: 1
Extra-Source-Only: yes

`
	srcs, err := ParseSources(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(srcs) != 1 || srcs[0].Name != "keep" {
		t.Fatalf("expected only 'keep' to survive, got %+v", srcs)
	}
}

func TestParseRelease(t *testing.T) {
	const data = `Suite: unstable
Architectures: amd64 arm64 i386
`
	rel, err := ParseRelease(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if rel.Suite != "unstable" {
		t.Errorf("expected suite unstable, got %q", rel.Suite)
	}
	if len(rel.Architectures) != 3 {
		t.Errorf("expected 3 architectures, got %v", rel.Architectures)
	}
}
