package archive

import (
	"io"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/rfc822"
)

// FauxPackage is one faux-packages stanza: a synthesised source/binary pair
// used to stand in for something outside the archive proper (e.g. the
// release's own meta-package) (§6).
type FauxPackage struct {
	Source  *archmigrate.SourcePackage
	Binary  *archmigrate.BinaryPackage
}

// ParseFauxPackages reads a faux-packages tag file. Every stanza names a
// Fake-Source and produces one binary per architecture in archs, each
// Provides-ing itself so other binaries can depend on it.
func ParseFauxPackages(r io.Reader, archs archmigrate.ArchTable) ([]FauxPackage, error) {
	paras, err := rfc822.ParseParagraphs(r)
	if err != nil {
		return nil, err
	}
	var out []FauxPackage
	for _, p := range paras {
		name := p.Get("Fake-Source")
		if name == "" {
			name = p.Get("Package")
		}
		if name == "" {
			continue
		}
		version := archmigrate.ParseVersion(p.Get("Version"))
		src := &archmigrate.SourcePackage{
			Name:     name,
			Version:  version,
			Section:  "faux",
			IsFake:   true,
			Binaries: make(map[archmigrate.BinaryId]bool),
		}
		for _, arch := range archs.Sorted() {
			id := archmigrate.BinaryId{Name: name, Version: version, Arch: arch}
			src.Binaries[id] = true
			out = append(out, FauxPackage{
				Source: src,
				Binary: &archmigrate.BinaryPackage{
					ID:            id,
					SourceName:    name,
					SourceVersion: version,
					Section:       "faux",
					DependsRaw:    joinNonEmpty(p.Get("Pre-Depends"), p.Get("Depends")),
					Provides:      []archmigrate.Provide{{Name: name, Version: version}},
				},
			})
		}
	}
	return out, nil
}

// ConstraintKind names a supported constraints-file kind (§6: only
// present-and-installable is supported).
type ConstraintKind string

// ConstraintPresentAndInstallable is the one constraint kind this codebase
// understands: the named binary must remain present and installable across
// a migration, which feeds constraints.keep-installable.
const ConstraintPresentAndInstallable ConstraintKind = "present-and-installable"

// Constraint is one constraints-file stanza.
type Constraint struct {
	Kind    ConstraintKind
	Package string
	Arch    string
}

// ParseConstraints reads a constraints tag file, skipping any stanza whose
// Kind isn't ConstraintPresentAndInstallable (§6 only supports that one
// kind; others are recognised as present but inert rather than rejected
// outright, matching how archive ingestion elsewhere tolerates unknown
// fields).
func ParseConstraints(r io.Reader) ([]Constraint, error) {
	paras, err := rfc822.ParseParagraphs(r)
	if err != nil {
		return nil, err
	}
	var out []Constraint
	for _, p := range paras {
		kind := ConstraintKind(p.Get("Kind"))
		if kind != ConstraintPresentAndInstallable {
			continue
		}
		out = append(out, Constraint{
			Kind:    kind,
			Package: p.Get("Package"),
			Arch:    p.Get("Architecture"),
		})
	}
	return out, nil
}

// KeepInstallableSet resolves a parsed constraints list into the
// driver.KeepInstallable lookup (archmigrate.BinaryId -> true), using target to
// find the binary's current version on each named (or every) architecture.
func KeepInstallableSet(cs []Constraint, target *archmigrate.Suite, archs archmigrate.ArchTable) map[archmigrate.BinaryId]bool {
	out := make(map[archmigrate.BinaryId]bool)
	for _, c := range cs {
		arches := archs.Sorted()
		if c.Arch != "" {
			arches = []string{c.Arch}
		}
		for _, arch := range arches {
			if bp, ok := target.Binary(arch, c.Package); ok {
				out[bp.ID] = true
			}
		}
	}
	return out
}
