package archive

import (
	"io"
	"strconv"
	"strings"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/rfc822"
)

// ParsePackages reads a Packages file for one concrete architecture and
// returns one BinaryPackage per stanza, Pre-Depends folded into Depends and
// Breaks folded into Conflicts (§6). Architecture: all stanzas are re-keyed
// to every architecture in archs (§3's "re-keyed to one BinaryId per
// concrete architecture" note on BinaryId).
func ParsePackages(r io.Reader, arch string, archs archmigrate.ArchTable) ([]*archmigrate.BinaryPackage, error) {
	paras, err := rfc822.ParseParagraphs(r)
	if err != nil {
		return nil, err
	}
	var out []*archmigrate.BinaryPackage
	for _, p := range paras {
		name := p.Get("Package")
		if name == "" {
			continue
		}
		depends := joinNonEmpty(p.Get("Pre-Depends"), p.Get("Depends"))
		conflicts := joinNonEmpty(p.Get("Breaks"), p.Get("Conflicts"))
		provides := parseProvides(p.Get("Provides"))
		version := archmigrate.ParseVersion(p.Get("Version"))

		pkgArch := p.Get("Architecture")
		targetArches := []string{arch}
		if pkgArch == "all" {
			targetArches = archs.Sorted()
		}
		for _, a := range targetArches {
			out = append(out, &archmigrate.BinaryPackage{
				ID:            archmigrate.BinaryId{Name: name, Version: version, Arch: a},
				SourceName:    sourceName(p, name),
				SourceVersion: sourceVersion(p, version),
				Section:       p.Get("Section"),
				MultiArch:     p.Get("Multi-Arch"),
				Essential:     strings.EqualFold(p.Get("Essential"), "yes"),
				DependsRaw:    depends,
				ConflictsRaw:  conflicts,
				Provides:      provides,
			})
		}
	}
	return out, nil
}

// ParseSources reads a Sources file and returns one SourcePackage per
// stanza. Extra-Source-Only: yes stanzas are dropped (§6).
func ParseSources(r io.Reader) ([]*archmigrate.SourcePackage, error) {
	paras, err := rfc822.ParseParagraphs(r)
	if err != nil {
		return nil, err
	}
	var out []*archmigrate.SourcePackage
	for _, p := range paras {
		name := p.Get("Package")
		if name == "" {
			continue
		}
		if strings.EqualFold(p.Get("Extra-Source-Only"), "yes") {
			continue
		}
		out = append(out, &archmigrate.SourcePackage{
			Name:              name,
			Version:           archmigrate.ParseVersion(p.Get("Version")),
			Section:           p.Get("Section"),
			Maintainer:        p.Get("Maintainer"),
			BuildDepsArch:     joinNonEmpty(p.Get("Build-Depends"), p.Get("Build-Depends-Arch")),
			BuildDepsIndep:    p.Get("Build-Depends-Indep"),
			TestsuiteTags:     splitCommaList(p.Get("Testsuite")),
			TestsuiteTriggers: splitCommaList(p.Get("Testsuite-Triggers")),
			Binaries:          make(map[archmigrate.BinaryId]bool),
		})
	}
	return out, nil
}

// Release is the subset of a Release file's fields this codebase consumes
// (§6): which suite this is and which architectures it covers.
type Release struct {
	Suite         string
	Architectures []string
}

// ParseRelease reads a Release file.
func ParseRelease(r io.Reader) (*Release, error) {
	paras, err := rfc822.ParseParagraphs(r)
	if err != nil {
		return nil, err
	}
	if len(paras) == 0 {
		return &Release{}, nil
	}
	p := paras[0]
	return &Release{
		Suite:         p.Get("Suite"),
		Architectures: strings.Fields(p.Get("Architectures")),
	}, nil
}

func sourceName(p *rfc822.Paragraph, binName string) string {
	if src := p.Get("Source"); src != "" {
		if idx := strings.IndexByte(src, ' '); idx > -1 {
			return src[:idx]
		}
		return src
	}
	return binName
}

func sourceVersion(p *rfc822.Paragraph, binVersion archmigrate.Version) archmigrate.Version {
	src := p.Get("Source")
	if idx := strings.IndexByte(src, '('); idx > -1 && strings.HasSuffix(strings.TrimSpace(src), ")") {
		v := strings.TrimSpace(src[idx+1:])
		v = strings.TrimSuffix(v, ")")
		return archmigrate.ParseVersion(v)
	}
	return binVersion
}

func joinNonEmpty(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseProvides(s string) []archmigrate.Provide {
	if s == "" {
		return nil
	}
	var out []archmigrate.Provide
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		var version archmigrate.Version
		if idx := strings.IndexByte(part, '('); idx > -1 {
			name = strings.TrimSpace(part[:idx])
			ver := strings.TrimSpace(part[idx+1:])
			ver = strings.TrimSuffix(ver, ")")
			ver = strings.TrimLeft(ver, "=<>~ ")
			version = archmigrate.ParseVersion(strings.TrimSpace(ver))
		}
		out = append(out, archmigrate.Provide{Name: name, Version: version})
	}
	return out
}

// parseAge is a small helper used by ParseDates (dates.go) for fields stored
// as a decimal number of days or seconds-since-epoch.
func parseAge(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
