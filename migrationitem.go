package archmigrate

import "strings"

// SourceArch is the pseudo-architecture used for MigrationItems that migrate
// a source package as a whole (as opposed to a single binNMU on one arch).
const SourceArch = "source"

// MigrationItem identifies one candidate migration: a source package (or one
// binNMU of it) moving from a source suite into the target, or a removal
// from the target (§3).
type MigrationItem struct {
	Name       string // source package name
	Version    Version
	Arch       string // concrete architecture, or SourceArch
	FromSuite  string // short-name of the source suite this came from
	IsRemoval  bool
}

// Key returns the string MigrationItems are grouped and looked up by,
// ignoring version (binNMU and source items for the same package/arch share
// one ordering-graph node).
func (m MigrationItem) Key() string {
	if m.Arch == "" || m.Arch == SourceArch {
		return m.Name
	}
	return m.Name + "/" + m.Arch
}

// String serialises a MigrationItem the way hints and HeidiResultDelta do:
// "[-]name[/arch][_suite]" (§3).
func (m MigrationItem) String() string {
	var b strings.Builder
	if m.IsRemoval {
		b.WriteByte('-')
	}
	b.WriteString(m.Name)
	if m.Arch != "" && m.Arch != SourceArch {
		b.WriteByte('/')
		b.WriteString(m.Arch)
	}
	if m.FromSuite != "" {
		b.WriteByte('_')
		b.WriteString(m.FromSuite)
	}
	return b.String()
}

// ParseMigrationItem canonicalises a textual migration item reference. The
// form "pkg/amd64" (a binNMU on architecture amd64) and the ambiguous form
// "pkg/1.2" (a source item pinned to version 1.2, using '/' as a version
// separator the way hint files do) are told apart by consulting archs: if
// the segment following '/' names a known architecture, it's an arch
// qualifier; otherwise it's a version pin.
func ParseMigrationItem(s string, archs ArchTable) MigrationItem {
	var m MigrationItem
	if strings.HasPrefix(s, "-") {
		m.IsRemoval = true
		s = s[1:]
	}
	if idx := strings.IndexByte(s, '_'); idx > -1 {
		m.FromSuite = s[idx+1:]
		s = s[:idx]
	}
	if idx := strings.IndexByte(s, '/'); idx > -1 {
		qualifier := s[idx+1:]
		name := s[:idx]
		if archs[qualifier] {
			m.Arch = qualifier
			m.Name = name
		} else {
			// version pin, e.g. "lightgreen/1.1~beta"
			m.Name = name
			m.Version = ParseVersion(qualifier)
			m.Arch = SourceArch
		}
		return m
	}
	m.Name = s
	m.Arch = SourceArch
	return m
}
