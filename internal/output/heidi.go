// Package output renders the migration engine's result files (§6): HeidiResult
// and HeidiResultDelta (the new target snapshot and the ordered list of
// accepted migrations), the nuninst counters file, and excuses.yaml/html.
// HeidiResult, HeidiResultDelta and the nuninst file are written atomically
// via renameio, the way the teacher's mirror/build/install commands publish
// their own generated artifacts; excuses.yaml/html are written directly
// with os.Create.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/renameio"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/order"
)

// WriteHeidiResult renders every binary in target, then every source, into
// path (§6). Sort order is by architecture then name, sources after all
// binaries; faux (or */faux) sections are skipped.
func WriteHeidiResult(path string, target *archmigrate.Suite) error {
	var sb strings.Builder

	arches := make([]string, 0, len(target.Binaries))
	for arch := range target.Binaries {
		arches = append(arches, arch)
	}
	sort.Strings(arches)
	for _, arch := range arches {
		names := make([]string, 0, len(target.Binaries[arch]))
		for name := range target.Binaries[arch] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			bp := target.Binaries[arch][name]
			if isFauxSection(bp.Section) {
				continue
			}
			fmt.Fprintf(&sb, "%s %s %s %s\n", bp.ID.Name, bp.ID.Version, arch, bp.Section)
		}
	}

	names := make([]string, 0, len(target.Sources))
	for name := range target.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		src := target.Sources[name]
		if isFauxSection(src.Section) {
			continue
		}
		fmt.Fprintf(&sb, "%s %s source %s\n", src.Name, src.Version, src.Section)
	}

	return renameio.WriteFile(path, []byte(sb.String()), 0o644)
}

func isFauxSection(section string) bool {
	return section == "faux" || strings.HasSuffix(section, "/faux")
}

// WriteHeidiResultDelta renders, for each accepted group in the exact order
// they were accepted, one `-<name> <ver>[ <arch>]` line per binary the group
// removes followed by one `<name> <ver>[ <arch>]` line per binary it adds
// (§6); a group is not collapsed into a single line.
// accepted is the order.Group slice a Driver.Report.Accepted list carries.
func WriteHeidiResultDelta(path string, accepted []order.Group) error {
	var sb strings.Builder
	for _, g := range accepted {
		for _, rem := range g.Removes {
			if rem.Arch == "" || g.Item.Arch == archmigrate.SourceArch {
				fmt.Fprintf(&sb, "-%s %s\n", rem.Name, rem.Version)
			} else {
				fmt.Fprintf(&sb, "-%s %s %s\n", rem.Name, rem.Version, rem.Arch)
			}
		}
		for _, add := range g.Adds {
			if g.Item.Arch == archmigrate.SourceArch {
				fmt.Fprintf(&sb, "%s %s\n", add.Name, add.Version)
			} else {
				fmt.Fprintf(&sb, "%s %s %s\n", add.Name, add.Version, add.Arch)
			}
		}
	}
	return renameio.WriteFile(path, []byte(sb.String()), 0o644)
}
