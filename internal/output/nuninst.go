package output

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/driver"
)

// WriteNuninst renders the nuninst counters file: a "Built on"/"Last update"
// header, then one `<arch>: space-separated broken package list` line per
// architecture, followed by the arch-all-inclusive `<arch>+all:` variant
// (§6). archAll holds, per arch, the broken set when arch:all packages are
// included in the count.
func WriteNuninst(path string, n, archAll driver.Nuninst, builtOn time.Time) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Built on: %s\n", builtOn.UTC().Format(time.RFC1123))
	fmt.Fprintf(&sb, "Last update: %s\n", time.Now().UTC().Format(time.RFC1123))

	arches := sortedArches(n)
	for _, arch := range arches {
		fmt.Fprintf(&sb, "%s: %s\n", arch, joinBroken(n[arch]))
	}
	for _, arch := range arches {
		fmt.Fprintf(&sb, "%s+all: %s\n", arch, joinBroken(archAll[arch]))
	}
	return renameio.WriteFile(path, []byte(sb.String()), 0o644)
}

func sortedArches(n driver.Nuninst) []string {
	arches := make([]string, 0, len(n))
	for arch := range n {
		arches = append(arches, arch)
	}
	sort.Strings(arches)
	return arches
}

func joinBroken(ids []archmigrate.BinaryId) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name
	}
	return strings.Join(names, " ")
}

// ReadNuninst parses a nuninst counters file written by WriteNuninst back
// into Nuninst, resolving each listed name to its current BinaryId by
// looking it up in target (the file itself only records names, matching the
// real archive's nuninst format). A name no longer present in target (the
// suite moved on since the cache was written) is kept with a zero Version so
// it still counts toward the broken set; the next full Compute will correct
// it. The "<arch>+all" lines are ignored; only the arch-only counters are
// returned.
func ReadNuninst(path string, target *archmigrate.Suite) (driver.Nuninst, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := make(driver.Nuninst)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		arch, rest, ok := strings.Cut(line, ":")
		if !ok || strings.HasSuffix(arch, "+all") {
			continue
		}
		arch = strings.TrimSpace(arch)
		if arch == "Built on" || arch == "Last update" {
			continue
		}
		fields := strings.Fields(rest)
		ids := make([]archmigrate.BinaryId, 0, len(fields))
		for _, name := range fields {
			id := archmigrate.BinaryId{Name: name, Arch: arch}
			if bp, ok := target.Binary(arch, name); ok {
				id = bp.ID
			}
			ids = append(ids, id)
		}
		n[arch] = ids
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return n, nil
}
