package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/hints"
)

// LoadSuite fetches and parses a suite's Sources and per-architecture
// Packages files from repo, populating a fresh *archmigrate.Suite (§3,
// §6). The suite's Release file is not read. Extra-Source-Only sources are dropped, per §6.
func LoadSuite(ctx context.Context, f *Fetcher, repo archmigrate.Repo, class archmigrate.SuiteClass, name, shortName string, archs archmigrate.ArchTable) (*archmigrate.Suite, error) {
	suite := archmigrate.NewSuite(class, name, shortName)

	if rc, err := f.Open(ctx, repo, "Sources"); err == nil {
		defer rc.Close()
		srcs, err := ParseSources(rc)
		if err != nil {
			return nil, fmt.Errorf("parsing %s Sources: %w", name, err)
		}
		for _, s := range srcs {
			suite.Sources[s.Name] = s
		}
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("fetching %s Sources: %w", name, err)
	}

	for arch := range archs {
		rc, err := f.Open(ctx, repo, "Packages_"+arch)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("fetching %s/%s Packages: %w", name, arch, err)
		}
		bins, perr := ParsePackages(rc, arch, archs)
		rc.Close()
		if perr != nil {
			return nil, fmt.Errorf("parsing %s/%s Packages: %w", name, arch, perr)
		}
		for _, bp := range bins {
			suite.AddBinary(bp)
			if src, ok := suite.Sources[bp.SourceName]; ok {
				src.Binaries[bp.ID] = true
			}
		}
	}
	return suite, nil
}

func isNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

// LoadHints reads every permitted user's Hints/<user> file under hintsDir
// and returns the merged, parsed hint list (§4's "Hints collection: built
// once during startup").
func LoadHints(hintsDir string, archs archmigrate.ArchTable, perms hints.Permissions) ([]hints.Hint, []*hints.ParseError, error) {
	entries, err := os.ReadDir(hintsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	var all []hints.Hint
	var allErrs []*hints.ParseError
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		user := ent.Name()
		if _, ok := perms[user]; !ok {
			continue
		}
		f, err := os.Open(filepath.Join(hintsDir, user))
		if err != nil {
			return nil, nil, err
		}
		hs, errs := hints.Parse(f, user, archs, perms)
		f.Close()
		all = append(all, hs...)
		allErrs = append(allErrs, errs...)
	}
	return all, allErrs, nil
}
