// Package suitestate holds the target suite's live sources/binaries/provides
// and keeps the installability tester's caches in sync with every mutation
// (§4.C).
package suitestate

import (
	"fmt"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/tester"
)

// State is a thin wrapper around the target *archmigrate.Suite that routes
// every mutation through the matching Tester hook, the way the teacher's
// reader.go routes every fetched file through its cache layer before callers
// ever see it.
type State struct {
	Target  *archmigrate.Suite
	tester  *tester.Tester
	arch    archmigrate.ArchTable
	essential map[string]map[string]bool // arch -> binary name -> essential
}

// New wraps target with t, seeding t's present set from every binary
// target already holds (§4.B's PresentSet starts as the target suite's
// contents, not empty) and pre-seeding essential, per architecture, with
// which binary names are currently marked Essential: yes, for
// EssentialAdd/Remove bookkeeping.
func New(target *archmigrate.Suite, t *tester.Tester, archs archmigrate.ArchTable) *State {
	s := &State{Target: target, tester: t, arch: archs, essential: make(map[string]map[string]bool)}
	for arch, byName := range target.Binaries {
		for name, bp := range byName {
			t.AddBinary(bp.ID)
			if bp.Essential {
				s.markEssential(arch, name)
			}
		}
	}
	return s
}

func (s *State) markEssential(arch, name string) {
	if s.essential[arch] == nil {
		s.essential[arch] = make(map[string]bool)
	}
	s.essential[arch][name] = true
}

// AddBinary installs bp into the target suite and notifies the tester
// (§4.C "on any binary add/remove it calls the matching tester hook").
func (s *State) AddBinary(bp *archmigrate.BinaryPackage) {
	s.Target.AddBinary(bp)
	s.tester.AddBinary(bp.ID)
	if bp.Essential {
		s.markEssential(bp.ID.Arch, bp.ID.Name)
	}
}

// RemoveBinary removes the binary named name on arch from the target suite
// and notifies the tester.
func (s *State) RemoveBinary(arch, name string) {
	bp, ok := s.Target.Binary(arch, name)
	if !ok {
		return
	}
	s.Target.RemoveBinary(arch, name)
	s.tester.RemoveBinary(bp.ID)
	if bp.Essential {
		delete(s.essential[arch], name)
	}
}

// AddSource installs src into the target suite's source index.
func (s *State) AddSource(src *archmigrate.SourcePackage) {
	s.Target.Sources[src.Name] = src
}

// RemoveSource removes the named source from the target suite's index.
func (s *State) RemoveSource(name string) {
	delete(s.Target.Sources, name)
}

// InvariantError reports a Target Suite State invariant violation (§4.C).
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("suite state invariant violated: %s", e.Reason)
}

// CheckInvariants verifies: every binary in the target names a source in the
// target, and every binary referenced from a source is present in the
// target's per-arch binary map (§4.C). Nothing in cmd/archmigrate calls it;
// a migration pass ends without this check.
func (s *State) CheckInvariants() error {
	for arch, byName := range s.Target.Binaries {
		for name, bp := range byName {
			if _, ok := s.Target.Sources[bp.SourceName]; !ok {
				return &InvariantError{Reason: fmt.Sprintf("binary %s/%s names missing source %q", arch, name, bp.SourceName)}
			}
		}
	}
	for srcName, src := range s.Target.Sources {
		for id := range src.Binaries {
			if bp, ok := s.Target.Binary(id.Arch, id.Name); !ok || bp.ID != id {
				return &InvariantError{Reason: fmt.Sprintf("source %s references missing binary %s", srcName, id)}
			}
		}
	}
	return nil
}
