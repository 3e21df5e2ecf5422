package archmigrate

// BinaryId uniquely identifies one binary package build across the whole
// universe (§3). Binaries declared Architecture: all are re-keyed to one
// BinaryId per concrete architecture during ingestion, so every BinaryId
// here is always architecture-specific and installability checks stay
// arch-local.
type BinaryId struct {
	Name    string
	Version Version
	Arch    string
}

func (b BinaryId) String() string {
	return b.Name + "_" + b.Version.String() + "_" + b.Arch
}

// Clause is an interned disjunction of possible solvers for one CNF
// conjunct, e.g. "libc6 (>= 2.27) | libc6-compat". Clauses are compared by
// value (internal/universe's Interner keys them by content) so that identical disjunctions across many binaries
// share one allocation (§3: "every inner disjunction set is shared across
// identical clauses ... to permit pointer-identity compare in hot loops").
type Clause []BinaryId

// Provide is one (name, version) pair a binary declares in its Provides
// field; version is often empty, meaning "any version of this virtual name".
type Provide struct {
	Name    string
	Version Version
}

// BinaryPackage is one binary build as read from a Packages file (§3, §6:
// Pre-Depends merges into Depends, Breaks merges into Conflicts).
type BinaryPackage struct {
	ID BinaryId

	SourceName    string
	SourceVersion Version
	Section       string
	MultiArch     string
	Essential     bool

	// DependsRaw/ConflictsRaw are the unparsed dependency expressions as read
	// from the archive; the universe builder resolves them into CNF clauses
	// of BinaryId against all suites.
	DependsRaw   string
	ConflictsRaw string

	Provides []Provide
}

// SourcePackage is one source as read from a Sources file (§3).
type SourcePackage struct {
	Name    string
	Version Version
	Section string

	Maintainer string

	BuildDepsArch  string
	BuildDepsIndep string

	TestsuiteTags     []string
	TestsuiteTriggers []string

	// IsFake marks a source entry synthesised to satisfy a binary with no
	// matching Sources record (§3).
	IsFake bool

	Binaries map[BinaryId]bool
}

// Suite is one loaded archive suite: the target, or a (primary/additional)
// source suite candidates and binaries are drawn from (§3).
type Suite struct {
	Class     SuiteClass
	Name      string
	ShortName string

	Sources map[string]*SourcePackage // keyed by source name

	// Binaries is keyed by architecture, then by binary package name.
	Binaries map[string]map[string]*BinaryPackage

	// Provides maps architecture -> virtual package name -> set of
	// (provider name, provider version) pairs.
	Provides map[string]map[string]map[Provide]bool
}

// NewSuite returns an empty, initialised Suite ready for ingestion to
// populate.
func NewSuite(class SuiteClass, name, shortName string) *Suite {
	return &Suite{
		Class:     class,
		Name:      name,
		ShortName: shortName,
		Sources:   make(map[string]*SourcePackage),
		Binaries:  make(map[string]map[string]*BinaryPackage),
		Provides:  make(map[string]map[string]map[Provide]bool),
	}
}

// Binary looks up a binary package by architecture and name.
func (s *Suite) Binary(arch, name string) (*BinaryPackage, bool) {
	byName, ok := s.Binaries[arch]
	if !ok {
		return nil, false
	}
	bp, ok := byName[name]
	return bp, ok
}

// AddBinary registers bp under its own architecture.
func (s *Suite) AddBinary(bp *BinaryPackage) {
	arch := bp.ID.Arch
	if s.Binaries[arch] == nil {
		s.Binaries[arch] = make(map[string]*BinaryPackage)
	}
	s.Binaries[arch][bp.ID.Name] = bp
	for _, p := range bp.Provides {
		if s.Provides[arch] == nil {
			s.Provides[arch] = make(map[string]map[Provide]bool)
		}
		if s.Provides[arch][p.Name] == nil {
			s.Provides[arch][p.Name] = make(map[Provide]bool)
		}
		s.Provides[arch][p.Name][Provide{Name: bp.ID.Name, Version: bp.ID.Version}] = true
	}
}

// RemoveBinary removes the binary named name on arch, if present.
func (s *Suite) RemoveBinary(arch, name string) {
	byName, ok := s.Binaries[arch]
	if !ok {
		return
	}
	bp, ok := byName[name]
	if !ok {
		return
	}
	delete(byName, name)
	for _, p := range bp.Provides {
		if set := s.Provides[arch][p.Name]; set != nil {
			delete(set, Provide{Name: bp.ID.Name, Version: bp.ID.Version})
		}
	}
}
