package policy

// BuildDepsPolicy rejects a candidate whose Build-Depends(-Arch|-Indep)
// cannot be satisfied on some architecture the source builds for, as
// reported by Candidate.UnsatBuildDeps. Nothing in this repository sets
// that field, so the policy passes every candidate built by candidateFor.
type BuildDepsPolicy struct{}

func (BuildDepsPolicy) Name() string { return "build-depends" }

func (BuildDepsPolicy) Evaluate(c Candidate) (Verdict, string) {
	if !c.UnsatBuildDeps {
		return PASS, ""
	}
	return REJECTED_CANNOT_DETERMINE_IF_PERMANENT, "build-depends"
}
