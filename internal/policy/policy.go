// Package policy implements the Policy Engine (§4.D step 5, §4.E): each
// registered Policy inspects a candidate and returns a Verdict; the worst
// (highest-ordinal) verdict across all policies wins, with PASS_HINTED able
// to downgrade a prior rejection only when the candidate was forced.
package policy

import "sort"

// Verdict is the ordinal taxonomy §4.D step 5 lists, ordered worst-last so
// that "worse" means "greater".
type Verdict int

const (
	PASS Verdict = iota
	PASS_HINTED
	REJECTED_TEMPORARILY
	REJECTED_WAITING_FOR_ANOTHER_ITEM
	REJECTED_BLOCKED_BY_ANOTHER_ITEM
	REJECTED_NEEDS_APPROVAL
	REJECTED_CANNOT_DETERMINE_IF_PERMANENT
	REJECTED_PERMANENTLY
	NOT_APPLICABLE
)

func (v Verdict) String() string {
	switch v {
	case PASS:
		return "PASS"
	case PASS_HINTED:
		return "PASS_HINTED"
	case REJECTED_TEMPORARILY:
		return "REJECTED_TEMPORARILY"
	case REJECTED_WAITING_FOR_ANOTHER_ITEM:
		return "REJECTED_WAITING_FOR_ANOTHER_ITEM"
	case REJECTED_BLOCKED_BY_ANOTHER_ITEM:
		return "REJECTED_BLOCKED_BY_ANOTHER_ITEM"
	case REJECTED_NEEDS_APPROVAL:
		return "REJECTED_NEEDS_APPROVAL"
	case REJECTED_CANNOT_DETERMINE_IF_PERMANENT:
		return "REJECTED_CANNOT_DETERMINE_IF_PERMANENT"
	case REJECTED_PERMANENTLY:
		return "REJECTED_PERMANENTLY"
	case NOT_APPLICABLE:
		return "NOT_APPLICABLE"
	default:
		return "UNKNOWN"
	}
}

// IsRejected reports whether v represents some flavour of rejection (every
// ordinal strictly between PASS_HINTED and NOT_APPLICABLE).
func (v Verdict) IsRejected() bool {
	return v > PASS_HINTED && v < NOT_APPLICABLE
}

// Candidate is the information a Policy needs to render a verdict. It is
// intentionally narrow: policies never reach back into the suite state or
// universe directly, they only see what the Excuse Builder hands them.
type Candidate struct {
	SourceName    string
	FromVersion   string // version currently in the target, "" if new
	ToVersion     string // version proposed from the source suite
	Forced        bool   // true when a force/force-hint overrides regressions
	Urgent        bool
	AgeDays       int
	MinAgeDays    int
	RCBugsAdded   []string
	PiupartsFails bool
	TestResult    TestResult
	UnsatBuildDeps bool
}

// TestResult is autopkgtest's per-candidate verdict contribution.
type TestResult int

const (
	TestNotRun TestResult = iota
	TestPass
	TestFail
	TestAlwaysFailed
)

// Policy renders a verdict plus a short reason tag (§7: "depends",
// "build-depends", "block", "skiptest", "autopkgtest", "no-binaries",
// "newerintesting", ...) for one candidate.
type Policy interface {
	Name() string
	Evaluate(c Candidate) (Verdict, string)
}

// Engine runs every registered Policy over a candidate and merges verdicts
// (§4.D step 5).
type Engine struct {
	policies []Policy
}

// NewEngine returns an Engine running policies in the given order. Order
// does not affect the merged verdict (merge is commutative) but does affect
// which reason tag is recorded when multiple policies tie at the worst
// verdict: the first one registered wins ties.
func NewEngine(policies ...Policy) *Engine {
	return &Engine{policies: policies}
}

// Result is the Engine's merged outcome for one candidate.
type Result struct {
	Verdict Verdict
	Reason  string
	PerPolicy map[string]Verdict
}

// Evaluate runs every policy and merges results (§4.D step 5: "the worst
// (highest ordinal) verdict wins; PASS_HINTED downgrades a prior rejection
// only if forced is set").
func (e *Engine) Evaluate(c Candidate) Result {
	res := Result{Verdict: PASS, PerPolicy: make(map[string]Verdict, len(e.policies))}
	for _, p := range e.policies {
		v, reason := p.Evaluate(c)
		res.PerPolicy[p.Name()] = v
		if v == NOT_APPLICABLE {
			continue
		}
		if v > res.Verdict {
			res.Verdict = v
			res.Reason = reason
		}
	}
	if res.Verdict.IsRejected() && c.Forced {
		res.Verdict = PASS_HINTED
		res.Reason = "forced"
	}
	return res
}

// ReasonTags returns the name of every policy that ran (the keys of
// PerPolicy), sorted, for rendering into an excuse's reason list. It does
// not return the policies' reason strings.
func (r Result) ReasonTags() []string {
	names := make([]string, 0, len(r.PerPolicy))
	for name := range r.PerPolicy {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
