// Package archmigrate decides which source-package upgrades may migrate from
// staging suites into a target suite such that the target remains fully
// installable. See SPEC_FULL.md for the full design.
package archmigrate

// Repo describes where a suite's package index files live: a local
// filesystem path or an HTTP(S) mirror root.
type Repo struct {
	// Path is a file system path (e.g. /srv/archive/unstable) or an HTTP URL
	// (e.g. https://archive.example.org/unstable).
	Path string

	// PkgPath is Path plus whatever sub-path the Packages/Sources files live
	// under (e.g. Path/main/binary-amd64).
	PkgPath string
}

// SuiteClass tags the role a Suite plays in a migration run. Behaviour that
// used to be dispatched via duck-typing in the original tool (e.g. "does this
// suite participate in smooth updates") is routed through an explicit
// predicate table (see ParticipatesInSmoothUpdates) keyed on this enum
// instead.
type SuiteClass int

const (
	// Target is the single suite migrations land in.
	Target SuiteClass = iota
	// PrimarySource is the suite candidates are drawn from (e.g. unstable).
	PrimarySource
	// AdditionalSource is an extra suite consulted for binaries/provides but
	// that does not itself contribute migration candidates.
	AdditionalSource
)

func (c SuiteClass) String() string {
	switch c {
	case Target:
		return "target"
	case PrimarySource:
		return "primary-source"
	case AdditionalSource:
		return "additional-source"
	default:
		return "unknown"
	}
}

// ParticipatesInSmoothUpdates reports whether binaries removed from a suite
// of this class are eligible for the smooth-updates grace period (§4.H,
// §9: "class-specific behaviour ... through an explicit predicate table, not
// ad-hoc attribute checks").
func ParticipatesInSmoothUpdates(c SuiteClass) bool {
	return c == Target
}

// NeedsApproval reports whether a candidate drawn from a suite of this class
// defaults to requiring manual approval (REJECTED_NEEDS_APPROVAL) absent an
// overriding hint.
func NeedsApproval(c SuiteClass) bool {
	return c == AdditionalSource
}
