package policy

// PiupartsPolicy rejects a candidate whose install/purge test is known to
// fail, unless an `ignore-piuparts` hint overrides it. This is a stub: the
// real policy would consult a piuparts results log fetched by
// internal/archive; here it only interprets the already-resolved
// Candidate.PiupartsFails flag, the same narrow contract every other
// Policy implementation gets.
type PiupartsPolicy struct{}

func (PiupartsPolicy) Name() string { return "piuparts" }

func (PiupartsPolicy) Evaluate(c Candidate) (Verdict, string) {
	if !c.PiupartsFails {
		return PASS, ""
	}
	if c.Forced {
		return PASS, ""
	}
	return REJECTED_TEMPORARILY, "piuparts"
}
