package policy

import (
	"fmt"

	"github.com/jonboulle/clockwork"
)

// AgePolicy rejects a candidate that hasn't sat in the source suite long
// enough, per its Urgency value, unless a `force`/`urgent` hint already
// waived the minimum (§4.D step 3 "honour ... force, urgent hints"). Clock
// is injected via clockwork so tests can fast-forward age without sleeping.
type AgePolicy struct {
	Clock clockwork.Clock
}

// NewAgePolicy returns an AgePolicy using the real wall clock.
func NewAgePolicy() *AgePolicy {
	return &AgePolicy{Clock: clockwork.NewRealClock()}
}

func (p *AgePolicy) Name() string { return "age" }

func (p *AgePolicy) Evaluate(c Candidate) (Verdict, string) {
	if c.Urgent {
		return PASS, ""
	}
	if c.AgeDays >= c.MinAgeDays {
		return PASS, ""
	}
	return REJECTED_TEMPORARILY, fmt.Sprintf("age %dd of %dd", c.AgeDays, c.MinAgeDays)
}
