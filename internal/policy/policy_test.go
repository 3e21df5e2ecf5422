package policy

import "testing"

func TestEngineMergesWorstVerdict(t *testing.T) {
	e := NewEngine(&AgePolicy{}, RCBugsPolicy{}, BuildDepsPolicy{})
	res := e.Evaluate(Candidate{
		AgeDays:    10,
		MinAgeDays: 2,
		RCBugsAdded: []string{"123456"},
	})
	if res.Verdict != REJECTED_PERMANENTLY {
		t.Errorf("expected REJECTED_PERMANENTLY from rc-bugs, got %s", res.Verdict)
	}
}

func TestEngineForceDowngradesToPassHinted(t *testing.T) {
	e := NewEngine(RCBugsPolicy{})
	res := e.Evaluate(Candidate{RCBugsAdded: []string{"1"}, Forced: true})
	if res.Verdict != PASS_HINTED {
		t.Errorf("expected PASS_HINTED once forced, got %s", res.Verdict)
	}
}

func TestAgePolicyUrgentBypassesMinAge(t *testing.T) {
	p := NewAgePolicy()
	v, _ := p.Evaluate(Candidate{AgeDays: 0, MinAgeDays: 10, Urgent: true})
	if v != PASS {
		t.Errorf("urgent candidate should bypass minimum age, got %s", v)
	}
}

func TestAgePolicyRejectsTooYoung(t *testing.T) {
	p := NewAgePolicy()
	v, reason := p.Evaluate(Candidate{AgeDays: 1, MinAgeDays: 10})
	if v != REJECTED_TEMPORARILY {
		t.Errorf("expected REJECTED_TEMPORARILY, got %s", v)
	}
	if reason == "" {
		t.Errorf("expected a reason tag")
	}
}

func TestAutopkgtestPolicyAlwaysFailedNeverBlocks(t *testing.T) {
	p := NewAutopkgtestPolicy(nil)
	v, _ := p.Evaluate(Candidate{TestResult: TestAlwaysFailed})
	if v != PASS {
		t.Errorf("a test that has never passed must not block, got %s", v)
	}
}

func TestAutopkgtestPolicyFailBlocksUnlessForced(t *testing.T) {
	p := NewAutopkgtestPolicy(nil)
	v, _ := p.Evaluate(Candidate{TestResult: TestFail})
	if v != REJECTED_TEMPORARILY {
		t.Errorf("expected REJECTED_TEMPORARILY, got %s", v)
	}
	v, _ = p.Evaluate(Candidate{TestResult: TestFail, Forced: true})
	if v != PASS {
		t.Errorf("forced candidate should pass despite test failure, got %s", v)
	}
}
