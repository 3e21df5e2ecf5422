package policy

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ResultFetcher retrieves the autopkgtest verdict for one candidate from
// wherever results are published; it may return a transient error (network
// hiccup fetching the results feed) which AutopkgtestPolicy retries with
// backoff before giving up and treating the candidate as not-yet-run.
type ResultFetcher func(ctx context.Context, sourceName, version string) (TestResult, error)

// AutopkgtestPolicy rejects a candidate whose tests regress against the
// version currently in the target, unless `force-skiptest`/`force-badtest`
// hints are in effect (surfaced as Candidate.Forced). A result that can't be
// fetched after retrying is treated as TestNotRun, which never blocks
// (§7: policy rejection is never raised on infrastructure flakiness alone).
type AutopkgtestPolicy struct {
	Fetch   ResultFetcher
	Backoff backoff.BackOff
}

// NewAutopkgtestPolicy returns a policy retrying fetch up to a handful of
// times with exponential backoff, matching the teacher's own retry idiom for
// flaky network fetches.
func NewAutopkgtestPolicy(fetch ResultFetcher) *AutopkgtestPolicy {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return &AutopkgtestPolicy{Fetch: fetch, Backoff: b}
}

func (p *AutopkgtestPolicy) Name() string { return "autopkgtest" }

func (p *AutopkgtestPolicy) Evaluate(c Candidate) (Verdict, string) {
	result := c.TestResult
	if result == TestNotRun && p.Fetch != nil {
		result = p.fetchWithRetry(c)
	}
	switch result {
	case TestPass, TestNotRun:
		return PASS, ""
	case TestAlwaysFailed:
		// A test that has never passed for this source is not held against
		// new uploads (the Debian convention this policy preserves).
		return PASS, ""
	case TestFail:
		if c.Forced {
			return PASS, ""
		}
		return REJECTED_TEMPORARILY, "autopkgtest"
	default:
		return PASS, ""
	}
}

func (p *AutopkgtestPolicy) fetchWithRetry(c Candidate) TestResult {
	var result TestResult
	op := func() error {
		r, err := p.Fetch(context.Background(), c.SourceName, c.ToVersion)
		if err != nil {
			return err
		}
		result = r
		return nil
	}
	if err := backoff.Retry(op, p.Backoff); err != nil {
		return TestNotRun
	}
	return result
}
