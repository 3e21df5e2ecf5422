package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/distr1/archmigrate/internal/policy"
)

// httpAutopkgtestFetcher builds a policy.ResultFetcher reading a plaintext
// verdict ("pass", "fail" or "neverrun") from "<baseURL>/<source>/<version>",
// the simplest shape an autopkgtest results feed can be reverse-proxied as.
func httpAutopkgtestFetcher(baseURL string) policy.ResultFetcher {
	client := &http.Client{}
	return func(ctx context.Context, sourceName, version string) (policy.TestResult, error) {
		url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), sourceName, version)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return policy.TestNotRun, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return policy.TestNotRun, err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return policy.TestNotRun, nil
		}
		if resp.StatusCode != http.StatusOK {
			return policy.TestNotRun, fmt.Errorf("autopkgtest feed returned %s", resp.Status)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return policy.TestNotRun, err
		}
		switch strings.TrimSpace(string(body)) {
		case "pass":
			return policy.TestPass, nil
		case "fail":
			return policy.TestFail, nil
		case "neverrun":
			return policy.TestAlwaysFailed, nil
		default:
			return policy.TestNotRun, nil
		}
	}
}
