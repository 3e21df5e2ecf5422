package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/distr1/archmigrate"
)

func TestLoadParsesArchitecturesAndSuites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "britney.conf")
	const data = `
SERIES=trixie
ARCHITECTURES=amd64 arm64
BREAK_ARCHES=riscv64
SOURCE_SUITES=unstable
TARGET_SUITE=testing
UNSTABLE_PATH=/srv/archive/unstable
TESTING_PATH=/srv/archive/testing
HINT_PERMISSIONS_ALICE=easy,hint
HINT_PERMISSIONS_BOB=ALL
AUTOPKGTEST_URL=https://autopkgtest.example.org/results
AUDIT_DSN=postgres://localhost/archmigrate
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Series != "trixie" {
		t.Errorf("expected series trixie, got %q", cfg.Series)
	}
	if !cfg.Archs["amd64"] || !cfg.Archs["arm64"] {
		t.Errorf("expected amd64+arm64 in Archs, got %v", cfg.Archs)
	}
	if !cfg.Break["riscv64"] {
		t.Errorf("expected riscv64 marked Break")
	}
	if len(cfg.Suites) != 2 {
		t.Fatalf("expected 2 suites, got %d", len(cfg.Suites))
	}
	var sawTarget, sawSource bool
	for _, s := range cfg.Suites {
		switch s.Class {
		case archmigrate.Target:
			sawTarget = true
			if s.Repo.Path != "/srv/archive/testing" {
				t.Errorf("unexpected target repo path %q", s.Repo.Path)
			}
		case archmigrate.PrimarySource:
			sawSource = true
		}
	}
	if !sawTarget || !sawSource {
		t.Errorf("expected both target and source suite entries, got %+v", cfg.Suites)
	}
	if got := cfg.HintPermissions["alice"]; len(got) != 2 {
		t.Errorf("expected alice to have 2 permitted kinds, got %v", got)
	}
	if got := cfg.HintPermissions["bob"]; len(got) != 1 || got[0] != "ALL" {
		t.Errorf("expected bob to have the ALL wildcard, got %v", got)
	}
	if cfg.AutopkgtestURL != "https://autopkgtest.example.org/results" {
		t.Errorf("unexpected AutopkgtestURL %q", cfg.AutopkgtestURL)
	}
	if cfg.AuditDSN != "postgres://localhost/archmigrate" {
		t.Errorf("unexpected AuditDSN %q", cfg.AuditDSN)
	}
}
