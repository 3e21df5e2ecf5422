package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/excuse"
	"github.com/distr1/archmigrate/internal/policy"
)

func TestWriteExcusesYAML(t *testing.T) {
	excuses := []*excuse.Excuse{
		{
			Item:    archmigrate.MigrationItem{Name: "libfoo", Arch: archmigrate.SourceArch},
			Verdict: policy.REJECTED_PERMANENTLY,
			Reasons: []string{"newerintesting"},
		},
	}
	path := filepath.Join(t.TempDir(), "excuses.yaml")
	if err := WriteExcusesYAML(path, excuses); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "libfoo") || !strings.Contains(string(data), "newerintesting") {
		t.Errorf("unexpected yaml:\n%s", data)
	}
}

func TestWriteExcusesHTML(t *testing.T) {
	excuses := []*excuse.Excuse{
		{Item: archmigrate.MigrationItem{Name: "libfoo", Arch: archmigrate.SourceArch}, Verdict: policy.PASS},
	}
	path := filepath.Join(t.TempDir(), "excuses.html")
	if err := WriteExcusesHTML(path, excuses); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "libfoo") {
		t.Errorf("expected libfoo in rendered html:\n%s", data)
	}
}
