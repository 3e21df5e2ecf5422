package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/order"
)

func TestWriteHeidiResultSkipsFaux(t *testing.T) {
	target := archmigrate.NewSuite(archmigrate.Target, "t", "t")
	target.AddBinary(&archmigrate.BinaryPackage{
		ID:      archmigrate.BinaryId{Name: "libfoo", Version: archmigrate.ParseVersion("1"), Arch: "amd64"},
		Section: "libs",
	})
	target.AddBinary(&archmigrate.BinaryPackage{
		ID:      archmigrate.BinaryId{Name: "archive-meta", Version: archmigrate.ParseVersion("1"), Arch: "amd64"},
		Section: "faux",
	})
	target.Sources["libfoo"] = &archmigrate.SourcePackage{Name: "libfoo", Version: archmigrate.ParseVersion("1"), Section: "libs"}

	path := filepath.Join(t.TempDir(), "HeidiResult")
	if err := WriteHeidiResult(path, target); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "archive-meta") {
		t.Errorf("expected faux section omitted, got:\n%s", out)
	}
	if !strings.Contains(out, "libfoo 1 amd64 libs") {
		t.Errorf("expected libfoo binary line, got:\n%s", out)
	}
	if !strings.Contains(out, "libfoo 1 source libs") {
		t.Errorf("expected libfoo source line, got:\n%s", out)
	}
}

func TestWriteHeidiResultDeltaOrderPreserved(t *testing.T) {
	accepted := []order.Group{
		{
			Item:    archmigrate.MigrationItem{Name: "libfoo", Arch: archmigrate.SourceArch},
			Adds:    []archmigrate.BinaryId{{Name: "libfoo", Version: archmigrate.ParseVersion("2"), Arch: "amd64"}},
			Removes: []archmigrate.BinaryId{{Name: "libfoo", Version: archmigrate.ParseVersion("1"), Arch: "amd64"}},
		},
	}
	path := filepath.Join(t.TempDir(), "HeidiResultDelta")
	if err := WriteHeidiResultDelta(path, accepted); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "-libfoo") || strings.HasPrefix(lines[1], "-") {
		t.Errorf("unexpected delta lines: %v", lines)
	}
}
