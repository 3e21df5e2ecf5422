package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/distr1/archmigrate"
)

func TestFetcherOpenLocalPlain(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Sources"), []byte("Package: foo\nVersion: 1\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := NewFetcher(false)
	rc, err := f.Open(context.Background(), archmigrate.Repo{PkgPath: dir}, "Sources")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Package: foo\nVersion: 1\n\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestFetcherOpenLocalMissing(t *testing.T) {
	dir := t.TempDir()
	f := NewFetcher(false)
	if _, err := f.Open(context.Background(), archmigrate.Repo{PkgPath: dir}, "Sources"); err == nil {
		t.Fatal("expected an error for a missing local file")
	}
}
