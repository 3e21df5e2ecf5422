package hints

import (
	"strings"
	"testing"

	"github.com/distr1/archmigrate"
)

func TestParseBasic(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	perms := Permissions{"alice": {Block: true, Unblock: true}}
	in := strings.NewReader("# comment\n\nblock foo\nunblock bar/amd64\nfinished\nhint baz\n")
	parsed, warnings := Parse(in, "alice", archs, perms)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 hints (finished stops before 'hint baz'), got %d", len(parsed))
	}
	if parsed[0].Kind != Block || parsed[0].Items[0].Name != "foo" {
		t.Errorf("unexpected first hint: %+v", parsed[0])
	}
	if parsed[1].Items[0].Arch != "amd64" {
		t.Errorf("expected arch-qualified item, got %+v", parsed[1].Items[0])
	}
}

func TestParseUnauthorisedIsWarned(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	perms := Permissions{"bob": {Unblock: true}}
	in := strings.NewReader("force-hint foo\n")
	parsed, warnings := Parse(in, "bob", archs, perms)
	if len(parsed) != 0 {
		t.Errorf("expected no hints to be accepted, got %v", parsed)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
}

func TestHintsAllWildcard(t *testing.T) {
	perms := Permissions{"release-team": {Kind(HintsAll): true}}
	if !perms.Allows("release-team", ForceHint) {
		t.Errorf("HINTS_ALL should permit any kind")
	}
}

func TestParsePermissionsWildcard(t *testing.T) {
	perms := ParsePermissions(map[string][]string{"bob": {"ALL"}, "alice": {"easy", "hint"}})
	if !perms.Allows("bob", ForceHint) {
		t.Error("expected bob's ALL entry to permit any kind")
	}
	if perms.Allows("alice", ForceHint) {
		t.Error("expected alice to lack force-hint permission")
	}
	if !perms.Allows("alice", Easy) {
		t.Error("expected alice to have easy permission")
	}
}

func TestRemarkCapturesFreeText(t *testing.T) {
	archs := archmigrate.NewArchTable("amd64")
	perms := Permissions{"alice": {Remark: true}}
	in := strings.NewReader("remark waiting on upstream fix\n")
	parsed, _ := Parse(in, "alice", archs, perms)
	if len(parsed) != 1 || parsed[0].Remark != "waiting on upstream fix" {
		t.Errorf("unexpected remark parse: %+v", parsed)
	}
}
