package main

import (
	"testing"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/hints"
)

func TestHintsForFiltersByItemName(t *testing.T) {
	all := []hints.Hint{
		{Kind: hints.Block, Items: []archmigrate.MigrationItem{{Name: "foo", Arch: archmigrate.SourceArch}}},
		{Kind: hints.Unblock, Items: []archmigrate.MigrationItem{{Name: "bar", Arch: archmigrate.SourceArch}}},
		{Kind: hints.Force, Items: []archmigrate.MigrationItem{{Name: "foo", Arch: archmigrate.SourceArch}}},
	}
	got := hintsFor(all, "foo")
	if len(got) != 2 {
		t.Fatalf("expected 2 hints naming foo, got %d", len(got))
	}
	for _, h := range got {
		if h.Items[0].Name != "foo" {
			t.Errorf("unexpected hint leaked through filter: %+v", h)
		}
	}
}

func TestUrgencyMinAgeTable(t *testing.T) {
	cases := map[string]int{"low": 10, "medium": 5, "high": 2, "emergency": 0, "critical": 0}
	for urgency, want := range cases {
		if got := urgencyMinAge[urgency]; got != want {
			t.Errorf("urgencyMinAge[%q] = %d, want %d", urgency, got, want)
		}
	}
}

func TestDaysSinceEpochIsPositiveForPastEpoch(t *testing.T) {
	past := int(1) // day 1 since unix epoch, long ago
	if got := daysSinceEpoch(past); got <= 0 {
		t.Errorf("expected a large positive day count for an ancient epoch, got %d", got)
	}
}
