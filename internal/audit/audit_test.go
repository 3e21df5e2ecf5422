package audit

import (
	"testing"

	"github.com/google/uuid"

	"github.com/distr1/archmigrate"
	"github.com/distr1/archmigrate/internal/order"
)

func TestOpenWithEmptyDSNIsNoop(t *testing.T) {
	l, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	if l != nil {
		t.Fatal("expected nil Log for an empty DSN")
	}
}

func TestNilLogMethodsAreNoops(t *testing.T) {
	var l *Log
	if err := l.RecordGroup(uuid.UUID{}, order.Group{Item: archmigrate.MigrationItem{Name: "x"}}, true); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
