package txn

import "testing"

func TestRollbackOrder(t *testing.T) {
	var order []string
	tx := New(nil)
	tx.AddUndoItem(KindProvidesChange, func() { order = append(order, "provides") })
	tx.AddUndoItem(KindSourceAdd, func() { order = append(order, "source") })
	tx.AddUndoItem(KindBinaryReplace, func() { order = append(order, "replace") })
	tx.AddUndoItem(KindBinaryAddConsequence, func() { order = append(order, "consequence") })

	tx.Rollback()

	want := []string{"source", "consequence", "replace", "provides"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, order[i], want[i])
		}
	}
}

func TestCommitFoldsToParent(t *testing.T) {
	parent := New(nil)
	parent.AddUndoItem(KindSourceAdd, func() {})

	child := New(parent)
	child.AddUndoItem(KindBinaryReplace, func() {})
	child.Commit()

	if parent.Len() != 2 {
		t.Fatalf("expected parent journal to have 2 items after child commit, got %d", parent.Len())
	}
}

func TestTopLevelCommitDiscards(t *testing.T) {
	tx := New(nil)
	tx.AddUndoItem(KindSourceAdd, func() {})
	tx.Commit()
	if tx.Len() != 0 {
		t.Errorf("expected top-level commit to discard the journal, got %d items", tx.Len())
	}
}

func TestNestedRollbackOnlyTouchesOwnJournal(t *testing.T) {
	var ran bool
	parent := New(nil)
	parent.AddUndoItem(KindSourceAdd, func() { ran = true })

	child := New(parent)
	child.AddUndoItem(KindBinaryReplace, func() {})
	child.Rollback()

	if ran {
		t.Errorf("child rollback must not touch the parent's journal")
	}
	if parent.Len() != 1 {
		t.Errorf("parent journal should be untouched")
	}
}
