// Package txn implements the migration journal (§3, §4.F): every mutation a
// migration attempt makes to the target suite is recorded as an undo item,
// so a failed attempt can be rolled back in full.
package txn

import "github.com/google/uuid"

// Kind categorizes an undo item by what it restores. Rollback always
// processes items in Kind order, never plain LIFO across kinds — this is
// the rigid order §4.F documents, because restoring a prior binary before
// its replacing source is un-added would leave the suite in a state no
// forward transaction ever produced.
type Kind int

const (
	// KindSourceAdd undoes a source being added to the target.
	KindSourceAdd Kind = iota
	// KindBinaryAddConsequence undoes a binary that was added purely as a
	// consequence of a source add (e.g. autogenerated binaries).
	KindBinaryAddConsequence
	// KindBinaryReplace restores a binary that was overwritten, under its
	// original key.
	KindBinaryReplace
	// KindProvidesChange undoes a change to a suite's virtual-provides map.
	KindProvidesChange
)

// rollbackOrder is the fixed sequence §4.F mandates: restore sources, then
// remove source-add consequence binaries, then restore replaced binaries,
// then restore provides maps.
var rollbackOrder = [...]Kind{KindSourceAdd, KindBinaryAddConsequence, KindBinaryReplace, KindProvidesChange}

// UndoItem is one recorded mutation and the closure that reverses it.
type UndoItem struct {
	Kind Kind
	Undo func()
}

// Transaction is a single migration attempt's journal. A Transaction may be
// nested: committing an inner transaction appends its journal onto the
// parent's so the parent can still roll the combined effect back; rolling
// back an inner transaction only ever touches its own journal.
type Transaction struct {
	ID      uuid.UUID
	parent  *Transaction
	journal []UndoItem
}

// New opens a transaction. Pass a non-nil parent to nest; pass nil to open a
// top-level transaction.
func New(parent *Transaction) *Transaction {
	return &Transaction{ID: uuid.New(), parent: parent}
}

// AddUndoItem appends an undo item to the transaction's journal (§4.F
// "add_undo_item").
func (t *Transaction) AddUndoItem(kind Kind, undo func()) {
	t.journal = append(t.journal, UndoItem{Kind: kind, Undo: undo})
}

// Commit folds the journal into the parent transaction, or discards it if
// this is a top-level transaction (§4.F "commit(): fold to parent or
// discard").
func (t *Transaction) Commit() {
	if t.parent != nil {
		t.parent.journal = append(t.parent.journal, t.journal...)
	}
	t.journal = nil
}

// Rollback replays the journal in reverse, grouped by Kind in the fixed
// order source-adds, then consequence-binary-adds, then binary-replaces,
// then provides-map changes; within a Kind, items undo in the reverse order
// they were recorded (§4.F "rollback order is rigid").
func (t *Transaction) Rollback() {
	for _, kind := range rollbackOrder {
		for i := len(t.journal) - 1; i >= 0; i-- {
			if t.journal[i].Kind == kind {
				t.journal[i].Undo()
			}
		}
	}
	t.journal = nil
}

// Len reports how many undo items are currently recorded.
func (t *Transaction) Len() int { return len(t.journal) }
