package buffer

import (
	"errors"
	"testing"

	"github.com/kobzarvs/qdoc/internal/selection"
)

func newLoaded(t *testing.T, text string) *Buffer {
	t.Helper()
	b := New("test.go", "go")
	b.Load(text)
	return b
}

func TestApplyRejectsUnloaded(t *testing.T) {
	b := New("x.txt", "")
	b.SetLoading()
	if b.State() != Loading {
		t.Fatalf("State = %v, want loading", b.State())
	}
	rev, _, err := b.Apply(selection.Caret(0), "x", EditInsertChars)
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("Apply err = %v, want ErrNotLoaded", err)
	}
	if rev != 0 {
		t.Fatalf("rev = %d, want 0", rev)
	}
}

func TestApplyBumpsRevisionOnce(t *testing.T) {
	b := newLoaded(t, "abc")
	start := b.Rev()
	rev, d, err := b.Apply(selection.New(
		selection.Region{Start: 0, End: 0},
		selection.Region{Start: 3, End: 3},
	), "!", EditInsertChars)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if rev != start+1 || b.Rev() != start+1 {
		t.Fatalf("rev = %d, want %d", rev, start+1)
	}
	if got := b.Text().String(); got != "!abc!" {
		t.Fatalf("text = %q, want %q", got, "!abc!")
	}
	if d.NewLen() != 5 {
		t.Fatalf("delta NewLen = %d, want 5", d.NewLen())
	}
}

func TestUndoRestoresText(t *testing.T) {
	b := newLoaded(t, "hello")
	if _, _, err := b.Apply(selection.Caret(5), " world", EditOther); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, _, err := b.Apply(selection.New(selection.Region{Start: 0, End: 1}), "J", EditOther); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if got := b.Text().String(); got != "Jello world" {
		t.Fatalf("text = %q", got)
	}
	revBefore := b.Rev()
	d, ok := b.Undo()
	if !ok {
		t.Fatalf("Undo = false")
	}
	if got := b.Text().String(); got != "hello world" {
		t.Fatalf("after undo = %q, want %q", got, "hello world")
	}
	if b.Rev() != revBefore+1 {
		t.Fatalf("rev = %d, want %d", b.Rev(), revBefore+1)
	}
	if d.NewLen() != len("hello world") {
		t.Fatalf("undo delta NewLen = %d", d.NewLen())
	}
	if _, ok := b.Undo(); !ok {
		t.Fatalf("second Undo = false")
	}
	if got := b.Text().String(); got != "hello" {
		t.Fatalf("after second undo = %q", got)
	}
	if _, ok := b.Undo(); ok {
		t.Fatalf("Undo on empty history = true")
	}
	if _, ok := b.Redo(); !ok {
		t.Fatalf("Redo = false")
	}
	if got := b.Text().String(); got != "hello world" {
		t.Fatalf("after redo = %q", got)
	}
}

func TestConsecutiveInsertsCoalesce(t *testing.T) {
	b := newLoaded(t, "")
	for i, ch := range []string{"f", "o", "o"} {
		if _, _, err := b.Apply(selection.Caret(i), ch, EditInsertChars); err != nil {
			t.Fatalf("Apply error: %v", err)
		}
	}
	if _, _, err := b.Apply(selection.Caret(3), "\n", EditInsertNewline); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if _, ok := b.Undo(); !ok {
		t.Fatalf("Undo = false")
	}
	if got := b.Text().String(); got != "foo" {
		t.Fatalf("after first undo = %q, want %q", got, "foo")
	}
	if _, ok := b.Undo(); !ok {
		t.Fatalf("Undo = false")
	}
	if got := b.Text().String(); got != "" {
		t.Fatalf("after second undo = %q, want empty", got)
	}
}

func TestBreakUndoGroup(t *testing.T) {
	b := newLoaded(t, "")
	_, _, _ = b.Apply(selection.Caret(0), "a", EditInsertChars)
	b.BreakUndoGroup()
	_, _, _ = b.Apply(selection.Caret(1), "b", EditInsertChars)
	if _, ok := b.Undo(); !ok {
		t.Fatalf("Undo = false")
	}
	if got := b.Text().String(); got != "a" {
		t.Fatalf("after undo = %q, want %q", got, "a")
	}
}

func TestEditAfterUndoDoesNotMerge(t *testing.T) {
	b := newLoaded(t, "")
	_, _, _ = b.Apply(selection.Caret(0), "a", EditInsertChars)
	_, _, _ = b.Apply(selection.Caret(1), "b", EditInsertChars)
	b.Undo()
	_, _, _ = b.Apply(selection.Caret(0), "c", EditInsertChars)
	if b.CanRedo() {
		t.Fatalf("redo stack not cleared by edit")
	}
	b.Undo()
	if got := b.Text().String(); got != "" {
		t.Fatalf("after undo = %q, want empty", got)
	}
}

func TestOffsetToLineCol(t *testing.T) {
	b := newLoaded(t, "ab\ncdé\n")
	line, col := b.OffsetToLineCol(5)
	if line != 1 || col != 2 {
		t.Fatalf("OffsetToLineCol(5) = %d,%d, want 1,2", line, col)
	}
	if got := b.LineColToOffset(1, 99); got != 7 {
		t.Fatalf("LineColToOffset(1,99) = %d, want 7", got)
	}
	if got := b.LineContent(1); got != "cdé" {
		t.Fatalf("LineContent(1) = %q", got)
	}
}

func TestCodeBoundaries(t *testing.T) {
	b := newLoaded(t, "foo.bar_baz(x)")
	if got := b.PrevCodeBoundary(8); got != 4 {
		t.Fatalf("PrevCodeBoundary(8) = %d, want 4", got)
	}
	if got := b.NextCodeBoundary(8); got != 11 {
		t.Fatalf("NextCodeBoundary(8) = %d, want 11", got)
	}
	if got := b.PrevCodeBoundary(4); got != 4 {
		t.Fatalf("PrevCodeBoundary(4) = %d, want 4", got)
	}
}

func TestSetContentUsesLineDiff(t *testing.T) {
	b := newLoaded(t, "one\ntwo\nthree\n")
	rev, d, err := b.SetContent("one\n2\nthree\nfour\n")
	if err != nil {
		t.Fatalf("SetContent error: %v", err)
	}
	if got := b.Text().String(); got != "one\n2\nthree\nfour\n" {
		t.Fatalf("text = %q", got)
	}
	if rev != b.Rev() {
		t.Fatalf("rev = %d, want %d", rev, b.Rev())
	}
	if got := d.TransformOffset(0, true); got != 0 {
		t.Fatalf("unchanged first line moved to %d", got)
	}
	b.Undo()
	if got := b.Text().String(); got != "one\ntwo\nthree\n" {
		t.Fatalf("after undo = %q", got)
	}
}
