package buffer

import (
	"testing"

	"github.com/kobzarvs/qdoc/internal/selection"
)

func TestUpdateStylesDiscardsStaleRevision(t *testing.T) {
	b := newLoaded(t, "x := 1")
	old := b.Rev()
	_, _, _ = b.Apply(selection.Caret(0), "y", EditInsertChars)
	if b.UpdateStyles(old, []Span{{Start: 0, End: 1, Style: "variable"}}, false) {
		t.Fatalf("stale result installed")
	}
	if !b.UpdateStyles(b.Rev(), []Span{{Start: 0, End: 2, Style: "variable"}}, false) {
		t.Fatalf("current result rejected")
	}
	spans, rev, semantic := b.Styles()
	if len(spans) != 1 || rev != b.Rev() || semantic {
		t.Fatalf("Styles = %v rev=%d semantic=%v", spans, rev, semantic)
	}
}

func TestOutOfOrderResultsKeepNewest(t *testing.T) {
	b := newLoaded(t, "a")
	r1 := b.Rev()
	_, _, _ = b.Apply(selection.Caret(1), "b", EditInsertChars)
	r2 := b.Rev()
	if !b.UpdateStyles(r2, []Span{{Start: 0, End: 2, Style: "keyword"}}, false) {
		t.Fatalf("r2 rejected")
	}
	if b.UpdateStyles(r1, []Span{{Start: 0, End: 1, Style: "string"}}, false) {
		t.Fatalf("r1 overwrote r2")
	}
	spans, rev, _ := b.Styles()
	if rev != r2 || spans[0].Style != "keyword" {
		t.Fatalf("Styles = %v rev=%d, want keyword at %d", spans, rev, r2)
	}
}

func TestSemanticWinsForSameRevision(t *testing.T) {
	b := newLoaded(t, "fn")
	rev := b.Rev()
	if !b.UpdateStyles(rev, []Span{{Start: 0, End: 2, Style: "function"}}, true) {
		t.Fatalf("semantic rejected")
	}
	if b.UpdateStyles(rev, []Span{{Start: 0, End: 2, Style: "variable"}}, false) {
		t.Fatalf("grammar result replaced semantic for the same revision")
	}
	if !b.UpdateStyles(rev, []Span{{Start: 0, End: 1, Style: "type"}}, true) {
		t.Fatalf("newer semantic result rejected")
	}
}

func TestStylesShiftWithEdits(t *testing.T) {
	b := newLoaded(t, `x = "str" // c`)
	b.UpdateStyles(b.Rev(), []Span{
		{Start: 4, End: 9, Style: "string"},
		{Start: 10, End: 14, Style: "comment"},
	}, false)
	_, _, _ = b.Apply(selection.Caret(0), "var ", EditInsertChars)
	spans, _, _ := b.Styles()
	if spans[0].Start != 8 || spans[0].End != 13 {
		t.Fatalf("string span = %v, want [8,13)", spans[0])
	}
	if !b.IsLiteral(9) || b.IsLiteral(13) || !b.IsLiteral(14) {
		t.Fatalf("IsLiteral mismatch after shift")
	}
	_, _, _ = b.Apply(selection.New(selection.Region{Start: 8, End: 13}), "", EditDelete)
	spans, _, _ = b.Styles()
	if len(spans) != 1 || spans[0].Style != "comment" {
		t.Fatalf("spans after delete = %v, want only comment", spans)
	}
}

func TestUpdateStylesNormalizes(t *testing.T) {
	b := newLoaded(t, "abcdef")
	b.UpdateStyles(b.Rev(), []Span{
		{Start: 3, End: 10, Style: "b"},
		{Start: 0, End: 4, Style: "a"},
		{Start: 5, End: 5, Style: "empty"},
	}, false)
	spans, _, _ := b.Styles()
	if len(spans) != 2 {
		t.Fatalf("spans = %v, want 2", spans)
	}
	if spans[0] != (Span{Start: 0, End: 4, Style: "a"}) || spans[1] != (Span{Start: 4, End: 6, Style: "b"}) {
		t.Fatalf("spans = %v", spans)
	}
}
