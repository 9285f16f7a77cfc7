package selection

import (
	"math/rand"
	"testing"

	"github.com/kobzarvs/qdoc/internal/delta"
	"github.com/kobzarvs/qdoc/internal/rope"
)

func TestAddKeepsSortedDisjoint(t *testing.T) {
	s := New(
		Region{Start: 10, End: 12},
		Region{Start: 0, End: 2},
		Region{Start: 5, End: 5},
		Region{Start: 11, End: 15},
		Region{Start: 5, End: 5},
	)
	want := []Region{{Start: 0, End: 2}, {Start: 5, End: 5}, {Start: 10, End: 15}}
	got := s.Regions()
	if len(got) != len(want) {
		t.Fatalf("Regions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Regions[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAddMergesSpanningRegion(t *testing.T) {
	s := New(Region{Start: 1, End: 2}, Region{Start: 4, End: 5}, Region{Start: 7, End: 8})
	s.Add(Region{Start: 0, End: 9})
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if r := s.Regions()[0]; r.Start != 0 || r.End != 9 {
		t.Fatalf("region = %v, want [0,9)", r)
	}
}

func TestAddDoesNotAlias(t *testing.T) {
	s := New(Region{Start: 0, End: 1}, Region{Start: 3, End: 4})
	copyOf := s
	copyOf.Add(Region{Start: 0, End: 4})
	if s.Len() != 2 {
		t.Fatalf("original Len = %d, want 2", s.Len())
	}
}

func TestCaretAndReversed(t *testing.T) {
	s := Caret(4)
	if !s.IsCaret() {
		t.Fatalf("IsCaret = false")
	}
	r := NewRegion(9, 3)
	if r.Start != 3 || r.End != 9 || !r.Reversed {
		t.Fatalf("NewRegion = %v", r)
	}
	if r.Caret() != 3 || r.Anchor() != 9 {
		t.Fatalf("Caret/Anchor = %d/%d, want 3/9", r.Caret(), r.Anchor())
	}
	s = New(r, Region{Start: 12, End: 14})
	if s.IsCaret() {
		t.Fatalf("IsCaret = true for multi-region selection")
	}
	if s.MinOffset() != 3 || s.MaxOffset() != 14 || s.CaretOffset() != 14 {
		t.Fatalf("Min/Max/Caret = %d/%d/%d", s.MinOffset(), s.MaxOffset(), s.CaretOffset())
	}
	c := s.Collapse()
	if got := c.Regions(); got[0] != (Region{Start: 3, End: 3}) || got[1] != (Region{Start: 14, End: 14}) {
		t.Fatalf("Collapse = %v", got)
	}
}

func TestApplyDelta(t *testing.T) {
	r := rope.New("hello world")
	d := delta.New(r, []delta.Edit{{Start: 0, End: 0, Text: ">> "}, {Start: 6, End: 11, Text: "go"}})
	s := New(Region{Start: 0, End: 5}, Region{Start: 8, End: 8})
	got := s.ApplyDelta(d, true).Regions()
	if got[0] != (Region{Start: 3, End: 8}) {
		t.Fatalf("region 0 = %v, want [3,8)", got[0])
	}
	if got[1] != (Region{Start: 9, End: 9}) {
		t.Fatalf("region 1 = %v, want [9,9)", got[1])
	}
}

// Selections outside every deleted range survive a round trip through a
// delta and its inverse.
func TestApplyDeltaInvertible(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	text := "the quick brown fox jumps over the lazy dog"
	r := rope.New(text)
	for i := 0; i < 200; i++ {
		var sel Selection
		for j := 0; j < 3; j++ {
			a := rng.Intn(len(text) + 1)
			b := rng.Intn(len(text) + 1)
			sel.Add(NewRegion(a, b))
		}
		at := rng.Intn(len(text) + 1)
		d := delta.New(r, []delta.Edit{{Start: at, End: at, Text: "INSERTED"}})
		after := rng.Intn(2) == 0
		back := sel.ApplyDelta(d, after).ApplyDelta(d.Invert(), after)
		if !back.Equal(sel) {
			t.Fatalf("round trip %v -> %v (insert at %d, after=%v)", sel.Regions(), back.Regions(), at, after)
		}
	}
}
