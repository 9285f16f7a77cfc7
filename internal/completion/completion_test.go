package completion

import (
	"testing"

	"github.com/kobzarvs/qdoc/internal/buffer"
)

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestBeginIncrementsRequestID(t *testing.T) {
	var s Session
	id := buffer.NewID()
	first := s.Begin(id, 3, "f")
	second := s.Begin(id, 7, "g")
	if second != first+1 {
		t.Fatalf("request ids = %d,%d, want consecutive", first, second)
	}
	if !s.Matches(id, 7) || s.Matches(id, 3) {
		t.Fatalf("Matches does not follow the latest anchor")
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	var s Session
	id := buffer.NewID()
	stale := s.Begin(id, 0, "f")
	current := s.Begin(id, 4, "b")
	if s.Done(stale, []Item{{Label: "foo"}}) {
		t.Fatalf("stale response accepted")
	}
	if s.Status != Started {
		t.Fatalf("Status = %v, want started", s.Status)
	}
	if !s.Done(current, []Item{{Label: "bar"}, {Label: "baz"}}) {
		t.Fatalf("current response rejected")
	}
	if s.Status != Done || len(s.Items()) != 2 {
		t.Fatalf("Status = %v items = %v", s.Status, labels(s.Items()))
	}
	if s.Done(current, nil) {
		t.Fatalf("duplicate response accepted")
	}
}

func TestFilterIsCaseSensitivePrefixFirst(t *testing.T) {
	var s Session
	req := s.Begin(buffer.NewID(), 0, "")
	s.Done(req, []Item{
		{Label: "unfold"},
		{Label: "Format"},
		{Label: "fold"},
		{Label: "other"},
	})
	s.UpdateInput("fo")
	got := labels(s.Items())
	want := []string{"fold", "unfold"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("filtered = %v, want %v", got, want)
	}
	s.UpdateInput("")
	if len(s.Items()) != 4 {
		t.Fatalf("empty input keeps %d items, want 4", len(s.Items()))
	}
}

func TestNextPreviousWrap(t *testing.T) {
	var s Session
	req := s.Begin(buffer.NewID(), 0, "")
	s.Done(req, []Item{{Label: "a"}, {Label: "b", InsertText: "b()"}})
	s.Previous()
	it, ok := s.Current()
	if !ok || it.Text() != "b()" {
		t.Fatalf("Current after Previous = %+v", it)
	}
	s.Next()
	if it, _ := s.Current(); it.Text() != "a" {
		t.Fatalf("Current after Next = %+v", it)
	}
}

func TestFailOnlyCancelsCurrentRequest(t *testing.T) {
	var s Session
	id := buffer.NewID()
	old := s.Begin(id, 0, "")
	cur := s.Begin(id, 1, "")
	if s.Fail(old) {
		t.Fatalf("failure of a superseded request cancelled the session")
	}
	if !s.Fail(cur) || s.Active() {
		t.Fatalf("failure of the current request did not cancel")
	}
	if next := s.Begin(id, 1, ""); next != cur+1 {
		t.Fatalf("request id reset after cancel: %d", next)
	}
}
