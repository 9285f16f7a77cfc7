package highlight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kobzarvs/qdoc/internal/buffer"
	"github.com/kobzarvs/qdoc/internal/rope"
)

func TestCoalesceKeepsNewestPerBuffer(t *testing.T) {
	a, b := buffer.NewID(), buffer.NewID()
	got := Coalesce([]Event{
		{BufferID: a, Rev: 1},
		{BufferID: b, Rev: 4},
		{BufferID: a, Rev: 3},
		{BufferID: a, Rev: 2},
	})
	if len(got) != 2 {
		t.Fatalf("Coalesce returned %d events, want 2", len(got))
	}
	if got[0].BufferID != a || got[0].Rev != 3 {
		t.Fatalf("first event = %+v, want buffer a rev 3", got[0])
	}
	if got[1].BufferID != b || got[1].Rev != 4 {
		t.Fatalf("second event = %+v, want buffer b rev 4", got[1])
	}
}

func TestCoalesceSemanticWinsTie(t *testing.T) {
	id := buffer.NewID()
	for _, events := range [][]Event{
		{{BufferID: id, Rev: 5, Semantic: true}, {BufferID: id, Rev: 5}},
		{{BufferID: id, Rev: 5}, {BufferID: id, Rev: 5, Semantic: true}},
	} {
		got := Coalesce(events)
		if len(got) != 1 || !got[0].Semantic {
			t.Fatalf("Coalesce = %+v, want the semantic event", got)
		}
	}
}

func TestSpansRestoreOuterKind(t *testing.T) {
	events := []HighlightEvent{
		StartEvent("keyword"), SourceEvent(0, 2), EndEvent(),
		SourceEvent(2, 3),
		StartEvent("string"), SourceEvent(3, 5),
		StartEvent("escape"), SourceEvent(5, 6), EndEvent(),
		SourceEvent(6, 8), EndEvent(),
	}
	got := Spans(events)
	want := []buffer.Span{
		{Start: 0, End: 2, Style: "keyword"},
		{Start: 3, End: 5, Style: "string"},
		{Start: 5, End: 6, Style: "escape"},
		{Start: 6, End: 8, Style: "string"},
	}
	if len(got) != len(want) {
		t.Fatalf("Spans = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("span %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenSpansClipAndOrder(t *testing.T) {
	got := TokenSpans([]Token{
		{Start: 6, End: 20, Kind: "variable"},
		{Start: 0, End: 4, Kind: "function"},
		{Start: 2, End: 5, Kind: "type"},
	}, 10)
	want := []buffer.Span{
		{Start: 0, End: 4, Style: "function"},
		{Start: 4, End: 5, Style: "type"},
		{Start: 6, End: 10, Style: "variable"},
	}
	if len(got) != len(want) {
		t.Fatalf("TokenSpans = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("span %d = %v, want %v", i, got[i], want[i])
		}
	}
}

type countingGrammar struct {
	mu    sync.Mutex
	calls int
}

func (g *countingGrammar) Highlight(ctx context.Context, src []byte) ([]HighlightEvent, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return []HighlightEvent{StartEvent("word"), SourceEvent(0, len(src)), EndEvent()}, nil
}

func TestPipelineParsesOncePerDrain(t *testing.T) {
	g := &countingGrammar{}
	results := make(chan Result, 8)
	p := NewPipeline(func(string) (Grammar, error) { return g, nil }, func(r Result) { results <- r })

	id := buffer.NewID()
	for rev := uint64(1); rev <= 5; rev++ {
		p.Enqueue(Event{BufferID: id, Rev: rev, Language: "x", Text: rope.New("abc")})
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- p.Run(ctx) }()

	select {
	case res := <-results:
		if res.Rev != 5 || res.Semantic || len(res.Spans) != 1 {
			t.Fatalf("result = %+v, want rev 5 with one span", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no result")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if g.calls != 1 {
		t.Fatalf("grammar ran %d times, want 1", g.calls)
	}
}

func TestPipelineSemanticEventSkipsGrammar(t *testing.T) {
	g := &countingGrammar{}
	results := make(chan Result, 1)
	p := NewPipeline(func(string) (Grammar, error) { return g, nil }, func(r Result) { results <- r })
	id := buffer.NewID()
	p.Enqueue(Event{BufferID: id, Rev: 2, Language: "x", Text: rope.New("abcdef")})
	p.Enqueue(Event{BufferID: id, Rev: 2, Text: rope.New("abcdef"), Semantic: true,
		Tokens: []Token{{Start: 0, End: 3, Kind: "function"}}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()
	select {
	case res := <-results:
		if !res.Semantic || res.Spans[0].Style != "function" {
			t.Fatalf("result = %+v, want semantic spans", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no result")
	}
	if g.calls != 0 {
		t.Fatalf("grammar ran %d times, want 0", g.calls)
	}
}

type failingGrammar struct{ panic bool }

func (g failingGrammar) Highlight(context.Context, []byte) ([]HighlightEvent, error) {
	if g.panic {
		panic("boom")
	}
	return nil, errors.New("parse failed")
}

func TestPipelineSurvivesGrammarFailure(t *testing.T) {
	results := make(chan Result, 4)
	grammars := func(lang string) (Grammar, error) {
		switch lang {
		case "panic":
			return failingGrammar{panic: true}, nil
		case "error":
			return failingGrammar{}, nil
		}
		return &countingGrammar{}, nil
	}
	p := NewPipeline(grammars, func(r Result) { results <- r })
	p.Enqueue(Event{BufferID: buffer.NewID(), Rev: 1, Language: "panic", Text: rope.New("a")})
	p.Enqueue(Event{BufferID: buffer.NewID(), Rev: 1, Language: "error", Text: rope.New("a")})
	ok := buffer.NewID()
	p.Enqueue(Event{BufferID: ok, Rev: 1, Language: "fine", Text: rope.New("a")})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()
	select {
	case res := <-results:
		if res.BufferID != ok {
			t.Fatalf("result for unexpected buffer")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("worker stopped after a failing grammar")
	}
}

func TestFallbackTriesNext(t *testing.T) {
	none := func(lang string) (Grammar, error) { return nil, ErrNoGrammar }
	g := &countingGrammar{}
	some := func(lang string) (Grammar, error) { return g, nil }
	got, err := Fallback(none, some)("go")
	if err != nil || got != g {
		t.Fatalf("Fallback = %v, %v", got, err)
	}
	if _, err := Fallback(none)("go"); !errors.Is(err, ErrNoGrammar) {
		t.Fatalf("Fallback err = %v, want ErrNoGrammar", err)
	}
}

func TestChromaGrammar(t *testing.T) {
	g, err := ChromaGrammar("python")
	if err != nil {
		t.Fatalf("ChromaGrammar error: %v", err)
	}
	src := "# note\nx = 'hi'\n"
	events, err := g.Highlight(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Highlight error: %v", err)
	}
	spans := Spans(events)
	var comment, str bool
	for _, s := range spans {
		if s.End > len(src) {
			t.Fatalf("span %v past end of text", s)
		}
		text := src[s.Start:s.End]
		if s.Style == "comment" && text == "# note" {
			comment = true
		}
		if s.Style == "string" && (text == "'hi'" || text == "'" || text == "hi") {
			str = true
		}
	}
	if !comment || !str {
		t.Fatalf("spans = %v, want comment and string", spans)
	}
	if _, err := ChromaGrammar("no-such-language-xyz"); !errors.Is(err, ErrNoGrammar) {
		t.Fatalf("unknown language err = %v", err)
	}
}

func TestChromaGrammarKeepsCRLFOffsets(t *testing.T) {
	g, err := ChromaGrammar("python")
	if err != nil {
		t.Fatalf("ChromaGrammar error: %v", err)
	}
	src := "x = 1\r\n\r\n# note\r\ny = 'hi'\r\n"
	events, err := g.Highlight(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Highlight error: %v", err)
	}
	var comment, str bool
	for _, s := range Spans(events) {
		text := src[s.Start:s.End]
		if s.Style == "comment" {
			if !strings.HasPrefix(text, "# note") {
				t.Fatalf("comment span covers %q", text)
			}
			comment = true
		}
		if s.Style == "string" && strings.Contains(text, "'") {
			if !strings.HasPrefix(src[s.Start:], "'hi'") && !strings.HasSuffix(src[:s.End], "'hi'") {
				t.Fatalf("string span covers %q", text)
			}
			str = true
		}
	}
	if !comment || !str {
		t.Fatalf("spans = %v, want comment and string", Spans(events))
	}
}
