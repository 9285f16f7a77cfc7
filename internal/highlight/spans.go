package highlight

import (
	"sort"

	"github.com/kobzarvs/qdoc/internal/buffer"
)

type EventKind int

const (
	Source EventKind = iota
	Start
	End
)

// HighlightEvent is one step of a grammar's output. Start opens a
// highlight, End closes the innermost open one, and Source covers the byte
// range [Start, End) with whatever highlight is open.
type HighlightEvent struct {
	Kind      EventKind
	Start     int
	End       int
	Highlight string
}

func SourceEvent(start, end int) HighlightEvent {
	return HighlightEvent{Kind: Source, Start: start, End: end}
}

func StartEvent(kind string) HighlightEvent {
	return HighlightEvent{Kind: Start, Highlight: kind}
}

func EndEvent() HighlightEvent {
	return HighlightEvent{Kind: End}
}

// Spans folds an event stream into ordered, non-overlapping spans. After an
// End the enclosing highlight applies again.
func Spans(events []HighlightEvent) []buffer.Span {
	var (
		stack []string
		out   []buffer.Span
	)
	for _, ev := range events {
		switch ev.Kind {
		case Start:
			stack = append(stack, ev.Highlight)
		case End:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case Source:
			if len(stack) == 0 || ev.End <= ev.Start {
				continue
			}
			style := stack[len(stack)-1]
			if n := len(out); n > 0 && out[n-1].End == ev.Start && out[n-1].Style == style {
				out[n-1].End = ev.End
				continue
			}
			out = append(out, buffer.Span{Start: ev.Start, End: ev.End, Style: style})
		}
	}
	return out
}

// TokenSpans converts semantic tokens into spans clipped to textLen.
// Overlapping tokens keep the earlier one.
func TokenSpans(tokens []Token, textLen int) []buffer.Span {
	sorted := append([]Token(nil), tokens...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	out := make([]buffer.Span, 0, len(sorted))
	pos := 0
	for _, tok := range sorted {
		start := max(tok.Start, pos)
		end := min(tok.End, textLen)
		if end <= start || tok.Kind == "" {
			continue
		}
		out = append(out, buffer.Span{Start: start, End: end, Style: tok.Kind})
		pos = end
	}
	return out
}
