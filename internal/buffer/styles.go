package buffer

import (
	"sort"
	"strings"

	"github.com/kobzarvs/qdoc/internal/delta"
)

// Span tags [Start, End) with a highlight kind such as "keyword" or
// "string".
type Span struct {
	Start int
	End   int
	Style string
}

// UpdateStyles installs spans computed for rev. Results for any other
// revision are stale and ignored, and a grammar result never replaces a
// semantic one for the same revision. It reports whether the spans were
// installed.
func (b *Buffer) UpdateStyles(rev uint64, spans []Span, semantic bool) bool {
	if rev != b.rev {
		return false
	}
	if !semantic && b.stylesSemantic && b.stylesRev == rev {
		return false
	}
	b.styles = normalizeSpans(spans, b.text.Len())
	b.stylesRev = rev
	b.stylesSemantic = semantic
	return true
}

// Styles returns the current spans with the revision and origin they were
// computed for. After an edit the spans are shifted but keep their tag.
func (b *Buffer) Styles() ([]Span, uint64, bool) {
	return b.styles, b.stylesRev, b.stylesSemantic
}

func normalizeSpans(spans []Span, limit int) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		s.Start = max(s.Start, 0)
		s.End = min(s.End, limit)
		if s.Start < s.End {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	n := 0
	for _, s := range out {
		if n > 0 && s.Start < out[n-1].End {
			s.Start = out[n-1].End
			if s.Start >= s.End {
				continue
			}
		}
		out[n] = s
		n++
	}
	return out[:n]
}

func (b *Buffer) shiftStyles(d delta.Delta) {
	if len(b.styles) == 0 {
		return
	}
	out := b.styles[:0:0]
	for _, s := range b.styles {
		start := d.TransformOffset(s.Start, true)
		end := d.TransformOffset(s.End, false)
		if start < end {
			out = append(out, Span{Start: start, End: end, Style: s.Style})
		}
	}
	b.styles = out
}

// StyleAt returns the span covering off.
func (b *Buffer) StyleAt(off int) (Span, bool) {
	i := sort.Search(len(b.styles), func(i int) bool { return b.styles[i].End > off })
	if i < len(b.styles) && b.styles[i].Start <= off {
		return b.styles[i], true
	}
	return Span{}, false
}

// IsLiteral reports whether off lies inside a string or comment.
func (b *Buffer) IsLiteral(off int) bool {
	s, ok := b.StyleAt(off)
	if !ok {
		return false
	}
	return strings.HasPrefix(s.Style, "string") || strings.HasPrefix(s.Style, "comment")
}
