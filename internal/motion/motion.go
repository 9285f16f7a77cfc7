// Package motion maps a caret offset and a motion to a new offset.
//
// Every function is a pure read of the text: nothing here mutates a buffer
// and nothing fails. Offsets outside the text are clamped before use.
package motion

import (
	"github.com/kobzarvs/qdoc/internal/rope"
)

// Doc is the read-only view a motion needs. Literal, when set, reports
// whether an offset lies inside a string or comment.
type Doc struct {
	Text     rope.Rope
	TabWidth int
	Literal  func(off int) bool
}

type Kind int

const (
	Left Kind = iota
	Right
	Up
	Down
	StartOfLine
	EndOfLine
	FirstNonBlankOfLine
	WordForward
	WordBackward
	WordEndForward
	Line
	MatchPairs
	NextUnmatched
	PreviousUnmatched
)

type LinePosition int

const (
	LineFirst LinePosition = iota
	LineLast
	LineNumber
)

// Motion describes a single movement. N is the 1-based target line of a
// LineNumber motion; when zero the count is used instead. Char is the
// bracket searched by the unmatched motions.
type Motion struct {
	Kind Kind
	Line LinePosition
	N    int
	Char rune
}

type HorizKind int

const (
	HorizNone HorizKind = iota
	HorizCol
	HorizEnd
)

// Horiz is the remembered horizontal position used by vertical motions.
type Horiz struct {
	Kind HorizKind
	Col  int
}

// Options tune a motion to the caller's mode. Inclusive means the caret
// rests on a character (Normal and Visual), so it can never stand on a
// line's newline. ExtendToLine means the result bounds an operator: the
// line end is reachable and word motions stop there instead of wrapping.
type Options struct {
	Inclusive    bool
	ExtendToLine bool
}

func (o Options) caretOnChar() bool { return o.Inclusive && !o.ExtendToLine }

// MaxCount bounds every count prefix.
const MaxCount = 100000

// Move applies m count times starting at offset and returns the new offset
// with the horizontal position to remember for the next vertical motion.
func Move(doc Doc, offset int, horiz Horiz, count int, m Motion, opts Options) (int, Horiz) {
	t := doc.Text
	offset = t.ClampBoundary(offset)
	count = min(max(count, 1), MaxCount)
	line := t.LineOfOffset(offset)
	lastLine := t.LineCount() - 1

	switch m.Kind {
	case Left:
		start := t.OffsetOfLine(line)
		for i := 0; i < count && offset > start; i++ {
			offset = max(PrevGrapheme(t, offset), start)
		}
		return offset, Horiz{}
	case Right:
		end := LineEndOffset(t, line, opts.caretOnChar())
		for i := 0; i < count && offset < end; i++ {
			offset = min(NextGrapheme(t, offset), end)
		}
		return min(offset, max(end, t.OffsetOfLine(line))), Horiz{}
	case Up, Down:
		if horiz.Kind == HorizNone {
			horiz = Horiz{Kind: HorizCol, Col: DisplayColumn(doc, offset)}
		}
		target := line + count
		if m.Kind == Up {
			target = line - count
		}
		target = min(max(target, 0), lastLine)
		return lineHoriz(doc, target, horiz, opts.caretOnChar()), horiz
	case StartOfLine:
		return t.OffsetOfLine(line), Horiz{}
	case EndOfLine:
		target := min(line+count-1, lastLine)
		return LineEndOffset(t, target, opts.caretOnChar()), Horiz{Kind: HorizEnd}
	case FirstNonBlankOfLine:
		return FirstNonBlank(t, line, opts.caretOnChar()), Horiz{}
	case WordForward:
		offset = repeat(count, offset, func(off int) int { return wordForward(t, off, opts.ExtendToLine) })
		return snap(t, offset, opts), Horiz{}
	case WordBackward:
		offset = repeat(count, offset, func(off int) int { return wordBackward(t, off) })
		return snap(t, offset, opts), Horiz{}
	case WordEndForward:
		offset = repeat(count, offset, func(off int) int { return wordEndForward(t, off, false) })
		if opts.ExtendToLine && offset < t.Len() {
			offset = NextGrapheme(t, offset)
		}
		return snap(t, offset, opts), Horiz{}
	case Line:
		var target int
		switch m.Line {
		case LineFirst:
			target = 0
		case LineLast:
			target = lastLine
		default:
			n := m.N
			if n <= 0 {
				n = count
			}
			target = min(max(n-1, 0), lastLine)
		}
		if horiz.Kind == HorizNone {
			horiz = Horiz{Kind: HorizCol, Col: DisplayColumn(doc, offset)}
		}
		return lineHoriz(doc, target, horiz, opts.caretOnChar()), horiz
	case MatchPairs:
		return matchPairs(doc, offset), Horiz{}
	case NextUnmatched:
		return repeat(count, offset, func(off int) int { return nextUnmatched(doc, off, m.Char) }), Horiz{}
	case PreviousUnmatched:
		return repeat(count, offset, func(off int) int { return previousUnmatched(doc, off, m.Char) }), Horiz{}
	}
	return offset, horiz
}

// repeat applies step up to count times, stopping once off stops moving.
func repeat(count, off int, step func(int) int) int {
	for i := 0; i < count; i++ {
		next := step(off)
		if next == off {
			break
		}
		off = next
	}
	return off
}

func lineHoriz(doc Doc, line int, horiz Horiz, inclusive bool) int {
	switch horiz.Kind {
	case HorizEnd:
		return LineEndOffset(doc.Text, line, inclusive)
	case HorizCol:
		return OffsetAtColumn(doc, line, horiz.Col, inclusive)
	}
	return doc.Text.OffsetOfLine(line)
}

// snap keeps a caret that must rest on a character off the newline.
func snap(t rope.Rope, off int, opts Options) int {
	if !opts.caretOnChar() {
		return off
	}
	return SnapNormal(t, off)
}

// SnapNormal moves off back onto the last character of its line when it
// sits on the line end.
func SnapNormal(t rope.Rope, off int) int {
	off = t.ClampBoundary(off)
	line := t.LineOfOffset(off)
	return min(off, LineEndOffset(t, line, true))
}
