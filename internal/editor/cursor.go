package editor

import (
	"strings"

	"github.com/kobzarvs/qdoc/internal/delta"
	"github.com/kobzarvs/qdoc/internal/motion"
	"github.com/kobzarvs/qdoc/internal/rope"
	"github.com/kobzarvs/qdoc/internal/selection"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	}
	return "NORMAL"
}

type VisualMode int

const (
	VisualChar VisualMode = iota
	VisualLine
	VisualBlock
)

func (v VisualMode) registerMode() RegisterMode {
	switch v {
	case VisualLine:
		return RegisterLinewise
	case VisualBlock:
		return RegisterBlockwise
	}
	return RegisterNormal
}

// Cursor is the modal cursor of one view. Offset is the Normal caret,
// Start and End are the Visual anchor and caret, Selection is the Insert
// selection. Only the fields of the current mode are meaningful.
type Cursor struct {
	Mode      Mode
	Visual    VisualMode
	Offset    int
	Start     int
	End       int
	Selection selection.Selection
	Horiz     motion.Horiz
}

func NormalCursor(off int) Cursor {
	return Cursor{Mode: ModeNormal, Offset: off}
}

func InsertCursor(sel selection.Selection) Cursor {
	return Cursor{Mode: ModeInsert, Selection: sel}
}

func VisualCursor(vm VisualMode, start, end int) Cursor {
	return Cursor{Mode: ModeVisual, Visual: vm, Start: start, End: end}
}

// Caret returns the offset the cursor is drawn at.
func (c Cursor) Caret() int {
	switch c.Mode {
	case ModeVisual:
		return c.End
	case ModeInsert:
		return c.Selection.CaretOffset()
	}
	return c.Offset
}

// ApplyDelta moves the cursor through an edit made elsewhere. t is the
// text after the edit.
func (c *Cursor) ApplyDelta(d delta.Delta, t rope.Rope) {
	switch c.Mode {
	case ModeNormal:
		c.Offset = motion.SnapNormal(t, d.TransformOffset(c.Offset, true))
	case ModeVisual:
		c.Start = motion.SnapNormal(t, d.TransformOffset(c.Start, true))
		c.End = motion.SnapNormal(t, d.TransformOffset(c.End, true))
	case ModeInsert:
		c.Selection = c.Selection.ApplyDelta(d, true)
	}
}

// visualRegions returns the text covered by a Visual cursor: one region
// for Char and Line, one per row for Block.
func (c Cursor) visualRegions(doc motion.Doc) []selection.Region {
	t := doc.Text
	lo, hi := min(c.Start, c.End), max(c.Start, c.End)
	switch c.Visual {
	case VisualLine:
		first, last := t.LineOfOffset(lo), t.LineOfOffset(hi)
		return []selection.Region{{Start: t.OffsetOfLine(first), End: t.OffsetOfLine(last + 1)}}
	case VisualBlock:
		first, last := t.LineOfOffset(lo), t.LineOfOffset(hi)
		left := min(motion.DisplayColumn(doc, c.Start), motion.DisplayColumn(doc, c.End))
		right := max(motion.DisplayColumn(doc, c.Start), motion.DisplayColumn(doc, c.End))
		regions := make([]selection.Region, 0, last-first+1)
		for line := first; line <= last; line++ {
			end := t.LineEndOffset(line)
			s := motion.OffsetAtColumn(doc, line, left, false)
			e := motion.OffsetAtColumn(doc, line, right, false)
			if e < end {
				e = min(motion.NextGrapheme(t, e), end)
			}
			regions = append(regions, selection.Region{Start: s, End: max(s, e)})
		}
		return regions
	}
	return []selection.Region{{Start: lo, End: min(motion.NextGrapheme(t, hi), t.Len())}}
}

// regionText joins the text of regions the way a register stores it.
func regionText(t rope.Rope, regions []selection.Region, mode RegisterMode) string {
	switch mode {
	case RegisterBlockwise:
		rows := make([]string, len(regions))
		for i, r := range regions {
			rows[i] = t.Slice(r.Start, r.End)
		}
		return strings.Join(rows, "\n")
	case RegisterLinewise:
		var b strings.Builder
		for _, r := range regions {
			b.WriteString(t.Slice(r.Start, r.End))
		}
		s := b.String()
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		return s
	}
	var b strings.Builder
	for _, r := range regions {
		b.WriteString(t.Slice(r.Start, r.End))
	}
	return b.String()
}
