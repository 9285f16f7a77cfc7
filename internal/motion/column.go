package motion

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/qdoc/internal/rope"
)

// NextGrapheme returns the offset after the grapheme cluster at off. A
// newline is a cluster of its own.
func NextGrapheme(t rope.Rope, off int) int {
	off = t.ClampBoundary(off)
	end := t.LineEndOffset(t.LineOfOffset(off))
	if off >= end {
		return min(off+1, t.Len())
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(t.Slice(off, end), -1)
	return off + len(cluster)
}

// PrevGrapheme returns the start of the grapheme cluster before off.
func PrevGrapheme(t rope.Rope, off int) int {
	off = t.ClampBoundary(off)
	if off == 0 {
		return 0
	}
	start := t.OffsetOfLine(t.LineOfOffset(off))
	if off == start {
		return off - 1
	}
	prefix := t.Slice(start, off)
	pos, last, state := 0, 0, -1
	for prefix != "" {
		var cluster string
		cluster, prefix, _, state = uniseg.FirstGraphemeClusterInString(prefix, state)
		last = pos
		pos += len(cluster)
	}
	return start + last
}

// LineEndOffset returns the end of line. With inclusive set the caret must
// sit on a character, so the result is the start of the last grapheme
// instead of the newline position.
func LineEndOffset(t rope.Rope, line int, inclusive bool) int {
	end := t.LineEndOffset(line)
	if inclusive && end > t.OffsetOfLine(line) {
		return PrevGrapheme(t, end)
	}
	return end
}

// FirstNonBlank returns the first non-whitespace offset of line, or the
// line end when the line is blank.
func FirstNonBlank(t rope.Rope, line int, inclusive bool) int {
	content := t.LineContent(line)
	indent := len(content) - len(strings.TrimLeft(content, " \t"))
	return min(t.OffsetOfLine(line)+indent, LineEndOffset(t, line, inclusive))
}

func clusterWidth(cluster string, col, tabWidth int) int {
	if cluster == "\t" {
		return tabWidth - col%tabWidth
	}
	return runewidth.StringWidth(cluster)
}

func (d Doc) tabWidth() int {
	if d.TabWidth < 1 {
		return 4
	}
	return d.TabWidth
}

// DisplayColumn returns the screen column of off within its line.
func DisplayColumn(doc Doc, off int) int {
	t := doc.Text
	off = t.ClampBoundary(off)
	s := t.Slice(t.OffsetOfLine(t.LineOfOffset(off)), off)
	col, state := 0, -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		col += clusterWidth(cluster, col, doc.tabWidth())
	}
	return col
}

// OffsetAtColumn returns the offset on line whose cluster covers display
// column col, clamped to the line end.
func OffsetAtColumn(doc Doc, line, col int, inclusive bool) int {
	t := doc.Text
	start := t.OffsetOfLine(line)
	s := t.LineContent(line)
	pos, w, state := 0, 0, -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := clusterWidth(cluster, w, doc.tabWidth())
		if w+cw > col {
			break
		}
		w += cw
		pos += len(cluster)
	}
	return min(start+pos, LineEndOffset(t, line, inclusive))
}
