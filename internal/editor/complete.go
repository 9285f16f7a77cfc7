package editor

import (
	"slices"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/kobzarvs/qdoc/internal/buffer"
	"github.com/kobzarvs/qdoc/internal/completion"
	"github.com/kobzarvs/qdoc/internal/rope"
	"github.com/kobzarvs/qdoc/internal/selection"
)

// updateCompletion runs after every Insert-mode edit. The identifier
// around the caret is the input; its start is the session anchor.
func (w *Workspace) updateCompletion(v *View, doc *document) {
	s := &w.completion
	if v.Cursor.Mode != ModeInsert || !w.opts.AutoCompletion || w.svc.Completion == nil {
		s.Cancel()
		return
	}
	caret := v.Cursor.Selection.CaretOffset()
	anchor := doc.buf.PrevCodeBoundary(caret)
	input := doc.buf.Slice(anchor, doc.buf.NextCodeBoundary(caret))
	if input == "" {
		r, size := doc.buf.Text().RuneBefore(caret)
		if size == 0 || !slices.Contains(doc.lang.Triggers(), r) {
			s.Cancel()
			return
		}
	}
	if s.Matches(doc.buf.ID(), anchor) {
		s.UpdateInput(input)
		return
	}
	id := s.Begin(doc.buf.ID(), anchor, input)
	w.requestCompletion(completion.Request{
		ID:       id,
		BufferID: doc.buf.ID(),
		Path:     doc.buf.Path(),
		Language: doc.buf.Language(),
		Offset:   caret,
		Position: positionAt(doc.buf.Text(), caret),
		Rev:      doc.buf.Rev(),
		Text:     doc.buf.Text().String(),
	})
}

// positionAt converts off into a line and UTF-16 character.
func positionAt(t rope.Rope, off int) completion.Position {
	off = t.ClampBoundary(off)
	line := t.LineOfOffset(off)
	prefix := t.Slice(t.OffsetOfLine(line), off)
	char := 0
	for prefix != "" {
		r, size := utf8.DecodeRuneInString(prefix)
		if n := utf16.RuneLen(r); n > 0 {
			char += n
		} else {
			char++
		}
		prefix = prefix[size:]
	}
	return completion.Position{Line: line, Character: char}
}

// selectCompletion replaces the identifier being completed with the current
// item.
func (w *Workspace) selectCompletion(v *View, doc *document) {
	s := &w.completion
	item, ok := s.Current()
	if !ok || v.Cursor.Mode != ModeInsert || s.BufferID != doc.buf.ID() {
		return
	}
	caret := v.Cursor.Selection.CaretOffset()
	if caret < s.Anchor {
		s.Cancel()
		return
	}
	sel := selection.New(selection.Region{Start: s.Anchor, End: doc.buf.NextCodeBoundary(caret)})
	s.Cancel()
	doc.buf.BreakUndoGroup()
	w.replaceSelection(v, doc, sel, item.Text(), buffer.EditOther)
}
