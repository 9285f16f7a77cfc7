package editor

import (
	"github.com/kobzarvs/qdoc/internal/delta"
	"github.com/kobzarvs/qdoc/internal/motion"
	"github.com/kobzarvs/qdoc/internal/selection"
)

// Dispatch runs cmd on the active view. count is the typed count prefix,
// zero when none was given.
func (w *Workspace) Dispatch(cmd Command, count int) {
	v, doc := w.current()
	if v == nil {
		return
	}
	count = min(max(count, 0), motion.MaxCount)
	if cmd.isMotion() {
		w.move(v, doc, cmd, count)
		return
	}
	t := doc.buf.Text()
	switch cmd {
	case CmdUndo:
		w.undo(v, doc, false)
	case CmdRedo:
		w.undo(v, doc, true)

	case CmdEnterInsert:
		switch v.Cursor.Mode {
		case ModeNormal:
			w.enterInsert(v, doc, selection.Caret(v.Cursor.Offset))
		case ModeVisual:
			w.enterInsert(v, doc, selection.New(v.Cursor.visualRegions(w.motionDoc(doc))...))
		}
	case CmdAppend:
		if v.Cursor.Mode == ModeInsert {
			return
		}
		caret := v.Cursor.Caret()
		if v.Cursor.Mode == ModeVisual {
			caret = max(v.Cursor.Start, v.Cursor.End)
		}
		end := t.LineEndOffset(t.LineOfOffset(caret))
		w.enterInsert(v, doc, selection.Caret(min(motion.NextGrapheme(t, caret), end)))
	case CmdAppendLineEnd:
		if v.Cursor.Mode == ModeInsert {
			return
		}
		w.enterInsert(v, doc, selection.Caret(t.LineEndOffset(t.LineOfOffset(v.Cursor.Caret()))))
	case CmdInsertLineStart:
		if v.Cursor.Mode == ModeInsert {
			return
		}
		w.enterInsert(v, doc, selection.Caret(motion.FirstNonBlank(t, t.LineOfOffset(v.Cursor.Caret()), false)))
	case CmdOpenBelow, CmdOpenAbove:
		if v.Cursor.Mode == ModeInsert {
			return
		}
		w.openLine(v, doc, cmd == CmdOpenBelow)
	case CmdEnterNormal:
		w.leave(v, doc)

	case CmdToggleSelect:
		w.toggleVisual(v, doc, VisualChar)
	case CmdExtendLine:
		w.toggleVisual(v, doc, VisualLine)
	case CmdToggleBlockSelect:
		w.toggleVisual(v, doc, VisualBlock)

	case CmdYank:
		w.yank(v, doc, count)
	case CmdPaste:
		w.paste(v, doc, w.Register.Unnamed, false, count)
	case CmdPasteBefore:
		w.paste(v, doc, w.Register.Unnamed, true, count)
	case CmdPasteDelete:
		// The count picks the delete, newest first.
		if data, ok := w.Register.Delete(max(count, 1) - 1); ok {
			w.paste(v, doc, data, false, 1)
		}
	case CmdDeleteChar:
		w.deleteChar(v, doc, count)
	case CmdChange:
		w.change(v, doc, count)

	case CmdBackspace:
		if v.Cursor.Mode == ModeInsert {
			w.backspace(v, doc)
		}
	case CmdDeleteWordLeft:
		if v.Cursor.Mode == ModeInsert {
			w.deleteWordLeft(v, doc)
		}
	case CmdDeleteLineStart:
		if v.Cursor.Mode == ModeInsert {
			w.deleteLineStart(v, doc)
		}
	case CmdNewline:
		if v.Cursor.Mode == ModeInsert {
			w.newline(v, doc)
		}
	case CmdBreakUndoGroup:
		doc.buf.BreakUndoGroup()

	case CmdCompletionNext:
		w.completion.Next()
	case CmdCompletionPrev:
		w.completion.Previous()
	case CmdCompletionSelect:
		w.selectCompletion(v, doc)
	}
}

func motionFor(cmd Command, count int) (motion.Motion, bool) {
	switch cmd {
	case CmdMoveLeft:
		return motion.Motion{Kind: motion.Left}, true
	case CmdMoveRight:
		return motion.Motion{Kind: motion.Right}, true
	case CmdMoveUp:
		return motion.Motion{Kind: motion.Up}, true
	case CmdMoveDown:
		return motion.Motion{Kind: motion.Down}, true
	case CmdLineStart:
		return motion.Motion{Kind: motion.StartOfLine}, true
	case CmdLineEnd:
		return motion.Motion{Kind: motion.EndOfLine}, true
	case CmdFirstNonBlank:
		return motion.Motion{Kind: motion.FirstNonBlankOfLine}, true
	case CmdWordForward:
		return motion.Motion{Kind: motion.WordForward}, true
	case CmdWordBackward:
		return motion.Motion{Kind: motion.WordBackward}, true
	case CmdWordEnd:
		return motion.Motion{Kind: motion.WordEndForward}, true
	case CmdFileStart:
		if count > 0 {
			return motion.Motion{Kind: motion.Line, Line: motion.LineNumber, N: count}, true
		}
		return motion.Motion{Kind: motion.Line, Line: motion.LineFirst}, true
	case CmdFileEnd:
		if count > 0 {
			return motion.Motion{Kind: motion.Line, Line: motion.LineNumber, N: count}, true
		}
		return motion.Motion{Kind: motion.Line, Line: motion.LineLast}, true
	case CmdGotoLine:
		if count <= 0 {
			return motion.Motion{}, false
		}
		return motion.Motion{Kind: motion.Line, Line: motion.LineNumber, N: count}, true
	case CmdMatchBrackets:
		return motion.Motion{Kind: motion.MatchPairs}, true
	case CmdNextUnmatchedParen:
		return motion.Motion{Kind: motion.NextUnmatched, Char: ')'}, true
	case CmdPrevUnmatchedParen:
		return motion.Motion{Kind: motion.PreviousUnmatched, Char: '('}, true
	case CmdNextUnmatchedBrace:
		return motion.Motion{Kind: motion.NextUnmatched, Char: '}'}, true
	case CmdPrevUnmatchedBrace:
		return motion.Motion{Kind: motion.PreviousUnmatched, Char: '{'}, true
	}
	return motion.Motion{}, false
}

func (w *Workspace) move(v *View, doc *document, cmd Command, count int) {
	m, ok := motionFor(cmd, count)
	if !ok {
		return
	}
	md := w.motionDoc(doc)
	c := &v.Cursor
	switch c.Mode {
	case ModeNormal:
		c.Offset, c.Horiz = motion.Move(md, c.Offset, c.Horiz, count, m, motion.Options{Inclusive: true})
	case ModeVisual:
		c.End, c.Horiz = motion.Move(md, c.End, c.Horiz, count, m, motion.Options{Inclusive: true})
	case ModeInsert:
		regions := c.Selection.Regions()
		carets := make([]selection.Region, 0, len(regions))
		horiz := c.Horiz
		for _, r := range regions {
			var off int
			off, horiz = motion.Move(md, r.Caret(), c.Horiz, count, m, motion.Options{})
			carets = append(carets, selection.Region{Start: off, End: off})
		}
		c.Selection = selection.New(carets...)
		c.Horiz = horiz
		w.completion.Cancel()
	}
}

func (w *Workspace) enterInsert(v *View, doc *document, sel selection.Selection) {
	doc.buf.BreakUndoGroup()
	v.Cursor = InsertCursor(sel)
}

// enterNormal switches to Normal at off, snapped onto a character.
func (w *Workspace) enterNormal(v *View, doc *document, off int) {
	doc.buf.BreakUndoGroup()
	v.Cursor = NormalCursor(motion.SnapNormal(doc.buf.Text(), off))
}

// leave returns to Normal. Leaving Insert steps back one character the way
// vi does.
func (w *Workspace) leave(v *View, doc *document) {
	t := doc.buf.Text()
	switch v.Cursor.Mode {
	case ModeInsert:
		w.completion.Cancel()
		caret := v.Cursor.Selection.MinOffset()
		if caret > t.OffsetOfLine(t.LineOfOffset(caret)) {
			caret = motion.PrevGrapheme(t, caret)
		}
		w.enterNormal(v, doc, caret)
	case ModeVisual:
		w.enterNormal(v, doc, v.Cursor.End)
	}
}

func (w *Workspace) toggleVisual(v *View, doc *document, vm VisualMode) {
	c := v.Cursor
	switch c.Mode {
	case ModeNormal:
		doc.buf.BreakUndoGroup()
		v.Cursor = VisualCursor(vm, c.Offset, c.Offset)
	case ModeVisual:
		if c.Visual == vm {
			w.enterNormal(v, doc, c.End)
			return
		}
		doc.buf.BreakUndoGroup()
		v.Cursor.Visual = vm
	}
}

func (w *Workspace) undo(v *View, doc *document, redo bool) {
	var (
		d  delta.Delta
		ok bool
	)
	if redo {
		d, ok = doc.buf.Redo()
	} else {
		d, ok = doc.buf.Undo()
	}
	if !ok {
		return
	}
	w.afterEdit(v, doc, d)
	w.completion.Cancel()
	w.enterNormal(v, doc, firstChange(d))
}

// firstChange returns the new-text offset of the first insert or delete
// in d.
func firstChange(d delta.Delta) int {
	off := 0
	for _, op := range d.Ops {
		if op.Kind != delta.Retain {
			return off
		}
		off += op.N
	}
	return off
}
