package editor

import (
	"strings"

	"github.com/kobzarvs/qdoc/internal/buffer"
	"github.com/kobzarvs/qdoc/internal/delta"
	"github.com/kobzarvs/qdoc/internal/logger"
	"github.com/kobzarvs/qdoc/internal/motion"
	"github.com/kobzarvs/qdoc/internal/selection"
)

// edit replaces sel with text and propagates the change to every other
// view on the buffer. It reports false when nothing changed.
func (w *Workspace) edit(v *View, doc *document, sel selection.Selection, text string, et buffer.EditType) (delta.Delta, bool) {
	_, d, err := doc.buf.Apply(sel, text, et)
	if err != nil {
		logger.Warn("edit rejected", "buffer", doc.buf.ID(), "err", err)
		return d, false
	}
	if d.IsIdentity() {
		return d, false
	}
	w.afterEdit(v, doc, d)
	return d, true
}

func (w *Workspace) afterEdit(origin *View, doc *document, d delta.Delta) {
	t := doc.buf.Text()
	for _, id := range w.order {
		other := w.views[id]
		if other == origin || other.buffer != doc.buf.ID() {
			continue
		}
		other.Cursor.ApplyDelta(d, t)
	}
	if w.completion.Active() && w.completion.BufferID == doc.buf.ID() && (origin == nil || origin.id != w.active) {
		w.completion.Cancel()
	}
	w.scheduleHighlight(doc)
}

// replaceSelection edits and leaves an Insert selection of carets after
// each replacement.
func (w *Workspace) replaceSelection(v *View, doc *document, sel selection.Selection, text string, et buffer.EditType) bool {
	if _, ok := w.edit(v, doc, sel, text, et); !ok {
		return false
	}
	regions := sel.Regions()
	carets := make([]selection.Region, 0, len(regions))
	shift := 0
	for _, r := range regions {
		off := r.Start + shift + len(text)
		carets = append(carets, selection.Region{Start: off, End: off})
		shift += len(text) - r.Len()
	}
	v.Cursor = InsertCursor(selection.New(carets...))
	return true
}

// Insert types text at every region of an Insert cursor.
func (w *Workspace) Insert(text string) {
	v, doc := w.current()
	if v == nil || v.Cursor.Mode != ModeInsert || text == "" {
		return
	}
	et := buffer.EditInsertChars
	if text == "\n" {
		et = buffer.EditInsertNewline
	}
	w.replaceSelection(v, doc, v.Cursor.Selection, text, et)
	w.updateCompletion(v, doc)
}

// insertRegions builds the deletion ranges of an Insert cursor: selected
// text as is, otherwise span(caret) for each caret. Empty results are
// dropped.
func insertRegions(sel selection.Selection, span func(caret int) (int, int)) selection.Selection {
	var out []selection.Region
	for _, r := range sel.Regions() {
		if !r.IsCaret() {
			out = append(out, r)
			continue
		}
		if s, e := span(r.Start); s < e {
			out = append(out, selection.Region{Start: s, End: e})
		}
	}
	return selection.New(out...)
}

func (w *Workspace) deleteInsert(v *View, doc *document, span func(caret int) (int, int)) {
	sel := insertRegions(v.Cursor.Selection, span)
	if sel.IsEmpty() {
		return
	}
	w.replaceSelection(v, doc, sel, "", buffer.EditDelete)
	w.updateCompletion(v, doc)
}

func (w *Workspace) backspace(v *View, doc *document) {
	t := doc.buf.Text()
	w.deleteInsert(v, doc, func(caret int) (int, int) {
		return motion.PrevGrapheme(t, caret), caret
	})
}

func (w *Workspace) deleteWordLeft(v *View, doc *document) {
	md := w.motionDoc(doc)
	w.deleteInsert(v, doc, func(caret int) (int, int) {
		start, _ := motion.Move(md, caret, motion.Horiz{}, 1, motion.Motion{Kind: motion.WordBackward}, motion.Options{})
		return start, caret
	})
}

func (w *Workspace) deleteLineStart(v *View, doc *document) {
	t := doc.buf.Text()
	w.deleteInsert(v, doc, func(caret int) (int, int) {
		return t.OffsetOfLine(t.LineOfOffset(caret)), caret
	})
}

// deleteChar removes count characters under the cursor.
func (w *Workspace) deleteChar(v *View, doc *document, count int) {
	t := doc.buf.Text()
	switch v.Cursor.Mode {
	case ModeInsert:
		w.deleteInsert(v, doc, func(caret int) (int, int) {
			return caret, motion.NextGrapheme(t, caret)
		})
	case ModeVisual:
		start := w.deleteVisual(v, doc, false)
		w.enterNormal(v, doc, start)
	case ModeNormal:
		start, end := v.Cursor.Offset, w.charsUnder(doc, v.Cursor.Offset, count)
		if start >= end {
			return
		}
		w.deleteCaptured(v, doc, selection.New(selection.Region{Start: start, End: end}), RegisterNormal)
		v.Cursor = NormalCursor(motion.SnapNormal(doc.buf.Text(), start))
	}
}

// charsUnder returns the end of count graphemes from off, stopping at the
// line end.
func (w *Workspace) charsUnder(doc *document, off, count int) int {
	t := doc.buf.Text()
	end := t.LineEndOffset(t.LineOfOffset(off))
	for i := 0; i < max(count, 1) && off < end; i++ {
		off = min(motion.NextGrapheme(t, off), end)
	}
	return off
}

// deleteCaptured deletes sel after copying it into the delete ring.
func (w *Workspace) deleteCaptured(v *View, doc *document, sel selection.Selection, mode RegisterMode) bool {
	content := regionText(doc.buf.Text(), sel.Regions(), mode)
	w.Register.AddDelete(RegisterData{Content: content, Mode: mode})
	_, ok := w.edit(v, doc, sel, "", buffer.EditDelete)
	return ok
}

// deleteVisual deletes the visual extent and returns where the cursor
// should land. With keepLine a linewise delete leaves an empty line.
func (w *Workspace) deleteVisual(v *View, doc *document, keepLine bool) int {
	t := doc.buf.Text()
	c := v.Cursor
	regions := c.visualRegions(w.motionDoc(doc))
	mode := c.Visual.registerMode()
	content := regionText(t, regions, mode)

	if c.Visual == VisualLine {
		r := &regions[0]
		switch {
		case keepLine && r.End > r.Start && t.Slice(r.End-1, r.End) == "\n":
			r.End--
		case !keepLine && r.End == t.Len() && r.Start > 0 && (r.End == r.Start || t.Slice(r.End-1, r.End) != "\n"):
			r.Start--
		}
	}
	start := regions[0].Start
	w.Register.AddDelete(RegisterData{Content: content, Mode: mode})
	w.edit(v, doc, selection.New(regions...), "", buffer.EditDelete)
	if c.Visual == VisualLine && !keepLine {
		nt := doc.buf.Text()
		return motion.FirstNonBlank(nt, nt.LineOfOffset(start), true)
	}
	return start
}

func (w *Workspace) change(v *View, doc *document, count int) {
	switch v.Cursor.Mode {
	case ModeVisual:
		start := w.deleteVisual(v, doc, true)
		w.enterInsert(v, doc, selection.Caret(start))
	case ModeNormal:
		start, end := v.Cursor.Offset, w.charsUnder(doc, v.Cursor.Offset, count)
		if start < end {
			w.deleteCaptured(v, doc, selection.New(selection.Region{Start: start, End: end}), RegisterNormal)
		}
		w.enterInsert(v, doc, selection.Caret(start))
	}
}

// newline breaks the line at every caret, carrying the indentation of the
// primary caret's line.
func (w *Workspace) newline(v *View, doc *document) {
	t := doc.buf.Text()
	indent := doc.buf.Indent(t.LineOfOffset(v.Cursor.Selection.CaretOffset()))
	w.replaceSelection(v, doc, v.Cursor.Selection, "\n"+indent, buffer.EditInsertNewline)
	w.updateCompletion(v, doc)
}

func (w *Workspace) openLine(v *View, doc *document, below bool) {
	t := doc.buf.Text()
	line := t.LineOfOffset(v.Cursor.Caret())
	indent := doc.buf.Indent(line)
	doc.buf.BreakUndoGroup()
	var at, caret int
	var text string
	if below {
		at = t.LineEndOffset(line)
		text = "\n" + indent
		caret = at + len(text)
	} else {
		at = t.OffsetOfLine(line)
		text = indent + "\n"
		caret = at + len(indent)
	}
	if _, ok := w.edit(v, doc, selection.Caret(at), text, buffer.EditOther); !ok {
		return
	}
	v.Cursor = InsertCursor(selection.Caret(caret))
}

func (w *Workspace) yank(v *View, doc *document, count int) {
	t := doc.buf.Text()
	switch v.Cursor.Mode {
	case ModeVisual:
		c := v.Cursor
		regions := c.visualRegions(w.motionDoc(doc))
		mode := c.Visual.registerMode()
		w.Register.AddYank(RegisterData{Content: regionText(t, regions, mode), Mode: mode})
		start := min(c.Start, c.End)
		if c.Visual == VisualBlock {
			start = regions[0].Start
		}
		w.enterNormal(v, doc, start)
	case ModeNormal:
		line := t.LineOfOffset(v.Cursor.Offset)
		last := min(line+max(count, 1)-1, t.LineCount()-1)
		region := selection.Region{Start: t.OffsetOfLine(line), End: t.OffsetOfLine(last + 1)}
		w.Register.AddYank(RegisterData{
			Content: regionText(t, []selection.Region{region}, RegisterLinewise),
			Mode:    RegisterLinewise,
		})
	}
}

// maxPasteBytes caps the text a counted paste produces. A register larger
// than the cap is still pasted once.
const maxPasteBytes = 64 << 20

func (w *Workspace) paste(v *View, doc *document, data RegisterData, before bool, count int) {
	if data.Content == "" {
		return
	}
	content := data.Content
	if n := min(max(count, 1), maxPasteBytes/len(content)); n > 1 && data.Mode != RegisterBlockwise {
		content = strings.Repeat(content, n)
	}
	switch v.Cursor.Mode {
	case ModeInsert:
		w.replaceSelection(v, doc, v.Cursor.Selection, content, buffer.EditOther)
	case ModeVisual:
		w.pasteVisual(v, doc, RegisterData{Content: content, Mode: data.Mode})
	case ModeNormal:
		switch data.Mode {
		case RegisterLinewise:
			w.pasteLines(v, doc, content, before)
		case RegisterBlockwise:
			w.pasteBlock(v, doc, content, before)
		default:
			w.pasteChars(v, doc, content, before)
		}
	}
}

func (w *Workspace) pasteChars(v *View, doc *document, content string, before bool) {
	t := doc.buf.Text()
	at := v.Cursor.Offset
	if !before {
		end := t.LineEndOffset(t.LineOfOffset(at))
		at = min(motion.NextGrapheme(t, at), end)
	}
	if _, ok := w.edit(v, doc, selection.Caret(at), content, buffer.EditOther); !ok {
		return
	}
	nt := doc.buf.Text()
	caret := at
	if !strings.Contains(content, "\n") {
		caret = motion.PrevGrapheme(nt, at+len(content))
	}
	v.Cursor = NormalCursor(motion.SnapNormal(nt, caret))
}

func (w *Workspace) pasteLines(v *View, doc *document, content string, before bool) {
	t := doc.buf.Text()
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	line := t.LineOfOffset(v.Cursor.Offset)
	var at, target int
	switch {
	case before:
		at, target = t.OffsetOfLine(line), line
	case line+1 < t.LineCount():
		at, target = t.OffsetOfLine(line+1), line+1
	default:
		at, target = t.Len(), line+1
		content = "\n" + strings.TrimSuffix(content, "\n")
	}
	if _, ok := w.edit(v, doc, selection.Caret(at), content, buffer.EditOther); !ok {
		return
	}
	v.Cursor = NormalCursor(motion.FirstNonBlank(doc.buf.Text(), target, true))
}

// pasteBlock inserts one row per line at the caret's display column,
// padding short lines and appending lines past the end.
func (w *Workspace) pasteBlock(v *View, doc *document, content string, before bool) {
	md := w.motionDoc(doc)
	t := md.Text
	at := v.Cursor.Offset
	if !before {
		at = min(motion.NextGrapheme(t, at), t.LineEndOffset(t.LineOfOffset(at)))
	}
	col := motion.DisplayColumn(md, at)
	first := t.LineOfOffset(at)
	rows := strings.Split(content, "\n")
	edits := make([]delta.Edit, 0, len(rows))
	var tail strings.Builder
	for i, row := range rows {
		line := first + i
		if line >= t.LineCount() {
			tail.WriteString("\n" + strings.Repeat(" ", col) + row)
			continue
		}
		off := motion.OffsetAtColumn(md, line, col, false)
		pad := col - motion.DisplayColumn(md, off)
		edits = append(edits, delta.Edit{Start: off, End: off, Text: strings.Repeat(" ", max(pad, 0)) + row})
	}
	if tail.Len() > 0 {
		edits = append(edits, delta.Edit{Start: t.Len(), End: t.Len(), Text: tail.String()})
	}
	_, d, err := doc.buf.ApplyEdits(edits, buffer.EditOther)
	if err != nil {
		logger.Warn("edit rejected", "buffer", doc.buf.ID(), "err", err)
		return
	}
	if d.IsIdentity() {
		return
	}
	w.afterEdit(v, doc, d)
	v.Cursor = NormalCursor(motion.SnapNormal(doc.buf.Text(), d.TransformOffset(at, false)))
}

// pasteVisual replaces the selection with data. The replaced text goes to
// the delete ring.
func (w *Workspace) pasteVisual(v *View, doc *document, data RegisterData) {
	t := doc.buf.Text()
	c := v.Cursor
	regions := c.visualRegions(w.motionDoc(doc))
	mode := c.Visual.registerMode()
	content := data.Content
	if c.Visual == VisualLine && data.Mode != RegisterLinewise {
		content += "\n"
	}
	w.Register.AddDelete(RegisterData{Content: regionText(t, regions, mode), Mode: mode})
	start := regions[0].Start
	w.edit(v, doc, selection.New(regions...), content, buffer.EditOther)
	w.enterNormal(v, doc, start)
}
