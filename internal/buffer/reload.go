package buffer

import (
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/kobzarvs/qdoc/internal/delta"
)

// SetContent replaces the whole text with content through a line diff, so
// only changed lines are touched and the change is undoable like any other
// edit.
func (b *Buffer) SetContent(content string) (uint64, delta.Delta, error) {
	if b.state != Loaded {
		return b.rev, delta.Delta{}, ErrNotLoaded
	}
	before := b.text.String()
	if before == content {
		return b.rev, delta.Delta{}, nil
	}
	diff := myers.ComputeEdits(span.URIFromPath(b.path), before, content)
	edits := make([]delta.Edit, 0, len(diff))
	for _, e := range diff {
		edits = append(edits, delta.Edit{
			Start: b.text.OffsetOfLine(e.Span.Start().Line() - 1),
			End:   b.text.OffsetOfLine(e.Span.End().Line() - 1),
			Text:  e.NewText,
		})
	}
	return b.ApplyEdits(edits, EditOther)
}
