package buffer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/kobzarvs/qdoc/internal/delta"
	"github.com/kobzarvs/qdoc/internal/rope"
	"github.com/kobzarvs/qdoc/internal/selection"
)

var ErrNotLoaded = errors.New("buffer not loaded")

// ID identifies a buffer for its whole lifetime.
type ID uuid.UUID

func NewID() ID { return ID(uuid.New()) }

func (id ID) String() string { return uuid.UUID(id).String() }

type LoadState int

const (
	Unloaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// EditType tags an edit for undo grouping. Consecutive edits of the same
// type share one undo group; EditOther never merges.
type EditType int

const (
	EditOther EditType = iota
	EditInsertChars
	EditInsertNewline
	EditDelete
)

type group struct {
	forward  delta.Delta
	inverse  delta.Delta
	editType EditType
	rev      uint64
}

type Buffer struct {
	id       ID
	path     string
	language string
	text     rope.Rope
	rev      uint64
	state    LoadState

	undos      []group
	redos      []group
	breakGroup bool

	styles         []Span
	stylesRev      uint64
	stylesSemantic bool
}

func New(path, language string) *Buffer {
	return &Buffer{
		id:       NewID(),
		path:     path,
		language: language,
	}
}

func (b *Buffer) ID() ID               { return b.id }
func (b *Buffer) Path() string         { return b.path }
func (b *Buffer) Language() string     { return b.language }
func (b *Buffer) Rev() uint64          { return b.rev }
func (b *Buffer) State() LoadState     { return b.state }
func (b *Buffer) Len() int             { return b.text.Len() }

// Text returns the current snapshot. Ropes are immutable, so the value can
// be handed to other goroutines.
func (b *Buffer) Text() rope.Rope { return b.text }

func (b *Buffer) SetLoading() {
	if b.state == Unloaded {
		b.state = Loading
	}
}

// Load installs content, resets history and bumps the revision so results
// computed for earlier content are discarded.
func (b *Buffer) Load(content string) {
	b.text = rope.New(content)
	b.state = Loaded
	b.undos = nil
	b.redos = nil
	b.breakGroup = false
	b.styles = nil
	b.stylesSemantic = false
	b.rev++
}

// Apply replaces every region of sel with text.
func (b *Buffer) Apply(sel selection.Selection, text string, et EditType) (uint64, delta.Delta, error) {
	regions := sel.Regions()
	edits := make([]delta.Edit, 0, len(regions))
	for _, r := range regions {
		edits = append(edits, delta.Edit{Start: r.Start, End: r.End, Text: text})
	}
	return b.ApplyEdits(edits, et)
}

// ApplyEdits applies independent replacements in one revision.
func (b *Buffer) ApplyEdits(edits []delta.Edit, et EditType) (uint64, delta.Delta, error) {
	if b.state != Loaded {
		return b.rev, delta.Delta{}, ErrNotLoaded
	}
	d := delta.New(b.text, edits)
	if d.IsIdentity() {
		return b.rev, d, nil
	}
	if err := b.commit(d, et); err != nil {
		return b.rev, delta.Delta{}, err
	}
	return b.rev, d, nil
}

func (b *Buffer) commit(d delta.Delta, et EditType) error {
	text, err := d.Apply(b.text)
	if err != nil {
		return err
	}
	inv := d.Invert()
	if !b.mergeInto(d, inv, et) {
		b.undos = append(b.undos, group{forward: d, inverse: inv, editType: et})
	}
	b.redos = nil
	b.breakGroup = false
	b.text = text
	b.rev++
	b.undos[len(b.undos)-1].rev = b.rev
	b.shiftStyles(d)
	return nil
}

func (b *Buffer) mergeInto(d, inv delta.Delta, et EditType) bool {
	if b.breakGroup || et == EditOther || len(b.undos) == 0 {
		return false
	}
	top := &b.undos[len(b.undos)-1]
	if top.editType != et || top.rev != b.rev {
		return false
	}
	forward, err := delta.Compose(top.forward, d)
	if err != nil {
		return false
	}
	inverse, err := delta.Compose(inv, top.inverse)
	if err != nil {
		return false
	}
	top.forward = forward
	top.inverse = inverse
	return true
}

// BreakUndoGroup makes the next edit start a new undo group.
func (b *Buffer) BreakUndoGroup() { b.breakGroup = true }

// CanUndo and CanRedo report whether history is available.
func (b *Buffer) CanUndo() bool { return b.state == Loaded && len(b.undos) > 0 }
func (b *Buffer) CanRedo() bool { return b.state == Loaded && len(b.redos) > 0 }

// Undo reverts the newest group and returns the delta that was applied.
// It reports false when there is nothing to undo.
func (b *Buffer) Undo() (delta.Delta, bool) {
	if !b.CanUndo() {
		return delta.Delta{}, false
	}
	g := b.undos[len(b.undos)-1]
	text, err := g.inverse.Apply(b.text)
	if err != nil {
		return delta.Delta{}, false
	}
	b.undos = b.undos[:len(b.undos)-1]
	b.redos = append(b.redos, g)
	b.text = text
	b.rev++
	b.breakGroup = true
	b.shiftStyles(g.inverse)
	return g.inverse, true
}

func (b *Buffer) Redo() (delta.Delta, bool) {
	if !b.CanRedo() {
		return delta.Delta{}, false
	}
	g := b.redos[len(b.redos)-1]
	text, err := g.forward.Apply(b.text)
	if err != nil {
		return delta.Delta{}, false
	}
	b.redos = b.redos[:len(b.redos)-1]
	b.text = text
	b.rev++
	g.rev = b.rev
	b.undos = append(b.undos, g)
	b.breakGroup = true
	b.shiftStyles(g.forward)
	return g.forward, true
}

func (b *Buffer) Slice(start, end int) string { return b.text.Slice(start, end) }

func (b *Buffer) LineCount() int { return b.text.LineCount() }

func (b *Buffer) LineContent(line int) string { return b.text.LineContent(line) }

func (b *Buffer) LineOfOffset(off int) int { return b.text.LineOfOffset(off) }

func (b *Buffer) OffsetOfLine(line int) int { return b.text.OffsetOfLine(line) }

// OffsetToLineCol returns the zero-based line and byte column of off.
func (b *Buffer) OffsetToLineCol(off int) (int, int) {
	off = b.text.ClampBoundary(off)
	line := b.text.LineOfOffset(off)
	return line, off - b.text.OffsetOfLine(line)
}

// LineColToOffset is the inverse of OffsetToLineCol; the column is clamped
// to the line.
func (b *Buffer) LineColToOffset(line, col int) int {
	line = min(max(line, 0), b.text.LineCount()-1)
	start := b.text.OffsetOfLine(line)
	end := b.text.LineEndOffset(line)
	return b.text.ClampBoundary(min(start+max(col, 0), end))
}

func isCodeRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PrevCodeBoundary scans back from off over identifier characters.
func (b *Buffer) PrevCodeBoundary(off int) int {
	off = b.text.ClampBoundary(off)
	for off > 0 {
		r, size := b.text.RuneBefore(off)
		if !isCodeRune(r) {
			break
		}
		off -= size
	}
	return off
}

// NextCodeBoundary scans forward from off over identifier characters.
func (b *Buffer) NextCodeBoundary(off int) int {
	off = b.text.ClampBoundary(off)
	for off < b.text.Len() {
		r, size := b.text.RuneAt(off)
		if !isCodeRune(r) {
			break
		}
		off += size
	}
	return off
}

// Indent returns the leading whitespace of line.
func (b *Buffer) Indent(line int) string {
	content := b.text.LineContent(line)
	return content[:len(content)-len(strings.TrimLeft(content, " \t"))]
}
