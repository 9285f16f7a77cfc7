// Package delta describes the change between two revisions of a text.
//
// A Delta is a sequence of Retain, Insert and Delete operations walked
// left to right over the old text. Delete operations carry the removed text
// so every delta can be inverted without access to the old revision.
package delta

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kobzarvs/qdoc/internal/rope"
)

var ErrLengthMismatch = errors.New("delta: base length mismatch")

type OpKind uint8

const (
	Retain OpKind = iota
	Insert
	Delete
)

func (k OpKind) String() string {
	switch k {
	case Retain:
		return "retain"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("OpKind(%d)", k)
}

// Op is a single operation. N is the number of bytes the op spans; for
// Insert and Delete it equals len(Text).
type Op struct {
	Kind OpKind
	N    int
	Text string
}

type Delta struct {
	BaseLen int
	Ops     []Op
}

// Edit replaces the old text in [Start, End) with Text.
type Edit struct {
	Start, End int
	Text       string
}

// New builds the delta that applies edits to r. Edits are sorted by start;
// overlapping edits are clipped to the end of the previous one.
func New(r rope.Rope, edits []Edit) Delta {
	sorted := append([]Edit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	b := NewBuilder(r.Len())
	for _, e := range sorted {
		start := min(max(e.Start, b.pos), r.Len())
		end := min(max(e.End, start), r.Len())
		b.Replace(start, end, r.Slice(start, end), e.Text)
	}
	return b.Build()
}

// Builder accumulates edits in increasing offset order.
type Builder struct {
	base int
	pos  int
	ops  []Op
}

func NewBuilder(baseLen int) *Builder {
	return &Builder{base: baseLen}
}

// Replace records that [start, end) of the old text, whose content is
// deleted, becomes text. start must not precede the previous edit's end.
func (b *Builder) Replace(start, end int, deleted, text string) {
	if start > b.pos {
		b.ops = push(b.ops, Op{Kind: Retain, N: start - b.pos})
	}
	if end > start {
		b.ops = push(b.ops, Op{Kind: Delete, N: end - start, Text: deleted})
	}
	if text != "" {
		b.ops = push(b.ops, Op{Kind: Insert, N: len(text), Text: text})
	}
	b.pos = max(b.pos, end)
}

func (b *Builder) Build() Delta {
	ops := b.ops
	if b.pos < b.base {
		ops = push(ops, Op{Kind: Retain, N: b.base - b.pos})
	}
	return Delta{BaseLen: b.base, Ops: ops}
}

func push(ops []Op, op Op) []Op {
	if op.N == 0 {
		return ops
	}
	if n := len(ops); n > 0 && ops[n-1].Kind == op.Kind {
		last := &ops[n-1]
		last.N += op.N
		last.Text += op.Text
		return ops
	}
	return append(ops, op)
}

// NewLen returns the length of the text the delta produces.
func (d Delta) NewLen() int {
	n := d.BaseLen
	for _, op := range d.Ops {
		switch op.Kind {
		case Insert:
			n += op.N
		case Delete:
			n -= op.N
		}
	}
	return n
}

// IsIdentity reports whether applying d leaves the text unchanged.
func (d Delta) IsIdentity() bool {
	for _, op := range d.Ops {
		if op.Kind != Retain {
			return false
		}
	}
	return true
}

func (d Delta) Apply(r rope.Rope) (rope.Rope, error) {
	if r.Len() != d.BaseLen {
		return r, fmt.Errorf("%w: text %d, delta %d", ErrLengthMismatch, r.Len(), d.BaseLen)
	}
	pos := 0
	for _, op := range d.Ops {
		switch op.Kind {
		case Retain:
			pos += op.N
		case Insert:
			r = r.Insert(pos, op.Text)
			pos += op.N
		case Delete:
			r = r.Delete(pos, pos+op.N)
		}
	}
	return r, nil
}

// Invert returns the delta that undoes d.
func (d Delta) Invert() Delta {
	ops := make([]Op, 0, len(d.Ops))
	for _, op := range d.Ops {
		switch op.Kind {
		case Insert:
			op.Kind = Delete
		case Delete:
			op.Kind = Insert
		}
		ops = append(ops, op)
	}
	return Delta{BaseLen: d.NewLen(), Ops: ops}
}

// TransformOffset maps an offset in the old text to the new text. When an
// insertion happens exactly at off, after selects whether the offset ends
// up behind the inserted text. Offsets inside a deleted range collapse to
// the deletion point.
func (d Delta) TransformOffset(off int, after bool) int {
	if off < 0 {
		off = 0
	}
	oldPos, newPos := 0, 0
	for _, op := range d.Ops {
		switch op.Kind {
		case Retain:
			if off < oldPos+op.N {
				return newPos + off - oldPos
			}
			oldPos += op.N
			newPos += op.N
		case Insert:
			if off == oldPos && !after {
				return newPos
			}
			newPos += op.N
		case Delete:
			if off < oldPos+op.N {
				return newPos
			}
			oldPos += op.N
		}
	}
	return min(newPos+off-oldPos, newPos)
}

// Compose returns a single delta equivalent to applying a then b.
func Compose(a, b Delta) (Delta, error) {
	if a.NewLen() != b.BaseLen {
		return Delta{}, fmt.Errorf("%w: compose %d onto %d", ErrLengthMismatch, b.BaseLen, a.NewLen())
	}
	ia, ib := &iter{ops: a.Ops}, &iter{ops: b.Ops}
	var out []Op
	for ia.more() || ib.more() {
		if ib.more() && ib.kind() == Insert {
			out = push(out, ib.take(ib.left()))
			continue
		}
		if ia.more() && ia.kind() == Delete {
			out = push(out, ia.take(ia.left()))
			continue
		}
		if !ia.more() || !ib.more() {
			break
		}
		n := min(ia.left(), ib.left())
		aop, bop := ia.take(n), ib.take(n)
		switch {
		case aop.Kind == Retain && bop.Kind == Retain:
			out = push(out, Op{Kind: Retain, N: n})
		case aop.Kind == Retain && bop.Kind == Delete:
			out = push(out, bop)
		case aop.Kind == Insert && bop.Kind == Retain:
			out = push(out, aop)
		}
	}
	return Delta{BaseLen: a.BaseLen, Ops: out}, nil
}

type iter struct {
	ops []Op
	i   int
	off int
}

func (it *iter) more() bool   { return it.i < len(it.ops) }
func (it *iter) kind() OpKind { return it.ops[it.i].Kind }
func (it *iter) left() int    { return it.ops[it.i].N - it.off }

func (it *iter) take(n int) Op {
	op := it.ops[it.i]
	out := Op{Kind: op.Kind, N: n}
	if op.Kind != Retain {
		out.Text = op.Text[it.off : it.off+n]
	}
	it.off += n
	if it.off >= op.N {
		it.i++
		it.off = 0
	}
	return out
}
