// Package rope implements a persistent text store.
//
// A Rope is an immutable value: every mutating method returns a new Rope
// that shares unchanged subtrees with the original. The tree is a
// height-balanced (AVL) binary tree of string leaves; each node caches its
// byte length and newline count so slicing, editing and line lookups are
// O(log n).
package rope

import (
	"strings"
	"unicode/utf8"
)

const (
	maxLeaf = 512
	minLeaf = maxLeaf / 4
)

type node struct {
	left, right *node
	leaf        string
	height      int
	length      int
	lines       int
}

func (n *node) isLeaf() bool { return n.left == nil && n.right == nil }

func height(n *node) int {
	if n == nil {
		return -1
	}
	return n.height
}

func length(n *node) int {
	if n == nil {
		return 0
	}
	return n.length
}

func newLeaf(s string) *node {
	if s == "" {
		return nil
	}
	return &node{leaf: s, length: len(s), lines: strings.Count(s, "\n")}
}

func newInternal(l, r *node) *node {
	return &node{
		left:   l,
		right:  r,
		height: max(height(l), height(r)) + 1,
		length: l.length + r.length,
		lines:  l.lines + r.lines,
	}
}

func rotateLeft(n *node) *node {
	r := n.right
	return newInternal(newInternal(n.left, r.left), r.right)
}

func rotateRight(n *node) *node {
	l := n.left
	return newInternal(l.left, newInternal(l.right, n.right))
}

func balance(n *node) *node {
	if n.isLeaf() {
		return n
	}
	bf := height(n.left) - height(n.right)
	switch {
	case bf > 1:
		if height(n.left.left) < height(n.left.right) {
			n = newInternal(rotateLeft(n.left), n.right)
		}
		return rotateRight(n)
	case bf < -1:
		if height(n.right.right) < height(n.right.left) {
			n = newInternal(n.left, rotateRight(n.right))
		}
		return rotateLeft(n)
	}
	return n
}

// join concatenates two balanced trees into a balanced tree.
func join(l, r *node) *node {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.isLeaf() && r.isLeaf() && l.length+r.length <= maxLeaf {
		return newLeaf(l.leaf + r.leaf)
	}
	switch {
	case l.height > r.height+1:
		return balance(newInternal(l.left, join(l.right, r)))
	case r.height > l.height+1:
		return balance(newInternal(join(l, r.left), r.right))
	}
	if l.isLeaf() && l.length < minLeaf && !r.isLeaf() {
		return balance(newInternal(join(l, r.left), r.right))
	}
	if r.isLeaf() && r.length < minLeaf && !l.isLeaf() {
		return balance(newInternal(l.left, join(l.right, r)))
	}
	return newInternal(l, r)
}

func split(n *node, off int) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	if off <= 0 {
		return nil, n
	}
	if off >= n.length {
		return n, nil
	}
	if n.isLeaf() {
		return newLeaf(n.leaf[:off]), newLeaf(n.leaf[off:])
	}
	if off <= n.left.length {
		ll, lr := split(n.left, off)
		return ll, join(lr, n.right)
	}
	rl, rr := split(n.right, off-n.left.length)
	return join(n.left, rl), rr
}

func build(chunks []string) *node {
	switch len(chunks) {
	case 0:
		return nil
	case 1:
		return newLeaf(chunks[0])
	}
	mid := len(chunks) / 2
	return newInternal(build(chunks[:mid]), build(chunks[mid:]))
}

// chunk splits s into leaf-sized pieces without cutting a UTF-8 sequence.
func chunk(s string) []string {
	var out []string
	for len(s) > maxLeaf {
		cut := maxLeaf
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLeaf
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// Rope is an immutable text value. The zero value is the empty text.
type Rope struct {
	root *node
}

func New(s string) Rope {
	return Rope{root: build(chunk(s))}
}

// Len returns the length in bytes.
func (r Rope) Len() int { return length(r.root) }

// LineCount returns the number of lines; a trailing newline starts a new,
// empty last line.
func (r Rope) LineCount() int {
	if r.root == nil {
		return 1
	}
	return r.root.lines + 1
}

func (r Rope) String() string {
	var b strings.Builder
	b.Grow(r.Len())
	walk(r.root, func(s string) { b.WriteString(s) })
	return b.String()
}

func walk(n *node, fn func(string)) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		fn(n.leaf)
		return
	}
	walk(n.left, fn)
	walk(n.right, fn)
}

func (r Rope) clamp(off int) int {
	if off < 0 {
		return 0
	}
	if l := r.Len(); off > l {
		return l
	}
	return off
}

// Slice returns the text in [start, end). Bounds are clamped.
func (r Rope) Slice(start, end int) string {
	start, end = r.clamp(start), r.clamp(end)
	if start >= end {
		return ""
	}
	var b strings.Builder
	b.Grow(end - start)
	sliceInto(&b, r.root, start, end)
	return b.String()
}

func sliceInto(b *strings.Builder, n *node, start, end int) {
	if n == nil || start >= end {
		return
	}
	if n.isLeaf() {
		b.WriteString(n.leaf[start:end])
		return
	}
	ll := n.left.length
	if start < ll {
		sliceInto(b, n.left, start, min(end, ll))
	}
	if end > ll {
		sliceInto(b, n.right, max(start-ll, 0), end-ll)
	}
}

// Split returns the text before and after off.
func (r Rope) Split(off int) (Rope, Rope) {
	l, rr := split(r.root, r.clamp(off))
	return Rope{root: l}, Rope{root: rr}
}

func Concat(a, b Rope) Rope {
	return Rope{root: join(a.root, b.root)}
}

func (r Rope) Insert(off int, s string) Rope {
	if s == "" {
		return r
	}
	l, rr := split(r.root, r.clamp(off))
	return Rope{root: join(join(l, build(chunk(s))), rr)}
}

func (r Rope) Delete(start, end int) Rope {
	start, end = r.clamp(start), r.clamp(end)
	if start >= end {
		return r
	}
	l, rest := split(r.root, start)
	_, rr := split(rest, end-start)
	return Rope{root: join(l, rr)}
}

func (r Rope) Replace(start, end int, s string) Rope {
	return r.Delete(start, end).Insert(r.clamp(start), s)
}

// OffsetOfLine returns the offset of the first byte of line. Lines past the
// end map to Len.
func (r Rope) OffsetOfLine(line int) int {
	if line <= 0 || r.root == nil {
		return 0
	}
	if line > r.root.lines {
		return r.Len()
	}
	return offsetOfLine(r.root, line)
}

func offsetOfLine(n *node, line int) int {
	if line == 0 {
		return 0
	}
	if n.isLeaf() {
		idx := 0
		for i := 0; i < line; i++ {
			j := strings.IndexByte(n.leaf[idx:], '\n')
			if j < 0 {
				return n.length
			}
			idx += j + 1
		}
		return idx
	}
	if line <= n.left.lines {
		return offsetOfLine(n.left, line)
	}
	return n.left.length + offsetOfLine(n.right, line-n.left.lines)
}

// LineOfOffset returns the zero-based line containing off.
func (r Rope) LineOfOffset(off int) int {
	return linesBefore(r.root, r.clamp(off))
}

func linesBefore(n *node, off int) int {
	if n == nil || off <= 0 {
		return 0
	}
	if off >= n.length {
		return n.lines
	}
	if n.isLeaf() {
		return strings.Count(n.leaf[:off], "\n")
	}
	if off <= n.left.length {
		return linesBefore(n.left, off)
	}
	return n.left.lines + linesBefore(n.right, off-n.left.length)
}

// LineEndOffset returns the offset of the newline ending line, or Len for
// the last line.
func (r Rope) LineEndOffset(line int) int {
	if line < 0 {
		line = 0
	}
	if r.root == nil || line >= r.root.lines {
		return r.Len()
	}
	return r.OffsetOfLine(line+1) - 1
}

// LineContent returns line without its newline.
func (r Rope) LineContent(line int) string {
	return r.Slice(r.OffsetOfLine(line), r.LineEndOffset(line))
}

func (r Rope) byteAt(off int) byte {
	n := r.root
	for !n.isLeaf() {
		if off < n.left.length {
			n = n.left
		} else {
			off -= n.left.length
			n = n.right
		}
	}
	return n.leaf[off]
}

// ClampBoundary clamps off into the text and moves it back to the start of
// the codepoint it falls inside.
func (r Rope) ClampBoundary(off int) int {
	off = r.clamp(off)
	for off > 0 && off < r.Len() && !utf8.RuneStart(r.byteAt(off)) {
		off--
	}
	return off
}

// RuneAt decodes the rune starting at off. size is 0 at the end of text.
func (r Rope) RuneAt(off int) (rune, int) {
	off = r.clamp(off)
	if off >= r.Len() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(r.Slice(off, off+utf8.UTFMax))
}

// RuneBefore decodes the rune ending at off. size is 0 at the start of text.
func (r Rope) RuneBefore(off int) (rune, int) {
	off = r.clamp(off)
	if off == 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeLastRuneInString(r.Slice(off-utf8.UTFMax, off))
}
