package motion

import (
	"unicode"

	"github.com/kobzarvs/qdoc/internal/rope"
)

type wordClass int

const (
	classSpace wordClass = iota
	classEOL
	classPunct
	classWord
)

func classOf(r rune) wordClass {
	switch {
	case r == '\n':
		return classEOL
	case unicode.IsSpace(r):
		return classSpace
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	}
	return classPunct
}

// emptyLineAt reports whether off is the newline of an empty line.
func emptyLineAt(t rope.Rope, off int) bool {
	if r, _ := t.RuneAt(off); r != '\n' {
		return false
	}
	prev, size := t.RuneBefore(off)
	return size == 0 || prev == '\n'
}

// wordForward moves to the start of the next word. Empty lines count as
// words. With stopAtEOL the scan ends at the first newline.
func wordForward(t rope.Rope, off int, stopAtEOL bool) int {
	n := t.Len()
	if off >= n {
		return n
	}
	r, size := t.RuneAt(off)
	c := classOf(r)
	i := off
	switch c {
	case classWord, classPunct:
		for i < n {
			r, size = t.RuneAt(i)
			if classOf(r) != c {
				break
			}
			i += size
		}
	case classEOL:
		if stopAtEOL {
			return i
		}
		i += size
	}
	for i < n {
		r, size = t.RuneAt(i)
		switch classOf(r) {
		case classSpace:
			i += size
		case classEOL:
			if stopAtEOL || (i > off && emptyLineAt(t, i)) {
				return i
			}
			i += size
		default:
			return i
		}
	}
	return n
}

// wordBackward moves to the start of the previous word.
func wordBackward(t rope.Rope, off int) int {
	i := off
	for i > 0 {
		r, size := t.RuneBefore(i)
		c := classOf(r)
		if c != classSpace && c != classEOL {
			break
		}
		i -= size
		if c == classEOL && i < off-1 && emptyLineAt(t, i) {
			return i
		}
	}
	if i == 0 {
		return 0
	}
	r, _ := t.RuneBefore(i)
	c := classOf(r)
	for i > 0 {
		r, size := t.RuneBefore(i)
		if classOf(r) != c {
			break
		}
		i -= size
	}
	return i
}

// wordEndForward moves to the last character of the current or next word.
// With exclusive set the offset after that character is returned.
func wordEndForward(t rope.Rope, off int, exclusive bool) int {
	n := t.Len()
	if off >= n {
		return n
	}
	_, size := t.RuneAt(off)
	i := off + size
	for i < n {
		r, size := t.RuneAt(i)
		if c := classOf(r); c != classSpace && c != classEOL {
			break
		}
		i += size
	}
	if i >= n {
		return n
	}
	r, size := t.RuneAt(i)
	c := classOf(r)
	for i+size < n {
		next, nsize := t.RuneAt(i + size)
		if classOf(next) != c {
			break
		}
		i += size
		size = nsize
	}
	if exclusive {
		return i + size
	}
	return i
}
