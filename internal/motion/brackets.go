package motion

var closingOf = map[rune]rune{'(': ')', '[': ']', '{': '}'}
var openingOf = map[rune]rune{')': '(', ']': '[', '}': '{'}

func (d Doc) literal(off int) bool {
	return d.Literal != nil && d.Literal(off)
}

// matchPairs jumps from the bracket at or after off on the same line to its
// partner. Brackets inside strings and comments are skipped unless the
// starting bracket is itself inside one.
func matchPairs(doc Doc, off int) int {
	t := doc.Text
	end := t.LineEndOffset(t.LineOfOffset(off))
	pos := off
	var r rune
	for pos < end {
		var size int
		r, size = t.RuneAt(pos)
		if closingOf[r] != 0 || openingOf[r] != 0 {
			break
		}
		pos += size
	}
	if pos >= end {
		return off
	}
	skip := !doc.literal(pos)
	depth := 0
	if closing, ok := closingOf[r]; ok {
		for i := pos + 1; i < t.Len(); {
			c, size := t.RuneAt(i)
			if !(skip && doc.literal(i)) {
				switch c {
				case r:
					depth++
				case closing:
					if depth == 0 {
						return i
					}
					depth--
				}
			}
			i += size
		}
		return off
	}
	opening := openingOf[r]
	for i := pos; i > 0; {
		c, size := t.RuneBefore(i)
		i -= size
		if skip && doc.literal(i) {
			continue
		}
		switch c {
		case r:
			depth++
		case opening:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return off
}

// nextUnmatched finds the next closing bracket of c's kind that has no
// opener after off.
func nextUnmatched(doc Doc, off int, c rune) int {
	closing := c
	if cl, ok := closingOf[c]; ok {
		closing = cl
	}
	opening, ok := openingOf[closing]
	if !ok {
		return off
	}
	t := doc.Text
	_, size := t.RuneAt(off)
	depth := 0
	for i := off + max(size, 1); i < t.Len(); {
		r, size := t.RuneAt(i)
		if !doc.literal(i) {
			switch r {
			case opening:
				depth++
			case closing:
				if depth == 0 {
					return i
				}
				depth--
			}
		}
		i += size
	}
	return off
}

// previousUnmatched finds the previous opening bracket of c's kind that
// has no closer before off.
func previousUnmatched(doc Doc, off int, c rune) int {
	opening := c
	if op, ok := openingOf[c]; ok {
		opening = op
	}
	closing, ok := closingOf[opening]
	if !ok {
		return off
	}
	t := doc.Text
	depth := 0
	for i := off; i > 0; {
		r, size := t.RuneBefore(i)
		i -= size
		if doc.literal(i) {
			continue
		}
		switch r {
		case closing:
			depth++
		case opening:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return off
}
