package motion

import (
	"testing"

	"github.com/kobzarvs/qdoc/internal/rope"
)

var normal = Options{Inclusive: true}

func doc(text string) Doc {
	return Doc{Text: rope.New(text), TabWidth: 4}
}

func move(d Doc, off int, m Motion, opts Options) int {
	got, _ := Move(d, off, Horiz{}, 1, m, opts)
	return got
}

func TestWordForward(t *testing.T) {
	d := doc("foo.bar baz")
	cases := []struct{ from, want int }{
		{0, 3},
		{3, 4},
		{4, 8},
		{8, 10},
	}
	for _, c := range cases {
		if got := move(d, c.from, Motion{Kind: WordForward}, normal); got != c.want {
			t.Fatalf("WordForward(%d) = %d, want %d", c.from, got, c.want)
		}
	}
}

func TestWordForwardStopsAtEmptyLine(t *testing.T) {
	d := doc("a\n\nb")
	if got := move(d, 0, Motion{Kind: WordForward}, normal); got != 2 {
		t.Fatalf("WordForward = %d, want 2", got)
	}
	if got := move(d, 2, Motion{Kind: WordForward}, normal); got != 3 {
		t.Fatalf("WordForward from empty line = %d, want 3", got)
	}
}

func TestWordForwardOperatorStopsAtLineEnd(t *testing.T) {
	d := doc("foo   \nbar")
	got := move(d, 0, Motion{Kind: WordForward}, Options{Inclusive: true, ExtendToLine: true})
	if got != 6 {
		t.Fatalf("WordForward = %d, want 6", got)
	}
}

func TestWordBackwardAndEnd(t *testing.T) {
	d := doc("foo.bar baz")
	if got := move(d, 8, Motion{Kind: WordBackward}, normal); got != 4 {
		t.Fatalf("WordBackward(8) = %d, want 4", got)
	}
	if got := move(d, 4, Motion{Kind: WordBackward}, normal); got != 3 {
		t.Fatalf("WordBackward(4) = %d, want 3", got)
	}
	if got := move(d, 0, Motion{Kind: WordEndForward}, normal); got != 2 {
		t.Fatalf("WordEndForward(0) = %d, want 2", got)
	}
	if got := move(d, 0, Motion{Kind: WordEndForward}, Options{Inclusive: true, ExtendToLine: true}); got != 3 {
		t.Fatalf("WordEndForward operator = %d, want 3", got)
	}
}

func TestCountRepeats(t *testing.T) {
	d := doc("a b c d")
	got, _ := Move(d, 0, Horiz{}, 3, Motion{Kind: WordForward}, normal)
	if got != 6 {
		t.Fatalf("3w = %d, want 6", got)
	}
	got, _ = Move(d, 0, Horiz{}, 2, Motion{Kind: Right}, normal)
	if got != 2 {
		t.Fatalf("2l = %d, want 2", got)
	}
}

func TestRightStopsAtLastCharInNormal(t *testing.T) {
	d := doc("ab\ncd")
	if got := move(d, 1, Motion{Kind: Right}, normal); got != 1 {
		t.Fatalf("Right in normal = %d, want 1", got)
	}
	if got := move(d, 1, Motion{Kind: Right}, Options{}); got != 2 {
		t.Fatalf("Right in insert = %d, want 2", got)
	}
	if got := move(d, 3, Motion{Kind: Left}, normal); got != 3 {
		t.Fatalf("Left at line start = %d, want 3", got)
	}
}

func TestVerticalKeepsColumn(t *testing.T) {
	d := doc("abcdef\nab\nabcdef")
	off, h := Move(d, 4, Horiz{}, 1, Motion{Kind: Down}, normal)
	if off != 8 {
		t.Fatalf("Down = %d, want 8", off)
	}
	if h.Kind != HorizCol || h.Col != 4 {
		t.Fatalf("horiz = %+v, want col 4", h)
	}
	off, _ = Move(d, off, h, 1, Motion{Kind: Down}, normal)
	if off != 14 {
		t.Fatalf("second Down = %d, want 14", off)
	}
}

func TestVerticalAfterEndOfLine(t *testing.T) {
	d := doc("ab\nabcdef")
	off, h := Move(d, 0, Horiz{}, 1, Motion{Kind: EndOfLine}, normal)
	if off != 1 || h.Kind != HorizEnd {
		t.Fatalf("EndOfLine = %d %+v", off, h)
	}
	off, _ = Move(d, off, h, 1, Motion{Kind: Down}, normal)
	if off != 8 {
		t.Fatalf("Down after $ = %d, want 8", off)
	}
}

func TestTabsAndWideColumns(t *testing.T) {
	d := doc("\tx\n世界y")
	if got := DisplayColumn(d, 1); got != 4 {
		t.Fatalf("DisplayColumn after tab = %d, want 4", got)
	}
	if got := DisplayColumn(d, 9); got != 4 {
		t.Fatalf("DisplayColumn after wide runes = %d, want 4", got)
	}
	if got := OffsetAtColumn(d, 1, 3, true); got != 6 {
		t.Fatalf("OffsetAtColumn inside wide rune = %d, want 6", got)
	}
}

func TestGraphemeSteps(t *testing.T) {
	r := rope.New("e\u0301x")
	if got := NextGrapheme(r, 0); got != 3 {
		t.Fatalf("NextGrapheme = %d, want 3", got)
	}
	if got := PrevGrapheme(r, 3); got != 0 {
		t.Fatalf("PrevGrapheme = %d, want 0", got)
	}
}

func TestLineMotions(t *testing.T) {
	d := doc("one\n  two\nthree")
	if got := move(d, 5, Motion{Kind: Line, Line: LineFirst}, normal); got != 1 {
		t.Fatalf("gg = %d, want 1", got)
	}
	if got := move(d, 0, Motion{Kind: Line, Line: LineLast}, normal); got != 10 {
		t.Fatalf("G = %d, want 10", got)
	}
	if got := move(d, 0, Motion{Kind: Line, Line: LineNumber, N: 99}, normal); got != 10 {
		t.Fatalf("99G = %d, want 10", got)
	}
	got, _ := Move(d, 0, Horiz{}, 2, Motion{Kind: Line, Line: LineNumber}, normal)
	if got != 4 {
		t.Fatalf("2G = %d, want 4", got)
	}
	if got := move(d, 4, Motion{Kind: FirstNonBlankOfLine}, normal); got != 6 {
		t.Fatalf("^ = %d, want 6", got)
	}
}

func TestMatchPairs(t *testing.T) {
	d := doc("a(b(c)d)e")
	if got := move(d, 1, Motion{Kind: MatchPairs}, normal); got != 7 {
		t.Fatalf("%% from 1 = %d, want 7", got)
	}
	if got := move(d, 7, Motion{Kind: MatchPairs}, normal); got != 1 {
		t.Fatalf("%% from 7 = %d, want 1", got)
	}
	if got := move(d, 0, Motion{Kind: MatchPairs}, normal); got != 7 {
		t.Fatalf("%% before bracket = %d, want 7", got)
	}
}

func TestMatchPairsSkipsLiterals(t *testing.T) {
	text := `f(")", x)`
	d := doc(text)
	d.Literal = func(off int) bool { return off >= 2 && off < 5 }
	if got := move(d, 1, Motion{Kind: MatchPairs}, normal); got != 8 {
		t.Fatalf("%% = %d, want 8", got)
	}
}

func TestUnmatchedBrackets(t *testing.T) {
	d := doc("{ a (b) { c } d }")
	if got := move(d, 2, Motion{Kind: NextUnmatched, Char: '}'}, normal); got != 16 {
		t.Fatalf("]} = %d, want 16", got)
	}
	if got := move(d, 14, Motion{Kind: PreviousUnmatched, Char: '{'}, normal); got != 0 {
		t.Fatalf("[{ = %d, want 0", got)
	}
	if got := move(d, 5, Motion{Kind: NextUnmatched, Char: ')'}, normal); got != 6 {
		t.Fatalf("]) = %d, want 6", got)
	}
}

func TestOffsetsClamped(t *testing.T) {
	d := doc("abc")
	if got := move(d, 99, Motion{Kind: Left}, normal); got != 2 {
		t.Fatalf("Left from past end = %d, want 2", got)
	}
	if got := move(d, -5, Motion{Kind: Right}, normal); got != 1 {
		t.Fatalf("Right from negative = %d, want 1", got)
	}
}

func TestHugeCountsTerminate(t *testing.T) {
	d := doc("foo bar baz\n(a (b) c")
	kinds := []Motion{
		{Kind: WordForward},
		{Kind: WordBackward},
		{Kind: WordEndForward},
		{Kind: NextUnmatched, Char: ')'},
		{Kind: PreviousUnmatched, Char: '('},
		{Kind: Down},
		{Kind: EndOfLine},
	}
	for _, m := range kinds {
		small, _ := Move(d, 4, Horiz{}, 50, m, normal)
		huge, _ := Move(d, 4, Horiz{}, 1<<62, m, normal)
		if huge != small {
			t.Fatalf("Move(%v, 1<<62) = %d, want %d", m.Kind, huge, small)
		}
	}
}
