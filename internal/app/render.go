package app

import (
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/editor"
	"github.com/kobzarvs/qdoc/internal/selection"
)

const maxCompletionRows = 8

type screen struct {
	s        tcell.Screen
	theme    config.Theme
	tabWidth int
}

func (sc *screen) style(fg, bg string) tcell.Style {
	st := tcell.StyleDefault
	if fg != "" {
		st = st.Foreground(tcell.GetColor(fg))
	}
	if bg != "" {
		st = st.Background(tcell.GetColor(bg))
	}
	return st
}

func (sc *screen) draw(ws *editor.Workspace, pending int, status string) {
	sc.s.Clear()
	width, height := sc.s.Size()
	textHeight := height - 1
	v := ws.Active()
	buf := ws.Buffer(v.BufferID())
	caret := v.Cursor.Caret()
	caretLine := buf.LineOfOffset(caret)
	v.Follow(caretLine, textHeight)

	base := sc.style(sc.theme.Foreground, sc.theme.Background)
	selected := sc.style(sc.theme.SelectionForeground, sc.theme.SelectionBackground)
	regions := ws.Selected(v)
	caretX, caretY := -1, -1

	for row := 0; row < textHeight; row++ {
		line := v.Top + row
		if line >= buf.LineCount() {
			break
		}
		off := buf.OffsetOfLine(line)
		x := 0
		g := uniseg.NewGraphemes(buf.LineContent(line))
		for g.Next() {
			cluster := g.Str()
			if cluster == "\n" || cluster == "\r\n" {
				break
			}
			if off == caret {
				caretX, caretY = x, row
			}
			st := base
			if span, ok := buf.StyleAt(off); ok {
				if c := sc.theme.SyntaxColor(span.Style); c != "" {
					st = st.Foreground(tcell.GetColor(c))
				}
			}
			if inRegions(regions, off) {
				st = selected
			}
			w := max(runewidth.StringWidth(cluster), 1)
			runes := []rune(cluster)
			if cluster == "\t" {
				w = sc.tabWidth - x%sc.tabWidth
				runes = []rune{' '}
			}
			if x+w > width {
				break
			}
			sc.s.SetContent(x, row, runes[0], runes[1:], st)
			for i := 1; i < w; i++ {
				sc.s.SetContent(x+i, row, ' ', nil, st)
			}
			x += w
			off += len(cluster)
		}
		if off == caret && caretY < 0 {
			caretX, caretY = x, row
		}
	}

	sc.drawCompletion(ws, caretX, caretY+1, width, textHeight)
	sc.drawStatus(ws, pending, status, width, height-1)
	if caretY >= 0 {
		sc.s.ShowCursor(caretX, caretY)
		if v.Cursor.Mode == editor.ModeInsert {
			sc.s.SetCursorStyle(tcell.CursorStyleSteadyBar)
		} else {
			sc.s.SetCursorStyle(tcell.CursorStyleSteadyBlock)
		}
	} else {
		sc.s.HideCursor()
	}
	sc.s.Show()
}

func inRegions(regions []selection.Region, off int) bool {
	for _, r := range regions {
		if r.Contains(off) {
			return true
		}
	}
	return false
}

func (sc *screen) drawCompletion(ws *editor.Workspace, x, y, width, limit int) {
	s := ws.Completion()
	items := s.Items()
	if !s.Active() || len(items) == 0 || x < 0 || y <= 0 {
		return
	}
	normal := sc.style(sc.theme.CompletionForeground, sc.theme.CompletionBackground)
	current := sc.style(sc.theme.SelectionForeground, sc.theme.SelectionBackground)
	first := max(0, s.Index()-maxCompletionRows+1)
	for i := first; i < len(items) && i < first+maxCompletionRows && y < limit; i++ {
		st := normal
		if i == s.Index() {
			st = current
		}
		label := " " + items[i].Label + " "
		if items[i].Detail != "" {
			label += items[i].Detail + " "
		}
		putString(sc.s, x, y, width, label, st)
		y++
	}
}

func (sc *screen) drawStatus(ws *editor.Workspace, pending int, status string, width, y int) {
	st := sc.style(sc.theme.StatuslineForeground, sc.theme.StatuslineBackground)
	for x := 0; x < width; x++ {
		sc.s.SetContent(x, y, ' ', nil, st)
	}
	v := ws.Active()
	buf := ws.Buffer(v.BufferID())
	line, col := buf.OffsetToLineCol(v.Cursor.Caret())
	name := "[scratch]"
	if buf.Path() != "" {
		name = filepath.Base(buf.Path())
	}
	left := fmt.Sprintf(" %s  %s  %d:%d", v.Cursor.Mode, name, line+1, col+1)
	if pending > 0 {
		left += fmt.Sprintf("  %d", pending)
	}
	if status != "" {
		left += "  " + status
	}
	putString(sc.s, 0, y, width, left, st)
	right := fmt.Sprintf("rev %d ", buf.Rev())
	putString(sc.s, width-runewidth.StringWidth(right), y, width, right, st)
}

func putString(s tcell.Screen, x, y, width int, str string, st tcell.Style) {
	for _, r := range str {
		if x >= width {
			return
		}
		if x >= 0 {
			s.SetContent(x, y, r, nil, st)
		}
		x += runewidth.RuneWidth(r)
	}
}
