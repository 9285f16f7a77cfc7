// Package keymap turns terminal key events into editor commands using the
// keymaps from config.
package keymap

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/editor"
	"github.com/kobzarvs/qdoc/internal/motion"
)

// Key is the result of one key press: a command with its count, or text to
// type in Insert mode.
type Key struct {
	Command editor.Command
	Count   int
	Text    string
}

// Resolver keeps the pending count prefix between key presses.
type Resolver struct {
	normal map[string]editor.Command
	insert map[string]editor.Command
	visual map[string]editor.Command
	count  int
}

// New compiles km. Bindings to unknown commands are skipped and reported
// together in the returned error; the resolver is usable either way.
func New(km config.Keymap) (*Resolver, error) {
	var errs error
	compile := func(mode string, src map[string]string) map[string]editor.Command {
		out := make(map[string]editor.Command, len(src))
		for key, name := range src {
			cmd, ok := editor.ParseCommand(name)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("keymap.%s %q: unknown command %q", mode, key, name))
				continue
			}
			out[key] = cmd
		}
		return out
	}
	r := &Resolver{
		normal: compile("normal", km.Normal),
		insert: compile("insert", km.Insert),
		visual: compile("visual", km.Visual),
	}
	return r, errs
}

// Pending returns the count typed so far.
func (r *Resolver) Pending() int { return r.count }

// Resolve maps ev in mode to a Key. It reports false for keys that only
// extend the count or are not bound.
func (r *Resolver) Resolve(mode editor.Mode, ev *tcell.EventKey) (Key, bool) {
	if mode != editor.ModeInsert && ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		if ch := ev.Rune(); ch >= '1' && ch <= '9' || ch == '0' && r.count > 0 {
			r.count = min(r.count*10+int(ch-'0'), motion.MaxCount)
			return Key{}, false
		}
	}
	var bindings map[string]editor.Command
	switch mode {
	case editor.ModeInsert:
		bindings = r.insert
	case editor.ModeVisual:
		bindings = r.visual
	default:
		bindings = r.normal
	}
	if cmd, ok := bindings[KeyString(ev)]; ok {
		k := Key{Command: cmd, Count: r.count}
		r.count = 0
		return k, true
	}
	r.count = 0
	if mode == editor.ModeInsert && ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0 {
		return Key{Text: string(ev.Rune())}, true
	}
	return Key{}, false
}

// KeyString names ev the way keymaps spell keys: "j", "G", "ctrl+r",
// "alt+left", "esc".
func KeyString(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	if mods&tcell.ModAlt != 0 {
		switch ev.Key() {
		case tcell.KeyUp:
			return "alt+up"
		case tcell.KeyDown:
			return "alt+down"
		case tcell.KeyLeft:
			return "alt+left"
		case tcell.KeyRight:
			return "alt+right"
		case tcell.KeyRune:
			return "alt+" + strings.ToLower(string(ev.Rune()))
		}
	}
	if mods&tcell.ModCtrl != 0 {
		switch ev.Key() {
		case tcell.KeyHome:
			return "ctrl+home"
		case tcell.KeyEnd:
			return "ctrl+end"
		}
	}
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	// Tab, Enter, Backspace and Esc share codes with ctrl keys, so they are
	// matched first.
	switch ev.Key() {
	case tcell.KeyTab:
		if mods&tcell.ModShift != 0 {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEscape:
		return "esc"
	case tcell.KeyDelete:
		return "del"
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	}
	return ctrlKeyName(ev.Key())
}

func ctrlKeyName(key tcell.Key) string {
	switch key {
	case tcell.KeyCtrlA:
		return "ctrl+a"
	case tcell.KeyCtrlB:
		return "ctrl+b"
	case tcell.KeyCtrlC:
		return "ctrl+c"
	case tcell.KeyCtrlD:
		return "ctrl+d"
	case tcell.KeyCtrlE:
		return "ctrl+e"
	case tcell.KeyCtrlF:
		return "ctrl+f"
	case tcell.KeyCtrlG:
		return "ctrl+g"
	case tcell.KeyCtrlJ:
		return "ctrl+j"
	case tcell.KeyCtrlK:
		return "ctrl+k"
	case tcell.KeyCtrlL:
		return "ctrl+l"
	case tcell.KeyCtrlN:
		return "ctrl+n"
	case tcell.KeyCtrlO:
		return "ctrl+o"
	case tcell.KeyCtrlP:
		return "ctrl+p"
	case tcell.KeyCtrlQ:
		return "ctrl+q"
	case tcell.KeyCtrlR:
		return "ctrl+r"
	case tcell.KeyCtrlS:
		return "ctrl+s"
	case tcell.KeyCtrlT:
		return "ctrl+t"
	case tcell.KeyCtrlU:
		return "ctrl+u"
	case tcell.KeyCtrlV:
		return "ctrl+v"
	case tcell.KeyCtrlW:
		return "ctrl+w"
	case tcell.KeyCtrlX:
		return "ctrl+x"
	case tcell.KeyCtrlY:
		return "ctrl+y"
	case tcell.KeyCtrlZ:
		return "ctrl+z"
	}
	return ""
}
