// Package editor owns buffers, views and their modal cursors.
//
// A Workspace is confined to one goroutine. Work that runs elsewhere
// (highlighting, completion and semantic token requests) reports back by
// posting a Message to the workspace inbox; the owner applies messages with
// ProcessInbox, which is where stale results are discarded.
package editor

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/kobzarvs/qdoc/internal/buffer"
	"github.com/kobzarvs/qdoc/internal/completion"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/motion"
	"github.com/kobzarvs/qdoc/internal/queue"
	"github.com/kobzarvs/qdoc/internal/selection"
)

var (
	ErrUnknownView   = errors.New("editor: unknown view")
	ErrUnknownBuffer = errors.New("editor: unknown buffer")
)

// Highlighter accepts highlight events. *highlight.Pipeline implements it.
type Highlighter interface {
	Enqueue(ev highlight.Event)
}

// Services are the collaborators running outside the owner goroutine. Any
// of them may be nil.
type Services struct {
	Highlighter Highlighter
	Completion  completion.Provider
	Tokens      highlight.TokenProvider
}

type document struct {
	buf     *buffer.Buffer
	lang    *config.Language
	grammar string
	// savedRev is the revision that matches the file on disk.
	savedRev uint64
}

type Workspace struct {
	opts  config.EditorOptions
	langs config.Languages
	svc   Services

	docs   map[buffer.ID]*document
	views  map[ViewID]*View
	order  []ViewID
	active ViewID

	Register   Register
	completion completion.Session

	inbox *queue.Queue[Message]
	async func(func())
}

func New(opts config.EditorOptions, langs config.Languages, svc Services) *Workspace {
	if opts.TabWidth <= 0 {
		opts.TabWidth = 4
	}
	return &Workspace{
		opts:  opts,
		langs: langs,
		svc:   svc,
		docs:  make(map[buffer.ID]*document),
		views: make(map[ViewID]*View),
		inbox: queue.New[Message](),
		async: func(f func()) { go f() },
	}
}

// Open loads content as a new buffer shown in a new active view.
func (w *Workspace) Open(path, content string) ViewID {
	lang := w.langs.Match(path)
	grammar := lang.GrammarName()
	if grammar == "" {
		grammar = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	name := ""
	if lang != nil {
		name = lang.Name
	}
	buf := buffer.New(path, name)
	buf.SetLoading()
	buf.Load(content)
	doc := &document{buf: buf, lang: lang, grammar: grammar, savedRev: buf.Rev()}
	w.docs[buf.ID()] = doc

	id := w.addView(buf.ID())
	w.active = id
	w.scheduleHighlight(doc)
	return id
}

// NewView opens another view on an existing buffer. The new view is not
// made active.
func (w *Workspace) NewView(id buffer.ID) (ViewID, error) {
	if _, ok := w.docs[id]; !ok {
		return ViewID{}, ErrUnknownBuffer
	}
	return w.addView(id), nil
}

func (w *Workspace) addView(id buffer.ID) ViewID {
	v := &View{id: NewViewID(), buffer: id, Cursor: NormalCursor(0)}
	w.views[v.id] = v
	w.order = append(w.order, v.id)
	return v.id
}

func (w *Workspace) SetActive(id ViewID) error {
	v, ok := w.views[id]
	if !ok {
		return ErrUnknownView
	}
	if w.active != id {
		w.completion.Cancel()
		if cur, ok := w.views[w.active]; ok {
			if doc, ok := w.docs[cur.buffer]; ok {
				doc.buf.BreakUndoGroup()
			}
		}
	}
	w.active = v.id
	return nil
}

func (w *Workspace) Active() *View { return w.views[w.active] }

func (w *Workspace) View(id ViewID) *View { return w.views[id] }

// Views returns the views in creation order.
func (w *Workspace) Views() []*View {
	out := make([]*View, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.views[id])
	}
	return out
}

func (w *Workspace) Buffer(id buffer.ID) *buffer.Buffer {
	if doc, ok := w.docs[id]; ok {
		return doc.buf
	}
	return nil
}

// Reload replaces the content of buffer id with content read from disk.
// The change is a single undoable edit and every view on the buffer is
// carried through it.
func (w *Workspace) Reload(id buffer.ID, content string) error {
	doc, ok := w.docs[id]
	if !ok {
		return ErrUnknownBuffer
	}
	doc.buf.BreakUndoGroup()
	_, d, err := doc.buf.SetContent(content)
	if err != nil {
		return err
	}
	doc.buf.BreakUndoGroup()
	doc.savedRev = doc.buf.Rev()
	if d.IsIdentity() {
		return nil
	}
	w.afterEdit(nil, doc, d)
	return nil
}

// MarkSaved records that buffer id now matches its file.
func (w *Workspace) MarkSaved(id buffer.ID) {
	if doc, ok := w.docs[id]; ok {
		doc.savedRev = doc.buf.Rev()
	}
}

// Modified reports whether buffer id changed since it was loaded, saved
// or reloaded.
func (w *Workspace) Modified(id buffer.ID) bool {
	doc, ok := w.docs[id]
	return ok && doc.buf.Rev() != doc.savedRev
}

// Selected returns the regions drawn as selected in v: the Visual
// selection, or the non-empty Insert regions.
func (w *Workspace) Selected(v *View) []selection.Region {
	doc, ok := w.docs[v.buffer]
	if !ok {
		return nil
	}
	switch v.Cursor.Mode {
	case ModeVisual:
		return v.Cursor.visualRegions(w.motionDoc(doc))
	case ModeInsert:
		var out []selection.Region
		for _, r := range v.Cursor.Selection.Regions() {
			if !r.IsCaret() {
				out = append(out, r)
			}
		}
		return out
	}
	return nil
}

// Completion exposes the completion session for display.
func (w *Workspace) Completion() *completion.Session { return &w.completion }

func (w *Workspace) current() (*View, *document) {
	v, ok := w.views[w.active]
	if !ok {
		return nil, nil
	}
	doc, ok := w.docs[v.buffer]
	if !ok {
		return nil, nil
	}
	return v, doc
}

func (w *Workspace) motionDoc(doc *document) motion.Doc {
	return motion.Doc{
		Text:     doc.buf.Text(),
		TabWidth: w.opts.TabWidth,
		Literal:  doc.buf.IsLiteral,
	}
}

// Post queues m for the owner goroutine. It is safe to call from anywhere.
func (w *Workspace) Post(m Message) {
	w.inbox.Push(m)
}

// Ready is signalled when messages are waiting.
func (w *Workspace) Ready() <-chan struct{} {
	return w.inbox.Ready()
}

// ProcessInbox applies every pending message and returns how many there
// were.
func (w *Workspace) ProcessInbox() int {
	msgs := w.inbox.Drain()
	for _, m := range msgs {
		m.apply(w)
	}
	return len(msgs)
}
