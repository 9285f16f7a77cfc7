package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kobzarvs/qdoc/internal/completion"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/editor"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/keymap"
	"github.com/kobzarvs/qdoc/internal/logger"
	"github.com/kobzarvs/qdoc/internal/lsp"
	"github.com/kobzarvs/qdoc/internal/treesitter"
)

// App is the top-level runtime for qdoc.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

func (a *App) Run() error {
	runtime.LockOSThread()
	if err := logger.Init(os.Getenv("QDOC_DEBUG") != ""); err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}
	keys, err := keymap.New(cfg.Keymap)
	if err != nil {
		logger.Warn("keymap has unknown commands", "err", err)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	ls := lsp.NewManager(langs)
	defer func() {
		if err := ls.Stop(); err != nil {
			logger.Warn("language servers did not stop cleanly", "err", err)
		}
	}()

	var ws *editor.Workspace
	pipeline := highlight.NewPipeline(
		highlight.Fallback(treesitter.NewGrammar, highlight.ChromaGrammar),
		func(r highlight.Result) { ws.Post(editor.HighlightResult(r)) },
	)
	pipeline.SetMaxBytes(cfg.Editor.MaxHighlightBytes)

	svc := editor.Services{Highlighter: pipeline, Tokens: ls}
	if cfg.Editor.AutoCompletion {
		svc.Completion = ls
	}
	ws = editor.New(cfg.Editor, langs, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pipeline.Run(ctx) })

	path := ""
	if len(a.args) > 0 {
		path = a.args[0]
	}
	content, err := readFile(path)
	if err != nil {
		return err
	}
	view := ws.Open(path, content)
	if path != "" {
		id := ws.View(view).BufferID()
		g.Go(func() error {
			return watchFile(ctx, path, watchInterval, func(content string) {
				ws.Post(editor.FileChanged(id, content))
			})
		})
		g.Go(func() error {
			if err := ls.OpenFile(ctx, path, content, 0); err != nil && !errors.Is(err, lsp.ErrNoServer) {
				logger.Warn("language server did not open file", "path", path, "err", err)
			}
			return nil
		})
	}

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ui := &screen{s: s, theme: cfg.Theme, tabWidth: max(cfg.Editor.TabWidth, 1)}
	status := ""
	ui.draw(ws, keys.Pending(), status)
	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		case <-ws.Ready():
			ws.ProcessInbox()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.Sync()
			case *tcell.EventKey:
				status = ""
				switch keymap.KeyString(ev) {
				case "ctrl+q":
					cancel()
					return g.Wait()
				case "ctrl+s":
					status = save(ws)
					ui.draw(ws, keys.Pending(), status)
					continue
				case "ctrl+l":
					status = reload(ws)
					ui.draw(ws, keys.Pending(), status)
					continue
				}
				k, ok := keys.Resolve(ws.Active().Cursor.Mode, ev)
				if !ok {
					break
				}
				switch {
				case k.Text != "":
					ws.Insert(k.Text)
				case k.Command == editor.CmdCompletionSelect && ws.Completion().Status != completion.Done:
					ws.Insert("\t")
				default:
					ws.Dispatch(k.Command, k.Count)
				}
			}
		}
		ui.draw(ws, keys.Pending(), status)
	}
}

func readFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func save(ws *editor.Workspace) string {
	buf := ws.Buffer(ws.Active().BufferID())
	if buf.Path() == "" {
		return "no file name"
	}
	if err := os.WriteFile(buf.Path(), []byte(buf.Text().String()), 0o644); err != nil {
		logger.Error("save failed", "path", buf.Path(), "err", err)
		return err.Error()
	}
	buf.BreakUndoGroup()
	ws.MarkSaved(buf.ID())
	logger.Info("saved", "path", buf.Path(), "rev", buf.Rev())
	return fmt.Sprintf("written %d bytes", buf.Len())
}

// reload replaces the active buffer with the file on disk, discarding
// unsaved edits. The reload itself can be undone.
func reload(ws *editor.Workspace) string {
	buf := ws.Buffer(ws.Active().BufferID())
	if buf.Path() == "" {
		return "no file name"
	}
	content, err := readFile(buf.Path())
	if err != nil {
		logger.Error("reload failed", "path", buf.Path(), "err", err)
		return err.Error()
	}
	if err := ws.Reload(buf.ID(), content); err != nil {
		logger.Warn("reload failed", "path", buf.Path(), "err", err)
		return err.Error()
	}
	logger.Info("reloaded", "path", buf.Path(), "rev", buf.Rev())
	return fmt.Sprintf("reloaded %d bytes", buf.Len())
}
