// Package lsp talks to language servers over JSON-RPC on their stdio and
// serves completion items and semantic tokens from them.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"

	"github.com/kobzarvs/qdoc/internal/completion"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/logger"
)

var ErrNoServer = errors.New("lsp: no language server")

type Manager struct {
	langs   config.Languages
	servers map[string]*server
	mu      sync.Mutex
}

func NewManager(langs config.Languages) *Manager {
	return &Manager{
		langs:   langs,
		servers: make(map[string]*server),
	}
}

// Stop shuts every server down and reports all close failures.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs error
	for name, srv := range m.servers {
		if err := srv.stop(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
		delete(m.servers, name)
	}
	return errs
}

// OpenFile starts the file's server if needed and opens the document.
func (m *Manager) OpenFile(ctx context.Context, path, text string, version int) error {
	srv, lang, err := m.serverFor(ctx, path)
	if err != nil {
		return err
	}
	return srv.syncDocument(ctx, fileURI(path), lang.Name, text, version)
}

// Complete implements completion.Provider.
func (m *Manager) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	srv, lang, err := m.serverFor(ctx, req.Path)
	if err != nil {
		if errors.Is(err, ErrNoServer) {
			err = fmt.Errorf("%w: %w", completion.ErrNoProvider, err)
		}
		return completion.Response{}, err
	}
	uri := fileURI(req.Path)
	if err := srv.syncDocument(ctx, uri, lang.Name, req.Text, int(req.Rev)); err != nil {
		return completion.Response{}, err
	}
	var raw json.RawMessage
	params := completionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: req.Position.Line, Character: req.Position.Character},
	}
	if err := srv.conn.Call(ctx, "textDocument/completion", params, &raw); err != nil {
		return completion.Response{}, fmt.Errorf("textDocument/completion: %w", err)
	}
	return parseCompletion(raw)
}

// SemanticTokens implements highlight.TokenProvider.
func (m *Manager) SemanticTokens(ctx context.Context, req highlight.TokenRequest) ([]highlight.Token, error) {
	srv, lang, err := m.serverFor(ctx, req.Path)
	if err != nil {
		if errors.Is(err, ErrNoServer) {
			err = fmt.Errorf("%w: %w", highlight.ErrNoTokenProvider, err)
		}
		return nil, err
	}
	if len(srv.legend) == 0 {
		return nil, fmt.Errorf("%w: %s has no semantic token legend", highlight.ErrNoTokenProvider, srv.name)
	}
	uri := fileURI(req.Path)
	if err := srv.syncDocument(ctx, uri, lang.Name, req.Text, int(req.Rev)); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	params := semanticTokensParams{TextDocument: TextDocumentIdentifier{URI: uri}}
	if err := srv.conn.Call(ctx, "textDocument/semanticTokens/full", params, &raw); err != nil {
		return nil, fmt.Errorf("textDocument/semanticTokens/full: %w", err)
	}
	values := gjson.GetBytes(raw, "data").Array()
	data := make([]int, len(values))
	for i, v := range values {
		data[i] = int(v.Int())
	}
	return decodeTokens(data, srv.legend, req.Text), nil
}

// serverFor returns the ready server of path's language.
func (m *Manager) serverFor(ctx context.Context, path string) (*server, *config.Language, error) {
	lang := m.langs.Match(path)
	if lang == nil || len(lang.LanguageServers) == 0 {
		return nil, nil, ErrNoServer
	}
	name := lang.LanguageServers[0]
	cfg, ok := m.langs.LanguageServers[name]
	if !ok || cfg.Command == "" {
		return nil, nil, fmt.Errorf("%w: %s is not configured", ErrNoServer, name)
	}
	srv, err := m.getServer(name, cfg, findRoot(path, lang.Roots))
	if err != nil {
		return nil, nil, err
	}
	if err := srv.waitReady(ctx); err != nil {
		return nil, nil, err
	}
	return srv, lang, nil
}

func (m *Manager) getServer(name string, cfg config.LanguageServer, root string) (*server, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if srv, ok := m.servers[name]; ok {
		return srv, nil
	}
	if root == "" {
		root = "."
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		logger.Error("language server spawn failed", "server", name, "err", err)
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	srv := &server{
		name:  name,
		cmd:   cmd,
		ready: make(chan struct{}),
		docs:  make(map[string]int),
	}
	stream := jsonrpc2.NewBufferedStream(stdio{stdout, stdin}, jsonrpc2.VSCodeObjectCodec{})
	srv.conn = jsonrpc2.NewConn(context.Background(), stream, jsonrpc2.HandlerWithError(srv.handle))
	m.servers[name] = srv
	go srv.initialize(fileURI(root))
	return srv, nil
}

// stdio joins a child's pipes into one stream.
type stdio struct {
	io.ReadCloser
	io.WriteCloser
}

func (s stdio) Close() error {
	return multierr.Combine(s.WriteCloser.Close(), s.ReadCloser.Close())
}

type server struct {
	name  string
	cmd   *exec.Cmd
	conn  *jsonrpc2.Conn
	ready chan struct{}

	// Written before ready is closed, read-only afterwards.
	initErr error
	legend  []string

	mu   sync.Mutex
	docs map[string]int
}

func (s *server) initialize(rootURI string) {
	defer close(s.ready)
	params, err := initializeParams(rootURI)
	if err != nil {
		s.initErr = err
		return
	}
	ctx := context.Background()
	var raw json.RawMessage
	if err := s.conn.Call(ctx, "initialize", params, &raw); err != nil {
		logger.Error("language server initialize failed", "server", s.name, "err", err)
		s.initErr = fmt.Errorf("initialize %s: %w", s.name, err)
		return
	}
	for _, t := range gjson.GetBytes(raw, "capabilities.semanticTokensProvider.legend.tokenTypes").Array() {
		s.legend = append(s.legend, t.String())
	}
	if err := s.conn.Notify(ctx, "initialized", struct{}{}); err != nil {
		s.initErr = fmt.Errorf("initialized %s: %w", s.name, err)
	}
}

func (s *server) waitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handle answers server-initiated requests. Nothing is supported beyond
// acknowledging them; diagnostics are only logged.
func (s *server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	logger.Debug("language server request", "server", s.name, "method", req.Method)
	if req.Notif {
		if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
			path, n := diagnosticsSummary(*req.Params)
			logger.Debug("diagnostics", "server", s.name, "path", path, "count", n)
		}
		return nil, nil
	}
	switch req.Method {
	case "window/workDoneProgress/create", "client/registerCapability":
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
}

// syncDocument opens uri on first use and sends the full text whenever
// version moves forward.
func (s *server) syncDocument(ctx context.Context, uri, languageID, text string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, open := s.docs[uri]
	if !open {
		s.docs[uri] = version
		return s.conn.Notify(ctx, "textDocument/didOpen", didOpenParams{
			TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: version, Text: text},
		})
	}
	if version <= last {
		return nil
	}
	s.docs[uri] = version
	return s.conn.Notify(ctx, "textDocument/didChange", didChangeParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []contentChange{{Text: text}},
	})
}

func (s *server) stop() error {
	err := s.conn.Close()
	if errors.Is(err, jsonrpc2.ErrClosed) {
		err = nil
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_, _ = s.cmd.Process.Wait()
	}
	return err
}
