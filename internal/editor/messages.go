package editor

import (
	"context"
	"errors"
	"time"

	"github.com/kobzarvs/qdoc/internal/buffer"
	"github.com/kobzarvs/qdoc/internal/completion"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/logger"
)

const (
	completionTimeout = 5 * time.Second
	tokensTimeout     = 5 * time.Second
)

// Message is applied to the workspace by the owner goroutine.
type Message interface {
	apply(w *Workspace)
}

// HighlightResult wraps a pipeline result for Post.
func HighlightResult(res highlight.Result) Message {
	return highlightResult(res)
}

type highlightResult highlight.Result

func (m highlightResult) apply(w *Workspace) {
	doc, ok := w.docs[m.BufferID]
	if !ok {
		return
	}
	if !doc.buf.UpdateStyles(m.Rev, m.Spans, m.Semantic) {
		logger.Debug("stale highlight result dropped", "buffer", m.BufferID, "rev", m.Rev, "current", doc.buf.Rev())
	}
}

// FileChanged reports that the file behind buffer id now holds content.
// A buffer with unsaved edits is left alone.
func FileChanged(id buffer.ID, content string) Message {
	return fileChanged{bufferID: id, content: content}
}

type fileChanged struct {
	bufferID buffer.ID
	content  string
}

func (m fileChanged) apply(w *Workspace) {
	if w.Modified(m.bufferID) {
		logger.Warn("file changed on disk, keeping unsaved edits", "buffer", m.bufferID)
		return
	}
	if err := w.Reload(m.bufferID, m.content); err != nil {
		logger.Warn("reload failed", "buffer", m.bufferID, "err", err)
	}
}

type completionResult struct {
	bufferID  buffer.ID
	requestID uint64
	resp      completion.Response
	err       error
}

func (m completionResult) apply(w *Workspace) {
	s := &w.completion
	if s.BufferID != m.bufferID {
		return
	}
	if m.err != nil {
		if errors.Is(m.err, completion.ErrNoProvider) {
			logger.Debug("no completion provider", "buffer", m.bufferID, "err", m.err)
		} else {
			logger.Warn("completion request failed", "buffer", m.bufferID, "request", m.requestID, "err", m.err)
		}
		s.Fail(m.requestID)
		return
	}
	s.Done(m.requestID, m.resp.Items)
}

type tokensResult struct {
	bufferID buffer.ID
	rev      uint64
	tokens   []highlight.Token
	err      error
}

func (m tokensResult) apply(w *Workspace) {
	doc, ok := w.docs[m.bufferID]
	if !ok {
		return
	}
	if m.err != nil {
		if errors.Is(m.err, highlight.ErrNoTokenProvider) {
			logger.Debug("no semantic tokens", "buffer", m.bufferID, "err", m.err)
		} else {
			logger.Warn("semantic tokens failed", "buffer", m.bufferID, "rev", m.rev, "err", m.err)
		}
		return
	}
	if doc.buf.Rev() != m.rev || w.svc.Highlighter == nil {
		return
	}
	w.svc.Highlighter.Enqueue(highlight.Event{
		BufferID: m.bufferID,
		Text:     doc.buf.Text(),
		Rev:      m.rev,
		Language: doc.grammar,
		Tokens:   m.tokens,
		Semantic: true,
	})
}

// scheduleHighlight asks for styles of the buffer's current revision.
func (w *Workspace) scheduleHighlight(doc *document) {
	if w.svc.Highlighter != nil {
		w.svc.Highlighter.Enqueue(highlight.Event{
			BufferID: doc.buf.ID(),
			Text:     doc.buf.Text(),
			Rev:      doc.buf.Rev(),
			Language: doc.grammar,
		})
	}
	if w.opts.SemanticTokens && w.svc.Tokens != nil {
		w.requestTokens(doc)
	}
}

func (w *Workspace) requestTokens(doc *document) {
	provider := w.svc.Tokens
	req := highlight.TokenRequest{
		BufferID: doc.buf.ID(),
		Path:     doc.buf.Path(),
		Language: doc.buf.Language(),
		Rev:      doc.buf.Rev(),
		Text:     doc.buf.Text().String(),
	}
	w.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), tokensTimeout)
		defer cancel()
		tokens, err := provider.SemanticTokens(ctx, req)
		w.Post(tokensResult{bufferID: req.BufferID, rev: req.Rev, tokens: tokens, err: err})
	})
}

func (w *Workspace) requestCompletion(req completion.Request) {
	provider := w.svc.Completion
	w.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
		defer cancel()
		resp, err := provider.Complete(ctx, req)
		w.Post(completionResult{bufferID: req.BufferID, requestID: req.ID, resp: resp, err: err})
	})
}
