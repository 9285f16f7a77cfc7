package highlight

import (
	"context"
	"errors"
	"fmt"

	"github.com/kobzarvs/qdoc/internal/logger"
	"github.com/kobzarvs/qdoc/internal/queue"
)

// Grammar produces highlight events for a whole document.
type Grammar interface {
	Highlight(ctx context.Context, src []byte) ([]HighlightEvent, error)
}

// GrammarFunc builds the grammar for a language, or fails with
// ErrNoGrammar when it has none.
type GrammarFunc func(language string) (Grammar, error)

// Fallback tries each function in order until one knows the language.
func Fallback(fns ...GrammarFunc) GrammarFunc {
	return func(language string) (Grammar, error) {
		for _, fn := range fns {
			g, err := fn(language)
			if err == nil {
				return g, nil
			}
			if !errors.Is(err, ErrNoGrammar) {
				return nil, err
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, language)
	}
}

type Pipeline struct {
	grammars GrammarFunc
	sink     func(Result)
	events   *queue.Queue[Event]
	maxBytes int

	// Touched only by the worker goroutine. A nil entry marks a language
	// without grammar.
	cache map[string]Grammar
}

// NewPipeline returns a pipeline delivering results to sink. sink runs on
// the worker goroutine and must hand results over to their owner.
func NewPipeline(grammars GrammarFunc, sink func(Result)) *Pipeline {
	return &Pipeline{
		grammars: grammars,
		sink:     sink,
		events:   queue.New[Event](),
		cache:    make(map[string]Grammar),
	}
}

// SetMaxBytes disables grammar highlighting for texts larger than n bytes.
// Zero means no limit. Call before Run.
func (p *Pipeline) SetMaxBytes(n int) {
	p.maxBytes = n
}

// Enqueue never blocks.
func (p *Pipeline) Enqueue(ev Event) {
	p.events.Push(ev)
}

// Run processes events until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		events, err := p.events.Wait(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, ev := range Coalesce(events) {
			if res, ok := p.process(ctx, ev); ok {
				p.sink(res)
			}
		}
	}
}

func (p *Pipeline) process(ctx context.Context, ev Event) (res Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("highlight panic", "buffer", ev.BufferID, "rev", ev.Rev, "panic", r)
			ok = false
		}
	}()

	if ev.Semantic {
		return Result{
			BufferID: ev.BufferID,
			Rev:      ev.Rev,
			Spans:    TokenSpans(ev.Tokens, ev.Text.Len()),
			Semantic: true,
		}, true
	}
	if p.maxBytes > 0 && ev.Text.Len() > p.maxBytes {
		return Result{}, false
	}
	g := p.grammar(ev.Language)
	if g == nil {
		return Result{}, false
	}
	events, err := g.Highlight(ctx, []byte(ev.Text.String()))
	if err != nil {
		logger.Warn("highlight failed", "buffer", ev.BufferID, "language", ev.Language, "err", err)
		return Result{}, false
	}
	return Result{BufferID: ev.BufferID, Rev: ev.Rev, Spans: Spans(events)}, true
}

func (p *Pipeline) grammar(language string) Grammar {
	if language == "" || p.grammars == nil {
		return nil
	}
	if g, ok := p.cache[language]; ok {
		return g
	}
	g, err := p.grammars(language)
	if err != nil {
		if !errors.Is(err, ErrNoGrammar) {
			logger.Warn("grammar init failed", "language", language, "err", err)
		}
		g = nil
	}
	p.cache[language] = g
	return g
}
