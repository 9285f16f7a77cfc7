// Package highlight turns buffer snapshots into style spans on a single
// worker goroutine.
//
// The editor enqueues an Event after every edit. The worker drains the
// queue, keeps only the newest event per buffer, and reports a Result for
// it. Freshness is checked by the receiver, never here.
package highlight

import (
	"context"
	"errors"

	"github.com/kobzarvs/qdoc/internal/buffer"
	"github.com/kobzarvs/qdoc/internal/rope"
)

var (
	ErrNoGrammar       = errors.New("highlight: no grammar for language")
	ErrNoTokenProvider = errors.New("highlight: no semantic token provider")
)

// Token is a semantic token in byte offsets of the text it was computed for.
type Token struct {
	Start int
	End   int
	Kind  string
}

// Event asks the worker for styles of Text at Rev. When Semantic is set
// Tokens are converted directly and no grammar runs.
type Event struct {
	BufferID buffer.ID
	Text     rope.Rope
	Rev      uint64
	Language string
	Tokens   []Token
	Semantic bool
}

type Result struct {
	BufferID buffer.ID
	Rev      uint64
	Spans    []buffer.Span
	Semantic bool
}

// TokenRequest asks a provider for the semantic tokens of one revision.
type TokenRequest struct {
	BufferID buffer.ID
	Path     string
	Language string
	Rev      uint64
	Text     string
}

type TokenProvider interface {
	SemanticTokens(ctx context.Context, req TokenRequest) ([]Token, error)
}

// Coalesce keeps one event per buffer: the one with the highest revision,
// preferring a semantic event on a tie. Buffers keep the order in which they
// first appear.
func Coalesce(events []Event) []Event {
	index := make(map[buffer.ID]int, len(events))
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		i, ok := index[ev.BufferID]
		if !ok {
			index[ev.BufferID] = len(out)
			out = append(out, ev)
			continue
		}
		cur := out[i]
		if ev.Rev > cur.Rev || (ev.Rev == cur.Rev && ev.Semantic && !cur.Semantic) {
			out[i] = ev
		}
	}
	return out
}
