// Package treesitter provides parser based grammars for the highlight
// pipeline.
package treesitter

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/qdoc/internal/highlight"
)

// Grammar owns one parser and its highlight query. It is not safe for
// concurrent use; the pipeline calls it from its worker only.
type Grammar struct {
	language string
	parser   *sitter.Parser
	query    *sitter.Query
}

func languageFor(name string) (*sitter.Language, string) {
	switch name {
	case "go":
		return golang.GetLanguage(), goHighlightQuery
	case "yaml":
		return yaml.GetLanguage(), yamlHighlightQuery
	case "toml":
		return toml.GetLanguage(), tomlHighlightQuery
	case "bash", "sh":
		return bash.GetLanguage(), bashHighlightQuery
	}
	return nil, ""
}

// NewGrammar returns the grammar for language, or an error wrapping
// highlight.ErrNoGrammar when no parser is bundled for it.
func NewGrammar(language string) (highlight.Grammar, error) {
	lang, q := languageFor(language)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", highlight.ErrNoGrammar, language)
	}
	query, err := sitter.NewQuery([]byte(q), lang)
	if err != nil {
		return nil, fmt.Errorf("treesitter: %s query: %w", language, err)
	}
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Grammar{language: language, parser: p, query: query}, nil
}

type capture struct {
	start, end int
	kind       string
	pattern    uint16
}

// Highlight parses src from scratch and turns the query captures into a
// nested event stream.
func (g *Grammar) Highlight(ctx context.Context, src []byte) ([]highlight.HighlightEvent, error) {
	tree, err := g.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(g.query, tree.RootNode())

	type span struct{ start, end int }
	best := make(map[span]capture)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		if match == nil {
			continue
		}
		for _, c := range match.Captures {
			node := c.Node
			key := span{int(node.StartByte()), int(node.EndByte())}
			if key.end <= key.start {
				continue
			}
			if prev, ok := best[key]; ok && prev.pattern <= match.PatternIndex {
				continue
			}
			best[key] = capture{
				start:   key.start,
				end:     key.end,
				kind:    g.query.CaptureNameForId(c.Index),
				pattern: match.PatternIndex,
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	caps := make([]capture, 0, len(best))
	for _, c := range best {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].start != caps[j].start {
			return caps[i].start < caps[j].start
		}
		return caps[i].end > caps[j].end
	})
	return nest(caps, len(src)), nil
}

// nest emits captures as properly nested events. A capture that crosses
// the end of its enclosing one is clipped to it.
func nest(caps []capture, size int) []highlight.HighlightEvent {
	var (
		out   []highlight.HighlightEvent
		stack []int
		pos   int
	)
	closeTop := func() {
		end := stack[len(stack)-1]
		if pos < end {
			out = append(out, highlight.SourceEvent(pos, end))
			pos = end
		}
		out = append(out, highlight.EndEvent())
		stack = stack[:len(stack)-1]
	}
	for _, c := range caps {
		for len(stack) > 0 && stack[len(stack)-1] <= c.start {
			closeTop()
		}
		end := min(c.end, size)
		if len(stack) > 0 {
			end = min(end, stack[len(stack)-1])
		}
		if end <= c.start || c.start < pos {
			continue
		}
		if pos < c.start {
			out = append(out, highlight.SourceEvent(pos, c.start))
			pos = c.start
		}
		out = append(out, highlight.StartEvent(c.kind))
		stack = append(stack, end)
	}
	for len(stack) > 0 {
		closeTop()
	}
	if pos < size {
		out = append(out, highlight.SourceEvent(pos, size))
	}
	return out
}
