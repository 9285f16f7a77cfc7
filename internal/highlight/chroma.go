package highlight

import (
	"context"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

type chromaGrammar struct {
	lexer chroma.Lexer
}

// ChromaGrammar returns a regex lexer based grammar for language. It
// covers far more languages than the parsers do, at lower fidelity.
func ChromaGrammar(language string) (Grammar, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, language)
	}
	return chromaGrammar{lexer: chroma.Coalesce(lexer)}, nil
}

func (g chromaGrammar) Highlight(ctx context.Context, src []byte) ([]HighlightEvent, error) {
	// The default options rewrite CRLF to LF, which would shift every
	// offset after the first line break.
	it, err := g.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, string(src))
	if err != nil {
		return nil, err
	}
	var out []HighlightEvent
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(pos+len(tok.Value), len(src))
		if end <= pos {
			continue
		}
		if kind := chromaKind(tok.Type); kind != "" {
			out = append(out, StartEvent(kind), SourceEvent(pos, end), EndEvent())
		} else {
			out = append(out, SourceEvent(pos, end))
		}
		pos = end
	}
	return out, nil
}

func chromaKind(tt chroma.TokenType) string {
	switch {
	case tt.InCategory(chroma.Comment):
		return "comment"
	case tt.InSubCategory(chroma.LiteralString):
		return "string"
	case tt.InSubCategory(chroma.LiteralNumber):
		return "number"
	case tt == chroma.KeywordType:
		return "type"
	case tt == chroma.KeywordConstant, tt == chroma.NameConstant:
		return "constant"
	case tt.InCategory(chroma.Keyword):
		return "keyword"
	case tt == chroma.NameFunction, tt == chroma.NameFunctionMagic:
		return "function"
	case tt == chroma.NameBuiltin:
		return "builtin"
	case tt == chroma.NameClass:
		return "type"
	case tt.InCategory(chroma.Operator):
		return "operator"
	case tt == chroma.Punctuation:
		return "punctuation"
	}
	return ""
}
