package lsp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/kobzarvs/qdoc/internal/completion"
	"github.com/kobzarvs/qdoc/internal/highlight"
)

// Position represents a position in a text document (LSP spec)
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// TextDocumentIdentifier identifies a text document
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                 `json:"contentChanges"`
}

type completionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type semanticTokensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// tokenTypes is the legend the client announces. Servers answer with their
// own legend, which is what decoding uses.
var tokenTypes = []string{
	"namespace", "type", "class", "enum", "interface", "struct",
	"typeParameter", "parameter", "variable", "property", "enumMember",
	"function", "method", "macro", "keyword", "modifier", "comment",
	"string", "number", "regexp", "operator",
}

func initializeParams(rootURI string) (json.RawMessage, error) {
	doc := []byte(`{}`)
	set := func(path string, value any) error {
		var err error
		doc, err = sjson.SetBytes(doc, path, value)
		return err
	}
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"processId", os.Getpid()},
		{"rootUri", rootURI},
		{"clientInfo.name", "qdoc"},
		{"capabilities.textDocument.synchronization.didSave", false},
		{"capabilities.textDocument.completion.completionItem.snippetSupport", false},
		{"capabilities.textDocument.completion.contextSupport", false},
		{"capabilities.textDocument.semanticTokens.requests.full", true},
		{"capabilities.textDocument.semanticTokens.tokenTypes", tokenTypes},
		{"capabilities.textDocument.semanticTokens.tokenModifiers", []string{}},
		{"capabilities.textDocument.semanticTokens.formats", []string{"relative"}},
		{"capabilities.general.positionEncodings", []string{"utf-16"}},
	} {
		if err := set(kv.path, kv.value); err != nil {
			return nil, fmt.Errorf("initialize params %s: %w", kv.path, err)
		}
	}
	return doc, nil
}

// parseCompletion accepts both a flat item array and a CompletionList.
func parseCompletion(raw []byte) (completion.Response, error) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return completion.Response{}, completion.ErrMalformedResponse
	}
	res := gjson.ParseBytes(raw)
	var resp completion.Response
	items := res
	switch {
	case res.Type == gjson.Null:
		return resp, nil
	case res.IsArray():
	case res.IsObject():
		items = res.Get("items")
		resp.Incomplete = res.Get("isIncomplete").Bool()
		if !items.IsArray() {
			return completion.Response{}, fmt.Errorf("%w: completion list without items", completion.ErrMalformedResponse)
		}
	default:
		return completion.Response{}, fmt.Errorf("%w: unexpected %s", completion.ErrMalformedResponse, res.Type)
	}
	items.ForEach(func(_, it gjson.Result) bool {
		label := it.Get("label").String()
		if label == "" {
			return true
		}
		text := it.Get("textEdit.newText").String()
		if text == "" {
			text = it.Get("insertText").String()
		}
		resp.Items = append(resp.Items, completion.Item{
			Label:      label,
			InsertText: text,
			Detail:     it.Get("detail").String(),
			Kind:       int(it.Get("kind").Int()),
		})
		return true
	})
	return resp, nil
}

// decodeTokens turns the relative semantic token encoding into byte ranges
// of text. Characters are UTF-16 code units.
func decodeTokens(data []int, legend []string, text string) []highlight.Token {
	lines := strings.SplitAfter(text, "\n")
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l)
	}
	var out []highlight.Token
	line, char := 0, 0
	for i := 0; i+4 < len(data); i += 5 {
		dLine, dChar, length, typ := data[i], data[i+1], data[i+2], data[i+3]
		if dLine > 0 {
			line += dLine
			char = dChar
		} else {
			char += dChar
		}
		if line >= len(lines) || typ < 0 || typ >= len(legend) {
			continue
		}
		content := strings.TrimSuffix(lines[line], "\n")
		start := utf16ToByte(content, char)
		end := utf16ToByte(content, char+length)
		if end <= start {
			continue
		}
		out = append(out, highlight.Token{
			Start: starts[line] + start,
			End:   starts[line] + end,
			Kind:  legend[typ],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func utf16ToByte(s string, units int) int {
	pos := 0
	for pos < len(s) && units > 0 {
		r, size := utf8.DecodeRuneInString(s[pos:])
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		units -= n
		pos += size
	}
	return pos
}

func findRoot(path string, markers []string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	dir := filepath.Dir(abs)
	if len(markers) == 0 {
		return dir
	}
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Dir(abs)
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// diagnosticsSummary returns the file and diagnostic count of a
// publishDiagnostics notification.
func diagnosticsSummary(params []byte) (string, int) {
	res := gjson.ParseBytes(params)
	return uriToPath(res.Get("uri").String()), len(res.Get("diagnostics").Array())
}

// uriToPath converts a file:// URI to a filesystem path
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}
