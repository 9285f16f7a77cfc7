package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Keymap struct {
	Normal map[string]string `toml:"normal"`
	Insert map[string]string `toml:"insert"`
	Visual map[string]string `toml:"visual"`
}

type EditorOptions struct {
	TabWidth          int  `toml:"tab-width"`
	AutoCompletion    bool `toml:"auto-completion"`
	SemanticTokens    bool `toml:"semantic-tokens"`
	MaxHighlightBytes int  `toml:"max-highlight-bytes"`
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	CompletionForeground string `toml:"completion-foreground"`
	CompletionBackground string `toml:"completion-background"`
	SyntaxKeyword        string `toml:"syntax-keyword"`
	SyntaxString         string `toml:"syntax-string"`
	SyntaxComment        string `toml:"syntax-comment"`
	SyntaxType           string `toml:"syntax-type"`
	SyntaxFunction       string `toml:"syntax-function"`
	SyntaxNumber         string `toml:"syntax-number"`
	SyntaxConstant       string `toml:"syntax-constant"`
	SyntaxOperator       string `toml:"syntax-operator"`
	SyntaxPunctuation    string `toml:"syntax-punctuation"`
	SyntaxField          string `toml:"syntax-field"`
	SyntaxBuiltin        string `toml:"syntax-builtin"`
	SyntaxVariable       string `toml:"syntax-variable"`
	SyntaxParameter      string `toml:"syntax-parameter"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:          4,
			AutoCompletion:    true,
			SemanticTokens:    true,
			MaxHighlightBytes: 8 << 20,
		},
		Theme: Theme{
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			SelectionForeground:  "#B3B1AD",
			SelectionBackground:  "#27425A",
			CompletionForeground: "#B3B1AD",
			CompletionBackground: "#1F2430",
			SyntaxKeyword:        "#FFA759",
			SyntaxString:         "#BAE67E",
			SyntaxComment:        "#5C6773",
			SyntaxType:           "#5CCFE6",
			SyntaxFunction:       "#FFD173",
			SyntaxNumber:         "#D4BFFF",
			SyntaxConstant:       "#FFDD8E",
			SyntaxOperator:       "#F29668",
			SyntaxPunctuation:    "#C0C0C0",
			SyntaxField:          "#E6B673",
			SyntaxBuiltin:        "#73D0FF",
			SyntaxVariable:       "#B3B1AD",
			SyntaxParameter:      "#B3B1AD",
		},
		Keymap: Keymap{
			Normal: map[string]string{
				"h":         "move_left",
				"j":         "move_down",
				"k":         "move_up",
				"l":         "move_right",
				"left":      "move_left",
				"down":      "move_down",
				"up":        "move_up",
				"right":     "move_right",
				"0":         "line_start",
				"home":      "line_start",
				"$":         "line_end",
				"end":       "line_end",
				"^":         "first_non_blank",
				"w":         "word_forward",
				"b":         "word_backward",
				"e":         "word_end",
				"g":         "file_start",
				"G":         "file_end",
				"ctrl+g":    "goto_line",
				"%":         "match_brackets",
				")":         "next_unmatched_paren",
				"(":         "prev_unmatched_paren",
				"}":         "next_unmatched_brace",
				"{":         "prev_unmatched_brace",
				"u":         "undo",
				"U":         "redo",
				"ctrl+r":    "redo",
				"a":         "append",
				"A":         "append_line_end",
				"i":         "enter_insert",
				"I":         "insert_line_start",
				"o":         "open_below",
				"O":         "open_above",
				"y":         "yank",
				"p":         "paste",
				"P":         "paste_before",
				"alt+p":     "paste_delete",
				"x":         "delete_char",
				"del":       "delete_char",
				"s":         "change",
				"v":         "toggle_select",
				"V":         "extend_line",
				"ctrl+v":    "toggle_block_select",
				"esc":       "enter_normal",
				"backspace": "move_left",
			},
			Insert: map[string]string{
				"esc":       "enter_normal",
				"left":      "move_left",
				"down":      "move_down",
				"up":        "move_up",
				"right":     "move_right",
				"home":      "line_start",
				"end":       "line_end",
				"backspace": "backspace",
				"del":       "delete_char",
				"enter":     "newline",
				"ctrl+w":    "delete_word_left",
				"ctrl+u":    "delete_line_start",
				"ctrl+n":    "completion_next",
				"ctrl+p":    "completion_prev",
				"tab":       "completion_select",
			},
			Visual: map[string]string{
				"h":      "move_left",
				"j":      "move_down",
				"k":      "move_up",
				"l":      "move_right",
				"left":   "move_left",
				"down":   "move_down",
				"up":     "move_up",
				"right":  "move_right",
				"0":      "line_start",
				"$":      "line_end",
				"^":      "first_non_blank",
				"w":      "word_forward",
				"b":      "word_backward",
				"e":      "word_end",
				"g":      "file_start",
				"G":      "file_end",
				"%":      "match_brackets",
				"y":      "yank",
				"d":      "delete_char",
				"x":      "delete_char",
				"c":      "change",
				"p":      "paste",
				"v":      "toggle_select",
				"V":      "extend_line",
				"ctrl+v": "toggle_block_select",
				"esc":    "enter_normal",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, err
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if md.IsDefined("editor", "auto-completion") {
		cfg.Editor.AutoCompletion = userCfg.Editor.AutoCompletion
	}
	if md.IsDefined("editor", "semantic-tokens") {
		cfg.Editor.SemanticTokens = userCfg.Editor.SemanticTokens
	}
	if md.IsDefined("editor", "max-highlight-bytes") {
		cfg.Editor.MaxHighlightBytes = userCfg.Editor.MaxHighlightBytes
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)

	mergeKeys(cfg.Keymap.Normal, userCfg.Keymap.Normal)
	mergeKeys(cfg.Keymap.Insert, userCfg.Keymap.Insert)
	mergeKeys(cfg.Keymap.Visual, userCfg.Keymap.Visual)
	return cfg, nil
}

func mergeKeys(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}

// mergeTheme copies every colour set in src over dst.
func mergeTheme(dst *Theme, src Theme) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	set(&dst.StatuslineForeground, src.StatuslineForeground)
	set(&dst.StatuslineBackground, src.StatuslineBackground)
	set(&dst.SelectionForeground, src.SelectionForeground)
	set(&dst.SelectionBackground, src.SelectionBackground)
	set(&dst.CompletionForeground, src.CompletionForeground)
	set(&dst.CompletionBackground, src.CompletionBackground)
	set(&dst.SyntaxKeyword, src.SyntaxKeyword)
	set(&dst.SyntaxString, src.SyntaxString)
	set(&dst.SyntaxComment, src.SyntaxComment)
	set(&dst.SyntaxType, src.SyntaxType)
	set(&dst.SyntaxFunction, src.SyntaxFunction)
	set(&dst.SyntaxNumber, src.SyntaxNumber)
	set(&dst.SyntaxConstant, src.SyntaxConstant)
	set(&dst.SyntaxOperator, src.SyntaxOperator)
	set(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	set(&dst.SyntaxField, src.SyntaxField)
	set(&dst.SyntaxBuiltin, src.SyntaxBuiltin)
	set(&dst.SyntaxVariable, src.SyntaxVariable)
	set(&dst.SyntaxParameter, src.SyntaxParameter)
}

// SyntaxColor returns the colour for a highlight kind such as "string" or
// "string.escape". Dotted kinds fall back to their first component.
func (t Theme) SyntaxColor(kind string) string {
	base, _, _ := strings.Cut(kind, ".")
	switch base {
	case "keyword":
		return t.SyntaxKeyword
	case "string":
		return t.SyntaxString
	case "comment":
		return t.SyntaxComment
	case "type":
		return t.SyntaxType
	case "function", "method":
		return t.SyntaxFunction
	case "number":
		return t.SyntaxNumber
	case "constant":
		return t.SyntaxConstant
	case "operator":
		return t.SyntaxOperator
	case "punctuation":
		return t.SyntaxPunctuation
	case "field", "property":
		return t.SyntaxField
	case "builtin":
		return t.SyntaxBuiltin
	case "variable":
		return t.SyntaxVariable
	case "parameter":
		return t.SyntaxParameter
	}
	return ""
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

// LoadTheme reads theme/<name>.toml, either flat or wrapped in [theme].
func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var wrap struct {
		Theme *Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err == nil && wrap.Theme != nil {
		return *wrap.Theme, nil
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Theme{}, err
	}
	return t, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QDOC_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qdoc"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qdoc"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
