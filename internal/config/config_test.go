package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QDOC_CONFIG_HOME", "/tmp/qdoc-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qdoc-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qdoc-config")
	}

	t.Setenv("QDOC_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qdoc" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qdoc")
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	t.Setenv("QDOC_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := Default()
	if cfg.Editor != want.Editor {
		t.Fatalf("Editor = %+v, want %+v", cfg.Editor, want.Editor)
	}
	if !cfg.Editor.AutoCompletion || !cfg.Editor.SemanticTokens {
		t.Fatalf("completion and semantic tokens should default to on")
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QDOC_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
syntax-string = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
tab-width = 8
auto-completion = false
max-highlight-bytes = 1024

[theme]
theme = "test"
selection-background = "#123456"

[keymap.normal]
q = "undo"

[keymap.visual]
q = "yank"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.TabWidth != 8 {
		t.Fatalf("TabWidth = %d, want 8", cfg.Editor.TabWidth)
	}
	if cfg.Editor.AutoCompletion {
		t.Fatalf("AutoCompletion = true, want false")
	}
	if !cfg.Editor.SemanticTokens {
		t.Fatalf("SemanticTokens = false, want default true")
	}
	if cfg.Editor.MaxHighlightBytes != 1024 {
		t.Fatalf("MaxHighlightBytes = %d, want 1024", cfg.Editor.MaxHighlightBytes)
	}
	if cfg.Theme.Foreground != "#111111" || cfg.Theme.Background != "#222222" {
		t.Fatalf("theme colours = %q/%q", cfg.Theme.Foreground, cfg.Theme.Background)
	}
	if cfg.Theme.SelectionBackground != "#123456" {
		t.Fatalf("SelectionBackground = %q, want %q", cfg.Theme.SelectionBackground, "#123456")
	}
	if got := cfg.Theme.SyntaxColor("string.escape"); got != "#333333" {
		t.Fatalf("SyntaxColor(string.escape) = %q, want %q", got, "#333333")
	}
	if cfg.Keymap.Normal["q"] != "undo" || cfg.Keymap.Visual["q"] != "yank" {
		t.Fatalf("keymap overrides not applied: %q %q", cfg.Keymap.Normal["q"], cfg.Keymap.Visual["q"])
	}
	if cfg.Keymap.Normal["h"] != "move_left" {
		t.Fatalf("keymap h = %q, want %q", cfg.Keymap.Normal["h"], "move_left")
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QDOC_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}

func TestSyntaxColorUnknownKind(t *testing.T) {
	if got := Default().Theme.SyntaxColor("nonsense"); got != "" {
		t.Fatalf("SyntaxColor(nonsense) = %q, want empty", got)
	}
}
