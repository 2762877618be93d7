package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.HistoryLimit != defaultHistoryLimit {
		t.Fatalf("HistoryLimit = %d, want %d", p.HistoryLimit, defaultHistoryLimit)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "stacks")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Nightfox\"\nhistory_limit = 25\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Nightfox" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Nightfox")
	}
	if p.HistoryLimit != 25 {
		t.Fatalf("HistoryLimit = %d, want 25", p.HistoryLimit)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"Kanagawa\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != "Kanagawa" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Kanagawa")
	}
	if p.HistoryLimit != defaultHistoryLimit {
		t.Fatalf("HistoryLimit = %d, want default %d", p.HistoryLimit, defaultHistoryLimit)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(prefsFile, Prefs{Theme: "Nightfox", HistoryLimit: 5}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded := Load(prefsFile)
	if loaded.Theme != "Nightfox" {
		t.Fatalf("Theme = %q, want %q", loaded.Theme, "Nightfox")
	}
	if loaded.HistoryLimit != 5 {
		t.Fatalf("HistoryLimit = %d, want 5", loaded.HistoryLimit)
	}
}

func TestLoad_ZeroOrEmptyValuesFallBack(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\nhistory_limit = 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.HistoryLimit != defaultHistoryLimit {
		t.Fatalf("HistoryLimit = %d, want %d", p.HistoryLimit, defaultHistoryLimit)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefaults(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}
