package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Bot.CommandPrefix != "*" {
		t.Errorf("expected command prefix *, got %q", cfg.Bot.CommandPrefix)
	}
	if cfg.Bot.HistoryWindow != 8 {
		t.Errorf("expected history window 8, got %d", cfg.Bot.HistoryWindow)
	}
	if cfg.Bot.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", cfg.Bot.Temperature)
	}
	if !cfg.Bot.AIChatEnabled {
		t.Error("expected AI chat enabled by default")
	}
	if cfg.Provider.MaxTokens != 1000 {
		t.Errorf("expected max tokens 1000, got %d", cfg.Provider.MaxTokens)
	}
	if cfg.Gateway.Port != 8001 {
		t.Errorf("expected gateway port 8001, got %d", cfg.Gateway.Port)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MOLUBOT_CONFIG", filepath.Join(t.TempDir(), "config.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.CommandPrefix != "*" {
		t.Errorf("expected default prefix, got %q", cfg.Bot.CommandPrefix)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	t.Setenv("MOLUBOT_CONFIG", path)

	file := map[string]any{
		"bot": map[string]any{
			"admin_room":  "운영방",
			"temperature": 0.7,
		},
	}
	data, _ := json.Marshal(file)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.AdminRoom != "운영방" {
		t.Errorf("expected admin room from file, got %q", cfg.Bot.AdminRoom)
	}
	if cfg.Bot.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.Bot.Temperature)
	}
	// Untouched fields keep defaults.
	if cfg.Bot.CommandPrefix != "*" {
		t.Errorf("expected default prefix, got %q", cfg.Bot.CommandPrefix)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("MOLUBOT_CONFIG", filepath.Join(t.TempDir(), "config.json"))
	t.Setenv("MOLUBOT_BOT_COMMAND_PREFIX", "!")
	t.Setenv("MOLUBOT_PROVIDER_MODEL", "claude-3-haiku-20240307")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bot.CommandPrefix != "!" {
		t.Errorf("expected env prefix !, got %q", cfg.Bot.CommandPrefix)
	}
	if cfg.Provider.Model != "claude-3-haiku-20240307" {
		t.Errorf("expected env model, got %q", cfg.Provider.Model)
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Setenv("MOLUBOT_CONFIG", filepath.Join(t.TempDir(), "config.json"))
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.APIKey != "sk-test" {
		t.Errorf("expected fallback API key, got %q", cfg.Provider.APIKey)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	t.Setenv("MOLUBOT_CONFIG", path)

	cfg := DefaultConfig()
	cfg.Bot.AdminRoom = "프로젝트 아로나"
	cfg.Provider.Timeout = 45 * time.Second
	if err := Save(&cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Bot.AdminRoom != "프로젝트 아로나" {
		t.Errorf("expected saved admin room, got %q", loaded.Bot.AdminRoom)
	}
	if loaded.Provider.Timeout != 45*time.Second {
		t.Errorf("expected saved timeout, got %v", loaded.Provider.Timeout)
	}
}

func TestKSTOffset(t *testing.T) {
	_, offset := time.Date(2024, 3, 1, 0, 0, 0, 0, KST).Zone()
	if offset != 9*60*60 {
		t.Errorf("expected +9h offset, got %d", offset)
	}
}
