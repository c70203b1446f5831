package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfigAppliesDefaultsForUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-conf.toml")
	body := `
map_name = "prontera"
server_port = 9001
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.MapName != "prontera" {
		t.Fatalf("expected map_name prontera, got %q", cfg.MapName)
	}
	if cfg.ServerPort != 9001 {
		t.Fatalf("expected server_port 9001, got %d", cfg.ServerPort)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("expected default tick_rate 30, got %d", cfg.TickRate)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log_level info, got %q", cfg.LogLevel)
	}
}

func TestLoadServerConfigMissingFileReturnsError(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
