package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFile_ReturnsDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path == "" {
		t.Fatalf("expected config path")
	}
	if got := cfg.Host(); got != DefaultHost {
		t.Fatalf("cfg.Host() = %q, want %q", got, DefaultHost)
	}
	if got := cfg.Port(); got != DefaultPort {
		t.Fatalf("cfg.Port() = %d, want %d", got, DefaultPort)
	}
	if got := cfg.DBDriver(); got != DefaultDBDriver {
		t.Fatalf("cfg.DBDriver() = %q, want %q", got, DefaultDBDriver)
	}
	if got := cfg.SheetsSheetName(); got != DefaultSheetName {
		t.Fatalf("cfg.SheetsSheetName() = %q, want %q", got, DefaultSheetName)
	}
}

func TestEnsureDefaultConfig_CreatesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := EnsureDefaultConfig()
	if err != nil {
		t.Fatalf("EnsureDefaultConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist at %s: %v", path, err)
	}

	cfg, gotPath, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if filepath.Clean(gotPath) != filepath.Clean(path) {
		t.Fatalf("Load() path = %s, want %s", gotPath, path)
	}
	if got := cfg.Host(); got != DefaultHost {
		t.Fatalf("cfg.Host() = %q, want %q", got, DefaultHost)
	}
}

func TestLoad_ParsesAllSections(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".ouvidoria")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	content := "" +
		"server:\n" +
		"  host: 0.0.0.0\n" +
		"  port: 9090\n" +
		"database:\n" +
		"  driver: postgres\n" +
		"  dsn: host=localhost dbname=ouvidoria\n" +
		"zapi:\n" +
		"  instance_id: inst-1\n" +
		"  token: tok-1\n" +
		"  client_token: ct-1\n" +
		"sheets:\n" +
		"  spreadsheet_id: sheet-1\n" +
		"  sheet_name: Registros\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Host(); got != "0.0.0.0" {
		t.Fatalf("cfg.Host() = %q, want %q", got, "0.0.0.0")
	}
	if got := cfg.Port(); got != 9090 {
		t.Fatalf("cfg.Port() = %d, want %d", got, 9090)
	}
	if got := cfg.DBDriver(); got != "postgres" {
		t.Fatalf("cfg.DBDriver() = %q, want %q", got, "postgres")
	}
	if got := cfg.ZApiInstanceID(); got != "inst-1" {
		t.Fatalf("cfg.ZApiInstanceID() = %q, want %q", got, "inst-1")
	}
	if got := cfg.SheetsSpreadsheetID(); got != "sheet-1" {
		t.Fatalf("cfg.SheetsSpreadsheetID() = %q, want %q", got, "sheet-1")
	}
	if got := cfg.SheetsSheetName(); got != "Registros" {
		t.Fatalf("cfg.SheetsSheetName() = %q, want %q", got, "Registros")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".ouvidoria")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("zapi:\n  token: file-token\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OUVIDORIA_ZAPI_TOKEN", "env-token")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.ZApiToken(); got != "env-token" {
		t.Fatalf("cfg.ZApiToken() = %q, want %q", got, "env-token")
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".ouvidoria")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 700000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}
