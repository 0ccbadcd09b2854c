package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is read from a YAML file under the user's home directory.
// All fields are optional; defaults are applied by the getter helpers.
//
// Example (~/.ouvidoria/config.yaml):
//
// server:
//   host: 127.0.0.1
//   port: 8088
// database:
//   driver: sqlite
//   dsn: ouvidoria.db
// zapi:
//   base_url: https://api.z-api.io
//   instance_id: YOUR_INSTANCE
//   token: YOUR_TOKEN
//   client_token: YOUR_CLIENT_TOKEN
// sheets:
//   credentials_file: /etc/ouvidoria/google-credentials.json
//   spreadsheet_id: YOUR_SPREADSHEET
//   sheet_name: Manifestacoes
//
// Notes:
// - If the config file does not exist, Load returns defaults without error.
// - If the config file exists but cannot be parsed, Load returns an error.
// - Z-API credentials may also come from OUVIDORIA_ZAPI_* environment
//   variables, which win over the file.

type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	ZApi     ZApiConfig     `yaml:"zapi"`
	Sheets   SheetsConfig   `yaml:"sheets"`
}

type ServerConfig struct {
	Host *string `yaml:"host"`
	Port *int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver *string `yaml:"driver"`
	DSN    *string `yaml:"dsn"`
}

type ZApiConfig struct {
	BaseURL     *string `yaml:"base_url"`
	InstanceID  *string `yaml:"instance_id"`
	Token       *string `yaml:"token"`
	ClientToken *string `yaml:"client_token"`
}

type SheetsConfig struct {
	CredentialsFile *string `yaml:"credentials_file"`
	SpreadsheetID   *string `yaml:"spreadsheet_id"`
	SheetName       *string `yaml:"sheet_name"`
}

const (
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8088
	DefaultDBDriver  = "sqlite"
	DefaultDBDSN     = "ouvidoria.db"
	DefaultZApiURL   = "https://api.z-api.io"
	DefaultSheetName = "Manifestacoes"
)

// DefaultPaths returns the config dir and config file path.
func DefaultPaths() (configDir string, configFile string, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("get user home dir: %w", err)
	}
	configDir = filepath.Join(home, ".ouvidoria")
	configFile = filepath.Join(configDir, "config.yaml")
	return configDir, configFile, nil
}

// Load reads ~/.ouvidoria/config.yaml.
// If the file doesn't exist, it returns a default config and nil error.
func Load() (*AppConfig, string, error) {
	_, configFile, err := DefaultPaths()
	if err != nil {
		return nil, "", err
	}

	cfg := &AppConfig{}
	// Defaults are applied via the getter helpers.

	b, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, configFile, nil
		}
		return nil, "", fmt.Errorf("read config file %s: %w", configFile, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, "", fmt.Errorf("parse yaml config %s: %w", configFile, err)
	}

	// Validate
	if strings.TrimSpace(cfg.Host()) == "" {
		return nil, "", fmt.Errorf("invalid server.host (empty) in %s", configFile)
	}
	port := cfg.Port()
	if port < 1 || port > 65535 {
		return nil, "", fmt.Errorf("invalid server.port %d in %s", port, configFile)
	}

	return cfg, configFile, nil
}

// EnsureDefaultConfig writes a default config file if it doesn't already exist.
// It is safe to call on startup.
func EnsureDefaultConfig() (string, error) {
	configDir, configFile, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configFile); err == nil {
		return configFile, nil
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir %s: %w", configDir, err)
	}

	defaultCfg := AppConfig{
		Server:   ServerConfig{Host: ptr(DefaultHost), Port: ptr(DefaultPort)},
		Database: DatabaseConfig{Driver: ptr(DefaultDBDriver), DSN: ptr(DefaultDBDSN)},
	}
	b, err := yaml.Marshal(&defaultCfg)
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(configFile, b, 0o600); err != nil {
		return "", fmt.Errorf("write default config %s: %w", configFile, err)
	}
	return configFile, nil
}

// ========== Getter helpers with defaults ==========

func (c *AppConfig) Host() string {
	if c.Server.Host != nil && strings.TrimSpace(*c.Server.Host) != "" {
		return *c.Server.Host
	}
	return DefaultHost
}

func (c *AppConfig) Port() int {
	if v := strings.TrimSpace(os.Getenv("OUVIDORIA_PORT")); v != "" {
		var p int
		if _, err := fmt.Sscanf(v, "%d", &p); err == nil && p > 0 && p <= 65535 {
			return p
		}
	}
	if c.Server.Port != nil {
		return *c.Server.Port
	}
	return DefaultPort
}

func (c *AppConfig) DBDriver() string {
	if c.Database.Driver != nil && strings.TrimSpace(*c.Database.Driver) != "" {
		return *c.Database.Driver
	}
	return DefaultDBDriver
}

func (c *AppConfig) DBDSN() string {
	if c.Database.DSN != nil && strings.TrimSpace(*c.Database.DSN) != "" {
		return *c.Database.DSN
	}
	return DefaultDBDSN
}

func (c *AppConfig) ZApiBaseURL() string {
	return firstNonEmpty(os.Getenv("OUVIDORIA_ZAPI_BASE_URL"), deref(c.ZApi.BaseURL), DefaultZApiURL)
}

func (c *AppConfig) ZApiInstanceID() string {
	return firstNonEmpty(os.Getenv("OUVIDORIA_ZAPI_INSTANCE_ID"), deref(c.ZApi.InstanceID))
}

func (c *AppConfig) ZApiToken() string {
	return firstNonEmpty(os.Getenv("OUVIDORIA_ZAPI_TOKEN"), deref(c.ZApi.Token))
}

func (c *AppConfig) ZApiClientToken() string {
	return firstNonEmpty(os.Getenv("OUVIDORIA_ZAPI_CLIENT_TOKEN"), deref(c.ZApi.ClientToken))
}

func (c *AppConfig) SheetsCredentialsFile() string {
	return firstNonEmpty(os.Getenv("OUVIDORIA_SHEETS_CREDENTIALS_FILE"), deref(c.Sheets.CredentialsFile))
}

func (c *AppConfig) SheetsSpreadsheetID() string {
	return firstNonEmpty(os.Getenv("OUVIDORIA_SHEETS_SPREADSHEET_ID"), deref(c.Sheets.SpreadsheetID))
}

func (c *AppConfig) SheetsSheetName() string {
	return firstNonEmpty(deref(c.Sheets.SheetName), DefaultSheetName)
}

func ptr[T any](v T) *T { return &v }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
