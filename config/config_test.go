package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Name != "modelweb-mcp-go" {
		t.Errorf("Expected name 'modelweb-mcp-go', got '%s'", cfg.Name)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected host 'localhost', got '%s'", cfg.Server.Host)
	}

	if cfg.Server.Port != 9080 {
		t.Errorf("Expected port 9080, got %d", cfg.Server.Port)
	}

	if cfg.Transport.Mode != ModeSocket {
		t.Errorf("Expected transport mode 'socket', got '%s'", cfg.Transport.Mode)
	}

	if cfg.Hosted.MaxHistory != 10 {
		t.Errorf("Expected hosted max history 10, got %d", cfg.Hosted.MaxHistory)
	}

	if cfg.Hosted.APIKeyEnv != DefaultAPIKeyEnv {
		t.Errorf("Expected api key env %q, got %q", DefaultAPIKeyEnv, cfg.Hosted.APIKeyEnv)
	}

	if cfg.History.MaxSize != 50 {
		t.Errorf("Expected history max size 50, got %d", cfg.History.MaxSize)
	}

	if cfg.History.Debounce() != 300*time.Millisecond {
		t.Errorf("Expected debounce 300ms, got %v", cfg.History.Debounce())
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.json")

	testConfig := `{
		"name": "test-server",
		"version": "1.0.0",
		"server": {
			"host": "127.0.0.1",
			"port": 8080,
			"debug": true
		},
		"transport": {
			"mode": "hosted"
		},
		"hosted": {
			"url": "http://localhost:8081/v1/chat/completions",
			"model": "test-model",
			"api_key_env": "TEST_HOSTED_KEY"
		},
		"history": {
			"max_size": 20,
			"debounce_millis": 100
		},
		"logging": {
			"level": "debug",
			"format": "text",
			"path": "/tmp/test.log"
		}
	}`

	if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Name != "test-server" {
		t.Errorf("Expected name 'test-server', got '%s'", cfg.Name)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}

	if !cfg.Server.Debug {
		t.Errorf("Expected debug to be true")
	}

	if cfg.Transport.Mode != ModeHosted {
		t.Errorf("Expected transport mode 'hosted', got '%s'", cfg.Transport.Mode)
	}

	if cfg.Hosted.Model != "test-model" {
		t.Errorf("Expected hosted model 'test-model', got '%s'", cfg.Hosted.Model)
	}

	// Unset fields keep their defaults.
	if cfg.Hosted.MaxHistory != 10 {
		t.Errorf("Expected hosted max history 10, got %d", cfg.Hosted.MaxHistory)
	}

	if cfg.History.MaxSize != 20 {
		t.Errorf("Expected history max size 20, got %d", cfg.History.MaxSize)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected log format 'text', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "modelweb.yaml")
	testConfig := `
server:
  host: 0.0.0.0
  port: 7000
transport:
  mode: socket
  socket_url: ws://localhost:7001/socket
history:
  max_size: 5
logging:
  level: WARNING
  format: json
  path: /tmp/modelweb.log
`
	if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Expected port 7000, got %d", cfg.Server.Port)
	}
	if cfg.Transport.SocketURL != "ws://localhost:7001/socket" {
		t.Errorf("Unexpected socket url %q", cfg.Transport.SocketURL)
	}
	if cfg.History.MaxSize != 5 {
		t.Errorf("Expected history max size 5, got %d", cfg.History.MaxSize)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Expected level 'warning' to normalize to 'warn', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "modelweb.toml")
	testConfig := `
[server]
host = "localhost"
port = 9100

[transport]
mode = "hosted"

[hosted]
url = "http://localhost:9101/chat"
max_tokens = 256

[logging]
level = "error"
format = "text"
path = "/tmp/modelweb.log"
`
	if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Hosted.MaxTokens != 256 {
		t.Errorf("Expected max tokens 256, got %d", cfg.Hosted.MaxTokens)
	}
	if cfg.Transport.Mode != ModeHosted {
		t.Errorf("Expected hosted mode, got %q", cfg.Transport.Mode)
	}
}

func TestLoadConfigUnsupportedExtension(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "modelweb.ini")
	if err := os.WriteFile(configPath, []byte("port=1"), 0644); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	if _, err := LoadConfig(configPath); err == nil {
		t.Fatal("Expected error for .ini config")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Expected defaults, got %v", err)
	}
	if cfg.Server.Port != 9080 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}

	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("Expected defaults for empty path, got %v", err)
	}
	if cfg.Transport.Mode != ModeSocket {
		t.Errorf("Expected default mode, got %q", cfg.Transport.Mode)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MODELWEB_PORT", "9999")
	t.Setenv("MODELWEB_HOST", "example.local")
	t.Setenv("MODELWEB_DEBUG", "true")
	t.Setenv("MODELWEB_TRANSPORT_MODE", "HOSTED")
	t.Setenv("MODELWEB_HISTORY_MAX_SIZE", "7")
	t.Setenv("MODELWEB_LOG_LEVEL", "debug")

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "example.local" {
		t.Errorf("Expected host 'example.local', got '%s'", cfg.Server.Host)
	}
	if !cfg.Server.Debug {
		t.Error("Expected debug to be true")
	}
	if cfg.Transport.Mode != ModeHosted {
		t.Errorf("Expected mode 'hosted', got '%s'", cfg.Transport.Mode)
	}
	if cfg.History.MaxSize != 7 {
		t.Errorf("Expected history max size 7, got %d", cfg.History.MaxSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestInvalidEnvOverrideIgnored(t *testing.T) {
	t.Setenv("MODELWEB_PORT", "not-a-port")

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Server.Port != 9080 {
		t.Errorf("Expected invalid port override to be ignored, got %d", cfg.Server.Port)
	}
}

func TestHostedAPIKeyFromEnvironment(t *testing.T) {
	cfg := NewConfig()
	cfg.Hosted.APIKeyEnv = "MODELWEB_TEST_SECRET"

	t.Setenv("MODELWEB_TEST_SECRET", "")
	if got := cfg.Hosted.APIKey(); got != "" {
		t.Errorf("Expected empty key, got %q", got)
	}

	t.Setenv("MODELWEB_TEST_SECRET", "  sk-test  ")
	if got := cfg.Hosted.APIKey(); got != "sk-test" {
		t.Errorf("Expected trimmed key 'sk-test', got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"empty host", func(c *Config) { c.Server.Host = "" }, "host cannot be empty"},
		{"bad mode", func(c *Config) { c.Transport.Mode = "carrier-pigeon" }, "invalid transport mode"},
		{"empty socket url", func(c *Config) { c.Transport.SocketURL = "" }, "socket url"},
		{"empty hosted url", func(c *Config) { c.Transport.Mode = ModeHosted; c.Hosted.URL = "" }, "hosted url"},
		{"zero history", func(c *Config) { c.History.MaxSize = -1 }, "history max size"},
		{"negative debounce", func(c *Config) { c.History.DebounceMillis = -5 }, "debounce"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"empty log path", func(c *Config) { c.Logging.Path = "" }, "log path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Host = "  localhost  "
	cfg.Transport.Mode = " Socket "
	cfg.Hosted.APIKeyEnv = ""
	cfg.Logging.Level = " INFO "
	cfg.Logging.Format = "TEXT"
	cfg.Logging.Path = "~/logs/modelweb.log"

	cfg.Normalize()

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected trimmed host, got %q", cfg.Server.Host)
	}
	if cfg.Transport.Mode != ModeSocket {
		t.Errorf("Expected mode 'socket', got %q", cfg.Transport.Mode)
	}
	if cfg.Hosted.APIKeyEnv != DefaultAPIKeyEnv {
		t.Errorf("Expected default api key env, got %q", cfg.Hosted.APIKeyEnv)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Expected lowercased logging, got %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if strings.HasPrefix(cfg.Logging.Path, "~") {
		t.Errorf("Expected home to be expanded, got %q", cfg.Logging.Path)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "modelweb"+ext)
			cfg := NewConfig()
			cfg.Server.Port = 8123
			cfg.Transport.Mode = ModeHosted

			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}

			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if loaded.Server.Port != 8123 {
				t.Errorf("Expected port 8123, got %d", loaded.Server.Port)
			}
			if loaded.Transport.Mode != ModeHosted {
				t.Errorf("Expected hosted mode, got %q", loaded.Transport.Mode)
			}
		})
	}
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	cfg := NewConfig()
	cfg.Server.Port = 0
	if err := SaveConfig(cfg, filepath.Join(t.TempDir(), "modelweb.json")); err == nil {
		t.Fatal("Expected invalid config to be rejected")
	}
	if err := SaveConfig(nil, filepath.Join(t.TempDir(), "modelweb.json")); err == nil {
		t.Fatal("Expected nil config to be rejected")
	}
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("MODELWEB_CONFIG_PATH", "/etc/modelweb/config.yaml")
	path, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("ResolveConfigPath failed: %v", err)
	}
	if path != "/etc/modelweb/config.yaml" {
		t.Errorf("Expected env path, got %q", path)
	}
}
