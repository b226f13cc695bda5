package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix        = "MODELWEB_"
	DefaultAPIKeyEnv = EnvPrefix + "HOSTED_API_KEY"

	ModeSocket = "socket"
	ModeHosted = "hosted"
)

var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Config represents the editor server configuration
type Config struct {
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Version     string    `json:"version" yaml:"version" toml:"version"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	Server      Server    `json:"server" yaml:"server" toml:"server"`
	Transport   Transport `json:"transport" yaml:"transport" toml:"transport"`
	Hosted      Hosted    `json:"hosted" yaml:"hosted" toml:"hosted"`
	History     History   `json:"history" yaml:"history" toml:"history"`
	Logging     Logging   `json:"logging" yaml:"logging" toml:"logging"`
}

// Server represents the HTTP surface configuration
type Server struct {
	Host  string `json:"host" yaml:"host" toml:"host"`
	Port  int    `json:"port" yaml:"port" toml:"port"`
	Debug bool   `json:"debug" yaml:"debug" toml:"debug"`
}

// Transport selects the outbound channel.
type Transport struct {
	Mode                    string `json:"mode" yaml:"mode" toml:"mode"`
	SocketURL               string `json:"socket_url" yaml:"socket_url" toml:"socket_url"`
	HandshakeTimeoutSeconds int    `json:"handshake_timeout_seconds" yaml:"handshake_timeout_seconds" toml:"handshake_timeout_seconds"`
}

// Hosted configures the chat-completion endpoint. The bearer credential is
// read from the environment variable named by APIKeyEnv and never stored here.
type Hosted struct {
	URL            string `json:"url" yaml:"url" toml:"url"`
	Model          string `json:"model" yaml:"model" toml:"model"`
	APIKeyEnv      string `json:"api_key_env" yaml:"api_key_env" toml:"api_key_env"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	MaxHistory     int    `json:"max_history" yaml:"max_history" toml:"max_history"`
	MaxTokens      int    `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
}

// History configures undo capacity and interactive edit batching.
type History struct {
	MaxSize        int `json:"max_size" yaml:"max_size" toml:"max_size"`
	DebounceMillis int `json:"debounce_millis" yaml:"debounce_millis" toml:"debounce_millis"`
}

// Logging represents logging configuration
type Logging struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
	Path   string `json:"path" yaml:"path" toml:"path"`
}

// APIKey returns the hosted credential from the environment.
func (h Hosted) APIKey() string {
	return strings.TrimSpace(os.Getenv(h.APIKeyEnv))
}

// Timeout returns the per-request timeout for the hosted endpoint.
func (h Hosted) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// HandshakeTimeout returns the socket dial timeout.
func (t Transport) HandshakeTimeout() time.Duration {
	return time.Duration(t.HandshakeTimeoutSeconds) * time.Second
}

// Debounce returns the idle interval after which an interactive edit commits.
func (h History) Debounce() time.Duration {
	return time.Duration(h.DebounceMillis) * time.Millisecond
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Name:        "modelweb-mcp-go",
		Version:     "0.1.0",
		Description: "Command history and MCP dispatch for a 3D scene editor",
		Server: Server{
			Host: "localhost",
			Port: 9080,
		},
		Transport: Transport{
			Mode:                    ModeSocket,
			SocketURL:               "wss://mcp.example.com/v1/socket",
			HandshakeTimeoutSeconds: 10,
		},
		Hosted: Hosted{
			URL:            "https://api.siliconflow.cn/v1/chat/completions",
			Model:          "Qwen/QwQ-32B",
			APIKeyEnv:      DefaultAPIKeyEnv,
			TimeoutSeconds: 30,
			MaxHistory:     10,
			MaxTokens:      512,
		},
		History: History{
			MaxSize:        50,
			DebounceMillis: 300,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Path:   filepath.Join(homeDir(), ".modelweb", "logs", "modelweb.log"),
		},
	}
}

func homeDir() string {
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return os.TempDir()
	}
	return home
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := unmarshal(path, data, cfg); err != nil {
		return nil, err
	}

	// Environment variables have the highest priority.
	applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like LoadConfig but falls back to defaults plus
// environment overrides when path is empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}
	cfg := NewConfig()
	applyEnvOverrides(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := marshal(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json", "":
		return "json"
	default:
		return ""
	}
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch formatOf(path) {
	case "json":
		return json.Unmarshal(data, cfg)
	case "yaml":
		return yaml.Unmarshal(data, cfg)
	case "toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func marshal(path string, cfg *Config) ([]byte, error) {
	switch formatOf(path) {
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		return toml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func applyEnvOverrides(cfg *Config) {
	setInt := func(name string, dst *int) {
		raw := os.Getenv(EnvPrefix + name)
		if raw == "" {
			return
		}
		if v, err := strconv.Atoi(raw); err == nil {
			*dst = v
		} else {
			log.Printf("warning: ignoring invalid %s%s value %q: %v", EnvPrefix, name, raw, err)
		}
	}
	setString := func(name string, dst *string) {
		if raw := os.Getenv(EnvPrefix + name); raw != "" {
			*dst = raw
		}
	}

	setString("HOST", &cfg.Server.Host)
	setInt("PORT", &cfg.Server.Port)
	if debug := os.Getenv(EnvPrefix + "DEBUG"); debug != "" {
		if parsed, err := strconv.ParseBool(debug); err == nil {
			cfg.Server.Debug = parsed
		} else {
			log.Printf("warning: ignoring invalid %sDEBUG value %q: %v", EnvPrefix, debug, err)
		}
	}

	setString("TRANSPORT_MODE", &cfg.Transport.Mode)
	setString("SOCKET_URL", &cfg.Transport.SocketURL)

	setString("HOSTED_URL", &cfg.Hosted.URL)
	setString("HOSTED_MODEL", &cfg.Hosted.Model)
	setString("HOSTED_API_KEY_ENV", &cfg.Hosted.APIKeyEnv)

	setInt("HISTORY_MAX_SIZE", &cfg.History.MaxSize)
	setInt("EDIT_DEBOUNCE_MILLIS", &cfg.History.DebounceMillis)

	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LOG_PATH", &cfg.Logging.Path)
}

// Normalize canonicalizes config values so downstream validation and runtime
// logic operate on stable representations.
func (c *Config) Normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Transport.Mode = strings.ToLower(strings.TrimSpace(c.Transport.Mode))
	c.Transport.SocketURL = strings.TrimSpace(c.Transport.SocketURL)
	c.Hosted.URL = strings.TrimSpace(c.Hosted.URL)
	c.Hosted.APIKeyEnv = strings.TrimSpace(c.Hosted.APIKeyEnv)
	if c.Hosted.APIKeyEnv == "" {
		c.Hosted.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Hosted.MaxHistory == 0 {
		c.Hosted.MaxHistory = 10
	}
	if c.History.MaxSize == 0 {
		c.History.MaxSize = 50
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = expandHome(strings.TrimSpace(c.Logging.Path))
}

func expandHome(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid port number")
	}

	if c.Server.Host == "" {
		return errors.New("host cannot be empty")
	}

	switch c.Transport.Mode {
	case ModeSocket:
		if c.Transport.SocketURL == "" {
			return errors.New("socket url cannot be empty")
		}
	case ModeHosted:
		if c.Hosted.URL == "" {
			return errors.New("hosted url cannot be empty")
		}
	default:
		return fmt.Errorf("invalid transport mode %q: expected one of [socket hosted]", c.Transport.Mode)
	}

	if c.Transport.HandshakeTimeoutSeconds < 0 || c.Hosted.TimeoutSeconds < 0 {
		return errors.New("timeouts cannot be negative")
	}

	if c.Hosted.MaxHistory < 0 {
		return errors.New("hosted max history cannot be negative")
	}

	if c.History.MaxSize < 1 {
		return fmt.Errorf("invalid history max size %d: must be at least 1", c.History.MaxSize)
	}

	if c.History.DebounceMillis < 0 {
		return errors.New("edit debounce cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return errors.New("invalid log level")
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return errors.New("invalid log format")
	}

	if c.Logging.Path == "" {
		return errors.New("log path cannot be empty")
	}

	return nil
}

// ResolveConfigPath returns the path that should be used for configuration.
// The file it names does not have to exist.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv(EnvPrefix + "CONFIG_PATH")); path != "" {
		return expandHome(path), nil
	}

	for _, candidate := range []string{"config/modelweb.json", "config/modelweb.yaml", "config/modelweb.yml", "config/modelweb.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".modelweb", "config.json"), nil
}
