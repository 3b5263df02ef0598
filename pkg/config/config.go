// Package config loads pilot's settings from defaults, an optional YAML
// file and PILOT_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. The first segment after
// the prefix names the section: PILOT_LLM_BASE_URL sets llm.base_url.
const EnvPrefix = "PILOT_"

// DefaultTask is the instruction the agent runs when none is given.
const DefaultTask = "Entra en linkedin y haz un post haciendo un post sobre como se puede aplicar los MCP servers para hacer agentes en una aseguradora, usa emojis y hazlo divertido "

// Config is the full application configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	LLM     LLMConfig     `koanf:"llm"`
	Agent   AgentConfig   `koanf:"agent"`
	Browser BrowserConfig `koanf:"browser"`
	Mongo   MongoConfig   `koanf:"mongo"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

type LLMConfig struct {
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

type AgentConfig struct {
	Task         string        `koanf:"task"`
	MaxSteps     int           `koanf:"max_steps"`
	Timeout      time.Duration `koanf:"timeout"` // 0 means no limit
	ShowThinking bool          `koanf:"show_thinking"`
	WaitForEnter bool          `koanf:"wait_for_enter"`
}

type BrowserConfig struct {
	// ExecutablePath is the browser binary to launch. Empty means the
	// platform default.
	ExecutablePath string        `koanf:"executable_path"`
	CDPURL         string        `koanf:"cdp_url"`
	UserDataDir    string        `koanf:"user_data_dir"`
	Headless       bool          `koanf:"headless"`
	ViewportWidth  int           `koanf:"viewport_width"`
	ViewportHeight int           `koanf:"viewport_height"`
	Timeout        time.Duration `koanf:"timeout"`
	AllowedDomains []string      `koanf:"allowed_domains"`
	// OutputDir receives files the agent writes, such as PDFs.
	OutputDir string `koanf:"output_dir"`
}

type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level": "info",

		"llm.model": "gpt-4o",

		"agent.task":           DefaultTask,
		"agent.max_steps":      50,
		"agent.timeout":        "0s",
		"agent.show_thinking":  false,
		"agent.wait_for_enter": true,

		"browser.headless":        false,
		"browser.viewport_width":  1280,
		"browser.viewport_height": 720,
		"browser.timeout":         "30s",
		"browser.output_dir":      ".",

		"mongo.uri":             "mongodb://localhost:27017/",
		"mongo.database":        "mydatabase",
		"mongo.collection":      "mycollection",
		"mongo.connect_timeout": "5s",
	}
}

// Load builds the configuration. path may be empty to skip the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for key, v := range defaults() {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Browser.AllowedDomains = splitList(cfg.Browser.AllowedDomains)
	return &cfg, nil
}

// envKey maps PILOT_BROWSER_EXECUTABLE_PATH to browser.executable_path.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

// splitList accepts both YAML lists and comma-separated strings.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Log.Level)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.LLM.BaseURL != "" {
		if err := checkURL(c.LLM.BaseURL, "http", "https"); err != nil {
			return fmt.Errorf("invalid llm base_url: %w", err)
		}
	}

	if c.Agent.MaxSteps < 1 {
		return fmt.Errorf("agent max_steps must be at least 1")
	}
	if c.Agent.Timeout < 0 {
		return fmt.Errorf("agent timeout cannot be negative")
	}

	if c.Browser.ViewportWidth < 1 || c.Browser.ViewportHeight < 1 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout cannot be negative")
	}
	if strings.TrimSpace(c.Browser.OutputDir) == "" {
		return fmt.Errorf("browser output_dir is required")
	}
	if c.Browser.CDPURL != "" {
		if err := checkURL(c.Browser.CDPURL, "ws", "wss", "http", "https"); err != nil {
			return fmt.Errorf("invalid browser cdp_url: %w", err)
		}
		if c.Browser.UserDataDir != "" {
			return fmt.Errorf("browser cdp_url and user_data_dir cannot both be set")
		}
	}

	if !strings.HasPrefix(c.Mongo.URI, "mongodb://") && !strings.HasPrefix(c.Mongo.URI, "mongodb+srv://") {
		return fmt.Errorf("invalid mongo uri: %q (must start with mongodb:// or mongodb+srv://)", c.Mongo.URI)
	}
	if c.Mongo.Database == "" || c.Mongo.Collection == "" {
		return fmt.Errorf("mongo database and collection are required")
	}
	if c.Mongo.ConnectTimeout < 0 {
		return fmt.Errorf("mongo connect_timeout cannot be negative")
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%q must be an absolute %s URL", raw, strings.Join(schemes, "/"))
}
