package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, DefaultTask, cfg.Agent.Task)
	assert.Equal(t, 50, cfg.Agent.MaxSteps)
	assert.Zero(t, cfg.Agent.Timeout)
	assert.True(t, cfg.Agent.WaitForEnter)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 720, cfg.Browser.ViewportHeight)
	assert.Equal(t, 30*time.Second, cfg.Browser.Timeout)
	assert.Empty(t, cfg.Browser.AllowedDomains)
	assert.Equal(t, ".", cfg.Browser.OutputDir)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.Mongo.URI)
	assert.Equal(t, "mydatabase", cfg.Mongo.Database)
	assert.Equal(t, "mycollection", cfg.Mongo.Collection)
	assert.Equal(t, 5*time.Second, cfg.Mongo.ConnectTimeout)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "pilot.yaml", `
log:
  level: debug
llm:
  model: gpt-4o-mini
agent:
  max_steps: 20
  timeout: 10m
browser:
  executable_path: /usr/bin/brave-browser
  headless: true
  allowed_domains:
    - linkedin.com
    - "*.linkedin.com"
mongo:
  database: tutorial
`)
	t.Setenv("PILOT_LLM_MODEL", "gpt-4.1")
	t.Setenv("PILOT_LLM_BASE_URL", "https://llm.internal/v1")
	t.Setenv("PILOT_AGENT_MAX_STEPS", "7")
	t.Setenv("PILOT_MONGO_CONNECT_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model, "env beats file")
	assert.Equal(t, "https://llm.internal/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 7, cfg.Agent.MaxSteps)
	assert.Equal(t, 10*time.Minute, cfg.Agent.Timeout)
	assert.Equal(t, "/usr/bin/brave-browser", cfg.Browser.ExecutablePath)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"linkedin.com", "*.linkedin.com"}, cfg.Browser.AllowedDomains)
	assert.Equal(t, "tutorial", cfg.Mongo.Database)
	assert.Equal(t, "mycollection", cfg.Mongo.Collection, "defaults survive partial files")
	assert.Equal(t, 2*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestLoad_EnvList(t *testing.T) {
	t.Setenv("PILOT_BROWSER_ALLOWED_DOMAINS", "linkedin.com, *.licdn.com")
	t.Setenv("PILOT_BROWSER_HEADLESS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"linkedin.com", "*.licdn.com"}, cfg.Browser.AllowedDomains)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load config file")

	_, err = Load(writeFile(t, "bad.yaml", "llm: [unclosed"))
	assert.ErrorContains(t, err, "failed to load config file")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PILOT_LLM_MODEL":               "llm.model",
		"PILOT_LLM_BASE_URL":            "llm.base_url",
		"PILOT_BROWSER_EXECUTABLE_PATH": "browser.executable_path",
		"PILOT_DEBUG":                   "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, "llm model is required"},
		{"base url", func(c *Config) { c.LLM.BaseURL = "localhost:8080" }, "invalid llm base_url"},
		{"max steps", func(c *Config) { c.Agent.MaxSteps = 0 }, "max_steps must be at least 1"},
		{"agent timeout", func(c *Config) { c.Agent.Timeout = -time.Second }, "agent timeout cannot be negative"},
		{"viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }, "viewport must be positive"},
		{"browser timeout", func(c *Config) { c.Browser.Timeout = -1 }, "browser timeout cannot be negative"},
		{"output dir", func(c *Config) { c.Browser.OutputDir = " " }, "output_dir is required"},
		{"cdp scheme", func(c *Config) { c.Browser.CDPURL = "ftp://localhost:9222" }, "invalid browser cdp_url"},
		{"cdp ok", func(c *Config) { c.Browser.CDPURL = "ws://localhost:9222/devtools/browser/abc" }, ""},
		{"cdp and profile", func(c *Config) {
			c.Browser.CDPURL = "http://localhost:9222"
			c.Browser.UserDataDir = "/tmp/profile"
		}, "cannot both be set"},
		{"mongo uri", func(c *Config) { c.Mongo.URI = "localhost:27017" }, "invalid mongo uri"},
		{"mongo srv", func(c *Config) { c.Mongo.URI = "mongodb+srv://cluster.example.net" }, ""},
		{"mongo collection", func(c *Config) { c.Mongo.Collection = "" }, "database and collection are required"},
		{"mongo timeout", func(c *Config) { c.Mongo.ConnectTimeout = -time.Second }, "connect_timeout cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(nil))
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{" a ,b", "", "c"}))
}
