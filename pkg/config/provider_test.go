package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLLM(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "https://proxy.example.com/v1")

	got := ResolveLLM(LLMConfig{Model: "gpt-4o"})
	assert.Equal(t, "sk-env", got.APIKey)
	assert.Equal(t, "https://proxy.example.com/v1", got.BaseURL)

	got = ResolveLLM(LLMConfig{Model: "gpt-4o", APIKey: "sk-file", BaseURL: "https://llm.internal/v1"})
	assert.Equal(t, "sk-file", got.APIKey, "configured values win over OPENAI_*")
	assert.Equal(t, "https://llm.internal/v1", got.BaseURL)
}

func TestBuildProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	_, err := BuildProvider(LLMConfig{Model: "gpt-4o"})
	assert.ErrorContains(t, err, "API key is required")

	p, err := BuildProvider(LLMConfig{Model: "gpt-4o", APIKey: "sk-test", BaseURL: "https://llm.internal/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.GetModel())
	assert.Equal(t, "sk-test", p.GetAPIKey())
	assert.Equal(t, "https://llm.internal/v1", p.GetBaseURL())
}

func TestLoadTaskFile(t *testing.T) {
	path := writeFile(t, "task.yaml", `
task: |
  Publica un post sobre agentes
max_steps: 30
allowed_domains: ["linkedin.com", "*.linkedin.com"]
`)
	tf, err := LoadTaskFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Publica un post sobre agentes", tf.Task)

	cfg, err := Load("")
	require.NoError(t, err)
	tf.Apply(cfg)
	assert.Equal(t, "Publica un post sobre agentes", cfg.Agent.Task)
	assert.Equal(t, 30, cfg.Agent.MaxSteps)
	assert.Equal(t, []string{"linkedin.com", "*.linkedin.com"}, cfg.Browser.AllowedDomains)

	minimal, err := LoadTaskFile(writeFile(t, "min.yaml", "task: hola"))
	require.NoError(t, err)
	cfg, err = Load("")
	require.NoError(t, err)
	minimal.Apply(cfg)
	assert.Equal(t, 50, cfg.Agent.MaxSteps, "zero max_steps keeps the configured value")

	tests := []struct {
		name, content, want string
	}{
		{"empty task", "task: '  '", "has no task"},
		{"negative steps", "task: x\nmax_steps: -1", "max_steps cannot be negative"},
		{"bad yaml", "task: [", "failed to parse task file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTaskFile(writeFile(t, "t.yaml", tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err = LoadTaskFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read task file")
}
