package config

import (
	"fmt"
	"os"

	"github.com/entrhq/pilot/pkg/llm/openai"
)

// ResolveLLM fills empty credentials from OPENAI_API_KEY and OPENAI_BASE_URL.
// Values already set by the file, PILOT_* variables or flags win.
func ResolveLLM(c LLMConfig) LLMConfig {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	return c
}

// BuildProvider creates the LLM provider for c after applying the OpenAI
// environment fallbacks.
func BuildProvider(c LLMConfig) (*openai.Provider, error) {
	c = ResolveLLM(c)
	if c.APIKey == "" {
		return nil, fmt.Errorf("API key is required. Set OPENAI_API_KEY or PILOT_LLM_API_KEY, or set llm.api_key in the config file")
	}

	opts := []openai.ProviderOption{openai.WithModel(c.Model)}
	if c.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(c.BaseURL))
	}

	provider, err := openai.NewProvider(c.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}
