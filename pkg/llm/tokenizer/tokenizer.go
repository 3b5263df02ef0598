// Package tokenizer counts tokens client-side so the agent can report
// context usage without waiting for the provider.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/pilot/pkg/types"
)

const (
	defaultEncoding = "cl100k_base"

	// Per-message framing overhead used by OpenAI chat models.
	tokensPerMessage = 4
	// Every reply is primed with <|start|>assistant<|message|>.
	tokensReplyPriming = 3
)

// Tokenizer wraps a tiktoken encoding.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New returns a tokenizer using the cl100k_base encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", defaultEncoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// NewForModel returns the encoding for model, or cl100k_base when the model is unknown.
func NewForModel(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return New()
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.enc == nil {
		return Estimate(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessagesTokens returns the prompt size of messages including framing.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, m := range messages {
		if m == nil {
			continue
		}
		total += tokensPerMessage
		total += t.CountTokens(string(m.Role))
		total += t.CountTokens(m.Content)
	}
	return total + tokensReplyPriming
}

// Estimate approximates the token count at four characters per token.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}
