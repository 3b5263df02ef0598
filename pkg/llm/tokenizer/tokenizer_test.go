package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/pilot/pkg/types"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("abc"))
	assert.Equal(t, 2, Estimate("abcdefgh"))
}

func TestNilTokenizerFallsBackToEstimate(t *testing.T) {
	var tok *Tokenizer
	assert.Equal(t, Estimate("hello world"), tok.CountTokens("hello world"))

	msgs := []*types.Message{types.NewUserMessage("abcd")}
	// 4 framing + role "user" (1) + content (1) + 3 priming
	assert.Equal(t, 9, tok.CountMessagesTokens(msgs))
}

func TestCountTokens(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	assert.Equal(t, 0, tok.CountTokens(""))
	assert.Greater(t, tok.CountTokens("Post something fun on LinkedIn"), 3)

	msgs := []*types.Message{
		types.NewSystemMessage("You are a browser agent."),
		types.NewUserMessage("Open the feed."),
	}
	assert.Greater(t, tok.CountMessagesTokens(msgs), 2*tokensPerMessage+tokensReplyPriming)
}

func TestNewForModelUnknownFallsBack(t *testing.T) {
	tok, err := NewForModel("definitely-not-a-model")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	assert.NotNil(t, tok)
}
