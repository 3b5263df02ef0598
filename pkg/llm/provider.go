// Package llm defines the provider abstraction the agent talks to.
//
//	provider, err := openai.NewProvider(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stream, err := provider.StreamCompletion(ctx, []*types.Message{types.NewUserMessage("Hello!")})
//	for chunk := range stream {
//	    if chunk.IsError() {
//	        log.Fatal(chunk.Error)
//	    }
//	    fmt.Print(chunk.Content)
//	}
package llm

import (
	"context"

	"github.com/entrhq/pilot/pkg/types"
)

// Provider defines the interface for LLM integrations.
//
// Providers only deal with the API and return StreamChunks. Turning chunks
// into agent events, tool calls and memory is the agent's job.
type Provider interface {
	// StreamCompletion sends messages to the LLM and streams back response chunks.
	//
	// The channel is closed when streaming completes or fails. Stream-time
	// errors arrive as chunks with Error set; the returned error only covers
	// failures to start the request.
	StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *StreamChunk, error)

	// Complete accumulates a full response. Convenience wrapper around StreamCompletion.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string

	// GetAPIKey returns the API key being used for authentication.
	GetAPIKey() string
}
