package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/pilot/pkg/llm"
	"github.com/entrhq/pilot/pkg/llm/parser"
)

const (
	ssePrefix = "data:"
	sseDone   = "[DONE]"
)

type completionDelta struct {
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// streamReader turns an SSE body into StreamChunks.
type streamReader struct {
	body     io.ReadCloser
	out      chan<- *llm.StreamChunk
	thinking *parser.ThinkingParser
	role     string
	finished bool
}

func newStreamReader(body io.ReadCloser, out chan<- *llm.StreamChunk) *streamReader {
	return &streamReader{
		body:     body,
		out:      out,
		thinking: parser.NewThinkingParser(),
	}
}

func (r *streamReader) run(ctx context.Context) {
	defer close(r.out)
	defer r.body.Close()

	scanner := bufio.NewScanner(r.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		data, ok := sseData(scanner.Text())
		if !ok {
			continue
		}
		if data == sseDone {
			break
		}
		if !r.handle(ctx, data) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		r.send(ctx, &llm.StreamChunk{Error: fmt.Errorf("stream read error: %w", err)})
		return
	}

	if !r.flush(ctx) {
		return
	}
	if !r.finished {
		r.send(ctx, &llm.StreamChunk{Role: r.role, Finished: true})
	}
}

// sseData extracts the payload of a data line. Comments, event names and
// blank keep-alives are skipped.
func sseData(line string) (string, bool) {
	if !strings.HasPrefix(line, ssePrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, ssePrefix)), true
}

func (r *streamReader) handle(ctx context.Context, data string) bool {
	var delta completionDelta
	if err := json.Unmarshal([]byte(data), &delta); err != nil {
		// Some compatible servers interleave non-JSON payloads.
		return true
	}
	if delta.Error != nil {
		r.send(ctx, &llm.StreamChunk{Error: fmt.Errorf("API stream error: %s", delta.Error.Message)})
		return false
	}
	if len(delta.Choices) == 0 {
		return true
	}

	choice := delta.Choices[0]
	if r.role == "" && choice.Delta.Role != "" {
		r.role = choice.Delta.Role
	}

	if choice.Delta.Content != "" {
		thinking, message := r.thinking.Parse(choice.Delta.Content)
		if !r.emit(ctx, thinking, message) {
			return false
		}
	}

	if choice.FinishReason != nil && *choice.FinishReason != "" {
		if !r.flush(ctx) {
			return false
		}
		r.finished = true
		return r.send(ctx, &llm.StreamChunk{Role: r.role, Finished: true})
	}
	return true
}

func (r *streamReader) flush(ctx context.Context) bool {
	thinking, message := r.thinking.Flush()
	return r.emit(ctx, thinking, message)
}

func (r *streamReader) emit(ctx context.Context, chunks ...*llm.StreamChunk) bool {
	for _, c := range chunks {
		if c == nil {
			continue
		}
		c.Role = r.role
		if !r.send(ctx, c) {
			return false
		}
	}
	return true
}

func (r *streamReader) send(ctx context.Context, chunk *llm.StreamChunk) bool {
	select {
	case r.out <- chunk:
		return true
	case <-ctx.Done():
		select {
		case r.out <- &llm.StreamChunk{Error: ctx.Err()}:
		default:
		}
		return false
	}
}
