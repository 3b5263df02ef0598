// Package memory stores the conversation the agent replays to the LLM each iteration.
package memory

import (
	"sync"

	"github.com/entrhq/pilot/pkg/types"
)

// Memory is the conversation store used by the agent loop.
type Memory interface {
	Add(msg *types.Message)
	GetAll() []*types.Message
	Len() int
	Clear()
}

// ConversationMemory is a goroutine-safe, in-order message list.
type ConversationMemory struct {
	mu       sync.RWMutex
	messages []*types.Message
}

// NewConversationMemory returns an empty memory.
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

// Add appends msg. Nil messages are ignored.
func (m *ConversationMemory) Add(msg *types.Message) {
	if msg == nil {
		return
	}
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
}

// GetAll returns a copy of the stored messages.
func (m *ConversationMemory) GetAll() []*types.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	m.messages = nil
	m.mu.Unlock()
}

// TokenCounter measures a message list.
type TokenCounter func([]*types.Message) int

// Trim drops the oldest messages after the first one until count reports at
// most maxTokens, always keeping the first message (the task) and the last
// keepRecent messages. It returns how many messages were dropped.
func (m *ConversationMemory) Trim(maxTokens, keepRecent int, count TokenCounter) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if keepRecent < 1 {
		keepRecent = 1
	}

	dropped := 0
	for len(m.messages) > keepRecent+1 && count(m.messages) > maxTokens {
		// Drop in pairs so an assistant tool call and its result go together.
		n := 2
		if len(m.messages)-n < keepRecent+1 {
			n = len(m.messages) - keepRecent - 1
		}
		m.messages = append(m.messages[:1], m.messages[1+n:]...)
		dropped += n
	}
	return dropped
}
