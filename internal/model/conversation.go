// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered message log for the active persona.
//
// Once created it holds exactly one system message at index 0; user and
// assistant turns are appended after it and never reordered.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `json:"messages"`
}

// NewConversation creates a conversation seeded with a system message.
func NewConversation(systemPrompt string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []Message{NewSystemMessage(systemPrompt)},
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Reset discards the whole history and starts over from a fresh system
// message. There is no undo.
func (c *Conversation) Reset(systemPrompt string) {
	c.Messages = []Message{NewSystemMessage(systemPrompt)}
	c.UpdatedAt = time.Now()
}

// SetSystemPrompt rewrites the system message in place, keeping history.
func (c *Conversation) SetSystemPrompt(systemPrompt string) {
	if len(c.Messages) == 0 {
		c.Reset(systemPrompt)
		return
	}
	c.Messages[0] = NewSystemMessage(systemPrompt)
	c.UpdatedAt = time.Now()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) Message {
	return c.add(NewUserMessage(content))
}

// AddAssistantMessage creates and appends an assistant message.
func (c *Conversation) AddAssistantMessage(content string) Message {
	return c.add(NewAssistantMessage(content))
}

func (c *Conversation) add(msg Message) Message {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return msg
}

// SystemPrompt returns the content of the system message, or "" if the
// conversation is empty.
func (c *Conversation) SystemPrompt() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[0].Content
}

// History returns a copy of all messages, system message first.
func (c *Conversation) History() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// Transcript returns a copy of the user/assistant turns, without the system
// message. This is what the transcript views render.
func (c *Conversation) Transcript() []Message {
	if len(c.Messages) <= 1 {
		return nil
	}
	out := make([]Message, len(c.Messages)-1)
	copy(out, c.Messages[1:])
	return out
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of messages including the system message.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// TurnCount returns the number of completed user/assistant exchanges.
func (c *Conversation) TurnCount() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleAssistant {
			n++
		}
	}
	return n
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}
