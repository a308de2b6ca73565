// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{RoleSystem, "System"},
		{Role("tool"), "tool"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleSystem.Valid())
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("tool").Valid())
	assert.False(t, Role("").Valid())
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage_AssignsUniqueIDs(t *testing.T) {
	a := NewUserMessage("hi")
	b := NewUserMessage("hi")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("The quick brown fox jumps over the lazy dog")

	assert.Equal(t, msg.Content, msg.Preview(100))
	assert.Equal(t, "The quick...", msg.Preview(12))
	assert.Equal(t, "Th", msg.Preview(2))
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation_StartsWithSystemMessage(t *testing.T) {
	conv := NewConversation("be helpful")

	require.Equal(t, 1, conv.MessageCount())
	assert.Equal(t, RoleSystem, conv.Messages[0].Role)
	assert.Equal(t, "be helpful", conv.SystemPrompt())
	assert.Empty(t, conv.Transcript())
}

func TestConversation_AppendKeepsOrder(t *testing.T) {
	conv := NewConversation("sys")
	conv.AddUserMessage("q1")
	conv.AddAssistantMessage("a1")
	conv.AddUserMessage("q2")
	conv.AddAssistantMessage("a2")

	require.Equal(t, 5, conv.MessageCount())
	roles := []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser, RoleAssistant}
	for i, want := range roles {
		assert.Equal(t, want, conv.Messages[i].Role, "message %d", i)
	}
	assert.Equal(t, 2, conv.TurnCount())
	assert.Equal(t, "a2", conv.GetLastMessage().Content)
}

func TestConversation_Reset(t *testing.T) {
	conv := NewConversation("old")
	conv.AddUserMessage("q")
	conv.AddAssistantMessage("a")

	conv.Reset("new")

	require.Equal(t, 1, conv.MessageCount())
	assert.Equal(t, RoleSystem, conv.Messages[0].Role)
	assert.Equal(t, "new", conv.SystemPrompt())
}

func TestConversation_SetSystemPromptKeepsHistory(t *testing.T) {
	conv := NewConversation("old")
	conv.AddUserMessage("q")
	conv.AddAssistantMessage("a")

	conv.SetSystemPrompt("new")

	require.Equal(t, 3, conv.MessageCount())
	assert.Equal(t, "new", conv.SystemPrompt())
	assert.Equal(t, "q", conv.Messages[1].Content)
}

func TestConversation_HistoryIsACopy(t *testing.T) {
	conv := NewConversation("sys")
	conv.AddUserMessage("q")

	h := conv.History()
	h[1].Content = "mutated"

	assert.Equal(t, "q", conv.Messages[1].Content)
}

func TestConversation_TranscriptSkipsSystem(t *testing.T) {
	conv := NewConversation("sys")
	conv.AddUserMessage("q")
	conv.AddAssistantMessage("a")

	tr := conv.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, RoleUser, tr[0].Role)
	assert.Equal(t, RoleAssistant, tr[1].Role)
}
