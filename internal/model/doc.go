// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Role: message role enumeration (system, user, assistant)
//   - Message: single message with ID, role, content and timestamp
//   - Conversation: ordered message log that always starts with exactly one
//     system message once initialised
//
// # Usage
//
//	conv := model.NewConversation("You are Alex, a strategic planner...")
//	conv.AddUserMessage("What should we focus on next quarter?")
//	conv.AddAssistantMessage(reply)
//
// Switching persona discards history:
//
//	conv.Reset(newSystemPrompt)
package model
