// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/teamchat/internal/commands"
	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/session"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of one Submit.
type ReplyMsg struct {
	Reply model.Message
	Err   error
}

// CommandDoneMsg carries the outcome of a slash command.
type CommandDoneMsg struct {
	Result commands.Result
}

// PersonasUpdatedMsg reports personas changed outside the view, such as by
// the personas file watcher.
type PersonasUpdatedMsg struct {
	Names []string
}

// =============================================================================
// COMMANDS
// =============================================================================

// submitCmd sends text to the session off the event loop.
func submitCmd(s *session.Session, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := s.Submit(context.Background(), text)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

// commandCmd runs a slash command off the event loop.
func commandCmd(reg *commands.Registry, cctx *commands.Context, input string) tea.Cmd {
	return func() tea.Msg {
		return CommandDoneMsg{Result: reg.Execute(cctx, input)}
	}
}
