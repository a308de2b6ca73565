// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen team chat view.

The Model is a Bubble Tea model wrapped around a *session.Session. It owns no
conversation state of its own: every frame is drawn from the session, and
every user action (sending a message, switching persona, editing a prompt,
running a slash command) is a call on the session.

# Layout

	+----------------+--------------------------------------+
	| Team           | Chatting with: Alex (Strategist)     |
	|  1. Alex       | [Knowledge base loaded: 1200 chars]  |
	|  2. Becky      |                                      |
	|  ...           | transcript (viewport)                |
	|                |                                      |
	|                | > input                              |
	+----------------+--------------------------------------+
	 status bar with shortcuts

The sidebar is hidden on narrow terminals.

# Blocking work

Completion calls and slash commands run inside tea.Cmd functions so the
event loop keeps drawing the spinner. Input is disabled until the result
message arrives.

# Usage

	m := chat.New(chat.Options{Session: s, Registry: commands.NewRegistry(), Theme: theme})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package chat
