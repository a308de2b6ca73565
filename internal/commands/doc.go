// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system shared by the TUI and
// the line-mode REPL.
//
// Handlers run synchronously against a session.Session and return a Result
// that each front end renders in its own way.
//
// # Built-in Commands
//
//   - /help: Show available commands
//   - /persona <name|number>: Switch teammate (resets the conversation)
//   - /personas: List the team
//   - /edit <text>: Replace the active persona's prompt
//   - /upload <path>: Load a .txt, .csv or .pdf into the knowledge base
//   - /forget: Clear the knowledge base
//   - /export [path]: Save the transcript as Markdown or JSON
//   - /quit: Exit
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res := reg.Execute(&commands.Context{Ctx: ctx, Session: sess}, "/persona chris")
//	if res.Quit {
//	    return
//	}
package commands
