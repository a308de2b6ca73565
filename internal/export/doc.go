// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat transcript to a file on request.
//
// Exports are one-way snapshots for the user to keep or share; nothing is
// ever read back into a session.
//
// # Supported Formats
//
//   - Markdown (.md, .markdown, or any other extension)
//   - JSON (.json)
//
// # Usage
//
//	t := export.FromSession(sess, cfg.Completion.Model)
//	path, err := export.ToFile(t, "standup.md")
package export
