// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across teamchat.
//
// # Key Functions
//
// String Utilities:
//   - FirstRunes: character-count cut with no ellipsis
//   - TruncateRunes: character-count cut with an ellipsis
//   - TruncateWidth: display-width cut for terminal columns
//   - RuneLen: length in characters
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	label := util.TruncateWidth(persona.Name, 22)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
