// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt assembles the system prompt from a persona and the
// knowledge base.
package prompt

import (
	"github.com/jeranaias/teamchat/internal/persona"
	"github.com/jeranaias/teamchat/internal/util"
)

const (
	// KnowledgeCap is how many characters of the knowledge base are injected.
	KnowledgeCap = 3000

	// DocumentPreamble introduces the knowledge base inside the system prompt.
	DocumentPreamble = "You also have access to the following document for reference:\n"

	// Ellipsis always follows the injected knowledge, truncated or not.
	Ellipsis = "..."
)

// FirstNChars returns the first n characters of s. The cut is a hard
// character count and may land mid-word.
func FirstNChars(s string, n int) string {
	return util.FirstRunes(s, n)
}

// BuildSystemPrompt returns the persona prompt unchanged when kb is empty;
// otherwise the prompt followed by a blank line, the document preamble, the
// first KnowledgeCap characters of kb and "...".
func BuildSystemPrompt(p persona.Persona, kb string) string {
	if kb == "" {
		return p.Prompt
	}
	return p.Prompt + "\n\n" + DocumentPreamble + FirstNChars(kb, KnowledgeCap) + Ellipsis
}
