// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/teamchat/internal/persona"
)

func TestBuildSystemPrompt_EmptyKnowledgeIsIdentity(t *testing.T) {
	for _, p := range persona.Defaults() {
		t.Run(p.Name, func(t *testing.T) {
			assert.Equal(t, p.Prompt, BuildSystemPrompt(p, ""))
		})
	}
}

func TestBuildSystemPrompt_WithKnowledge(t *testing.T) {
	p := persona.Persona{Name: "Alex", Prompt: "You are Alex."}

	tests := []struct {
		name string
		kb   string
	}{
		{"short", "Q3 revenue was flat."},
		{"exactly cap", strings.Repeat("a", KnowledgeCap)},
		{"multi-byte", strings.Repeat("ü", 10)},
		{"whitespace only", "   "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildSystemPrompt(p, tc.kb)

			assert.True(t, strings.HasPrefix(got, p.Prompt+"\n\n"+DocumentPreamble))
			assert.Contains(t, got, FirstNChars(tc.kb, KnowledgeCap))
			assert.True(t, strings.HasSuffix(got, "..."))
		})
	}
}

func TestBuildSystemPrompt_LengthCappedForLongKnowledge(t *testing.T) {
	p := persona.Defaults()[2]
	want := utf8.RuneCountInString(p.Prompt) + utf8.RuneCountInString("\n\n"+DocumentPreamble) + KnowledgeCap + 3

	for _, size := range []int{KnowledgeCap + 1, 5000, 50000} {
		kb := strings.Repeat("x", size)
		got := BuildSystemPrompt(p, kb)
		assert.Equal(t, want, utf8.RuneCountInString(got), "kb size %d", size)
	}
}

func TestBuildSystemPrompt_CutsMidWord(t *testing.T) {
	kb := strings.Repeat("a", KnowledgeCap-2) + "wordy tail"
	got := BuildSystemPrompt(persona.Persona{Prompt: "P"}, kb)

	assert.True(t, strings.HasSuffix(got, "aawo..."))
}

func TestBuildSystemPrompt_CountsCharactersNotBytes(t *testing.T) {
	kb := strings.Repeat("é", KnowledgeCap+10)
	got := BuildSystemPrompt(persona.Persona{Prompt: "P"}, kb)

	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, strings.Repeat("é", KnowledgeCap)+"...")
	assert.NotContains(t, got, strings.Repeat("é", KnowledgeCap+1))
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	p := persona.Defaults()[0]
	kb := "same input"
	assert.Equal(t, BuildSystemPrompt(p, kb), BuildSystemPrompt(p, kb))
}
