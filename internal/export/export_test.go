// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/persona"
	"github.com/jeranaias/teamchat/internal/session"
)

func sampleTranscript() *Transcript {
	at := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	user := model.NewUserMessage("How do we grow?")
	user.Timestamp = at
	reply := model.NewAssistantMessage("Focus on **retention**.")
	reply.Timestamp = at.Add(time.Second)
	return &Transcript{
		SessionID:  "sess-1",
		Persona:    "Alex (Strategist)",
		Model:      "gpt-4",
		StartedAt:  at,
		ExportedAt: at.Add(time.Minute),
		Messages:   []model.Message{user, reply},
	}
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter().Export(sampleTranscript())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\npersona: \"Alex (Strategist)\"\n"))
	assert.Contains(t, md, "model: gpt-4\n")
	assert.Contains(t, md, "messages: 2\n")
	assert.Contains(t, md, "# Chat with Alex (Strategist)\n")
	assert.Contains(t, md, "### You <sub>10:30:00</sub>\n\nHow do we grow?")
	assert.Contains(t, md, "### Alex (Strategist) <sub>10:30:01</sub>\n\nFocus on **retention**.")
	assert.Contains(t, md, "*Exported from teamchat on 2025-03-04 10:31:00*")
	assert.NotContains(t, md, "knowledge_chars")
}

func TestMarkdownExportWithoutTimestamps(t *testing.T) {
	e := &MarkdownExporter{}
	out, err := e.Export(sampleTranscript())
	require.NoError(t, err)
	assert.Contains(t, string(out), "### You\n\n")
	assert.NotContains(t, string(out), "<sub>")
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleTranscript())
	require.NoError(t, err)

	var decoded Transcript
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Alex (Strategist)", decoded.Persona)
	require.Len(t, decoded.Messages, 2)
	assert.Equal(t, model.RoleAssistant, decoded.Messages[1].Role)
}

func TestEmptyTranscript(t *testing.T) {
	_, err := NewMarkdownExporter().Export(&Transcript{Persona: "x"})
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = ToFile(&Transcript{}, t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ToFile(sampleTranscript(), filepath.Join(dir, "notes", "chat.json"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	path, err = ToFile(sampleTranscript(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "teamchat_Alex_-Strategist_20250304_103100.md"), path)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Chat with")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Chris_-Tech_Lead", sanitizeFilename("Chris (Tech Lead)"))
	assert.Equal(t, "a-b-c", sanitizeFilename("a/b:c"))
	assert.Equal(t, "conversation", sanitizeFilename(""))
	assert.Equal(t, "conversation", sanitizeFilename("()"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 80))), 50)
}

func TestFromSession(t *testing.T) {
	s := session.New(persona.DefaultTeam(), completion.Echo{})
	require.NoError(t, s.Start())
	_, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)

	tr := FromSession(s, "gpt-4")
	assert.Equal(t, s.ID(), tr.SessionID)
	assert.Equal(t, "Alex (Strategist)", tr.Persona)
	assert.Equal(t, "gpt-4", tr.Model)
	require.Len(t, tr.Messages, 2, "system message excluded")
	assert.Equal(t, model.RoleUser, tr.Messages[0].Role)
	assert.Zero(t, tr.KnowledgeChars)
}
