// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/teamchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown with YAML frontmatter.
type MarkdownExporter struct {
	// IncludeTimestamps adds the time to each message heading.
	IncludeTimestamps bool
}

// NewMarkdownExporter creates a Markdown exporter with timestamps on.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{IncludeTimestamps: true}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil || len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sb strings.Builder

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "persona: %s\n", escapeYAML(t.Persona))
	if t.Model != "" {
		fmt.Fprintf(&sb, "model: %s\n", escapeYAML(t.Model))
	}
	if !t.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "started: %s\n", t.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	fmt.Fprintf(&sb, "exported: %s\n", t.ExportedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&sb, "messages: %d\n", len(t.Messages))
	if t.KnowledgeChars > 0 {
		fmt.Fprintf(&sb, "knowledge_chars: %d\n", t.KnowledgeChars)
	}
	sb.WriteString("generator: teamchat\n")
	sb.WriteString("---\n\n")

	fmt.Fprintf(&sb, "# Chat with %s\n\n", escapeMarkdown(t.Persona))

	for i, msg := range t.Messages {
		label := e.formatRoleLabel(msg.Role, t.Persona)
		if e.IncludeTimestamps && !msg.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	fmt.Fprintf(&sb, "\n---\n\n*Exported from teamchat on %s*\n", formatTimestamp(t.ExportedAt))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

func (e *MarkdownExporter) formatRoleLabel(role model.Role, persona string) string {
	if role == model.RoleAssistant && persona != "" {
		return escapeMarkdown(persona)
	}
	return role.DisplayName()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values that contain YAML-significant characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\()") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
