// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/util"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript has no messages")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the exportable view of a session. Messages exclude the
// system message.
type Transcript struct {
	SessionID      string          `json:"session_id"`
	Persona        string          `json:"persona"`
	Model          string          `json:"model,omitempty"`
	KnowledgeChars int             `json:"knowledge_chars"`
	StartedAt      time.Time       `json:"started_at"`
	ExportedAt     time.Time       `json:"exported_at"`
	Messages       []model.Message `json:"messages"`
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a transcript in one format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the extension used for generated names.
	FileExtension() string
}

// ExporterFor picks an exporter from a file name's extension. Unknown
// extensions get Markdown.
func ExporterFor(path string) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONExporter()
	default:
		return NewMarkdownExporter()
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile writes the transcript to path and returns the path written. An
// empty path or an existing directory gets a generated file name.
func ToFile(t *Transcript, path string) (string, error) {
	if t == nil || len(t.Messages) == 0 {
		return "", ErrEmptyTranscript
	}
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now()
	}

	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFilename(t, NewMarkdownExporter()))
	}

	content, err := ExporterFor(path).Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// DefaultFilename builds "teamchat_<persona>_<timestamp><ext>".
func DefaultFilename(t *Transcript, e Exporter) string {
	return fmt.Sprintf("teamchat_%s_%s%s",
		sanitizeFilename(t.Persona),
		t.ExportedAt.Format("20060102_150405"),
		e.FileExtension(),
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		runes = runes[:50]
	}

	replacer := map[rune]rune{
		'/': '-', '\\': '-', ':': '-', '*': '-', '?': '-', '"': '-',
		'<': '-', '>': '-', '|': '-', '(': '-', ')': '-',
		' ': '_', '\t': '_', '\n': '_', '\r': '_',
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	out := strings.Trim(string(result), "-_")
	if out == "" {
		return "conversation"
	}
	return out
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
