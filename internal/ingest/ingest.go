// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/jeranaias/teamchat/internal/util"
)

const (
	// ChunkSize is the target chunk length in characters.
	ChunkSize = 1000

	// ChunkOverlap is how many characters consecutive chunks share.
	ChunkOverlap = 100

	// ChunkSeparator joins chunks back into one string.
	ChunkSeparator = "\n\n"
)

// Ingestor converts documents into knowledge-base text.
type Ingestor struct {
	splitter textsplitter.TextSplitter
	tempDir  string
	logger   zerolog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithTempDir stages uploads in dir instead of the OS temp directory.
func WithTempDir(dir string) Option {
	return func(in *Ingestor) { in.tempDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(in *Ingestor) { in.logger = logger }
}

// WithSplitter replaces the default recursive character splitter.
func WithSplitter(s textsplitter.TextSplitter) Option {
	return func(in *Ingestor) { in.splitter = s }
}

// New creates an Ingestor with a recursive character splitter of
// ChunkSize/ChunkOverlap.
func New(opts ...Option) *Ingestor {
	in := &Ingestor{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(ChunkSize),
			textsplitter.WithChunkOverlap(ChunkOverlap),
		),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest stages the uploaded bytes from r in a temporary file named after
// name's extension, parses it and returns the flattened text. The temporary
// file is removed before Ingest returns, whatever the outcome.
func (in *Ingestor) Ingest(ctx context.Context, name string, r io.Reader) (string, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return "", &Error{Name: name, Err: err}
	}

	tmp, err := os.CreateTemp(in.tempDir, "teamchat-upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return "", &Error{Name: name, Format: format, Err: fmt.Errorf("stage upload: %w", err)}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil {
		return "", &Error{Name: name, Format: format, Err: fmt.Errorf("stage upload: %w", copyErr)}
	}
	if closeErr != nil {
		return "", &Error{Name: name, Format: format, Err: fmt.Errorf("stage upload: %w", closeErr)}
	}

	return in.load(ctx, name, tmpPath, format)
}

// IngestFile parses a file already on disk. Nothing is staged or removed.
func (in *Ingestor) IngestFile(ctx context.Context, path string) (string, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", &Error{Name: path, Err: err}
	}
	return in.load(ctx, path, path, format)
}

func (in *Ingestor) load(ctx context.Context, name, path string, format Format) (string, error) {
	start := time.Now()

	docs, err := loaderFor(format).Load(ctx, path)
	if err != nil {
		return "", &Error{Name: name, Format: format, Err: err}
	}

	var chunks []string
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return "", &Error{Name: name, Format: format, Err: err}
		}
		parts, err := in.splitter.SplitText(doc.Content)
		if err != nil {
			return "", &Error{Name: name, Format: format, Err: fmt.Errorf("split: %w", err)}
		}
		chunks = append(chunks, parts...)
	}

	text := strings.Join(chunks, ChunkSeparator)
	in.logger.Debug().
		Str("name", name).
		Str("format", string(format)).
		Int("documents", len(docs)).
		Int("chunks", len(chunks)).
		Int("chars", util.RuneLen(text)).
		Dur("took", time.Since(start)).
		Msg("document ingested")
	return text, nil
}

// Ingest parses an upload with a default Ingestor.
func Ingest(ctx context.Context, name string, r io.Reader) (string, error) {
	return New().Ingest(ctx, name, r)
}

// IngestFile parses a file on disk with a default Ingestor.
func IngestFile(ctx context.Context, path string) (string, error) {
	return New().IngestFile(ctx, path)
}
