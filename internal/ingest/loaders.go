// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Document is one loaded piece of a file: the whole text file, one CSV row
// or one PDF page.
type Document struct {
	Content string
	Source  string
	Index   int
}

// Loader reads a file from disk into documents.
type Loader interface {
	Load(ctx context.Context, path string) ([]Document, error)
}

func loaderFor(f Format) Loader {
	switch f {
	case FormatText:
		return textLoader{}
	case FormatCSV:
		return csvLoader{}
	case FormatPDF:
		return pdfLoader{}
	}
	return nil
}

// decodeText strips a UTF-8 BOM, converts BOM-marked UTF-16 to UTF-8 and
// rejects anything that is still not valid UTF-8.
func decodeText(raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return "", unreadable("decode: %v", err)
	}
	if !utf8.Valid(decoded) {
		return "", unreadable("text is not valid UTF-8")
	}
	return string(decoded), nil
}

// =============================================================================
// TEXT
// =============================================================================

type textLoader struct{}

func (textLoader) Load(_ context.Context, path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	return []Document{{Content: text, Source: path}}, nil
}

// =============================================================================
// CSV
// =============================================================================

// csvLoader emits one document per data row, rendered as "header: value"
// lines.
type csvLoader struct{}

func (csvLoader) Load(ctx context.Context, path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, unreadable("csv header: %v", err)
	}

	var docs []Document
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, unreadable("csv row %d: %v", row+1, err)
		}

		lines := make([]string, len(record))
		for i, v := range record {
			lines[i] = strings.TrimSpace(header[i]) + ": " + strings.TrimSpace(v)
		}
		docs = append(docs, Document{Content: strings.Join(lines, "\n"), Source: path, Index: row})
	}
	return docs, nil
}

// =============================================================================
// PDF
// =============================================================================

// pdfLoader emits one document per page with that page's plain text.
type pdfLoader struct{}

func (pdfLoader) Load(ctx context.Context, path string) (docs []Document, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = unreadable("pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, unreadable("pdf: %v", err)
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			font := page.Font(name)
			fonts[name] = &font
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, unreadable("pdf page %d: %v", i, err)
		}
		docs = append(docs, Document{Content: text, Source: path, Index: i - 1})
	}
	return docs, nil
}
