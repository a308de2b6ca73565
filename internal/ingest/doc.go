// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest turns an uploaded document into one flat knowledge-base
// string.
//
// A loader is chosen by file extension (.txt, .csv, .pdf). Loaded documents
// are split into overlapping chunks of bounded size and the chunks are
// joined back together with a blank line. Chunk boundaries carry no meaning
// downstream; splitting only bounds how much text a single document piece
// can contribute.
//
// # Usage
//
//	in := ingest.New()
//	text, err := in.Ingest(ctx, "report.pdf", upload)
//	if errors.Is(err, ingest.ErrUnsupportedFormat) {
//	    // tell the user which formats are accepted
//	}
//
// Uploaded bytes are staged in a temporary file for the duration of
// parsing; the file is removed on every return path.
package ingest
