// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies which loader handles a document.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Extensions lists the accepted upload extensions.
var Extensions = []string{".txt", ".csv", ".pdf"}

// DetectFormat picks a format from the file name's extension,
// case-insensitively.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return FormatText, nil
	case ".csv":
		return FormatCSV, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedFormat, filepath.Ext(name), strings.Join(Extensions, ", "))
}
