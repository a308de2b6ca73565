// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig is a frame set and its playback rate.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// DotsSpinner - Classic three-dot animation
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// LineSpinner - Simple line rotation
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// Spinner converts the config for use with the bubbles spinner.
func (c SpinnerConfig) Spinner() spinner.Spinner {
	fps := c.FPS
	if fps <= 0 {
		fps = 10
	}
	return spinner.Spinner{
		Frames: c.Frames,
		FPS:    time.Second / time.Duration(fps),
	}
}

// ThinkingText renders "Thinking" followed by a dot count driven by frame.
func ThinkingText(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return "Thinking" + strings.Repeat(".", frame%4)
}
