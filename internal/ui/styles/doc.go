// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the teamchat TUI.
//
// All colors use Lip Gloss AdaptiveColor for automatic light/dark
// detection. NewTheme pins the color profile through termenv, so
// ui.no_color and ui.theme take effect for every style.
package styles
