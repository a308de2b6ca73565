// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion sends a conversation to a hosted chat model and returns
// its reply.
//
// Completion failures never escape as Go errors from Complete. They travel in
// the Result and are rendered as an assistant turn so the conversation keeps
// going.
package completion

import (
	"context"

	"github.com/jeranaias/teamchat/internal/model"
)

// ErrorPrefix starts the text of every rendered completion failure.
const ErrorPrefix = "⚠️ Error: "

// Completer produces the assistant's reply to an ordered message sequence.
type Completer interface {
	// Complete sends the full sequence and returns the reply or the failure.
	Complete(ctx context.Context, messages []model.Message) Result

	// Configured reports whether Complete can reach a model at all.
	Configured() bool
}

// Result is the outcome of one completion call.
type Result struct {
	Content string
	Err     error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns the reply, or the failure rendered as "⚠️ Error: <details>".
func (r Result) Text() string {
	if r.Err == nil {
		return r.Content
	}
	details := r.Err.Error()
	if details == "" {
		details = "unknown error"
	}
	return ErrorPrefix + details
}
