// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/teamchat/internal/model"
)

// Echo is an offline Completer. It answers without touching the network by
// repeating the latest user message, tagged with the first line of the
// system prompt so persona switches are visible.
type Echo struct{}

// Configured always reports true.
func (Echo) Configured() bool { return true }

// Complete builds the deterministic offline reply.
func (Echo) Complete(ctx context.Context, messages []model.Message) Result {
	if err := ctx.Err(); err != nil {
		return Result{Err: fmt.Errorf("completion canceled: %w", err)}
	}

	var system, last string
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			system = m.Content
		case model.RoleUser:
			last = m.Content
		}
	}
	if last == "" {
		return Result{Err: ErrEmptyResponse}
	}

	who := system
	if i := strings.IndexByte(who, '\n'); i >= 0 {
		who = who[:i]
	}
	if who == "" {
		return Result{Content: "(offline) " + last}
	}
	return Result{Content: fmt.Sprintf("(offline, %s) %s", who, last)}
}
