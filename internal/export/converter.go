// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/teamchat/internal/session"
	"github.com/jeranaias/teamchat/internal/util"
)

// FromSession snapshots the visible part of a session.
func FromSession(s *session.Session, modelName string) *Transcript {
	t := &Transcript{
		SessionID:      s.ID(),
		Model:          modelName,
		KnowledgeChars: util.RuneLen(s.KnowledgeBase()),
		StartedAt:      s.StartedAt(),
		ExportedAt:     time.Now(),
		Messages:       s.Transcript(),
	}
	if p, ok := s.ActivePersona(); ok {
		t.Persona = p.Name
	}
	return t
}
