// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of one chat session: the team of
// personas, the active persona, the knowledge base and the conversation.
//
// # States
//
// A Session starts Uninitialized. Start moves it to Active with the first
// persona of the team. From then on:
//
//   - SelectPersona with a different persona discards the history and seeds
//     a new system message from that persona and the current knowledge base.
//   - LoadDocument, ClearKnowledgeBase and EditPersona change what the next
//     system message will contain but leave the current one alone, unless
//     the session was created WithRebuildOnUpload.
//   - Submit appends exactly one user and one assistant message.
//
// # Usage
//
//	s := session.New(persona.DefaultTeam(), client, session.WithIngestor(ingest.New()))
//	s.Start()
//	reply, err := s.Submit(ctx, "How do we grow next quarter?")
package session
