// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/ingest"
	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/persona"
	"github.com/jeranaias/teamchat/internal/prompt"
	"github.com/jeranaias/teamchat/internal/util"
)

// =============================================================================
// STATE
// =============================================================================

// State is the lifecycle state of a Session.
type State int

const (
	// StateUninitialized is the state before Start.
	StateUninitialized State = iota

	// StateActive means a persona is selected and a conversation exists.
	StateActive
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNotStarted is returned by operations that need an active session.
	ErrNotStarted = errors.New("session not started")

	// ErrEmptyMessage is returned when a blank message is submitted.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNoPersonas is returned by Start when the team is empty.
	ErrNoPersonas = errors.New("team has no personas")

	// ErrNoIngestor is returned by LoadDocument when no ingestor was set.
	ErrNoIngestor = errors.New("document upload not available")
)

// Ingestor turns an uploaded document into knowledge-base text.
// *ingest.Ingestor satisfies it.
type Ingestor interface {
	Ingest(ctx context.Context, name string, r io.Reader) (string, error)
}

var _ Ingestor = (*ingest.Ingestor)(nil)

// =============================================================================
// SESSION
// =============================================================================

// Session is the single owner of chat state. All methods are safe for
// concurrent use; the completion call itself runs without the lock held.
type Session struct {
	mu sync.Mutex

	id        string
	startedAt time.Time
	state     State

	team   *persona.Team
	active string
	kb     string
	conv   *model.Conversation

	// generation increments whenever the conversation is reset, so a reply
	// that arrives after a persona switch is not appended to the new history.
	generation int

	completer       completion.Completer
	ingestor        Ingestor
	rebuildOnUpload bool
	logger          zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithIngestor enables LoadDocument.
func WithIngestor(in Ingestor) Option {
	return func(s *Session) { s.ingestor = in }
}

// WithRebuildOnUpload regenerates the system message in place, keeping the
// history, whenever the knowledge base or the active persona's prompt
// changes.
func WithRebuildOnUpload(on bool) Option {
	return func(s *Session) { s.rebuildOnUpload = on }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates an uninitialized session. A nil team means the default team.
func New(team *persona.Team, completer completion.Completer, opts ...Option) *Session {
	if team == nil {
		team = persona.DefaultTeam()
	}
	s := &Session{
		id:        uuid.NewString(),
		team:      team,
		completer: completer,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

// Start activates the first persona of the team. Calling it on an active
// session does nothing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateActive {
		return nil
	}
	p, ok := s.team.First()
	if !ok {
		return ErrNoPersonas
	}
	s.active = p.Name
	s.conv = model.NewConversation(prompt.BuildSystemPrompt(p, s.kb))
	s.state = StateActive
	s.startedAt = time.Now()
	s.logger.Info().Str("persona", p.Name).Msg("session started")
	return nil
}

// SelectPersona switches to the named persona. Selecting the active persona
// keeps the history; any other persona starts a fresh conversation.
func (s *Session) SelectPersona(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotStarted
	}
	p, ok := s.team.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", persona.ErrUnknownPersona, name)
	}
	if p.Name == s.active {
		return nil
	}

	discarded := s.conv.MessageCount() - 1
	s.active = p.Name
	s.conv.Reset(prompt.BuildSystemPrompt(p, s.kb))
	s.generation++
	s.logger.Info().
		Str("persona", p.Name).
		Int("discarded", discarded).
		Msg("persona switched")
	return nil
}

// EditPersona replaces a persona's prompt. The active system message is left
// as it is unless rebuild-on-upload is enabled.
func (s *Session) EditPersona(name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.team.Edit(name, text); err != nil {
		return err
	}
	s.logger.Info().Str("persona", name).Msg("persona edited")
	if name == s.active {
		s.rebuildLocked()
	}
	return nil
}

// ApplyPersonas merges personas from the personas file into the team and
// returns the names that changed. The same deferred rule as EditPersona
// applies.
func (s *Session) ApplyPersonas(personas []persona.Persona) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := s.team.Merge(personas)
	for _, name := range changed {
		if name == s.active {
			s.rebuildLocked()
			break
		}
	}
	if len(changed) > 0 {
		s.logger.Info().Strs("personas", changed).Msg("personas updated")
	}
	return changed
}

// LoadDocument ingests an uploaded document and replaces the knowledge base
// with its text. On failure the knowledge base is unchanged.
func (s *Session) LoadDocument(ctx context.Context, name string, r io.Reader) error {
	if s.ingestor == nil {
		return ErrNoIngestor
	}

	// Parsing can be slow; it does not touch session state.
	text, err := s.ingestor.Ingest(ctx, name, r)
	if err != nil {
		s.logger.Warn().Err(err).Str("document", name).Msg("upload rejected")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.kb = text
	s.logger.Info().
		Str("document", name).
		Int("chars", util.RuneLen(text)).
		Msg("knowledge base replaced")
	s.rebuildLocked()
	return nil
}

// ClearKnowledgeBase forgets the uploaded document.
func (s *Session) ClearKnowledgeBase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kb == "" {
		return
	}
	s.kb = ""
	s.logger.Info().Msg("knowledge base cleared")
	s.rebuildLocked()
}

// rebuildLocked regenerates the system message when rebuild-on-upload is on.
func (s *Session) rebuildLocked() {
	if !s.rebuildOnUpload || s.state != StateActive {
		return
	}
	p, _ := s.team.Get(s.active)
	s.conv.SetSystemPrompt(prompt.BuildSystemPrompt(p, s.kb))
}

// Submit sends one user message and appends the reply. It returns the
// assistant message, which carries the rendered error text when the
// completion failed. The returned error is only set for conditions that
// leave the conversation untouched.
func (s *Session) Submit(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return model.Message{}, ErrNotStarted
	}
	if s.completer == nil || !s.completer.Configured() {
		s.mu.Unlock()
		return model.Message{}, completion.ErrNotConfigured
	}
	s.conv.AddUserMessage(text)
	history := s.conv.History()
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()
	res := s.completer.Complete(ctx, history)

	s.mu.Lock()
	defer s.mu.Unlock()

	reply := model.NewAssistantMessage(res.Text())
	if gen != s.generation {
		s.logger.Warn().Msg("reply arrived after persona switch; dropped")
		return reply, nil
	}
	s.conv.AddAssistantMessage(reply.Content)
	reply = *s.conv.GetLastMessage()

	ev := s.logger.Debug()
	if !res.OK() {
		ev = s.logger.Warn().Err(res.Err)
	}
	ev.Str("persona", s.active).
		Int("messages", s.conv.MessageCount()).
		Str("reply", reply.Preview(60)).
		Dur("took", time.Since(start)).
		Msg("turn completed")
	return reply, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartedAt returns when Start first activated the session.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// ActivePersona returns the selected persona. ok is false before Start.
func (s *Session) ActivePersona() (p persona.Persona, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return persona.Persona{}, false
	}
	return s.team.Get(s.active)
}

// Personas returns the team in order.
func (s *Session) Personas() []persona.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team.List()
}

// ResolvePersona finds a persona by name, number or unique prefix.
func (s *Session) ResolvePersona(query string) (persona.Persona, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team.Resolve(query)
}

// KnowledgeBase returns the full knowledge-base text.
func (s *Session) KnowledgeBase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kb
}

// Messages returns a copy of the whole conversation, system message first.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv == nil {
		return nil
	}
	return s.conv.History()
}

// Transcript returns the conversation without the system message.
func (s *Session) Transcript() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv == nil {
		return nil
	}
	return s.conv.Transcript()
}

// SystemPromptStale reports whether the current system message differs from
// what the active persona and knowledge base would produce now. That
// happens after an upload or edit while rebuild-on-upload is off.
func (s *Session) SystemPromptStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	p, _ := s.team.Get(s.active)
	return s.conv.SystemPrompt() != prompt.BuildSystemPrompt(p, s.kb)
}
