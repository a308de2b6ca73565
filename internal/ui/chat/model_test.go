// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/teamchat/internal/commands"
	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/ingest"
	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/persona"
	"github.com/jeranaias/teamchat/internal/session"
	"github.com/jeranaias/teamchat/internal/ui/styles"
)

// failing always returns the same error.
type failing struct{ err error }

func (f failing) Configured() bool { return true }
func (f failing) Complete(context.Context, []model.Message) completion.Result {
	return completion.Result{Err: f.err}
}

// unconfigured has no API key.
type unconfigured struct{}

func (unconfigured) Configured() bool { return false }
func (unconfigured) Complete(context.Context, []model.Message) completion.Result {
	return completion.Result{Err: completion.ErrNotConfigured}
}

// blocking holds Complete open until release is closed.
type blocking struct {
	started chan struct{}
	release chan struct{}
}

func newBlocking() *blocking {
	return &blocking{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blocking) Configured() bool { return true }
func (b *blocking) Complete(ctx context.Context, _ []model.Message) completion.Result {
	close(b.started)
	select {
	case <-b.release:
		return completion.Result{Content: "all set"}
	case <-ctx.Done():
		return completion.Result{Err: ctx.Err()}
	}
}

func newModel(t *testing.T, c completion.Completer, width int) (Model, *session.Session) {
	t.Helper()
	s := session.New(persona.DefaultTeam(), c,
		session.WithIngestor(ingest.New(ingest.WithTempDir(t.TempDir()))))
	require.NoError(t, s.Start())

	m := New(Options{
		Session:             s,
		Registry:            commands.NewRegistry(),
		Theme:               styles.NewTheme("dark", true),
		ModelName:           "gpt-4",
		ShowKnowledgeBanner: true,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: width, Height: 30})
	return m, s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// updateCmd returns the model and the command Update produced.
func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// collect runs cmd and any batched commands, returning the messages of the
// given kinds. Spinner ticks come back immediately and are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	switch msg.(type) {
	case ReplyMsg, CommandDoneMsg, tea.QuitMsg:
		return []tea.Msg{msg}
	}
	return nil
}

// send types text, presses enter and feeds the result back into the model.
func send(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = typeText(t, m, text)
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateBusy, m.State())
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	return update(t, m, msgs[0])
}

// =============================================================================
// RENDERING
// =============================================================================

func TestViewBeforeResize(t *testing.T) {
	s := session.New(nil, completion.Echo{})
	require.NoError(t, s.Start())
	m := New(Options{Session: s, Theme: styles.NewTheme("dark", true)})
	assert.Equal(t, "Loading...", m.View())
}

func TestInitialView(t *testing.T) {
	m, _ := newModel(t, completion.Echo{}, 100)
	view := m.View()

	assert.Contains(t, view, "Chatting with: Alex (Strategist)")
	assert.Contains(t, view, "1. Alex (Strategist)")
	assert.Contains(t, view, "Say hello to Alex")
	assert.NotContains(t, view, "strategic planner", "system message is hidden")
	assert.NotContains(t, view, KnowledgeBannerText)
}

func TestSidebarTruncatesLongNames(t *testing.T) {
	team := persona.NewTeam(persona.Persona{
		Name:   "Maximilian Bartholomew (Principal Architect)",
		Prompt: "You are Max.",
	})
	s := session.New(team, completion.Echo{})
	require.NoError(t, s.Start())
	m := New(Options{Session: s, Theme: styles.NewTheme("dark", true)})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "1. Maximilian Bartho…")
	assert.NotContains(t, view, "1. Maximilian Bartholomew")
}

func TestNarrowHidesSidebar(t *testing.T) {
	m, _ := newModel(t, completion.Echo{}, 60)
	view := m.View()
	assert.Contains(t, view, "Chatting with: Alex (Strategist)")
	assert.NotContains(t, view, "1. Alex")
}

func TestKnowledgeBanner(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)
	require.NoError(t, s.LoadDocument(context.Background(), "notes.txt", strings.NewReader("Launch in May.")))

	view := m.View()
	assert.Contains(t, view, KnowledgeBannerText+" (14 chars)")
	assert.Contains(t, view, "pending until persona switch")
}

// =============================================================================
// CHATTING
// =============================================================================

func TestSubmitMessage(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)

	m = typeText(t, m, "hello team")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateBusy, m.State())
	assert.Contains(t, m.View(), "hello team", "pending text is shown")
	assert.Contains(t, m.View(), "Thinking")

	// Enter is ignored while busy.
	_, again := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	m = update(t, m, msgs[0])

	assert.Equal(t, StateReady, m.State())
	assert.Len(t, s.Messages(), 3)
	assert.NotContains(t, m.View(), "Thinking")
	assert.Contains(t, m.View(), "(offline,")

	m = send(t, m, "second")
	assert.Len(t, s.Messages(), 5)
}

func TestPendingTextShownOnceWhileWaiting(t *testing.T) {
	c := newBlocking()
	m, s := newModel(t, c, 100)

	m = typeText(t, m, "quarterly roadmap")
	m, _ = updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateBusy, m.State())
	assert.Equal(t, 1, strings.Count(m.View(), "quarterly roadmap"))

	done := make(chan tea.Msg, 1)
	go func() { done <- submitCmd(s, "quarterly roadmap")() }()
	<-c.started

	// The session has recorded the message; the next redraw picks it up.
	m = update(t, m, spinner.TickMsg{})
	require.Len(t, s.Transcript(), 1)
	assert.Equal(t, 1, strings.Count(m.View(), "quarterly roadmap"))
	assert.Contains(t, m.View(), "Thinking")

	close(c.release)
	m = update(t, m, <-done)
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, 1, strings.Count(m.View(), "quarterly roadmap"))
	assert.Contains(t, m.View(), "all set")
}

func TestBlankInputIgnored(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)
	m = typeText(t, m, "   ")
	m, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, StateReady, m.State())
	assert.Len(t, s.Messages(), 1)
}

func TestCompletionErrorShownAsReply(t *testing.T) {
	m, s := newModel(t, failing{err: errors.New("boom")}, 100)
	m = send(t, m, "hi")

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "⚠️ Error: boom", msgs[2].Content)
	assert.Contains(t, m.View(), "Error: boom")
}

func TestMissingKeyNotice(t *testing.T) {
	m, s := newModel(t, unconfigured{}, 100)
	m = send(t, m, "hi")

	assert.Len(t, s.Messages(), 1)
	assert.Contains(t, m.Notice(), "No API key configured")
	assert.Equal(t, StateReady, m.State())
}

// =============================================================================
// COMMANDS AND PERSONAS
// =============================================================================

func TestSlashCommand(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)
	m = send(t, m, "hi")
	require.Len(t, s.Messages(), 3)

	m = send(t, m, "/persona chris")
	assert.Equal(t, "Chatting with: Chris (Tech Lead)", m.Notice())
	assert.Len(t, s.Messages(), 1)
	assert.Contains(t, m.View(), "Chatting with: Chris (Tech Lead)")

	m = send(t, m, "/bogus")
	assert.Contains(t, m.Notice(), "unknown command")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, completion.Echo{}, 100)

	_, cmd := updateCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = typeText(t, m, "/quit")
	m, cmd = updateCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	_, cmd = updateCmd(t, m, msgs[0])
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCyclePersona(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)
	m = send(t, m, "hi")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF3})
	p, _ := s.ActivePersona()
	assert.Equal(t, "Becky (Marketing Guru)", p.Name)
	assert.Len(t, s.Messages(), 1)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyF2})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyF2})
	p, _ = s.ActivePersona()
	assert.Equal(t, "Eli (Data Analyst)", p.Name, "wraps around")
	assert.Contains(t, m.View(), "Chatting with: Eli (Data Analyst)")
}

func TestPersonaEditor(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	require.Equal(t, StateEditing, m.State())
	assert.Equal(t, persona.Defaults()[0].Prompt, m.editor.Value())
	assert.Contains(t, m.View(), "Edit prompt: Alex (Strategist)")

	// Esc discards.
	m.editor.SetValue("discarded")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateReady, m.State())
	p, _ := s.ActivePersona()
	assert.Equal(t, persona.Defaults()[0].Prompt, p.Prompt)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m.editor.SetValue("You are Alex. Be brief.")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, StateReady, m.State())
	p, _ = s.ActivePersona()
	assert.Equal(t, "You are Alex. Be brief.", p.Prompt)
	assert.Contains(t, m.Notice(), "next switch persona")

	// The running conversation keeps its system message.
	assert.Equal(t, persona.Defaults()[0].Prompt, s.Messages()[0].Content)
}

func TestPersonaEditorRejectsEmpty(t *testing.T) {
	m, s := newModel(t, completion.Echo{}, 100)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m.editor.SetValue("   ")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, StateEditing, m.State())
	p, _ := s.ActivePersona()
	assert.Equal(t, persona.Defaults()[0].Prompt, p.Prompt)
}

func TestPersonasUpdatedNotice(t *testing.T) {
	m, _ := newModel(t, completion.Echo{}, 100)
	m = update(t, m, PersonasUpdatedMsg{Names: []string{"Dana (Sales Pro)"}})
	assert.Equal(t, "Personas updated: Dana (Sales Pro)", m.Notice())
}

func TestKeyMapHelp(t *testing.T) {
	km := DefaultKeyMap()
	assert.Len(t, km.ShortHelp(), 5)
	assert.Len(t, km.FullHelp(), 4)
	for _, b := range km.ShortHelp() {
		assert.NotEmpty(t, b.Help().Desc)
	}
}
