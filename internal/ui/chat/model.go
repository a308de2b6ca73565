// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/jeranaias/teamchat/internal/commands"
	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/session"
	"github.com/jeranaias/teamchat/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents what the view is doing.
type State int

const (
	StateReady   State = iota // Ready for input
	StateBusy                 // Waiting on a completion or command
	StateEditing              // Persona editor open
)

// Layout constants.
const (
	headerHeight = 2
	inputHeight  = 3
	statusHeight = 1
	sidebarWidth = 28
)

// noticeKind styles the line shown under the transcript.
type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeSuccess
	noticeError
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	Session  *session.Session
	Registry *commands.Registry
	Theme    *styles.Theme

	// ModelName is recorded in exports.
	ModelName string

	RenderMarkdown      bool
	ShowKnowledgeBanner bool

	Logger zerolog.Logger
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State

	session  *session.Session
	registry *commands.Registry
	cmdCtx   *commands.Context
	theme    *styles.Theme
	keyMap   KeyMap
	logger   zerolog.Logger

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	editor   textarea.Model
	spinner  spinner.Model

	completer *commands.Completer

	// Markdown
	renderMarkdown bool
	markdown       *glamour.TermRenderer
	markdownWidth  int

	showBanner bool

	// pending is the user text shown while its reply is outstanding.
	pending   string
	busyLabel string
	ticks     int

	notice     string
	noticeKind noticeKind

	// editing is the persona open in the editor.
	editing string
}

// New creates a chat model. The session must already be started.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.DefaultTheme()
	}
	reg := opts.Registry
	if reg == nil {
		reg = commands.NewRegistry()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message or /help..."
	ti.CharLimit = 8192
	ti.ShowSuggestions = true
	ti.PromptStyle = theme.InputPrompt
	ti.Focus()

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Spinner()
	sp.Style = theme.Spinner

	m := Model{
		state:          StateReady,
		session:        opts.Session,
		registry:       reg,
		theme:          theme,
		keyMap:         DefaultKeyMap(),
		logger:         opts.Logger,
		input:          ti,
		editor:         ta,
		spinner:        sp,
		renderMarkdown: opts.RenderMarkdown,
		showBanner:     opts.ShowKnowledgeBanner,
		cmdCtx: &commands.Context{
			Ctx:       context.Background(),
			Session:   opts.Session,
			Registry:  reg,
			ModelName: opts.ModelName,
		},
	}
	m.completer = commands.NewCompleter(reg, m.personaNames)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the current view state.
func (m Model) State() State {
	return m.state
}

// Notice returns the message shown under the transcript.
func (m Model) Notice() string {
	return m.notice
}

func (m Model) personaNames() []string {
	personas := m.session.Personas()
	names := make([]string, len(personas))
	for i, p := range personas {
		names[i] = p.Name
	}
	return names
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh(true)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			return m, tea.Quit
		}
		switch m.state {
		case StateEditing:
			return m.updateEditor(msg)
		case StateBusy:
			return m.scroll(msg)
		}
		return m.updateReady(msg)

	case ReplyMsg:
		m.state = StateReady
		m.pending = ""
		if msg.Err != nil {
			m.setNotice(noticeError, describeError(msg.Err))
		} else {
			m.notice = ""
		}
		m.refresh(true)
		return m, m.input.Focus()

	case CommandDoneMsg:
		m.state = StateReady
		res := msg.Result
		if res.Quit {
			return m, tea.Quit
		}
		m.setNotice(kindOf(res.Kind), res.Text)
		m.refresh(true)
		return m, m.input.Focus()

	case PersonasUpdatedMsg:
		if len(msg.Names) > 0 {
			m.setNotice(noticeInfo, "Personas updated: "+strings.Join(msg.Names, ", "))
			m.refresh(false)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.ticks++
		m.refresh(true)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.state == StateEditing {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) updateReady(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.input.SetSuggestions(nil)
		return m.submit(text)

	case key.Matches(msg, m.keyMap.NextPersona):
		return m.cyclePersona(1), nil

	case key.Matches(msg, m.keyMap.PrevPersona):
		return m.cyclePersona(-1), nil

	case key.Matches(msg, m.keyMap.EditPersona):
		return m.openEditor()

	case key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		return m.scroll(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.input.SetSuggestions(m.completer.Lines(m.input.Value()))
	return m, cmd
}

// submit routes text to the command registry or the session.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.state = StateBusy
	m.notice = ""
	m.input.Blur()

	if commands.IsCommand(text) {
		m.busyLabel = "Working"
		m.logger.Debug().Str("command", commands.ExtractCommandName(text)).Msg("running command")
		return m, tea.Batch(m.spinner.Tick, commandCmd(m.registry, m.cmdCtx, text))
	}

	m.pending = text
	m.busyLabel = ""
	m.refresh(true)
	return m, tea.Batch(m.spinner.Tick, submitCmd(m.session, text))
}

func (m Model) scroll(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
	}
	return m, nil
}

// cyclePersona switches to the neighbouring persona, wrapping around.
func (m Model) cyclePersona(step int) Model {
	names := m.personaNames()
	if len(names) < 2 {
		return m
	}
	cur, _ := m.session.ActivePersona()
	idx := 0
	for i, n := range names {
		if n == cur.Name {
			idx = i
			break
		}
	}
	next := names[(idx+step+len(names))%len(names)]
	if err := m.session.SelectPersona(next); err != nil {
		m.setNotice(noticeError, err.Error())
		return m
	}
	m.setNotice(noticeSuccess, "Chatting with: "+next)
	m.refresh(true)
	return m
}

// =============================================================================
// PERSONA EDITOR
// =============================================================================

func (m Model) openEditor() (tea.Model, tea.Cmd) {
	p, ok := m.session.ActivePersona()
	if !ok {
		return m, nil
	}
	m.state = StateEditing
	m.editing = p.Name
	m.editor.SetValue(p.Prompt)
	m.input.Blur()
	return m, m.editor.Focus()
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.CancelEdit):
		return m.closeEditor()

	case key.Matches(msg, m.keyMap.SaveEdit):
		text := strings.TrimSpace(m.editor.Value())
		if text == "" {
			m.setNotice(noticeError, "Prompt cannot be empty.")
			return m, nil
		}
		if err := m.session.EditPersona(m.editing, text); err != nil {
			m.setNotice(noticeError, err.Error())
		} else if m.session.SystemPromptStale() {
			m.setNotice(noticeSuccess, "Updated "+m.editing+". It takes effect when you next switch persona.")
		} else {
			m.setNotice(noticeSuccess, "Updated "+m.editing+".")
		}
		return m.closeEditor()
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) closeEditor() (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.editing = ""
	m.editor.Blur()
	m.refresh(false)
	return m, m.input.Focus()
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	w := m.mainWidth()
	h := height - headerHeight - inputHeight - statusHeight
	if h < 3 {
		h = 3
	}
	if !m.ready {
		m.viewport = viewport.New(w, h)
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = h
	}
	m.input.Width = w - 6
	m.editor.SetWidth(w - 4)
	m.editor.SetHeight(h - 2)
}

// mainWidth is the width left for the transcript.
func (m Model) mainWidth() int {
	w := m.width
	if m.theme.GetLayoutMode() == styles.LayoutFull {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// refresh redraws the transcript into the viewport.
func (m *Model) refresh(toBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) setNotice(kind noticeKind, text string) {
	m.notice = text
	m.noticeKind = kind
}

// markdownRenderer returns a renderer for the current width, or nil when
// markdown is off or unavailable.
func (m *Model) markdownRenderer(width int) *glamour.TermRenderer {
	if !m.renderMarkdown {
		return nil
	}
	if m.markdown != nil && m.markdownWidth == width {
		return m.markdown
	}
	r, err := m.theme.MarkdownRenderer(width)
	if err != nil {
		m.logger.Warn().Err(err).Msg("markdown renderer unavailable")
		m.renderMarkdown = false
		return nil
	}
	m.markdown = r
	m.markdownWidth = width
	return r
}

// =============================================================================
// HELPERS
// =============================================================================

func kindOf(k commands.ResultKind) noticeKind {
	switch k {
	case commands.KindSuccess:
		return noticeSuccess
	case commands.KindError:
		return noticeError
	default:
		return noticeInfo
	}
}

// describeError turns a Submit error into something the user can act on.
func describeError(err error) string {
	switch {
	case errors.Is(err, completion.ErrNotConfigured):
		return "No API key configured. Set OPENAI_API_KEY or completion.api_key, or enable completion.offline."
	case errors.Is(err, session.ErrNotStarted):
		return "Session not started."
	default:
		return fmt.Sprintf("Could not send: %v", err)
	}
}
