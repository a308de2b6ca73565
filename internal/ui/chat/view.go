// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/teamchat/internal/completion"
	"github.com/jeranaias/teamchat/internal/model"
	"github.com/jeranaias/teamchat/internal/ui/styles"
	"github.com/jeranaias/teamchat/internal/util"
)

// KnowledgeBannerText prefixes the banner shown while a document is loaded.
const KnowledgeBannerText = "Knowledge base loaded"

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	if m.state == StateEditing {
		body = m.renderEditor()
	} else {
		body = m.viewport.View()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
	)
	if m.theme.GetLayoutMode() == styles.LayoutFull {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	width := m.mainWidth()

	title := "Not started"
	if p, ok := m.session.ActivePersona(); ok {
		title = "Chatting with: " + p.Name
	}
	line1 := m.theme.HeaderTitle.Render(title)

	var badges []string
	if kb := m.session.KnowledgeBase(); kb != "" && m.showBanner {
		badges = append(badges, m.theme.KnowledgeBadge.Render(
			fmt.Sprintf("%s (%d chars)", KnowledgeBannerText, util.RuneLen(kb))))
	}
	if m.session.SystemPromptStale() {
		badges = append(badges, m.theme.StaleBadge.Render("pending until persona switch"))
	}
	line2 := strings.Join(badges, " ")

	return m.theme.Header.Width(width).Render(line1 + "\n" + line2)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	inner := sidebarWidth - 3
	active, _ := m.session.ActivePersona()

	var sb strings.Builder
	sb.WriteString(m.theme.SidebarTitle.Render("Team"))
	sb.WriteString("\n")
	for i, p := range m.session.Personas() {
		label := util.TruncateWidth(fmt.Sprintf("%d. %s", i+1, p.Name), inner-4)
		if p.Name == active.Name {
			style := m.theme.SidebarItemSelected.Foreground(styles.PersonaAccent(i))
			sb.WriteString(style.Render("> " + label))
		} else {
			sb.WriteString(m.theme.SidebarItem.Render("  " + label))
		}
		sb.WriteString("\n")
	}

	height := m.height - statusHeight
	if height < 1 {
		height = 1
	}
	return m.theme.Sidebar.Width(inner).Height(height).Render(strings.TrimRight(sb.String(), "\n"))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript draws the visible conversation. The system message is
// never shown.
func (m *Model) renderTranscript() string {
	width := m.viewport.Width
	if width <= 0 {
		width = m.mainWidth()
	}
	p, _ := m.session.ActivePersona()

	msgs := m.session.Transcript()
	var parts []string
	if len(msgs) == 0 && m.pending == "" {
		parts = append(parts, m.theme.Notice.Render(fmt.Sprintf("Say hello to %s. Type /help for commands.", p.Name)))
	}
	for _, msg := range msgs {
		switch msg.Role {
		case model.RoleUser:
			parts = append(parts, m.renderUser(msg.Content, msg.Timestamp.Format("15:04"), width))
		case model.RoleAssistant:
			parts = append(parts, m.renderAssistant(p.Name, msg, width))
		}
	}

	if m.pendingUnsent(msgs) {
		parts = append(parts, m.renderUser(m.pending, "", width))
	}
	if m.state == StateBusy {
		label := styles.ThinkingText(m.ticks)
		if m.busyLabel != "" {
			label = m.busyLabel
		}
		parts = append(parts, m.spinner.View()+" "+m.theme.ThinkingText.Render(label))
	}
	if m.notice != "" {
		parts = append(parts, m.renderNotice(width))
	}
	return strings.Join(parts, "\n\n")
}

// pendingUnsent reports whether the pending text still needs drawing. Once
// the session has recorded it, the transcript shows it instead.
func (m Model) pendingUnsent(msgs []model.Message) bool {
	if m.pending == "" {
		return false
	}
	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		return last.Role != model.RoleUser || last.Content != m.pending
	}
	return true
}

func (m Model) renderUser(text, at string, width int) string {
	label := m.theme.UserLabel.Render("You")
	if at != "" {
		label += " " + m.theme.Notice.Render(at)
	}
	return label + "\n" + m.theme.UserText.Width(width-2).Render(text)
}

func (m *Model) renderAssistant(name string, msg model.Message, width int) string {
	label := m.theme.AssistantLabel.Render(name) + " " + m.theme.Notice.Render(msg.Timestamp.Format("15:04"))

	if strings.HasPrefix(msg.Content, completion.ErrorPrefix) {
		return label + "\n" + m.theme.ErrorText.Width(width-2).Render(msg.Content)
	}
	if r := m.markdownRenderer(width - 2); r != nil {
		if out, err := r.Render(msg.Content); err == nil {
			return label + "\n" + strings.Trim(out, "\n")
		}
	}
	return label + "\n" + m.theme.AssistantText.PaddingLeft(2).Width(width-2).Render(msg.Content)
}

func (m Model) renderNotice(width int) string {
	var style lipgloss.Style
	var prefix string
	switch m.noticeKind {
	case noticeSuccess:
		style, prefix = m.theme.SuccessStyle, styles.StatusIndicators.Success
	case noticeError:
		style, prefix = m.theme.ErrorStyle, styles.StatusIndicators.Error
	default:
		style, prefix = m.theme.InfoStyle, styles.StatusIndicators.Info
	}
	return style.Width(width).Render(prefix + " " + m.notice)
}

// =============================================================================
// INPUT AND EDITOR
// =============================================================================

func (m Model) renderInput() string {
	width := m.mainWidth() - 2
	if m.state == StateEditing {
		return m.theme.InputContainer.Width(width).Render(m.theme.Notice.Render("Editing persona..."))
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

func (m Model) renderEditor() string {
	title := m.theme.EditorTitle.Render("Edit prompt: " + m.editing)
	return m.theme.EditorBox.Width(m.mainWidth() - 2).Render(title + "\n" + m.editor.View())
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	bindings := m.keyMap.ShortHelp()
	if m.state == StateEditing {
		bindings = m.keyMap.EditorHelp()
	}
	var parts []string
	for _, b := range bindings {
		parts = append(parts, renderBinding(m.theme, b))
	}
	left := strings.Join(parts, "  ")
	return m.theme.StatusBar.Width(m.width).MaxWidth(m.width).Render(left)
}

func renderBinding(t *styles.Theme, b key.Binding) string {
	h := b.Help()
	return t.ShortcutKey.Render(h.Key) + " " + t.ShortcutDesc.Render(h.Desc)
}
